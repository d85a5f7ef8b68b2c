package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"forum-backend/config"
	"forum-backend/internal/util"

	"go.uber.org/zap"
)

// LocalStorage 把上传文件落在本地磁盘，经 /uploads 静态路由对外提供
type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %w", err)
	}
	return &LocalStorage{basePath: abs}, nil
}

func (s *LocalStorage) UploadFile(file *multipart.FileHeader, path string) (string, error) {
	dstPath := filepath.Join(s.basePath, filepath.FromSlash(path))
	// 拼接后必须仍在存储目录内
	if !strings.HasPrefix(dstPath, s.basePath+string(os.PathSeparator)) {
		return "", fmt.Errorf("非法的存储路径: %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return "", fmt.Errorf("创建目录失败: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("创建文件失败: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("保存文件失败: %w", err)
	}

	util.Logger.Info("文件已保存到本地存储", zap.String("path", dstPath))
	return fmt.Sprintf("%s/uploads/%s", config.AppConfig.BackendURL, filepath.ToSlash(path)), nil
}
