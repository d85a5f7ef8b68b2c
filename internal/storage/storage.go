package storage

import (
	"fmt"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"forum-backend/config"
)

// FileStorage 文件存储接口，各后端统一返回可公开访问的URL
type FileStorage interface {
	UploadFile(file *multipart.FileHeader, path string) (string, error)
}

// New 根据配置选择存储后端
func New() (FileStorage, error) {
	switch config.AppConfig.StorageBackend {
	case "", "local":
		return NewLocalStorage(config.AppConfig.LocalStoragePath)
	case "s3":
		return NewS3Client(config.AppConfig.S3Region, config.AppConfig.S3Bucket)
	case "gcs":
		return NewGCSClient(config.AppConfig.GCSProjectID, config.AppConfig.GCSBucketName, config.AppConfig.GCSCredentialsFile)
	default:
		return nil, fmt.Errorf("未知的存储后端: %s", config.AppConfig.StorageBackend)
	}
}

// contentTypeOf 返回上传文件的内容类型，请求头缺失时按扩展名推断
func contentTypeOf(file *multipart.FileHeader) string {
	if ct := file.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(file.Filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
