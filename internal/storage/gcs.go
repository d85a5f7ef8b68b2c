package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSClient 把上传文件写入 Google Cloud Storage 桶
type GCSClient struct {
	client     *storage.Client
	bucketName string
}

func NewGCSClient(projectID, bucketName, credentialsFile string) (*GCSClient, error) {
	ctx := context.Background()
	client, err := storage.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, err
	}

	return &GCSClient{
		client:     client,
		bucketName: bucketName,
	}, nil
}

func (c *GCSClient) UploadFile(file *multipart.FileHeader, path string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	writer := c.client.Bucket(c.bucketName).Object(path).NewWriter(ctx)
	writer.ContentType = contentTypeOf(file)
	writer.CacheControl = "public, max-age=86400"

	if _, err = io.Copy(writer, src); err != nil {
		writer.Close()
		return "", err
	}
	// Close 阶段才真正提交对象，错误必须检查
	if err := writer.Close(); err != nil {
		return "", err
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucketName, path), nil
}
