package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aihub/rag-go/internal/config"
	"github.com/aihub/rag-go/internal/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Archive 源文档归档，入库前把原始文件字节保存到对象存储
type Archive struct {
	client *minio.Client
	bucket string
}

var globalArchive *Archive

// InitMinIO 初始化MinIO客户端并确保bucket存在（可选组件）
func InitMinIO() (*Archive, error) {
	cfg := config.AppConfig
	if cfg == nil {
		return nil, fmt.Errorf("config not loaded")
	}
	if !cfg.Storage.Enabled {
		return nil, nil
	}

	client, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Storage.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Storage.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	globalArchive = &Archive{client: client, bucket: cfg.Storage.Bucket}
	logger.Info("MinIO archive initialized")
	return globalArchive, nil
}

// GetArchive 获取全局归档实例，未启用时返回nil
func GetArchive() *Archive {
	return globalArchive
}

// Store 按sourceID保存原始文件字节
func (a *Archive) Store(ctx context.Context, sourceID string, data []byte) error {
	_, err := a.client.PutObject(ctx, a.bucket, sourceID,
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to archive source document: %w", err)
	}
	return nil
}
