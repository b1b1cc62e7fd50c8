package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PayloadArchiver 批次原始报文归档
type PayloadArchiver interface {
	Archive(ctx context.Context, key string, payload []byte) error
}

// MinIOArchiver 归档到 MinIO
type MinIOArchiver struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinIOArchiver 未配置 endpoint 时返回 nil
func NewMinIOArchiver(cfg config.MinIOConfig) (*MinIOArchiver, error) {
	if cfg.Endpoint == "" {
		return nil, nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化MinIO客户端失败: %w", err)
	}
	return &MinIOArchiver{client: client, bucket: cfg.Bucket, prefix: cfg.ArchivePrefix}, nil
}

func (a *MinIOArchiver) Archive(ctx context.Context, key string, payload []byte) error {
	objectName := path.Join(a.prefix, key)
	_, err := a.client.PutObject(ctx, a.bucket, objectName, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("归档批次报文失败: %w", err)
	}
	return nil
}

// ArchiveKey 归档对象名：<kind>/<日期>/<批次号>.json
func ArchiveKey(kind, batchID string, at time.Time) string {
	return path.Join(kind, at.Format("2006-01-02"), batchID+".json")
}
