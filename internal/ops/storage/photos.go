// Package storage 对象存储客户端（收货照片）。
// 照片本体存MinIO，元数据落库；存储服务本身由外部运维。
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// PhotoStore 收货照片存储
type PhotoStore struct {
	client *minio.Client
	bucket string
}

func NewPhotoStore(client *minio.Client, bucket string) *PhotoStore {
	return &PhotoStore{client: client, bucket: bucket}
}

// Upload 上传照片，返回对象键
func (s *PhotoStore) Upload(ctx context.Context, equipmentItemID, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	objectKey := fmt.Sprintf("receiving/%s/%s_%s%s",
		equipmentItemID,
		time.Now().Format("20060102"),
		uuid.New().String()[:8],
		filepath.Ext(fileName),
	)

	_, err := s.client.PutObject(ctx, s.bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}
	return objectKey, nil
}

// PresignedURL 生成照片的临时访问链接
func (s *PhotoStore) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign photo: %w", err)
	}
	return u.String(), nil
}
