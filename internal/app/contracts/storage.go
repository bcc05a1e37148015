package contracts

import (
	"context"
	"time"
)

type Storage interface {
	PutObject(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error
	GetObjectUrlWithExpiryTime(ctx context.Context, bucketName, objectName string, expiryTime time.Duration) (string, error)
}
