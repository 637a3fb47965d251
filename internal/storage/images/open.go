package images

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/automartines/autoonline/internal/config"
)

// Open builds the store selected by cfg.StorageDriver.
func Open(ctx context.Context, cfg config.Config, log *slog.Logger) (Store, error) {
	paths := NewPaths(cfg.UploadsPrefix)

	switch cfg.StorageDriver {
	case "", "local":
		return NewLocal(cfg.UploadsDir, paths)
	case "minio":
		return NewMinio(ctx, MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		}, paths, log)
	default:
		return nil, fmt.Errorf("images: unknown storage driver %q", cfg.StorageDriver)
	}
}
