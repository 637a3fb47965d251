package images

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Minio stores images as objects listings/<name> in one bucket. Refs keep
// the public prefix; serving them is left to whatever fronts the bucket.
type Minio struct {
	client *minio.Client
	bucket string
	paths  Paths
	log    *slog.Logger
	now    func() time.Time
}

func NewMinio(ctx context.Context, cfg MinioConfig, paths Paths, log *slog.Logger) (*Minio, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("images/minio: client for %s: %w", cfg.Endpoint, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("images/minio: check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("images/minio: make bucket %s: %w", cfg.Bucket, err)
		}
		log.Info("image bucket created", "bucket", cfg.Bucket)
	}

	return &Minio{client: client, bucket: cfg.Bucket, paths: paths, log: log, now: time.Now}, nil
}

func (m *Minio) Driver() string { return "minio" }

func objectKey(name string) string { return listingsDir + "/" + name }

func (m *Minio) Save(ctx context.Context, u Upload) (string, error) {
	src, err := u.Open()
	if err != nil {
		return "", fmt.Errorf("images/minio: open upload: %w", err)
	}
	defer src.Close()

	name := NewName(m.now(), u.Filename, u.ContentType)
	info, err := m.client.PutObject(ctx, m.bucket, objectKey(name), src, u.Size, minio.PutObjectOptions{
		ContentType: u.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("images/minio: put %s: %w", name, err)
	}
	m.log.Debug("image stored", "bucket", info.Bucket, "key", info.Key, "size", info.Size)
	return m.paths.Ref(name), nil
}

func (m *Minio) Remove(ctx context.Context, ref string) error {
	name, err := m.paths.Name(ref)
	if err != nil {
		return err
	}
	err = m.client.RemoveObject(ctx, m.bucket, objectKey(name), minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("images/minio: remove %s: %w", name, err)
	}
	return nil
}

func (m *Minio) List(ctx context.Context) ([]string, error) {
	var out []string
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: listingsDir + "/"}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("images/minio: list: %w", obj.Err)
		}
		out = append(out, m.paths.Ref(obj.Key[len(listingsDir)+1:]))
	}
	return out, nil
}
