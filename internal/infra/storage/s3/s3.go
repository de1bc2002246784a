package s3

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/EgorLis/infdot-upload/internal/domain"
)

var _ domain.BlobStorage = (*Storage)(nil)

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
}

// objectAPI: подмножество *minio.Client, которое нам нужно
type objectAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
}

type Storage struct {
	cl     objectAPI
	bucket string
	log    zerolog.Logger
}

func New(ctx context.Context, cfg Config, log zerolog.Logger) (*Storage, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}
	cl, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, err
	}
	return newStorage(ctx, cl, cfg, log)
}

func newStorage(ctx context.Context, cl objectAPI, cfg Config, log zerolog.Logger) (*Storage, error) {
	s := &Storage{cl: cl, bucket: cfg.Bucket, log: log}
	if err := s.ensureBucket(ctx, cfg.Region); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Storage) ensureBucket(ctx context.Context, region string) error {
	ok, err := s.cl.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("bucket exists: %w", err)
	}
	if ok {
		return nil
	}
	s.log.Info().Str("bucket", s.bucket).Msg("creating bucket")
	if err := s.cl.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("make bucket: %w", err)
	}
	return nil
}

// Put загружает поток под ключом attachments/<hintName> и считает sha256 по пути.
// hintName должен быть уникальным (вызывающая сторона передаёт id вложения).
// size < 0: размер неизвестен (minio уйдёт в multipart).
func (s *Storage) Put(ctx context.Context, r io.Reader, size int64, hintName string, mime string) (domain.BlobPutResult, error) {
	h := sha256.New()
	key := StorageKey(hintName)

	info, err := s.cl.PutObject(ctx, s.bucket, key, io.TeeReader(r, h), size, minio.PutObjectOptions{
		ContentType: mime,
	})
	if err != nil {
		return domain.BlobPutResult{}, err
	}
	s.log.Debug().Str("key", key).Int64("size", info.Size).Msg("object stored")
	return domain.BlobPutResult{StorageKey: key, Size: info.Size, SHA256: h.Sum(nil)}, nil
}

func (s *Storage) Delete(ctx context.Context, storageKey string) error {
	return s.cl.RemoveObject(ctx, s.bucket, storageKey, minio.RemoveObjectOptions{})
}

// Ping для readiness: бакет доступен
func (s *Storage) Ping(ctx context.Context) error {
	ok, err := s.cl.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %q does not exist", s.bucket)
	}
	return nil
}

func StorageKey(name string) string {
	return "attachments/" + name
}
