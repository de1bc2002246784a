package domain

import (
	"context"
	"io"
)

// Хранилище бинарного контента (S3/MinIO)
type BlobPutResult struct {
	StorageKey string
	Size       int64
	SHA256     []byte
}

type BlobStorage interface {
	// Сохранение нового файла (возвращает ключ/размер/хэш)
	Put(ctx context.Context, r io.Reader, size int64, hintName string, mime string) (BlobPutResult, error)
	Delete(ctx context.Context, storageKey string) error
}

// Создание вложения целиком: контент + запись.
// created=false без ошибки: «мягкий» отказ (запись не создана).
type AttachmentCreator interface {
	Create(ctx context.Context, in NewAttachment) (a Attachment, created bool, err error)
}
