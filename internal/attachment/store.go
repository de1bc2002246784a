package attachment

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/EgorLis/infdot-upload/internal/domain"
)

// Locker: блокировка пары (версия, имя файла) на время сохранения
type Locker interface {
	Acquire(ctx context.Context, version domain.VersionID, filename string) (token string, ok bool, err error)
	Release(ctx context.Context, version domain.VersionID, filename, token string) error
}

// Inserter: запись метаданных вложения
type Inserter interface {
	InsertAttachment(ctx context.Context, a domain.Attachment) (domain.Attachment, bool, error)
}

// Store сохраняет вложение: контент в blob-хранилище, метаданные в БД.
type Store struct {
	blobs domain.BlobStorage
	repo  Inserter
	locks Locker
	log   zerolog.Logger
}

var _ domain.AttachmentCreator = (*Store)(nil)

// locks может быть nil: тогда от гонок защищает только уникальный индекс.
func NewStore(blobs domain.BlobStorage, repo Inserter, locks Locker, log zerolog.Logger) *Store {
	return &Store{blobs: blobs, repo: repo, locks: locks, log: log}
}

func (s *Store) Create(ctx context.Context, in domain.NewAttachment) (domain.Attachment, bool, error) {
	if s.locks != nil {
		token, ok, err := s.locks.Acquire(ctx, in.Version.ID, in.Filename)
		if err != nil {
			return domain.Attachment{}, false, fmt.Errorf("lock: %w", err)
		}
		if !ok {
			s.log.Info().
				Str("version_id", in.Version.ID.String()).
				Str("filename", in.Filename).
				Msg("concurrent upload holds the lock")
			return domain.Attachment{}, false, nil
		}
		defer func() {
			if err := s.locks.Release(context.WithoutCancel(ctx), in.Version.ID, in.Filename, token); err != nil {
				s.log.Warn().Err(err).Str("filename", in.Filename).Msg("lock release failed")
			}
		}()
	}

	id := uuid.New()
	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	put, err := s.blobs.Put(ctx, bytes.NewReader(in.Content), int64(len(in.Content)), id.String(), contentType)
	if err != nil {
		return domain.Attachment{}, false, err
	}

	a, created, err := s.repo.InsertAttachment(ctx, domain.Attachment{
		ID:          id,
		VersionID:   in.Version.ID,
		AuthorID:    in.Author.ID,
		Filename:    in.Filename,
		Description: in.Description,
		ContentType: contentType,
		SizeBytes:   put.Size,
		SHA256:      put.SHA256,
		StorageKey:  put.StorageKey,
	})
	if err != nil || !created {
		s.dropBlob(ctx, put.StorageKey)
		return domain.Attachment{}, false, err
	}
	return a, true, nil
}

// контент без записи никому не нужен
func (s *Store) dropBlob(ctx context.Context, key string) {
	if err := s.blobs.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.log.Warn().Err(err).Str("storage_key", key).Msg("orphan blob not removed")
	}
}
