package lock

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/EgorLis/infdot-upload/internal/domain"
)

// KV: минимальный интерфейс, который нам нужен от кеша.
type KV interface {
	SetNX(ctx context.Context, key string, val []byte, ttlSeconds int) (bool, error)
	DelIfEquals(ctx context.Context, key string, val []byte) (bool, error)
}

// Store: эксклюзивная блокировка пары (версия, имя файла) на время сохранения.
type Store struct {
	kv  KV
	ttl time.Duration
}

func NewStore(kv KV, ttl time.Duration) *Store {
	if ttl < time.Second {
		ttl = 30 * time.Second
	}
	return &Store{kv: kv, ttl: ttl}
}

func (s *Store) key(version domain.VersionID, filename string) string {
	return domain.CacheKeyUploadLock(version, filename)
}

// Acquire возвращает false, если пара уже занята другой загрузкой.
// Блокировка истекает сама через ttl, даже если Release не вызван.
// token нужно передать в Release.
func (s *Store) Acquire(ctx context.Context, version domain.VersionID, filename string) (token string, ok bool, err error) {
	token = uuid.NewString()
	ok, err = s.kv.SetNX(ctx, s.key(version, filename), []byte(token), int(s.ttl.Seconds()))
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

// Release снимает блокировку, только если она всё ещё принадлежит token.
// Истёкшая и перехваченная другой загрузкой блокировка не трогается.
func (s *Store) Release(ctx context.Context, version domain.VersionID, filename, token string) error {
	_, err := s.kv.DelIfEquals(ctx, s.key(version, filename), []byte(token))
	return err
}
