package apikey

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/EgorLis/infdot-upload/internal/domain"
)

type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttlSeconds int) error
}

var _ domain.UsersRepo = (*CachedUsers)(nil)

// CachedUsers кеширует поиск пользователя по API-ключу.
// В кеш попадают только найденные пользователи; ключ кеша: sha256 от API-ключа.
// Поиск по логину идёт мимо кеша: там нужен хэш пароля.
//
// Отозванный ключ продолжает приниматься, пока жива запись в кеше, то есть
// не дольше ttl. При ttl <= 0 кеш выключен и каждый поиск идёт в хранилище.
type CachedUsers struct {
	next domain.UsersRepo
	kv   KV
	ttl  int // секунд
	log  zerolog.Logger
}

func NewCachedUsers(next domain.UsersRepo, kv KV, ttlSeconds int, log zerolog.Logger) *CachedUsers {
	return &CachedUsers{next: next, kv: kv, ttl: ttlSeconds, log: log}
}

func (c *CachedUsers) enabled() bool { return c.kv != nil && c.ttl > 0 }

func (c *CachedUsers) UserByAPIKey(ctx context.Context, key string) (domain.User, error) {
	if !c.enabled() {
		return c.next.UserByAPIKey(ctx, key)
	}
	ck := domain.CacheKeyAPIKey(key)

	b, err := c.kv.Get(ctx, ck)
	if err != nil {
		// кеш недоступен: идём в базу
		c.log.Warn().Err(err).Msg("api key cache get failed")
	} else if len(b) > 0 {
		var u domain.User
		if err := json.Unmarshal(b, &u); err == nil {
			return u, nil
		}
		c.log.Warn().Msg("api key cache entry is corrupted")
	}

	u, err := c.next.UserByAPIKey(ctx, key)
	if err != nil {
		return domain.User{}, err
	}

	if buf, err := json.Marshal(u); err == nil {
		if err := c.kv.Set(ctx, ck, buf, c.ttl); err != nil {
			c.log.Warn().Err(err).Msg("api key cache set failed")
		}
	}
	return u, nil
}

func (c *CachedUsers) UserByLogin(ctx context.Context, login string) (domain.User, error) {
	return c.next.UserByLogin(ctx, login)
}
