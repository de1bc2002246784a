package redisx

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type Cache struct {
	rdb    *redis.Client
	logger zerolog.Logger
}

type Config struct {
	Addr     string
	DB       int
	Password string
}

func New(cfg Config, logger zerolog.Logger) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	})
	return NewWithClient(rdb, logger)
}

// NewWithClient оборачивает готовый клиент (в тестах: miniredis)
func NewWithClient(rdb *redis.Client, logger zerolog.Logger) *Cache {
	return &Cache{rdb: rdb, logger: logger}
}

func (c *Cache) Ping(ctx context.Context) error {
	err := c.rdb.Ping(ctx).Err()
	if err != nil {
		c.logger.Error().Err(err).Msg("PING failed")
	} else {
		c.logger.Debug().Msg("PING ok")
	}
	return err
}

func (c *Cache) Close() {
	if c.rdb == nil {
		c.logger.Info().Msg("nothing to close")
		return
	}

	if err := c.rdb.Close(); err != nil {
		c.logger.Error().Err(err).Msg("error while closing")
		return
	}

	c.logger.Info().Msg("closed")
}

// Get возвращает nil, nil если ключа нет.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug().Str("key", key).Msg("GET: not found")
		return nil, nil
	}
	if err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("GET failed")
	} else {
		c.logger.Debug().Str("key", key).Int("bytes", len(b)).Msg("GET: hit")
	}
	return b, err
}

func (c *Cache) Set(ctx context.Context, key string, val []byte, ttlSeconds int) error {
	ttl := seconds(ttlSeconds)
	err := c.rdb.Set(ctx, key, val, ttl).Err()
	if err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("SET failed")
	} else {
		c.logger.Debug().Str("key", key).Dur("ttl", ttl).Msg("SET ok")
	}
	return err
}

// delIfEquals: удалить ключ, только если в нём всё ещё наше значение
var delIfEquals = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// DelIfEquals удаляет key, только если его значение равно val.
// Возвращает true, если ключ был удалён.
func (c *Cache) DelIfEquals(ctx context.Context, key string, val []byte) (bool, error) {
	n, err := delIfEquals.Run(ctx, c.rdb, []string{key}, val).Int64()
	switch {
	case err != nil:
		c.logger.Error().Err(err).Str("key", key).Msg("DEL (compare) failed")
	case n == 0:
		c.logger.Debug().Str("key", key).Msg("DEL (compare) skipped (owner changed)")
	default:
		c.logger.Debug().Str("key", key).Msg("DEL (compare) ok")
	}
	return n > 0, err
}

// SetNX устанавливает значение только если ключ ещё не существует.
func (c *Cache) SetNX(ctx context.Context, key string, val []byte, ttlSeconds int) (bool, error) {
	ttl := seconds(ttlSeconds)
	ok, err := c.rdb.SetNX(ctx, key, val, ttl).Result()
	switch {
	case err != nil:
		c.logger.Error().Err(err).Str("key", key).Msg("SETNX failed")
	case ok:
		c.logger.Debug().Str("key", key).Dur("ttl", ttl).Msg("SETNX ok")
	default:
		c.logger.Debug().Str("key", key).Msg("SETNX skipped (already exists)")
	}
	return ok, err
}

// Publish отправляет сообщение в канал, возвращает число получателей.
func (c *Cache) Publish(ctx context.Context, channel string, payload []byte) (int64, error) {
	n, err := c.rdb.Publish(ctx, channel, payload).Result()
	if err != nil {
		c.logger.Error().Err(err).Str("channel", channel).Msg("PUBLISH failed")
	} else {
		c.logger.Debug().Str("channel", channel).Int64("receivers", n).Msg("PUBLISH ok")
	}
	return n, err
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}
