package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisx "github.com/EgorLis/infdot-upload/internal/infra/cache/redis"
)

func setupStore(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *Store) {
	t.Helper()
	s := miniredis.RunT(t)
	c := redisx.NewWithClient(redis.NewClient(&redis.Options{Addr: s.Addr()}), zerolog.Nop())
	t.Cleanup(c.Close)
	return s, NewStore(c, ttl)
}

func TestStore_AcquireRelease(t *testing.T) {
	_, st := setupStore(t, time.Minute)
	ctx := context.Background()
	v := uuid.New()

	token, ok, err := st.Acquire(ctx, v, "report.pdf")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = st.Acquire(ctx, v, "report.pdf")
	require.NoError(t, err)
	assert.False(t, ok, "second upload of the same name must wait")

	// другое имя или другая версия: независимы
	_, ok, err = st.Acquire(ctx, v, "other.pdf")
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = st.Acquire(ctx, uuid.New(), "report.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, st.Release(ctx, v, "report.pdf", token))
	_, ok, err = st.Acquire(ctx, v, "report.pdf")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_ReleaseKeepsNextHolder(t *testing.T) {
	s, st := setupStore(t, 5*time.Second)
	ctx := context.Background()
	v := uuid.New()

	first, ok, err := st.Acquire(ctx, v, "a.txt")
	require.NoError(t, err)
	require.True(t, ok)

	// первая загрузка зависла дольше ttl, пару забрала вторая
	s.FastForward(6 * time.Second)
	second, ok, err := st.Acquire(ctx, v, "a.txt")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, st.Release(ctx, v, "a.txt", first))

	_, ok, err = st.Acquire(ctx, v, "a.txt")
	require.NoError(t, err)
	assert.False(t, ok, "stale release must not free the second holder's lock")

	require.NoError(t, st.Release(ctx, v, "a.txt", second))
	_, ok, err = st.Acquire(ctx, v, "a.txt")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_Expires(t *testing.T) {
	s, st := setupStore(t, 5*time.Second)
	ctx := context.Background()
	v := uuid.New()

	_, ok, err := st.Acquire(ctx, v, "a.txt")
	require.NoError(t, err)
	require.True(t, ok)

	s.FastForward(6 * time.Second)

	_, ok, err = st.Acquire(ctx, v, "a.txt")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewStore_DefaultTTL(t *testing.T) {
	st := NewStore(nil, 0)
	assert.Equal(t, 30*time.Second, st.ttl)
}
