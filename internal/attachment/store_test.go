package attachment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgorLis/infdot-upload/internal/domain"
)

type fakeBlobs struct {
	puts    map[string][]byte
	deleted []string
	putErr  error
	lastCT  string
}

func (f *fakeBlobs) Put(_ context.Context, r io.Reader, size int64, hint, mime string) (domain.BlobPutResult, error) {
	if f.putErr != nil {
		return domain.BlobPutResult{}, f.putErr
	}
	b, _ := io.ReadAll(r)
	if f.puts == nil {
		f.puts = map[string][]byte{}
	}
	key := "attachments/" + hint
	f.puts[key] = b
	f.lastCT = mime
	return domain.BlobPutResult{StorageKey: key, Size: size, SHA256: []byte{0xab}}, nil
}

func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeRepo struct {
	inserted []domain.Attachment
	conflict bool
	err      error
}

func (f *fakeRepo) InsertAttachment(_ context.Context, a domain.Attachment) (domain.Attachment, bool, error) {
	if f.err != nil {
		return domain.Attachment{}, false, f.err
	}
	if f.conflict {
		return domain.Attachment{}, false, nil
	}
	a.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.inserted = append(f.inserted, a)
	return a, true, nil
}

// held: пара -> токен владельца
type fakeLocks struct {
	held     map[string]string
	err      error
	issued   int
	released int
}

func (f *fakeLocks) Acquire(_ context.Context, v domain.VersionID, name string) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	k := v.String() + name
	if _, busy := f.held[k]; busy {
		return "", false, nil
	}
	f.issued++
	token := fmt.Sprintf("token-%d", f.issued)
	f.held[k] = token
	return token, true, nil
}

func (f *fakeLocks) Release(_ context.Context, v domain.VersionID, name, token string) error {
	k := v.String() + name
	if f.held[k] == token {
		delete(f.held, k)
		f.released++
	}
	return nil
}

func newInput() domain.NewAttachment {
	return domain.NewAttachment{
		Version:     domain.Version{ID: uuid.New(), ProjectID: uuid.New(), Name: "1.0"},
		Author:      domain.User{ID: uuid.New(), Login: "alice"},
		Filename:    "notes.txt",
		ContentType: "text/plain",
		Content:     []byte("hello"),
	}
}

func TestCreate_Success(t *testing.T) {
	blobs, repo, locks := &fakeBlobs{}, &fakeRepo{}, &fakeLocks{held: map[string]string{}}
	st := NewStore(blobs, repo, locks, zerolog.Nop())
	in := newInput()

	a, created, err := st.Create(context.Background(), in)
	require.NoError(t, err)
	require.True(t, created)

	assert.Equal(t, in.Version.ID, a.VersionID)
	assert.Equal(t, in.Author.ID, a.AuthorID)
	assert.Equal(t, "notes.txt", a.Filename)
	assert.Equal(t, "", a.Description)
	assert.Equal(t, int64(5), a.SizeBytes)
	assert.Equal(t, "attachments/"+a.ID.String(), a.StorageKey)
	assert.Equal(t, []byte("hello"), blobs.puts[a.StorageKey])
	assert.Empty(t, blobs.deleted)
	assert.Equal(t, 1, locks.released)
	assert.Empty(t, locks.held)
}

func TestCreate_DefaultContentType(t *testing.T) {
	blobs := &fakeBlobs{}
	st := NewStore(blobs, &fakeRepo{}, nil, zerolog.Nop())
	in := newInput()
	in.ContentType = ""

	a, created, err := st.Create(context.Background(), in)
	require.NoError(t, err)
	require.True(t, created)
	assert.Equal(t, "application/octet-stream", a.ContentType)
	assert.Equal(t, "application/octet-stream", blobs.lastCT)
}

func TestCreate_LockHeldIsSoftFailure(t *testing.T) {
	blobs, repo := &fakeBlobs{}, &fakeRepo{}
	in := newInput()
	locks := &fakeLocks{held: map[string]string{in.Version.ID.String() + in.Filename: "other-upload"}}
	st := NewStore(blobs, repo, locks, zerolog.Nop())

	_, created, err := st.Create(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Empty(t, blobs.puts)
	assert.Empty(t, repo.inserted)
	assert.Zero(t, locks.released)
}

func TestCreate_LockError(t *testing.T) {
	st := NewStore(&fakeBlobs{}, &fakeRepo{}, &fakeLocks{err: errors.New("redis down")}, zerolog.Nop())

	_, created, err := st.Create(context.Background(), newInput())
	assert.EqualError(t, err, "lock: redis down")
	assert.False(t, created)
}

func TestCreate_ConflictRemovesBlob(t *testing.T) {
	blobs := &fakeBlobs{}
	locks := &fakeLocks{held: map[string]string{}}
	st := NewStore(blobs, &fakeRepo{conflict: true}, locks, zerolog.Nop())

	_, created, err := st.Create(context.Background(), newInput())
	require.NoError(t, err)
	assert.False(t, created)
	require.Len(t, blobs.deleted, 1)
	assert.Contains(t, blobs.puts, blobs.deleted[0])
	assert.Equal(t, 1, locks.released)
}

func TestCreate_InsertErrorRemovesBlob(t *testing.T) {
	blobs := &fakeBlobs{}
	st := NewStore(blobs, &fakeRepo{err: errors.New("db gone")}, nil, zerolog.Nop())

	_, created, err := st.Create(context.Background(), newInput())
	assert.EqualError(t, err, "db gone")
	assert.False(t, created)
	assert.Len(t, blobs.deleted, 1)
}

func TestCreate_PutError(t *testing.T) {
	blobs := &fakeBlobs{putErr: errors.New("bucket missing")}
	repo := &fakeRepo{}
	locks := &fakeLocks{held: map[string]string{}}
	st := NewStore(blobs, repo, locks, zerolog.Nop())

	_, created, err := st.Create(context.Background(), newInput())
	assert.EqualError(t, err, "bucket missing")
	assert.False(t, created)
	assert.Empty(t, repo.inserted)
	assert.Equal(t, 1, locks.released)
}
