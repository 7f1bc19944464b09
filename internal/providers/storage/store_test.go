package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smallbiznis/billdesk/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingStore struct{ *MemoryStore }

func (failingStore) Put(context.Context, string, []byte, string) error {
	return errors.New("bucket unavailable")
}

// flakyStore fails its first `failures` puts.
type flakyStore struct {
	*MemoryStore
	failures int
	puts     int
}

func (f *flakyStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	f.puts++
	if f.puts <= f.failures {
		return errors.New("connection reset")
	}
	return f.MemoryStore.Put(ctx, key, data, contentType)
}

func newTestArtifactStore(store Store) *ArtifactStore {
	a := NewArtifactStore(store, zap.NewNop())
	a.retryInterval = time.Millisecond
	return a
}

func TestArtifactStoreUpsert(t *testing.T) {
	mem := NewMemoryStore("https://cdn.example.com/invoices")
	a := NewArtifactStore(mem, zap.NewNop())

	url, err := a.Store(context.Background(), []byte("%PDF-first"), "INV-2024-001.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/invoices/INV-2024-001.pdf", url)

	again, err := a.Store(context.Background(), []byte("%PDF-second"), "INV-2024-001.pdf")
	require.NoError(t, err)
	assert.Equal(t, url, again)
	assert.Equal(t, 1, mem.Len())

	data, ok := mem.Get("INV-2024-001.pdf")
	require.True(t, ok)
	assert.Equal(t, "%PDF-second", string(data))
}

func TestArtifactStoreRejectsUnsafeKeys(t *testing.T) {
	a := NewArtifactStore(NewMemoryStore(""), zap.NewNop())
	for _, key := range []string{"", "INV/2024/001.pdf", `a\b.pdf`, "..pdf"} {
		_, err := a.Store(context.Background(), []byte("%PDF"), key)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestArtifactStoreRejectsInsecureURL(t *testing.T) {
	a := NewArtifactStore(NewMemoryStore("http://insecure.example.com"), zap.NewNop())
	_, err := a.Store(context.Background(), []byte("%PDF"), "INV-1.pdf")
	assert.ErrorIs(t, err, domain.ErrArtifactURLInvalid)
}

func TestArtifactStoreRetriesTransientPutFailure(t *testing.T) {
	store := &flakyStore{MemoryStore: NewMemoryStore(""), failures: putAttempts - 1}
	a := newTestArtifactStore(store)

	_, err := a.Store(context.Background(), []byte("%PDF"), "INV-1.pdf")
	require.NoError(t, err)
	assert.Equal(t, putAttempts, store.puts)
	assert.Equal(t, 1, store.Len())
}

func TestArtifactStoreGivesUpAfterRetries(t *testing.T) {
	store := &flakyStore{MemoryStore: NewMemoryStore(""), failures: putAttempts}
	a := newTestArtifactStore(store)

	_, err := a.Store(context.Background(), []byte("%PDF"), "INV-1.pdf")
	assert.ErrorIs(t, err, domain.ErrArtifactUploadFailed)
	assert.Equal(t, putAttempts, store.puts)
	assert.Zero(t, store.Len())
}

func TestArtifactStoreUploadFailure(t *testing.T) {
	a := newTestArtifactStore(failingStore{NewMemoryStore("")})
	_, err := a.Store(context.Background(), []byte("%PDF"), "INV-1.pdf")
	assert.ErrorIs(t, err, domain.ErrArtifactUploadFailed)

	_, err = NewArtifactStore(NewMemoryStore(""), zap.NewNop()).Store(context.Background(), nil, "INV-1.pdf")
	assert.ErrorIs(t, err, domain.ErrArtifactUploadFailed)
}

func TestValidatePublicURL(t *testing.T) {
	assert.NoError(t, ValidatePublicURL("https://x.supabase.co/storage/v1/object/public/invoices/INV-1.pdf"))
	assert.ErrorIs(t, ValidatePublicURL("http://x.example.com/a.pdf"), domain.ErrArtifactURLInvalid)
	assert.ErrorIs(t, ValidatePublicURL("/local/a.pdf"), domain.ErrArtifactURLInvalid)
	assert.ErrorIs(t, ValidatePublicURL("https:///a.pdf"), domain.ErrArtifactURLInvalid)
	assert.ErrorIs(t, ValidatePublicURL(""), domain.ErrArtifactURLInvalid)
}

func TestHasAndRemove(t *testing.T) {
	mem := NewMemoryStore("")
	a := NewArtifactStore(mem, zap.NewNop())
	_, err := a.Store(context.Background(), []byte("%PDF"), "INV-1.pdf")
	require.NoError(t, err)

	ok, err := a.Has(context.Background(), "INV-1.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, a.Remove(context.Background(), "INV-1.pdf"))
	ok, err = a.Has(context.Background(), "INV-1.pdf")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, a.Remove(context.Background(), "INV-1.pdf"))
}

func TestS3PublicURL(t *testing.T) {
	s := &S3Store{bucket: "invoices", region: "ap-south-1"}
	assert.Equal(t, "https://invoices.s3.ap-south-1.amazonaws.com/INV-1.pdf", s.PublicURL("INV-1.pdf"))

	s.publicBaseURL = "https://proj.supabase.co/storage/v1/object/public/invoices"
	assert.Equal(t, "https://proj.supabase.co/storage/v1/object/public/invoices/INV%201.pdf", s.PublicURL("INV 1.pdf"))
}
