// Package storage keeps rendered invoice PDFs in object storage and hands out
// their public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/smallbiznis/billdesk/internal/invoice/domain"
	"go.uber.org/zap"
)

const (
	pdfContentType = "application/pdf"
	putAttempts    = 3
)

var ErrInvalidKey = errors.New("invalid_artifact_key")

// Store is an object store scoped to one bucket.
type Store interface {
	// Put writes data under key, replacing any existing object.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	PublicURL(key string) string
}

// ArtifactStore stores invoice PDFs and guarantees the URLs it returns are
// absolute https references.
type ArtifactStore struct {
	store         Store
	timeout       time.Duration
	retryInterval time.Duration
	log           *zap.Logger
}

func NewArtifactStore(store Store, log *zap.Logger) *ArtifactStore {
	return &ArtifactStore{
		store:         store,
		timeout:       30 * time.Second,
		retryInterval: 200 * time.Millisecond,
		log:           log.Named("storage.artifact"),
	}
}

// Store uploads buf under fileName (upsert) and returns its public URL.
func (a *ArtifactStore) Store(ctx context.Context, buf []byte, fileName string) (string, error) {
	if err := validateKey(fileName); err != nil {
		return "", err
	}
	if len(buf) == 0 {
		return "", fmt.Errorf("%w: empty artifact", domain.ErrArtifactUploadFailed)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.put(ctx, fileName, buf); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrArtifactUploadFailed, err)
	}

	publicURL := a.store.PublicURL(fileName)
	if err := ValidatePublicURL(publicURL); err != nil {
		a.log.Error("store produced unusable url", zap.String("key", fileName), zap.String("url", publicURL))
		return "", err
	}

	a.log.Debug("artifact stored", zap.String("key", fileName), zap.Int("bytes", len(buf)))
	return publicURL, nil
}

// put retries transient upload failures. Puts are upserts, so repeating one
// is safe.
func (a *ArtifactStore) put(ctx context.Context, key string, buf []byte) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = a.retryInterval

	op := func() error {
		err := a.store.Put(ctx, key, buf, pdfContentType)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		a.log.Warn("artifact upload failed, retrying",
			zap.String("key", key),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}
	return backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(policy, putAttempts-1), ctx), notify)
}

// Has reports whether the artifact is still present in the bucket.
func (a *ArtifactStore) Has(ctx context.Context, fileName string) (bool, error) {
	if err := validateKey(fileName); err != nil {
		return false, err
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.store.Exists(ctx, fileName)
}

// Remove deletes the artifact. Missing objects are not an error.
func (a *ArtifactStore) Remove(ctx context.Context, fileName string) error {
	if err := validateKey(fileName); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.store.Delete(ctx, fileName)
}

// ValidatePublicURL requires an absolute https URL with a host.
func ValidatePublicURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrArtifactURLInvalid, err)
	}
	if !strings.EqualFold(u.Scheme, "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", domain.ErrArtifactURLInvalid, raw)
	}
	return nil
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// joinPublicURL appends the escaped key to base.
func joinPublicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(key)
}
