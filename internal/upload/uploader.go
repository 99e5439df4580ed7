// Package upload turns image bytes into permanent, deduplicated CDN URLs.
package upload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"mailforge/internal/logging"
	"mailforge/internal/storage"
)

// contentIDLength is the hex-digit prefix of the digest used as the
// content identifier. 16 characters is sufficient entropy for this use.
const contentIDLength = 16

// keyPrefix namespaces uploaded email images in the backend.
const keyPrefix = "emails/"

// ErrEmptyAsset indicates a zero-length image was submitted for upload.
var ErrEmptyAsset = errors.New("empty asset")

// Uploader stores image blobs content-addressed: the storage key derives
// from a digest of the bytes, so identical content resolves to one URL no
// matter how many paths reference it, within a request or across requests.
//
// Upload is safe to call concurrently. Concurrent calls with identical
// bytes coalesce onto a single backend operation; later callers wait for
// the first and share its result.
type Uploader struct {
	backend storage.Backend
	logger  logging.Logger

	mu       sync.Mutex
	inflight map[string]*pending

	authMu   sync.Mutex
	authFail error
}

type pending struct {
	done chan struct{}
	url  string
	err  error
}

// New creates an Uploader over backend.
func New(backend storage.Backend, logger logging.Logger) *Uploader {
	return &Uploader{
		backend:  backend,
		logger:   logging.OrNop(logger),
		inflight: make(map[string]*pending),
	}
}

// Upload persists data and returns its permanent URL.
//
// After the backend rejects credentials once, every remaining call fails
// fast with the same error: re-issuing uploads against known-bad
// credentials would fail identically and only burn time.
func (u *Uploader) Upload(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyAsset
	}
	if err := u.authFailure(); err != nil {
		return "", err
	}

	id := ContentID(data)
	key := keyPrefix + id

	u.mu.Lock()
	if p, ok := u.inflight[id]; ok {
		u.mu.Unlock()
		select {
		case <-p.done:
			return p.url, p.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	p := &pending{done: make(chan struct{})}
	u.inflight[id] = p
	u.mu.Unlock()

	p.url, p.err = u.store(ctx, key, data)
	if p.err != nil {
		// Let a later call retry the same content.
		u.mu.Lock()
		delete(u.inflight, id)
		u.mu.Unlock()
		if errors.Is(p.err, storage.ErrAuth) {
			u.recordAuthFailure(p.err)
		}
	}
	close(p.done)
	return p.url, p.err
}

func (u *Uploader) store(ctx context.Context, key string, data []byte) (string, error) {
	url, ok, err := u.backend.Probe(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrAuth) {
			return "", err
		}
		// A failed probe only costs the dedup shortcut; uploading under
		// the same key is harmless either way.
		u.logger.Warn("Probe for %s failed, uploading anyway: %v", key, err)
	} else if ok {
		u.logger.Debug("Reusing existing upload for %s", key)
		return url, nil
	}

	url, err = u.backend.Store(ctx, key, data)
	if err != nil {
		return "", fmt.Errorf("store %s: %w", key, err)
	}
	u.logger.Debug("Stored %d bytes as %s", len(data), key)
	return url, nil
}

func (u *Uploader) authFailure() error {
	u.authMu.Lock()
	defer u.authMu.Unlock()
	return u.authFail
}

func (u *Uploader) recordAuthFailure(err error) {
	u.authMu.Lock()
	defer u.authMu.Unlock()
	if u.authFail == nil {
		u.authFail = err
	}
}

// ContentID computes the content identifier for an image blob: the first
// 16 hex characters of its SHA-256 digest. Identical bytes always produce
// the same identifier regardless of filename.
func ContentID(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:contentIDLength]
}
