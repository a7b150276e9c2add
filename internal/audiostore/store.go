// Package audiostore exposes the durable, shared audio store keyed by
// content-addressed cache keys.
package audiostore

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/echophrase/echophrase/internal/cachekey"
	"github.com/echophrase/echophrase/internal/storage"
)

const audioContentType = "audio/mpeg"

// Store wraps a storage adapter with the audio pipeline's access pattern:
// existence check, idempotent upload, and public URL resolution.
type Store struct {
	adapter       storage.Adapter
	publicBaseURL string
}

// New creates a store serving public URLs under the given base URL
func New(adapter storage.Adapter, publicBaseURL string) *Store {
	return &Store{
		adapter:       adapter,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

// Exists reports whether audio for the key is already stored. It fails
// closed: a transport or auth error counts as "not present" so the caller
// takes the fallback path instead of failing the user-visible operation.
func (s *Store) Exists(ctx context.Context, key cachekey.Key) bool {
	exists, err := s.adapter.Exists(ctx, key.ObjectPath())
	if err != nil {
		log.Printf("[AudioStore] Warning: existence check failed for %s, taking fallback path: %v", key.ObjectPath(), err)
		return false
	}
	return exists
}

// Upload stores audio bytes under the key and returns the canonical public
// URL. Content is deterministic per key, so a second producer racing on the
// same key overwrites with equivalent bytes; redundant uploads are safe.
func (s *Store) Upload(ctx context.Context, key cachekey.Key, data []byte) (string, error) {
	if err := s.adapter.Put(ctx, key.ObjectPath(), bytes.NewReader(data), audioContentType); err != nil {
		return "", fmt.Errorf("failed to upload audio for %s: %w", key.ObjectPath(), err)
	}
	return s.URLFor(key), nil
}

// URLFor composes the public URL for the key. Pure; no network call.
func (s *Store) URLFor(key cachekey.Key) string {
	return s.publicBaseURL + "/" + key.ObjectPath()
}
