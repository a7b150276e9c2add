// Package audiocache resolves text into playable audio artifacts, preferring
// the durable remote store and degrading to a process-local memory cache.
package audiocache

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/echophrase/echophrase/internal/cachekey"
	"github.com/echophrase/echophrase/internal/provider"
)

// ErrSynthesisFailed reports that no cached artifact existed and the
// synthesis gateway could not produce one
var ErrSynthesisFailed = errors.New("synthesis failed")

// AudioStore is the subset of the remote store the cache depends on
type AudioStore interface {
	Exists(ctx context.Context, key cachekey.Key) bool
	Upload(ctx context.Context, key cachekey.Key, data []byte) (string, error)
	URLFor(key cachekey.Key) string
}

// Cache orchestrates key derivation, the remote store, the memory
// fallback, and the synthesis gateway behind a single Resolve call.
type Cache struct {
	store  AudioStore
	tts    provider.TTSProvider
	memory *MemoryCache
	voice  string
}

// New creates a playback cache speaking with the given voice
func New(store AudioStore, tts provider.TTSProvider, memory *MemoryCache, voice string) *Cache {
	return &Cache{
		store:  store,
		tts:    tts,
		memory: memory,
		voice:  voice,
	}
}

// Voice returns the configured synthesis voice
func (c *Cache) Voice() string {
	return c.voice
}

// Resolve returns a playable artifact for the text. Resolution order:
// remote store hit (URL, no byte fetch), memory cache hit (bytes), then
// synthesis. Synthesized audio is uploaded so future resolves hit the
// store; if the upload fails the bytes go to the memory cache instead.
// Remote store failures degrade silently; only a gateway failure on a
// full miss surfaces an error, wrapping ErrSynthesisFailed. Failures are
// never cached.
func (c *Cache) Resolve(ctx context.Context, text string) (*Artifact, error) {
	key := cachekey.Derive(text, c.voice)

	if c.store.Exists(ctx, key) {
		return NewRemoteArtifact(c.store.URLFor(key)), nil
	}

	if data, ok := c.memory.Get(text); ok {
		go c.promote(text, key, data)
		return NewLocalArtifact(data), nil
	}

	resp, err := c.tts.Synthesize(ctx, provider.TTSRequest{
		Text:    text,
		VoiceID: c.voice,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSynthesisFailed, err)
	}

	url, err := c.store.Upload(ctx, key, resp.AudioData)
	if err != nil {
		log.Printf("[AudioCache] Warning: upload failed for %s, keeping audio in memory: %v", key.ObjectPath(), err)
		if putErr := c.memory.Put(text, resp.AudioData); putErr != nil {
			log.Printf("[AudioCache] Memory cache rejected %d bytes: %v", len(resp.AudioData), putErr)
		}
		return NewLocalArtifact(resp.AudioData), nil
	}

	return NewRemoteArtifact(url), nil
}

// promote retries the upload behind a memory entry so the durable store
// heals once it is reachable again. On success the memory entry is
// dropped; future resolves hit the store. Uploads are idempotent, so
// concurrent promotions of the same key are safe.
func (c *Cache) promote(text string, key cachekey.Key, data []byte) {
	if _, err := c.store.Upload(context.Background(), key, data); err != nil {
		return
	}
	c.memory.Delete(text)
	log.Printf("[AudioCache] Promoted %s from memory to the store", key.ObjectPath())
}
