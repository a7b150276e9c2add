// Package cachekey derives content-addressed keys for synthesized audio.
package cachekey

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Key addresses one synthesized audio object in the store
type Key struct {
	Voice       string
	Fingerprint string
}

// Derive computes the key for a text/voice pair. It is pure: the same
// normalized text and voice always produce the same key, across process
// restarts. Normalization is trim plus lowercase; punctuation and internal
// whitespace stay significant.
func Derive(text, voice string) Key {
	normalized := strings.ToLower(strings.TrimSpace(text))
	sum := sha256.Sum256([]byte(voice + "\n" + normalized))
	return Key{
		Voice:       voice,
		Fingerprint: hex.EncodeToString(sum[:]),
	}
}

// ObjectPath returns the storage path for the key, namespaced by voice
func (k Key) ObjectPath() string {
	return k.Voice + "/" + k.Fingerprint + ".mp3"
}
