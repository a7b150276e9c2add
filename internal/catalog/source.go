package catalog

import (
	"sync"

	"github.com/echophrase/echophrase/pkg/types"
)

// Source adapts the active catalog to index-based text lookup for the
// playback controller and the preload scheduler. The catalog can be
// swapped at runtime when a new one is uploaded.
type Source struct {
	mu      sync.RWMutex
	catalog *types.Catalog
}

// NewSource creates a source, optionally seeded with a catalog
func NewSource(catalog *types.Catalog) *Source {
	return &Source{catalog: catalog}
}

// SetCatalog replaces the active catalog
func (s *Source) SetCatalog(catalog *types.Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = catalog
}

// Catalog returns the active catalog, or nil if none is loaded
func (s *Source) Catalog() *types.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// SentenceCount returns the number of sentences in the active catalog
func (s *Source) SentenceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog == nil {
		return 0
	}
	return len(s.catalog.Sentences)
}

// SentenceText returns the full text of the sentence at the index
func (s *Source) SentenceText(index int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog == nil || index < 0 || index >= len(s.catalog.Sentences) {
		return "", false
	}
	return s.catalog.Sentences[index].Text, true
}

// PhraseText returns the text of one phrase of a sentence
func (s *Source) PhraseText(sentence, phrase int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog == nil || sentence < 0 || sentence >= len(s.catalog.Sentences) {
		return "", false
	}
	phrases := s.catalog.Sentences[sentence].Phrases
	if phrase < 0 || phrase >= len(phrases) {
		return "", false
	}
	return phrases[phrase].Text, true
}
