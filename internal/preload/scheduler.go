// Package preload speculatively warms the playback cache for content the
// user is likely to request soon.
package preload

import (
	"context"
	"log"
	"sync"

	"github.com/echophrase/echophrase/internal/audiocache"
)

// DefaultLookahead is the number of upcoming sentences warmed per
// selection change
const DefaultLookahead = 3

// Resolver is the subset of the playback cache the scheduler uses
type Resolver interface {
	Resolve(ctx context.Context, text string) (*audiocache.Artifact, error)
}

// TextSource supplies sentence text by index
type TextSource interface {
	SentenceText(index int) (string, bool)
}

// Scheduler fires best-effort warm-up resolves for upcoming sentences.
// Warm-ups are detached: no caller awaits them and their outcome never
// reaches playback state. The ledger prevents duplicate warm-ups within
// one process lifetime; a failed warm-up drops its entry so a later
// selection pass or manual play can retry.
type Scheduler struct {
	resolver  Resolver
	texts     TextSource
	lookahead int

	mu     sync.Mutex
	ledger map[string]struct{}

	wg sync.WaitGroup // tracks in-flight warm-ups, for tests and shutdown
}

// NewScheduler creates a scheduler with the given lookahead window
func NewScheduler(resolver Resolver, texts TextSource, lookahead int) *Scheduler {
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}
	return &Scheduler{
		resolver:  resolver,
		texts:     texts,
		lookahead: lookahead,
		ledger:    make(map[string]struct{}),
	}
}

// OnSelectionChanged warms the cache for the sentences following the new
// selection. It never blocks: each warm-up runs in its own goroutine.
func (s *Scheduler) OnSelectionChanged(sentenceIndex int) {
	for i := sentenceIndex + 1; i <= sentenceIndex+s.lookahead; i++ {
		text, ok := s.texts.SentenceText(i)
		if !ok {
			break
		}
		if !s.claim(text) {
			continue
		}

		s.wg.Add(1)
		go s.warm(text)
	}
}

// Wait blocks until all in-flight warm-ups finish
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// claim records the text in the ledger; false means already claimed
func (s *Scheduler) claim(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ledger[text]; ok {
		return false
	}
	s.ledger[text] = struct{}{}
	return true
}

// unclaim drops a ledger entry so the text can be warmed again
func (s *Scheduler) unclaim(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ledger, text)
}

func (s *Scheduler) warm(text string) {
	defer s.wg.Done()

	artifact, err := s.resolver.Resolve(context.Background(), text)
	if err != nil {
		s.unclaim(text)
		log.Printf("[Preload] Warm-up failed (will retry on next pass): %v", err)
		return
	}
	artifact.Release()
}
