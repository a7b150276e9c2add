package playback

import (
	"context"
	"sync"
	"time"

	"github.com/echophrase/echophrase/internal/audiocache"
)

// MockPlayer is a Player for tests: it records what it was asked to play
// and simulates playback with a configurable duration.
type MockPlayer struct {
	// PlayDuration is how long a simulated playback lasts; zero returns
	// immediately
	PlayDuration time.Duration
	// PlayErr, when set, is returned by every Play call
	PlayErr error

	mu       sync.Mutex
	plays    []*audiocache.Artifact
	contexts []context.Context
	stop     chan struct{}
	closed   bool
}

// NewMockPlayer creates a mock player
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{}
}

// Play records the artifact and blocks for PlayDuration or until
// stopped/cancelled
func (m *MockPlayer) Play(ctx context.Context, artifact *audiocache.Artifact) error {
	m.mu.Lock()
	if m.PlayErr != nil {
		err := m.PlayErr
		m.mu.Unlock()
		return err
	}
	m.plays = append(m.plays, artifact)
	m.contexts = append(m.contexts, ctx)
	stop := make(chan struct{})
	m.stop = stop
	duration := m.PlayDuration
	m.mu.Unlock()

	if duration == 0 {
		return nil
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-stop:
		return nil
	case <-timer.C:
		return nil
	}
}

// Stop interrupts the current simulated playback
func (m *MockPlayer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
}

// Close marks the player closed
func (m *MockPlayer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// LastPlayContext returns the context passed to the most recent Play
func (m *MockPlayer) LastPlayContext() context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.contexts) == 0 {
		return nil
	}
	return m.contexts[len(m.contexts)-1]
}

// Plays returns a copy of the recorded artifacts
func (m *MockPlayer) Plays() []*audiocache.Artifact {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*audiocache.Artifact(nil), m.plays...)
}

// Closed reports whether Close was called
func (m *MockPlayer) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
