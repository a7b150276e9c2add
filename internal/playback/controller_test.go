package playback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/echophrase/echophrase/internal/audiocache"
	"github.com/echophrase/echophrase/internal/preload"
)

// gateResolver blocks every Resolve on the gate channel when one is set,
// and tags each artifact's URL with the resolved text.
type gateResolver struct {
	gate chan struct{}
	fail bool

	mu    sync.Mutex
	calls []string
}

func (r *gateResolver) Resolve(ctx context.Context, text string) (*audiocache.Artifact, error) {
	r.mu.Lock()
	r.calls = append(r.calls, text)
	r.mu.Unlock()

	if r.gate != nil {
		<-r.gate
	}
	if r.fail {
		return nil, errors.New("synthesis gateway unavailable")
	}
	return audiocache.NewRemoteArtifact("mock://" + text), nil
}

func (r *gateResolver) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type fakeTexts struct {
	sentences []string
	phrases   map[int][]string
}

func (f *fakeTexts) SentenceText(index int) (string, bool) {
	if index < 0 || index >= len(f.sentences) {
		return "", false
	}
	return f.sentences[index], true
}

func (f *fakeTexts) PhraseText(sentence, phrase int) (string, bool) {
	phrases := f.phrases[sentence]
	if phrase < 0 || phrase >= len(phrases) {
		return "", false
	}
	return phrases[phrase], true
}

func testTexts() *fakeTexts {
	return &fakeTexts{
		sentences: []string{"one", "two", "three"},
		phrases:   map[int][]string{0: {"o", "ne"}},
	}
}

func waitForState(t *testing.T, c *Controller, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.Status().State == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for state %q, still %q", want, c.Status().State)
}

func waitForCalls(t *testing.T, r *gateResolver, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if r.callCount() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %d resolve calls, got %d", want, r.callCount())
}

func TestControllerPlaySentence(t *testing.T) {
	resolver := &gateResolver{}
	player := NewMockPlayer()
	controller := NewController(resolver, testTexts(), player)

	if err := controller.PlaySentence(1); err != nil {
		t.Fatalf("PlaySentence failed: %v", err)
	}
	waitForState(t, controller, "idle")

	plays := player.Plays()
	if len(plays) != 1 || plays[0].URL != "mock://two" {
		t.Errorf("Expected one play of sentence two, got %v", plays)
	}

	status := controller.Status()
	if status.Mode != "sentence" || status.Sentence != 1 || status.Error != "" {
		t.Errorf("Unexpected status: %+v", status)
	}
}

func TestControllerPlayPhrase(t *testing.T) {
	resolver := &gateResolver{}
	player := NewMockPlayer()
	controller := NewController(resolver, testTexts(), player)

	if err := controller.PlayPhrase(0, 1); err != nil {
		t.Fatalf("PlayPhrase failed: %v", err)
	}
	waitForState(t, controller, "idle")

	plays := player.Plays()
	if len(plays) != 1 || plays[0].URL != "mock://ne" {
		t.Errorf("Expected one play of phrase 'ne', got %v", plays)
	}
}

func TestControllerRejectsOutOfRange(t *testing.T) {
	controller := NewController(&gateResolver{}, testTexts(), NewMockPlayer())

	if err := controller.PlaySentence(99); err == nil {
		t.Error("Expected error for out-of-range sentence")
	}
	if err := controller.PlayPhrase(1, 0); err == nil {
		t.Error("Expected error for sentence without phrases")
	}
	if status := controller.Status(); status.State != "idle" {
		t.Errorf("Rejected play must not change state, got %q", status.State)
	}
}

func TestControllerSupersedesInFlightSession(t *testing.T) {
	gate := make(chan struct{})
	resolver := &gateResolver{gate: gate}
	player := NewMockPlayer()
	controller := NewController(resolver, testTexts(), player)

	if err := controller.PlaySentence(0); err != nil {
		t.Fatalf("First PlaySentence failed: %v", err)
	}
	waitForCalls(t, resolver, 1)

	if err := controller.PlaySentence(1); err != nil {
		t.Fatalf("Second PlaySentence failed: %v", err)
	}
	waitForCalls(t, resolver, 2)

	close(gate)
	waitForState(t, controller, "idle")

	plays := player.Plays()
	if len(plays) != 1 || plays[0].URL != "mock://two" {
		t.Errorf("Expected only the superseding session to play, got %v", plays)
	}
}

func TestControllerStopDuringLoading(t *testing.T) {
	gate := make(chan struct{})
	resolver := &gateResolver{gate: gate}
	player := NewMockPlayer()
	controller := NewController(resolver, testTexts(), player)

	if err := controller.PlaySentence(0); err != nil {
		t.Fatalf("PlaySentence failed: %v", err)
	}
	waitForCalls(t, resolver, 1)

	if status := controller.Status(); status.State != "loading" {
		t.Fatalf("Expected loading state, got %q", status.State)
	}

	controller.Stop()
	close(gate)

	// The stopped session must discard its result instead of playing it
	time.Sleep(50 * time.Millisecond)
	if plays := player.Plays(); len(plays) != 0 {
		t.Errorf("Expected no plays after stop during loading, got %v", plays)
	}
	if status := controller.Status(); status.State != "idle" {
		t.Errorf("Expected idle state, got %q", status.State)
	}
}

func TestControllerStopDuringPlaying(t *testing.T) {
	resolver := &gateResolver{}
	player := NewMockPlayer()
	player.PlayDuration = 5 * time.Second
	controller := NewController(resolver, testTexts(), player)

	if err := controller.PlaySentence(0); err != nil {
		t.Fatalf("PlaySentence failed: %v", err)
	}
	waitForState(t, controller, "playing")

	controller.Stop()
	waitForState(t, controller, "idle")

	if status := controller.Status(); status.Error != "" {
		t.Errorf("Stop must not surface an error, got %q", status.Error)
	}
}

func TestControllerResolveFailure(t *testing.T) {
	resolver := &gateResolver{fail: true}
	player := NewMockPlayer()
	controller := NewController(resolver, testTexts(), player)

	if err := controller.PlaySentence(0); err != nil {
		t.Fatalf("PlaySentence failed: %v", err)
	}
	waitForState(t, controller, "idle")

	if plays := player.Plays(); len(plays) != 0 {
		t.Errorf("Expected no plays on resolve failure, got %v", plays)
	}
	if status := controller.Status(); status.Error == "" {
		t.Error("Expected resolve failure surfaced in status")
	}

	// The failure does not wedge the controller
	if err := controller.PlaySentence(1); err != nil {
		t.Fatalf("PlaySentence after failure: %v", err)
	}
}

func TestControllerSequentialSessions(t *testing.T) {
	resolver := &gateResolver{}
	player := NewMockPlayer()
	controller := NewController(resolver, testTexts(), player)

	for i := 0; i < 3; i++ {
		if err := controller.PlaySentence(i); err != nil {
			t.Fatalf("PlaySentence(%d) failed: %v", i, err)
		}
		waitForState(t, controller, "idle")
	}

	if plays := player.Plays(); len(plays) != 3 {
		t.Errorf("Expected 3 plays, got %d", len(plays))
	}
}

func TestControllerReleasesSessionContext(t *testing.T) {
	resolver := &gateResolver{}
	player := NewMockPlayer()
	controller := NewController(resolver, testTexts(), player)

	if err := controller.PlaySentence(0); err != nil {
		t.Fatalf("PlaySentence failed: %v", err)
	}
	waitForState(t, controller, "idle")

	// A finished session must not leave its context alive
	ctx := player.LastPlayContext()
	if ctx == nil {
		t.Fatal("Expected a recorded play context")
	}
	select {
	case <-ctx.Done():
	default:
		t.Error("Expected session context released after playback finished")
	}
}

func TestPreloadDoesNotDisturbActiveSession(t *testing.T) {
	resolver := &gateResolver{}
	player := NewMockPlayer()
	player.PlayDuration = 5 * time.Second
	controller := NewController(resolver, testTexts(), player)

	if err := controller.PlaySentence(0); err != nil {
		t.Fatalf("PlaySentence failed: %v", err)
	}
	waitForState(t, controller, "playing")

	scheduler := preload.NewScheduler(resolver, testTexts(), 2)
	scheduler.OnSelectionChanged(0)
	scheduler.Wait()

	// Warm-ups for upcoming sentences share the resolver but never touch
	// session state
	status := controller.Status()
	if !status.IsPlaying || status.Sentence != 0 {
		t.Errorf("Expected session untouched by preload, got %+v", status)
	}

	controller.Stop()
}

func TestControllerClose(t *testing.T) {
	player := NewMockPlayer()
	controller := NewController(&gateResolver{}, testTexts(), player)

	if err := controller.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !player.Closed() {
		t.Error("Expected player closed")
	}
}
