package playback

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/echophrase/echophrase/internal/audiocache"
)

// State is the controller's lifecycle position
type State int

const (
	// StateIdle means no session is active
	StateIdle State = iota
	// StateLoading means audio is being resolved for the active session
	StateLoading
	// StatePlaying means the active session is audible
	StatePlaying
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// Mode selects what unit of the catalog a session plays
type Mode string

const (
	// ModeSentence plays a full sentence
	ModeSentence Mode = "sentence"
	// ModePhrase plays a single phrase of a sentence
	ModePhrase Mode = "phrase"
)

// TextSource supplies catalog text by position
type TextSource interface {
	SentenceText(index int) (string, bool)
	PhraseText(sentence, phrase int) (string, bool)
}

// Resolver turns text into a playable artifact
type Resolver interface {
	Resolve(ctx context.Context, text string) (*audiocache.Artifact, error)
}

// Status is a snapshot of the controller for the API
type Status struct {
	State     string `json:"state"`
	IsLoading bool   `json:"is_loading"`
	IsPlaying bool   `json:"is_playing"`
	Mode      string `json:"mode,omitempty"`
	Sentence  int    `json:"sentence"`
	Phrase    int    `json:"phrase"`
	Error     string `json:"error,omitempty"`
}

// Controller serializes playback: starting a session supersedes whatever
// session was loading or playing. Supersession is token-based: every
// session takes the next token, and a session whose token no longer
// matches the controller's discards its own results instead of touching
// shared state.
type Controller struct {
	resolver Resolver
	texts    TextSource
	player   Player

	mu       sync.Mutex
	token    uint64
	state    State
	cancel   context.CancelFunc
	mode     Mode
	sentence int
	phrase   int
	lastErr  error
}

// NewController creates an idle controller
func NewController(resolver Resolver, texts TextSource, player Player) *Controller {
	return &Controller{
		resolver: resolver,
		texts:    texts,
		player:   player,
		state:    StateIdle,
	}
}

// PlaySentence starts a session for the sentence at the index
func (c *Controller) PlaySentence(sentence int) error {
	text, ok := c.texts.SentenceText(sentence)
	if !ok {
		return fmt.Errorf("no sentence at index %d", sentence)
	}
	c.start(ModeSentence, sentence, 0, text)
	return nil
}

// PlayPhrase starts a session for one phrase of a sentence
func (c *Controller) PlayPhrase(sentence, phrase int) error {
	text, ok := c.texts.PhraseText(sentence, phrase)
	if !ok {
		return fmt.Errorf("no phrase %d in sentence %d", phrase, sentence)
	}
	c.start(ModePhrase, sentence, phrase, text)
	return nil
}

// start claims the next token, cancels the previous session, and launches
// the new one
func (c *Controller) start(mode Mode, sentence, phrase int, text string) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.token++
	token := c.token

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.state = StateLoading
	c.mode = mode
	c.sentence = sentence
	c.phrase = phrase
	c.lastErr = nil
	c.mu.Unlock()

	go c.run(ctx, token, text)
}

// Stop cancels the active session, if any
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	// Bump the token so an in-flight session discards its result
	c.token++
	c.state = StateIdle
}

// Status returns a snapshot of the controller
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := Status{
		State:     c.state.String(),
		IsLoading: c.state == StateLoading,
		IsPlaying: c.state == StatePlaying,
		Mode:      string(c.mode),
		Sentence:  c.sentence,
		Phrase:    c.phrase,
	}
	if c.lastErr != nil {
		status.Error = c.lastErr.Error()
	}
	return status
}

// Close stops the active session and releases the player
func (c *Controller) Close() error {
	c.Stop()
	return c.player.Close()
}

// run executes one session. The resolve runs under a background context
// so a cancelled session still finishes synthesis and leaves the cache
// warm; only the audible part honors the session context.
func (c *Controller) run(ctx context.Context, token uint64, text string) {
	artifact, err := c.resolver.Resolve(context.Background(), text)

	c.mu.Lock()
	if token != c.token {
		c.mu.Unlock()
		artifact.Release()
		return
	}
	if err != nil {
		c.state = StateIdle
		c.lastErr = err
		// Token is current, so c.cancel is this session's; release it
		c.cancel()
		c.cancel = nil
		c.mu.Unlock()
		log.Printf("[Playback] Session failed to load audio: %v", err)
		return
	}
	c.state = StatePlaying
	c.mu.Unlock()

	playErr := c.player.Play(ctx, artifact)
	artifact.Release()

	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.token {
		return
	}
	c.state = StateIdle
	c.cancel()
	c.cancel = nil
	if playErr != nil && !errors.Is(playErr, context.Canceled) {
		c.lastErr = playErr
		log.Printf("[Playback] Session ended with error: %v", playErr)
	}
}
