// Package playback owns the single active playback session: resolving the
// requested text to audio, driving the speaker, and guaranteeing that at
// most one utterance is audible at a time.
package playback

import (
	"context"

	"github.com/echophrase/echophrase/internal/audiocache"
)

// Player renders one artifact to the audio device. Play blocks until the
// audio finishes, the context is cancelled, or Stop is called.
type Player interface {
	Play(ctx context.Context, artifact *audiocache.Artifact) error
	Stop()
	Close() error
}
