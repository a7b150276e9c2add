package provider

import (
	"context"
)

// TTSProvider defines the interface for speech synthesis gateways.
// A synthesis call is an opaque remote operation: it may be billed per
// call and cannot be aborted at the network layer, so callers cancel by
// discarding the result, not by stopping the call.
type TTSProvider interface {
	// Name returns the provider name
	Name() string

	// Synthesize converts text to speech
	Synthesize(ctx context.Context, req TTSRequest) (*TTSResponse, error)

	// Close cleans up resources
	Close() error
}

// TTSRequest contains the text and voice for synthesis
type TTSRequest struct {
	Text    string // Text to synthesize
	VoiceID string // Provider-specific voice ID
}

// TTSResponse contains the synthesized audio and metadata
type TTSResponse struct {
	AudioData []byte // Audio file data
	Format    string // Audio format (e.g., "mp3")
}
