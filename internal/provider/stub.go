package provider

import (
	"context"
	"fmt"

	"github.com/echophrase/echophrase/pkg/types"
)

// StubTTSProvider is a stub implementation of TTSProvider for development
// and testing without a synthesis backend
type StubTTSProvider struct {
	config types.SynthesisConfig
}

// NewStubTTSProvider creates a new stub TTS provider
func NewStubTTSProvider(config types.SynthesisConfig) *StubTTSProvider {
	return &StubTTSProvider{
		config: config,
	}
}

func (s *StubTTSProvider) Name() string {
	return "stub-tts"
}

func (s *StubTTSProvider) Synthesize(ctx context.Context, req TTSRequest) (*TTSResponse, error) {
	textPreview := req.Text
	if len(textPreview) > 10 {
		textPreview = textPreview[:10]
	}
	return &TTSResponse{
		AudioData: []byte(fmt.Sprintf("STUB_AUDIO_%s_%s", req.VoiceID, textPreview)),
		Format:    "mp3",
	}, nil
}

func (s *StubTTSProvider) Close() error {
	return nil
}
