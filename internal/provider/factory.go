package provider

import (
	"fmt"

	"github.com/echophrase/echophrase/pkg/types"
)

// New creates the configured speech synthesis provider
func New(cfg types.SynthesisConfig) (TTSProvider, error) {
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAITTSProvider(cfg)
	case "stub":
		return NewStubTTSProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unknown synthesis provider: %s", cfg.Provider)
	}
}
