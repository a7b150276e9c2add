package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/echophrase/echophrase/pkg/types"
)

func ttsConfig(endpoint string) types.SynthesisConfig {
	return types.SynthesisConfig{
		Provider:       "openai",
		Endpoint:       endpoint,
		APIKey:         "test-key",
		Model:          "gpt-4o-mini-tts",
		Voice:          "coral",
		MaxRetries:     2,
		RetryBackoffMs: 1,
	}
}

func TestNewOpenAITTSProvider(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		provider, err := NewOpenAITTSProvider(ttsConfig("https://api.openai.com/v1"))
		if err != nil {
			t.Fatalf("Failed to create provider: %v", err)
		}

		if provider.Name() != "openai-tts" {
			t.Errorf("Expected name 'openai-tts', got '%s'", provider.Name())
		}
		if provider.model != "gpt-4o-mini-tts" {
			t.Errorf("Expected model 'gpt-4o-mini-tts', got '%s'", provider.model)
		}
	})

	t.Run("MissingEndpoint", func(t *testing.T) {
		cfg := ttsConfig("")
		_, err := NewOpenAITTSProvider(cfg)
		if err == nil {
			t.Error("Expected error for missing endpoint")
		}
		if !strings.Contains(err.Error(), "endpoint is required") {
			t.Errorf("Expected error about endpoint, got: %v", err)
		}
	})

	t.Run("MissingModel", func(t *testing.T) {
		cfg := ttsConfig("https://api.openai.com/v1")
		cfg.Model = ""
		_, err := NewOpenAITTSProvider(cfg)
		if err == nil {
			t.Error("Expected error for missing model")
		}
		if !strings.Contains(err.Error(), "model is required") {
			t.Errorf("Expected error about model, got: %v", err)
		}
	})

	t.Run("CustomTimeout", func(t *testing.T) {
		cfg := ttsConfig("https://api.openai.com/v1")
		cfg.TimeoutSeconds = 60
		provider, err := NewOpenAITTSProvider(cfg)
		if err != nil {
			t.Fatalf("Failed to create provider: %v", err)
		}
		if provider.httpClient.Timeout.Seconds() != 60 {
			t.Errorf("Expected timeout 60s, got %v", provider.httpClient.Timeout.Seconds())
		}
	})
}

func TestOpenAITTSProvider_Synthesize(t *testing.T) {
	t.Run("SuccessfulSynthesis", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != "POST" {
				t.Errorf("Expected POST request, got %s", r.Method)
			}
			if !strings.HasSuffix(r.URL.Path, "/audio/speech") {
				t.Errorf("Expected /audio/speech endpoint, got %s", r.URL.Path)
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader != "Bearer test-key" {
				t.Errorf("Expected 'Bearer test-key', got '%s'", authHeader)
			}

			var reqBody ttsAPIRequest
			if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
				t.Errorf("Failed to decode request: %v", err)
			}

			if reqBody.Model != "gpt-4o-mini-tts" {
				t.Errorf("Expected model 'gpt-4o-mini-tts', got '%s'", reqBody.Model)
			}
			if reqBody.Input != "Bonjour tout le monde" {
				t.Errorf("Expected input 'Bonjour tout le monde', got '%s'", reqBody.Input)
			}
			if reqBody.Voice != "coral" {
				t.Errorf("Expected voice 'coral', got '%s'", reqBody.Voice)
			}

			w.Header().Set("Content-Type", "audio/mpeg")
			w.Write([]byte("MOCK_MP3_DATA"))
		}))
		defer server.Close()

		provider, err := NewOpenAITTSProvider(ttsConfig(server.URL))
		if err != nil {
			t.Fatalf("Failed to create provider: %v", err)
		}

		resp, err := provider.Synthesize(context.Background(), TTSRequest{
			Text:    "Bonjour tout le monde",
			VoiceID: "coral",
		})
		if err != nil {
			t.Fatalf("Synthesize failed: %v", err)
		}

		if string(resp.AudioData) != "MOCK_MP3_DATA" {
			t.Errorf("Expected audio data 'MOCK_MP3_DATA', got '%s'", string(resp.AudioData))
		}
		if resp.Format != "mp3" {
			t.Errorf("Expected format 'mp3', got '%s'", resp.Format)
		}
	})

	t.Run("RetriesThenSucceeds", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Fail twice within the retry budget, then succeed
			if atomic.AddInt32(&calls, 1) <= 2 {
				w.WriteHeader(http.StatusTooManyRequests)
				resp := ttsAPIErrorResponse{}
				resp.Error.Message = "rate limited"
				json.NewEncoder(w).Encode(resp)
				return
			}
			w.Header().Set("Content-Type", "audio/mpeg")
			w.Write([]byte("MOCK_MP3_DATA"))
		}))
		defer server.Close()

		provider, err := NewOpenAITTSProvider(ttsConfig(server.URL))
		if err != nil {
			t.Fatalf("Failed to create provider: %v", err)
		}

		resp, err := provider.Synthesize(context.Background(), TTSRequest{Text: "Bonjour", VoiceID: "coral"})
		if err != nil {
			t.Fatalf("Expected synthesis to succeed within retry budget: %v", err)
		}
		if string(resp.AudioData) != "MOCK_MP3_DATA" {
			t.Errorf("Unexpected audio data: %s", resp.AudioData)
		}
		if got := atomic.LoadInt32(&calls); got != 3 {
			t.Errorf("Expected 3 calls (2 failures + 1 success), got %d", got)
		}
	})

	t.Run("RetryBudgetExhausted", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		provider, err := NewOpenAITTSProvider(ttsConfig(server.URL))
		if err != nil {
			t.Fatalf("Failed to create provider: %v", err)
		}

		_, err = provider.Synthesize(context.Background(), TTSRequest{Text: "Bonjour", VoiceID: "coral"})
		if err == nil {
			t.Fatal("Expected error after exhausting the retry budget")
		}
		if got := atomic.LoadInt32(&calls); got != 3 {
			t.Errorf("Expected 3 calls (1 initial + 2 retries), got %d", got)
		}
	})

	t.Run("APIError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			resp := ttsAPIErrorResponse{}
			resp.Error.Message = "Invalid API key"
			resp.Error.Type = "invalid_request_error"
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		cfg := ttsConfig(server.URL)
		cfg.MaxRetries = 0

		provider, err := NewOpenAITTSProvider(cfg)
		if err != nil {
			t.Fatalf("Failed to create provider: %v", err)
		}

		_, err = provider.Synthesize(context.Background(), TTSRequest{Text: "Bonjour", VoiceID: "coral"})
		if err == nil {
			t.Error("Expected error for API failure")
		}
		if !strings.Contains(err.Error(), "Invalid API key") {
			t.Errorf("Expected error to contain 'Invalid API key', got: %v", err)
		}
	})

	t.Run("NetworkError", func(t *testing.T) {
		cfg := ttsConfig("http://127.0.0.1:1")
		cfg.MaxRetries = 0

		provider, err := NewOpenAITTSProvider(cfg)
		if err != nil {
			t.Fatalf("Failed to create provider: %v", err)
		}

		_, err = provider.Synthesize(context.Background(), TTSRequest{Text: "Bonjour", VoiceID: "coral"})
		if err == nil {
			t.Error("Expected error for network failure")
		}
	})
}

func TestNewProviderFactory(t *testing.T) {
	t.Run("Stub", func(t *testing.T) {
		p, err := New(types.SynthesisConfig{Provider: "stub", Voice: "coral"})
		if err != nil {
			t.Fatalf("Failed to create stub provider: %v", err)
		}
		if p.Name() != "stub-tts" {
			t.Errorf("Expected stub-tts, got %s", p.Name())
		}

		resp, err := p.Synthesize(context.Background(), TTSRequest{Text: "Bonjour", VoiceID: "coral"})
		if err != nil {
			t.Fatalf("Stub synthesize failed: %v", err)
		}
		if len(resp.AudioData) == 0 {
			t.Error("Expected audio data from stub")
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := New(types.SynthesisConfig{Provider: "espeak"})
		if err == nil {
			t.Error("Expected error for unknown provider")
		}
	})
}
