// Package config loads and validates the server configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/echophrase/echophrase/pkg/types"
)

// Load reads and parses the configuration file.
// It also supports environment variable overrides with EP_ prefix.
func Load(configPath string) (*types.Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg types.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration and fills in defaults
func Validate(cfg *types.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	if cfg.Storage.Adapter != "local" && cfg.Storage.Adapter != "s3" {
		return fmt.Errorf("invalid storage adapter: %s (must be 'local' or 's3')", cfg.Storage.Adapter)
	}

	if cfg.Storage.Adapter == "local" {
		if cfg.Storage.Local.BasePath == "" {
			return fmt.Errorf("local storage base_path is required")
		}
		if !filepath.IsAbs(cfg.Storage.Local.BasePath) {
			return fmt.Errorf("local storage base_path must be absolute: %s", cfg.Storage.Local.BasePath)
		}
	}

	if cfg.Storage.Adapter == "s3" {
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("s3 bucket is required")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("s3 region is required")
		}
	}

	if cfg.Storage.PublicBaseURL == "" {
		return fmt.Errorf("storage public_base_url is required")
	}

	if cfg.Synthesis.Voice == "" {
		return fmt.Errorf("synthesis voice is required")
	}
	// The stub provider needs no gateway credentials
	if cfg.Synthesis.Provider != "stub" {
		if cfg.Synthesis.Endpoint == "" {
			return fmt.Errorf("synthesis endpoint is required")
		}
		if cfg.Synthesis.APIKey == "" {
			return fmt.Errorf("synthesis api_key is required")
		}
		if cfg.Synthesis.Model == "" {
			return fmt.Errorf("synthesis model is required")
		}
	}
	if cfg.Synthesis.MaxRetries < 0 {
		cfg.Synthesis.MaxRetries = 2
	}
	if cfg.Synthesis.RetryBackoffMs <= 0 {
		cfg.Synthesis.RetryBackoffMs = 500
	}

	if cfg.Playback.PreloadLookahead <= 0 {
		cfg.Playback.PreloadLookahead = 3
	}
	if cfg.Playback.MemoryCacheBytes <= 0 {
		cfg.Playback.MemoryCacheBytes = 64 << 20
	}
	if cfg.Playback.WarmConcurrency <= 0 {
		cfg.Playback.WarmConcurrency = 3
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
// Environment variables are prefixed with EP_ (EchoPhrase).
func applyEnvOverrides(cfg *types.Config) {
	if val := os.Getenv("EP_SERVER_HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := os.Getenv("EP_SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &cfg.Server.Port)
	}

	if val := os.Getenv("EP_STORAGE_ADAPTER"); val != "" {
		cfg.Storage.Adapter = val
	}
	if val := os.Getenv("EP_STORAGE_LOCAL_BASE_PATH"); val != "" {
		cfg.Storage.Local.BasePath = val
	}
	if val := os.Getenv("EP_STORAGE_S3_BUCKET"); val != "" {
		cfg.Storage.S3.Bucket = val
	}
	if val := os.Getenv("EP_STORAGE_S3_REGION"); val != "" {
		cfg.Storage.S3.Region = val
	}
	if val := os.Getenv("EP_STORAGE_S3_ENDPOINT"); val != "" {
		cfg.Storage.S3.Endpoint = val
	}
	if val := os.Getenv("EP_STORAGE_S3_ACCESS_KEY_ID"); val != "" {
		cfg.Storage.S3.AccessKeyID = val
	}
	if val := os.Getenv("EP_STORAGE_S3_SECRET_ACCESS_KEY"); val != "" {
		cfg.Storage.S3.SecretAccessKey = val
	}
	if val := os.Getenv("EP_STORAGE_PUBLIC_BASE_URL"); val != "" {
		cfg.Storage.PublicBaseURL = val
	}

	if val := os.Getenv("EP_SYNTHESIS_ENDPOINT"); val != "" {
		cfg.Synthesis.Endpoint = val
	}
	if val := os.Getenv("EP_SYNTHESIS_API_KEY"); val != "" {
		cfg.Synthesis.APIKey = val
	}
	if val := os.Getenv("EP_SYNTHESIS_MODEL"); val != "" {
		cfg.Synthesis.Model = val
	}
	if val := os.Getenv("EP_SYNTHESIS_VOICE"); val != "" {
		cfg.Synthesis.Voice = val
	}
}

// GetDefault returns a default configuration
func GetDefault() *types.Config {
	return &types.Config{
		Server: types.ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15,
			WriteTimeout: 15,
		},
		Storage: types.StorageConfig{
			Adapter: "local",
			Local: types.LocalStorageOpts{
				BasePath: "/var/lib/echophrase/storage",
			},
			PublicBaseURL: "http://localhost:8080/audio",
		},
		Synthesis: types.SynthesisConfig{
			Provider:       "stub",
			Voice:          "alloy",
			MaxRetries:     2,
			RetryBackoffMs: 500,
		},
		Playback: types.PlaybackConfig{
			PreloadLookahead: 3,
			MemoryCacheBytes: 64 << 20,
			WarmConcurrency:  3,
		},
	}
}
