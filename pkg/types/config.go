package types

// Config represents the overall application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" json:"server"`
	Storage   StorageConfig   `yaml:"storage" json:"storage"`
	Synthesis SynthesisConfig `yaml:"synthesis" json:"synthesis"`
	Playback  PlaybackConfig  `yaml:"playback" json:"playback"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string `yaml:"host" json:"host"`
	Port         int    `yaml:"port" json:"port"`
	ReadTimeout  int    `yaml:"read_timeout" json:"read_timeout"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" json:"write_timeout"` // seconds
}

// StorageConfig defines storage adapter settings
type StorageConfig struct {
	Adapter       string           `yaml:"adapter" json:"adapter"` // "local" or "s3"
	Local         LocalStorageOpts `yaml:"local" json:"local"`
	S3            S3StorageOpts    `yaml:"s3" json:"s3"`
	PublicBaseURL string           `yaml:"public_base_url" json:"public_base_url"`
}

// LocalStorageOpts configures the local filesystem adapter
type LocalStorageOpts struct {
	BasePath string `yaml:"base_path" json:"base_path"`
}

// S3StorageOpts configures the S3-compatible adapter
type S3StorageOpts struct {
	Endpoint        string `yaml:"endpoint" json:"endpoint"`
	Region          string `yaml:"region" json:"region"`
	Bucket          string `yaml:"bucket" json:"bucket"`
	AccessKeyID     string `yaml:"access_key_id" json:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" json:"secret_access_key"`
	UseSSL          bool   `yaml:"use_ssl" json:"use_ssl"`
}

// SynthesisConfig configures the speech synthesis gateway.
// A deployment speaks with exactly one voice; the voice is part of every
// cache key, so changing it re-addresses the whole audio store.
type SynthesisConfig struct {
	Provider       string `yaml:"provider" json:"provider"` // "openai" or "stub"
	Endpoint       string `yaml:"endpoint" json:"endpoint"`
	APIKey         string `yaml:"api_key" json:"api_key"`
	Model          string `yaml:"model" json:"model"`
	Voice          string `yaml:"voice" json:"voice"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries" json:"max_retries"`
	RetryBackoffMs int    `yaml:"retry_backoff_ms" json:"retry_backoff_ms"`
}

// PlaybackConfig holds playback pipeline settings
type PlaybackConfig struct {
	PreloadLookahead int    `yaml:"preload_lookahead" json:"preload_lookahead"`
	MemoryCacheBytes int64  `yaml:"memory_cache_bytes" json:"memory_cache_bytes"`
	WarmConcurrency  int    `yaml:"warm_concurrency" json:"warm_concurrency"`
	CatalogID        string `yaml:"catalog_id" json:"catalog_id"`
}
