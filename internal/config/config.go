package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "SCREENLENS_CONFIG"
	modelEnv      = "GEMINI_MODEL"
	portEnv       = "PORT"
)

// Config holds the tunable settings for the server and the orchestration
// layer. Everything has a sensible default so the binary runs with no
// config file at all.
type Config struct {
	Port       string       `yaml:"port"`
	Model      string       `yaml:"model"`
	UploadsDir string       `yaml:"uploadsDir"`
	Upload     UploadConfig `yaml:"upload"`
	Search     SearchConfig `yaml:"search"`
	Retry      RetryConfig  `yaml:"retry"`
}

// UploadConfig tunes the batch scheduler on the upload path.
type UploadConfig struct {
	BatchSize         int `yaml:"batchSize"`
	InterGroupDelayMs int `yaml:"interGroupDelayMs"`
}

// InterGroupDelay resolves the configured delay between groups.
func (u UploadConfig) InterGroupDelay() time.Duration {
	return time.Duration(u.InterGroupDelayMs) * time.Millisecond
}

// SearchConfig tunes the search partitioner.
type SearchConfig struct {
	BatchSize int `yaml:"batchSize"`
}

// RetryConfig tunes the retry executor shared by all remote calls.
type RetryConfig struct {
	MaxRetries     int `yaml:"maxRetries"`
	InitialDelayMs int `yaml:"initialDelayMs"`
}

// InitialDelay resolves the configured first backoff delay.
func (r RetryConfig) InitialDelay() time.Duration {
	return time.Duration(r.InitialDelayMs) * time.Millisecond
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:       "8888",
		Model:      "",
		UploadsDir: "uploads",
		Upload: UploadConfig{
			BatchSize:         5,
			InterGroupDelayMs: 100,
		},
		Search: SearchConfig{
			BatchSize: 10,
		},
		Retry: RetryConfig{
			MaxRetries:     3,
			InitialDelayMs: 1000,
		},
	}
}

// Load reads YAML configuration from path (or $SCREENLENS_CONFIG when
// path is empty) and applies environment overrides. A missing file is
// not an error; the defaults are used.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
			cfg = merge(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(modelEnv); v != "" {
		c.Model = v
	}
	if v := os.Getenv(portEnv); v != "" {
		c.Port = v
	}
}

func merge(base, override Config) Config {
	if override.Port != "" {
		base.Port = override.Port
	}
	if override.Model != "" {
		base.Model = override.Model
	}
	if override.UploadsDir != "" {
		base.UploadsDir = override.UploadsDir
	}
	if override.Upload.BatchSize > 0 {
		base.Upload.BatchSize = override.Upload.BatchSize
	}
	if override.Upload.InterGroupDelayMs > 0 {
		base.Upload.InterGroupDelayMs = override.Upload.InterGroupDelayMs
	}
	if override.Search.BatchSize > 0 {
		base.Search.BatchSize = override.Search.BatchSize
	}
	if override.Retry.MaxRetries > 0 {
		base.Retry.MaxRetries = override.Retry.MaxRetries
	}
	if override.Retry.InitialDelayMs > 0 {
		base.Retry.InitialDelayMs = override.Retry.InitialDelayMs
	}
	return base
}
