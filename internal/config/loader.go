package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load assembles the configuration. A YAML file named by NEXUS_CONFIG
// layers over the defaults, and NEXUS_* environment variables layer
// over both (NEXUS_SIMILARITY_THRESHOLD maps to similarity.threshold).
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path := os.Getenv(envCfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %q: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envToKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envToKey maps NEXUS_SIMILARITY_MIN_TOKEN_COUNT to
// similarity.min_token_count. Only the first underscore becomes a
// section separator.
func envToKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.Replace(s, "_", ".", 1)
}

func (c *Config) validate() error {
	if c.Similarity.Threshold <= 0 || c.Similarity.Threshold > 1 {
		return fmt.Errorf("%w: similarity.threshold must be in (0, 1], got %v",
			ErrInvalidConfig, c.Similarity.Threshold)
	}
	if c.Similarity.MinTokenCount < 0 {
		return fmt.Errorf("%w: similarity.min_token_count must be >= 0, got %d",
			ErrInvalidConfig, c.Similarity.MinTokenCount)
	}
	if c.Integrity.MADZThreshold <= 0 {
		return fmt.Errorf("%w: integrity.mad_z_threshold must be > 0, got %v",
			ErrInvalidConfig, c.Integrity.MADZThreshold)
	}
	if c.Integrity.DuplicateBodyThreshold <= 0 || c.Integrity.DuplicateBodyThreshold > 1 {
		return fmt.Errorf("%w: integrity.duplicate_body_threshold must be in (0, 1], got %v",
			ErrInvalidConfig, c.Integrity.DuplicateBodyThreshold)
	}
	if c.Broadcast.DebounceMS < 0 {
		return fmt.Errorf("%w: broadcast.debounce_ms must be >= 0, got %d",
			ErrInvalidConfig, c.Broadcast.DebounceMS)
	}
	if c.Broadcast.QueueSize <= 0 {
		return fmt.Errorf("%w: broadcast.queue_size must be > 0, got %d",
			ErrInvalidConfig, c.Broadcast.QueueSize)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr must not be empty", ErrInvalidConfig)
	}
	return nil
}
