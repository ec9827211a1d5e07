// Package config loads service configuration from defaults, an
// optional YAML file and NEXUS_-prefixed environment variables, in
// that order of precedence (later wins).
package config

import (
	"time"
)

// Environment variable naming.
const (
	envPrefix  = "NEXUS_"
	envCfgFile = "NEXUS_CONFIG"
)

// Config is the root configuration tree.
type Config struct {
	Server     Server     `koanf:"server"`
	Log        Log        `koanf:"log"`
	Similarity Similarity `koanf:"similarity"`
	Integrity  Integrity  `koanf:"integrity"`
	Broadcast  Broadcast  `koanf:"broadcast"`
}

// Server configures the HTTP listener.
type Server struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Log configures the structured logger.
type Log struct {
	Level string `koanf:"level"`
}

// Similarity configures the plagiarism analysis engine.
type Similarity struct {
	Threshold     float64 `koanf:"threshold"`
	MinTokenCount int     `koanf:"min_token_count"`
	DocTopTerms   int     `koanf:"doc_top_terms"`
	Parallelism   int     `koanf:"parallelism"`
}

// Integrity configures review outlier and pattern detection.
type Integrity struct {
	MADZThreshold          float64       `koanf:"mad_z_threshold"`
	BurstWindow            time.Duration `koanf:"burst_window"`
	BurstCount             int           `koanf:"burst_count"`
	DuplicateBodyThreshold float64       `koanf:"duplicate_body_threshold"`
}

// Broadcast configures the live fan-out gateway.
type Broadcast struct {
	DebounceMS    int `koanf:"debounce_ms"`
	QueueSize     int `koanf:"queue_size"`
	FanoutWorkers int `koanf:"fanout_workers"`
	ClientBuffer  int `koanf:"client_buffer"`
}

// defaults returns the baseline configuration applied before any file
// or environment overrides.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"server.addr":             ":8080",
		"server.read_timeout":     "10s",
		"server.write_timeout":    "15s",
		"server.idle_timeout":     "60s",
		"server.shutdown_timeout": "10s",

		"log.level": "info",

		"similarity.threshold":       0.80,
		"similarity.min_token_count": 15,
		"similarity.doc_top_terms":   200,
		"similarity.parallelism":     4,

		"integrity.mad_z_threshold":          3.5,
		"integrity.burst_window":             "5m",
		"integrity.burst_count":              3,
		"integrity.duplicate_body_threshold": 0.90,

		"broadcast.debounce_ms":    2000,
		"broadcast.queue_size":     10000,
		"broadcast.fanout_workers": 2,
		"broadcast.client_buffer":  16,
	}
}

// Debounce returns the coalescing window as a duration.
func (b Broadcast) Debounce() time.Duration {
	return time.Duration(b.DebounceMS) * time.Millisecond
}
