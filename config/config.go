// Package config holds server configuration: compiled-in defaults,
// an optional YAML file, and CANOPY_* environment overrides, applied
// in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	ServerAddr string `yaml:"server_addr"`

	NatsURL       string `yaml:"nats_url"`
	StreamName    string `yaml:"stream_name"`
	SubjectPrefix string `yaml:"subject_prefix"`

	RecordStoreURL string        `yaml:"record_store_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Search defaults applied to every criteria-search turn.
	SearchLimit   int     `yaml:"search_limit"`
	MinSimilarity float64 `yaml:"min_similarity"`

	// WordDelay is the artificial pause between streamed words. Zero
	// disables the pause entirely.
	WordDelay time.Duration `yaml:"word_delay"`

	// WebSocket keepalive tuning.
	MaxMessageSize int64         `yaml:"max_message_size"`
	WriteWait      time.Duration `yaml:"write_wait"`
	PongWait       time.Duration `yaml:"pong_wait"`
	PingPeriod     time.Duration `yaml:"ping_period"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		ServerAddr:     ":8080",
		NatsURL:        "nats://localhost:4222",
		StreamName:     "CANOPY_CHAT",
		SubjectPrefix:  "conversations",
		RecordStoreURL: "http://localhost:8000",
		RequestTimeout: 15 * time.Second,
		SearchLimit:    5,
		MinSimilarity:  0.7,
		WordDelay:      50 * time.Millisecond,
		MaxMessageSize: 4096,
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     54 * time.Second, // must be less than PongWait
	}
}

// Load builds the configuration from defaults, the YAML file at path
// (skipped when path is empty or the file does not exist), and finally
// environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	cfg.applyEnvOverrides()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CANOPY_SERVER_ADDR"); v != "" {
		c.ServerAddr = v
	}
	if v := os.Getenv("CANOPY_NATS_URL"); v != "" {
		c.NatsURL = v
	}
	if v := os.Getenv("CANOPY_STREAM_NAME"); v != "" {
		c.StreamName = v
	}
	if v := os.Getenv("CANOPY_RECORD_STORE_URL"); v != "" {
		c.RecordStoreURL = v
	}
	if v := os.Getenv("CANOPY_WORD_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.WordDelay = d
		}
	}
	if v := os.Getenv("CANOPY_SEARCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.SearchLimit = n
		}
	}
	if v := os.Getenv("CANOPY_MIN_SIMILARITY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.MinSimilarity = f
		}
	}
}

func (c *Config) validate() error {
	if c.ServerAddr == "" {
		return fmt.Errorf("server_addr must not be empty")
	}
	if c.RecordStoreURL == "" {
		return fmt.Errorf("record_store_url must not be empty")
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		return fmt.Errorf("min_similarity must be within [0,1], got %v", c.MinSimilarity)
	}
	if c.PingPeriod >= c.PongWait {
		return fmt.Errorf("ping_period (%v) must be shorter than pong_wait (%v)", c.PingPeriod, c.PongWait)
	}
	return nil
}
