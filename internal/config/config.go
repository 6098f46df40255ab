// Package config loads and validates buddyd's startup configuration: the
// tree depth, the carrier listen addresses, and the device name. Loading
// never touches the allocator core; it only produces a Config for
// cmd/buddyd to hand to pkg/device and the carriers.
package config

import (
	"encoding/json"
	"os"
	"time"
)

// Config is buddyd's startup configuration.
type Config struct {
	// Depth is the buddy tree depth; LeafSize = 1<<Depth, MemSize =
	// (1<<Depth)*LeafSize.
	Depth int `json:"depth"`

	// DeviceName identifies this allocator instance to clients (spec §6
	// "a single device/endpoint name identifying the allocator").
	DeviceName string `json:"device_name"`

	// ListenAddr is the HTTP carrier's listen address, e.g. ":8080".
	ListenAddr string `json:"listen_addr"`

	// MetricsAddr is loaded and validated but not used by cmd/buddyd, which
	// starts no dedicated metrics listener; metrics are served on
	// ListenAddr at /metrics.
	MetricsAddr string `json:"metrics_addr"`

	// NatsURL, if non-empty, starts the NATS carrier against this server.
	NatsURL string `json:"nats_url"`

	// StatsInterval controls how often the stats reporter logs pool
	// utilization. Zero disables the reporter.
	StatsInterval time.Duration `json:"stats_interval"`
}

// Default returns a Config usable for local development: depth 8 (a
// 64KiB pool with 256-byte leaves), HTTP on :8080, no NATS, stats every
// 30s.
func Default() Config {
	return Config{
		Depth:         8,
		DeviceName:    "buddy0",
		ListenAddr:    ":8080",
		MetricsAddr:   "",
		NatsURL:       "",
		StatsInterval: 30 * time.Second,
	}
}

// Load reads a JSON config file at path, applies environment overrides,
// and returns it unvalidated (call Validate separately, per spec §7's
// preference for surfacing every problem rather than failing on the
// first one encountered during load).
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("BUDDYD_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv("BUDDYD_DEVICE_NAME"); ok {
		cfg.DeviceName = v
	}
	if v, ok := os.LookupEnv("BUDDYD_NATS_URL"); ok {
		cfg.NatsURL = v
	}
}
