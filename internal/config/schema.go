// Package config defines the configuration schema for the corobus tooling.
//
// The library itself takes no configuration; this file describes the demo
// and serve workloads the CLI drives against a bus.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/robfig/cron/v3"
)

// ChannelSpec describes one channel to open for a workload round.
type ChannelSpec struct {
	Capacity int `json:"capacity"`
}

// DemoConfig describes the synthetic workload run by `corobus demo` and by
// each round in serve mode.
type DemoConfig struct {
	Channels            []ChannelSpec `json:"channels"`
	Producers           int           `json:"producers"`
	MessagesPerProducer int           `json:"messagesPerProducer"`
	Consumers           int           `json:"consumers"`
	Broadcasters        int           `json:"broadcasters"`
	// BatchSize > 1 makes producers and consumers use the vectored
	// transfer calls in chunks of this size.
	BatchSize int `json:"batchSize"`
}

// ServeConfig configures `corobus serve`.
type ServeConfig struct {
	Port int `json:"port"`
	// SnapshotEvery and InjectEvery are cron specs (robfig/cron syntax,
	// "@every 2s" style descriptors included).
	SnapshotEvery string `json:"snapshotEvery"`
	InjectEvery   string `json:"injectEvery"`
}

// Config is the root configuration document.
type Config struct {
	Demo  DemoConfig  `json:"demo"`
	Serve ServeConfig `json:"serve"`
}

func defaultDemoConfig() DemoConfig {
	return DemoConfig{
		Channels:            []ChannelSpec{{Capacity: 4}, {Capacity: 4}},
		Producers:           3,
		MessagesPerProducer: 16,
		Consumers:           2,
		Broadcasters:        1,
		BatchSize:           1,
	}
}

func defaultServeConfig() ServeConfig {
	return ServeConfig{
		Port:          18791,
		SnapshotEvery: "@every 2s",
		InjectEvery:   "@every 10s",
	}
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Demo:  defaultDemoConfig(),
		Serve: defaultServeConfig(),
	}
}

// ConfigPath returns the default configuration file path: ~/.corobus/config.json.
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".corobus/config.json"
	}
	return filepath.Join(home, ".corobus", "config.json")
}

// Validate checks workload parameters and cron specs.
func (c *Config) Validate() error {
	if len(c.Demo.Channels) == 0 {
		return fmt.Errorf("demo.channels must not be empty")
	}
	for i, ch := range c.Demo.Channels {
		if ch.Capacity <= 0 {
			return fmt.Errorf("demo.channels[%d].capacity must be positive, got %d", i, ch.Capacity)
		}
	}
	if c.Demo.Producers < 0 || c.Demo.Consumers < 0 || c.Demo.Broadcasters < 0 {
		return fmt.Errorf("demo worker counts must be non-negative")
	}
	if c.Demo.BatchSize < 0 {
		return fmt.Errorf("demo.batchSize must be non-negative, got %d", c.Demo.BatchSize)
	}
	for _, spec := range []struct{ name, value string }{
		{"serve.snapshotEvery", c.Serve.SnapshotEvery},
		{"serve.injectEvery", c.Serve.InjectEvery},
	} {
		if spec.value == "" {
			continue
		}
		if _, err := cron.ParseStandard(spec.value); err != nil {
			return fmt.Errorf("%s: invalid cron spec %q: %w", spec.name, spec.value, err)
		}
	}
	return nil
}
