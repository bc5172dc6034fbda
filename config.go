package main

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

// Simulation constants.
const (
	DefaultIterations = 10000
	DefaultResetTicks = 5
	DefaultSeed       = int64(1)

	DefaultEnableRate = 0.5
	DefaultValidRate  = 0.6
	DefaultReadyRate  = 0.7
)

// BufferConfig selects the subscriber buffer policy from configuration.
// Policy is "unbounded" or "bounded"; bounded additionally takes a positive
// bound and an overflow behaviour of "dropOldest" or "block".
type BufferConfig struct {
	Policy   string `toml:"policy"`
	Bound    int    `toml:"bound"`
	Overflow string `toml:"overflow"`
}

// Config is the harness control surface.
type Config struct {
	Iterations int   `toml:"iterations"`
	ResetTicks int   `toml:"reset_ticks"`
	Seed       int64 `toml:"seed"`

	EnableRate float64 `toml:"enable_rate"`
	ValidRate  float64 `toml:"valid_rate"`
	ReadyRate  float64 `toml:"ready_rate"`

	FieldWidths FieldWidths  `toml:"field_widths"`
	Buffer      BufferConfig `toml:"subscriber_buffer"`

	// WebAddr enables the live websocket monitor when non-empty.
	WebAddr  string `toml:"web_addr"`
	LogLevel string `toml:"log_level"`
}

// DefaultConfig returns the configuration the end-to-end scenario runs
// under: 5 reset ticks then 10000 random iterations.
func DefaultConfig() *Config {
	return &Config{
		Iterations:  DefaultIterations,
		ResetTicks:  DefaultResetTicks,
		Seed:        DefaultSeed,
		EnableRate:  DefaultEnableRate,
		ValidRate:   DefaultValidRate,
		ReadyRate:   DefaultReadyRate,
		FieldWidths: DefaultFieldWidths(),
		Buffer:      BufferConfig{Policy: "unbounded"},
		LogLevel:    "info",
	}
}

// LoadConfig reads a TOML config file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ValidateConfig applies structural checks to Config and populates defaults
// where required.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if cfg.Iterations <= 0 {
		return fmt.Errorf("Iterations must be positive, got %d", cfg.Iterations)
	}
	if cfg.ResetTicks < 0 {
		return fmt.Errorf("ResetTicks must be non-negative, got %d", cfg.ResetTicks)
	}
	if cfg.EnableRate < 0 || cfg.EnableRate > 1 {
		return fmt.Errorf("EnableRate must be within [0,1], got %.3f", cfg.EnableRate)
	}
	if cfg.ValidRate < 0 || cfg.ValidRate > 1 {
		return fmt.Errorf("ValidRate must be within [0,1], got %.3f", cfg.ValidRate)
	}
	if cfg.ReadyRate < 0 || cfg.ReadyRate > 1 {
		return fmt.Errorf("ReadyRate must be within [0,1], got %.3f", cfg.ReadyRate)
	}
	if err := cfg.FieldWidths.Validate(); err != nil {
		return err
	}

	if cfg.Seed == 0 {
		cfg.Seed = DefaultSeed
	}
	if cfg.Buffer.Policy == "" {
		cfg.Buffer.Policy = "unbounded"
	}
	if _, err := cfg.BufferPolicy(); err != nil {
		return err
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return nil
}

// BufferPolicy resolves the configured subscriber buffer policy.
func (cfg *Config) BufferPolicy() (BufferPolicy, error) {
	switch cfg.Buffer.Policy {
	case "", "unbounded":
		return UnboundedPolicy(), nil
	case "bounded":
		if cfg.Buffer.Bound <= 0 {
			return BufferPolicy{}, fmt.Errorf("bounded buffer needs a positive bound, got %d", cfg.Buffer.Bound)
		}
		switch cfg.Buffer.Overflow {
		case "", "dropOldest":
			return DropOldestPolicy(cfg.Buffer.Bound), nil
		case "block":
			return BlockPolicy(cfg.Buffer.Bound), nil
		default:
			return BufferPolicy{}, fmt.Errorf("unknown overflow behaviour %q", cfg.Buffer.Overflow)
		}
	default:
		return BufferPolicy{}, fmt.Errorf("unknown buffer policy %q", cfg.Buffer.Policy)
	}
}

// GetPredefinedConfigs lists the named configurations selectable from the
// command line.
func GetPredefinedConfigs() map[string]*Config {
	smoke := DefaultConfig()
	smoke.Iterations = 200

	backpressure := DefaultConfig()
	backpressure.Iterations = 2000
	backpressure.ValidRate = 1.0
	backpressure.ReadyRate = 1.0
	backpressure.Buffer = BufferConfig{Policy: "bounded", Bound: 64, Overflow: "dropOldest"}

	return map[string]*Config{
		"default":      DefaultConfig(),
		"smoke":        smoke,
		"backpressure": backpressure,
	}
}
