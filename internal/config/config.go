// Package config defines the run configuration for the journey load engine.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/bizobs/journeyload/internal/journey"
	"github.com/bizobs/journeyload/internal/transport"
)

// DefaultSimulatePath is the journey-simulation endpoint path.
const DefaultSimulatePath = "/api/journey-simulation/simulate-journey"

// Config is the engine's external configuration surface. Invalid values are
// fatal at startup: the run aborts before any worker starts.
type Config struct {
	// RunID uniquely identifies this run. Generated when left empty.
	RunID string `yaml:"runId,omitempty"`

	// Workers is the number of concurrent virtual users.
	Workers int `yaml:"workers"`

	// Iterations is how many journeys each worker executes.
	Iterations int `yaml:"iterations"`

	// BaseURL is the target service base URL, e.g. "http://localhost:8080".
	BaseURL string `yaml:"baseUrl"`

	// SimulatePath overrides the simulation endpoint path.
	SimulatePath string `yaml:"simulatePath,omitempty"`

	// RunLabel overrides the LTN tag. Derived from the journey definition
	// and the run start date when empty.
	RunLabel string `yaml:"runLabel,omitempty"`

	// Seed drives the per-worker profile draws. A fixed seed replays the
	// same profile assignment; zero picks the current time.
	Seed int64 `yaml:"seed,omitempty"`

	// PacingRPS caps each worker's iteration start rate. Zero disables pacing.
	PacingRPS float64 `yaml:"pacingRps,omitempty"`

	// ThinkTimeBaselineMs is the baseline think time advertised to the target
	// service in every step payload.
	ThinkTimeBaselineMs int `yaml:"thinkTimeBaselineMs,omitempty"`

	// Transport holds client-level settings applied once per run.
	Transport TransportConfig `yaml:"transport,omitempty"`
}

// TransportConfig mirrors the replay settings of the generated scripts.
type TransportConfig struct {
	Timeout      journey.Duration `yaml:"timeout,omitempty"`
	MaxRetries   int              `yaml:"maxRetries,omitempty"`
	MaxBodyBytes int64            `yaml:"maxBodyBytes,omitempty"`
	UserAgent    string           `yaml:"userAgent,omitempty"`
}

// Default returns the configuration defaults.
func Default() Config {
	return Config{
		Workers:             1,
		Iterations:          1,
		BaseURL:             "http://localhost:8080",
		SimulatePath:        DefaultSimulatePath,
		ThinkTimeBaselineMs: 250,
		Transport: TransportConfig{
			Timeout:      journey.Duration(transport.DefaultTimeout),
			MaxRetries:   transport.DefaultMaxRetries,
			MaxBodyBytes: transport.DefaultMaxBodyBytes,
			UserAgent:    transport.DefaultUserAgent,
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills in values that flags or the file left unset.
func (c *Config) ApplyDefaults() {
	if c.RunID == "" {
		c.RunID = uuid.NewString()
	}
	if c.SimulatePath == "" {
		c.SimulatePath = DefaultSimulatePath
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	if c.ThinkTimeBaselineMs == 0 {
		c.ThinkTimeBaselineMs = 250
	}
	if c.Transport.Timeout == 0 {
		c.Transport.Timeout = journey.Duration(transport.DefaultTimeout)
	}
	if c.Transport.MaxBodyBytes == 0 {
		c.Transport.MaxBodyBytes = transport.DefaultMaxBodyBytes
	}
	if c.Transport.UserAgent == "" {
		c.Transport.UserAgent = transport.DefaultUserAgent
	}
}

// Validate checks the configuration. Any error here is a ConfigurationError:
// the run must abort before any worker starts.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return &ValidationError{Field: "workers", Message: "must be at least 1"}
	}
	if c.Workers > 10000 {
		return &ValidationError{Field: "workers", Message: "cannot exceed 10000"}
	}
	if c.Iterations < 1 {
		return &ValidationError{Field: "iterations", Message: "must be at least 1"}
	}
	if c.BaseURL == "" {
		return &ValidationError{Field: "baseUrl", Message: "target base URL is required"}
	}
	if c.PacingRPS < 0 {
		return &ValidationError{Field: "pacingRps", Message: "cannot be negative"}
	}
	if c.Transport.MaxRetries < 0 {
		return &ValidationError{Field: "transport.maxRetries", Message: "cannot be negative"}
	}
	return nil
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "validation error on field '" + e.Field + "': " + e.Message
}
