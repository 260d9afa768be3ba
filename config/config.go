package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/jonwraymond/memoize/memo"
	"github.com/jonwraymond/memoize/observe"
)

// Prefix is prepended to every environment variable name.
const Prefix = "MEMOIZE_"

// ErrInvalidShards is returned when the shard count is negative.
var ErrInvalidShards = errors.New("config: shards must be >= 0")

// Config is the environment-derived configuration of a memoizing service.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"memoize"`
	Version     string `env:"VERSION"`

	RacePolicy string `env:"RACE_POLICY" envDefault:"last-write-wins"`
	Capacity   int    `env:"CAPACITY" envDefault:"0"`
	Shards     int    `env:"SHARDS" envDefault:"16"`

	OTLPEndpoint string `env:"OTLP_ENDPOINT"`
	OTLPInsecure bool   `env:"OTLP_INSECURE"`

	Tracing TracingConfig `envPrefix:"TRACING_"`
	Metrics MetricsConfig `envPrefix:"METRICS_"`
	Log     LogConfig     `envPrefix:"LOG_"`
}

// TracingConfig holds the MEMOIZE_TRACING_* variables.
type TracingConfig struct {
	Enabled   bool    `env:"ENABLED"`
	Exporter  string  `env:"EXPORTER" envDefault:"otlp"`
	SamplePct float64 `env:"SAMPLE_PCT" envDefault:"1"`
}

// MetricsConfig holds the MEMOIZE_METRICS_* variables.
type MetricsConfig struct {
	Enabled  bool   `env:"ENABLED"`
	Exporter string `env:"EXPORTER" envDefault:"prometheus"`
}

// LogConfig holds the MEMOIZE_LOG_* variables.
type LogConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"true"`
	Level   string `env:"LEVEL" envDefault:"info"`
	Backend string `env:"BACKEND" envDefault:"json"`
}

// Load reads the configuration from the process environment and validates it.
func Load() (Config, error) {
	return LoadWith(env.Options{})
}

// LoadWith is Load with explicit parser options. An empty Prefix is
// replaced with Prefix; a non-nil Environment is read instead of the
// process environment.
func LoadWith(opts env.Options) (Config, error) {
	if opts.Prefix == "" {
		opts.Prefix = Prefix
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the memoizer and telemetry settings.
func (c Config) Validate() error {
	if _, err := c.Policy(); err != nil {
		return err
	}
	if c.Shards < 0 {
		return ErrInvalidShards
	}

	obs := c.Observe()
	if err := obs.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Policy builds the memo.Policy described by the configuration.
func (c Config) Policy() (memo.Policy, error) {
	race, err := memo.ParseRacePolicy(c.RacePolicy)
	if err != nil {
		return memo.Policy{}, fmt.Errorf("config: %w", err)
	}

	p := memo.Policy{Race: race, Capacity: c.Capacity, Shards: c.Shards}
	if err := p.Validate(); err != nil {
		return memo.Policy{}, fmt.Errorf("config: %w", err)
	}
	return p, nil
}

// MemoOptions returns the memo options for the configured policy.
func (c Config) MemoOptions() ([]memo.Option, error) {
	p, err := c.Policy()
	if err != nil {
		return nil, err
	}
	return []memo.Option{memo.WithPolicy(p)}, nil
}

// Observe maps the configuration onto observe.Config. The OTLP endpoint
// is shared by tracing and metrics.
func (c Config) Observe() observe.Config {
	return observe.Config{
		ServiceName: c.ServiceName,
		Version:     c.Version,
		Tracing: observe.TracingConfig{
			Enabled:   c.Tracing.Enabled,
			Exporter:  c.Tracing.Exporter,
			SamplePct: c.Tracing.SamplePct,
			Endpoint:  c.OTLPEndpoint,
			Insecure:  c.OTLPInsecure,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.Metrics.Enabled,
			Exporter: c.Metrics.Exporter,
			Endpoint: c.OTLPEndpoint,
			Insecure: c.OTLPInsecure,
		},
		Logging: observe.LoggingConfig{
			Enabled: c.Log.Enabled,
			Level:   c.Log.Level,
			Backend: c.Log.Backend,
		},
	}
}
