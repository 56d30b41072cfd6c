// Package config loads client settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/IvanTurko/carsite-client-go/rest"
	"github.com/IvanTurko/carsite-client-go/sdkerr"
	"github.com/Netflix/go-env"
)

const subsys = "config"

// Config holds the client settings. Every field maps to a CARSITE_*
// environment variable.
type Config struct {
	Environment string        `env:"CARSITE_ENVIRONMENT,default=dev"`
	APIBaseURL  string        `env:"CARSITE_API_BASE_URL,default=https://api.example.com"`
	APITimeout  time.Duration `env:"CARSITE_API_TIMEOUT,default=15s"`
	// DefaultHeaders are "Key:Value" pairs merged over the JSON defaults.
	DefaultHeaders []string `env:"CARSITE_DEFAULT_HEADERS,separator=;"`
	LogLevel       string   `env:"CARSITE_LOG_LEVEL,default=info"`
	// RateLimit is in requests per second; 0 disables limiting.
	RateLimit float64 `env:"CARSITE_RATE_LIMIT,default=0"`
	RateBurst int     `env:"CARSITE_RATE_BURST,default=1"`
	RequestID bool    `env:"CARSITE_REQUEST_ID,default=false"`
	AuthToken string  `env:"CARSITE_AUTH_TOKEN"`
}

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"staging": true,
	"prod":    true,
}

// NewConfig reads the process environment.
func NewConfig() (*Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, sdkerr.New(subsys, "NewConfig", sdkerr.ErrConfiguration).
			WithMessage("failed to unmarshal environment variables").
			WithCause(err)
	}
	return finish(&cfg, "NewConfig")
}

// Load reads es instead of the process environment.
func Load(es env.EnvSet) (*Config, error) {
	var cfg Config
	if err := env.Unmarshal(es, &cfg); err != nil {
		return nil, sdkerr.New(subsys, "Load", sdkerr.ErrConfiguration).
			WithMessage("failed to unmarshal environment variables").
			WithCause(err)
	}
	return finish(&cfg, "Load")
}

func finish(cfg *Config, op string) (*Config, error) {
	if err := cfg.Validate(); err != nil {
		return nil, sdkerr.New(subsys, op, sdkerr.ErrConfiguration).
			WithMessage("configuration validation failed").
			WithCause(err)
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if !validEnvs[c.Environment] {
		errs = append(errs, fmt.Errorf("invalid environment '%s'. Valid environments: dev, test, staging, prod", c.Environment))
	}
	if u, err := url.Parse(c.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("CARSITE_API_BASE_URL must be an absolute URL, got %q", c.APIBaseURL))
	}
	if c.APITimeout <= 0 {
		errs = append(errs, fmt.Errorf("api timeout must be positive, got %v", c.APITimeout))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate limit must not be negative, got %v", c.RateLimit))
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("rate burst must be at least 1, got %d", c.RateBurst))
	}
	if _, err := c.Headers(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Headers parses DefaultHeaders. Repeated keys add values.
func (c *Config) Headers() (http.Header, error) {
	h := make(http.Header)
	for _, pair := range c.DefaultHeaders {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, ":")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("default header %q is not in Key:Value form", pair)
		}
		h.Add(k, strings.TrimSpace(v))
	}
	return h, nil
}

// ServiceOptions converts the config to rest.Service options. The logger
// and transport are left to the caller.
func (c *Config) ServiceOptions() ([]rest.Option, error) {
	h, err := c.Headers()
	if err != nil {
		return nil, sdkerr.New(subsys, "ServiceOptions", sdkerr.ErrConfiguration).WithCause(err)
	}

	opts := []rest.Option{
		rest.WithBaseURL(c.APIBaseURL),
		rest.WithTimeout(c.APITimeout),
	}
	if len(h) > 0 {
		opts = append(opts, rest.WithDefaultHeaders(h))
	}
	if c.RateLimit > 0 {
		opts = append(opts, rest.WithRateLimit(c.RateLimit, c.RateBurst))
	}
	if c.RequestID {
		opts = append(opts, rest.WithRequestID(nil))
	}
	return opts, nil
}
