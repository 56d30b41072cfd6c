package config

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/IvanTurko/carsite-client-go/internal/testutil"
	"github.com/IvanTurko/carsite-client-go/rest"
	"github.com/IvanTurko/carsite-client-go/sdkerr"
	"github.com/IvanTurko/carsite-client-go/transport"
	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(env.EnvSet{})
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.APITimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.DefaultHeaders)
	assert.Zero(t, cfg.RateLimit)
	assert.False(t, cfg.RequestID)
	assert.Empty(t, cfg.AuthToken)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(env.EnvSet{
		"CARSITE_ENVIRONMENT":     "prod",
		"CARSITE_API_BASE_URL":    "https://cars.example.org/api",
		"CARSITE_API_TIMEOUT":     "3s",
		"CARSITE_DEFAULT_HEADERS": "X-Locale:de;X-Client: cli",
		"CARSITE_LOG_LEVEL":       "debug",
		"CARSITE_RATE_LIMIT":      "2.5",
		"CARSITE_RATE_BURST":      "4",
		"CARSITE_REQUEST_ID":      "true",
		"CARSITE_AUTH_TOKEN":      "tok",
	})
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Environment)
	assert.Equal(t, "https://cars.example.org/api", cfg.APIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
	assert.Equal(t, []string{"X-Locale:de", "X-Client: cli"}, cfg.DefaultHeaders)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, 4, cfg.RateBurst)
	assert.True(t, cfg.RequestID)
	assert.Equal(t, "tok", cfg.AuthToken)

	h, err := cfg.Headers()
	require.NoError(t, err)
	assert.Equal(t, "de", h.Get("X-Locale"))
	assert.Equal(t, "cli", h.Get("X-Client"))
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		es   env.EnvSet
		want string
	}{
		{"environment", env.EnvSet{"CARSITE_ENVIRONMENT": "local"}, "invalid environment"},
		{"relative base url", env.EnvSet{"CARSITE_API_BASE_URL": "/api"}, "absolute URL"},
		{"zero timeout", env.EnvSet{"CARSITE_API_TIMEOUT": "0s"}, "timeout must be positive"},
		{"negative rate", env.EnvSet{"CARSITE_RATE_LIMIT": "-1"}, "must not be negative"},
		{"zero burst", env.EnvSet{"CARSITE_RATE_LIMIT": "1", "CARSITE_RATE_BURST": "0"}, "burst must be at least 1"},
		{"bad header", env.EnvSet{"CARSITE_DEFAULT_HEADERS": "NoColon"}, "Key:Value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.es)
			require.Error(t, err)
			assert.ErrorIs(t, err, sdkerr.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_ReportsAllProblems(t *testing.T) {
	_, err := Load(env.EnvSet{
		"CARSITE_ENVIRONMENT": "local",
		"CARSITE_API_TIMEOUT": "-1s",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid environment")
	assert.Contains(t, err.Error(), "timeout must be positive")
}

func TestNewConfig_FromEnviron(t *testing.T) {
	t.Setenv("CARSITE_API_BASE_URL", "http://localhost:8080")
	t.Setenv("CARSITE_API_TIMEOUT", "250ms")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.APIBaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.APITimeout)
}

func TestServiceOptions(t *testing.T) {
	cfg, err := Load(env.EnvSet{
		"CARSITE_API_BASE_URL":    "https://cars.example.org/api",
		"CARSITE_API_TIMEOUT":     "2s",
		"CARSITE_DEFAULT_HEADERS": "Accept:text/plain;X-Locale:de",
		"CARSITE_RATE_LIMIT":      "100",
		"CARSITE_RATE_BURST":      "10",
		"CARSITE_REQUEST_ID":      "true",
	})
	require.NoError(t, err)

	opts, err := cfg.ServiceOptions()
	require.NoError(t, err)

	fake := &testutil.FakeHTTPClient{
		DoFunc: func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
			return testutil.TextResponse(http.StatusOK, "ok"), nil
		},
	}
	svc, err := rest.NewService(append(opts, rest.WithClient(fake))...)
	require.NoError(t, err)
	assert.Equal(t, "https://cars.example.org/api", svc.BaseURL())
	assert.Equal(t, 2*time.Second, svc.Timeout())

	_, err = rest.Get[string](context.Background(), svc, "/cars", nil, nil)
	require.NoError(t, err)

	req := fake.Requests()[0]
	assert.Equal(t, "https://cars.example.org/api/cars", req.FullURL)
	assert.Equal(t, "text/plain", req.Headers.Get("Accept"))
	assert.Equal(t, "application/json", req.Headers.Get("Content-Type"))
	assert.Equal(t, "de", req.Headers.Get("X-Locale"))
	assert.Len(t, req.Headers.Get("X-Request-Id"), 36)
}
