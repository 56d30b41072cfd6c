// Package rest is the request service: a typed HTTP client with default
// headers, bearer-token injection, a per-request timeout and normalized
// errors.
//
// A Service is safe for concurrent use. Construct one per backend and pass it
// to whatever needs to talk to that backend.
package rest

import (
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/IvanTurko/carsite-client-go/internal/httpx"
	"github.com/IvanTurko/carsite-client-go/sdkerr"
	"github.com/IvanTurko/carsite-client-go/transport"
	"golang.org/x/time/rate"
)

const (
	subsys = "rest"

	DefaultBaseURL = "https://api.example.com"
	DefaultTimeout = 15 * time.Second

	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-Id"
)

// Param and Params describe query parameters. Entries with a nil value are
// dropped from the URL; everything else must be a scalar.
type (
	Param  = httpx.Param
	Params = httpx.Params
)

// P is shorthand for a single query parameter.
func P(key string, value any) Param { return httpx.P(key, value) }

// ParamsFromMap converts a map to Params with sorted keys.
func ParamsFromMap(m map[string]any) Params { return httpx.ParamsFromMap(m) }

// Logger is the logging hook used by the service. A nil Logger disables logging.
type Logger interface {
	Debugf(format string, args ...any)
	Errorf(format string, args ...any)
}

// DefaultHeaders returns the headers sent with every request unless overridden.
func DefaultHeaders() http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	return h
}

// Service performs HTTP calls against one backend.
type Service struct {
	baseURL   string
	timeout   time.Duration
	headers   http.Header
	client    transport.HTTPClient
	logger    Logger
	limiter   *rate.Limiter
	requestID func() string

	mu    sync.RWMutex
	token string
}

// Option configures a Service.
type Option func(*Service)

// WithBaseURL sets the URL relative paths are resolved against.
func WithBaseURL(u string) Option {
	return func(s *Service) {
		s.baseURL = u
	}
}

// WithTimeout sets how long a request may wait for response headers.
// The default is 15 seconds.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// WithDefaultHeaders merges h over the JSON defaults.
func WithDefaultHeaders(h http.Header) Option {
	return func(s *Service) {
		for k, vs := range h {
			s.headers[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
		}
	}
}

// WithClient replaces the transport.
func WithClient(c transport.HTTPClient) Option {
	return func(s *Service) {
		s.client = c
	}
}

// WithHTTPClient uses c through the default net/http adapter.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) {
		s.client = httpx.NewDefaultHTTPClient(c)
	}
}

// WithLogger sets the logger for the service.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithRateLimit makes every request wait for a token from a limiter allowing
// rps requests per second with the given burst. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Service) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRequestID tags each request with a fresh X-Request-Id unless the
// caller already set one. gen defaults to a random UUID.
func WithRequestID(gen func() string) Option {
	return func(s *Service) {
		if gen == nil {
			gen = newRequestID
		}
		s.requestID = gen
	}
}

// NewService creates a Service. Without options it targets DefaultBaseURL
// with DefaultTimeout over net/http.
func NewService(opts ...Option) (*Service, error) {
	s := &Service{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		headers: DefaultHeaders(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = httpx.NewDefaultHTTPClient(nil)
	}

	if err := s.validate(); err != nil {
		return nil, sdkerr.New(subsys, "NewService", sdkerr.ErrConfiguration).
			WithMessage(err.Error())
	}
	return s, nil
}

func (s *Service) validate() error {
	var errs []error
	u, err := url.Parse(s.baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, errors.New("base url must be an absolute URL"))
	}
	if s.timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	return errors.Join(errs...)
}

// BaseURL returns the configured base URL.
func (s *Service) BaseURL() string { return s.baseURL }

// Timeout returns the configured request timeout.
func (s *Service) Timeout() time.Duration { return s.timeout }

// SetAuthToken replaces the bearer token. An empty token clears it.
// Requests already past header composition keep the token they captured.
func (s *Service) SetAuthToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// ClearAuthToken removes the bearer token.
func (s *Service) ClearAuthToken() {
	s.SetAuthToken("")
}

// AuthToken returns the current token and whether one is set.
func (s *Service) AuthToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// HasAuthToken reports whether a token is set.
func (s *Service) HasAuthToken() bool {
	_, ok := s.AuthToken()
	return ok
}

// composeHeaders layers defaults, caller overrides and the bearer token, in
// that order. Overrides cannot remove the Authorization header.
func (s *Service) composeHeaders(extra http.Header) http.Header {
	h := s.headers.Clone()
	for k, vs := range extra {
		h[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}
	if token, ok := s.AuthToken(); ok {
		h.Set(headerAuthorization, "Bearer "+token)
	}
	if s.requestID != nil && h.Get(headerRequestID) == "" {
		h.Set(headerRequestID, s.requestID())
	}
	return h
}

func (s *Service) debugf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Debugf(format, args...)
	}
}

func (s *Service) errorf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Errorf(format, args...)
	}
}
