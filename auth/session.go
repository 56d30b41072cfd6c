// Package auth composes the request service and the reactive bindings into a
// login/profile/logout flow.
//
// The bearer token lives on the service; the session only sets and clears it.
// The profile query is gated by an "authenticated" predicate that is
// re-evaluated whenever Refresh or GetProfile is called.
package auth

import (
	"context"
	"net/http"

	"github.com/IvanTurko/carsite-client-go/internal/async"
	"github.com/IvanTurko/carsite-client-go/reactive"
	"github.com/IvanTurko/carsite-client-go/rest"
	"github.com/IvanTurko/carsite-client-go/sdkerr"
)

const subsys = "auth"

// Client is the part of rest.Service a Session uses.
type Client interface {
	rest.Requester
	SetAuthToken(token string)
	ClearAuthToken()
	HasAuthToken() bool
}

var _ Client = (*rest.Service)(nil)

type Session struct {
	c             Client
	authenticated func() bool
	logger        rest.Logger

	login    *reactive.Mutation[LoginResponse, LoginPayload]
	register *reactive.Mutation[LoginResponse, RegisterPayload]
	logout   *reactive.Mutation[any, any]
	profile  *reactive.Query[Profile]
}

type Option func(*Session)

// WithAuthenticated replaces the predicate that enables the profile query.
// By default the session is authenticated while the client holds a token.
func WithAuthenticated(fn func() bool) Option {
	return func(s *Session) {
		s.authenticated = fn
	}
}

func WithLogger(l rest.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// NewSession wires the auth bindings to c. When the predicate already holds,
// the profile is fetched right away using ctx.
func NewSession(ctx context.Context, c Client, opts ...Option) (*Session, error) {
	if c == nil {
		return nil, sdkerr.New(subsys, "NewSession", sdkerr.ErrConfiguration).
			WithMessage("client is required")
	}

	s := &Session{c: c}
	for _, opt := range opts {
		opt(s)
	}
	if s.authenticated == nil {
		s.authenticated = c.HasAuthToken
	}

	var err error
	if s.login, err = reactive.NewMutation[LoginResponse, LoginPayload](c, EndpointLogin, http.MethodPost); err != nil {
		return nil, err
	}
	if s.register, err = reactive.NewMutation[LoginResponse, RegisterPayload](c, EndpointRegister, http.MethodPost); err != nil {
		return nil, err
	}
	if s.logout, err = reactive.NewMutation[any, any](c, EndpointLogout, http.MethodPost); err != nil {
		return nil, err
	}
	s.profile = reactive.NewQuery[Profile](ctx, c, s.profileInput())
	return s, nil
}

// Login posts the credentials and stores the returned token on success. A
// failed login leaves any existing token in place. The response is nil when
// the backend answered without a body.
func (s *Session) Login(ctx context.Context, p LoginPayload) (*LoginResponse, error) {
	res, err := s.login.Mutate(ctx, p)
	if err != nil {
		s.errorf("login failed: %v", err)
		return nil, err
	}
	s.storeToken(res)
	return res, nil
}

// Register creates an account. A token in the response signs the user in.
func (s *Session) Register(ctx context.Context, p RegisterPayload) (*LoginResponse, error) {
	res, err := s.register.Mutate(ctx, p)
	if err != nil {
		s.errorf("register failed: %v", err)
		return nil, err
	}
	s.storeToken(res)
	return res, nil
}

// Profile returns the query bound to the profile endpoint.
func (s *Session) Profile() *reactive.Query[Profile] {
	return s.profile
}

// Refresh re-evaluates the predicate and updates the profile query's input.
// It reports whether that started a fetch.
func (s *Session) Refresh(ctx context.Context) (async.Promise[Profile], bool) {
	return s.profile.Watch(ctx, s.profileInput())
}

// GetProfile fetches the profile if the session is authenticated. The
// promise resolves with nil, without a request, when it is not.
func (s *Session) GetProfile(ctx context.Context) async.Promise[Profile] {
	if p, started := s.Refresh(ctx); started {
		return p
	}
	return s.profile.Refetch(ctx)
}

// Logout forgets the token locally.
func (s *Session) Logout() {
	s.c.ClearAuthToken()
	s.debugf("auth token cleared")
}

// LogoutRemote notifies the backend, then forgets the token. The token is
// cleared even when the backend call fails.
func (s *Session) LogoutRemote(ctx context.Context) error {
	_, err := s.logout.Mutate(ctx, nil)
	s.Logout()
	if err != nil {
		s.errorf("remote logout failed: %v", err)
	}
	return err
}

func (s *Session) LoginState() reactive.State[LoginResponse] {
	return s.login.State()
}

func (s *Session) RegisterState() reactive.State[LoginResponse] {
	return s.register.State()
}

func (s *Session) ProfileState() reactive.State[Profile] {
	return s.profile.State()
}

// Close disposes the profile query.
func (s *Session) Close() {
	s.profile.Close()
}

func (s *Session) profileInput() reactive.QueryInput {
	return reactive.QueryInput{Path: EndpointProfile, Enabled: s.authenticated()}
}

func (s *Session) storeToken(res *LoginResponse) {
	if res == nil || res.Token == "" {
		return
	}
	s.c.SetAuthToken(res.Token)
	s.debugf("auth token stored")
}

func (s *Session) debugf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Debugf(format, args...)
	}
}

func (s *Session) errorf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Errorf(format, args...)
	}
}
