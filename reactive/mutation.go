package reactive

import (
	"context"
	"net/http"
	"strings"

	"github.com/IvanTurko/carsite-client-go/rest"
	"github.com/IvanTurko/carsite-client-go/sdkerr"
)

// Mutation binds a POST, PUT, PATCH or DELETE to manual invocation.
//
// Concurrent Mutate calls are not coordinated: whichever settles last
// determines the state. Callers that need ordering must serialize calls.
type Mutation[T, B any] struct {
	r      rest.Requester
	path   string
	method string
	store  store[T]
}

// NewMutation creates a Mutation. An empty method means POST.
//
// DELETE mutations ignore the body passed to Mutate and send a query-only
// request.
func NewMutation[T, B any](r rest.Requester, path, method string) (*Mutation[T, B], error) {
	method = strings.ToUpper(method)
	switch method {
	case "":
		method = http.MethodPost
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return nil, sdkerr.New(subsys, "NewMutation", sdkerr.ErrValidation).
			WithMessagef("unsupported mutation method %q", method)
	}
	return &Mutation[T, B]{r: r, path: path, method: method}, nil
}

// Path returns the bound path.
func (m *Mutation[T, B]) Path() string { return m.path }

// Method returns the bound HTTP method.
func (m *Mutation[T, B]) Method() string { return m.method }

// Mutate sends body and blocks until the call settles. The result is nil
// when the response had no body. The error is also stored in the state, so
// callers may react either way.
func (m *Mutation[T, B]) Mutate(ctx context.Context, body B) (*T, error) {
	m.store.update(nil, begin[T](true))

	call := rest.Call{Method: m.method, Path: m.path}
	if m.method != http.MethodDelete {
		call.Body = body
	}

	v, err := rest.SendOptional[T](ctx, m.r, call)
	if err != nil {
		m.store.update(nil, fail[T](err))
		return nil, err
	}
	m.store.update(nil, succeed(v))
	return v, nil
}

// State returns the current snapshot.
func (m *Mutation[T, B]) State() State[T] {
	return m.store.snapshot()
}

// Subscribe registers fn for state changes and returns its cancel func.
func (m *Mutation[T, B]) Subscribe(fn Listener[T]) func() {
	return m.store.subscribe(fn)
}
