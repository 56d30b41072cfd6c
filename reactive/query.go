package reactive

import (
	"context"
	"net/http"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/IvanTurko/carsite-client-go/internal/async"
	isync "github.com/IvanTurko/carsite-client-go/internal/sync"
	"github.com/IvanTurko/carsite-client-go/rest"
	"github.com/IvanTurko/carsite-client-go/sdkerr"
)

// QueryInput is the declarative input of a Query. Two inputs are the same
// when every field is equal by value.
type QueryInput struct {
	Path   string
	Params rest.Params
	// Enabled gates every execution. The zero value is disabled; use Fetch
	// for an enabled input.
	Enabled bool
	// Deps are extra values whose change forces a re-execution.
	Deps []any
	// Headers are sent with every execution. They do not take part in
	// change detection.
	Headers http.Header
}

// Fetch returns an enabled input for path.
func Fetch(path string, params rest.Params, deps ...any) QueryInput {
	return QueryInput{Path: path, Params: params, Enabled: true, Deps: deps}
}

func (in QueryInput) normalized() QueryInput {
	out := in
	if len(in.Params) == 0 {
		out.Params = nil
	} else {
		out.Params = append(rest.Params(nil), in.Params...)
	}
	if len(in.Deps) == 0 {
		out.Deps = nil
	} else {
		out.Deps = append([]any(nil), in.Deps...)
	}
	out.Headers = in.Headers.Clone()
	return out
}

func (in QueryInput) sameAs(other QueryInput) bool {
	return in.Path == other.Path &&
		in.Enabled == other.Enabled &&
		reflect.DeepEqual(in.Params, other.Params) &&
		reflect.DeepEqual(in.Deps, other.Deps)
}

// Query binds a GET to an input. Only the most recently triggered execution
// may publish its result, and nothing is published after Close.
type Query[T any] struct {
	r     rest.Requester
	gen   isync.Generation
	alive atomic.Bool
	store store[T]

	mu    sync.Mutex
	input QueryInput
}

// NewQuery creates the binding and, when input is enabled, starts the first
// execution immediately.
func NewQuery[T any](ctx context.Context, r rest.Requester, input QueryInput) *Query[T] {
	q := &Query[T]{
		r:     r,
		gen:   isync.NewGeneration(),
		input: input.normalized(),
	}
	q.alive.Store(true)
	if q.input.Enabled {
		q.trigger(ctx, q.input)
	}
	return q
}

// Watch replaces the input. An execution starts only if the input changed
// and is enabled; the returned flag reports whether one started.
func (q *Query[T]) Watch(ctx context.Context, input QueryInput) (async.Promise[T], bool) {
	if !q.alive.Load() {
		return async.Rejected[T](q.disposedErr("Query.Watch")), false
	}

	next := input.normalized()
	q.mu.Lock()
	changed := !q.input.sameAs(next)
	q.input = next
	q.mu.Unlock()

	switch {
	case !changed:
		return async.Resolved[T](nil), false
	case !next.Enabled:
		q.supersede()
		return async.Resolved[T](nil), false
	}
	return q.trigger(ctx, next), true
}

// Refetch re-runs the current input. It resolves with nil, without any
// request, while the input is disabled.
func (q *Query[T]) Refetch(ctx context.Context) async.Promise[T] {
	if !q.alive.Load() {
		return async.Rejected[T](q.disposedErr("Query.Refetch"))
	}

	q.mu.Lock()
	input := q.input
	q.mu.Unlock()

	if !input.Enabled {
		return async.Resolved[T](nil)
	}
	return q.trigger(ctx, input)
}

// State returns the current snapshot.
func (q *Query[T]) State() State[T] {
	return q.store.snapshot()
}

// Input returns the current input.
func (q *Query[T]) Input() QueryInput {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.input
}

// Subscribe registers fn for state changes and returns its cancel func.
func (q *Query[T]) Subscribe(fn Listener[T]) func() {
	return q.store.subscribe(fn)
}

// Close disposes the binding. Outstanding requests keep running but their
// settlements are discarded.
func (q *Query[T]) Close() {
	if q.alive.CompareAndSwap(true, false) {
		q.store.dropListeners()
	}
}

// Closed reports whether Close was called.
func (q *Query[T]) Closed() bool {
	return !q.alive.Load()
}

func (q *Query[T]) trigger(ctx context.Context, input QueryInput) async.Promise[T] {
	g := q.gen.Next()
	current := func() bool { return q.alive.Load() && q.gen.IsCurrent(g) }

	q.store.update(current, begin[T](false))

	p := async.NewPromise[T]()
	go func() {
		v, err := rest.SendOptional[T](ctx, q.r, rest.Call{
			Method:  http.MethodGet,
			Path:    input.Path,
			Params:  input.Params,
			Headers: input.Headers,
		})
		if err != nil {
			q.store.update(current, fail[T](err))
			p.Reject(err)
			return
		}
		q.store.update(current, succeed(v))
		p.Resolve(v)
	}()
	return p
}

// supersede discards any in-flight execution without starting a new one.
func (q *Query[T]) supersede() {
	g := q.gen.Next()
	q.store.update(func() bool {
		return q.alive.Load() && q.gen.IsCurrent(g) && q.store.state.Loading
	}, func(s *State[T]) {
		s.Loading = false
	})
}

func (q *Query[T]) disposedErr(op string) error {
	return sdkerr.New(subsys, op, sdkerr.ErrDisposed)
}
