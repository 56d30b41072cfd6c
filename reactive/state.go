// Package reactive binds request-service calls to observable state.
//
// Query re-runs a GET whenever its declared input changes and only lets the
// latest execution publish. Mutation wraps a state-changing call that runs
// on demand. Both expose a State snapshot and change notifications through
// Subscribe; a UI adapter drives them by calling Watch, Refetch or Mutate.
package reactive

import "sync"

const subsys = "reactive"

// State is the observable outcome of a binding.
//
// Loading is true from the start of an execution until it settles. A
// successful settlement clears Err; a failed one clears Data.
type State[T any] struct {
	// Data is nil until a successful settlement, and stays nil when that
	// settlement carried no body.
	Data *T
	// Err is usually an *sdkerr.APIError. Cancellation by the caller's own
	// context is reported unchanged.
	Err     error
	Loading bool
}

// Listener receives every state change, in order. It may call back into the
// binding (Watch, Refetch, Mutate); changes made that way are delivered once
// the current listener returns.
type Listener[T any] func(State[T])

type subscriber[T any] struct {
	id int
	fn Listener[T]
}

// store guards a State and fans changes out to listeners.
//
// Changes are queued under mu. Whoever finds no delivery in progress drains
// the queue with mu released, so listeners may re-enter the store.
type store[T any] struct {
	mu          sync.Mutex
	state       State[T]
	subscribers []subscriber[T]
	nextID      int

	pending  []State[T]
	draining bool
}

func (s *store[T]) snapshot() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *store[T]) subscribe(fn Listener[T]) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subscribers = append(s.subscribers, subscriber[T]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subscribers {
				if sub.id == id {
					s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

// dropListeners removes every listener and discards undelivered changes.
func (s *store[T]) dropListeners() {
	s.mu.Lock()
	s.subscribers = nil
	s.pending = nil
	s.mu.Unlock()
}

// update applies fn when allow (evaluated under the lock) returns true, then
// notifies listeners. It reports whether the change was applied.
func (s *store[T]) update(allow func() bool, fn func(*State[T])) bool {
	s.mu.Lock()
	if allow != nil && !allow() {
		s.mu.Unlock()
		return false
	}
	fn(&s.state)
	s.pending = append(s.pending, s.state)
	if s.draining {
		s.mu.Unlock()
		return true
	}
	s.draining = true
	s.mu.Unlock()

	s.drain()
	return true
}

func (s *store[T]) drain() {
	s.mu.Lock()
	defer func() {
		s.draining = false
		s.mu.Unlock()
	}()
	for len(s.pending) > 0 {
		snap := s.pending[0]
		s.pending = s.pending[1:]
		subs := append([]subscriber[T](nil), s.subscribers...)

		s.mu.Unlock()
		for _, sub := range subs {
			sub.fn(snap)
		}
		s.mu.Lock()
	}
}

func begin[T any](clearData bool) func(*State[T]) {
	return func(s *State[T]) {
		s.Loading = true
		s.Err = nil
		if clearData {
			s.Data = nil
		}
	}
}

// succeed publishes v. A nil v means the response had no body.
func succeed[T any](v *T) func(*State[T]) {
	return func(s *State[T]) {
		s.Data = v
		s.Err = nil
		s.Loading = false
	}
}

func fail[T any](err error) func(*State[T]) {
	return func(s *State[T]) {
		s.Data = nil
		s.Err = err
		s.Loading = false
	}
}
