// Package async provides a single-settlement promise used to hand the outcome
// of a background request back to whoever triggered it.
package async

import (
	"context"
	"fmt"
	"sync"
)

type PromiseErrSource uint8

const (
	FromUnknown PromiseErrSource = iota
	FromSettlement
	FromContext
)

func (s PromiseErrSource) String() string {
	switch s {
	case FromSettlement:
		return "settlement"
	case FromContext:
		return "context"
	default:
		return "unknown"
	}
}

// PromiseError wraps the reason Await failed. Unwrap exposes the original
// rejection (or the context error), so errors.As still finds an *sdkerr.APIError.
type PromiseError struct {
	Source PromiseErrSource
	Err    error
}

func (e *PromiseError) Error() string {
	return fmt.Sprintf("promise failed [%s]: %v", e.Source, e.Err)
}

func (e *PromiseError) Unwrap() error {
	return e.Err
}

// Promise settles exactly once. Later Resolve/Reject calls are ignored.
// Await may be called any number of times, from any goroutine.
type Promise[T any] interface {
	Resolve(v *T)
	Reject(err error)
	Await(ctx context.Context) (*T, error)
	Done() <-chan struct{}
}

func NewPromise[T any]() Promise[T] {
	return &promiseImp[T]{done: make(chan struct{})}
}

// Resolved returns an already settled promise.
func Resolved[T any](v *T) Promise[T] {
	p := NewPromise[T]()
	p.Resolve(v)
	return p
}

// Rejected returns an already rejected promise.
func Rejected[T any](err error) Promise[T] {
	p := NewPromise[T]()
	p.Reject(err)
	return p
}

type promiseImp[T any] struct {
	once  sync.Once
	done  chan struct{}
	value *T
	err   error
}

func (p *promiseImp[T]) Resolve(v *T) {
	p.once.Do(func() {
		p.value = v
		close(p.done)
	})
}

func (p *promiseImp[T]) Reject(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

func (p *promiseImp[T]) Done() <-chan struct{} {
	return p.done
}

func (p *promiseImp[T]) Await(ctx context.Context) (*T, error) {
	select {
	case <-p.done:
		if p.err != nil {
			return nil, &PromiseError{Source: FromSettlement, Err: p.err}
		}
		return p.value, nil
	case <-ctx.Done():
		return nil, &PromiseError{Source: FromContext, Err: ctx.Err()}
	}
}
