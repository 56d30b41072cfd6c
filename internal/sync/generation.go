package sync

import "sync/atomic"

// Generation is a monotonically increasing tag used to tell the latest
// execution apart from superseded ones.
type Generation interface {
	// Current returns the latest issued generation (0 before the first Next).
	Current() uint64
	// Next issues a new generation and returns it.
	Next() uint64
	// IsCurrent reports whether g is still the latest generation.
	IsCurrent(g uint64) bool
}

type generation struct {
	value atomic.Uint64
}

func NewGeneration() Generation {
	return &generation{}
}

func (c *generation) Current() uint64 {
	return c.value.Load()
}

func (c *generation) Next() uint64 {
	return c.value.Add(1)
}

func (c *generation) IsCurrent(g uint64) bool {
	return c.value.Load() == g
}
