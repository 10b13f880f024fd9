package pool

import "sync"

// Resettable values are cleared before being returned to the pool.
type Resettable interface {
	Reset()
}

// Pool is a typed wrapper around sync.Pool.
type Pool[T any] struct {
	p *sync.Pool
}

func New[T any](new func() T) Pool[T] {
	return Pool[T]{
		p: &sync.Pool{
			New: func() any { return new() },
		},
	}
}

func (p Pool[T]) Get() T {
	return p.p.Get().(T)
}

func (p Pool[T]) Put(v T) {
	if r, ok := any(v).(Resettable); ok {
		r.Reset()
	}
	p.p.Put(v)
}
