// Package deferred provides a memoizing container for expensive shared
// values. Construction runs exactly once no matter how many callers arrive
// concurrently; a failed construction substitutes a fallback value and
// reports the failure a single time.
package deferred

import (
	"context"
	"sync"
)

type state int

const (
	stateUninitialized state = iota
	stateInFlight
	stateReady
	stateDegraded
)

// Value holds a lazily or eagerly constructed shared value of type T.
// Once settled the value is immutable and safe for unsynchronized reads.
type Value[T any] struct {
	mu        sync.Mutex
	state     state
	value     T
	fallback  T
	init      func(context.Context) (T, error)
	onFailure func(error)
	done      chan struct{}
}

// NewLazy creates a Value whose construction starts on first access.
// onFailure may be nil; when set it fires exactly once if init fails.
func NewLazy[T any](init func(context.Context) (T, error), fallback T, onFailure func(error)) *Value[T] {
	return &Value[T]{
		fallback:  fallback,
		init:      init,
		onFailure: onFailure,
		done:      make(chan struct{}),
	}
}

// NewEager creates a Value and starts construction immediately,
// overlapping with other startup work.
func NewEager[T any](init func(context.Context) (T, error), fallback T, onFailure func(error)) *Value[T] {
	v := NewLazy(init, fallback, onFailure)
	go v.Get(context.Background())
	return v
}

// Get returns the shared value, constructing it if nobody has yet. All
// concurrent callers block on the same single construction. If ctx ends
// before construction settles, the fallback is returned; the construction
// itself keeps running and later callers still observe its outcome.
func (v *Value[T]) Get(ctx context.Context) T {
	v.mu.Lock()
	switch v.state {
	case stateReady, stateDegraded:
		value := v.value
		v.mu.Unlock()
		return value

	case stateInFlight:
		v.mu.Unlock()
		select {
		case <-v.done:
			return v.mustValue()
		case <-ctx.Done():
			return v.fallback
		}

	default:
		v.state = stateInFlight
		v.mu.Unlock()
	}

	// This caller won the race and performs the construction.
	value, err := v.init(ctx)

	v.mu.Lock()
	if err != nil {
		v.state = stateDegraded
		v.value = v.fallback
	} else {
		v.state = stateReady
		v.value = value
	}
	result := v.value
	notify := err != nil && v.onFailure != nil
	v.mu.Unlock()
	close(v.done)

	if notify {
		v.onFailure(err)
	}
	return result
}

// TryGet returns the value without blocking. The second result is false
// while the value is still uninitialized or in flight.
func (v *Value[T]) TryGet() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == stateReady || v.state == stateDegraded {
		return v.value, true
	}
	var zero T
	return zero, false
}

// Degraded reports whether construction failed and the fallback is in use.
func (v *Value[T]) Degraded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state == stateDegraded
}

func (v *Value[T]) mustValue() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}
