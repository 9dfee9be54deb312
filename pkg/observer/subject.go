// Package observer fans published values out to registered subscribers.
package observer

import (
	"context"
	"slices"
	"sync"
)

// Observer receives published values of type T.
type Observer[T any] interface {
	Notify(context.Context, T) error
}

// ObserverFunc adapts a plain function to Observer.
//
//revive:disable-next-line:exported
type ObserverFunc[T any] func(context.Context, T) error

// Notify calls f. A nil func is a no-op.
func (f ObserverFunc[T]) Notify(ctx context.Context, v T) error {
	if f == nil {
		return nil
	}
	return f(ctx, v)
}

// Publisher is the producer-side view of a Subject.
type Publisher[T any] interface {
	Publish(context.Context, T)
}

type subscription[T any] struct {
	id  uint64
	obs Observer[T]
}

// Subject delivers every published value to each subscriber in subscription
// order. Observers run on the publishing goroutine and must not block.
type Subject[T any] struct {
	mu      sync.RWMutex
	subs    []subscription[T]
	nextID  uint64
	onError func(error)
}

// NewSubject returns a Subject with optional initial observers.
func NewSubject[T any](observers ...Observer[T]) *Subject[T] {
	s := &Subject[T]{}
	for _, o := range observers {
		s.Subscribe(o)
	}
	return s
}

// Publish hands v to every subscriber. Errors go to the error handler, if any.
func (s *Subject[T]) Publish(ctx context.Context, v T) {
	if s == nil {
		return
	}

	s.mu.RLock()
	subs := slices.Clone(s.subs)
	onError := s.onError
	s.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.obs.Notify(ctx, v); err != nil && onError != nil {
			onError(err)
		}
	}
}

// Subscribe registers obs and returns a func that removes it again. The
// returned func is safe to call more than once.
func (s *Subject[T]) Subscribe(obs Observer[T]) (unsubscribe func()) {
	if s == nil || obs == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription[T]{id: id, obs: obs})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *Subject[T]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = slices.DeleteFunc(s.subs, func(sub subscription[T]) bool { return sub.id == id })
}

// Len reports the number of active subscribers.
func (s *Subject[T]) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// SetErrorHandler sets the callback for observer errors.
func (s *Subject[T]) SetErrorHandler(fn func(error)) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.onError = fn
	s.mu.Unlock()
}
