package bridge

import (
	"sync"

	"github.com/google/uuid"
)

// Registry maps handles to listeners. The interpreter owns the listeners;
// workers only ever see the handles.
type Registry[V any] struct {
	mu        sync.RWMutex
	listeners map[Handle]V
}

func NewRegistry[V any]() *Registry[V] {
	return &Registry[V]{listeners: make(map[Handle]V)}
}

func (r *Registry[V]) Register(listener V) Handle {
	h := uuid.New()
	r.mu.Lock()
	r.listeners[h] = listener
	r.mu.Unlock()
	return h
}

func (r *Registry[V]) Get(h Handle) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.listeners[h]
	return v, ok
}

func (r *Registry[V]) Release(h Handle) {
	r.mu.Lock()
	delete(r.listeners, h)
	r.mu.Unlock()
}

func (r *Registry[V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners)
}

// Each calls fn for every registered listener.
func (r *Registry[V]) Each(fn func(Handle, V)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for h, v := range r.listeners {
		fn(h, v)
	}
}
