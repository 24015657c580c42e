// Package settings is the library of value, group, period, scale, time-group
// and averaging definitions the aggregators are parameterized with.
package settings

import "fmt"

// UnknownKeyError is returned when a definition key is not in the library.
type UnknownKeyError struct {
	Kind string
	Key  string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Key)
}

type registry[T any] struct {
	kind  string
	order []string
	items map[string]T
}

func newRegistry[T any](kind string) *registry[T] {
	return &registry[T]{kind: kind, items: make(map[string]T)}
}

func (r *registry[T]) add(key string, v T) {
	if _, ok := r.items[key]; !ok {
		r.order = append(r.order, key)
	}
	r.items[key] = v
}

func (r *registry[T]) get(key string) (T, error) {
	v, ok := r.items[key]
	if !ok {
		var zero T
		return zero, &UnknownKeyError{Kind: r.kind, Key: key}
	}
	return v, nil
}

func (r *registry[T]) keys() []string {
	return append([]string(nil), r.order...)
}
