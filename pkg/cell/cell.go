// Package cell provides a small observable value holder.
//
// A Cell stands in for a host-bound reactive reference: the host owns the
// value, the engine reads and replaces it, and subscribers are told about
// every replacement synchronously. There is no scheduling and no locking;
// cells belong to a single goroutine.
package cell

// Cell holds a value and notifies subscribers when it is replaced.
type Cell[T any] struct {
	value     T
	listeners []func(old, new T)
}

// New returns a cell holding v.
func New[T any](v T) *Cell[T] {
	return &Cell[T]{value: v}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	return c.value
}

// Set replaces the value and notifies subscribers in registration order.
func (c *Cell[T]) Set(v T) {
	old := c.value
	c.value = v
	for _, fn := range c.listeners {
		fn(old, v)
	}
}

// Subscribe registers fn to run after every Set.
func (c *Cell[T]) Subscribe(fn func(old, new T)) {
	if fn == nil {
		return
	}
	c.listeners = append(c.listeners, fn)
}
