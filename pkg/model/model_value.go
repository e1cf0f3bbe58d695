package model

import "strings"

// ModelValue is the host-owned selection: a single scalar or, in multiple
// mode, an ordered list without duplicates. It is immutable; every mutation
// builds a new value so readers never observe a partial update.
type ModelValue struct {
	scalar Value
	list   []Value
	multi  bool
}

// Single returns a scalar model value.
func Single(v Value) ModelValue {
	return ModelValue{scalar: v}
}

// Multi returns a sequence model value holding a copy of vs.
func Multi(vs ...Value) ModelValue {
	list := make([]Value, len(vs))
	copy(list, vs)
	return ModelValue{list: list, multi: true}
}

// IsMulti reports whether the value is a sequence.
func (m ModelValue) IsMulti() bool { return m.multi }

// Scalar returns the single value (None for sequences).
func (m ModelValue) Scalar() Value {
	if m.multi {
		return None
	}
	return m.scalar
}

// Values returns the selected values in selection order.
func (m ModelValue) Values() []Value {
	if !m.multi {
		if m.scalar.IsNone() {
			return nil
		}
		return []Value{m.scalar}
	}
	out := make([]Value, len(m.list))
	copy(out, m.list)
	return out
}

// Len returns the number of selected values.
func (m ModelValue) Len() int {
	if m.multi {
		return len(m.list)
	}
	if m.scalar.IsNone() {
		return 0
	}
	return 1
}

// IsEmpty reports whether nothing is selected.
func (m ModelValue) IsEmpty() bool { return m.Len() == 0 }

// Contains is strict membership for sequences and equality for scalars.
func (m ModelValue) Contains(v Value) bool {
	if v.IsNone() {
		return false
	}
	if !m.multi {
		return m.scalar.Equal(v)
	}
	return indexOf(m.list, v) >= 0
}

// Equal reports whether two model values hold the same shape and contents.
func (m ModelValue) Equal(o ModelValue) bool {
	if m.multi != o.multi {
		return false
	}
	if !m.multi {
		return m.scalar.Equal(o.scalar)
	}
	if len(m.list) != len(o.list) {
		return false
	}
	for i := range m.list {
		if !m.list[i].Equal(o.list[i]) {
			return false
		}
	}
	return true
}

func (m ModelValue) String() string {
	if !m.multi {
		return m.scalar.String()
	}
	parts := make([]string, len(m.list))
	for i, v := range m.list {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func indexOf(list []Value, v Value) int {
	for i, x := range list {
		if x.Equal(v) {
			return i
		}
	}
	return -1
}
