// Package selection owns reads and writes of the host's model value.
package selection

import (
	"github.com/vanderheijden86/treeselect/pkg/cell"
	"github.com/vanderheijden86/treeselect/pkg/debug"
	"github.com/vanderheijden86/treeselect/pkg/model"
	"github.com/vanderheijden86/treeselect/pkg/options"
)

// Selection mutates a model value cell. It never touches the option tree.
type Selection struct {
	value         *cell.Cell[model.ModelValue]
	multiple      bool
	closeOnSelect func()
}

// New creates a Selection over value. closeOnSelect runs after a
// single-mode selection; it may be nil.
func New(value *cell.Cell[model.ModelValue], multiple bool, closeOnSelect func()) *Selection {
	return &Selection{
		value:         value,
		multiple:      multiple,
		closeOnSelect: closeOnSelect,
	}
}

// Multiple reports whether the selection is in multiple mode.
func (s *Selection) Multiple() bool {
	return s.multiple
}

// Value returns the current model value.
func (s *Selection) Value() model.ModelValue {
	return s.value.Get()
}

// Selected returns the selected values in selection order.
func (s *Selection) Selected() []model.Value {
	return s.value.Get().Values()
}

// IsSelected reports whether v is part of the selection. None is never selected.
func (s *Selection) IsSelected(v model.Value) bool {
	return s.value.Get().Contains(v)
}

// HandleSelect applies a row selection. Disabled rows, group headers,
// creator rows and unvalued rows are ignored. In multiple mode membership is
// toggled; in single mode the value is replaced and closeOnSelect runs.
func (s *Selection) HandleSelect(opt model.FlatOption) {
	if opt.Disabled || opt.IsGroup() || opt.IsCreator() || opt.Value.IsNone() {
		return
	}

	if s.multiple {
		current := s.value.Get()
		var list []model.Value
		if current.IsMulti() {
			list = current.Values()
		}
		idx := -1
		for i, v := range list {
			if v.Equal(opt.Value) {
				idx = i
				break
			}
		}
		if idx > -1 {
			list = append(list[:idx], list[idx+1:]...)
			debug.Log("selection: removed %s", opt.Value)
		} else {
			list = append(list, opt.Value)
			debug.Log("selection: added %s", opt.Value)
		}
		s.value.Set(model.Multi(list...))
		return
	}

	s.value.Set(model.Single(opt.Value))
	debug.Log("selection: set %s", opt.Value)
	if s.closeOnSelect != nil {
		s.closeOnSelect()
	}
}

// RemoveValue drops every occurrence of v from a sequence, or clears a
// matching scalar. Anything else is a no-op.
func (s *Selection) RemoveValue(v model.Value) {
	current := s.value.Get()
	if current.IsMulti() {
		var kept []model.Value
		for _, x := range current.Values() {
			if !x.Equal(v) {
				kept = append(kept, x)
			}
		}
		s.value.Set(model.Multi(kept...))
		return
	}
	if !v.IsNone() && current.Scalar().Equal(v) {
		s.value.Set(model.Single(model.None))
	}
}

// RemoveLast pops the most recently added value. Multiple mode only; no-op
// when the sequence is empty.
func (s *Selection) RemoveLast() {
	current := s.value.Get()
	if !s.multiple || !current.IsMulti() || current.Len() == 0 {
		return
	}
	list := current.Values()
	s.value.Set(model.Multi(list[:len(list)-1]...))
}

// SelectedOptions resolves the selection against tree, skipping values that
// no longer exist in it.
func (s *Selection) SelectedOptions(tree []model.Option) []model.Option {
	var out []model.Option
	for _, v := range s.Selected() {
		if opt, ok := options.FindOption(tree, v); ok {
			out = append(out, opt)
		}
	}
	return out
}
