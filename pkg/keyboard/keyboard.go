// Package keyboard interprets key events against the flat option list.
//
// The Machine is a pure interpreter: it reads state from a Host, decides, and
// calls back into the Host for every mutation. It holds no state of its own
// beyond construction flags.
package keyboard

import "github.com/vanderheijden86/treeselect/pkg/model"

// DefaultPageStep is how many navigable rows PageUp/PageDown move.
const DefaultPageStep = 10

// Key identifies a key the machine understands. Values match DOM key names.
type Key string

const (
	KeyBackspace  Key = "Backspace"
	KeySpace      Key = " "
	KeyEnter      Key = "Enter"
	KeyArrowDown  Key = "ArrowDown"
	KeyArrowUp    Key = "ArrowUp"
	KeyArrowLeft  Key = "ArrowLeft"
	KeyArrowRight Key = "ArrowRight"
	KeyPageDown   Key = "PageDown"
	KeyPageUp     Key = "PageUp"
	KeyHome       Key = "Home"
	KeyEnd        Key = "End"
	KeyEscape     Key = "Escape"
	KeyTab        Key = "Tab"
)

// Event is a key press whose default action can be suppressed.
type Event struct {
	Key Key

	defaultPrevented   bool
	propagationStopped bool
}

// NewEvent returns an event for k.
func NewEvent(k Key) *Event {
	return &Event{Key: k}
}

// PreventDefault marks the event as consumed by the select.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// StopPropagation marks the event as not to be seen by outer handlers.
func (e *Event) StopPropagation() { e.propagationStopped = true }

// PropagationStopped reports whether StopPropagation was called.
func (e *Event) PropagationStopped() bool { return e.propagationStopped }

// Host is the state the machine reads and the commands it issues.
type Host interface {
	IsOpen() bool
	HighlightedIndex() int
	VisibleOptions() []model.FlatOption
	NavigableIndices() []int
	CreatorActive() bool
	SearchQuery() string
	Disabled() bool
	IsCollapsed(v model.Value) bool

	Open()
	Close()
	Select(opt model.FlatOption)
	ToggleCollapse(v model.Value)
	CancelCreator()
	SetHighlight(i int)
	RemoveLast()
}

// Machine is the keyboard navigation state machine.
type Machine struct {
	host       Host
	multiple   bool
	searchable bool
	pageStep   int
}

// Option configures a Machine.
type Option func(*Machine)

// WithPageStep overrides the PageUp/PageDown step.
func WithPageStep(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.pageStep = n
		}
	}
}

// New creates a Machine bound to host.
func New(host Host, multiple, searchable bool, opts ...Option) *Machine {
	m := &Machine{
		host:       host,
		multiple:   multiple,
		searchable: searchable,
		pageStep:   DefaultPageStep,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// HandleKey applies ev. Keys the machine does not act on are left untouched
// so a host text input can receive them.
func (m *Machine) HandleKey(ev *Event) {
	h := m.host
	if h.Disabled() {
		return
	}

	// While the creator row is editing, only Escape belongs to the select.
	if h.CreatorActive() {
		if ev.Key == KeyEscape {
			ev.PreventDefault()
			ev.StopPropagation()
			h.CancelCreator()
		}
		return
	}

	switch ev.Key {
	case KeyBackspace:
		if m.multiple && len(h.SearchQuery()) == 0 {
			h.RemoveLast()
		}

	case KeySpace:
		if m.searchable && h.IsOpen() {
			// literal space for the search input
			return
		}
		ev.PreventDefault()
		if h.IsOpen() && h.HighlightedIndex() > -1 {
			m.selectHighlighted()
		} else if !h.IsOpen() {
			h.Open()
		}

	case KeyEnter:
		ev.PreventDefault()
		if h.IsOpen() && h.HighlightedIndex() > -1 {
			m.selectHighlighted()
		} else {
			h.Open()
		}

	case KeyArrowDown:
		ev.PreventDefault()
		m.navigate(1, 1, true)

	case KeyArrowUp:
		ev.PreventDefault()
		m.navigate(-1, 1, true)

	case KeyPageDown:
		ev.PreventDefault()
		m.navigate(1, m.pageStep, false)

	case KeyPageUp:
		ev.PreventDefault()
		m.navigate(-1, m.pageStep, false)

	case KeyHome:
		ev.PreventDefault()
		if indices := h.NavigableIndices(); h.IsOpen() && len(indices) > 0 {
			h.SetHighlight(indices[0])
		}

	case KeyEnd:
		ev.PreventDefault()
		if indices := h.NavigableIndices(); h.IsOpen() && len(indices) > 0 {
			h.SetHighlight(indices[len(indices)-1])
		}

	case KeyArrowRight:
		if (m.searchable && h.IsOpen()) || !h.IsOpen() {
			return
		}
		opt, ok := m.highlighted()
		if ok && opt.HasChildren() && h.IsCollapsed(opt.Value) {
			h.ToggleCollapse(opt.Value)
		}

	case KeyArrowLeft:
		if (m.searchable && h.IsOpen()) || !h.IsOpen() {
			return
		}
		opt, ok := m.highlighted()
		if !ok {
			return
		}
		if opt.Depth > 0 && !opt.ParentValue.IsNone() {
			if idx := indexOfValue(h.VisibleOptions(), opt.ParentValue); idx > -1 {
				h.SetHighlight(idx)
			}
		} else if opt.HasChildren() && !opt.Value.IsNone() && !h.IsCollapsed(opt.Value) {
			h.ToggleCollapse(opt.Value)
		}

	case KeyEscape:
		ev.PreventDefault()
		h.Close()

	case KeyTab:
		// focus is allowed to move on
		if h.IsOpen() {
			h.Close()
		}
	}
}

func (m *Machine) highlighted() (model.FlatOption, bool) {
	rows := m.host.VisibleOptions()
	i := m.host.HighlightedIndex()
	if i < 0 || i >= len(rows) {
		return model.FlatOption{}, false
	}
	return rows[i], true
}

func (m *Machine) selectHighlighted() {
	if opt, ok := m.highlighted(); ok && !opt.Disabled {
		m.host.Select(opt)
	}
}

// navigate moves the highlight through the navigable indices. dir is +1 or
// -1. On a closed menu it only opens.
func (m *Machine) navigate(dir, step int, wrap bool) {
	h := m.host
	if !h.IsOpen() {
		h.Open()
		return
	}
	indices := h.NavigableIndices()
	n := len(indices)
	if n == 0 {
		return
	}

	pos := -1
	current := h.HighlightedIndex()
	for i, idx := range indices {
		if idx == current {
			pos = i
			break
		}
	}

	var next int
	switch {
	case pos == -1 && dir > 0:
		next = 0
	case pos == -1:
		next = n - 1
	case wrap:
		next = ((pos+dir*step)%n + n) % n
	case dir > 0:
		next = min(pos+step, n-1)
	default:
		next = max(pos-step, 0)
	}

	if next >= 0 && next < n {
		h.SetHighlight(indices[next])
		return
	}
	h.SetHighlight(indices[0])
}

func indexOfValue(rows []model.FlatOption, v model.Value) int {
	for i, row := range rows {
		if row.Value.Equal(v) {
			return i
		}
	}
	return -1
}
