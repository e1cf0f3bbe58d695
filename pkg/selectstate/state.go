// Package selectstate holds the open/closed, search and highlight state of a select.
package selectstate

// NoHighlight is the highlightedIndex sentinel for "nothing highlighted".
const NoHighlight = -1

// State is the basic UI state of a select.
type State struct {
	isOpen      bool
	searchQuery string
	highlighted int
	disabled    func() bool
}

// New creates a closed state. disabled is consulted on every Open; nil means
// never disabled.
func New(disabled func() bool) *State {
	if disabled == nil {
		disabled = func() bool { return false }
	}
	return &State{
		highlighted: NoHighlight,
		disabled:    disabled,
	}
}

// IsOpen reports whether the menu is open.
func (s *State) IsOpen() bool { return s.isOpen }

// SearchQuery returns the current search text.
func (s *State) SearchQuery() string { return s.searchQuery }

// HighlightedIndex returns the highlighted flat-list index or NoHighlight.
func (s *State) HighlightedIndex() int { return s.highlighted }

// Open opens the menu unless disabled.
func (s *State) Open() {
	if s.disabled() {
		return
	}
	s.isOpen = true
}

// Close closes the menu and resets search and highlight.
func (s *State) Close() {
	s.isOpen = false
	s.searchQuery = ""
	s.highlighted = NoHighlight
}

// Toggle closes an open menu or opens a closed one.
func (s *State) Toggle() {
	if s.isOpen {
		s.Close()
	} else {
		s.Open()
	}
}

// SetHighlight assigns the highlighted index. Callers own bounds checking.
func (s *State) SetHighlight(i int) {
	s.highlighted = i
}

// SetQuery replaces the search text.
func (s *State) SetQuery(q string) {
	s.searchQuery = q
}
