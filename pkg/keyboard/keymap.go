package keyboard

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap binds terminal keys to the keys the Machine understands.
// It satisfies help.KeyMap so a bubbles/help view can render it.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Home      key.Binding
	End       key.Binding
	Left      key.Binding
	Right     key.Binding
	Enter     key.Binding
	Space     key.Binding
	Escape    key.Binding
	Tab       key.Binding
	Backspace key.Binding
}

// DefaultKeyMap returns the stock bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "next"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("home", "first"),
		),
		End: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("end", "last"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "parent/collapse"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "expand"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Space: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select/open"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "close"),
		),
		Backspace: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("⌫", "remove last"),
		),
	}
}

func (km *KeyMap) entries() []struct {
	name    string
	key     Key
	binding *key.Binding
} {
	return []struct {
		name    string
		key     Key
		binding *key.Binding
	}{
		{"up", KeyArrowUp, &km.Up},
		{"down", KeyArrowDown, &km.Down},
		{"page_up", KeyPageUp, &km.PageUp},
		{"page_down", KeyPageDown, &km.PageDown},
		{"home", KeyHome, &km.Home},
		{"end", KeyEnd, &km.End},
		{"left", KeyArrowLeft, &km.Left},
		{"right", KeyArrowRight, &km.Right},
		{"enter", KeyEnter, &km.Enter},
		{"space", KeySpace, &km.Space},
		{"escape", KeyEscape, &km.Escape},
		{"tab", KeyTab, &km.Tab},
		{"backspace", KeyBackspace, &km.Backspace},
	}
}

// Resolve maps a bubbletea key message to a machine Key.
func (km KeyMap) Resolve(msg tea.KeyMsg) (Key, bool) {
	for _, e := range km.entries() {
		if key.Matches(msg, *e.binding) {
			return e.key, true
		}
	}
	return "", false
}

// Override rebinds the named action (e.g. "down", "page_up") to keys.
// A single printable character such as "j" is accepted here, but in a
// searchable select it would navigate instead of reaching the search input;
// see PrintableKeys.
func (km *KeyMap) Override(name string, keys []string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, e := range km.entries() {
		if e.name == name {
			if len(keys) == 0 {
				return fmt.Errorf("binding %q: no keys given", name)
			}
			e.binding.SetKeys(keys...)
			return nil
		}
	}
	return fmt.Errorf("unknown binding %q", name)
}

// PrintableKeys lists the bound keys that are single printable characters,
// as "name=key". The space binding is skipped: the machine already lets a
// space through to the search input.
func (km KeyMap) PrintableKeys() []string {
	var out []string
	for _, e := range km.entries() {
		if e.key == KeySpace {
			continue
		}
		for _, k := range e.binding.Keys() {
			if r, size := utf8.DecodeRuneInString(k); size == len(k) && r != utf8.RuneError && unicode.IsPrint(r) {
				out = append(out, e.name+"="+k)
			}
		}
	}
	return out
}

// ShortHelp implements help.KeyMap.
func (km KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{km.Up, km.Down, km.Enter, km.Escape}
}

// FullHelp implements help.KeyMap.
func (km KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{km.Up, km.Down, km.PageUp, km.PageDown, km.Home, km.End},
		{km.Left, km.Right, km.Enter, km.Space, km.Escape, km.Tab, km.Backspace},
	}
}
