package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/treeselect/pkg/creator"
	"github.com/vanderheijden86/treeselect/pkg/debug"
	"github.com/vanderheijden86/treeselect/pkg/keyboard"
	"github.com/vanderheijden86/treeselect/pkg/model"
	"github.com/vanderheijden86/treeselect/pkg/options"
	"github.com/vanderheijden86/treeselect/pkg/selector"
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

const defaultMaxHeight = 10

// Region is a screen rectangle that belongs to the select. A mouse press
// outside the select's own area and every registered Region counts as a
// click outside. A non-positive Width spans the whole line.
type Region struct {
	X, Y          int
	Width, Height int
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Region) Contains(x, y int) bool {
	if y < r.Y || y >= r.Y+r.Height {
		return false
	}
	if r.Width <= 0 {
		return x >= r.X
	}
	return x >= r.X && x < r.X+r.Width
}

// SelectModelConfig configures a SelectModel. Zero fields take defaults.
type SelectModelConfig struct {
	Keys               keyboard.KeyMap
	Theme              Theme
	Placeholder        string
	CreatorPlaceholder string
	MaxHeight          int  // rows shown while open
	QuitOnSelect       bool // single mode: finish once a value is chosen

	// StatePath enables collapse persistence; StateKey names the source.
	StatePath string
	StateKey  string

	// Watch is re-armed after every OptionsReloadedMsg.
	Watch tea.Cmd
}

// SelectModel binds a selector.Select to a bubbletea program.
type SelectModel struct {
	sel    *selector.Select
	cfg    SelectModelConfig
	search textinput.Model
	create textinput.Model
	help   help.Model

	width   int
	offset  int // first rendered row
	regions []Region

	chosen        bool
	aborted       bool
	quitting      bool
	status        string
	statusIsError bool
	savedCollapse string
}

// NewSelectModel wraps sel. Creator submissions are inserted into the
// option tree under their parent.
func NewSelectModel(sel *selector.Select, cfg SelectModelConfig) *SelectModel {
	if len(cfg.Keys.Up.Keys()) == 0 {
		cfg.Keys = keyboard.DefaultKeyMap()
	}
	if cfg.Theme.Renderer == nil {
		cfg.Theme = DefaultTheme(nil)
	}
	if cfg.MaxHeight <= 0 {
		cfg.MaxHeight = defaultMaxHeight
	}
	if cfg.Placeholder == "" {
		cfg.Placeholder = "Select…"
	}

	search := textinput.New()
	search.Placeholder = "type to filter..."
	search.CharLimit = 100
	search.Prompt = "/ "

	create := textinput.New()
	create.Placeholder = cfg.CreatorPlaceholder
	create.CharLimit = 100
	create.Prompt = ""

	m := &SelectModel{
		sel:    sel,
		cfg:    cfg,
		search: search,
		create: create,
		help:   help.New(),
	}

	sel.OnCreate(func(req creator.CreateRequest) {
		tree, ok := options.InsertChild(sel.Options(), req.Parent, creator.NewOption(req))
		if !ok {
			m.setStatus(fmt.Sprintf("parent %s no longer exists", req.Parent), true)
			return
		}
		sel.SetOptions(tree)
		m.setStatus(fmt.Sprintf("Added %q", req.Value), false)
	})
	sel.OnChange(func(_, _ model.ModelValue) {
		if !sel.Multiple() {
			m.chosen = true
		}
	})

	if cfg.StatePath != "" {
		sel.SetCollapsed(LoadCollapseState(cfg.StatePath, cfg.StateKey))
		m.savedCollapse = valuesKey(sel.CollapsedValues())
	}
	return m
}

// Select returns the wrapped behaviour object.
func (m *SelectModel) Select() *selector.Select { return m.sel }

// Value returns the current selection.
func (m *SelectModel) Value() model.ModelValue { return m.sel.Value() }

// Aborted reports whether the user left with ctrl+c.
func (m *SelectModel) Aborted() bool { return m.aborted }

// AddRegion registers a host-owned area that does not count as outside.
func (m *SelectModel) AddRegion(r Region) {
	m.regions = append(m.regions, r)
}

// Init implements tea.Model.
func (m *SelectModel) Init() tea.Cmd {
	return m.cfg.Watch
}

// Update implements tea.Model.
func (m *SelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.search.Width = max(msg.Width-4, 10)
		m.create.Width = max(msg.Width-8, 10)
		m.help.Width = msg.Width
		return m, nil

	case OptionsReloadedMsg:
		if msg.Err != nil {
			m.setStatus(fmt.Sprintf("Reload failed: %v", msg.Err), true)
		} else {
			m.sel.SetOptions(msg.Options)
			m.setStatus("Options reloaded", false)
			m.ensureVisible()
		}
		return m, m.cfg.Watch

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m *SelectModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.aborted = true
		return m.quit()
	}

	if !m.sel.CreatorParentValue().IsNone() {
		return m.updateCreator(msg)
	}

	switch msg.String() {
	case "ctrl+a":
		return m, m.startCreator()
	case "ctrl+y":
		m.copyValue()
		return m, nil
	}

	var cmd tea.Cmd
	if k, ok := m.cfg.Keys.Resolve(msg); ok {
		if k == keyboard.KeyEscape && !m.sel.IsOpen() {
			return m.quit()
		}
		ev := keyboard.NewEvent(k)
		m.sel.OnKeyDown(ev)
		if !ev.DefaultPrevented() && m.sel.Searchable() && m.sel.IsOpen() {
			cmd = m.updateSearch(msg)
		}
	} else {
		if !m.sel.Searchable() {
			if msg.String() == "q" && !m.sel.IsOpen() {
				return m.quit()
			}
			return m, nil
		}
		// typing opens the menu
		if !m.sel.IsOpen() {
			m.sel.Open()
		}
		cmd = m.updateSearch(msg)
	}

	next, after := m.afterInput()
	return next, tea.Batch(cmd, after)
}

// updateCreator handles keys while the creator row is being edited. Keys go
// through the keyboard machine first so its creator gate decides what the
// select consumes.
func (m *SelectModel) updateCreator(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k, resolved := m.cfg.Keys.Resolve(msg)

	switch {
	case resolved && k == keyboard.KeyEscape:
		m.sel.OnKeyDown(keyboard.NewEvent(k))
		m.create.Reset()
		m.create.Blur()

	case msg.Type == tea.KeyEnter:
		text := m.create.Value()
		m.create.Reset()
		m.create.Blur()
		if !m.sel.SubmitCreator(text) {
			m.setStatus("Nothing added", false)
		}

	default:
		if resolved {
			m.sel.OnKeyDown(keyboard.NewEvent(k))
		}
		var cmd tea.Cmd
		m.create, cmd = m.create.Update(msg)
		return m, cmd
	}

	return m.afterInput()
}

func (m *SelectModel) updateSearch(msg tea.KeyMsg) tea.Cmd {
	if !m.search.Focused() {
		m.search.Focus()
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.sel.SetSearchQuery(m.search.Value())
	return cmd
}

func (m *SelectModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp && m.sel.IsOpen():
		m.offset = max(m.offset-3, 0)
		return m, nil

	case msg.Button == tea.MouseButtonWheelDown && m.sel.IsOpen():
		m.offset += 3
		m.clampOffset()
		return m, nil

	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		control, list := m.layout()
		switch {
		case control.Contains(msg.X, msg.Y):
			m.sel.Toggle()
		case m.sel.IsOpen() && list.Contains(msg.X, msg.Y):
			m.clickRow(m.offset+msg.Y-list.Y, msg.X)
		default:
			for _, r := range m.regions {
				if r.Contains(msg.X, msg.Y) {
					return m, nil
				}
			}
			m.sel.HandleClickOutside()
		}
		return m.afterInput()
	}
	return m, nil
}

// clickRow acts on a press at row idx: the marker column toggles a branch,
// the rest of the line selects.
func (m *SelectModel) clickRow(idx, x int) {
	rows := m.sel.VisibleOptions()
	if idx < 0 || idx >= len(rows) {
		return
	}
	row := rows[idx]

	if row.IsCreator() {
		m.create.Focus()
		return
	}
	markerEnd := row.Depth*2 + 2
	if row.HasChildren() && !row.Value.IsNone() && x < markerEnd {
		m.sel.ToggleCollapse(row.Value)
		return
	}
	if !row.Navigable() {
		return
	}
	m.sel.SetHighlight(idx)
	m.sel.HandleSelect(row)
}

func (m *SelectModel) startCreator() tea.Cmd {
	if m.sel.Disabled() {
		return nil
	}
	rows := m.sel.VisibleOptions()
	idx := m.sel.HighlightedIndex()
	if idx < 0 || idx >= len(rows) {
		return nil
	}
	row := rows[idx]
	if row.Kind != model.RowOption || row.Value.IsNone() || row.Disabled {
		return nil
	}
	m.sel.StartCreator(row.Value)
	m.create.Reset()
	m.ensureVisible()
	return m.create.Focus()
}

func (m *SelectModel) copyValue() {
	text := ValueText(m.sel.Value())
	if text == "" {
		m.setStatus("Nothing selected", false)
		return
	}
	if err := writeClipboard(text); err != nil {
		m.setStatus(fmt.Sprintf("Clipboard error: %v", err), true)
		return
	}
	m.setStatus("Copied selection to clipboard", false)
}

// afterInput syncs the text inputs, scroll window and persisted collapse
// state with the select after any event.
func (m *SelectModel) afterInput() (tea.Model, tea.Cmd) {
	if !m.sel.IsOpen() {
		m.search.Reset()
		m.search.Blur()
		m.offset = 0
	}
	if m.sel.CreatorParentValue().IsNone() && m.create.Focused() {
		m.create.Reset()
		m.create.Blur()
	}
	m.ensureVisible()
	m.persistCollapse()

	if m.chosen && m.cfg.QuitOnSelect {
		return m.quit()
	}
	return m, nil
}

func (m *SelectModel) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.persistCollapse()
	debug.Log("ui: quit, value=%s aborted=%v", m.sel.Value(), m.aborted)
	return m, tea.Quit
}

func (m *SelectModel) persistCollapse() {
	if m.cfg.StatePath == "" {
		return
	}
	values := m.sel.CollapsedValues()
	key := valuesKey(values)
	if key == m.savedCollapse {
		return
	}
	SaveCollapseState(m.cfg.StatePath, m.cfg.StateKey, values)
	m.savedCollapse = key
}

func (m *SelectModel) setStatus(msg string, isError bool) {
	m.status = msg
	m.statusIsError = isError
}

// ensureVisible scrolls so the highlighted row is inside the window.
func (m *SelectModel) ensureVisible() {
	if h := m.sel.HighlightedIndex(); h >= 0 {
		if h < m.offset {
			m.offset = h
		} else if h >= m.offset+m.cfg.MaxHeight {
			m.offset = h - m.cfg.MaxHeight + 1
		}
	}
	m.clampOffset()
}

func (m *SelectModel) clampOffset() {
	n := len(m.sel.VisibleOptions())
	m.offset = max(min(m.offset, n-m.cfg.MaxHeight), 0)
}

// visibleRange returns the [start, end) slice of rows in the window.
func (m *SelectModel) visibleRange() (start, end int) {
	n := len(m.sel.VisibleOptions())
	start = min(m.offset, n)
	end = min(start+m.cfg.MaxHeight, n)
	return start, end
}

// layout returns the control and list areas of the current view.
func (m *SelectModel) layout() (control, list Region) {
	top := lipgloss.Height(m.renderControl())
	control = Region{X: 0, Y: 0, Width: m.width, Height: top}
	if !m.sel.IsOpen() {
		return control, Region{}
	}
	start, end := m.visibleRange()
	return control, Region{X: 0, Y: top, Width: m.width, Height: end - start}
}

// View implements tea.Model.
func (m *SelectModel) View() string {
	if m.quitting {
		return ""
	}
	t := m.cfg.Theme

	var sb strings.Builder
	sb.WriteString(m.renderControl())
	sb.WriteString("\n")

	if m.sel.IsOpen() {
		rows := m.sel.VisibleOptions()
		if len(rows) == 0 {
			sb.WriteString(t.Placeholder.Render("No options"))
			sb.WriteString("\n")
		}
		start, end := m.visibleRange()
		highlighted := m.sel.HighlightedIndex()
		for i := start; i < end; i++ {
			sb.WriteString(m.renderRow(rows[i], i == highlighted))
			sb.WriteString("\n")
		}
		if len(rows) > end-start {
			sb.WriteString(t.Status.Render(fmt.Sprintf("  %d-%d of %d", start+1, end, len(rows))))
			sb.WriteString("\n")
		}
	}

	if m.status != "" {
		style := t.Status
		if m.statusIsError {
			style = t.StatusError
		}
		sb.WriteString(style.Render(m.status))
		sb.WriteString("\n")
	}

	sb.WriteString(m.help.View(m.cfg.Keys))
	return sb.String()
}

func (m *SelectModel) renderControl() string {
	t := m.cfg.Theme
	if m.sel.IsOpen() && m.sel.Searchable() {
		return t.Control.Render(m.search.View())
	}

	marker := "▸ "
	if m.sel.IsOpen() {
		marker = "▾ "
	}
	text := m.valueSummary()
	if m.sel.Disabled() {
		text += t.Placeholder.Render(" (disabled)")
	}
	return t.Control.Render(t.Marker.Render(marker) + text)
}

func (m *SelectModel) valueSummary() string {
	t := m.cfg.Theme
	value := m.sel.Value()
	if value.IsEmpty() {
		return t.Placeholder.Render(m.cfg.Placeholder)
	}

	labels := make(map[model.Value]string)
	for _, o := range m.sel.SelectedOptions() {
		labels[o.Value] = o.Label
	}
	label := func(v model.Value) string {
		if l, ok := labels[v]; ok {
			return l
		}
		return v.String()
	}

	if !value.IsMulti() {
		return t.Base.Render(label(value.Scalar()))
	}
	tags := make([]string, 0, value.Len())
	for _, v := range value.Values() {
		tags = append(tags, t.Tag.Render(label(v)))
	}
	return strings.Join(tags, " ")
}

func (m *SelectModel) renderRow(row model.FlatOption, highlighted bool) string {
	t := m.cfg.Theme
	indent := strings.Repeat("  ", row.Depth)

	var line string
	switch row.Kind {
	case model.RowGroup:
		line = indent + t.GroupHeader.Render(m.truncate(row.Label, runewidth.StringWidth(indent)))

	case model.RowCreator:
		line = indent + t.Creator.Render("+ ") + m.create.View()

	default:
		marker := "  "
		if row.HasChildren() && !row.Value.IsNone() {
			if m.sel.IsCollapsed(row.Value) && m.sel.SearchQuery() == "" {
				marker = "▸ "
			} else {
				marker = "▾ "
			}
		}
		check := "  "
		if m.sel.IsSelected(row.Value) {
			check = t.Check.Render("✓ ")
		}
		label := m.truncate(row.Label, runewidth.StringWidth(indent)+4)
		if row.Disabled {
			label = t.Disabled.Render(label)
		}
		line = indent + t.Marker.Render(marker) + check + label
	}

	if highlighted {
		return t.Selected.Render(line)
	}
	return line
}

// truncate shortens label to the width left after used columns.
func (m *SelectModel) truncate(label string, used int) string {
	if m.width <= 0 {
		return label
	}
	avail := m.width - used
	if avail <= 1 {
		return "…"
	}
	if runewidth.StringWidth(label) <= avail {
		return label
	}
	return runewidth.Truncate(label, avail, "…")
}

// ValueText renders a selection as plain text, one value per line.
func ValueText(mv model.ModelValue) string {
	values := mv.Values()
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return strings.Join(parts, "\n")
}

// valuesKey identifies a collapse set, distinguishing "1" from 1.
func valuesKey(values []model.Value) string {
	var sb strings.Builder
	for _, v := range values {
		fmt.Fprintf(&sb, "%d:%s\x00", v.Kind(), v.String())
	}
	return sb.String()
}
