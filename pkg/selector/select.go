// Package selector composes the option engine, selection, UI state, creator
// and keyboard machine into one select behaviour object.
package selector

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/treeselect/pkg/cell"
	"github.com/vanderheijden86/treeselect/pkg/creator"
	"github.com/vanderheijden86/treeselect/pkg/debug"
	"github.com/vanderheijden86/treeselect/pkg/keyboard"
	"github.com/vanderheijden86/treeselect/pkg/model"
	"github.com/vanderheijden86/treeselect/pkg/options"
	"github.com/vanderheijden86/treeselect/pkg/selection"
	"github.com/vanderheijden86/treeselect/pkg/selectstate"
)

// Props are the host-supplied inputs of a Select.
type Props struct {
	Options    []model.Option
	Value      *cell.Cell[model.ModelValue] // nil allocates an empty value of the right shape
	Multiple   bool
	Searchable bool
	Disabled   bool
	MatchMode  options.MatchMode
	PageStep   int
}

// Select is the behaviour object a presentation layer binds to.
type Select struct {
	props    Props
	disabled bool

	state     *selectstate.State
	creator   *creator.Creator
	engine    *options.Engine
	selection *selection.Selection
	keys      *keyboard.Machine
	value     *cell.Cell[model.ModelValue]
}

// New wires a Select from props.
func New(props Props) *Select {
	s := &Select{
		props:    props,
		disabled: props.Disabled,
	}

	s.value = props.Value
	if s.value == nil {
		initial := model.Single(model.None)
		if props.Multiple {
			initial = model.Multi()
		}
		s.value = cell.New(initial)
	}

	s.state = selectstate.New(func() bool { return s.disabled })
	s.creator = creator.New()
	s.selection = selection.New(s.value, props.Multiple, s.Close)
	s.engine = options.NewEngine(props.Options, options.Config{
		Searchable: props.Searchable,
		MatchMode:  props.MatchMode,
	})
	s.engine.SetDisabled(props.Disabled)

	var kopts []keyboard.Option
	if props.PageStep > 0 {
		kopts = append(kopts, keyboard.WithPageStep(props.PageStep))
	}
	s.keys = keyboard.New(keyHost{s}, props.Multiple, props.Searchable, kopts...)
	return s
}

// --- Outputs ---

// IsOpen reports whether the menu is open.
func (s *Select) IsOpen() bool { return s.state.IsOpen() }

// SearchQuery returns the current search text.
func (s *Select) SearchQuery() string { return s.state.SearchQuery() }

// HighlightedIndex returns the highlighted flat-list index, or -1.
func (s *Select) HighlightedIndex() int { return s.state.HighlightedIndex() }

// CollapsedValues returns the collapse set.
func (s *Select) CollapsedValues() []model.Value { return s.engine.CollapsedValues() }

// IsCollapsed reports whether v is collapsed.
func (s *Select) IsCollapsed(v model.Value) bool { return s.engine.IsCollapsed(v) }

// CreatorParentValue returns the parent in "add child" mode, or model.None.
func (s *Select) CreatorParentValue() model.Value { return s.creator.Parent() }

// VisibleOptions returns the flat list. The slice must not be modified.
func (s *Select) VisibleOptions() []model.FlatOption { return s.sync().VisibleOptions() }

// NavigableIndices returns the highlightable positions of the flat list.
func (s *Select) NavigableIndices() []int { return s.sync().NavigableIndices() }

// Value returns the current model value.
func (s *Select) Value() model.ModelValue { return s.value.Get() }

// Options returns the source tree.
func (s *Select) Options() []model.Option { return s.engine.Options() }

// SelectedOptions resolves the selection to options for tag rendering.
func (s *Select) SelectedOptions() []model.Option {
	return s.selection.SelectedOptions(s.engine.Options())
}

// Disabled reports the disabled flag.
func (s *Select) Disabled() bool { return s.disabled }

// Multiple reports whether the select is in multiple mode.
func (s *Select) Multiple() bool { return s.props.Multiple }

// Searchable reports whether the search query filters the tree.
func (s *Select) Searchable() bool { return s.props.Searchable }

// --- Inputs ---

// SetOptions replaces the source tree, e.g. after applying a CreateRequest.
func (s *Select) SetOptions(opts []model.Option) {
	s.keepHighlight(false, func() { s.engine.SetOptions(opts) })
}

// SetDisabled updates the disabled flag. Disabling closes an open menu.
func (s *Select) SetDisabled(disabled bool) {
	s.disabled = disabled
	s.engine.SetDisabled(disabled)
	if disabled && s.state.IsOpen() {
		s.Close()
	}
}

// SetSearchQuery updates the search text. The highlight follows its row
// through the filter; if the row is filtered out, the first navigable row
// takes its place.
func (s *Select) SetSearchQuery(q string) {
	if q == s.state.SearchQuery() {
		return
	}
	s.keepHighlight(true, func() { s.state.SetQuery(q) })
}

// OnChange subscribes to model value replacements.
func (s *Select) OnChange(fn func(old, new model.ModelValue)) {
	s.value.Subscribe(fn)
}

// OnCreate registers the creator submission handler.
func (s *Select) OnCreate(fn func(creator.CreateRequest)) {
	s.creator.OnCreate(fn)
}

// --- Commands ---

// Open opens the menu and highlights the current selection, or the first
// navigable row when nothing selected is visible.
func (s *Select) Open() {
	if s.disabled {
		return
	}
	s.state.Open()

	rows := s.VisibleOptions()
	target := findOptionIndex(rows, s.value.Get(), s.props.Multiple)
	if target == -1 {
		if indices := s.NavigableIndices(); len(indices) > 0 {
			target = indices[0]
		}
	}

	if target != -1 && target < len(rows) && !rows[target].Disabled {
		s.state.SetHighlight(target)
	} else {
		s.state.SetHighlight(selectstate.NoHighlight)
	}
	debug.Log("select: open, highlight=%d", s.state.HighlightedIndex())
}

// Close closes the menu and cancels any active creator.
func (s *Select) Close() {
	s.state.Close()
	s.creator.Cancel()
	debug.Log("select: close")
}

// Toggle closes an open menu or opens a closed one.
func (s *Select) Toggle() {
	if s.state.IsOpen() {
		s.Close()
	} else {
		s.Open()
	}
}

// HandleClickOutside is the outside-interaction hook.
func (s *Select) HandleClickOutside() {
	if s.state.IsOpen() {
		s.Close()
	}
}

// OnKeyDown feeds a key event through the keyboard machine.
func (s *Select) OnKeyDown(ev *keyboard.Event) {
	s.keys.HandleKey(ev)
}

// SetHighlight assigns the highlighted index, e.g. on pointer hover.
func (s *Select) SetHighlight(i int) {
	s.state.SetHighlight(i)
}

// ToggleCollapse collapses or expands a branch.
func (s *Select) ToggleCollapse(v model.Value) {
	s.keepHighlight(false, func() { s.engine.ToggleCollapse(v) })
}

// SetCollapsed replaces the collapse set, e.g. from persisted UI state.
func (s *Select) SetCollapsed(values []model.Value) {
	s.keepHighlight(false, func() { s.engine.SetCollapsed(values) })
}

// IsSelected reports whether v is selected.
func (s *Select) IsSelected(v model.Value) bool { return s.selection.IsSelected(v) }

// HandleSelect applies a row selection.
func (s *Select) HandleSelect(opt model.FlatOption) { s.selection.HandleSelect(opt) }

// RemoveValue removes v from the selection.
func (s *Select) RemoveValue(v model.Value) { s.selection.RemoveValue(v) }

// RemoveLast removes the most recently selected value.
func (s *Select) RemoveLast() { s.selection.RemoveLast() }

// StartCreator enters "add child" mode under parent, expanding it first.
func (s *Select) StartCreator(parent model.Value) {
	s.keepHighlight(false, func() {
		if s.engine.IsCollapsed(parent) {
			s.engine.ToggleCollapse(parent)
		}
		s.creator.Start(parent)
	})
	debug.Log("select: creator started under %s", parent)
}

// CancelCreator leaves "add child" mode.
func (s *Select) CancelCreator() {
	s.keepHighlight(false, s.creator.Cancel)
}

// SubmitCreator sends text to the OnCreate handler and leaves "add child"
// mode. The source tree is not modified; the host answers with SetOptions.
func (s *Select) SubmitCreator(text string) bool {
	parent := s.creator.Parent()
	var sent bool
	s.keepHighlight(false, func() { sent = s.creator.Submit(text) })
	debug.LogIf(sent, "select: creator submitted %q under %s", text, parent)
	return sent
}

// sync pushes the UI-owned inputs into the engine before a read.
func (s *Select) sync() *options.Engine {
	s.engine.SetQuery(s.state.SearchQuery())
	s.engine.SetCreatorTarget(s.creator.Parent())
	return s.engine
}

// keepHighlight runs mutate and then re-points the highlight at the row it
// was on before, matched by rowIdentities. If that row is gone, firstOnMiss
// picks the first navigable row instead of no highlight.
func (s *Select) keepHighlight(firstOnMiss bool, mutate func()) {
	id := ""
	rows := s.VisibleOptions()
	if h := s.state.HighlightedIndex(); h >= 0 && h < len(rows) {
		id = rowIdentities(rows)[h]
	}
	mutate()
	if !s.state.IsOpen() {
		return
	}

	indices := s.NavigableIndices()
	if id != "" {
		ids := rowIdentities(s.VisibleOptions())
		for _, i := range indices {
			if ids[i] == id {
				s.state.SetHighlight(i)
				return
			}
		}
	}
	if firstOnMiss && len(indices) > 0 {
		s.state.SetHighlight(indices[0])
		return
	}
	s.state.SetHighlight(selectstate.NoHighlight)
}

// rowIdentities names every row by the chain of (kind, value, group, label)
// from its root down to itself, plus its ordinal among rows with the same
// chain. Unlike FlatOption.Key it tells "1" from 1 and unvalued siblings
// apart, and it survives filtering and collapsing of other rows.
func rowIdentities(rows []model.FlatOption) []string {
	ids := make([]string, len(rows))
	seen := make(map[string]int, len(rows))
	var chain []string
	for i, row := range rows {
		if row.Depth < len(chain) {
			chain = chain[:row.Depth]
		}
		for len(chain) < row.Depth {
			chain = append(chain, "")
		}
		chain = append(chain, fmt.Sprintf("%d/%d/%s/%s/%s", row.Kind, row.Value.Kind(), row.Value, row.Group, row.Label))

		path := strings.Join(chain, "\x1f")
		ids[i] = fmt.Sprintf("%s#%d", path, seen[path])
		seen[path]++
	}
	return ids
}

// findOptionIndex locates the first real row matching the model value by
// string comparison.
func findOptionIndex(rows []model.FlatOption, mv model.ModelValue, multiple bool) int {
	if mv.IsEmpty() {
		return -1
	}
	for i, row := range rows {
		if row.IsGroup() || row.IsCreator() {
			continue
		}
		if multiple && mv.IsMulti() {
			for _, v := range mv.Values() {
				if v.LooseEqual(row.Value) {
					return i
				}
			}
			continue
		}
		if mv.Scalar().LooseEqual(row.Value) {
			return i
		}
	}
	return -1
}
