// Package options turns an option tree into the flat, filtered,
// collapse-aware list that rendering and keyboard navigation work over.
package options

import (
	"sort"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
	"github.com/vanderheijden86/treeselect/pkg/debug"
	"github.com/vanderheijden86/treeselect/pkg/model"
)

// MatchMode selects how a search query is tested against labels.
type MatchMode int

const (
	MatchSubstring MatchMode = iota // case-insensitive substring (default)
	MatchFuzzy                      // sahilm/fuzzy subsequence match
)

// ParseMatchMode maps a config string to a MatchMode. Unknown strings fall
// back to substring matching.
func ParseMatchMode(s string) MatchMode {
	if strings.EqualFold(strings.TrimSpace(s), "fuzzy") {
		return MatchFuzzy
	}
	return MatchSubstring
}

// Config holds the construction-time flags of an Engine.
type Config struct {
	Searchable bool
	MatchMode  MatchMode
}

// Engine owns the inputs of the flat projection and caches the result.
// Every setter marks the cache dirty; the projection is rebuilt on the next
// read. Rebuilds allocate fresh slices, so a previously returned list is
// never modified under the caller.
type Engine struct {
	source     []model.Option
	query      string
	searchable bool
	matchMode  MatchMode
	creator    model.Value
	disabled   bool
	collapsed  map[model.Value]struct{}

	dirty     bool
	flatList  []model.FlatOption
	navigable []int
}

// NewEngine creates an engine over opts with every branch expanded.
func NewEngine(opts []model.Option, cfg Config) *Engine {
	return &Engine{
		source:     opts,
		searchable: cfg.Searchable,
		matchMode:  cfg.MatchMode,
		collapsed:  make(map[model.Value]struct{}),
		dirty:      true,
	}
}

// SetOptions replaces the source tree.
func (e *Engine) SetOptions(opts []model.Option) {
	e.source = opts
	e.dirty = true
}

// Options returns the source tree.
func (e *Engine) Options() []model.Option {
	return e.source
}

// SetQuery updates the search query.
func (e *Engine) SetQuery(q string) {
	if q == e.query {
		return
	}
	e.query = q
	e.dirty = true
}

// Query returns the current search query.
func (e *Engine) Query() string {
	return e.query
}

// Searchable reports whether queries filter the tree.
func (e *Engine) Searchable() bool {
	return e.searchable
}

// IsSearching reports whether a query is currently filtering the tree.
// While searching, collapse state is ignored.
func (e *Engine) IsSearching() bool {
	return e.searchable && e.query != ""
}

// SetCreatorTarget sets the node the creator row is emitted under.
// model.None clears it.
func (e *Engine) SetCreatorTarget(v model.Value) {
	if v == e.creator {
		return
	}
	e.creator = v
	e.dirty = true
}

// SetDisabled updates the disabled flag; a disabled engine emits no creator row.
func (e *Engine) SetDisabled(disabled bool) {
	if disabled == e.disabled {
		return
	}
	e.disabled = disabled
	e.dirty = true
}

// ToggleCollapse collapses an expanded branch or expands a collapsed one.
// A None identifier is ignored.
func (e *Engine) ToggleCollapse(v model.Value) {
	if v.IsNone() {
		return
	}
	next := make(map[model.Value]struct{}, len(e.collapsed)+1)
	for k := range e.collapsed {
		next[k] = struct{}{}
	}
	if _, ok := next[v]; ok {
		delete(next, v)
	} else {
		next[v] = struct{}{}
	}
	e.collapsed = next
	e.dirty = true
}

// IsCollapsed reports whether v is in the collapse set.
func (e *Engine) IsCollapsed(v model.Value) bool {
	_, ok := e.collapsed[v]
	return ok
}

// CollapsedValues returns the collapse set, sorted by string form.
func (e *Engine) CollapsedValues() []model.Value {
	out := make([]model.Value, 0, len(e.collapsed))
	for v := range e.collapsed {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

// SetCollapsed replaces the collapse set.
func (e *Engine) SetCollapsed(values []model.Value) {
	next := make(map[model.Value]struct{}, len(values))
	for _, v := range values {
		if !v.IsNone() {
			next[v] = struct{}{}
		}
	}
	e.collapsed = next
	e.dirty = true
}

// ExpandAll clears the collapse set.
func (e *Engine) ExpandAll() {
	e.SetCollapsed(nil)
}

// CollapseAll collapses every valued branch in the source tree.
func (e *Engine) CollapseAll() {
	var branches []model.Value
	Walk(e.source, func(o model.Option, _ int) {
		if o.HasChildren() && !o.Value.IsNone() {
			branches = append(branches, o.Value)
		}
	})
	e.SetCollapsed(branches)
}

// VisibleOptions returns the flat list. The slice must not be modified.
func (e *Engine) VisibleOptions() []model.FlatOption {
	e.recompute()
	return e.flatList
}

// NavigableIndices returns the positions in the flat list that can be
// highlighted: neither group headers nor disabled rows.
func (e *Engine) NavigableIndices() []int {
	e.recompute()
	return e.navigable
}

// At returns the row at index i.
func (e *Engine) At(i int) (model.FlatOption, bool) {
	rows := e.VisibleOptions()
	if i < 0 || i >= len(rows) {
		return model.FlatOption{}, false
	}
	return rows[i], true
}

// IndexOf returns the position of the first row whose value equals v, or -1.
func (e *Engine) IndexOf(v model.Value) int {
	if v.IsNone() {
		return -1
	}
	for i, row := range e.VisibleOptions() {
		if row.Value.Equal(v) {
			return i
		}
	}
	return -1
}

func (e *Engine) recompute() {
	if !e.dirty {
		return
	}
	start := time.Now()

	tree := e.source
	if e.IsSearching() {
		tree = e.filterTree(e.source, strings.ToLower(e.query))
	}

	flat := e.flatten(tree, 0, model.None, nil)
	navigable := make([]int, 0, len(flat))
	for i, row := range flat {
		if row.Navigable() {
			navigable = append(navigable, i)
		}
	}

	e.flatList = flat
	e.navigable = navigable
	e.dirty = false
	debug.LogTiming("options.recompute", time.Since(start))
}

// filterTree keeps a node when its label matches or any descendant does.
// Kept nodes are copies whose children are replaced by the filtered children.
func (e *Engine) filterTree(nodes []model.Option, q string) []model.Option {
	var result []model.Option
	for _, node := range nodes {
		var children []model.Option
		if node.Children != nil {
			children = e.filterTree(node.Children, q)
		}
		if e.matches(node.Label, q) || len(children) > 0 {
			kept := node
			kept.Children = children
			result = append(result, kept)
		}
	}
	return result
}

func (e *Engine) matches(label, q string) bool {
	if e.matchMode == MatchFuzzy {
		return len(fuzzy.Find(q, []string{strings.ToLower(label)})) > 0
	}
	return strings.Contains(strings.ToLower(label), q)
}

// flatten walks the tree depth-first, parent before children.
func (e *Engine) flatten(nodes []model.Option, depth int, parent model.Value, out []model.FlatOption) []model.FlatOption {
	searching := e.IsSearching()
	for _, node := range nodes {
		kind := model.RowOption
		if node.Group != "" {
			kind = model.RowGroup
		}
		out = append(out, model.FlatOption{
			Option:      node,
			Kind:        kind,
			Depth:       depth,
			ParentValue: parent,
			Key:         model.RowKey(node, depth),
		})

		if !e.creator.IsNone() && node.Value.Equal(e.creator) && !e.disabled {
			out = append(out, model.NewCreatorRow(node.Value, depth+1))
		}

		collapsed := !node.Value.IsNone() && e.IsCollapsed(node.Value)
		if node.HasChildren() && (!collapsed || searching) {
			out = e.flatten(node.Children, depth+1, node.Value, out)
		}
	}
	return out
}
