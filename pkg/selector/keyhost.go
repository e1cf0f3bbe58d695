package selector

import "github.com/vanderheijden86/treeselect/pkg/model"

// keyHost exposes a Select to the keyboard machine. Close here is always the
// cleanup variant, so a keyboard close also cancels the creator.
type keyHost struct{ s *Select }

func (h keyHost) IsOpen() bool                       { return h.s.IsOpen() }
func (h keyHost) HighlightedIndex() int              { return h.s.HighlightedIndex() }
func (h keyHost) VisibleOptions() []model.FlatOption { return h.s.VisibleOptions() }
func (h keyHost) NavigableIndices() []int            { return h.s.NavigableIndices() }
func (h keyHost) CreatorActive() bool                { return h.s.creator.Active() }
func (h keyHost) SearchQuery() string                { return h.s.SearchQuery() }
func (h keyHost) Disabled() bool                     { return h.s.Disabled() }
func (h keyHost) IsCollapsed(v model.Value) bool     { return h.s.IsCollapsed(v) }

func (h keyHost) Open()                        { h.s.Open() }
func (h keyHost) Close()                       { h.s.Close() }
func (h keyHost) Select(opt model.FlatOption)  { h.s.HandleSelect(opt) }
func (h keyHost) ToggleCollapse(v model.Value) { h.s.ToggleCollapse(v) }
func (h keyHost) CancelCreator()               { h.s.CancelCreator() }
func (h keyHost) SetHighlight(i int)           { h.s.SetHighlight(i) }
func (h keyHost) RemoveLast()                  { h.s.RemoveLast() }
