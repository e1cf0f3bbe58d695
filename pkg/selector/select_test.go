package selector

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vanderheijden86/treeselect/pkg/cell"
	"github.com/vanderheijden86/treeselect/pkg/creator"
	"github.com/vanderheijden86/treeselect/pkg/keyboard"
	"github.com/vanderheijden86/treeselect/pkg/model"
	"github.com/vanderheijden86/treeselect/pkg/options"
)

func sv(s string) model.Value { return model.StringValue(s) }

func abc() []model.Option {
	return []model.Option{
		{Value: sv("a"), Label: "A"},
		{Value: sv("b"), Label: "B"},
		{Value: sv("c"), Label: "C"},
	}
}

func techTree() []model.Option {
	return []model.Option{
		{Value: sv("be"), Label: "Backend", Children: []model.Option{
			{Value: sv("go"), Label: "Go"},
			{Value: sv("java"), Label: "Java"},
		}},
		{Value: sv("fe"), Label: "Frontend", Children: []model.Option{
			{Value: sv("react"), Label: "React"},
		}},
	}
}

func press(s *Select, k keyboard.Key) *keyboard.Event {
	ev := keyboard.NewEvent(k)
	s.OnKeyDown(ev)
	return ev
}

func strs(vs []model.Value) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}

func TestOpenHighlightsCurrentValue(t *testing.T) {
	s := New(Props{Options: abc(), Value: cell.New(model.Single(sv("b")))})
	s.Open()
	if got := s.HighlightedIndex(); got != 1 {
		t.Errorf("Expected highlight 1, got %d", got)
	}
}

func TestArrowDownFromClosedOpensOnCurrent(t *testing.T) {
	s := New(Props{Options: abc(), Value: cell.New(model.Single(sv("b")))})

	press(s, keyboard.KeyArrowDown)
	if !s.IsOpen() || s.HighlightedIndex() != 1 {
		t.Fatalf("Expected open with highlight 1, got open=%v highlight=%d", s.IsOpen(), s.HighlightedIndex())
	}
	press(s, keyboard.KeyArrowDown)
	if got := s.HighlightedIndex(); got != 2 {
		t.Errorf("Expected highlight 2, got %d", got)
	}
}

func TestBackspaceRemovesLastTag(t *testing.T) {
	value := cell.New(model.Multi(sv("apple"), sv("grape")))
	s := New(Props{Options: abc(), Value: value, Multiple: true, Searchable: true})

	press(s, keyboard.KeyBackspace)
	if diff := cmp.Diff([]string{"apple"}, strs(value.Get().Values())); diff != "" {
		t.Errorf("value mismatch (-want +got):\n%s", diff)
	}
}

func TestCreatorGatesKeys(t *testing.T) {
	s := New(Props{Options: techTree()})
	s.Open()
	start := s.HighlightedIndex()

	s.StartCreator(sv("be"))
	press(s, keyboard.KeyArrowDown)
	if got := s.HighlightedIndex(); got != start {
		t.Errorf("ArrowDown must be swallowed while creating, highlight %d -> %d", start, got)
	}

	ev := press(s, keyboard.KeyEscape)
	if !ev.PropagationStopped() {
		t.Error("Escape in creator mode should stop propagation")
	}
	if !s.CreatorParentValue().IsNone() {
		t.Errorf("Expected creator cleared, got %s", s.CreatorParentValue())
	}
	if !s.IsOpen() {
		t.Error("Escape in creator mode must not close the menu")
	}

	press(s, keyboard.KeyArrowDown)
	if got := s.HighlightedIndex(); got == start {
		t.Error("ArrowDown should move again after the creator is cancelled")
	}
}

func TestOpenDefaultsToFirstNavigable(t *testing.T) {
	tree := []model.Option{
		{Label: "Header", Group: "h"},
		{Value: sv("x"), Label: "X", Disabled: true},
		{Value: sv("y"), Label: "Y"},
	}
	s := New(Props{Options: tree})
	s.Open()
	if got := s.HighlightedIndex(); got != 2 {
		t.Errorf("Expected first navigable 2, got %d", got)
	}
}

func TestOpenWithNothingNavigable(t *testing.T) {
	s := New(Props{Options: []model.Option{{Value: sv("x"), Label: "X", Disabled: true}}})
	s.Open()
	if !s.IsOpen() || s.HighlightedIndex() != -1 {
		t.Errorf("Expected open with no highlight, got open=%v highlight=%d", s.IsOpen(), s.HighlightedIndex())
	}
}

func TestOpenMatchesByStringForm(t *testing.T) {
	tree := []model.Option{{Value: sv("0"), Label: "Zero"}, {Value: model.IntValue(1), Label: "One"}}
	s := New(Props{Options: tree, Value: cell.New(model.Single(sv("1")))})
	s.Open()
	if got := s.HighlightedIndex(); got != 1 {
		t.Errorf("Expected loose match at 1, got %d", got)
	}
}

func TestOpenInMultipleModeHighlightsFirstSelectedRow(t *testing.T) {
	s := New(Props{Options: abc(), Value: cell.New(model.Multi(sv("c"), sv("b"))), Multiple: true})
	s.Open()
	if got := s.HighlightedIndex(); got != 1 {
		t.Errorf("Expected first selected row in list order (1), got %d", got)
	}
}

func TestDisabledSelectIgnoresInput(t *testing.T) {
	s := New(Props{Options: abc(), Disabled: true})
	s.Open()
	press(s, keyboard.KeyEnter)
	if s.IsOpen() {
		t.Error("Disabled select must not open")
	}
}

func TestSetDisabledClosesOpenMenu(t *testing.T) {
	s := New(Props{Options: techTree()})
	s.Open()
	s.StartCreator(sv("be"))
	s.SetDisabled(true)
	if s.IsOpen() || !s.CreatorParentValue().IsNone() {
		t.Error("Disabling should close the menu and cancel the creator")
	}
}

func TestSingleSelectClosesAndCancelsCreator(t *testing.T) {
	value := cell.New(model.Single(model.None))
	s := New(Props{Options: abc(), Value: value})
	var changes []string
	s.OnChange(func(_, n model.ModelValue) { changes = append(changes, n.String()) })

	s.Open()
	press(s, keyboard.KeyArrowDown)
	press(s, keyboard.KeyEnter)

	if s.IsOpen() {
		t.Error("Single select should close the menu")
	}
	if diff := cmp.Diff([]string{"b"}, changes); diff != "" {
		t.Errorf("change mismatch (-want +got):\n%s", diff)
	}
}

func TestMultipleSelectStaysOpen(t *testing.T) {
	s := New(Props{Options: abc(), Multiple: true})
	s.Open()
	press(s, keyboard.KeyEnter)
	press(s, keyboard.KeyArrowDown)
	press(s, keyboard.KeyEnter)

	if !s.IsOpen() {
		t.Error("Multiple select should stay open")
	}
	if diff := cmp.Diff([]string{"a", "b"}, strs(s.Value().Values())); diff != "" {
		t.Errorf("value mismatch (-want +got):\n%s", diff)
	}
	if !s.IsSelected(sv("a")) || s.IsSelected(sv("c")) {
		t.Error("IsSelected disagrees with value")
	}
}

func TestSearchFollowsHighlightedRow(t *testing.T) {
	s := New(Props{Options: techTree(), Searchable: true})
	s.Open()
	s.SetHighlight(2) // java

	s.SetSearchQuery("ja")
	rows := s.VisibleOptions()
	if h := s.HighlightedIndex(); h < 0 || rows[h].Key != "java" {
		t.Errorf("Expected highlight to follow java, got %d", h)
	}

	s.SetSearchQuery("react")
	rows = s.VisibleOptions()
	if h := s.HighlightedIndex(); h != 0 || rows[h].Key != "fe" {
		t.Errorf("Expected fallback to first navigable row, got %d", h)
	}
}

func TestCloseResetsSearch(t *testing.T) {
	s := New(Props{Options: techTree(), Searchable: true})
	s.Open()
	s.SetSearchQuery("go")
	if got := len(s.VisibleOptions()); got != 2 {
		t.Errorf("Expected 2 filtered rows, got %d", got)
	}
	s.Close()
	if s.SearchQuery() != "" || len(s.VisibleOptions()) != 5 {
		t.Errorf("Close should clear the search, query=%q rows=%d", s.SearchQuery(), len(s.VisibleOptions()))
	}
}

func TestToggleCollapseKeepsHighlightOnRow(t *testing.T) {
	s := New(Props{Options: techTree()})
	s.Open()
	s.SetHighlight(3) // fe

	s.ToggleCollapse(sv("be"))
	rows := s.VisibleOptions()
	if h := s.HighlightedIndex(); h != 1 || rows[h].Key != "fe" {
		t.Errorf("Expected highlight to follow fe to 1, got %d", h)
	}

	s.SetHighlight(0)
	press(s, keyboard.KeyArrowRight)
	if s.IsCollapsed(sv("be")) {
		t.Error("ArrowRight should expand be")
	}
}

func TestCollapseHidingHighlightClears(t *testing.T) {
	s := New(Props{Options: techTree()})
	s.Open()
	s.SetHighlight(1) // go
	s.ToggleCollapse(sv("be"))
	if got := s.HighlightedIndex(); got != -1 {
		t.Errorf("Expected no highlight once go is hidden, got %d", got)
	}
}

func TestArrowLeftJumpsToParent(t *testing.T) {
	s := New(Props{Options: techTree()})
	s.Open()
	s.SetHighlight(4) // react

	press(s, keyboard.KeyArrowLeft)
	if got := s.HighlightedIndex(); got != 3 {
		t.Fatalf("Expected jump to fe at 3, got %d", got)
	}
	press(s, keyboard.KeyArrowLeft)
	if !s.IsCollapsed(sv("fe")) {
		t.Error("Second ArrowLeft should collapse fe")
	}
}

func TestStartCreatorExpandsParent(t *testing.T) {
	s := New(Props{Options: techTree()})
	s.ToggleCollapse(sv("be"))
	s.Open()

	s.StartCreator(sv("be"))
	if s.IsCollapsed(sv("be")) {
		t.Error("StartCreator should expand the parent")
	}
	rows := s.VisibleOptions()
	if !rows[1].IsCreator() || !rows[1].ParentValue.Equal(sv("be")) {
		t.Errorf("Expected creator row under be at 1, got %+v", rows[1])
	}
}

func TestCreatorRoundTrip(t *testing.T) {
	s := New(Props{Options: techTree()})
	s.OnCreate(func(req creator.CreateRequest) {
		tree, ok := options.InsertChild(s.Options(), req.Parent, creator.NewOption(req))
		if !ok {
			t.Fatalf("parent %s not found", req.Parent)
		}
		s.SetOptions(tree)
	})

	s.Open()
	s.StartCreator(sv("fe"))
	if !s.SubmitCreator("Vue JS") {
		t.Fatal("Expected submission to be sent")
	}

	if !s.CreatorParentValue().IsNone() {
		t.Error("Submit should leave creator mode")
	}
	want := []string{"be", "go", "java", "fe", "react", "vue-js"}
	var got []string
	for _, row := range s.VisibleOptions() {
		got = append(got, row.Key)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestCloseCancelsCreator(t *testing.T) {
	s := New(Props{Options: techTree()})
	s.Open()
	s.StartCreator(sv("be"))
	s.HandleClickOutside()
	if s.IsOpen() || !s.CreatorParentValue().IsNone() {
		t.Error("Click outside should close and cancel the creator")
	}
}

func TestDisabledSuppressesCreatorRow(t *testing.T) {
	s := New(Props{Options: techTree()})
	s.StartCreator(sv("be"))
	s.SetDisabled(true)
	for _, row := range s.VisibleOptions() {
		if row.IsCreator() {
			t.Fatal("Disabled select must not render a creator row")
		}
	}
}

func TestSelectedOptions(t *testing.T) {
	s := New(Props{Options: techTree(), Value: cell.New(model.Multi(sv("react"), sv("go"))), Multiple: true})
	got := s.SelectedOptions()
	if len(got) != 2 || got[0].Label != "React" || got[1].Label != "Go" {
		t.Errorf("Unexpected selected options: %+v", got)
	}
	s.RemoveValue(sv("react"))
	if diff := cmp.Diff([]string{"go"}, strs(s.Value().Values())); diff != "" {
		t.Errorf("value mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultValueShape(t *testing.T) {
	if New(Props{}).Value().IsMulti() {
		t.Error("Single select should default to a scalar")
	}
	if !New(Props{Multiple: true}).Value().IsMulti() {
		t.Error("Multiple select should default to a sequence")
	}
}

func TestCollapseKeepsHighlightAcrossKeyCollision(t *testing.T) {
	opts := []model.Option{
		{Value: sv("1"), Label: "one (string)"},
		{Value: model.IntValue(1), Label: "one (number)", Children: []model.Option{
			{Value: sv("x"), Label: "X"},
		}},
	}
	s := New(Props{Options: opts})
	s.Open()
	s.SetHighlight(1)

	press(s, keyboard.KeyArrowLeft)
	if !s.IsCollapsed(model.IntValue(1)) {
		t.Fatal("Expected the numeric branch to collapse")
	}
	if got := s.HighlightedIndex(); got != 1 {
		t.Errorf("Expected highlight to stay on the numeric row, got %d", got)
	}
}

func TestSearchKeepsHighlightOnUnvaluedSibling(t *testing.T) {
	opts := []model.Option{
		{Label: "Fruit apple"},
		{Label: "Veg apple"},
	}
	s := New(Props{Options: opts, Searchable: true})
	s.Open()
	s.SetHighlight(1)

	s.SetSearchQuery("apple")
	if got := s.HighlightedIndex(); got != 1 {
		t.Errorf("Expected highlight to stay on Veg apple, got %d", got)
	}
}

func TestRowIdentitiesAreUnique(t *testing.T) {
	opts := []model.Option{
		{Value: sv("1"), Label: "One"},
		{Value: model.IntValue(1), Label: "One"},
		{Label: "Same"},
		{Label: "Same"},
		{Label: "Parent", Children: []model.Option{{Label: "Same"}}},
	}
	s := New(Props{Options: opts})

	ids := rowIdentities(s.VisibleOptions())
	seen := make(map[string]bool)
	for i, id := range ids {
		if seen[id] {
			t.Errorf("Row %d shares identity %q with an earlier row", i, id)
		}
		seen[id] = true
	}
}

func TestSubmitCreatorKeepsHighlightBelowCreatorRow(t *testing.T) {
	for _, submit := range []bool{true, false} {
		s := New(Props{Options: techTree(), Multiple: true})
		s.OnCreate(func(req creator.CreateRequest) {
			tree, _ := options.InsertChild(s.Options(), req.Parent, creator.NewOption(req))
			s.SetOptions(tree)
		})
		s.Open()
		s.StartCreator(sv("be"))
		s.SetHighlight(4)
		if label := s.VisibleOptions()[4].Label; label != "Frontend" {
			t.Fatalf("Expected Frontend at 4, got %s", label)
		}

		if submit {
			s.SubmitCreator("Rust")
		} else {
			s.CancelCreator()
		}
		rows := s.VisibleOptions()
		h := s.HighlightedIndex()
		if h < 0 {
			t.Fatalf("submit=%v: highlight lost", submit)
		}
		if got := rows[h].Label; got != "Frontend" {
			t.Errorf("submit=%v: expected highlight on Frontend, got %s", submit, got)
		}
	}
}
