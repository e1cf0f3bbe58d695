package options

import (
	"testing"

	"github.com/vanderheijden86/treeselect/pkg/model"
)

func TestFindOption(t *testing.T) {
	tree := techTree()
	found, ok := FindOption(tree, sv("gin"))
	if !ok || found.Label != "Gin" {
		t.Errorf("Expected to find Gin, got %+v ok=%v", found, ok)
	}
	if _, ok := FindOption(tree, sv("missing")); ok {
		t.Error("Expected missing value not to be found")
	}
	if _, ok := FindOption(tree, model.None); ok {
		t.Error("None must never be found")
	}
}

func TestInsertChildCopiesPath(t *testing.T) {
	tree := techTree()
	out, ok := InsertChild(tree, sv("fw"), opt("echo", "Echo"))
	if !ok {
		t.Fatal("Expected insert to succeed")
	}

	if got := len(out[0].Children[2].Children); got != 2 {
		t.Errorf("Expected 2 frameworks after insert, got %d", got)
	}
	if got := len(tree[0].Children[2].Children); got != 1 {
		t.Errorf("Input tree was modified: %d frameworks", got)
	}
	// untouched sibling subtrees are shared
	if &out[1].Children[0] != &tree[1].Children[0] {
		t.Error("Expected unrelated branch to be shared")
	}
}

func TestInsertChildUnknownParent(t *testing.T) {
	tree := techTree()
	if _, ok := InsertChild(tree, sv("nope"), opt("x", "X")); ok {
		t.Error("Expected insert under unknown parent to fail")
	}
	if _, ok := InsertChild(tree, model.None, opt("x", "X")); ok {
		t.Error("Expected insert under none to fail")
	}
}

func TestWalkDepths(t *testing.T) {
	var labels []string
	var depths []int
	Walk(techTree(), func(o model.Option, depth int) {
		labels = append(labels, o.Label)
		depths = append(depths, depth)
	})
	if len(labels) != 8 || labels[4] != "Gin" || depths[4] != 2 {
		t.Errorf("Unexpected walk: %v %v", labels, depths)
	}
}
