package options

import "github.com/vanderheijden86/treeselect/pkg/model"

// Walk visits every node of the tree in pre-order with its depth.
func Walk(nodes []model.Option, fn func(o model.Option, depth int)) {
	var walk func(nodes []model.Option, depth int)
	walk = func(nodes []model.Option, depth int) {
		for _, node := range nodes {
			fn(node, depth)
			walk(node.Children, depth+1)
		}
	}
	walk(nodes, 0)
}

// FindOption returns the first node (pre-order) whose value equals v.
func FindOption(nodes []model.Option, v model.Value) (model.Option, bool) {
	if v.IsNone() {
		return model.Option{}, false
	}
	for _, node := range nodes {
		if node.Value.Equal(v) {
			return node, true
		}
		if found, ok := FindOption(node.Children, v); ok {
			return found, true
		}
	}
	return model.Option{}, false
}

// InsertChild returns a copy of the tree with child appended under the first
// node whose value equals parent. Only the path to the parent is copied; the
// input tree is left untouched. ok is false when parent is not in the tree.
func InsertChild(nodes []model.Option, parent model.Value, child model.Option) (out []model.Option, ok bool) {
	if parent.IsNone() {
		return nodes, false
	}
	for i, node := range nodes {
		if node.Value.Equal(parent) {
			updated := node
			updated.Children = make([]model.Option, len(node.Children), len(node.Children)+1)
			copy(updated.Children, node.Children)
			updated.Children = append(updated.Children, child)
			return replaceAt(nodes, i, updated), true
		}
		if children, found := InsertChild(node.Children, parent, child); found {
			updated := node
			updated.Children = children
			return replaceAt(nodes, i, updated), true
		}
	}
	return nodes, false
}

func replaceAt(nodes []model.Option, i int, node model.Option) []model.Option {
	out := make([]model.Option, len(nodes))
	copy(out, nodes)
	out[i] = node
	return out
}
