package model

import "fmt"

// RowKind discriminates the rows of the flat list.
type RowKind int

const (
	RowOption  RowKind = iota // a real option, selectable unless disabled
	RowGroup                  // a group header
	RowCreator                // the synthetic inline "add child" row
)

func (k RowKind) String() string {
	switch k {
	case RowOption:
		return "option"
	case RowGroup:
		return "group"
	case RowCreator:
		return "creator"
	default:
		return fmt.Sprintf("RowKind(%d)", int(k))
	}
}

// CreatorValue is the value carried by every creator row.
var CreatorValue = StringValue("__creator__")

// FlatOption is an Option projected into the visible list.
type FlatOption struct {
	Option
	Kind        RowKind
	Depth       int    // nesting level from the root
	ParentValue Value  // owning node's value (None for roots and unvalued parents)
	Key         string // stable render identity
}

// IsGroup reports whether the row is a group header.
func (f FlatOption) IsGroup() bool { return f.Kind == RowGroup }

// IsCreator reports whether the row is the synthetic creator row.
func (f FlatOption) IsCreator() bool { return f.Kind == RowCreator }

// Navigable reports whether the row can receive keyboard highlight.
func (f FlatOption) Navigable() bool {
	return !f.Disabled && f.Kind != RowGroup
}

// RowKey synthesizes the key for a real node. Two unvalued groups sharing a
// tag at the same depth collide; callers keying on it must tolerate that.
func RowKey(o Option, depth int) string {
	if !o.Value.IsNone() {
		return o.Value.String()
	}
	group := o.Group
	if group == "" {
		group = "undefined"
	}
	return fmt.Sprintf("group-%s-%d", group, depth)
}

// NewCreatorRow builds the synthetic row emitted under parent.
func NewCreatorRow(parent Value, depth int) FlatOption {
	return FlatOption{
		Option: Option{
			Value: CreatorValue,
			Label: "Creator",
		},
		Kind:        RowCreator,
		Depth:       depth,
		ParentValue: parent,
		Key:         "creator-" + parent.String(),
	}
}
