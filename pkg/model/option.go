package model

import (
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Option is a node in the source option tree.
//
// A node with Group set and no Value is a non-selectable header. A node with
// Children is a branch. Extra carries caller fields the engine never
// interprets; they are copied through flattening verbatim.
type Option struct {
	Value    Value
	Label    string
	Disabled bool
	Children []Option
	Group    string
	Extra    map[string]any
}

// Known wire keys. Anything else lands in Extra.
const (
	keyValue    = "value"
	keyLabel    = "label"
	keyDisabled = "disabled"
	keyChildren = "children"
	keyGroup    = "group"
)

// HasChildren reports whether the option is a non-empty branch.
func (o Option) HasChildren() bool {
	return len(o.Children) > 0
}

// IsHeader reports whether the option is a pure group header.
func (o Option) IsHeader() bool {
	return o.Group != "" && o.Value.IsNone()
}

// Clone creates a deep copy of the option and its subtree.
func (o Option) Clone() Option {
	clone := o
	if o.Children != nil {
		clone.Children = make([]Option, len(o.Children))
		for i, child := range o.Children {
			clone.Children[i] = child.Clone()
		}
	}
	clone.Extra = cloneExtra(o.Extra)
	return clone
}

func cloneExtra(extra map[string]any) map[string]any {
	if extra == nil {
		return nil
	}
	out := make(map[string]any, len(extra))
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// Validate checks the structural invariants of the subtree.
func (o *Option) Validate() error {
	if o.Label == "" && o.Group == "" {
		return fmt.Errorf("option %s: label cannot be empty", o.Value)
	}
	for i := range o.Children {
		if err := o.Children[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTree validates every root of a tree.
func ValidateTree(opts []Option) error {
	for i := range opts {
		if err := opts[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (o Option) wireMap() map[string]any {
	out := make(map[string]any, len(o.Extra)+5)
	for k, v := range o.Extra {
		out[k] = v
	}
	if !o.Value.IsNone() {
		out[keyValue] = o.Value.Interface()
	}
	out[keyLabel] = o.Label
	if o.Disabled {
		out[keyDisabled] = true
	}
	if o.Group != "" {
		out[keyGroup] = o.Group
	}
	if len(o.Children) > 0 {
		out[keyChildren] = o.Children
	}
	return out
}

// MarshalJSON implements json.Marshaler; extras are written at the top level.
func (o Option) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.wireMap())
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Option) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out Option
	for k, msg := range raw {
		var err error
		switch k {
		case keyValue:
			err = json.Unmarshal(msg, &out.Value)
		case keyLabel:
			err = json.Unmarshal(msg, &out.Label)
		case keyDisabled:
			err = json.Unmarshal(msg, &out.Disabled)
		case keyGroup:
			err = json.Unmarshal(msg, &out.Group)
		case keyChildren:
			err = json.Unmarshal(msg, &out.Children)
		default:
			var v any
			if err = json.Unmarshal(msg, &v); err == nil {
				if out.Extra == nil {
					out.Extra = make(map[string]any)
				}
				out.Extra[k] = v
			}
		}
		if err != nil {
			return fmt.Errorf("option field %q: %w", k, err)
		}
	}
	*o = out
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (o Option) MarshalYAML() (any, error) {
	return o.wireMap(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *Option) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: option must be a mapping", node.Line)
	}

	var out Option
	for i := 0; i+1 < len(node.Content); i += 2 {
		k := node.Content[i].Value
		v := node.Content[i+1]
		var err error
		switch k {
		case keyValue:
			err = v.Decode(&out.Value)
		case keyLabel:
			err = v.Decode(&out.Label)
		case keyDisabled:
			err = v.Decode(&out.Disabled)
		case keyGroup:
			err = v.Decode(&out.Group)
		case keyChildren:
			err = v.Decode(&out.Children)
		default:
			var x any
			if err = v.Decode(&x); err == nil {
				if out.Extra == nil {
					out.Extra = make(map[string]any)
				}
				out.Extra[k] = x
			}
		}
		if err != nil {
			return fmt.Errorf("option field %q: %w", k, err)
		}
	}
	*o = out
	return nil
}
