package model

import (
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ValueKind tags which payload a Value carries.
type ValueKind uint8

const (
	KindNone   ValueKind = iota // absent (pure group headers, cleared single selection)
	KindString                  // string identifier
	KindNumber                  // numeric identifier
)

// Value is an option identifier: a string, a number, or nothing.
// Values are comparable and safe to use as map keys.
type Value struct {
	kind ValueKind
	str  string
	num  float64
}

// None is the absent value.
var None = Value{}

// StringValue returns a string identifier.
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// NumberValue returns a numeric identifier.
func NumberValue(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// IntValue is shorthand for NumberValue(float64(n)).
func IntValue(n int) Value {
	return NumberValue(float64(n))
}

// Kind reports which payload the value carries.
func (v Value) Kind() ValueKind { return v.kind }

// IsNone reports whether the value is absent.
func (v Value) IsNone() bool { return v.kind == KindNone }

// Equal is strict equality: "1" and 1 are different values.
func (v Value) Equal(o Value) bool {
	return v == o
}

// String renders the value the way it is compared loosely ("1", "1.5", "apple").
// None renders as "undefined" so synthesized keys stay stable.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return "undefined"
	}
}

// LooseEqual compares the string renderings of two values. None never matches.
func (v Value) LooseEqual(o Value) bool {
	if v.IsNone() || o.IsNone() {
		return false
	}
	return v.String() == o.String()
}

// Interface returns the payload as a plain Go value (string, float64 or nil).
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	default:
		return nil
	}
}

// ValueOf converts a decoded scalar into a Value.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return None, nil
	case Value:
		return t, nil
	case string:
		return StringValue(t), nil
	case float64:
		return NumberValue(t), nil
	case float32:
		return NumberValue(float64(t)), nil
	case int:
		return IntValue(t), nil
	case int64:
		return NumberValue(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return None, fmt.Errorf("invalid numeric value %q: %w", t, err)
		}
		return NumberValue(f), nil
	default:
		return None, fmt.Errorf("unsupported value type %T", x)
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON implements json.Unmarshaler. Accepts a string, a number or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	return v.Interface(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Numeric tags decode as numbers,
// everything else as strings.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	switch node.Tag {
	case "!!null":
		*v = None
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return fmt.Errorf("invalid numeric value %q: %w", node.Value, err)
		}
		*v = NumberValue(f)
	default:
		if node.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: option value must be a scalar", node.Line)
		}
		*v = StringValue(node.Value)
	}
	return nil
}
