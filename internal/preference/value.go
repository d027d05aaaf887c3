package preference

import (
	"encoding/json"
	"fmt"
	"slices"
)

type Kind string

const (
	KindNumber Kind = "number"
	KindString Kind = "string"
	KindBool   Kind = "bool"
	KindList   Kind = "list"
)

// Value is one preference value: a number, string, bool or list of strings.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
	Bool bool
	List []string
}

func Number(v float64) Value { return Value{Kind: KindNumber, Num: v} }

func String(v string) Value { return Value{Kind: KindString, Str: v} }

func Bool(v bool) Value { return Value{Kind: KindBool, Bool: v} }

func List(items ...string) Value {
	return Value{Kind: KindList, List: append([]string{}, items...)}
}

func (v Value) IsNumber() bool { return v.Kind == KindNumber }

func (v Value) Clone() Value {
	v.List = slices.Clone(v.List)
	return v
}

func (v Value) Contains(s string) bool { return slices.Contains(v.List, s) }

func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNumber:
		return v.Num == o.Num
	case KindString:
		return v.Str == o.Str
	case KindBool:
		return v.Bool == o.Bool
	default:
		return slices.Equal(v.List, o.List)
	}
}

func (v Value) Any() any {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindString:
		return v.Str
	case KindBool:
		return v.Bool
	case KindList:
		if v.List == nil {
			return []string{}
		}
		return v.List
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// FromAny converts a decoded JSON or YAML scalar/list into a Value.
func FromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case float64:
		return Number(x), nil
	case float32:
		return Number(float64(x)), nil
	case int:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	case []string:
		return List(x...), nil
	case []any:
		items := make([]string, 0, len(x))
		for _, it := range x {
			if s, ok := it.(string); ok {
				items = append(items, s)
			} else {
				items = append(items, fmt.Sprint(it))
			}
		}
		return List(items...), nil
	default:
		return Value{}, fmt.Errorf("unsupported preference value %T", raw)
	}
}

// FromMap converts a decoded object into preference values.
func FromMap(raw map[string]any) (map[string]Value, error) {
	out := make(map[string]Value, len(raw))
	for k, r := range raw {
		v, err := FromAny(r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}
