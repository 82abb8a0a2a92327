package sqlgen

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Value is a template parameter value: either a single string or a list of
// strings. The shape is resolved once when the value enters the system
// (JSON boundary or constructor), so rendering dispatches on a closed tag
// instead of sniffing runtime types.
type Value struct {
	list   []string
	str    string
	isList bool
}

// String builds a scalar value.
func String(s string) Value { return Value{str: s} }

// List builds a list value.
func List(items ...string) Value { return Value{list: items, isList: true} }

// IsList reports whether the value carries a list.
func (v Value) IsList() bool { return v.isList }

// IsZero reports whether the value is absent for validation purposes:
// an empty string or an empty list.
func (v Value) IsZero() bool {
	if v.isList {
		return len(v.list) == 0
	}
	return v.str == ""
}

// Str returns the scalar form ("" for lists).
func (v Value) Str() string {
	if v.isList {
		return ""
	}
	return v.str
}

// Items returns the list form (nil for scalars).
func (v Value) Items() []string {
	if !v.isList {
		return nil
	}
	return v.list
}

// text is the form substituted into a template body. Lists that were not
// canonicalized beforehand degrade to a plain comma join.
func (v Value) text() string {
	if v.isList {
		return strings.Join(v.list, ", ")
	}
	return v.str
}

// UnmarshalJSON accepts a JSON string or array of strings.
func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = String(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*v = List(list...)
		return nil
	}
	return fmt.Errorf("parameter value must be a string or a list of strings: %s", string(data))
}

// MarshalJSON renders the value back in the shape it arrived in.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.isList {
		return json.Marshal(v.list)
	}
	return json.Marshal(v.str)
}

// Params is the flat parameter map a template is rendered against.
type Params map[string]Value

// clone copies the map so canonicalization never mutates the caller's view.
func (p Params) clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
