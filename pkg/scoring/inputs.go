package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// InputKind is the type of an input field and of the value answering it.
type InputKind string

const (
	KindBoolean  InputKind = "boolean"
	KindNumber   InputKind = "number"
	KindCategory InputKind = "dropdown"
)

// ParseInputKind maps a definition type name to an InputKind.
// "category" is accepted as an alias of "dropdown".
func ParseInputKind(s string) (InputKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "boolean", "bool":
		return KindBoolean, nil
	case "number", "numeric":
		return KindNumber, nil
	case "dropdown", "category":
		return KindCategory, nil
	default:
		return "", fmt.Errorf("unknown input type %q (expected boolean, number, dropdown)", s)
	}
}

// InputValue is a single user-supplied answer: a boolean, a number or a
// category selection. The zero value carries no kind and is rejected by
// every field.
type InputValue struct {
	kind InputKind
	b    bool
	n    float64
	s    string
}

// Inputs maps field identifiers to answers.
type Inputs map[string]InputValue

// Bool returns a boolean answer.
func Bool(v bool) InputValue { return InputValue{kind: KindBoolean, b: v} }

// Number returns a numeric answer.
func Number(v float64) InputValue { return InputValue{kind: KindNumber, n: v} }

// Category returns a dropdown selection.
func Category(v string) InputValue { return InputValue{kind: KindCategory, s: v} }

// Kind reports which variant v holds.
func (v InputValue) Kind() InputKind { return v.kind }

// AsBool returns the boolean payload and whether v is a boolean.
func (v InputValue) AsBool() (bool, bool) { return v.b, v.kind == KindBoolean }

// AsNumber returns the numeric payload and whether v is a number.
func (v InputValue) AsNumber() (float64, bool) { return v.n, v.kind == KindNumber }

// AsCategory returns the selection and whether v is a category.
func (v InputValue) AsCategory() (string, bool) { return v.s, v.kind == KindCategory }

func (v InputValue) String() string {
	switch v.kind {
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.n, 'g', -1, 64)
	case KindCategory:
		return v.s
	default:
		return "<none>"
	}
}

// MarshalJSON encodes the payload as a bare JSON bool, number or string.
func (v InputValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBoolean:
		return json.Marshal(v.b)
	case KindNumber:
		return json.Marshal(v.n)
	case KindCategory:
		return json.Marshal(v.s)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a bare JSON bool, number or string.
func (v *InputValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case bool:
		*v = Bool(x)
	case float64:
		*v = Number(x)
	case string:
		*v = Category(x)
	default:
		return fmt.Errorf("input value must be a bool, number or string, got %s", string(data))
	}
	return nil
}

// ParseInput converts a command-line string into an answer of the field's kind.
func ParseInput(field *InputField, raw string) (InputValue, error) {
	raw = strings.TrimSpace(raw)
	switch field.Kind {
	case KindBoolean:
		switch strings.ToLower(raw) {
		case "true", "yes", "y", "1", "ja":
			return Bool(true), nil
		case "false", "no", "n", "0", "nein":
			return Bool(false), nil
		}
		return InputValue{}, fmt.Errorf("field %s: %q is not a boolean", field.Field, raw)
	case KindNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return InputValue{}, fmt.Errorf("field %s: %q is not a number", field.Field, raw)
		}
		return Number(n), nil
	case KindCategory:
		return Category(raw), nil
	default:
		return InputValue{}, fmt.Errorf("field %s: unsupported input type %q", field.Field, field.Kind)
	}
}
