// Package prefs defines the preference value model used across cutler.
//
// A Value is a tagged union over the six shapes the macOS defaults
// database can hold for a managed key: string, integer, float, boolean,
// array, and dictionary. Values convert losslessly to and from decoded
// TOML and to and from the JSON form persisted in snapshots. Conversion
// is total for these six shapes and fails explicitly for anything else.
package prefs

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the shape of a Value.
type Kind int

const (
	// KindInvalid is the zero Kind. A zero Value has no shape and is
	// rejected by every conversion.
	KindInvalid Kind = iota
	KindString
	KindInteger
	KindFloat
	KindBoolean
	KindArray
	KindDictionary
)

// String returns the kind name for logging.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindArray:
		return "array"
	case KindDictionary:
		return "dictionary"
	default:
		return "invalid"
	}
}

// Value is a preference value. The zero Value is invalid; construct
// values with the String, Integer, Float, Boolean, Array and Dictionary
// functions.
type Value struct {
	kind Kind
	str  string
	num  int64
	fl   float64
	b    bool
	arr  []Value
	dict map[string]Value
}

// String constructs a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Integer constructs a 64-bit signed integer value.
func Integer(i int64) Value { return Value{kind: KindInteger, num: i} }

// Float constructs a 64-bit float value.
func Float(f float64) Value { return Value{kind: KindFloat, fl: f} }

// Boolean constructs a boolean value.
func Boolean(b bool) Value { return Value{kind: KindBoolean, b: b} }

// Array constructs an ordered array value.
func Array(items ...Value) Value { return Value{kind: KindArray, arr: items} }

// Dictionary constructs an unordered dictionary value.
func Dictionary(entries map[string]Value) Value {
	return Value{kind: KindDictionary, dict: entries}
}

// Kind returns the shape of the value.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether the value holds one of the six shapes.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// Str returns the string payload. Valid only when Kind is KindString.
func (v Value) Str() string { return v.str }

// Int returns the integer payload. Valid only when Kind is KindInteger.
func (v Value) Int() int64 { return v.num }

// Float64 returns the float payload. Valid only when Kind is KindFloat.
func (v Value) Float64() float64 { return v.fl }

// Bool returns the boolean payload. Valid only when Kind is KindBoolean.
func (v Value) Bool() bool { return v.b }

// Items returns the array payload. Valid only when Kind is KindArray.
func (v Value) Items() []Value { return v.arr }

// Dict returns the dictionary payload. Valid only when Kind is KindDictionary.
func (v Value) Dict() map[string]Value { return v.dict }

// Equal reports full structural equality: recursive, order-sensitive
// for arrays, order-insensitive for dictionaries. Integers and floats
// never compare equal to each other, even when numerically identical.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindInteger:
		return v.num == other.num
	case KindFloat:
		return v.fl == other.fl
	case KindBoolean:
		return v.b == other.b
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindDictionary:
		if len(v.dict) != len(other.dict) {
			return false
		}
		for k, val := range v.dict {
			o, ok := other.dict[k]
			if !ok || !val.Equal(o) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders the value in a compact single-line form for log and
// status output. Dictionary keys are sorted so output is deterministic.
func (v Value) String() string {
	var sb strings.Builder
	v.render(&sb)
	return sb.String()
}

func (v Value) render(sb *strings.Builder) {
	switch v.kind {
	case KindString:
		sb.WriteString(v.str)
	case KindInteger:
		sb.WriteString(strconv.FormatInt(v.num, 10))
	case KindFloat:
		sb.WriteString(strconv.FormatFloat(v.fl, 'g', -1, 64))
	case KindBoolean:
		sb.WriteString(strconv.FormatBool(v.b))
	case KindArray:
		sb.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				sb.WriteString(", ")
			}
			item.render(sb)
		}
		sb.WriteByte(']')
	case KindDictionary:
		keys := make([]string, 0, len(v.dict))
		for k := range v.dict {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k)
			sb.WriteString(" = ")
			item := v.dict[k]
			item.render(sb)
		}
		sb.WriteByte('}')
	default:
		sb.WriteString("<invalid>")
	}
}

// MarshalJSON writes the natural JSON form of the value: strings as
// strings, integers and floats as numbers, booleans as booleans, arrays
// as arrays and dictionaries as objects. No type tag is emitted; the
// integer/float distinction is recovered on load from the number's
// lexical form.
func (v Value) MarshalJSON() ([]byte, error) {
	iface, err := v.toJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(iface)
}

func (v Value) toJSON() (interface{}, error) {
	switch v.kind {
	case KindString:
		return v.str, nil
	case KindInteger:
		return v.num, nil
	case KindFloat:
		return jsonFloat(v.fl), nil
	case KindBoolean:
		return v.b, nil
	case KindArray:
		out := make([]interface{}, len(v.arr))
		for i, item := range v.arr {
			conv, err := item.toJSON()
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	case KindDictionary:
		out := make(map[string]interface{}, len(v.dict))
		for k, item := range v.dict {
			conv, err := item.toJSON()
			if err != nil {
				return nil, err
			}
			out[k] = conv
		}
		return out, nil
	default:
		return nil, &ConversionError{What: "value", Detail: "cannot serialize an invalid value"}
	}
}

// jsonFloat forces a decimal point into whole floats so the
// integer/float distinction survives the JSON round trip.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	s := strconv.FormatFloat(float64(f), 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return []byte(s), nil
}

// UnmarshalJSON reads the natural JSON form written by MarshalJSON.
// Numbers without a fraction or exponent become integers, all other
// numbers become floats. JSON null is rejected; snapshot entries model
// "no original value" with a nil *Value instead.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := fromJSON(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func fromJSON(raw interface{}) (Value, error) {
	switch t := raw.(type) {
	case string:
		return String(t), nil
	case bool:
		return Boolean(t), nil
	case json.Number:
		s := t.String()
		if !strings.ContainsAny(s, ".eE") {
			if i, err := t.Int64(); err == nil {
				return Integer(i), nil
			}
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, &ConversionError{What: "JSON number", Detail: s}
		}
		return Float(f), nil
	case []interface{}:
		items := make([]Value, len(t))
		for i, elem := range t {
			conv, err := fromJSON(elem)
			if err != nil {
				return Value{}, err
			}
			items[i] = conv
		}
		return Array(items...), nil
	case map[string]interface{}:
		entries := make(map[string]Value, len(t))
		for k, elem := range t {
			conv, err := fromJSON(elem)
			if err != nil {
				return Value{}, err
			}
			entries[k] = conv
		}
		return Dictionary(entries), nil
	default:
		return Value{}, &ConversionError{What: "JSON value", Detail: "null or unsupported shape"}
	}
}
