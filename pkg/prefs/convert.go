package prefs

import "fmt"

// ConversionError reports a value shape that cannot be represented as a
// preference value. There is deliberately no silent coercion: dates,
// byte strings and other exotic document values are hard errors.
type ConversionError struct {
	What   string
	Detail string
}

func (e *ConversionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("unsupported %s for preference value", e.What)
	}
	return fmt.Sprintf("unsupported %s for preference value: %s", e.What, e.Detail)
}

// FromTOML converts a value decoded by go-toml into a preference value.
// go-toml decodes TOML integers as int64, floats as float64, tables and
// inline tables as map[string]interface{} and arrays as []interface{}.
func FromTOML(raw interface{}) (Value, error) {
	switch t := raw.(type) {
	case string:
		return String(t), nil
	case int64:
		return Integer(t), nil
	case int:
		return Integer(int64(t)), nil
	case float64:
		return Float(t), nil
	case bool:
		return Boolean(t), nil
	case []interface{}:
		items := make([]Value, len(t))
		for i, elem := range t {
			conv, err := FromTOML(elem)
			if err != nil {
				return Value{}, err
			}
			items[i] = conv
		}
		return Array(items...), nil
	case map[string]interface{}:
		entries := make(map[string]Value, len(t))
		for k, elem := range t {
			conv, err := FromTOML(elem)
			if err != nil {
				return Value{}, err
			}
			entries[k] = conv
		}
		return Dictionary(entries), nil
	default:
		return Value{}, &ConversionError{What: "TOML value", Detail: fmt.Sprintf("%T", raw)}
	}
}

// ToTOML converts a preference value back into the interface form
// go-toml marshals from.
func ToTOML(v Value) (interface{}, error) {
	switch v.Kind() {
	case KindString:
		return v.Str(), nil
	case KindInteger:
		return v.Int(), nil
	case KindFloat:
		return v.Float64(), nil
	case KindBoolean:
		return v.Bool(), nil
	case KindArray:
		out := make([]interface{}, len(v.Items()))
		for i, item := range v.Items() {
			conv, err := ToTOML(item)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	case KindDictionary:
		out := make(map[string]interface{}, len(v.Dict()))
		for k, item := range v.Dict() {
			conv, err := ToTOML(item)
			if err != nil {
				return nil, err
			}
			out[k] = conv
		}
		return out, nil
	default:
		return nil, &ConversionError{What: "value", Detail: "invalid value"}
	}
}
