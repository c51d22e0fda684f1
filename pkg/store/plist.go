package store

import (
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/machlit/cutler/pkg/errors"
	"github.com/machlit/cutler/pkg/prefs"
)

// decodePlist parses an XML property list document (as emitted by
// `defaults export`) into a dictionary of preference values.
func decodePlist(data []byte) (map[string]prefs.Value, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Wrap(err, errors.ErrPrefIO, "could not parse plist output")
	}

	root := doc.SelectElement("plist")
	if root == nil {
		return nil, errors.New(errors.ErrPrefIO, "plist output has no <plist> root")
	}
	children := root.ChildElements()
	if len(children) == 0 {
		return map[string]prefs.Value{}, nil
	}
	top := children[0]
	if top.Tag != "dict" {
		return nil, errors.Newf(errors.ErrPrefIO, "plist root is <%s>, expected <dict>", top.Tag)
	}

	value, err := decodeElement(top)
	if err != nil {
		return nil, err
	}
	return value.Dict(), nil
}

func decodeElement(e *etree.Element) (prefs.Value, error) {
	switch e.Tag {
	case "string":
		return prefs.String(e.Text()), nil
	case "integer":
		i, err := strconv.ParseInt(strings.TrimSpace(e.Text()), 10, 64)
		if err != nil {
			return prefs.Value{}, errors.Wrap(err, errors.ErrValueShape, "bad <integer> in plist")
		}
		return prefs.Integer(i), nil
	case "real":
		f, err := strconv.ParseFloat(strings.TrimSpace(e.Text()), 64)
		if err != nil {
			return prefs.Value{}, errors.Wrap(err, errors.ErrValueShape, "bad <real> in plist")
		}
		return prefs.Float(f), nil
	case "true":
		return prefs.Boolean(true), nil
	case "false":
		return prefs.Boolean(false), nil
	case "array":
		children := e.ChildElements()
		items := make([]prefs.Value, 0, len(children))
		for _, child := range children {
			item, err := decodeElement(child)
			if err != nil {
				return prefs.Value{}, err
			}
			items = append(items, item)
		}
		return prefs.Array(items...), nil
	case "dict":
		children := e.ChildElements()
		entries := make(map[string]prefs.Value, len(children)/2)
		for i := 0; i+1 < len(children); i += 2 {
			keyEl := children[i]
			if keyEl.Tag != "key" {
				return prefs.Value{}, errors.Newf(errors.ErrValueShape,
					"plist <dict> entry starts with <%s>, expected <key>", keyEl.Tag)
			}
			value, err := decodeElement(children[i+1])
			if err != nil {
				return prefs.Value{}, err
			}
			entries[keyEl.Text()] = value
		}
		return prefs.Dictionary(entries), nil
	default:
		// <data>, <date> and friends are not preference material
		return prefs.Value{}, errors.Newf(errors.ErrValueShape, "unsupported plist element <%s>", e.Tag)
	}
}

// encodeFragment renders a preference value as a standalone plist XML
// fragment, the form `defaults write` accepts for container values.
func encodeFragment(v prefs.Value) (string, error) {
	el, err := encodeElement(v)
	if err != nil {
		return "", err
	}
	doc := etree.NewDocument()
	doc.SetRoot(el)
	s, err := doc.WriteToString()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrPrefIO, "could not serialize plist fragment")
	}
	return strings.TrimSpace(s), nil
}

func encodeElement(v prefs.Value) (*etree.Element, error) {
	switch v.Kind() {
	case prefs.KindString:
		el := etree.NewElement("string")
		el.SetText(v.Str())
		return el, nil
	case prefs.KindInteger:
		el := etree.NewElement("integer")
		el.SetText(strconv.FormatInt(v.Int(), 10))
		return el, nil
	case prefs.KindFloat:
		el := etree.NewElement("real")
		el.SetText(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
		return el, nil
	case prefs.KindBoolean:
		if v.Bool() {
			return etree.NewElement("true"), nil
		}
		return etree.NewElement("false"), nil
	case prefs.KindArray:
		el := etree.NewElement("array")
		for _, item := range v.Items() {
			child, err := encodeElement(item)
			if err != nil {
				return nil, err
			}
			el.AddChild(child)
		}
		return el, nil
	case prefs.KindDictionary:
		el := etree.NewElement("dict")
		// deterministic fragment output
		keys := make([]string, 0, len(v.Dict()))
		for k := range v.Dict() {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			keyEl := etree.NewElement("key")
			keyEl.SetText(k)
			el.AddChild(keyEl)
			child, err := encodeElement(v.Dict()[k])
			if err != nil {
				return nil, err
			}
			el.AddChild(child)
		}
		return el, nil
	default:
		return nil, errors.New(errors.ErrValueShape, "cannot encode an invalid value")
	}
}
