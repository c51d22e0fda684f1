// Package domains flattens the configuration's [set] tree into
// preference domains and resolves configured domain names to the real
// defaults-store addresses.
package domains

import (
	toml "github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"

	"github.com/machlit/cutler/pkg/errors"
	"github.com/machlit/cutler/pkg/prefs"
)

// MaxDepth bounds the nesting of headed tables under [set]. Documents
// deeper than this are rejected instead of recursed into.
const MaxDepth = 12

// Setting is one flattened key with its desired value.
type Setting struct {
	Key   string
	Value prefs.Value
}

// DomainSettings is one configured domain with its flat key table, in
// document order.
type DomainSettings struct {
	Name     string
	Settings []Setting
}

// tableNode mirrors the headed-table structure of the document under
// [set]. Only tables introduced by their own header path appear here;
// inline tables stay leaf values of their parent.
type tableNode struct {
	name     string
	keys     []string
	children []*tableNode
	index    map[string]*tableNode
}

func (n *tableNode) child(name string) *tableNode {
	if c, ok := n.index[name]; ok {
		return c
	}
	c := &tableNode{name: name, index: make(map[string]*tableNode)}
	n.index[name] = c
	n.children = append(n.children, c)
	return c
}

// Collect walks the [set] section of a raw configuration document and
// returns a mapping domain -> flat key table, in document order.
//
// A table written inline (`key = { a = 1 }`) is a leaf dictionary value
// under the current domain. A table introduced by its own header path
// (`[set.dock.nested]`) is a new domain named by dot-joining the path
// segments, recursively. Domains whose flattened table ends up empty
// are omitted.
func Collect(raw []byte) ([]DomainSettings, error) {
	// Values come from a plain strict-free decode; the raw parse below
	// only recovers the headed-vs-inline structure the decode flattens
	// away.
	var doc map[string]interface{}
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "config is not valid TOML")
	}
	setRaw, ok := doc["set"].(map[string]interface{})
	if !ok {
		return nil, nil
	}

	root, err := scanHeaders(raw)
	if err != nil {
		return nil, err
	}

	var out []DomainSettings
	for _, child := range root.children {
		sub, ok := setRaw[child.name].(map[string]interface{})
		if !ok {
			continue
		}
		if err := flatten(child, child.name, sub, 1, &out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// scanHeaders parses the raw document and records, in order, every
// headed table under [set] together with the keys assigned inside it.
func scanHeaders(raw []byte) (*tableNode, error) {
	root := &tableNode{index: make(map[string]*tableNode)}

	var parser unstable.Parser
	parser.Reset(raw)

	// current is the node for the table the parser is inside, or nil
	// when the current table is not under [set].
	var current *tableNode

	for parser.NextExpression() {
		expr := parser.Expression()
		switch expr.Kind {
		case unstable.Table:
			parts := keyParts(expr)
			current = nil
			if len(parts) == 0 || parts[0] != "set" {
				continue
			}
			if len(parts) > MaxDepth+1 {
				return nil, errors.Newf(errors.ErrConfigParse,
					"managed settings nested deeper than %d levels", MaxDepth)
			}
			node := root
			for _, part := range parts[1:] {
				node = node.child(part)
			}
			current = node
		case unstable.ArrayTable:
			// arrays of tables are not preference material
			current = nil
		case unstable.KeyValue:
			if current == nil || current == root {
				continue
			}
			parts := keyParts(expr)
			if len(parts) == 0 {
				continue
			}
			// dotted keys collapse into their first segment; the
			// decoded value for that segment is a dictionary leaf
			current.keys = append(current.keys, parts[0])
		}
	}
	if err := parser.Error(); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "config is not valid TOML")
	}
	return root, nil
}

func keyParts(expr *unstable.Node) []string {
	var parts []string
	it := expr.Key()
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}

func flatten(node *tableNode, domain string, tbl map[string]interface{}, depth int, out *[]DomainSettings) error {
	if depth > MaxDepth {
		return errors.Newf(errors.ErrConfigParse,
			"managed settings nested deeper than %d levels", MaxDepth)
	}

	settings := make([]Setting, 0, len(node.keys))
	for _, key := range node.keys {
		rawVal, ok := tbl[key]
		if !ok {
			continue
		}
		value, err := prefs.FromTOML(rawVal)
		if err != nil {
			return errors.Wrapf(err, errors.ErrValueShape,
				"setting %s of domain %s", key, domain)
		}
		settings = append(settings, Setting{Key: key, Value: value})
	}
	if len(settings) > 0 {
		*out = append(*out, DomainSettings{Name: domain, Settings: settings})
	}

	for _, child := range node.children {
		sub, ok := tbl[child.name].(map[string]interface{})
		if !ok {
			continue
		}
		if err := flatten(child, domain+"."+child.name, sub, depth+1, out); err != nil {
			return err
		}
	}
	return nil
}
