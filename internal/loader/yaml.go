package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Benny93/objex-go/internal/inspect"
)

// ErrRecursiveAlias is returned for a sequence that contains itself through
// an alias. Self-referencing mappings are allowed and produce cyclic
// *inspect.Object graphs.
var ErrRecursiveAlias = errors.New("recursive alias")

const mergeTag = "!!merge"

// decodeYAML decodes a YAML stream; JSON is decoded as YAML. A stream with
// several documents yields []any of the documents.
func decodeYAML(data []byte) (any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var docs []any
	for {
		var n yaml.Node
		if err := dec.Decode(&n); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		v, err := newYAMLConverter().convert(&n)
		if err != nil {
			return nil, err
		}
		docs = append(docs, v)
	}

	switch len(docs) {
	case 0:
		return nil, nil
	case 1:
		return docs[0], nil
	default:
		return docs, nil
	}
}

type yamlConverter struct {
	// done holds converted mappings and sequences so aliases share values.
	done map[*yaml.Node]any
	// building marks sequences under construction.
	building map[*yaml.Node]bool
}

func newYAMLConverter() *yamlConverter {
	return &yamlConverter{done: make(map[*yaml.Node]any), building: make(map[*yaml.Node]bool)}
}

func (c *yamlConverter) convert(n *yaml.Node) (any, error) {
	if v, ok := c.done[n]; ok {
		return v, nil
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return c.convert(n.Content[0])
	case yaml.AliasNode:
		return c.convert(n.Alias)
	case yaml.MappingNode:
		obj := inspect.NewObject()
		c.done[n] = obj
		if err := c.fill(obj, n); err != nil {
			return nil, err
		}
		return obj, nil
	case yaml.SequenceNode:
		if c.building[n] {
			return nil, fmt.Errorf("line %d: %w", n.Line, ErrRecursiveAlias)
		}
		c.building[n] = true
		defer delete(c.building, n)

		items := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := c.convert(item)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		c.done[n] = items
		return items, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("line %d: unexpected node kind %d", n.Line, n.Kind)
}

// fill copies a mapping's entries into obj. Merged keys never replace keys
// that are already set; explicit keys always replace merged ones.
func (c *yamlConverter) fill(obj *inspect.Object, n *yaml.Node) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]

		if key.Kind == yaml.ScalarNode && key.Value == "<<" && key.ShortTag() == mergeTag {
			if err := c.merge(obj, val); err != nil {
				return err
			}
			continue
		}

		name, err := c.key(key)
		if err != nil {
			return err
		}
		v, err := c.convert(val)
		if err != nil {
			return err
		}
		obj.Set(name, v)
	}
	return nil
}

func (c *yamlConverter) merge(obj *inspect.Object, val *yaml.Node) error {
	sources := []*yaml.Node{val}
	if resolveAlias(val).Kind == yaml.SequenceNode {
		sources = resolveAlias(val).Content
	}

	for _, src := range sources {
		v, err := c.convert(src)
		if err != nil {
			return err
		}
		m, ok := v.(*inspect.Object)
		if !ok {
			return fmt.Errorf("line %d: merge value is not a mapping", src.Line)
		}
		for _, k := range m.Keys() {
			if _, exists := obj.Get(k); exists {
				continue
			}
			mv, _ := m.Get(k)
			obj.Set(k, mv)
		}
	}
	return nil
}

func (c *yamlConverter) key(n *yaml.Node) (string, error) {
	n = resolveAlias(n)
	if n.Kind == yaml.ScalarNode {
		return n.Value, nil
	}
	v, err := c.convert(n)
	if err != nil {
		return "", err
	}
	return inspect.Preview(v, inspect.DefaultPreviewOptions()), nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
