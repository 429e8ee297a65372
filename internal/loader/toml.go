package loader

import (
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/Benny93/objex-go/internal/inspect"
)

// decodeTOML decodes a TOML document. Go maps lose key order, so tables are
// rebuilt in the order the keys appear in the document.
func decodeTOML(data []byte) (any, error) {
	var m map[string]any
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, err
	}

	order := make(map[string]int, len(md.Keys()))
	for i, k := range md.Keys() {
		path := strings.Join(k, "\x00")
		if _, ok := order[path]; !ok {
			order[path] = i
		}
	}

	t := tomlTables{order: order}
	return t.table(m, nil), nil
}

type tomlTables struct {
	order map[string]int
}

func (t tomlTables) table(m map[string]any, prefix []string) *inspect.Object {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	rank := func(k string) (int, bool) {
		i, ok := t.order[strings.Join(append(prefix[:len(prefix):len(prefix)], k), "\x00")]
		return i, ok
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, oki := rank(keys[i])
		rj, okj := rank(keys[j])
		switch {
		case oki && okj:
			return ri < rj
		case oki != okj:
			return oki
		default:
			return keys[i] < keys[j]
		}
	})

	obj := inspect.NewObject()
	for _, k := range keys {
		obj.Set(k, t.value(m[k], append(prefix[:len(prefix):len(prefix)], k)))
	}
	return obj
}

func (t tomlTables) value(v any, path []string) any {
	switch x := v.(type) {
	case map[string]any:
		return t.table(x, path)
	case []map[string]any:
		items := make([]any, len(x))
		for i, m := range x {
			items[i] = t.table(m, path)
		}
		return items
	case []any:
		items := make([]any, len(x))
		for i, item := range x {
			items[i] = t.value(item, path)
		}
		return items
	}
	return v
}
