package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Benny93/objex-go/internal/inspect"
)

type cyclic struct {
	Name string
	Self *cyclic
}

// shaky enumerates a mix of good, failing, panicking and duplicated attributes.
type shaky struct{}

func (shaky) Attributes() []inspect.Attribute {
	return []inspect.Attribute{
		inspect.Value("good", 1),
		{Name: "broken", Resolve: func() (any, error) { return nil, errors.New("unreadable") }},
		{Name: "explodes", Resolve: func() (any, error) { panic("boom") }},
		inspect.Value("dup", "first"),
		inspect.Value("dup", "second"),
		inspect.Value("_private", 2),
	}
}

type badSignature struct{}

func (badSignature) Doc() string                { return "Documented anyway." }
func (badSignature) Signature() (string, error) { panic("no signature") }

func childNames(nodes []*Node) []string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name()
	}
	return names
}

func TestNewRoot(t *testing.T) {
	t.Parallel()

	t.Run("Empty", func(t *testing.T) {
		t.Parallel()
		root := NewRoot(nil)

		assert.Equal(t, RootName, root.Name())
		assert.Nil(t, root.Value())
		assert.Nil(t, root.Parent())
		assert.True(t, root.Flags().Nil)
		assert.False(t, root.Populated())

		root.PopulateChildren()
		assert.True(t, root.Populated())
		assert.Empty(t, root.Children())
	})

	t.Run("Value", func(t *testing.T) {
		t.Parallel()
		root := NewRoot([]int{1, 2})

		assert.Equal(t, "slice", root.TypeName())
		assert.Equal(t, "[1 2]", root.Preview())
		assert.Equal(t, 0, root.Depth())
		assert.Equal(t, []string{RootName}, root.Path())
	})
}

func TestNode_PopulateChildren(t *testing.T) {
	t.Parallel()

	t.Run("Idempotent", func(t *testing.T) {
		t.Parallel()
		root := NewRoot(map[string]int{"a": 1, "b": 2})

		root.PopulateChildren()
		first := root.Children()
		a, ok := root.Child("a")
		require.True(t, ok)

		root.PopulateChildren()
		second := root.Children()
		again, _ := root.Child("a")

		require.Len(t, second, len(first))
		for i := range first {
			assert.Same(t, first[i], second[i])
		}
		assert.Same(t, a, again)
	})

	t.Run("NotPopulatedUntilAsked", func(t *testing.T) {
		t.Parallel()
		root := NewRoot(map[string]int{"a": 1})

		assert.Nil(t, root.Children())
		_, ok := root.Child("a")
		assert.False(t, ok)
		assert.Equal(t, 0, root.Len())
	})

	t.Run("DiscoveryOrder", func(t *testing.T) {
		t.Parallel()
		m := inspect.NewModule("demo", "").Add("zeta", 1).Add("alpha", 2).Add("mid", 3)
		root := NewRoot(m)
		root.PopulateChildren()

		assert.Equal(t, []string{"zeta", "alpha", "mid"}, childNames(root.Children()))
	})

	t.Run("SkipsFailedAttributes", func(t *testing.T) {
		t.Parallel()
		root := NewRoot(shaky{})
		root.PopulateChildren()

		assert.Equal(t, []string{"good", "dup", "_private"}, childNames(root.Children()))

		dup, ok := root.Child("dup")
		require.True(t, ok)
		assert.Equal(t, "first", dup.Value())
	})

	t.Run("MetadataFailureIsolated", func(t *testing.T) {
		t.Parallel()
		root := NewRoot(inspect.NewModule("demo", "").Add("child", badSignature{}))
		root.PopulateChildren()

		child, ok := root.Child("child")
		require.True(t, ok)

		_, has := child.Signature()
		assert.False(t, has)
		assert.Equal(t, "Documented anyway.", child.Doc())
		assert.True(t, child.Flags().Callable)
		assert.Contains(t, child.Metadata().Failures, inspect.FieldSignature)
	})

	t.Run("ChildMetadata", func(t *testing.T) {
		t.Parallel()
		root := NewRoot(inspect.NewModule("demo", "").Add("Type", inspect.TypeFor[cyclic]()))
		root.PopulateChildren()

		child, ok := root.Child("Type")
		require.True(t, ok)
		assert.Equal(t, inspect.CategoryClass, child.Category())
		assert.Equal(t, "type", child.TypeName())
		assert.Same(t, root, child.Parent())
		assert.Equal(t, 1, child.Depth())
		assert.Equal(t, []string{RootName, "Type"}, child.Path())
	})
}

func TestNode_Cycles(t *testing.T) {
	t.Parallel()

	t.Run("PointerCycle", func(t *testing.T) {
		t.Parallel()
		c := &cyclic{Name: "loop"}
		c.Self = c

		root := NewRoot(c)
		self, err := root.Walk("Self")
		require.NoError(t, err)

		assert.True(t, self.Cycle())
		assert.Same(t, root, self.Ancestor())
		assert.False(t, root.Cycle())

		// The repeated node stays navigable.
		deeper, err := self.Walk("Self", "Self")
		require.NoError(t, err)
		assert.True(t, deeper.Cycle())
		assert.Same(t, deeper.Parent(), deeper.Ancestor())
		assert.Equal(t, 3, deeper.Depth())
	})

	t.Run("MapCycle", func(t *testing.T) {
		t.Parallel()
		m := map[string]any{"x": 1}
		m["me"] = m

		root := NewRoot(m)
		me, err := root.Walk("me")
		require.NoError(t, err)
		assert.True(t, me.Cycle())

		x, err := root.Walk("x")
		require.NoError(t, err)
		assert.False(t, x.Cycle())
	})

	t.Run("SiblingsAreNotCycles", func(t *testing.T) {
		t.Parallel()
		shared := &cyclic{Name: "shared"}
		root := NewRoot(inspect.NewModule("demo", "").Add("a", shared).Add("b", shared))
		root.PopulateChildren()

		for _, c := range root.Children() {
			assert.False(t, c.Cycle(), c.Name())
		}
	})
}

func TestNode_Walk(t *testing.T) {
	t.Parallel()

	root := NewRoot(map[string]any{"a": map[string]int{"b": 2}})

	b, err := root.Walk("a", "b")
	require.NoError(t, err)
	assert.Equal(t, 2, b.Value())

	_, err = root.Walk("a", "missing")
	assert.ErrorIs(t, err, ErrNoSuchChild)
	assert.ErrorContains(t, err, "missing")
}

func TestBuilder_Workers(t *testing.T) {
	t.Parallel()

	values := make(map[string]int)
	for i := 0; i < 50; i++ {
		values[string(rune('A'+i%26))+string(rune('a'+i/26))] = i
	}

	seq := NewBuilder(Options{}).Root(values)
	par := NewBuilder(Options{Workers: 4}).Root(values)
	seq.PopulateChildren()
	par.PopulateChildren()

	assert.Equal(t, childNames(seq.Children()), childNames(par.Children()))
	for _, c := range par.Children() {
		assert.Same(t, par, c.Parent())
		assert.Equal(t, values[c.Name()], c.Value())
	}
}
