package inspect

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Benny93/objex-go/internal/storage"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	return NewExtractor(ExtractorConfig{
		Registry: NewRegistry(),
		Locator:  NewSourceLocator(storage.NewMemoryBackend()),
	})
}

func TestExtractor_Function(t *testing.T) {
	t.Parallel()

	m := newTestExtractor(t).Extract(greet, "greet")

	assert.Equal(t, "greet returns a greeting.\n\nIt is used by metadata tests.", m.Doc)
	assert.Equal(t, m.Doc, m.Help)
	require.True(t, m.HasSignature)
	assert.Equal(t, "greet(name string) string", m.Signature)
	require.True(t, m.HasSource)
	assert.Contains(t, m.Source, `return "hi " + name`)
	assert.Empty(t, m.Failures)
}

func TestExtractor_StdlibFunction(t *testing.T) {
	t.Parallel()

	m := newTestExtractor(t).Extract(strings.Split, "Split")

	require.True(t, m.HasSignature)
	assert.Equal(t, "Split(s, sep string) []string", m.Signature)
	assert.Contains(t, m.Doc, "Split slices s")
}

func TestExtractor_SignatureFailureIsolated(t *testing.T) {
	t.Parallel()

	var m Metadata
	assert.NotPanics(t, func() {
		m = newTestExtractor(t).Extract(flaky{}, "flaky")
	})

	assert.False(t, m.HasSignature)
	assert.Empty(t, m.Signature)
	assert.Equal(t, "Flaky does things.\n\nReally.", m.Doc)
	assert.Equal(t, m.Doc, m.Help)
	assert.Contains(t, m.Failures, FieldSignature)
	assert.NotEmpty(t, m.Preview)
}

func TestExtractor_SignatureError(t *testing.T) {
	t.Parallel()

	m := newTestExtractor(t).Extract(brokenSignature{}, "broken")

	assert.False(t, m.HasSignature)
	assert.ErrorContains(t, m.Failures[FieldSignature], "no signature")
}

func TestExtractor_ReflectionFallback(t *testing.T) {
	t.Parallel()

	e := NewExtractor(ExtractorConfig{})

	t.Run("Function", func(t *testing.T) {
		t.Parallel()
		m := e.Extract(fmt.Sprintf, "Sprintf")
		require.True(t, m.HasSignature)
		assert.Equal(t, "Sprintf(string, ...interface {}) string", m.Signature)
		assert.False(t, m.HasSource)
		assert.Empty(t, m.Failures)
	})

	t.Run("MultipleResults", func(t *testing.T) {
		t.Parallel()
		m := e.Extract(func(int) (string, error) { return "", nil }, "f")
		assert.Equal(t, "f(int) (string, error)", m.Signature)
	})

	t.Run("UnboundMethod", func(t *testing.T) {
		t.Parallel()
		rt := reflect.PointerTo(reflect.TypeFor[sample]())
		decl, ok := rt.MethodByName("Describe")
		require.True(t, ok)

		m := e.Extract(&Method{Recv: rt, Decl: decl}, "Describe")
		assert.Equal(t, "Describe(*inspect.sample) string", m.Signature)
	})
}

func TestExtractor_Classes(t *testing.T) {
	t.Parallel()

	m := newTestExtractor(t).Extract(TypeFor[Object](), "Object")

	assert.False(t, m.HasSignature)
	assert.Contains(t, m.Doc, "insertion-ordered")
	require.True(t, m.HasSource)
	assert.Contains(t, m.Source, "type Object struct")
}

func TestExtractor_InterfaceMethod(t *testing.T) {
	t.Parallel()

	rt := reflect.TypeFor[io.Reader]()
	m := newTestExtractor(t).Extract(&Method{Recv: rt, Decl: rt.Method(0)}, "Read")

	require.True(t, m.HasSignature)
	assert.Equal(t, "Read(p []byte) (n int, err error)", m.Signature)
}

func TestExtractor_ModuleDoc(t *testing.T) {
	t.Parallel()

	e := newTestExtractor(t)

	m := e.Extract(NewModule("strings", ""), "strings")
	assert.True(t, strings.HasPrefix(m.Doc, "Package strings implements"))

	m = e.Extract(NewModule("demo", "  Own doc.\n"), "demo")
	assert.Equal(t, "Own doc.", m.Doc)
}

func TestExtractor_HelpFallback(t *testing.T) {
	t.Parallel()

	t.Run("RenderedPage", func(t *testing.T) {
		t.Parallel()
		m := newTestExtractor(t).Extract([]int{1, 2}, "nums")

		assert.Empty(t, m.Doc)
		assert.NotContains(t, m.Help, "\b")
		assert.Contains(t, m.Help, "NAME\n    nums - []int")
		assert.Contains(t, m.Help, "MEMBERS\n    [0]\n    [1]")
		assert.Contains(t, m.Help, "VALUE\n    [1 2]")
	})

	t.Run("Helper", func(t *testing.T) {
		t.Parallel()
		m := newTestExtractor(t).Extract(manual{}, "manual")
		assert.Equal(t, "NAME\n    manual", m.Help)
	})

	t.Run("TypeDocForValues", func(t *testing.T) {
		t.Parallel()
		m := newTestExtractor(t).Extract(NewObject(), "obj")
		assert.Contains(t, m.Doc, "insertion-ordered")
		assert.Equal(t, m.Doc, m.Help)
	})
}

func TestExtractor_NilValue(t *testing.T) {
	t.Parallel()

	m := newTestExtractor(t).Extract(nil, "none")

	assert.Empty(t, m.Doc)
	assert.False(t, m.HasSignature)
	assert.False(t, m.HasSource)
	assert.Equal(t, "nil", m.Preview)
	assert.Contains(t, m.Help, "KIND\n    value (nil)")
}

func TestReflectSignature(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "f()", reflectSignature("f", reflect.TypeFor[func()]()))
	assert.Equal(t, "g(...int) bool", reflectSignature("g", reflect.TypeFor[func(...int) bool]()))
	assert.Equal(t, "", reflectSignature("x", reflect.TypeFor[int]()))
}
