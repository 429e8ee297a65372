package inspect

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	b := &strings.Builder{}

	tests := []struct {
		name     string
		value    any
		want     []string
		category Category
		typeName string
	}{
		{"Nil", nil, []string{TokenNil}, CategoryValue, "nil"},
		{"Int", 42, []string{TokenScalar}, CategoryValue, "int"},
		{"String", "s", []string{TokenScalar}, CategoryValue, "string"},
		{"Duration", time.Second, []string{TokenScalar}, CategoryValue, "Duration"},
		{"StdlibFunc", strings.Split, []string{TokenFunction, TokenBuiltin, TokenCallable}, CategoryCallable, "func"},
		{"LocalFunc", greet, []string{TokenFunction, TokenCallable}, CategoryCallable, "func"},
		{"MethodValue", b.WriteString, []string{TokenMethod, TokenBuiltin, TokenCallable}, CategoryCallable, "func"},
		{"Class", TypeFor[Object](), []string{TokenClass, TokenCallable}, CategoryClass, "type"},
		{"Interface", TypeFor[error](), []string{TokenClass, TokenCallable, TokenAbstract}, CategoryClass, "type"},
		{"StdlibModule", NewModule("strings", ""), []string{TokenModule, TokenBuiltin}, CategoryModule, "module"},
		{"Module", NewModule("example.com/x", ""), []string{TokenModule}, CategoryModule, "module"},
		{"Object", NewObject(), []string{TokenMap}, CategoryValue, "map"},
		{"Channel", make(chan int), []string{TokenGenerator, TokenChan}, CategoryValue, "chan"},
		{"SendChannel", make(chan<- int), []string{TokenChan}, CategoryValue, "chan"},
		{"Seq", func(yield func(int) bool) {}, []string{TokenFunction, TokenCallable, TokenGenerator}, CategoryCallable, "func"},
		{"Coroutine", func() <-chan int { return nil }, []string{TokenFunction, TokenCallable, TokenCoroutine}, CategoryCallable, "func"},
		{"Error", errors.New("x"), []string{TokenStruct, TokenPointer, TokenError}, CategoryValue, "error"},
		{"StructPointer", &struct{}{}, []string{TokenStruct, TokenPointer}, CategoryValue, "ptr"},
		{"NilMap", map[string]int(nil), []string{TokenMap, TokenNil}, CategoryValue, "map"},
		{"Slice", []int{1}, []string{TokenSlice}, CategoryValue, "slice"},
		{"Struct", sample{}, []string{TokenStruct}, CategoryValue, "sample"},
		{"Signed", flaky{}, []string{TokenCallable, TokenStruct}, CategoryCallable, "flaky"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := Classify(tt.value)

			assert.ElementsMatch(t, tt.want, f.Names())
			assert.Equal(t, tt.category, f.Category())
			assert.Equal(t, tt.typeName, TypeName(tt.value))
		})
	}
}

func TestFlags_Category(t *testing.T) {
	t.Parallel()

	assert.Equal(t, CategoryClass, Flags{Class: true, Callable: true, Module: true}.Category())
	assert.Equal(t, CategoryCallable, Flags{Callable: true, Module: true}.Category())
	assert.Equal(t, CategoryModule, Flags{Module: true}.Category())
	assert.Equal(t, CategoryValue, Flags{Scalar: true}.Category())
	assert.Equal(t, "class", CategoryClass.String())
}

func TestFlags_Has(t *testing.T) {
	t.Parallel()

	f := Flags{Class: true}
	assert.True(t, f.Has(TokenClass))
	assert.False(t, f.Has(TokenModule))
	assert.False(t, f.Has("unknown"))

	for _, tok := range Tokens() {
		assert.NotEmpty(t, tok)
	}
}

func TestIsStdlibPath(t *testing.T) {
	t.Parallel()

	assert.True(t, isStdlibPath("strings"))
	assert.True(t, isStdlibPath("path/filepath"))
	assert.False(t, isStdlibPath("github.com/x/y"))
	assert.False(t, isStdlibPath("main"))
	assert.False(t, isStdlibPath(""))
}

func TestFuncPackage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "path/filepath", funcPackage("path/filepath.Join"))
	assert.Equal(t, "github.com/a/b", funcPackage("github.com/a/b.(*T).M"))
	assert.Equal(t, "strings", funcPackage("strings.(*Builder).WriteString-fm"))
	assert.Equal(t, "", funcPackage("nodot"))
}

type selfPointer *selfPointer

func TestBaseType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, reflect.TypeFor[sample](), baseType(reflect.TypeFor[**sample]()))
	assert.Equal(t, reflect.Pointer, baseType(reflect.TypeFor[selfPointer]()).Kind())
}
