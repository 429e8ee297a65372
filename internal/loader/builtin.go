package loader

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/Benny93/objex-go/internal/inspect"
)

// BuiltinName is the path of the builtin root module.
const BuiltinName = "go"

// Builtin returns the root explored when no file is given: a module per
// curated standard-library package. Package docs are read from GOROOT on
// demand, so the modules carry no doc text of their own.
func Builtin() *inspect.Module {
	root := inspect.NewModule(BuiltinName, "Curated packages of the Go standard library.")
	for _, m := range builtinModules() {
		root.Add(filepath.Base(m.Path()), m)
	}
	return root
}

// Packages returns the import paths of the builtin modules.
func Packages() []string {
	mods := builtinModules()
	paths := make([]string, len(mods))
	for i, m := range mods {
		paths[i] = m.Path()
	}
	sort.Strings(paths)
	return paths
}

func builtinModules() []*inspect.Module {
	return []*inspect.Module{
		inspect.NewModule("bytes", "").
			Add("Buffer", inspect.TypeFor[bytes.Buffer]()).
			Add("Contains", bytes.Contains).
			Add("Equal", bytes.Equal).
			Add("MinRead", bytes.MinRead).
			Add("NewBuffer", bytes.NewBuffer).
			Add("Split", bytes.Split),
		inspect.NewModule("errors", "").
			Add("As", errors.As).
			Add("ErrUnsupported", errors.ErrUnsupported).
			Add("Is", errors.Is).
			Add("Join", errors.Join).
			Add("New", errors.New).
			Add("Unwrap", errors.Unwrap),
		inspect.NewModule("math", "").
			Add("Abs", math.Abs).
			Add("Ceil", math.Ceil).
			Add("E", math.E).
			Add("Floor", math.Floor).
			Add("Inf", math.Inf).
			Add("Max", math.Max).
			Add("MaxInt64", int64(math.MaxInt64)).
			Add("Min", math.Min).
			Add("Pi", math.Pi).
			Add("Pow", math.Pow).
			Add("Sqrt", math.Sqrt),
		inspect.NewModule("os", "").
			Add("Args", os.Args).
			Add("ErrNotExist", os.ErrNotExist).
			Add("File", inspect.TypeFor[os.File]()).
			Add("FileInfo", inspect.TypeFor[os.FileInfo]()).
			Add("Getenv", os.Getenv).
			Add("Getwd", os.Getwd).
			Add("Hostname", os.Hostname).
			Add("ReadFile", os.ReadFile),
		inspect.NewModule("path/filepath", "").
			Add("Abs", filepath.Abs).
			Add("Base", filepath.Base).
			Add("Clean", filepath.Clean).
			Add("Dir", filepath.Dir).
			Add("Ext", filepath.Ext).
			Add("Join", filepath.Join).
			Add("Separator", string(filepath.Separator)).
			Add("WalkDir", filepath.WalkDir),
		inspect.NewModule("runtime", "").
			Add("GC", runtime.GC).
			Add("GOARCH", runtime.GOARCH).
			Add("GOOS", runtime.GOOS).
			Add("MemStats", inspect.TypeFor[runtime.MemStats]()).
			Add("NumCPU", runtime.NumCPU).
			Add("NumGoroutine", runtime.NumGoroutine).
			Add("Version", runtime.Version),
		inspect.NewModule("sort", "").
			Add("IntSlice", inspect.TypeFor[sort.IntSlice]()).
			Add("Interface", inspect.TypeFor[sort.Interface]()).
			Add("Ints", sort.Ints).
			Add("Search", sort.Search).
			Add("Strings", sort.Strings),
		inspect.NewModule("strconv", "").
			Add("Atoi", strconv.Atoi).
			Add("ErrRange", strconv.ErrRange).
			Add("ErrSyntax", strconv.ErrSyntax).
			Add("FormatInt", strconv.FormatInt).
			Add("IntSize", strconv.IntSize).
			Add("Itoa", strconv.Itoa).
			Add("ParseFloat", strconv.ParseFloat).
			Add("ParseInt", strconv.ParseInt).
			Add("Quote", strconv.Quote),
		inspect.NewModule("strings", "").
			Add("Builder", inspect.TypeFor[strings.Builder]()).
			Add("Contains", strings.Contains).
			Add("Fields", strings.Fields).
			Add("HasPrefix", strings.HasPrefix).
			Add("HasSuffix", strings.HasSuffix).
			Add("Index", strings.Index).
			Add("Join", strings.Join).
			Add("NewReader", strings.NewReader).
			Add("Reader", inspect.TypeFor[strings.Reader]()).
			Add("Repeat", strings.Repeat).
			Add("Replace", strings.Replace).
			Add("Split", strings.Split).
			Add("ToLower", strings.ToLower).
			Add("ToUpper", strings.ToUpper).
			Add("TrimSpace", strings.TrimSpace),
		inspect.NewModule("time", "").
			Add("Duration", inspect.TypeFor[time.Duration]()).
			Add("Now", time.Now).
			Add("Parse", time.Parse).
			Add("RFC3339", time.RFC3339).
			Add("Second", time.Second).
			Add("Since", time.Since).
			Add("Sleep", time.Sleep).
			Add("Time", inspect.TypeFor[time.Time]()),
		inspect.NewModule("unicode", "").
			Add("IsDigit", unicode.IsDigit).
			Add("IsLetter", unicode.IsLetter).
			Add("IsSpace", unicode.IsSpace).
			Add("MaxRune", unicode.MaxRune).
			Add("ToUpper", unicode.ToUpper).
			Add("Version", unicode.Version),
	}
}
