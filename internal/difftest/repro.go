package difftest

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/natefinch/atomic"

	"github.com/calvinalkan/smapcheck/pkg/sortedmap"
	"github.com/calvinalkan/smapcheck/pkg/sortedmap/model"
)

// DefaultReproPackage is the package clause of generated tests.
const DefaultReproPackage = "regression_test"

// ReproMeta is descriptive information written into the header of a
// generated test.
type ReproMeta struct {
	RunID       string
	Seed        uint64
	OriginalLen int
}

// Emitter renders minimized histories as standalone Go tests.
type Emitter struct {
	Target Target

	// Package is the package clause of the generated file.
	// Default: DefaultReproPackage.
	Package string

	// Dir is where files are written when Console is false.
	Dir string

	// Console writes the test to Out instead of a file.
	Console bool
	Out     io.Writer
}

// ReproName derives a file-safe name from t, e.g.
// "2026-10-19T08_30_00_123Z".
func ReproName(t time.Time) string {
	stamp := t.UTC().Format("2006-01-02T15:04:05.000Z")

	return strings.NewReplacer(":", "_", ".", "_", "/", "_", "\\", "_").Replace(stamp)
}

// Emit renders h and writes it. With an empty name the name is derived from
// the current time. It returns the written path, or "" for console output.
func (e Emitter) Emit(h History, name string, meta ReproMeta) (string, error) {
	if name == "" {
		name = ReproName(time.Now())
	}

	src, err := e.Render(name, h, meta)
	if err != nil {
		return "", err
	}

	if e.Console {
		out := e.Out
		if out == nil {
			out = os.Stdout
		}

		_, err := out.Write(src)
		if err != nil {
			return "", fmt.Errorf("writing repro: %w", err)
		}

		return "", nil
	}

	err = os.MkdirAll(e.Dir, 0o755)
	if err != nil {
		return "", fmt.Errorf("creating repro dir: %w", err)
	}

	path := filepath.Join(e.Dir, strings.TrimSuffix(name, "_test.go")+"_test.go")

	err = atomic.WriteFile(path, bytes.NewReader(src))
	if err != nil {
		return "", fmt.Errorf("writing repro %s: %w", path, err)
	}

	return path, nil
}

// Render returns gofmt-formatted source for a test named after name.
//
// Every operation except the last becomes a plain call on a fresh subject.
// The last becomes an assertion against the result the reference model
// produces after replaying the whole history.
func (e Emitter) Render(name string, h History, meta ReproMeta) ([]byte, error) {
	last, ok := h.Last()
	if !ok {
		return nil, ErrEmptyHistory
	}

	ref := model.New(e.Target.Comparator)

	var expected Result
	for _, op := range h {
		expected = Apply(ref, op)
	}

	constructor := strings.TrimSpace(e.Target.Backend.Constructor)
	if constructor == "" {
		return nil, fmt.Errorf("%w: backend %q", ErrNoConstructor, e.Target.Backend.Name)
	}

	cmpExpr, cmpImport := comparatorExpr(e.Target.Comparator)

	pkg := e.Package
	if pkg == "" {
		pkg = DefaultReproPackage
	}

	data := reproData{
		Package:     pkg,
		TestName:    "Test_Regression_" + identifierSafe.ReplaceAllString(name, "_"),
		Imports:     reproImports(h, constructor, e.Target.Backend.Import, cmpExpr, cmpImport),
		Meta:        meta,
		Backend:     e.Target.Backend.Name,
		Length:      len(h),
		Constructor: constructor,
		Comparator:  cmpExpr,
		Fallback:    !isWellKnown(e.Target.Comparator),
		Calls:       make([]string, 0, len(h)-1),
		Assertion:   renderAssertion(last, expected),
	}

	for _, op := range h[:len(h)-1] {
		data.Calls = append(data.Calls, callExpr(op))
	}

	var buf bytes.Buffer

	err := reproTemplate.Execute(&buf, data)
	if err != nil {
		return nil, fmt.Errorf("rendering repro: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting repro: %w", err)
	}

	return src, nil
}

var identifierSafe = regexp.MustCompile(`[^A-Za-z0-9_]`)

type reproData struct {
	Package     string
	TestName    string
	Imports     []string
	Meta        ReproMeta
	Backend     string
	Length      int
	Constructor string
	Comparator  string
	Fallback    bool
	Calls       []string
	Assertion   string
}

var reproTemplate = template.Must(template.New("repro").Parse(`// Regression test generated by smapcheck.
//
// Run: {{.Meta.RunID}}
// Seed: {{.Meta.Seed}}
// Backend: {{.Backend}}
// Operations: {{.Length}}{{if .Meta.OriginalLen}} (minimized from {{.Meta.OriginalLen}}){{end}}

package {{.Package}}

import (
	"testing"
{{range .Imports}}
	"{{.}}"
{{- end}}
)

func {{.TestName}}(t *testing.T) {
	t.Parallel()
{{if .Fallback}}
	// The comparator is not a well-known one; it is referenced by the name
	// the runtime reported for it and may need editing to compile.
{{- end}}
	m := {{.Constructor}}({{.Comparator}})
{{range .Calls}}
	{{.}}
{{- end}}

{{.Assertion}}
}
`))

// reproImports returns the sorted import paths the generated test needs
// besides "testing". The sortedmap package is imported only when the
// constructor, the comparator or an anchored GetIndex refers to it.
func reproImports(h History, constructor, backendImport, cmpExpr, cmpImport string) []string {
	sortedmapPath := reflect.TypeFor[sortedmap.Backend]().PkgPath()

	usesSortedMap := strings.HasPrefix(constructor, "sortedmap.") ||
		strings.HasPrefix(cmpExpr, "sortedmap.") ||
		slices.ContainsFunc(h, func(op Operation) bool { return op.Cmd == CmdGetIndex && op.Start })

	var paths []string
	if usesSortedMap {
		paths = append(paths, sortedmapPath)
	}

	for _, p := range []string{backendImport, cmpImport} {
		if p != "" && !slices.Contains(paths, p) {
			paths = append(paths, p)
		}
	}

	slices.Sort(paths)

	return paths
}

func callExpr(op Operation) string {
	switch op.Cmd {
	case CmdGet:
		return fmt.Sprintf("m.Get(%d)", op.Key)
	case CmdSet:
		return fmt.Sprintf("m.Set(%d, %d)", op.Key, op.Value)
	case CmdRemove:
		return fmt.Sprintf("m.Remove(%d)", op.Key)
	case CmdSize:
		return "m.Size()"
	case CmdGetIndex:
		return fmt.Sprintf("m.GetIndex(%d, %v, %s)", op.Index, op.Reversed, startExpr(op))
	default:
		return "// unknown operation " + op.Cmd.String()
	}
}

func startExpr(op Operation) string {
	if !op.Start {
		return "nil"
	}

	return fmt.Sprintf("sortedmap.At(%d)", op.Key)
}

func renderAssertion(op Operation, want Result) string {
	call := callExpr(op)

	if want.Err != nil {
		return fmt.Sprintf("\t// The reference model failed on this call: %s\n\t%s", strings.ReplaceAll(want.Err.Error(), "\n", " "), call)
	}

	switch op.Cmd {
	case CmdGet:
		if !want.Found {
			return fmt.Sprintf("\tif value, found := %s; found {\n\t\tt.Fatalf(\"%s = (%%d, true), want not found\", value)\n\t}", call, op)
		}

		return fmt.Sprintf("\tvalue, found := %s\n\tif !found || value != %d {\n\t\tt.Fatalf(\"%s = (%%d, %%v), want (%d, true)\", value, found)\n\t}",
			call, want.Value, op, want.Value)

	case CmdGetIndex:
		if !want.Found {
			return fmt.Sprintf("\tif key, value, found := %s; found {\n\t\tt.Fatalf(\"%s = (%%d, %%d, true), want not found\", key, value)\n\t}", call, op)
		}

		return fmt.Sprintf("\tkey, value, found := %s\n\tif !found || key != %d || value != %d {\n\t\tt.Fatalf(\"%s = (%%d, %%d, %%v), want (%d, %d, true)\", key, value, found)\n\t}",
			call, want.Key, want.Value, op, want.Key, want.Value)

	case CmdSet, CmdRemove:
		if want.Changed {
			return fmt.Sprintf("\tif !%s {\n\t\tt.Fatal(\"%s = false, want true\")\n\t}", call, op)
		}

		return fmt.Sprintf("\tif %s {\n\t\tt.Fatal(\"%s = true, want false\")\n\t}", call, op)

	case CmdSize:
		return fmt.Sprintf("\tif got := %s; got != %d {\n\t\tt.Fatalf(\"Size() = %%d, want %d\", got)\n\t}", call, want.Size, want.Size)

	default:
		return "\t" + call
	}
}

// comparatorExpr returns the Go expression for c and, for comparators that
// are not well-known, the import path the expression needs.
func comparatorExpr(c sortedmap.Comparator[int]) (string, string) {
	if nc, ok := lookupComparator(c); ok {
		return nc.expr, ""
	}

	return qualifiedFuncExpr(sortedmap.ComparatorSource(c))
}

func isWellKnown(c sortedmap.Comparator[int]) bool {
	_, ok := lookupComparator(c)

	return ok
}

// qualifiedFuncExpr turns a runtime function name such as
// "example.com/pkg/cmps.Reverse" into ("cmps.Reverse", "example.com/pkg/cmps").
func qualifiedFuncExpr(name string) (string, string) {
	slash := strings.LastIndex(name, "/")

	dot := strings.Index(name[slash+1:], ".")
	if dot < 0 {
		return name, ""
	}

	dot += slash + 1

	return name[slash+1:], name[:dot]
}
