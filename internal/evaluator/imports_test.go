package evaluator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeModules lays files out in a fresh directory and returns the path of
// the first one named.
func writeModules(t *testing.T, files map[string]string, main string) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	for name, src := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	}
	return filepath.Join(dir, main)
}

func runFile(t *testing.T, path string) (string, string, error) {
	t.Helper()
	e, out := newTestEvaluator(t)
	v, err := e.RunFile(path)
	if err != nil {
		return "", out.String(), err
	}
	s, err := Display(e.Heap(), v, false, false)
	require.NoError(t, err)
	return s, out.String(), nil
}

func TestImportNames(t *testing.T) {
	path := writeModules(t, map[string]string{
		"main.zr": "from \"./lib.zr\" import double, base as b\nfrom \"./lib.zr\" import base\ndouble(b) + base",
		"lib.zr":  "print(\"loaded\")\nexport let base = 4\nfunc double(n) { n * 2 }\nexport double",
	}, "main.zr")

	got, printed, err := runFile(t, path)
	require.NoError(t, err)
	require.Equal(t, "12", got)
	require.Equal(t, "loaded\n", printed, "a module runs once")
}

func TestImportStar(t *testing.T) {
	path := writeModules(t, map[string]string{
		"main.zr": "import \"./lib\" as lib\nlib.greet(lib.name)",
		"lib.zr":  "export let name = \"zephyr\"\nexport let greet = func (n) { \"hi \" + n }\nlet hidden = 1",
	}, "main.zr")

	got, _, err := runFile(t, path)
	require.NoError(t, err)
	require.Equal(t, "hi zephyr", got)
}

func TestImportCycle(t *testing.T) {
	path := writeModules(t, map[string]string{
		"a.zr": "export let x = 2\nfrom \"./b.zr\" import y, getx\ny + getx() - x",
		"b.zr": "from \"./a.zr\" import x\nexport let y = x + 1\nexport let getx = func () { x }",
	}, "a.zr")

	got, _, err := runFile(t, path)
	require.NoError(t, err)
	require.Equal(t, "3", got)
}

func TestImportErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  ErrorKind
	}{
		{
			name:  "not_exported",
			files: map[string]string{
				"main.zr": "from \"./lib.zr\" import secret",
				"lib.zr":  "let secret = 1",
			},
			want: NotExported,
		},
		{
			name:  "unresolved_in_cycle",
			files: map[string]string{
				"main.zr": "from \"./lib.zr\" import y\nexport let x = 1",
				"lib.zr":  "from \"./main.zr\" import x\nexport let y = x + 1",
			},
			want: Unresolved,
		},
		{
			name:  "unresolved_condition",
			files: map[string]string{
				"main.zr": "from \"./lib.zr\" import y\nexport let flag = false",
				"lib.zr":  "from \"./main.zr\" import flag\nif flag { print(\"set\") }\nexport let y = 1",
			},
			want: Unresolved,
		},
		{
			name:  "unresolved_negation",
			files: map[string]string{
				"main.zr": "from \"./lib.zr\" import y\nexport let flag = false",
				"lib.zr":  "from \"./main.zr\" import flag\nexport let y = !flag",
			},
			want: Unresolved,
		},
		{
			name:  "unresolved_call",
			files: map[string]string{
				"main.zr": "from \"./lib.zr\" import y\nexport let f = func () { 1 }",
				"lib.zr":  "from \"./main.zr\" import f\nexport let y = f()",
			},
			want: Unresolved,
		},
		{
			name:  "unresolved_listener",
			files: map[string]string{
				"main.zr": "from \"./lib.zr\" import y\nexport let f = func (i) { i }",
				"lib.zr":  "from \"./main.zr\" import f\nexport let y = sleep_emit(0)\non(y, \"tick\", f)",
			},
			want: Unresolved,
		},
		{
			name:  "never_exported_in_cycle",
			files: map[string]string{
				"main.zr": "from \"./lib.zr\" import y\nlet x = 1",
				"lib.zr":  "from \"./main.zr\" import x\nexport let y = 1",
			},
			want: NotExported,
		},
		{
			name:  "missing_file",
			files: map[string]string{"main.zr": "import \"./nowhere.zr\" as n"},
			want:  CannotResolve,
		},
		{
			name:  "syntax_error_in_module",
			files: map[string]string{
				"main.zr": "import \"./lib.zr\" as lib",
				"lib.zr":  "let = 1",
			},
			want: UnexpectedToken,
		},
		{
			name:  "imports_are_constant",
			files: map[string]string{
				"main.zr": "from \"./lib.zr\" import v\nv = 2",
				"lib.zr":  "export let v = 1",
			},
			want: ConstantAssignment,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runFile(t, writeModules(t, tt.files, "main.zr"))
			require.Error(t, err)
			var rerr *Error
			require.ErrorAs(t, err, &rerr)
			require.Equal(t, tt.want, rerr.Kind, rerr.Error())
		})
	}
}

func TestExportOutsideModuleTop(t *testing.T) {
	err := runErr(t, "if true { let z = 1; export z }")
	require.Equal(t, InvalidOperation, err.Kind)
}
