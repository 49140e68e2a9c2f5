package evaluator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	path := writeModules(t, map[string]string{
		"main.zr":  "[file_exists(\"data.txt\"), file_exists(\"./main.zr\"), file_exists(\"missing.txt\"), file_exists(__dirname)]",
		"data.txt": "payload",
	}, "main.zr")

	got, _, err := runFile(t, path)
	require.NoError(t, err)
	require.Equal(t, "[true, true, false, true]", got)
}

func TestFileExistsAbsolutePath(t *testing.T) {
	target := filepath.Join(t.TempDir(), "abs.txt")
	require.NoError(t, os.WriteFile(target, nil, 0o644))

	src := "file_exists(\"" + filepath.ToSlash(target) + "\")"
	require.Equal(t, "true", run(t, src))
	require.NoError(t, os.Remove(target))
	require.Equal(t, "false", run(t, src))
}

func TestFilenameAndDirname(t *testing.T) {
	path := writeModules(t, map[string]string{
		"main.zr": "from \"./lib.zr\" import where\nprint(filename())\nprint(dirname())\nprint(where())",
		"lib.zr":  "export let where = func () { filename() }",
	}, "main.zr")

	_, printed, err := runFile(t, path)
	require.NoError(t, err)
	dir := filepath.Dir(path)
	require.Equal(t, path+"\n"+dir+"\n"+filepath.Join(dir, "lib.zr")+"\n", printed)
}

func TestFilenameOutsideFile(t *testing.T) {
	require.Equal(t, "null", run(t, "filename()"))
	require.Equal(t, ".", run(t, "dirname()"))
}

func TestFileNativesRejectBadArguments(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"file_exists_no_args", "file_exists()"},
		{"file_exists_number", "file_exists(1)"},
		{"filename_with_args", "filename(1)"},
		{"dirname_with_args", "dirname(\"x\")"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, TypeError, runErr(t, tt.src).Kind)
		})
	}
}
