package evaluator

import (
	"os"
	"path/filepath"

	"github.com/funvibe/zephyr/internal/config"
)

// moduleDir is the directory of the module a native was called from, or
// "." outside any file.
func (c *NativeContext) moduleDir() string {
	if c.File == "" {
		return "."
	}
	return filepath.Dir(c.File)
}

// builtinFileExists reports whether path names an existing file or
// directory. Relative paths start at the calling module's directory.
func builtinFileExists(c *NativeContext) (Value, error) {
	if len(c.Args) != 1 {
		return nil, invalidArgs(config.FileExistsFuncName)
	}
	path, err := c.str(0, config.FileExistsFuncName)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.moduleDir(), path)
	}
	_, statErr := os.Stat(path)
	return NewBoolean(statErr == nil), nil
}

// builtinFilename returns the path of the calling module, or null when the
// code did not come from a file.
func builtinFilename(c *NativeContext) (Value, error) {
	if len(c.Args) != 0 {
		return nil, invalidArgs(config.FilenameFuncName)
	}
	if c.File == "" {
		return NewNull(), nil
	}
	return NewString(c.File), nil
}

func builtinDirname(c *NativeContext) (Value, error) {
	if len(c.Args) != 0 {
		return nil, invalidArgs(config.DirnameFuncName)
	}
	return NewString(c.moduleDir()), nil
}
