// Package modules turns import specifiers into canonical source paths and
// parses the files behind them.
package modules

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/funvibe/zephyr/internal/config"
)

// ErrCannotResolve is returned, wrapped, when an import specifier names no
// readable source file.
var ErrCannotResolve = errors.New("cannot resolve")

// PackagesDirName is searched for upwards from the importing file when no
// package root is configured.
const PackagesDirName = "zephyr_packages"

// Resolver maps import specifiers to canonical absolute paths.
//
// Specifier rules:
//
//	/abs/path.zr   absolute
//	./rel.zr       relative to the importing file's directory
//	pkg:name       the entry point of package "name"
//	pkg:name/file  a file inside package "name"
//
// A path without a recognized extension is tried with each source
// extension, then as a package directory.
type Resolver struct {
	// PackageRoot overrides the zephyr_packages lookup when set.
	PackageRoot string
}

func NewResolver(packageRoot string) *Resolver {
	return &Resolver{PackageRoot: packageRoot}
}

// Resolve returns the canonical path for spec imported from fromFile.
// An empty fromFile resolves relative to the working directory.
func (r *Resolver) Resolve(fromFile, spec string) (string, error) {
	if spec == "" {
		return "", errors.Wrap(ErrCannotResolve, "empty import path")
	}
	baseDir := "."
	if fromFile != "" {
		baseDir = GetModuleDir(fromFile)
	}

	var candidate string
	switch {
	case strings.HasPrefix(spec, config.PackagePrefix):
		return r.resolvePackage(baseDir, strings.TrimPrefix(spec, config.PackagePrefix))
	case filepath.IsAbs(spec):
		candidate = spec
	default:
		candidate = filepath.Join(baseDir, spec)
	}
	return canonical(candidate, spec)
}

func (r *Resolver) resolvePackage(baseDir, name string) (string, error) {
	if name == "" {
		return "", errors.Wrap(ErrCannotResolve, "empty package name")
	}
	root, err := r.packageRoot(baseDir)
	if err != nil {
		return "", err
	}
	target := filepath.Join(root, filepath.FromSlash(name))
	if strings.Contains(name, "/") {
		return canonical(target, config.PackagePrefix+name)
	}
	manifest, err := LoadManifest(target)
	if err != nil {
		return "", err
	}
	return canonical(filepath.Join(target, manifest.EntryPoint), config.PackagePrefix+name)
}

func (r *Resolver) packageRoot(baseDir string) (string, error) {
	if r.PackageRoot != "" {
		return r.PackageRoot, nil
	}
	dir, err := filepath.Abs(baseDir)
	if err != nil {
		return "", errors.Wrap(err, "resolving directory")
	}
	for {
		candidate := filepath.Join(dir, PackagesDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.Wrapf(ErrCannotResolve, "no %s directory above %s", PackagesDirName, baseDir)
		}
		dir = parent
	}
}

// canonical finds the source file behind path and returns its absolute,
// symlink-free form.
func canonical(path, spec string) (string, error) {
	for _, p := range candidates(path) {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", errors.Wrapf(ErrCannotResolve, "%s: %v", spec, err)
		}
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}
		return abs, nil
	}
	return "", errors.Wrapf(ErrCannotResolve, "%s", spec)
}

func candidates(path string) []string {
	if config.HasSourceExt(path) {
		return []string{path}
	}
	out := []string{path}
	for _, ext := range config.SourceFileExtensions {
		out = append(out, path+ext)
	}
	// A package directory: mylib/mylib.zr, then mylib/main.zr
	base := filepath.Base(path)
	for _, ext := range config.SourceFileExtensions {
		out = append(out, filepath.Join(path, base+ext), filepath.Join(path, "main"+ext))
	}
	return out
}

// ExtractModuleName derives a module name from a file path.
// It takes the base filename and removes any recognized source extension.
func ExtractModuleName(path string) string {
	return config.TrimSourceExt(filepath.Base(path))
}

// GetModuleDir returns the directory context for a module path.
// If the path points to a source file, returns the file's directory.
// If the path points to a directory (no extension), returns the path itself.
func GetModuleDir(path string) string {
	if config.HasSourceExt(path) {
		return filepath.Dir(path)
	}
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return filepath.Dir(path)
	}
	return path
}
