package modules

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/zephyr/internal/config"
)

// ManifestFileName describes an installed package.
const ManifestFileName = "package.yaml"

// Manifest is the package.yaml of a package under zephyr_packages.
type Manifest struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version,omitempty"`
	Author      string `yaml:"author,omitempty"`
	Description string `yaml:"description,omitempty"`

	// EntryPoint is the file imported by "pkg:name", relative to the
	// package directory. Defaults to main.zr.
	EntryPoint string `yaml:"entry_point,omitempty"`
}

// LoadManifest reads dir/package.yaml.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrCannotResolve, "cannot find %s in %s", ManifestFileName, dir)
		}
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	if m.Name == "" {
		m.Name = filepath.Base(dir)
	}
	if m.EntryPoint == "" {
		m.EntryPoint = "main" + config.SourceFileExt
	}
	return &m, nil
}
