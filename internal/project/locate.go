// Package project resolves the canonical name and root directory of a
// project from the filesystem.
package project

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Marker files recognized as evidence of a project root, and the sources the
// project name is extracted from.
const (
	CruftManifestName = ".cruft.json"
	PyprojectName     = "pyproject.toml"
	gitDirName        = ".git"
)

// ErrNotFound is returned when no ancestor of the start path contains a
// project marker, or the start path itself does not exist.
var ErrNotFound = errors.New("project root not found")

// Descriptor identifies a located project. It is derived, never stored.
type Descriptor struct {
	Name string
	Root string
}

// Locate walks from start upward through its ancestors until it finds a
// directory containing one of the project markers. The walk stops at the
// first such directory: the project name is resolved there with fallbacks
// (cruft manifest, then pyproject, then the directory's own name) and never
// continues further up, even when name extraction fails.
func Locate(start string) (Descriptor, error) {
	origin, err := filepath.Abs(start)
	if err != nil {
		return Descriptor{}, err
	}

	if _, err := os.Stat(origin); err != nil {
		return Descriptor{}, ErrNotFound
	}

	for dir := origin; ; dir = filepath.Dir(dir) {
		if hasAnyMarker(dir) {
			return Descriptor{Name: resolveName(dir), Root: dir}, nil
		}
		if dir == filepath.Dir(dir) {
			// Filesystem root reached.
			return Descriptor{}, ErrNotFound
		}
	}
}

func hasAnyMarker(dir string) bool {
	for _, marker := range []string{CruftManifestName, PyprojectName, gitDirName} {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

// resolveName extracts the project name recorded at dir. Parse errors and
// missing keys fall through to the next source; the directory base name is
// the final fallback and always succeeds.
func resolveName(dir string) string {
	if name, ok := cruftProjectName(filepath.Join(dir, CruftManifestName)); ok {
		return name
	}
	if name, ok := pyprojectName(filepath.Join(dir, PyprojectName)); ok {
		return name
	}
	return filepath.Base(dir)
}

// cruftProjectName reads the cookiecutter context name recorded by the
// template engine: .context.cookiecutter.project_name.
func cruftProjectName(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	var manifest struct {
		Context struct {
			Cookiecutter struct {
				ProjectName string `json:"project_name"`
			} `json:"cookiecutter"`
		} `json:"context"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return "", false
	}

	name := manifest.Context.Cookiecutter.ProjectName
	return name, name != ""
}

// pyprojectName reads the declared package name: [tool.poetry].name.
func pyprojectName(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	var doc struct {
		Tool struct {
			Poetry struct {
				Name string `toml:"name"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return "", false
	}

	name := doc.Tool.Poetry.Name
	return name, name != ""
}
