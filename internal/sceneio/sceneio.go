// Package sceneio loads host scenes from disk into scene.Object values.
//
// Two formats are supported: a YAML scene description and glTF 2.0
// (.gltf or .glb).
package sceneio

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/Faultbox/pmx-export/pkg/scene"
)

// ErrUnsupportedFormat is returned for files that are neither YAML nor glTF.
var ErrUnsupportedFormat = errors.New("unsupported scene format")

// Load reads the scene at path, choosing the loader by file extension.
func Load(path string) ([]scene.Object, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	case ".gltf", ".glb":
		return LoadGLTF(path)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%s", path)
	}
}
