package config

import (
	"github.com/Faultbox/pmx-export/internal/export"
)

// Options converts the export section into pipeline options. An empty
// texture root means the directory of the scene being exported.
func (c ExportConfig) Options(sceneDir string) (export.Options, error) {
	enc, err := export.ParseEncoding(c.Encoding)
	if err != nil {
		return export.Options{}, err
	}
	mode, err := export.ParsePathMode(c.PathMode)
	if err != nil {
		return export.Options{}, err
	}
	sel, err := export.ParseSelection(c.Objects)
	if err != nil {
		return export.Options{}, err
	}

	root := c.TextureRoot
	if root == "" {
		root = sceneDir
	}

	return export.Options{
		Encoding:       enc,
		PathMode:       mode,
		Root:           root,
		Selection:      sel,
		ApplyModifiers: c.ApplyModifiers,
	}, nil
}
