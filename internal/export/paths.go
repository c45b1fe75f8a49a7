package export

import (
	"path/filepath"
	"strings"
)

// hostRelative is the marker hosts put in front of scene-relative paths.
const hostRelative = "//"

// PathResolver converts host texture paths to the form written to the
// texture table. Every lookup of a texture path goes through the same
// resolver so table entries and material references always agree.
type PathResolver struct {
	mode PathMode
	root string
}

// NewPathResolver returns a resolver for the given mode. Relative host
// paths and relative output paths are both anchored at root.
func NewPathResolver(mode PathMode, root string) PathResolver {
	if root == "" {
		root = "."
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return PathResolver{mode: mode, root: filepath.Clean(root)}
}

// Root returns the absolute anchor directory.
func (r PathResolver) Root() string {
	return r.root
}

// Resolve returns path in the resolver's output form.
func (r PathResolver) Resolve(path string) string {
	abs := r.absolute(path)
	if r.mode == PathAbsolute {
		return abs
	}

	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return abs
	}
	return rel
}

func (r PathResolver) absolute(path string) string {
	p := strings.TrimPrefix(path, hostRelative)
	p = filepath.FromSlash(p)
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.root, p)
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
