// Package export turns a set of scene objects into a single PMX model.
//
// The pipeline runs per object (triangulate, deduplicate, normalize), then
// merges every part into one vertex buffer, face list and material table
// before handing the result to the pmx encoder.
package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/pmx-export/pkg/encoding"
)

// Option parsing errors.
var (
	ErrUnknownEncoding  = errors.New("unknown text encoding")
	ErrUnknownPathMode  = errors.New("unknown path mode")
	ErrUnknownSelection = errors.New("unknown object selection")
)

// PathMode controls how texture paths are written.
type PathMode int

const (
	PathAbsolute PathMode = iota
	PathRelative
)

// String returns the configuration name of the mode.
func (m PathMode) String() string {
	switch m {
	case PathAbsolute:
		return "absolute"
	case PathRelative:
		return "relative"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// ParsePathMode parses "absolute"/"abs" or "relative"/"rel".
func ParsePathMode(name string) (PathMode, error) {
	switch strings.ToLower(name) {
	case "absolute", "abs":
		return PathAbsolute, nil
	case "relative", "rel":
		return PathRelative, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPathMode, name)
}

// Selection chooses which scene objects are exported.
type Selection int

const (
	SelectAll Selection = iota
	SelectVisible
	SelectSelected
)

// String returns the configuration name of the selection.
func (s Selection) String() string {
	switch s {
	case SelectAll:
		return "all"
	case SelectVisible:
		return "visible"
	case SelectSelected:
		return "selection"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// ParseSelection parses "all", "visible" or "selection".
func ParseSelection(name string) (Selection, error) {
	switch strings.ToLower(name) {
	case "all":
		return SelectAll, nil
	case "visible":
		return SelectVisible, nil
	case "selection", "selected":
		return SelectSelected, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSelection, name)
}

// ParseEncoding parses a text encoding name, reporting ErrUnknownEncoding
// for anything other than UTF-8 or UTF-16LE.
func ParseEncoding(name string) (encoding.Text, error) {
	enc, err := encoding.ParseText(name)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// Options configures one export run. It is passed by value and never
// modified by the pipeline.
type Options struct {
	Encoding       encoding.Text
	PathMode       PathMode
	Root           string // base directory for relative texture paths
	Selection      Selection
	ApplyModifiers bool
}

// DefaultOptions returns UTF-16LE output with relative texture paths,
// exporting every object with modifiers applied.
func DefaultOptions() Options {
	return Options{
		Encoding:       encoding.UTF16LE,
		PathMode:       PathRelative,
		Root:           ".",
		Selection:      SelectAll,
		ApplyModifiers: true,
	}
}

// Validate checks that every enumerated option holds a known value.
func (o Options) Validate() error {
	if !o.Encoding.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownEncoding, o.Encoding)
	}
	if o.PathMode != PathAbsolute && o.PathMode != PathRelative {
		return fmt.Errorf("%w: %s", ErrUnknownPathMode, o.PathMode)
	}
	if o.Selection < SelectAll || o.Selection > SelectSelected {
		return fmt.Errorf("%w: %s", ErrUnknownSelection, o.Selection)
	}
	return nil
}
