// Package scene defines the read-only view of a host scene graph that the
// PMX exporter consumes. Hosts provide Object implementations; the exporter
// never depends on their concrete types.
package scene

import (
	"errors"
	"fmt"

	"github.com/Faultbox/pmx-export/pkg/math"
)

// Geometry errors reported by Triangulate.
var (
	ErrNoGeometry = errors.New("object has no geometry")
	ErrBadIndex   = errors.New("mesh index out of range")
)

// Kind tags the type of a scene object. Only KindMesh objects are exported.
type Kind int

const (
	KindMesh Kind = iota
	KindEmpty
	KindCamera
	KindLight
	KindArmature
	KindOther
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindMesh:
		return "Mesh"
	case KindEmpty:
		return "Empty"
	case KindCamera:
		return "Camera"
	case KindLight:
		return "Light"
	case KindArmature:
		return "Armature"
	case KindOther:
		return "Other"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// ParseKind converts a lowercase kind name ("mesh", "empty", ...) to a Kind.
// Unrecognised names map to KindOther.
func ParseKind(name string) Kind {
	switch name {
	case "mesh", "":
		return KindMesh
	case "empty":
		return KindEmpty
	case "camera":
		return KindCamera
	case "light":
		return KindLight
	case "armature":
		return KindArmature
	default:
		return KindOther
	}
}

// Object is one entry of the host scene.
type Object interface {
	Name() string
	Kind() Kind
	// WorldMatrix is the object-to-world transform.
	WorldMatrix() math.Mat4
	Visible() bool
	Selected() bool
	// Triangulate returns a triangulated copy of the object's geometry,
	// optionally with modifiers applied. The caller must Release it.
	Triangulate(applyModifiers bool) (*Mesh, error)
}

// TextureType distinguishes image textures from generated ones.
type TextureType int

const (
	TextureImage TextureType = iota
	TextureProcedural
)

// TextureSlot is a material's primary texture slot.
type TextureSlot struct {
	Type TextureType
	// Path is the image file path as the host stores it; it may be relative
	// to the scene root and may carry the host's "//" relative marker.
	Path string
}

// Material is a host material. Materials are compared by pointer identity:
// the same *Material shared by two meshes is one material in the output.
type Material struct {
	Name             string
	Diffuse          math.Vec3
	Specular         math.Vec3
	SpecularHardness float32
	Ambient          float32
	Texture          *TextureSlot // nil when the slot is empty
}

// HasImageTexture reports whether the primary slot holds an image with a path.
func (m *Material) HasImageTexture() bool {
	return m != nil && m.Texture != nil && m.Texture.Type == TextureImage && m.Texture.Path != ""
}

// Vertex is a mesh vertex in object space.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
}

// Triangle references three mesh vertices. UV holds the per-corner texture
// coordinates and is ignored when the mesh has no UV layer.
type Triangle struct {
	Vertices [3]int
	UV       [3]math.Vec2
	Material int // slot index into Mesh.Materials
}

// Mesh is a triangulated, evaluated copy of an object's geometry.
type Mesh struct {
	Vertices  []Vertex
	Triangles []Triangle
	HasUV     bool
	Materials []*Material

	release func()
}

// NewMesh returns a mesh that runs release once when Release is called.
func NewMesh(release func()) *Mesh {
	return &Mesh{release: release}
}

// Release frees host resources held by the mesh. It is safe to call more
// than once and on a nil mesh.
func (m *Mesh) Release() {
	if m == nil || m.release == nil {
		return
	}
	m.release()
	m.release = nil
}

// Validate checks that every triangle references existing vertices.
func (m *Mesh) Validate() error {
	for i, tri := range m.Triangles {
		for _, v := range tri.Vertices {
			if v < 0 || v >= len(m.Vertices) {
				return fmt.Errorf("triangle %d vertex %d: %w", i, v, ErrBadIndex)
			}
		}
	}
	return nil
}
