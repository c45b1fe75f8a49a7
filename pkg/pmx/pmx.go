// Package pmx encodes and decodes PMX 2.0 model files, the binary model
// format used by MikuMikuDance-style animation tools.
//
// The codec covers what a static-mesh exporter produces: BDEF1 vertices,
// triangle faces, textures, materials, simple bones, display frames and
// empty morph, rigid body and joint tables.
package pmx

import (
	"errors"
	"fmt"

	"github.com/Faultbox/pmx-export/pkg/encoding"
	"github.com/Faultbox/pmx-export/pkg/math"
)

// PMX format errors.
var (
	ErrInvalidMagic         = errors.New("invalid PMX magic: expected 'PMX '")
	ErrUnsupportedVersion   = errors.New("unsupported PMX version")
	ErrTruncated            = errors.New("truncated PMX data")
	ErrIndexOverflow        = errors.New("index does not fit its encoded width")
	ErrInvalidIndexSize     = errors.New("invalid index size")
	ErrUnsupportedSection   = errors.New("unsupported PMX section content")
	ErrUnsupportedBoneFlags = errors.New("unsupported bone flags")
	ErrSurfaceCount         = errors.New("material surface counts do not match face count")
	ErrUnsupportedEncoding  = errors.New("unsupported text encoding")
)

// Magic is the 4-byte file signature.
const Magic = "PMX "

// Version is the format version written to the header.
const Version float32 = 2.0

// headerInfoCount is the number of single-byte globals following the version.
const headerInfoCount = 8

// WeightDeform identifies how bones influence a vertex.
type WeightDeform uint8

const (
	DeformBDEF1 WeightDeform = 0
	DeformBDEF2 WeightDeform = 1
	DeformBDEF4 WeightDeform = 2
	DeformSDEF  WeightDeform = 3
	DeformQDEF  WeightDeform = 4
)

// String returns the conventional deform name.
func (d WeightDeform) String() string {
	switch d {
	case DeformBDEF1:
		return "BDEF1"
	case DeformBDEF2:
		return "BDEF2"
	case DeformBDEF4:
		return "BDEF4"
	case DeformSDEF:
		return "SDEF"
	case DeformQDEF:
		return "QDEF"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(d))
	}
}

// Material draw flags.
const (
	MaterialDoubleSided   uint8 = 0x01
	MaterialGroundShadow  uint8 = 0x02
	MaterialSelfShadowMap uint8 = 0x04
	MaterialSelfShadow    uint8 = 0x08
	MaterialEdge          uint8 = 0x10
)

// Bone flags supported by this codec.
const (
	BoneTailIsIndex uint16 = 0x0001
	BoneRotatable   uint16 = 0x0002
	BoneMovable     uint16 = 0x0004
	BoneVisible     uint16 = 0x0008
	BoneOperable    uint16 = 0x0010

	boneSupportedFlags = BoneTailIsIndex | BoneRotatable | BoneMovable | BoneVisible | BoneOperable
)

// Display frame element kinds.
const (
	FrameElementBone  uint8 = 0
	FrameElementMorph uint8 = 1
)

// Vertex is a BDEF1 vertex bound to a single bone with full weight.
type Vertex struct {
	Position  math.Vec3
	Normal    math.Vec3
	UV        math.Vec2
	Bone      int
	EdgeScale float32
}

// Face is one triangle of the index buffer.
type Face struct {
	Vertices [3]int
}

// Material describes one material and the run of faces it covers.
// Faces are consumed in order: material i covers the SurfaceCount
// indices following those of materials 0..i-1.
type Material struct {
	Name          string
	NameEn        string
	Diffuse       math.Vec3
	Alpha         float32
	Specular      math.Vec3
	SpecularPower float32
	Ambient       math.Vec3
	Flags         uint8
	EdgeColor     [4]float32
	EdgeSize      float32
	Texture       int // -1 when none
	SphereTexture int // -1 when none
	SphereMode    uint8
	SharedToon    bool
	Toon          int // shared toon number when SharedToon, texture index otherwise
	Memo          string
	SurfaceCount  int // number of face indices (3 per triangle)
}

// Bone is a bone without IK, inheritance, fixed axis or local axes.
type Bone struct {
	Name       string
	NameEn     string
	Position   math.Vec3
	Parent     int // -1 for a root bone
	Layer      int32
	Flags      uint16
	Tail       int       // bone index, used when Flags has BoneTailIsIndex
	TailOffset math.Vec3 // used otherwise
}

// FrameElement is one entry of a display frame.
type FrameElement struct {
	Kind  uint8 // FrameElementBone or FrameElementMorph
	Index int
}

// DisplayFrame groups bones and morphs for the consuming tool's UI.
type DisplayFrame struct {
	Name     string
	NameEn   string
	Special  bool
	Elements []FrameElement
}

// Model is an in-memory PMX document.
type Model struct {
	Encoding  encoding.Text
	Name      string
	NameEn    string
	Comment   string
	CommentEn string

	Vertices      []Vertex
	Faces         []Face
	Textures      []string
	Materials     []Material
	Bones         []Bone
	DisplayFrames []DisplayFrame
}

// Counts returns the table cardinalities that drive index widths.
// Morph and rigid-body tables are always empty in this codec.
func (m *Model) Counts() Counts {
	return Counts{
		Vertices:  len(m.Vertices),
		Textures:  len(m.Textures),
		Materials: len(m.Materials),
		Bones:     len(m.Bones),
	}
}

// IndexSizes returns the index widths for the model's current tables.
func (m *Model) IndexSizes() IndexSizes {
	return SelectIndexSizes(m.Counts())
}
