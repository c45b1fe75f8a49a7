package pmx

import "fmt"

// Counts holds the cardinality of every indexed table.
type Counts struct {
	Vertices  int
	Textures  int
	Materials int
	Bones     int
	Morphs    int
	Rigids    int
}

// IndexSizes holds the byte width (1, 2 or 4) used for every reference to
// each table. Header order is vertex, texture, material, bone, morph, rigid.
type IndexSizes struct {
	Vertex   uint8
	Texture  uint8
	Material uint8
	Bone     uint8
	Morph    uint8
	Rigid    uint8
}

// String returns the widths in header order.
func (s IndexSizes) String() string {
	return fmt.Sprintf("v%d/t%d/m%d/b%d/mo%d/r%d", s.Vertex, s.Texture, s.Material, s.Bone, s.Morph, s.Rigid)
}

// VertexIndexSize returns the width for vertex references. Vertex indices
// are unsigned, so a byte covers up to 255 vertices.
func VertexIndexSize(count int) uint8 {
	switch {
	case count < 256:
		return 1
	case count < 65536:
		return 2
	default:
		return 4
	}
}

// IndexSize returns the width for signed references (texture, material,
// bone, morph, rigid body) where -1 means "none".
func IndexSize(count int) uint8 {
	switch {
	case count < 128:
		return 1
	case count < 32768:
		return 2
	default:
		return 4
	}
}

// SelectIndexSizes picks the smallest width covering each table.
func SelectIndexSizes(c Counts) IndexSizes {
	return IndexSizes{
		Vertex:   VertexIndexSize(c.Vertices),
		Texture:  IndexSize(c.Textures),
		Material: IndexSize(c.Materials),
		Bone:     IndexSize(c.Bones),
		Morph:    IndexSize(c.Morphs),
		Rigid:    IndexSize(c.Rigids),
	}
}

func validIndexSize(size uint8) bool {
	return size == 1 || size == 2 || size == 4
}

// fitsSigned reports whether v is representable as a signed index of size bytes.
func fitsSigned(size uint8, v int) bool {
	switch size {
	case 1:
		return v >= -128 && v <= 127
	case 2:
		return v >= -32768 && v <= 32767
	case 4:
		return v >= -1<<31 && v <= 1<<31-1
	}
	return false
}

// fitsUnsigned reports whether v is representable as a vertex index of size bytes.
func fitsUnsigned(size uint8, v int) bool {
	switch size {
	case 1:
		return v >= 0 && v <= 0xFF
	case 2:
		return v >= 0 && v <= 0xFFFF
	case 4:
		return v >= 0 && v <= 1<<31-1
	}
	return false
}
