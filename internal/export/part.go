package export

import (
	"github.com/Faultbox/pmx-export/pkg/math"
	"github.com/Faultbox/pmx-export/pkg/scene"
)

// Vertex is an output-space vertex.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
}

// Part is the deduplicated, normalized geometry of one object.
type Part struct {
	Name      string
	Vertices  []Vertex
	Faces     []LocalFace
	Materials []*scene.Material
	Mirrored  bool // winding was flipped
}

// NewPart extracts a part from a triangulated mesh. The mesh is only read;
// the caller still owns and releases it.
func NewPart(name string, world math.Mat4, mesh *scene.Mesh) *Part {
	corners, faces := Deduplicate(mesh)
	n := NewNormalizer(world)

	p := &Part{
		Name:      name,
		Vertices:  make([]Vertex, len(corners)),
		Faces:     faces,
		Materials: mesh.Materials,
		Mirrored:  n.FlipsWinding(),
	}
	for i, c := range corners {
		src := mesh.Vertices[c.Vertex]
		p.Vertices[i] = Vertex{
			Position: n.Position(src.Position),
			Normal:   n.Normal(src.Normal),
			UV:       c.UV.FlipV(),
		}
	}
	for i := range p.Faces {
		p.Faces[i].Vertices = n.Winding(p.Faces[i].Vertices)
	}
	return p
}
