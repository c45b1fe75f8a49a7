package export

import (
	"github.com/Faultbox/pmx-export/pkg/math"
	"github.com/Faultbox/pmx-export/pkg/scene"
)

// Corner identifies a unique (source vertex, UV) pair.
type Corner struct {
	Vertex int
	UV     math.Vec2
}

// LocalFace is a triangle over a part's local vertex list. Material is the
// mesh slot index.
type LocalFace struct {
	Vertices [3]int
	Material int
}

// Deduplicate collapses the corners of mesh into unique (vertex, UV) pairs
// in first-seen order and rewrites every triangle against that list. A
// mesh without UVs uses (0,0) for every corner.
func Deduplicate(mesh *scene.Mesh) ([]Corner, []LocalFace) {
	index := make(map[Corner]int, len(mesh.Vertices))
	corners := make([]Corner, 0, len(mesh.Vertices))
	faces := make([]LocalFace, len(mesh.Triangles))

	for i, tri := range mesh.Triangles {
		faces[i].Material = tri.Material
		for j, v := range tri.Vertices {
			c := Corner{Vertex: v}
			if mesh.HasUV {
				c.UV = tri.UV[j]
			}
			idx, ok := index[c]
			if !ok {
				idx = len(corners)
				index[c] = idx
				corners = append(corners, c)
			}
			faces[i].Vertices[j] = idx
		}
	}
	return corners, faces
}
