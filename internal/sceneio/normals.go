package sceneio

import (
	"github.com/Faultbox/pmx-export/pkg/math"
	"github.com/Faultbox/pmx-export/pkg/scene"
)

// smoothNormals sets each vertex normal to the area-weighted average of the
// faces using it. Vertices without faces keep a zero normal.
func smoothNormals(vertices []scene.Vertex, faces [][]int) {
	sums := make([]math.Vec3, len(vertices))
	for _, f := range faces {
		if len(f) < 3 {
			continue
		}
		p0 := vertices[f[0]].Position
		for i := 1; i+1 < len(f); i++ {
			e1 := vertices[f[i]].Position.Sub(p0)
			e2 := vertices[f[i+1]].Position.Sub(p0)
			n := e1.Cross(e2)
			sums[f[0]] = sums[f[0]].Add(n)
			sums[f[i]] = sums[f[i]].Add(n)
			sums[f[i+1]] = sums[f[i+1]].Add(n)
		}
	}
	for i := range vertices {
		vertices[i].Normal = sums[i].Normalize()
	}
}
