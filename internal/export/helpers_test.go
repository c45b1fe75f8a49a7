package export

import (
	stdmath "math"

	"github.com/Faultbox/pmx-export/pkg/math"
	"github.com/Faultbox/pmx-export/pkg/scene"
)

const epsilon = 1e-5

func near(a, b float32) bool {
	return stdmath.Abs(float64(a-b)) < epsilon
}

func nearVec3(a, b math.Vec3) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z)
}

// triangleObject returns a one-triangle mesh object in the XY plane.
func triangleObject(name string, world math.Mat4, mats ...*scene.Material) *scene.StaticObject {
	return &scene.StaticObject{
		ObjectName: name,
		ObjectKind: scene.KindMesh,
		World:      world,
		Vertices: []scene.Vertex{
			{Position: math.Vec3{X: 0, Y: 0, Z: 0}, Normal: math.Vec3{Z: 1}},
			{Position: math.Vec3{X: 1, Y: 0, Z: 0}, Normal: math.Vec3{Z: 1}},
			{Position: math.Vec3{X: 0, Y: 1, Z: 0}, Normal: math.Vec3{Z: 1}},
		},
		Polygons:  []scene.Polygon{{Vertices: []int{0, 1, 2}}},
		Materials: mats,
	}
}

// quadObject returns a two-triangle quad whose four corners have distinct UVs.
func quadObject(name string, mats ...*scene.Material) *scene.StaticObject {
	return &scene.StaticObject{
		ObjectName: name,
		ObjectKind: scene.KindMesh,
		World:      math.Identity(),
		Vertices: []scene.Vertex{
			{Position: math.Vec3{X: 0, Y: 0}, Normal: math.Vec3{Z: 1}},
			{Position: math.Vec3{X: 1, Y: 0}, Normal: math.Vec3{Z: 1}},
			{Position: math.Vec3{X: 1, Y: 1}, Normal: math.Vec3{Z: 1}},
			{Position: math.Vec3{X: 0, Y: 1}, Normal: math.Vec3{Z: 1}},
		},
		Polygons: []scene.Polygon{{
			Vertices: []int{0, 1, 2, 3},
			UV:       []math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		}},
		HasUV:     true,
		Materials: mats,
	}
}

func mustTriangulate(obj scene.Object) *scene.Mesh {
	mesh, err := obj.Triangulate(true)
	if err != nil {
		panic(err)
	}
	return mesh
}

func texturedMaterial(name, path string) *scene.Material {
	return &scene.Material{
		Name:             name,
		Diffuse:          math.Vec3{X: 1, Y: 0.5, Z: 0.25},
		Specular:         math.Vec3{X: 0.1, Y: 0.2, Z: 0.3},
		SpecularHardness: 12,
		Ambient:          0.4,
		Texture:          &scene.TextureSlot{Type: scene.TextureImage, Path: path},
	}
}
