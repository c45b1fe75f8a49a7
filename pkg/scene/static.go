package scene

import (
	"fmt"

	"github.com/Faultbox/pmx-export/pkg/math"
)

// Polygon is an n-gon (n >= 3) in a StaticObject's geometry.
type Polygon struct {
	Vertices []int
	UV       []math.Vec2 // per corner; may be nil when the object has no UVs
	Material int
}

// StaticObject is an in-memory Object. Triangulate fan-triangulates its
// polygons into a fresh Mesh on every call.
type StaticObject struct {
	ObjectName string
	ObjectKind Kind
	World      math.Mat4
	Hidden     bool
	IsSelected bool

	Vertices  []Vertex
	Polygons  []Polygon
	HasUV     bool
	Materials []*Material

	// Modifier, when set and modifiers are applied, transforms the
	// object-space vertices before triangulation.
	Modifier func([]Vertex) []Vertex

	// OnRelease is invoked when a mesh produced by Triangulate is released.
	OnRelease func()
}

// Name implements Object.
func (o *StaticObject) Name() string { return o.ObjectName }

// Kind implements Object.
func (o *StaticObject) Kind() Kind { return o.ObjectKind }

// WorldMatrix implements Object.
func (o *StaticObject) WorldMatrix() math.Mat4 { return o.World }

// Visible implements Object.
func (o *StaticObject) Visible() bool { return !o.Hidden }

// Selected implements Object.
func (o *StaticObject) Selected() bool { return o.IsSelected }

// Triangulate implements Object.
func (o *StaticObject) Triangulate(applyModifiers bool) (*Mesh, error) {
	if o.ObjectKind != KindMesh || len(o.Vertices) == 0 {
		return nil, ErrNoGeometry
	}

	mesh := NewMesh(o.OnRelease)
	mesh.HasUV = o.HasUV
	mesh.Materials = o.Materials

	mesh.Vertices = make([]Vertex, len(o.Vertices))
	copy(mesh.Vertices, o.Vertices)
	if applyModifiers && o.Modifier != nil {
		mesh.Vertices = o.Modifier(mesh.Vertices)
	}

	for pi, poly := range o.Polygons {
		if len(poly.Vertices) < 3 {
			mesh.Release()
			return nil, fmt.Errorf("polygon %d has %d corners: %w", pi, len(poly.Vertices), ErrBadIndex)
		}
		if o.HasUV && len(poly.UV) != len(poly.Vertices) {
			mesh.Release()
			return nil, fmt.Errorf("polygon %d has %d UVs for %d corners: %w", pi, len(poly.UV), len(poly.Vertices), ErrBadIndex)
		}
		mesh.Triangles = append(mesh.Triangles, fan(poly, o.HasUV)...)
	}

	if err := mesh.Validate(); err != nil {
		mesh.Release()
		return nil, err
	}
	return mesh, nil
}

// fan splits a convex polygon into triangles sharing its first corner.
func fan(poly Polygon, hasUV bool) []Triangle {
	tris := make([]Triangle, 0, len(poly.Vertices)-2)
	for i := 1; i+1 < len(poly.Vertices); i++ {
		tri := Triangle{
			Vertices: [3]int{poly.Vertices[0], poly.Vertices[i], poly.Vertices[i+1]},
			Material: poly.Material,
		}
		if hasUV {
			tri.UV = [3]math.Vec2{poly.UV[0], poly.UV[i], poly.UV[i+1]}
		}
		tris = append(tris, tri)
	}
	return tris
}
