package export

import (
	"sort"

	"github.com/Faultbox/pmx-export/pkg/math"
	"github.com/Faultbox/pmx-export/pkg/scene"
)

// DefaultMaterialName names the material given to faces without one.
const DefaultMaterialName = "デフォルトマテリアル"

// DefaultMaterial returns a fresh copy of the material assigned to faces
// whose mesh has no usable material.
func DefaultMaterial() *scene.Material {
	return &scene.Material{
		Name:             DefaultMaterialName,
		Diffuse:          math.Vec3{X: 0.8, Y: 0.8, Z: 0.8},
		Specular:         math.Vec3{X: 0.5, Y: 0.5, Z: 0.5},
		SpecularHardness: 50,
		Ambient:          0.3,
	}
}

// Face is a triangle over the merged vertex buffer.
type Face struct {
	Vertices [3]int
	Material int
}

// Model is the merged geometry of every exported object.
type Model struct {
	Vertices  []Vertex
	Faces     []Face // grouped by material, stable within a material
	Materials []*scene.Material
	Textures  []string
	// MaterialTexture holds the texture table index of each material, or
	// -1 when it has no image texture.
	MaterialTexture []int
	// DefaultMaterial is set when the default material was appended.
	DefaultMaterial bool
}

// SurfaceCount returns the number of face indices using material i.
func (m *Model) SurfaceCount(i int) int {
	n := 0
	for _, f := range m.Faces {
		if f.Material == i {
			n += 3
		}
	}
	return n
}

// Aggregate merges parts into one model. Materials are collected from all
// parts first, in first-seen order by identity, so the default material
// (when any face needs it) always lands after every real material.
func Aggregate(parts []*Part, resolver PathResolver) *Model {
	m := &Model{}

	index := make(map[*scene.Material]int)
	for _, p := range parts {
		for _, mat := range p.Materials {
			if mat == nil {
				continue
			}
			if _, ok := index[mat]; !ok {
				index[mat] = len(m.Materials)
				m.Materials = append(m.Materials, mat)
			}
		}
	}

	sentinel := len(m.Materials)
	offset := 0
	for _, p := range parts {
		m.Vertices = append(m.Vertices, p.Vertices...)
		for _, f := range p.Faces {
			mi, ok := materialIndex(p.Materials, f.Material, index)
			if !ok {
				mi = sentinel
				m.DefaultMaterial = true
			}
			m.Faces = append(m.Faces, Face{
				Vertices: [3]int{f.Vertices[0] + offset, f.Vertices[1] + offset, f.Vertices[2] + offset},
				Material: mi,
			})
		}
		offset += len(p.Vertices)
	}

	if m.DefaultMaterial {
		m.Materials = append(m.Materials, DefaultMaterial())
	}

	// PMX assigns faces to materials by contiguous runs of SurfaceCount, so
	// faces are grouped by material. Stable keeps aggregation order per run.
	sort.SliceStable(m.Faces, func(i, j int) bool {
		return m.Faces[i].Material < m.Faces[j].Material
	})

	m.Textures, m.MaterialTexture = buildTextures(m.Materials, resolver)
	return m
}

// materialIndex maps a mesh slot to the global table. Empty slots, slots
// out of range and meshes without materials report false.
func materialIndex(slots []*scene.Material, slot int, index map[*scene.Material]int) (int, bool) {
	if slot < 0 || slot >= len(slots) || slots[slot] == nil {
		return 0, false
	}
	return index[slots[slot]], true
}

// buildTextures collects the unique resolved image paths of materials in
// first-seen order and each material's index into them.
func buildTextures(materials []*scene.Material, resolver PathResolver) ([]string, []int) {
	var textures []string
	refs := make([]int, len(materials))
	seen := make(map[string]int)

	for i, mat := range materials {
		refs[i] = -1
		if !mat.HasImageTexture() {
			continue
		}
		path := resolver.Resolve(mat.Texture.Path)
		idx, ok := seen[path]
		if !ok {
			idx = len(textures)
			seen[path] = idx
			textures = append(textures, path)
		}
		refs[i] = idx
	}
	return textures, refs
}
