package export

import (
	"github.com/Faultbox/pmx-export/pkg/encoding"
	"github.com/Faultbox/pmx-export/pkg/math"
	"github.com/Faultbox/pmx-export/pkg/pmx"
)

// Fixed skeleton and display frame names.
const (
	RootBoneName        = "センター"
	RootFrameName       = "Root"
	ExpressionFrameName = "Expression"
	ExpressionFrameEn   = "Exp"
)

// materialFlags draws self shadows, self-shadow maps and edges.
const materialFlags = pmx.MaterialSelfShadowMap | pmx.MaterialSelfShadow | pmx.MaterialEdge

// rootBoneFlags marks the single root bone as a usable control bone.
const rootBoneFlags = pmx.BoneTailIsIndex | pmx.BoneRotatable | pmx.BoneMovable | pmx.BoneVisible | pmx.BoneOperable

// ToPMX converts an aggregated model into a PMX document with a single root
// bone, every vertex bound to it, and the two standard display frames.
func ToPMX(m *Model, enc encoding.Text) *pmx.Model {
	out := &pmx.Model{
		Encoding: enc,
		Vertices: make([]pmx.Vertex, len(m.Vertices)),
		Faces:    make([]pmx.Face, len(m.Faces)),
		Textures: m.Textures,
	}

	for i, v := range m.Vertices {
		out.Vertices[i] = pmx.Vertex{
			Position:  v.Position,
			Normal:    v.Normal,
			UV:        v.UV,
			Bone:      0,
			EdgeScale: 1.0,
		}
	}

	for i, f := range m.Faces {
		out.Faces[i] = pmx.Face{Vertices: f.Vertices}
	}

	out.Materials = make([]pmx.Material, len(m.Materials))
	for i, mat := range m.Materials {
		out.Materials[i] = pmx.Material{
			Name:          mat.Name,
			Diffuse:       mat.Diffuse,
			Alpha:         1.0,
			Specular:      mat.Specular,
			SpecularPower: mat.SpecularHardness,
			Ambient:       math.Vec3{X: mat.Ambient, Y: mat.Ambient, Z: mat.Ambient},
			Flags:         materialFlags,
			EdgeColor:     [4]float32{0, 0, 0, 1},
			EdgeSize:      1.0,
			Texture:       m.MaterialTexture[i],
			SphereTexture: -1,
			SphereMode:    0,
			SharedToon:    true,
			Toon:          0,
			SurfaceCount:  m.SurfaceCount(i),
		}
	}

	out.Bones = []pmx.Bone{{
		Name:   RootBoneName,
		Parent: -1,
		Flags:  rootBoneFlags,
		Tail:   -1,
	}}

	out.DisplayFrames = []pmx.DisplayFrame{
		{
			Name:     RootFrameName,
			NameEn:   RootFrameName,
			Special:  true,
			Elements: []pmx.FrameElement{{Kind: pmx.FrameElementBone, Index: 0}},
		},
		{
			Name:    ExpressionFrameName,
			NameEn:  ExpressionFrameEn,
			Special: true,
		},
	}

	return out
}
