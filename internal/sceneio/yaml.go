package sceneio

import (
	stdmath "math"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/pmx-export/pkg/math"
	"github.com/Faultbox/pmx-export/pkg/scene"
)

// yamlScene is the on-disk layout of a YAML scene. Materials are declared
// once at the top level and referenced by name, so objects listing the same
// name share one material.
type yamlScene struct {
	Materials map[string]yamlMaterial `yaml:"materials"`
	Objects   []yamlObject            `yaml:"objects"`
}

type yamlMaterial struct {
	Diffuse     *[3]float32 `yaml:"diffuse"`
	Specular    *[3]float32 `yaml:"specular"`
	Hardness    *float32    `yaml:"hardness"`
	Ambient     *float32    `yaml:"ambient"`
	Texture     string      `yaml:"texture"`
	TextureType string      `yaml:"texture_type"` // image (default) | procedural
}

type yamlTransform struct {
	// Matrix is written row by row.
	Matrix      *[16]float32 `yaml:"matrix"`
	Translation [3]float32   `yaml:"translation"`
	Rotation    [3]float32   `yaml:"rotation"` // XYZ Euler, degrees
	Scale       *[3]float32  `yaml:"scale"`
}

type yamlModifier struct {
	Type  string     `yaml:"type"` // translate | scale
	Value [3]float32 `yaml:"value"`
}

type yamlObject struct {
	Name          string         `yaml:"name"`
	Type          string         `yaml:"type"`
	Visible       *bool          `yaml:"visible"`
	Selected      bool           `yaml:"selected"`
	Transform     yamlTransform  `yaml:"transform"`
	Vertices      [][3]float32   `yaml:"vertices"`
	Normals       [][3]float32   `yaml:"normals"`
	Faces         [][]int        `yaml:"faces"`
	UVs           [][][2]float32 `yaml:"uvs"` // per face, per corner
	FaceMaterials []int          `yaml:"face_materials"`
	Materials     []string       `yaml:"materials"`
	Modifiers     []yamlModifier `yaml:"modifiers"`
}

// LoadYAML reads a YAML scene file.
func LoadYAML(path string) ([]scene.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading scene %s", path)
	}
	objs, err := ParseYAML(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing scene %s", path)
	}
	return objs, nil
}

// ParseYAML decodes a YAML scene.
func ParseYAML(data []byte) ([]scene.Object, error) {
	var doc yamlScene
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decoding yaml")
	}

	materials := make(map[string]*scene.Material, len(doc.Materials))
	for name, m := range doc.Materials {
		mat, err := m.build(name)
		if err != nil {
			return nil, err
		}
		materials[name] = mat
	}

	objs := make([]scene.Object, 0, len(doc.Objects))
	for i := range doc.Objects {
		obj, err := doc.Objects[i].build(materials)
		if err != nil {
			return nil, errors.Wrapf(err, "object %d (%s)", i, doc.Objects[i].Name)
		}
		objs = append(objs, obj)
	}
	return objs, nil
}

func (m yamlMaterial) build(name string) (*scene.Material, error) {
	def := scene.Material{
		Name:             name,
		Diffuse:          math.Vec3{X: 0.8, Y: 0.8, Z: 0.8},
		Specular:         math.Vec3{X: 0.5, Y: 0.5, Z: 0.5},
		SpecularHardness: 50,
		Ambient:          0.3,
	}
	if m.Diffuse != nil {
		def.Diffuse = math.Vec3From(*m.Diffuse)
	}
	if m.Specular != nil {
		def.Specular = math.Vec3From(*m.Specular)
	}
	if m.Hardness != nil {
		def.SpecularHardness = *m.Hardness
	}
	if m.Ambient != nil {
		def.Ambient = *m.Ambient
	}
	if m.Texture != "" {
		slot := &scene.TextureSlot{Path: m.Texture}
		switch m.TextureType {
		case "", "image":
			slot.Type = scene.TextureImage
		case "procedural":
			slot.Type = scene.TextureProcedural
		default:
			return nil, errors.Errorf("material %s: unknown texture type %q", name, m.TextureType)
		}
		def.Texture = slot
	}
	return &def, nil
}

func (t yamlTransform) matrix() math.Mat4 {
	if t.Matrix != nil {
		m := *t.Matrix
		return math.FromRows(
			math.Vec4{m[0], m[1], m[2], m[3]},
			math.Vec4{m[4], m[5], m[6], m[7]},
			math.Vec4{m[8], m[9], m[10], m[11]},
			math.Vec4{m[12], m[13], m[14], m[15]},
		)
	}

	scale := math.Vec3{X: 1, Y: 1, Z: 1}
	if t.Scale != nil {
		scale = math.Vec3From(*t.Scale)
	}
	rot := math.RotateEulerXYZ(radians(t.Rotation[0]), radians(t.Rotation[1]), radians(t.Rotation[2]))
	return math.Compose(math.Vec3From(t.Translation), rot, scale)
}

func radians(deg float32) float32 {
	return deg * stdmath.Pi / 180
}

func (o *yamlObject) build(materials map[string]*scene.Material) (*scene.StaticObject, error) {
	obj := &scene.StaticObject{
		ObjectName: o.Name,
		ObjectKind: scene.ParseKind(o.Type),
		World:      o.Transform.matrix(),
		Hidden:     o.Visible != nil && !*o.Visible,
		IsSelected: o.Selected,
		HasUV:      len(o.UVs) > 0,
	}

	for _, name := range o.Materials {
		mat, ok := materials[name]
		if !ok {
			return nil, errors.Errorf("unknown material %q", name)
		}
		obj.Materials = append(obj.Materials, mat)
	}

	if obj.HasUV && len(o.UVs) != len(o.Faces) {
		return nil, errors.Errorf("%d uv faces for %d faces", len(o.UVs), len(o.Faces))
	}
	if len(o.FaceMaterials) > 0 && len(o.FaceMaterials) != len(o.Faces) {
		return nil, errors.Errorf("%d face materials for %d faces", len(o.FaceMaterials), len(o.Faces))
	}
	if len(o.Normals) > 0 && len(o.Normals) != len(o.Vertices) {
		return nil, errors.Errorf("%d normals for %d vertices", len(o.Normals), len(o.Vertices))
	}

	obj.Vertices = make([]scene.Vertex, len(o.Vertices))
	for i, p := range o.Vertices {
		obj.Vertices[i].Position = math.Vec3From(p)
		if len(o.Normals) > 0 {
			obj.Vertices[i].Normal = math.Vec3From(o.Normals[i]).Normalize()
		}
	}

	for i, f := range o.Faces {
		for _, v := range f {
			if v < 0 || v >= len(o.Vertices) {
				return nil, errors.Wrapf(scene.ErrBadIndex, "face %d vertex %d", i, v)
			}
		}
		poly := scene.Polygon{Vertices: f}
		if obj.HasUV {
			poly.UV = make([]math.Vec2, len(o.UVs[i]))
			for j, uv := range o.UVs[i] {
				poly.UV[j] = math.Vec2{X: uv[0], Y: uv[1]}
			}
		}
		if len(o.FaceMaterials) > 0 {
			poly.Material = o.FaceMaterials[i]
		}
		obj.Polygons = append(obj.Polygons, poly)
	}

	if len(o.Normals) == 0 {
		smoothNormals(obj.Vertices, o.Faces)
	}

	if len(o.Modifiers) > 0 {
		mods, err := buildModifiers(o.Modifiers)
		if err != nil {
			return nil, err
		}
		obj.Modifier = mods
	}
	return obj, nil
}

// buildModifiers chains the modifier stack into one function applied to
// object-space vertices in declaration order.
func buildModifiers(list []yamlModifier) (func([]scene.Vertex) []scene.Vertex, error) {
	steps := make([]func(*scene.Vertex), 0, len(list))
	for _, m := range list {
		v := math.Vec3From(m.Value)
		switch m.Type {
		case "translate":
			steps = append(steps, func(vx *scene.Vertex) {
				vx.Position = vx.Position.Add(v)
			})
		case "scale":
			steps = append(steps, func(vx *scene.Vertex) {
				vx.Position = math.Vec3{X: vx.Position.X * v.X, Y: vx.Position.Y * v.Y, Z: vx.Position.Z * v.Z}
			})
		default:
			return nil, errors.Errorf("unknown modifier %q", m.Type)
		}
	}

	return func(vs []scene.Vertex) []scene.Vertex {
		for i := range vs {
			for _, step := range steps {
				step(&vs[i])
			}
		}
		return vs
	}, nil
}
