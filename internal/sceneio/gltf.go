package sceneio

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/pmx-export/pkg/math"
	"github.com/Faultbox/pmx-export/pkg/scene"
)

// yUpToZUp rotates glTF's Y-up space into the Z-up space the exporter
// expects from hosts.
var yUpToZUp = math.FromRows(
	math.Vec4{1, 0, 0, 0},
	math.Vec4{0, 0, -1, 0},
	math.Vec4{0, 1, 0, 0},
	math.Vec4{0, 0, 0, 1},
)

// LoadGLTF opens a .gltf or .glb file.
func LoadGLTF(path string) ([]scene.Object, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening gltf %s", path)
	}
	return FromGLTF(doc)
}

// FromGLTF returns one object per node of the document's default scene
// (or of every root node when no scene is marked default). Geometry is
// read from the accessors when the object is triangulated.
func FromGLTF(doc *gltf.Document) ([]scene.Object, error) {
	materials := make([]*scene.Material, len(doc.Materials))
	for i, m := range doc.Materials {
		materials[i] = gltfMaterial(doc, m, i)
	}

	roots, err := rootNodes(doc)
	if err != nil {
		return nil, err
	}

	var objs []scene.Object
	visited := make(map[uint32]bool)

	var walk func(idx uint32, parent math.Mat4) error
	walk = func(idx uint32, parent math.Mat4) error {
		if int(idx) >= len(doc.Nodes) {
			return errors.Errorf("node %d out of range", idx)
		}
		if visited[idx] {
			return errors.Errorf("node %d reached twice", idx)
		}
		visited[idx] = true

		node := doc.Nodes[idx]
		world := parent.Mul(localMatrix(node))
		objs = append(objs, &gltfObject{
			doc:       doc,
			node:      node,
			index:     idx,
			world:     world,
			materials: materials,
		})
		for _, child := range node.Children {
			if err := walk(child, world); err != nil {
				return err
			}
		}
		return nil
	}

	for _, r := range roots {
		if err := walk(r, yUpToZUp); err != nil {
			return nil, err
		}
	}
	return objs, nil
}

func rootNodes(doc *gltf.Document) ([]uint32, error) {
	if doc.Scene != nil {
		if int(*doc.Scene) >= len(doc.Scenes) {
			return nil, errors.Errorf("default scene %d out of range", *doc.Scene)
		}
		return doc.Scenes[*doc.Scene].Nodes, nil
	}

	child := make(map[uint32]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	var roots []uint32
	for i := range doc.Nodes {
		if !child[uint32(i)] {
			roots = append(roots, uint32(i))
		}
	}
	return roots, nil
}

// localMatrix returns the node's local transform. A non-identity matrix
// wins over TRS; zero-valued TRS fields of in-memory documents count as
// their glTF defaults.
func localMatrix(n *gltf.Node) math.Mat4 {
	if n.Matrix != [16]float32{} && n.Matrix != gltf.DefaultMatrix {
		return math.Mat4(n.Matrix)
	}

	rot := n.Rotation
	if rot == [4]float32{} {
		rot = gltf.DefaultRotation
	}
	scale := n.Scale
	if scale == [3]float32{} {
		scale = gltf.DefaultScale
	}

	q := mgl32.Quat{W: rot[3], V: mgl32.Vec3{rot[0], rot[1], rot[2]}}.Normalize()
	m := mgl32.Translate3D(n.Translation[0], n.Translation[1], n.Translation[2]).
		Mul4(q.Mat4()).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
	return math.Mat4(m)
}

// gltfMaterial maps a metallic-roughness material onto the exporter's
// diffuse/specular model.
func gltfMaterial(doc *gltf.Document, m *gltf.Material, index int) *scene.Material {
	name := m.Name
	if name == "" {
		name = "material" + strconv.Itoa(index)
	}
	mat := &scene.Material{
		Name:             name,
		Diffuse:          math.Vec3{X: 1, Y: 1, Z: 1},
		Specular:         math.Vec3{X: 0, Y: 0, Z: 0},
		SpecularHardness: 50,
		Ambient:          0.3,
	}

	pbr := m.PBRMetallicRoughness
	if pbr == nil {
		return mat
	}
	if pbr.BaseColorFactor != nil {
		c := *pbr.BaseColorFactor
		mat.Diffuse = math.Vec3{X: c[0], Y: c[1], Z: c[2]}
	}
	roughness := float32(1)
	if pbr.RoughnessFactor != nil {
		roughness = *pbr.RoughnessFactor
	}
	gloss := 1 - roughness
	mat.Specular = math.Vec3{X: gloss, Y: gloss, Z: gloss}
	mat.SpecularHardness = 1 + gloss*99

	if pbr.BaseColorTexture != nil {
		mat.Texture = textureSlot(doc, pbr.BaseColorTexture.Index)
	}
	return mat
}

// textureSlot resolves a texture to its image file. Images embedded in a
// buffer or a data URI have no path and are reported as procedural.
func textureSlot(doc *gltf.Document, index uint32) *scene.TextureSlot {
	if int(index) >= len(doc.Textures) {
		return nil
	}
	tex := doc.Textures[index]
	if tex.Source == nil || int(*tex.Source) >= len(doc.Images) {
		return nil
	}
	img := doc.Images[*tex.Source]
	if img.URI == "" || strings.HasPrefix(img.URI, "data:") {
		return &scene.TextureSlot{Type: scene.TextureProcedural}
	}

	path, err := url.PathUnescape(img.URI)
	if err != nil {
		path = img.URI
	}
	return &scene.TextureSlot{Type: scene.TextureImage, Path: path}
}

// gltfObject is a node of a glTF document.
type gltfObject struct {
	doc       *gltf.Document
	node      *gltf.Node
	index     uint32
	world     math.Mat4
	materials []*scene.Material
}

func (o *gltfObject) Name() string {
	if o.node.Name != "" {
		return o.node.Name
	}
	return "node" + strconv.Itoa(int(o.index))
}

func (o *gltfObject) Kind() scene.Kind {
	switch {
	case o.node.Mesh != nil:
		return scene.KindMesh
	case o.node.Camera != nil:
		return scene.KindCamera
	default:
		return scene.KindEmpty
	}
}

func (o *gltfObject) WorldMatrix() math.Mat4 { return o.world }

// glTF has no visibility or selection state: every node is visible and
// none is selected.
func (o *gltfObject) Visible() bool  { return true }
func (o *gltfObject) Selected() bool { return false }

// Triangulate reads every primitive of the node's mesh. glTF meshes carry
// no modifier stack, so applyModifiers has no effect.
func (o *gltfObject) Triangulate(applyModifiers bool) (*scene.Mesh, error) {
	if o.node.Mesh == nil {
		return nil, scene.ErrNoGeometry
	}
	if int(*o.node.Mesh) >= len(o.doc.Meshes) {
		return nil, errors.Wrapf(scene.ErrBadIndex, "mesh %d", *o.node.Mesh)
	}
	gm := o.doc.Meshes[*o.node.Mesh]

	mesh := scene.NewMesh(nil)
	slots := make(map[uint32]int)

	for pi, prim := range gm.Primitives {
		if err := o.readPrimitive(mesh, prim, slots); err != nil {
			return nil, errors.Wrapf(err, "mesh %s primitive %d", gm.Name, pi)
		}
	}
	if len(mesh.Vertices) == 0 {
		return nil, scene.ErrNoGeometry
	}
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	return mesh, nil
}

func (o *gltfObject) readPrimitive(mesh *scene.Mesh, prim *gltf.Primitive, slots map[uint32]int) error {
	if prim.Mode != gltf.PrimitiveTriangles {
		return errors.Errorf("unsupported primitive mode %v", prim.Mode)
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return errors.Wrap(scene.ErrNoGeometry, "no POSITION attribute")
	}
	acr, err := o.accessor(posIdx)
	if err != nil {
		return err
	}
	positions, err := modeler.ReadPosition(o.doc, acr, nil)
	if err != nil {
		return errors.Wrap(err, "reading positions")
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if acr, err = o.accessor(idx); err != nil {
			return err
		}
		if normals, err = modeler.ReadNormal(o.doc, acr, nil); err != nil {
			return errors.Wrap(err, "reading normals")
		}
	}

	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if acr, err = o.accessor(idx); err != nil {
			return err
		}
		if uvs, err = modeler.ReadTextureCoord(o.doc, acr, nil); err != nil {
			return errors.Wrap(err, "reading uvs")
		}
		mesh.HasUV = true
	}

	var indices []uint32
	if prim.Indices != nil {
		if acr, err = o.accessor(*prim.Indices); err != nil {
			return err
		}
		if indices, err = modeler.ReadIndices(o.doc, acr, nil); err != nil {
			return errors.Wrap(err, "reading indices")
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if len(indices)%3 != 0 {
		return errors.Errorf("%d indices is not a triangle list", len(indices))
	}

	slot := -1
	if prim.Material != nil && int(*prim.Material) < len(o.materials) {
		var seen bool
		if slot, seen = slots[*prim.Material]; !seen {
			slot = len(mesh.Materials)
			slots[*prim.Material] = slot
			mesh.Materials = append(mesh.Materials, o.materials[*prim.Material])
		}
	}

	base := len(mesh.Vertices)
	for i, p := range positions {
		v := scene.Vertex{Position: math.Vec3From(p)}
		if i < len(normals) {
			v.Normal = math.Vec3From(normals[i])
		}
		mesh.Vertices = append(mesh.Vertices, v)
	}

	var faces [][]int
	for i := 0; i+2 < len(indices); i += 3 {
		tri := scene.Triangle{Material: slot}
		for j := 0; j < 3; j++ {
			idx := int(indices[i+j])
			if idx >= len(positions) {
				return errors.Wrapf(scene.ErrBadIndex, "index %d", idx)
			}
			tri.Vertices[j] = base + idx
			// glTF puts the UV origin top-left; scene UVs are bottom-left.
			if idx < len(uvs) {
				tri.UV[j] = math.Vec2{X: uvs[idx][0], Y: uvs[idx][1]}.FlipV()
			}
		}
		mesh.Triangles = append(mesh.Triangles, tri)
		faces = append(faces, []int{tri.Vertices[0] - base, tri.Vertices[1] - base, tri.Vertices[2] - base})
	}

	if len(normals) == 0 {
		smoothNormals(mesh.Vertices[base:], faces)
	}
	return nil
}

func (o *gltfObject) accessor(idx uint32) (*gltf.Accessor, error) {
	if int(idx) >= len(o.doc.Accessors) {
		return nil, errors.Wrapf(scene.ErrBadIndex, "accessor %d", idx)
	}
	return o.doc.Accessors[idx], nil
}
