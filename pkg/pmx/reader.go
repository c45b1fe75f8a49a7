package pmx

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/pmx-export/pkg/encoding"
	"github.com/Faultbox/pmx-export/pkg/math"
)

// Header is the decoded fixed part of a PMX file.
type Header struct {
	Version      float32
	Encoding     encoding.Text
	AdditionalUV uint8
	IndexSizes   IndexSizes
}

// Document is a decoded PMX file: the header plus the model it describes.
type Document struct {
	Header Header
	Model  *Model
	// Section counts as stored in the file, including tables the model
	// does not keep.
	Morphs int
	Rigids int
	Joints int
}

type reader struct {
	r     *bytes.Reader
	enc   encoding.Text
	sizes IndexSizes
	err   error
}

func (r *reader) read(v interface{}) {
	if r.err != nil {
		return
	}
	if err := binary.Read(r.r, binary.LittleEndian, v); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			err = ErrTruncated
		}
		r.err = err
	}
}

func (r *reader) readUint8() uint8 {
	var v uint8
	r.read(&v)
	return v
}

func (r *reader) readInt() int {
	var v int32
	r.read(&v)
	return int(v)
}

func (r *reader) readFloat() float32 {
	var v float32
	r.read(&v)
	return v
}

func (r *reader) readVec2() math.Vec2 {
	var a [2]float32
	r.read(&a)
	return math.Vec2{X: a[0], Y: a[1]}
}

func (r *reader) readVec3() math.Vec3 {
	var a [3]float32
	r.read(&a)
	return math.Vec3From(a)
}

// readCount reads a table length and rejects values that cannot fit in the
// remaining data, given the minimum encoded size of one element.
func (r *reader) readCount(section string, minElem int) int {
	n := r.readInt()
	if r.err != nil {
		return 0
	}
	if n < 0 || n*minElem > r.r.Len() {
		r.err = fmt.Errorf("%s count %d: %w", section, n, ErrTruncated)
		return 0
	}
	return n
}

func (r *reader) readText() string {
	n := r.readInt()
	if r.err != nil {
		return ""
	}
	if n < 0 || n > r.r.Len() {
		r.err = fmt.Errorf("string length %d: %w", n, ErrTruncated)
		return ""
	}
	data := make([]byte, n)
	r.read(data)
	return r.enc.Decode(data)
}

func (r *reader) readIndex(size uint8) int {
	switch size {
	case 1:
		var v int8
		r.read(&v)
		return int(v)
	case 2:
		var v int16
		r.read(&v)
		return int(v)
	default:
		var v int32
		r.read(&v)
		return int(v)
	}
}

func (r *reader) readVertexIndex() int {
	switch r.sizes.Vertex {
	case 1:
		var v uint8
		r.read(&v)
		return int(v)
	case 2:
		var v uint16
		r.read(&v)
		return int(v)
	default:
		var v int32
		r.read(&v)
		return int(v)
	}
}

func (r *reader) readHeader() (Header, error) {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r.r, magic); err != nil {
		return Header{}, ErrTruncated
	}
	if string(magic) != Magic {
		return Header{}, ErrInvalidMagic
	}

	var h Header
	h.Version = r.readFloat()
	count := r.readUint8()
	if r.err != nil {
		return Header{}, r.err
	}
	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: %.1f", ErrUnsupportedVersion, h.Version)
	}
	if count < headerInfoCount {
		return Header{}, fmt.Errorf("%w: %d header globals", ErrUnsupportedVersion, count)
	}

	info := make([]byte, count)
	r.read(info)
	if r.err != nil {
		return Header{}, r.err
	}

	h.Encoding = encoding.Text(info[0])
	if !h.Encoding.Valid() {
		return Header{}, fmt.Errorf("%w: selector %d", ErrUnsupportedEncoding, info[0])
	}
	h.AdditionalUV = info[1]
	if h.AdditionalUV != 0 {
		return Header{}, fmt.Errorf("%w: %d additional UV layers", ErrUnsupportedSection, h.AdditionalUV)
	}
	h.IndexSizes = IndexSizes{
		Vertex:   info[2],
		Texture:  info[3],
		Material: info[4],
		Bone:     info[5],
		Morph:    info[6],
		Rigid:    info[7],
	}
	for _, s := range info[2:8] {
		if !validIndexSize(s) {
			return Header{}, fmt.Errorf("%w: %d", ErrInvalidIndexSize, s)
		}
	}
	return h, nil
}

func (r *reader) readVertex() Vertex {
	var v Vertex
	v.Position = r.readVec3()
	v.Normal = r.readVec3()
	v.UV = r.readVec2()
	deform := WeightDeform(r.readUint8())
	if r.err == nil && deform != DeformBDEF1 {
		r.err = fmt.Errorf("%w: vertex deform %s", ErrUnsupportedSection, deform)
		return v
	}
	v.Bone = r.readIndex(r.sizes.Bone)
	v.EdgeScale = r.readFloat()
	return v
}

func (r *reader) readMaterial() Material {
	var m Material
	m.Name = r.readText()
	m.NameEn = r.readText()
	m.Diffuse = r.readVec3()
	m.Alpha = r.readFloat()
	m.Specular = r.readVec3()
	m.SpecularPower = r.readFloat()
	m.Ambient = r.readVec3()
	m.Flags = r.readUint8()
	r.read(&m.EdgeColor)
	m.EdgeSize = r.readFloat()
	m.Texture = r.readIndex(r.sizes.Texture)
	m.SphereTexture = r.readIndex(r.sizes.Texture)
	m.SphereMode = r.readUint8()
	m.SharedToon = r.readUint8() != 0
	if m.SharedToon {
		m.Toon = int(r.readUint8())
	} else {
		m.Toon = r.readIndex(r.sizes.Texture)
	}
	m.Memo = r.readText()
	m.SurfaceCount = r.readInt()
	return m
}

func (r *reader) readBone() Bone {
	var b Bone
	b.Name = r.readText()
	b.NameEn = r.readText()
	b.Position = r.readVec3()
	b.Parent = r.readIndex(r.sizes.Bone)
	r.read(&b.Layer)
	r.read(&b.Flags)
	if r.err == nil && b.Flags&^boneSupportedFlags != 0 {
		r.err = fmt.Errorf("bone %q flags 0x%04x: %w", b.Name, b.Flags&^boneSupportedFlags, ErrUnsupportedBoneFlags)
		return b
	}
	if b.Flags&BoneTailIsIndex != 0 {
		b.Tail = r.readIndex(r.sizes.Bone)
	} else {
		b.TailOffset = r.readVec3()
	}
	return b
}

func (r *reader) readDisplayFrame() DisplayFrame {
	var f DisplayFrame
	f.Name = r.readText()
	f.NameEn = r.readText()
	f.Special = r.readUint8() != 0
	n := r.readCount("display frame element", 2)
	for i := 0; i < n && r.err == nil; i++ {
		e := FrameElement{Kind: r.readUint8()}
		switch e.Kind {
		case FrameElementBone:
			e.Index = r.readIndex(r.sizes.Bone)
		case FrameElementMorph:
			e.Index = r.readIndex(r.sizes.Morph)
		default:
			if r.err == nil {
				r.err = fmt.Errorf("%w: display frame element kind %d", ErrUnsupportedSection, e.Kind)
			}
		}
		f.Elements = append(f.Elements, e)
	}
	return f
}

// Parse decodes PMX data produced by Marshal or any file limited to the
// same feature set. Non-empty morph, rigid body or joint tables are
// reported as ErrUnsupportedSection.
func Parse(data []byte) (*Document, error) {
	r := &reader{r: bytes.NewReader(data)}

	header, err := r.readHeader()
	if err != nil {
		return nil, err
	}
	r.enc = header.Encoding
	r.sizes = header.IndexSizes

	m := &Model{Encoding: header.Encoding}
	doc := &Document{Header: header, Model: m}

	m.Name = r.readText()
	m.NameEn = r.readText()
	m.Comment = r.readText()
	m.CommentEn = r.readText()

	// Smallest vertex: 8 floats, deform byte, 1-byte bone, edge float.
	n := r.readCount("vertex", 8*4+1+1+4)
	for i := 0; i < n && r.err == nil; i++ {
		m.Vertices = append(m.Vertices, r.readVertex())
	}

	n = r.readCount("face index", 1)
	if r.err == nil && n%3 != 0 {
		r.err = fmt.Errorf("%w: face index count %d is not a multiple of 3", ErrUnsupportedSection, n)
	}
	for i := 0; i < n/3 && r.err == nil; i++ {
		var f Face
		f.Vertices[0] = r.readVertexIndex()
		f.Vertices[1] = r.readVertexIndex()
		f.Vertices[2] = r.readVertexIndex()
		m.Faces = append(m.Faces, f)
	}

	n = r.readCount("texture", 4)
	for i := 0; i < n && r.err == nil; i++ {
		m.Textures = append(m.Textures, r.readText())
	}

	n = r.readCount("material", 4)
	for i := 0; i < n && r.err == nil; i++ {
		m.Materials = append(m.Materials, r.readMaterial())
	}

	n = r.readCount("bone", 4)
	for i := 0; i < n && r.err == nil; i++ {
		m.Bones = append(m.Bones, r.readBone())
	}

	doc.Morphs = r.readCount("morph", 1)
	if r.err == nil && doc.Morphs != 0 {
		return nil, fmt.Errorf("%w: %d morphs", ErrUnsupportedSection, doc.Morphs)
	}

	n = r.readCount("display frame", 4)
	for i := 0; i < n && r.err == nil; i++ {
		m.DisplayFrames = append(m.DisplayFrames, r.readDisplayFrame())
	}

	doc.Rigids = r.readCount("rigid body", 1)
	doc.Joints = r.readCount("joint", 1)
	if r.err == nil && (doc.Rigids != 0 || doc.Joints != 0) {
		return nil, fmt.Errorf("%w: %d rigid bodies, %d joints", ErrUnsupportedSection, doc.Rigids, doc.Joints)
	}

	if r.err != nil {
		return nil, r.err
	}
	return doc, nil
}

// ParseFile parses a PMX file from disk.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return Parse(data)
}
