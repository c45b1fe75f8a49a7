package pmx

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Faultbox/pmx-export/pkg/encoding"
	"github.com/Faultbox/pmx-export/pkg/math"
)

// writer serializes into an in-memory buffer. The first error sticks and
// turns every later call into a no-op.
type writer struct {
	buf   bytes.Buffer
	enc   encoding.Text
	sizes IndexSizes
	err   error
}

func (w *writer) write(v interface{}) {
	if w.err != nil {
		return
	}
	w.err = binary.Write(&w.buf, binary.LittleEndian, v)
}

func (w *writer) writeUint8(v uint8) {
	w.write(v)
}

func (w *writer) writeInt(v int) {
	w.write(int32(v))
}

func (w *writer) writeFloat(v float32) {
	w.write(v)
}

func (w *writer) writeVec2(v math.Vec2) {
	w.write([2]float32{v.X, v.Y})
}

func (w *writer) writeVec3(v math.Vec3) {
	w.write(v.Array())
}

// writeText writes a length-prefixed string in the model's text encoding.
func (w *writer) writeText(s string) {
	if w.err != nil {
		return
	}
	data := w.enc.Encode(s)
	w.writeInt(len(data))
	w.buf.Write(data)
}

// writeIndex writes a signed table reference (-1 = none).
func (w *writer) writeIndex(size uint8, v int, table string) {
	if w.err != nil {
		return
	}
	if !fitsSigned(size, v) {
		w.err = fmt.Errorf("%s index %d in %d bytes: %w", table, v, size, ErrIndexOverflow)
		return
	}
	switch size {
	case 1:
		w.write(int8(v))
	case 2:
		w.write(int16(v))
	case 4:
		w.write(int32(v))
	}
}

// writeVertexIndex writes an unsigned vertex reference.
func (w *writer) writeVertexIndex(v int) {
	if w.err != nil {
		return
	}
	size := w.sizes.Vertex
	if !fitsUnsigned(size, v) {
		w.err = fmt.Errorf("vertex index %d in %d bytes: %w", v, size, ErrIndexOverflow)
		return
	}
	switch size {
	case 1:
		w.write(uint8(v))
	case 2:
		w.write(uint16(v))
	case 4:
		w.write(int32(v))
	}
}

func (w *writer) writeHeader() {
	w.buf.WriteString(Magic)
	w.writeFloat(Version)
	w.writeUint8(headerInfoCount)
	w.writeUint8(uint8(w.enc))
	w.writeUint8(0) // additional UV layers
	w.writeUint8(w.sizes.Vertex)
	w.writeUint8(w.sizes.Texture)
	w.writeUint8(w.sizes.Material)
	w.writeUint8(w.sizes.Bone)
	w.writeUint8(w.sizes.Morph)
	w.writeUint8(w.sizes.Rigid)
}

func (w *writer) writeVertex(v *Vertex) {
	w.writeVec3(v.Position)
	w.writeVec3(v.Normal)
	w.writeVec2(v.UV)
	w.writeUint8(uint8(DeformBDEF1))
	w.writeIndex(w.sizes.Bone, v.Bone, "bone")
	w.writeFloat(v.EdgeScale)
}

func (w *writer) writeMaterial(m *Material) {
	w.writeText(m.Name)
	w.writeText(m.NameEn)
	w.writeVec3(m.Diffuse)
	w.writeFloat(m.Alpha)
	w.writeVec3(m.Specular)
	w.writeFloat(m.SpecularPower)
	w.writeVec3(m.Ambient)
	w.writeUint8(m.Flags)
	w.write(m.EdgeColor)
	w.writeFloat(m.EdgeSize)
	w.writeIndex(w.sizes.Texture, m.Texture, "texture")
	w.writeIndex(w.sizes.Texture, m.SphereTexture, "sphere texture")
	w.writeUint8(m.SphereMode)
	if m.SharedToon {
		w.writeUint8(1)
		w.writeUint8(uint8(m.Toon))
	} else {
		w.writeUint8(0)
		w.writeIndex(w.sizes.Texture, m.Toon, "toon texture")
	}
	w.writeText(m.Memo)
	w.writeInt(m.SurfaceCount)
}

func (w *writer) writeBone(b *Bone) {
	if w.err != nil {
		return
	}
	if b.Flags&^boneSupportedFlags != 0 {
		w.err = fmt.Errorf("bone %q flags 0x%04x: %w", b.Name, b.Flags&^boneSupportedFlags, ErrUnsupportedBoneFlags)
		return
	}
	w.writeText(b.Name)
	w.writeText(b.NameEn)
	w.writeVec3(b.Position)
	w.writeIndex(w.sizes.Bone, b.Parent, "parent bone")
	w.write(b.Layer)
	w.write(b.Flags)
	if b.Flags&BoneTailIsIndex != 0 {
		w.writeIndex(w.sizes.Bone, b.Tail, "tail bone")
	} else {
		w.writeVec3(b.TailOffset)
	}
}

func (w *writer) writeDisplayFrame(f *DisplayFrame) {
	w.writeText(f.Name)
	w.writeText(f.NameEn)
	if f.Special {
		w.writeUint8(1)
	} else {
		w.writeUint8(0)
	}
	w.writeInt(len(f.Elements))
	for _, e := range f.Elements {
		w.writeUint8(e.Kind)
		switch e.Kind {
		case FrameElementBone:
			w.writeIndex(w.sizes.Bone, e.Index, "frame bone")
		case FrameElementMorph:
			w.writeIndex(w.sizes.Morph, e.Index, "frame morph")
		default:
			if w.err == nil {
				w.err = fmt.Errorf("display frame %q element kind %d: %w", f.Name, e.Kind, ErrUnsupportedSection)
			}
		}
	}
}

// Marshal encodes the model into PMX bytes. Index widths are selected from
// the model's table sizes.
func Marshal(m *Model) ([]byte, error) {
	if !m.Encoding.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, m.Encoding)
	}

	surfaces := 0
	for i := range m.Materials {
		surfaces += m.Materials[i].SurfaceCount
	}
	if surfaces != len(m.Faces)*3 {
		return nil, fmt.Errorf("%w: materials cover %d indices, faces have %d", ErrSurfaceCount, surfaces, len(m.Faces)*3)
	}

	w := &writer{enc: m.Encoding, sizes: m.IndexSizes()}

	w.writeHeader()

	// Model info
	w.writeText(m.Name)
	w.writeText(m.NameEn)
	w.writeText(m.Comment)
	w.writeText(m.CommentEn)

	w.writeInt(len(m.Vertices))
	for i := range m.Vertices {
		w.writeVertex(&m.Vertices[i])
	}

	w.writeInt(len(m.Faces) * 3)
	for _, f := range m.Faces {
		w.writeVertexIndex(f.Vertices[0])
		w.writeVertexIndex(f.Vertices[1])
		w.writeVertexIndex(f.Vertices[2])
	}

	w.writeInt(len(m.Textures))
	for _, t := range m.Textures {
		w.writeText(t)
	}

	w.writeInt(len(m.Materials))
	for i := range m.Materials {
		w.writeMaterial(&m.Materials[i])
	}

	w.writeInt(len(m.Bones))
	for i := range m.Bones {
		w.writeBone(&m.Bones[i])
	}

	// Morphs
	w.writeInt(0)

	w.writeInt(len(m.DisplayFrames))
	for i := range m.DisplayFrames {
		w.writeDisplayFrame(&m.DisplayFrames[i])
	}

	// Rigid bodies and joints
	w.writeInt(0)
	w.writeInt(0)

	if w.err != nil {
		return nil, w.err
	}
	return w.buf.Bytes(), nil
}

// Encode writes the model to out.
func Encode(out io.Writer, m *Model) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

// WriteFile encodes the model and replaces path with the result. The data
// goes to a temporary file in the same directory first, so a failed write
// never leaves a truncated model at path.
func WriteFile(path string, m *Model) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting mode of %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
