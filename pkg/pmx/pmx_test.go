package pmx

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/pmx-export/pkg/encoding"
	pmath "github.com/Faultbox/pmx-export/pkg/math"
)

// sampleModel returns a two-material quad with one texture, one bone and
// the two standard display frames.
func sampleModel(enc encoding.Text) *Model {
	return &Model{
		Encoding: enc,
		Vertices: []Vertex{
			{Position: pmath.Vec3{X: 0, Y: 0, Z: 0}, Normal: pmath.Vec3{X: 0, Y: 1, Z: 0}, UV: pmath.Vec2{X: 0, Y: 1}, EdgeScale: 1},
			{Position: pmath.Vec3{X: 5, Y: 0, Z: 0}, Normal: pmath.Vec3{X: 0, Y: 1, Z: 0}, UV: pmath.Vec2{X: 1, Y: 1}, EdgeScale: 1},
			{Position: pmath.Vec3{X: 5, Y: 0, Z: 5}, Normal: pmath.Vec3{X: 0, Y: 1, Z: 0}, UV: pmath.Vec2{X: 1, Y: 0}, EdgeScale: 1},
			{Position: pmath.Vec3{X: 0, Y: 0, Z: 5}, Normal: pmath.Vec3{X: 0, Y: 1, Z: 0}, UV: pmath.Vec2{X: 0, Y: 0}, EdgeScale: 1},
		},
		Faces: []Face{
			{Vertices: [3]int{0, 2, 1}},
			{Vertices: [3]int{0, 3, 2}},
		},
		Textures: []string{"tex/skin.png"},
		Materials: []Material{
			{
				Name: "skin", Diffuse: pmath.Vec3{X: 1, Y: 0.8, Z: 0.7}, Alpha: 1,
				Specular: pmath.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, SpecularPower: 50,
				Ambient: pmath.Vec3{X: 0.3, Y: 0.3, Z: 0.3}, Flags: 0x1C,
				EdgeColor: [4]float32{0, 0, 0, 1}, EdgeSize: 1,
				Texture: 0, SphereTexture: -1, SharedToon: true, Toon: 0,
				SurfaceCount: 3,
			},
			{
				Name: "デフォルトマテリアル", Diffuse: pmath.Vec3{X: 0.8, Y: 0.8, Z: 0.8}, Alpha: 1,
				Flags: 0x1C, EdgeColor: [4]float32{0, 0, 0, 1}, EdgeSize: 1,
				Texture: -1, SphereTexture: -1, SharedToon: true,
				SurfaceCount: 3,
			},
		},
		Bones: []Bone{
			{Name: "センター", Parent: -1, Flags: 0x001F, Tail: -1},
		},
		DisplayFrames: []DisplayFrame{
			{Name: "Root", NameEn: "Root", Special: true, Elements: []FrameElement{{Kind: FrameElementBone, Index: 0}}},
			{Name: "Expression", NameEn: "Exp", Special: true},
		},
	}
}

func TestMarshalHeader(t *testing.T) {
	data, err := Marshal(sampleModel(encoding.UTF8))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	if string(data[0:4]) != "PMX " {
		t.Errorf("magic = %q, want %q", data[0:4], "PMX ")
	}
	if v := math.Float32frombits(binary.LittleEndian.Uint32(data[4:8])); v != 2.0 {
		t.Errorf("version = %v, want 2.0", v)
	}
	want := []byte{8, 1, 0, 1, 1, 1, 1, 1, 1}
	if !bytes.Equal(data[8:17], want) {
		t.Errorf("header globals = %v, want %v", data[8:17], want)
	}
	// Model info: four empty strings.
	if !bytes.Equal(data[17:33], make([]byte, 16)) {
		t.Errorf("model info = %v, want 16 zero bytes", data[17:33])
	}
	if n := binary.LittleEndian.Uint32(data[33:37]); n != 4 {
		t.Errorf("vertex count = %d, want 4", n)
	}
}

func TestMarshalVertexLayout(t *testing.T) {
	m := &Model{
		Encoding: encoding.UTF16LE,
		Vertices: []Vertex{{
			Position:  pmath.Vec3{X: 1, Y: 2, Z: 3},
			Normal:    pmath.Vec3{X: 0, Y: 0, Z: 1},
			UV:        pmath.Vec2{X: 0.5, Y: 0.25},
			EdgeScale: 1,
		}},
	}
	data, err := Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	// header(17) + info(16) + count(4)
	v := data[37:]
	floats := make([]float32, 8)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(v[i*4:]))
	}
	wantFloats := []float32{1, 2, 3, 0, 0, 1, 0.5, 0.25}
	for i := range floats {
		if floats[i] != wantFloats[i] {
			t.Errorf("vertex float %d = %v, want %v", i, floats[i], wantFloats[i])
		}
	}
	if v[32] != byte(DeformBDEF1) {
		t.Errorf("deform = %d, want BDEF1", v[32])
	}
	if v[33] != 0 {
		t.Errorf("bone index = %d, want 0", v[33])
	}
	if e := math.Float32frombits(binary.LittleEndian.Uint32(v[34:])); e != 1 {
		t.Errorf("edge scale = %v, want 1", e)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, enc := range []encoding.Text{encoding.UTF8, encoding.UTF16LE} {
		t.Run(enc.String(), func(t *testing.T) {
			want := sampleModel(enc)
			data, err := Marshal(want)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}

			doc, err := Parse(data)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			got := doc.Model

			if doc.Header.IndexSizes != want.IndexSizes() {
				t.Errorf("index sizes = %v, want %v", doc.Header.IndexSizes, want.IndexSizes())
			}
			if len(got.Vertices) != len(want.Vertices) {
				t.Fatalf("vertices = %d, want %d", len(got.Vertices), len(want.Vertices))
			}
			for i := range want.Vertices {
				if got.Vertices[i] != want.Vertices[i] {
					t.Errorf("vertex %d = %+v, want %+v", i, got.Vertices[i], want.Vertices[i])
				}
			}
			if len(got.Faces) != len(want.Faces) {
				t.Fatalf("faces = %d, want %d", len(got.Faces), len(want.Faces))
			}
			for i := range want.Faces {
				if got.Faces[i] != want.Faces[i] {
					t.Errorf("face %d = %v, want %v", i, got.Faces[i], want.Faces[i])
				}
			}
			if len(got.Textures) != 1 || got.Textures[0] != "tex/skin.png" {
				t.Errorf("textures = %q", got.Textures)
			}
			if len(got.Materials) != len(want.Materials) {
				t.Fatalf("materials = %d, want %d", len(got.Materials), len(want.Materials))
			}
			for i := range want.Materials {
				if got.Materials[i] != want.Materials[i] {
					t.Errorf("material %d = %+v, want %+v", i, got.Materials[i], want.Materials[i])
				}
			}
			if len(got.Bones) != 1 || got.Bones[0] != want.Bones[0] {
				t.Errorf("bones = %+v, want %+v", got.Bones, want.Bones)
			}
			if len(got.DisplayFrames) != 2 {
				t.Fatalf("display frames = %d, want 2", len(got.DisplayFrames))
			}
			if got.DisplayFrames[1].Name != "Expression" || got.DisplayFrames[1].NameEn != "Exp" {
				t.Errorf("expression frame = %+v", got.DisplayFrames[1])
			}
			if len(got.DisplayFrames[0].Elements) != 1 || got.DisplayFrames[0].Elements[0].Index != 0 {
				t.Errorf("root frame = %+v", got.DisplayFrames[0])
			}
			if doc.Morphs != 0 || doc.Rigids != 0 || doc.Joints != 0 {
				t.Errorf("morphs/rigids/joints = %d/%d/%d, want 0/0/0", doc.Morphs, doc.Rigids, doc.Joints)
			}
		})
	}
}

func TestRoundTripWideIndices(t *testing.T) {
	m := &Model{Encoding: encoding.UTF8}
	for i := 0; i < 70000; i++ {
		m.Vertices = append(m.Vertices, Vertex{Position: pmath.Vec3{X: float32(i)}, EdgeScale: 1})
	}
	m.Faces = []Face{{Vertices: [3]int{0, 65536, 69999}}}
	m.Materials = []Material{{Name: "m", Texture: -1, SphereTexture: -1, SharedToon: true, SurfaceCount: 3}}

	data, err := Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Header.IndexSizes.Vertex != 4 {
		t.Errorf("vertex index size = %d, want 4", doc.Header.IndexSizes.Vertex)
	}
	if doc.Model.Faces[0] != m.Faces[0] {
		t.Errorf("face = %v, want %v", doc.Model.Faces[0], m.Faces[0])
	}
}

func TestMarshalErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *Model)
		want   error
	}{
		{
			name:   "face index out of width",
			mutate: func(m *Model) { m.Faces[0].Vertices[0] = 300 },
			want:   ErrIndexOverflow,
		},
		{
			name:   "texture index out of width",
			mutate: func(m *Model) { m.Materials[0].Texture = 200 },
			want:   ErrIndexOverflow,
		},
		{
			name:   "surface count mismatch",
			mutate: func(m *Model) { m.Materials[0].SurfaceCount = 6 },
			want:   ErrSurfaceCount,
		},
		{
			name:   "ik bone",
			mutate: func(m *Model) { m.Bones[0].Flags |= 0x0020 },
			want:   ErrUnsupportedBoneFlags,
		},
		{
			name:   "bad encoding",
			mutate: func(m *Model) { m.Encoding = encoding.Text(5) },
			want:   ErrUnsupportedEncoding,
		},
		{
			name:   "bad frame element",
			mutate: func(m *Model) { m.DisplayFrames[0].Elements[0].Kind = 9 },
			want:   ErrUnsupportedSection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sampleModel(encoding.UTF8)
			tt.mutate(m)
			_, err := Marshal(m)
			if !errors.Is(err, tt.want) {
				t.Errorf("Marshal error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	good, err := Marshal(sampleModel(encoding.UTF8))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	badMagic := append([]byte("PMD "), good[4:]...)
	badVersion := append([]byte{}, good...)
	binary.LittleEndian.PutUint32(badVersion[4:], math.Float32bits(2.1))
	badSize := append([]byte{}, good...)
	badSize[11] = 3

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrTruncated},
		{"bad magic", badMagic, ErrInvalidMagic},
		{"bad version", badVersion, ErrUnsupportedVersion},
		{"bad index size", badSize, ErrInvalidIndexSize},
		{"truncated", good[:len(good)-6], ErrTruncated},
		{"truncated header", good[:10], ErrTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.pmx")

	if err := WriteFile(path, sampleModel(encoding.UTF16LE)); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	doc, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(doc.Model.Vertices) != 4 {
		t.Errorf("vertices = %d, want 4", len(doc.Model.Vertices))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only model.pmx in dir, found %d entries", len(entries))
	}
}

func TestWriteFileFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing", "model.pmx")

	if err := WriteFile(path, sampleModel(encoding.UTF8)); err == nil {
		t.Fatal("expected error writing into a missing directory")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("no file should exist at %s", path)
	}

	// An encode error must not touch an existing file.
	good := filepath.Join(dir, "keep.pmx")
	if err := os.WriteFile(good, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	bad := sampleModel(encoding.UTF8)
	bad.Materials[0].SurfaceCount = 0
	if err := WriteFile(good, bad); err == nil {
		t.Fatal("expected encode error")
	}
	if data, _ := os.ReadFile(good); string(data) != "old" {
		t.Errorf("existing file was modified: %q", data)
	}
}
