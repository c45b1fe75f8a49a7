package scene

import (
	"errors"
	"testing"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindMesh, "Mesh"},
		{KindCamera, "Camera"},
		{KindArmature, "Armature"},
		{Kind(42), "Unknown(42)"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"", KindMesh},
		{"mesh", KindMesh},
		{"empty", KindEmpty},
		{"light", KindLight},
		{"curve", KindOther},
	}

	for _, tt := range tests {
		if got := ParseKind(tt.name); got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestMeshRelease(t *testing.T) {
	calls := 0
	m := NewMesh(func() { calls++ })
	m.Release()
	m.Release()
	if calls != 1 {
		t.Errorf("release ran %d times, want 1", calls)
	}

	var nilMesh *Mesh
	nilMesh.Release()
	NewMesh(nil).Release()
}

func TestMeshValidate(t *testing.T) {
	m := &Mesh{
		Vertices:  make([]Vertex, 3),
		Triangles: []Triangle{{Vertices: [3]int{0, 1, 2}}},
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	m.Triangles = append(m.Triangles, Triangle{Vertices: [3]int{0, 1, 3}})
	if err := m.Validate(); !errors.Is(err, ErrBadIndex) {
		t.Errorf("Validate() = %v, want ErrBadIndex", err)
	}
}

func TestHasImageTexture(t *testing.T) {
	tests := []struct {
		name string
		mat  *Material
		want bool
	}{
		{"nil material", nil, false},
		{"no slot", &Material{}, false},
		{"image", &Material{Texture: &TextureSlot{Type: TextureImage, Path: "a.png"}}, true},
		{"image without path", &Material{Texture: &TextureSlot{Type: TextureImage}}, false},
		{"procedural", &Material{Texture: &TextureSlot{Type: TextureProcedural, Path: "a.png"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mat.HasImageTexture(); got != tt.want {
				t.Errorf("HasImageTexture() = %v, want %v", got, tt.want)
			}
		})
	}
}
