package export

import (
	"testing"

	"github.com/Faultbox/pmx-export/pkg/math"
	"github.com/Faultbox/pmx-export/pkg/scene"
)

func TestSelectObjects(t *testing.T) {
	visible := triangleObject("visible", math.Identity())
	hidden := triangleObject("hidden", math.Identity())
	hidden.Hidden = true
	selected := triangleObject("selected", math.Identity())
	selected.IsSelected = true
	hiddenSelected := triangleObject("hidden-selected", math.Identity())
	hiddenSelected.Hidden = true
	hiddenSelected.IsSelected = true
	camera := &scene.StaticObject{ObjectName: "camera", ObjectKind: scene.KindCamera, IsSelected: true}

	objs := []scene.Object{visible, hidden, selected, camera, nil, hiddenSelected}

	tests := []struct {
		sel  Selection
		want []string
	}{
		{SelectAll, []string{"visible", "hidden", "selected", "hidden-selected"}},
		{SelectVisible, []string{"visible", "selected"}},
		{SelectSelected, []string{"selected", "hidden-selected"}},
	}

	for _, tt := range tests {
		t.Run(tt.sel.String(), func(t *testing.T) {
			got := SelectObjects(objs, tt.sel)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d objects, want %v", len(got), tt.want)
			}
			for i, obj := range got {
				if obj.Name() != tt.want[i] {
					t.Errorf("object %d = %q, want %q", i, obj.Name(), tt.want[i])
				}
			}
		})
	}
}
