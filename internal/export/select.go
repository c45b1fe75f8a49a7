package export

import (
	"go.uber.org/zap"

	"github.com/Faultbox/pmx-export/internal/logger"
	"github.com/Faultbox/pmx-export/pkg/scene"
)

// SelectObjects returns the mesh objects chosen by sel, in scene order.
func SelectObjects(objs []scene.Object, sel Selection) []scene.Object {
	out := make([]scene.Object, 0, len(objs))
	for _, obj := range objs {
		if obj == nil {
			continue
		}
		if obj.Kind() != scene.KindMesh {
			logger.Debug("skipping non-mesh object",
				zap.String("object", obj.Name()),
				zap.Stringer("kind", obj.Kind()))
			continue
		}
		switch sel {
		case SelectVisible:
			if !obj.Visible() {
				logger.Debug("skipping hidden object", zap.String("object", obj.Name()))
				continue
			}
		case SelectSelected:
			if !obj.Selected() {
				logger.Debug("skipping unselected object", zap.String("object", obj.Name()))
				continue
			}
		}
		out = append(out, obj)
	}
	return out
}
