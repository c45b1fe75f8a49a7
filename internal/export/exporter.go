package export

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/pmx-export/internal/logger"
	"github.com/Faultbox/pmx-export/pkg/pmx"
	"github.com/Faultbox/pmx-export/pkg/scene"
)

// Stats summarizes one export run.
type Stats struct {
	Objects  int // objects exported
	Skipped  int // selected mesh objects whose geometry failed
	Vertices int
	Faces    int
	Sizes    pmx.IndexSizes
}

// Exporter runs the export pipeline with a fixed set of options.
type Exporter struct {
	opts     Options
	resolver PathResolver
}

// New creates an exporter. The options are validated once here.
func New(opts Options) (*Exporter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Exporter{
		opts:     opts,
		resolver: NewPathResolver(opts.PathMode, opts.Root),
	}, nil
}

// Options returns the exporter's options.
func (e *Exporter) Options() Options {
	return e.opts
}

// Build converts objs into a PMX model. Objects are filtered by the
// selection option; objects whose geometry cannot be produced are logged
// and skipped.
func (e *Exporter) Build(objs []scene.Object) (*pmx.Model, Stats) {
	var stats Stats

	selected := SelectObjects(objs, e.opts.Selection)
	parts := make([]*Part, 0, len(selected))
	for _, obj := range selected {
		log := logger.With(zap.String("object", obj.Name()))

		part, err := e.extract(obj)
		if err != nil {
			log.Warn("skipping object without geometry", zap.Error(err))
			stats.Skipped++
			continue
		}
		log.Debug("object extracted",
			zap.Int("vertices", len(part.Vertices)),
			zap.Int("faces", len(part.Faces)),
			zap.Bool("mirrored", part.Mirrored))
		parts = append(parts, part)
	}
	stats.Objects = len(parts)

	agg := Aggregate(parts, e.resolver)
	model := ToPMX(agg, e.opts.Encoding)

	stats.Vertices = len(model.Vertices)
	stats.Faces = len(model.Faces)
	stats.Sizes = model.IndexSizes()

	logger.Info("model built",
		zap.Int("objects", stats.Objects),
		zap.Int("skipped", stats.Skipped),
		zap.Int("vertices", stats.Vertices),
		zap.Int("faces", stats.Faces),
		zap.Int("materials", len(model.Materials)),
		zap.Int("textures", len(model.Textures)),
		zap.Bool("default_material", agg.DefaultMaterial),
		zap.Stringer("index_sizes", stats.Sizes))

	return model, stats
}

// extract triangulates one object and copies its geometry into a part.
// The host mesh is released before extract returns.
func (e *Exporter) extract(obj scene.Object) (*Part, error) {
	mesh, err := obj.Triangulate(e.opts.ApplyModifiers)
	if err != nil {
		return nil, err
	}
	defer mesh.Release()

	if mesh == nil {
		return nil, scene.ErrNoGeometry
	}
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	return NewPart(obj.Name(), obj.WorldMatrix(), mesh), nil
}

// Export builds the model and writes it to path. The destination is only
// replaced once the whole file has been written.
func (e *Exporter) Export(objs []scene.Object, path string) (Stats, error) {
	model, stats := e.Build(objs)
	if err := pmx.WriteFile(path, model); err != nil {
		return stats, fmt.Errorf("exporting %s: %w", path, err)
	}
	logger.Info("model written", zap.String("path", path))
	return stats, nil
}
