package sceneconfig

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"sort"

	"github.com/taigrr/haywire/pkg/math3d"
	"github.com/taigrr/haywire/pkg/models"
	"github.com/taigrr/haywire/pkg/render"
)

// World is a built scene ready for drawing.
type World struct {
	Scene      *render.Scene
	Palette    []render.Color
	Background render.Color
}

func radians(v Vec3) math3d.Vec3 {
	return math3d.V3(v[0]*math.Pi/180, v[1]*math.Pi/180, v[2]*math.Pi/180)
}

func (v Vec3) vec() math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}

// Build loads every mesh through reg and assembles the scene. A mesh file
// of an unsupported type is logged by the registry and replaced with an
// empty mesh; any other load failure is returned.
func (c Config) Build(reg *models.Registry, logger *slog.Logger) (*World, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	w := &World{}
	w.Background, _ = render.ParseHexColor(c.Background)
	w.Palette = c.palette()

	cam := render.NewCamera()
	cam.SetPosition(c.Camera.Position.vec())
	cam.Pose.Rotation = radians(c.Camera.Rotation)
	cam.FOV = c.Camera.FOV * math.Pi / 180
	cam.Near = c.Camera.Near
	cam.Far = c.Camera.Far
	if c.Camera.LookAt != nil {
		cam.LookAt(c.Camera.LookAt.vec())
	}
	if err := cam.Validate(); err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}
	w.Scene = render.NewScene(cam)

	// Sorted so mesh handles are stable between loads of the same file.
	names := make([]string, 0, len(c.Meshes))
	for name := range c.Meshes {
		names = append(names, name)
	}
	sort.Strings(names)

	ids := make(map[string]render.MeshID, len(names))
	for _, name := range names {
		mesh, err := c.loadMesh(reg, name, c.Meshes[name])
		if err != nil {
			return nil, err
		}
		id, err := w.Scene.AddMesh(mesh)
		if err != nil {
			return nil, fmt.Errorf("mesh %q: %w", name, err)
		}
		ids[name] = id
		logger.Debug("scene mesh", "name", name, "triangles", mesh.TriangleCount())
	}

	for _, o := range c.Objects {
		pose := render.NewModelMatrix()
		pose.Translation = o.Position.vec()
		pose.Rotation = radians(o.Rotation)
		if o.Scale != nil {
			pose.Scale = o.Scale.vec()
		}
		obj, err := w.Scene.AddObject(o.Name, ids[o.Mesh], pose)
		if err != nil {
			return nil, err
		}
		obj.Hidden = o.Hidden
	}

	logger.Info("scene built",
		"meshes", len(w.Scene.Meshes),
		"objects", len(w.Scene.Objects),
		"triangles", w.Scene.TriangleCount(),
	)
	return w, nil
}

func (c Config) loadMesh(reg *models.Registry, name string, mc MeshConfig) (*models.Mesh, error) {
	var mesh *models.Mesh
	if mc.Builtin == BuiltinCube {
		mesh = models.Cube(mc.Size)
	} else {
		path := mc.Path
		if !filepath.IsAbs(path) && c.BaseDir != "" {
			path = filepath.Join(c.BaseDir, path)
		}
		var err error
		mesh, err = reg.Load(path)
		if err != nil && !errors.Is(err, models.ErrUnsupportedFormat) {
			return nil, fmt.Errorf("mesh %q: %w", name, err)
		}
	}

	mesh.Name = name
	if mc.Flat {
		mesh.Normals = nil
	}
	if mc.Fit > 0 {
		mesh = mesh.Fitted(mc.Fit)
	}
	return mesh, nil
}

func (c Config) palette() []render.Color {
	switch {
	case len(c.Palette) > 0:
		p := make([]render.Color, len(c.Palette))
		for i, s := range c.Palette {
			p[i], _ = render.ParseHexColor(s)
		}
		return p
	case c.PaletteSize > 0:
		return render.GeneratePalette(c.PaletteSize)
	default:
		return render.DefaultPalette()
	}
}
