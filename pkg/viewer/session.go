// Package viewer drives a haywire scene frame by frame for the terminal and
// window front ends: orbit input, scene reloads, light aiming and snapshots.
package viewer

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/taigrr/haywire/pkg/math3d"
	"github.com/taigrr/haywire/pkg/models"
	"github.com/taigrr/haywire/pkg/render"
	"github.com/taigrr/haywire/pkg/sceneconfig"
)

// spinStep is the per-frame object rotation applied when spinning.
var spinStep = math3d.V3(0.02, 0.01, 0)

// Options configures a Session.
type Options struct {
	FPS int

	// Background overrides the scene background when non-empty (hex).
	Background string

	// Spin rotates every object a little each frame.
	Spin bool

	Logger *slog.Logger
}

// Session owns the rasterizer and the current world.
type Session struct {
	Rasterizer *render.Rasterizer
	World      *sceneconfig.World
	Orbit      *Orbit
	Spin       bool

	registry   *models.Registry
	logger     *slog.Logger
	fps        int
	background *render.Color
}

// NewSession builds cfg and prepares a rasterizer for it.
func NewSession(cfg sceneconfig.Config, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fps := opts.FPS
	if fps <= 0 {
		fps = 60
	}

	s := &Session{
		Rasterizer: render.NewRasterizer(0, 0, logger),
		Spin:       opts.Spin,
		registry:   models.NewRegistry(logger),
		logger:     logger,
		fps:        fps,
	}
	if opts.Background != "" {
		bg, err := render.ParseHexColor(opts.Background)
		if err != nil {
			return nil, fmt.Errorf("background: %w", err)
		}
		s.background = &bg
	}
	if err := s.Load(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the world with cfg and resets the orbit to its camera. On
// error the current world is kept.
func (s *Session) Load(cfg sceneconfig.Config) error {
	w, err := cfg.Build(s.registry, s.logger)
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}
	s.World = w

	cam := w.Scene.Camera
	if t := cfg.Camera.LookAt; t != nil {
		s.Orbit = NewOrbitAround(cam, math3d.V3(t[0], t[1], t[2]), s.fps)
	} else {
		s.Orbit = NewOrbit(cam, s.fps)
	}
	return nil
}

// Poll applies the newest pending scene from updates without blocking. It
// reports whether the world changed.
func (s *Session) Poll(updates <-chan sceneconfig.Config) bool {
	select {
	case cfg, ok := <-updates:
		if !ok {
			return false
		}
		if err := s.Load(cfg); err != nil {
			s.logger.Warn("scene rebuild failed, keeping previous scene", "error", err)
			return false
		}
		return true
	default:
		return false
	}
}

// Background returns the color frames are cleared to.
func (s *Session) Background() render.Color {
	if s.background != nil {
		return *s.background
	}
	return s.World.Background
}

// Frame advances input and animation by one step and draws the world into
// a width x height buffer.
func (s *Session) Frame(width, height int) error {
	cam := s.World.Scene.Camera
	s.Orbit.Update()
	s.Orbit.Apply(cam)

	if s.Spin {
		for _, obj := range s.World.Scene.Objects {
			obj.Transform.Rotation = obj.Transform.Rotation.Add(spinStep)
		}
	}

	s.Rasterizer.BeginFrame(width, height, s.Background())
	if width <= 0 || height <= 0 {
		return nil
	}
	cam.SetAspectRatio(float64(width) / float64(height))
	return s.Rasterizer.DrawScene(s.World.Scene, s.World.Palette)
}

// Snapshot draws one frame and writes it to path as PNG.
func (s *Session) Snapshot(path string, width, height int) error {
	if err := s.Frame(width, height); err != nil {
		return err
	}
	return s.Rasterizer.Color.SavePNG(path)
}

// AimLight points the light from the screen position (x, y) of a width x
// height view toward the scene, as seen through the current camera.
func (s *Session) AimLight(x, y, width, height int) {
	toLight := ScreenToLight(x, y, width, height)
	world := s.World.Scene.Camera.Pose.RotationMatrix().MulDir(toLight)
	s.Rasterizer.LightDir = world.Negate()
}

// ScreenToLight maps a screen position onto the hemisphere facing the
// viewer and returns the camera-space direction toward the light. Screen y
// grows downward.
func ScreenToLight(x, y, width, height int) math3d.Vec3 {
	if width <= 0 || height <= 0 {
		return math3d.V3(0, 0, 1)
	}
	nx := (float64(x)/float64(width))*2 - 1
	ny := (float64(y)/float64(height))*2 - 1

	lenSq := nx*nx + ny*ny
	if lenSq > 1 {
		l := math.Sqrt(lenSq)
		nx /= l
		ny /= l
		lenSq = 1
	}
	nz := math.Sqrt(1 - lenSq)

	return math3d.V3(nx, -ny, nz)
}
