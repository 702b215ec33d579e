// Package sceneconfig loads haywire scenes from YAML files.
//
// A scene file names its meshes, places objects that reference them, and
// positions the camera. Angles are written in degrees.
//
//	background: "#101018"
//	paletteSize: 8
//	camera:
//	  position: [0, 1, 4]
//	  lookAt: [0, 0, 0]
//	  fov: 60
//	meshes:
//	  box: {builtin: cube, size: 1}
//	  ship: {path: models/ship.glb, fit: 2}
//	objects:
//	  - {mesh: box, position: [-1.5, 0, 0]}
//	  - {mesh: ship, rotation: [0, 90, 0], scale: [1, 1, 2]}
package sceneconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/taigrr/haywire/pkg/render"
)

// Configuration errors.
var (
	ErrUnknownMesh = errors.New("unknown mesh")
	ErrInvalidMesh = errors.New("invalid mesh definition")
)

// Builtin mesh names.
const BuiltinCube = "cube"

// Vec3 is written as a three element sequence.
type Vec3 [3]float64

// Config is the on-disk scene description.
type Config struct {
	Background  string                `yaml:"background,omitempty"`
	Palette     []string              `yaml:"palette,omitempty"`
	PaletteSize int                   `yaml:"paletteSize,omitempty"`
	Camera      CameraConfig          `yaml:"camera"`
	Meshes      map[string]MeshConfig `yaml:"meshes"`
	Objects     []ObjectConfig        `yaml:"objects"`

	// BaseDir resolves relative mesh paths. Load sets it to the directory
	// of the scene file.
	BaseDir string `yaml:"-"`
}

// CameraConfig positions the camera. When LookAt is set it overrides
// Rotation.
type CameraConfig struct {
	Position Vec3    `yaml:"position"`
	Rotation Vec3    `yaml:"rotation,omitempty"`
	LookAt   *Vec3   `yaml:"lookAt,omitempty"`
	FOV      float64 `yaml:"fov,omitempty"`
	Near     float64 `yaml:"near,omitempty"`
	Far      float64 `yaml:"far,omitempty"`
}

// MeshConfig is either a file or a builtin shape.
type MeshConfig struct {
	Path    string  `yaml:"path,omitempty"`
	Builtin string  `yaml:"builtin,omitempty"`
	Size    float64 `yaml:"size,omitempty"`

	// Fit recenters the mesh and scales its largest dimension to Fit units.
	Fit float64 `yaml:"fit,omitempty"`

	// Flat drops vertex normals so faces are shaded flat.
	Flat bool `yaml:"flat,omitempty"`
}

// ObjectConfig places one mesh instance.
type ObjectConfig struct {
	Name     string `yaml:"name,omitempty"`
	Mesh     string `yaml:"mesh"`
	Position Vec3   `yaml:"position,omitempty"`
	Rotation Vec3   `yaml:"rotation,omitempty"`
	Scale    *Vec3  `yaml:"scale,omitempty"`
	Hidden   bool   `yaml:"hidden,omitempty"`
}

// Defaults applied by normalize.
const (
	DefaultFOV  = 60.0
	DefaultNear = 0.1
	DefaultFar  = 100.0
)

func (c *Config) normalize() {
	if c.Background == "" {
		c.Background = "#000000"
	}
	if c.Camera.FOV == 0 {
		c.Camera.FOV = DefaultFOV
	}
	if c.Camera.Near == 0 {
		c.Camera.Near = DefaultNear
	}
	if c.Camera.Far == 0 {
		c.Camera.Far = DefaultFar
	}
	for name, m := range c.Meshes {
		if m.Builtin != "" && m.Size == 0 {
			m.Size = 1
		}
		c.Meshes[name] = m
	}
	for i := range c.Objects {
		if c.Objects[i].Name == "" {
			c.Objects[i].Name = fmt.Sprintf("%s#%d", c.Objects[i].Mesh, i)
		}
	}
}

// Validate checks references and values that do not need file access.
func (c *Config) Validate() error {
	if _, err := render.ParseHexColor(c.Background); err != nil {
		return fmt.Errorf("background: %w", err)
	}
	for i, s := range c.Palette {
		if _, err := render.ParseHexColor(s); err != nil {
			return fmt.Errorf("palette[%d]: %w", i, err)
		}
	}
	if c.PaletteSize < 0 {
		return fmt.Errorf("paletteSize %d is negative", c.PaletteSize)
	}
	for name, m := range c.Meshes {
		switch {
		case m.Path != "" && m.Builtin != "":
			return fmt.Errorf("mesh %q: %w: path and builtin are exclusive", name, ErrInvalidMesh)
		case m.Path == "" && m.Builtin == "":
			return fmt.Errorf("mesh %q: %w: needs a path or a builtin", name, ErrInvalidMesh)
		case m.Builtin != "" && m.Builtin != BuiltinCube:
			return fmt.Errorf("mesh %q: %w: unknown builtin %q", name, ErrInvalidMesh, m.Builtin)
		case m.Fit < 0:
			return fmt.Errorf("mesh %q: %w: negative fit", name, ErrInvalidMesh)
		}
	}
	for i, o := range c.Objects {
		if _, ok := c.Meshes[o.Mesh]; !ok {
			return fmt.Errorf("objects[%d]: %w %q", i, ErrUnknownMesh, o.Mesh)
		}
	}
	return nil
}

// ForModel returns a scene showing the mesh file at path fitted to a two
// unit box in front of the camera. An empty path shows the builtin cube.
func ForModel(path string) Config {
	mesh := MeshConfig{Builtin: BuiltinCube, Size: 2}
	if path != "" {
		mesh = MeshConfig{Path: path, Fit: 2}
	}
	origin := Vec3{}
	c := Config{
		Camera:  CameraConfig{Position: Vec3{0, 0, 5}, LookAt: &origin},
		Meshes:  map[string]MeshConfig{"model": mesh},
		Objects: []ObjectConfig{{Name: "model", Mesh: "model"}},
	}
	c.normalize()
	return c
}

// Parse decodes, normalizes and validates a scene.
func Parse(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse scene: %w", err)
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads a scene file. Relative mesh paths resolve against its
// directory.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read scene: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	c.BaseDir = filepath.Dir(path)
	return c, nil
}

// Write encodes c as YAML to path.
func Write(path string, c Config) error {
	c.normalize()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scene: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(&c); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close scene: %w", err)
	}
	return nil
}
