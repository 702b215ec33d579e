package sceneconfig

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/taigrr/haywire/pkg/models"
	"github.com/taigrr/haywire/pkg/render"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const sampleScene = `
background: "#102030"
palette: ["#ff0000", "#00ff00"]
camera:
  position: [0, 0, 5]
  rotation: [0, 90, 0]
  fov: 90
  near: 0.5
  far: 50
meshes:
  box: {builtin: cube, size: 2}
objects:
  - {name: left, mesh: box, position: [-2, 0, 0]}
  - mesh: box
    position: [2, 0, 0]
    rotation: [0, 45, 0]
    scale: [1, 2, 1]
    hidden: true
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sampleScene))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Camera.Position != (Vec3{0, 0, 5}) || c.Camera.FOV != 90 {
		t.Errorf("camera = %+v", c.Camera)
	}
	if got := c.Meshes["box"]; got.Builtin != BuiltinCube || got.Size != 2 {
		t.Errorf("mesh = %+v", got)
	}
	if len(c.Objects) != 2 {
		t.Fatalf("objects = %d, want 2", len(c.Objects))
	}
	if c.Objects[1].Name != "box#1" {
		t.Errorf("default object name = %q, want box#1", c.Objects[1].Name)
	}
	if c.Objects[1].Scale == nil || *c.Objects[1].Scale != (Vec3{1, 2, 1}) {
		t.Errorf("scale = %v", c.Objects[1].Scale)
	}
}

func TestParseDefaults(t *testing.T) {
	c, err := Parse([]byte("meshes:\n  m: {builtin: cube}\nobjects:\n  - {mesh: m}\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Background != "#000000" {
		t.Errorf("background = %q", c.Background)
	}
	if c.Camera.FOV != DefaultFOV || c.Camera.Near != DefaultNear || c.Camera.Far != DefaultFar {
		t.Errorf("camera defaults = %+v", c.Camera)
	}
	if c.Meshes["m"].Size != 1 {
		t.Errorf("builtin size = %v, want 1", c.Meshes["m"].Size)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"unknown mesh", "objects:\n  - {mesh: nope}\n", ErrUnknownMesh},
		{"no source", "meshes:\n  m: {size: 1}\n", ErrInvalidMesh},
		{"both sources", "meshes:\n  m: {builtin: cube, path: a.obj}\n", ErrInvalidMesh},
		{"unknown builtin", "meshes:\n  m: {builtin: teapot}\n", ErrInvalidMesh},
		{"bad background", "background: blue\n", nil},
		{"bad palette", "palette: [\"#12\"]\n", nil},
		{"bad yaml", "meshes: [\n", nil},
		{"short vector", "camera: {position: [1, 2]}\n", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	c, err := Parse([]byte(sampleScene))
	if err != nil {
		t.Fatal(err)
	}
	w, err := c.Build(models.NewRegistry(quietLogger()), quietLogger())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if w.Background != render.RGB(0x10, 0x20, 0x30) {
		t.Errorf("background = %v", w.Background)
	}
	if len(w.Palette) != 2 || w.Palette[1] != render.ColorGreen {
		t.Errorf("palette = %v", w.Palette)
	}

	cam := w.Scene.Camera
	if math.Abs(cam.FOV-math.Pi/2) > 1e-12 || cam.Near != 0.5 || cam.Far != 50 {
		t.Errorf("camera = %+v", cam)
	}
	if math.Abs(cam.Pose.Rotation.Y-math.Pi/2) > 1e-12 {
		t.Errorf("camera yaw = %v, want pi/2", cam.Pose.Rotation.Y)
	}

	if len(w.Scene.Meshes) != 1 || len(w.Scene.Objects) != 2 {
		t.Fatalf("meshes %d objects %d", len(w.Scene.Meshes), len(w.Scene.Objects))
	}
	right := w.Scene.Objects[1]
	if right.Mesh != w.Scene.Objects[0].Mesh {
		t.Error("objects should share the mesh")
	}
	if !right.Hidden || !right.Transform.InverseNeededForNormals() {
		t.Errorf("right object = %+v", right)
	}
	if size := w.Scene.Meshes[0].Size(); size.X != 2 {
		t.Errorf("cube size = %v, want 2", size)
	}
}

func TestBuildLookAt(t *testing.T) {
	c, err := Parse([]byte("camera: {position: [0, 0, 5], lookAt: [5, 0, 5]}\n"))
	if err != nil {
		t.Fatal(err)
	}
	w, err := c.Build(models.NewRegistry(quietLogger()), quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if f := w.Scene.Camera.Forward(); math.Abs(f.X-1) > 1e-9 {
		t.Errorf("forward = %v, want +X", f)
	}
}

func TestBuildMeshFiles(t *testing.T) {
	dir := t.TempDir()
	obj := "v 0 0 0\nv 4 0 0\nv 4 2 0\nf 1 2 3\n"
	if err := os.WriteFile(filepath.Join(dir, "tri.obj"), []byte(obj), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "thing.xyz"), []byte("?"), 0o644); err != nil {
		t.Fatal(err)
	}

	scene := `
meshes:
  tri: {path: tri.obj, fit: 2, flat: true}
  odd: {path: thing.xyz}
objects:
  - {mesh: tri}
  - {mesh: odd}
`
	path := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(path, []byte(scene), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.BaseDir != dir {
		t.Errorf("BaseDir = %q, want %q", c.BaseDir, dir)
	}

	w, err := c.Build(models.NewRegistry(quietLogger()), quietLogger())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Meshes are added in name order: odd, tri.
	odd, tri := w.Scene.Meshes[0], w.Scene.Meshes[1]
	if odd.Name != "odd" || odd.TriangleCount() != 0 {
		t.Errorf("unsupported mesh should degrade to empty, got %q with %d triangles", odd.Name, odd.TriangleCount())
	}
	if tri.TriangleCount() != 1 || tri.HasNormals() {
		t.Errorf("tri: %d triangles, normals %v", tri.TriangleCount(), tri.HasNormals())
	}
	if size := tri.Size(); math.Abs(size.X-2) > 1e-12 || math.Abs(size.Y-1) > 1e-12 {
		t.Errorf("fitted size = %v, want (2, 1, 0)", size)
	}
}

func TestForModel(t *testing.T) {
	c := ForModel("")
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if m := c.Meshes["model"]; m.Builtin != BuiltinCube || m.Size != 2 {
		t.Errorf("default mesh = %+v, want a size 2 cube", m)
	}

	c = ForModel("ship.glb")
	if m := c.Meshes["model"]; m.Path != "ship.glb" || m.Fit != 2 {
		t.Errorf("model mesh = %+v", m)
	}
	if c.Camera.LookAt == nil || c.Camera.FOV != DefaultFOV {
		t.Errorf("camera = %+v, want defaults looking at the origin", c.Camera)
	}
}

func TestBuildMissingFile(t *testing.T) {
	c, err := Parse([]byte("meshes:\n  m: {path: /does/not/exist.obj}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Build(models.NewRegistry(quietLogger()), quietLogger()); err == nil {
		t.Error("expected error for missing mesh file")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	c, err := Parse([]byte(sampleScene))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := Write(path, c); err != nil {
		t.Fatalf("Write: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(back.Objects) != 2 || back.Objects[0].Name != "left" || back.Camera.Far != 50 {
		t.Errorf("reloaded = %+v", back)
	}
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	write := func(s string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(s), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("background: \"#000000\"\n")

	w, err := Watch(path, quietLogger())
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	// A broken file is skipped, the next good one is delivered.
	write("meshes: [\n")
	write("background: \"#ffffff\"\n")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case c, ok := <-w.Updates():
			if !ok {
				t.Fatal("updates closed early")
			}
			if c.Background == "#ffffff" {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
}

func TestWatcherCloseEndsUpdates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := Watch(path, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, ok := <-w.Updates(); ok {
		t.Error("updates should be closed after Close")
	}
}
