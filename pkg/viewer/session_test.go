package viewer

import (
	"bytes"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/haywire/pkg/math3d"
	"github.com/taigrr/haywire/pkg/render"
	"github.com/taigrr/haywire/pkg/sceneconfig"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSession(t *testing.T, opts Options) *Session {
	t.Helper()
	opts.Logger = quietLogger()
	s, err := NewSession(sceneconfig.ForModel(""), opts)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	return s
}

func TestSessionFrameDrawsModel(t *testing.T) {
	s := newTestSession(t, Options{})
	if err := s.Frame(64, 48); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}

	r := s.Rasterizer
	if r.Width() != 64 || r.Height() != 48 {
		t.Fatalf("buffers %dx%d, want 64x48", r.Width(), r.Height())
	}
	if r.Stats.ObjectsDrawn != 1 {
		t.Errorf("ObjectsDrawn = %d, want 1", r.Stats.ObjectsDrawn)
	}
	bg := render.Pack(s.Background())
	if got := r.Color.Get(24, 32); got == bg {
		t.Error("center pixel is background, expected the cube")
	}
	if got := r.Color.Get(0, 0); got != bg {
		t.Errorf("corner pixel = %#06x, want background %#06x", got, bg)
	}
}

func TestSessionBackgroundOverride(t *testing.T) {
	s := newTestSession(t, Options{Background: "#ff0000"})
	if err := s.Frame(16, 16); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if got := s.Rasterizer.Color.Get(0, 0); got != render.Pack(render.ColorRed) {
		t.Errorf("corner = %#06x, want red", got)
	}

	_, err := NewSession(sceneconfig.ForModel(""), Options{Background: "red", Logger: quietLogger()})
	if err == nil {
		t.Error("NewSession() with a bad background succeeded")
	}
}

func TestSessionZeroSizeFrame(t *testing.T) {
	s := newTestSession(t, Options{})
	if err := s.Frame(0, 0); err != nil {
		t.Errorf("Frame(0, 0) error = %v", err)
	}
}

func TestSessionSpin(t *testing.T) {
	s := newTestSession(t, Options{Spin: true})
	for range 3 {
		if err := s.Frame(8, 8); err != nil {
			t.Fatal(err)
		}
	}
	obj, _ := s.World.Scene.Object("model")
	if want := spinStep.Scale(3); !near(obj.Transform.Rotation, want) {
		t.Errorf("rotation = %v, want %v", obj.Transform.Rotation, want)
	}
}

func TestSessionPoll(t *testing.T) {
	s := newTestSession(t, Options{})
	updates := make(chan sceneconfig.Config, 1)

	if s.Poll(updates) {
		t.Error("Poll() on an empty channel reported a change")
	}

	cfg := sceneconfig.ForModel("")
	cfg.Background = "#00ff00"
	updates <- cfg
	if !s.Poll(updates) {
		t.Fatal("Poll() did not apply the update")
	}
	if s.World.Background != render.ColorGreen {
		t.Errorf("Background = %v, want green", s.World.Background)
	}

	bad := sceneconfig.ForModel("")
	bad.Objects = append(bad.Objects, sceneconfig.ObjectConfig{Name: "ghost", Mesh: "missing"})
	updates <- bad
	if s.Poll(updates) {
		t.Error("Poll() applied a scene with an unknown mesh")
	}
	if s.World.Background != render.ColorGreen {
		t.Error("failed rebuild replaced the world")
	}

	close(updates)
	if s.Poll(updates) {
		t.Error("Poll() on a closed channel reported a change")
	}
}

func TestSessionSnapshot(t *testing.T) {
	s := newTestSession(t, Options{})
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := s.Snapshot(path, 40, 30); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("image %v, want 40x30", b)
	}
}

func TestScreenToLight(t *testing.T) {
	tests := []struct {
		name string
		x, y int
		want math3d.Vec3
	}{
		{"center", 50, 50, math3d.V3(0, 0, 1)},
		{"right edge", 100, 50, math3d.V3(1, 0, 0)},
		{"top edge", 50, 0, math3d.V3(0, 1, 0)},
		{"corner", 0, 0, math3d.V3(-1, 1, 0).Normalize()},
		{"empty view", 0, 0, math3d.V3(0, 0, 1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, h := 100, 100
			if tc.name == "empty view" {
				w, h = 0, 0
			}
			got := ScreenToLight(tc.x, tc.y, w, h)
			if !near(got, tc.want) {
				t.Errorf("ScreenToLight() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAimLightFollowsCamera(t *testing.T) {
	s := newTestSession(t, Options{})
	s.AimLight(50, 50, 100, 100)

	// Camera at +Z looking at the origin: a light behind the viewer
	// travels down -Z.
	if !near(s.Rasterizer.LightDir, math3d.V3(0, 0, -1)) {
		t.Errorf("LightDir = %v, want (0, 0, -1)", s.Rasterizer.LightDir)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := NewLogger("debug", "", &buf)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	logger.Debug("hello", "k", 1)
	if err := closeFn(); err != nil {
		t.Errorf("close: %v", err)
	}
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("log output %q missing debug record", buf.String())
	}

	if _, _, err := NewLogger("loud", "", &buf); err == nil {
		t.Error("NewLogger() accepted an unknown level")
	}

	path := filepath.Join(t.TempDir(), "haywire.log")
	logger, closeFn, err = NewLogger("warn", path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("dropped")
	logger.Warn("kept")
	closeFn()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "dropped") || !strings.Contains(string(data), "kept") {
		t.Errorf("log file = %q", data)
	}
}
