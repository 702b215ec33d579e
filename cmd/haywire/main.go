// haywire - terminal software rasterizer
// Draws a scene file or a single model in the terminal with depth-buffered,
// flat/Gouraud-lit triangles.
//
// Controls:
//
//	Mouse drag  - Orbit the camera (yaw/pitch)
//	Scroll      - Zoom in/out
//	W/S         - Orbit pitch
//	A/D         - Orbit yaw
//	Space       - Apply random impulse
//	R           - Reset view and light
//	P           - Toggle object spin
//	C           - Toggle frustum culling (output is identical either way)
//	L           - Light positioning mode (move mouse, click to set, Esc to cancel)
//	?           - Toggle HUD overlay (FPS, title, triangle count, frame stats)
//	+/-         - Adjust zoom
//	Esc         - Quit (or cancel light mode)
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/haywire/pkg/math3d"
	"github.com/taigrr/haywire/pkg/render"
	"github.com/taigrr/haywire/pkg/sceneconfig"
	"github.com/taigrr/haywire/pkg/viewer"
)

var (
	targetFPS = flag.Int("fps", 60, "Target FPS")
	bgColor   = flag.String("bg", "", "Background color (#rrggbb), overrides the scene")
	scenePath = flag.String("scene", "", "Scene file (YAML)")
	watch     = flag.Bool("watch", false, "Reload the scene file when it changes")
	spin      = flag.Bool("spin", false, "Rotate every object each frame")
	logLevel  = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	logFile   = flag.String("log-file", "", "Write logs to this file instead of stderr")
	pngPath   = flag.String("png", "", "Render one frame to this PNG file and exit")
	pngWidth  = flag.Int("width", 640, "Width of the -png frame")
	pngHeight = flag.Int("height", 360, "Height of the -png frame")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "haywire - terminal software rasterizer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: haywire [options] [model.obj|model.stl|model.glb]\n")
		fmt.Fprintf(os.Stderr, "       haywire [options] -scene scene.yaml\n\n")
		fmt.Fprintf(os.Stderr, "With no model or scene a cube is shown.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Orbit camera\n")
		fmt.Fprintf(os.Stderr, "  Scroll      - Zoom in/out\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Orbit pitch and yaw\n")
		fmt.Fprintf(os.Stderr, "  Space       - Random spin\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset view\n")
		fmt.Fprintf(os.Stderr, "  P           - Toggle object spin\n")
		fmt.Fprintf(os.Stderr, "  C           - Toggle frustum culling\n")
		fmt.Fprintf(os.Stderr, "  L           - Position light (mouse to aim, click to set)\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if flag.NArg() > 1 || (flag.NArg() == 1 && *scenePath != "") {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig returns the scene to show and a title for it.
func loadConfig(modelPath string) (sceneconfig.Config, string, error) {
	if *scenePath != "" {
		cfg, err := sceneconfig.Load(*scenePath)
		return cfg, filepath.Base(*scenePath), err
	}
	title := "cube"
	if modelPath != "" {
		title = filepath.Base(modelPath)
	}
	return sceneconfig.ForModel(modelPath), title, nil
}

func run(modelPath string) error {
	interactive := *pngPath == ""

	// The alternate screen owns the terminal while running, so logs are
	// held back and written to stderr on exit.
	var held bytes.Buffer
	var logOut io.Writer = os.Stderr
	if interactive {
		logOut = &held
	}
	logger, closeLog, err := viewer.NewLogger(*logLevel, *logFile, logOut)
	if err != nil {
		return err
	}
	defer closeLog()
	defer func() { os.Stderr.Write(held.Bytes()) }()

	cfg, title, err := loadConfig(modelPath)
	if err != nil {
		return err
	}
	session, err := viewer.NewSession(cfg, viewer.Options{
		FPS:        *targetFPS,
		Background: *bgColor,
		Spin:       *spin,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	if !interactive {
		if err := session.Snapshot(*pngPath, *pngWidth, *pngHeight); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		logger.Info("wrote frame", "path", *pngPath, "stats", session.Rasterizer.Stats)
		return nil
	}

	var updates <-chan sceneconfig.Config
	if *watch && *scenePath != "" {
		w, err := sceneconfig.Watch(*scenePath, logger)
		if err != nil {
			return err
		}
		defer w.Close()
		updates = w.Updates()
	}

	return loop(session, title, updates, logger)
}

func loop(session *viewer.Session, title string, updates <-chan sceneconfig.Config, logger *slog.Logger) error {
	term := uv.DefaultTerminal()

	cols, rows, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(cols, rows)

	// Enable mouse mode
	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Display()
		term.Shutdown(context.Background())
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hud := NewHUD(title)
	ctl := newControls(session)

	targetDuration := time.Second / time.Duration(*targetFPS)
	lastFrame := time.Now()

	for {
		if ctx.Err() != nil {
			return nil
		}

		// Input is applied on this goroutine only, between frames.
	drain:
		for {
			select {
			case ev := <-term.Events():
				if size, ok := ev.(uv.WindowSizeEvent); ok {
					cols, rows = size.Width, size.Height
					term.Erase()
					term.Resize(cols, rows)
					continue
				}
				if ctl.handle(ev, cols, rows) {
					return nil
				}
			default:
				break drain
			}
		}

		if session.Poll(updates) {
			ctl.reset()
			logger.Debug("scene swapped", "triangles", session.World.Scene.TriangleCount())
		}

		now := time.Now()
		dt := min(now.Sub(lastFrame).Seconds(), 0.1)
		lastFrame = now
		ctl.step(dt)

		fbWidth, fbHeight := render.TerminalSize(cols, rows)
		if err := session.Frame(fbWidth, fbHeight); err != nil {
			return fmt.Errorf("draw: %w", err)
		}
		session.Rasterizer.Color.Draw(term, uv.Rect(0, 0, cols, rows))

		hud.UpdateFPS()
		hud.Draw(term, cols, rows, ctl, session.Rasterizer.Stats, session.World.Scene.TriangleCount())

		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}

		// Frame timing
		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}

const (
	torqueStrength = 3.0
	dragScale      = 0.03
	zoomStep       = 0.5
)

// controls maps terminal input onto the session: orbit torque, zoom, light
// aiming and the mode toggles shown by the HUD.
type controls struct {
	session *viewer.Session

	torque struct{ pitch, yaw float64 }

	mouseDown              bool
	lastMouseX, lastMouseY int

	lightMode  bool
	savedLight math3d.Vec3
	showHUD    bool
}

func newControls(s *viewer.Session) *controls {
	return &controls{session: s, showHUD: true}
}

func (c *controls) spin() bool    { return c.session.Spin }
func (c *controls) culling() bool { return !c.session.Rasterizer.DisableFrustumCulling }

// handle applies one event and reports whether the user asked to quit.
func (c *controls) handle(ev uv.Event, cols, rows int) bool {
	orbit := c.session.Orbit

	switch ev := ev.(type) {
	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("escape"):
			if !c.lightMode {
				return true
			}
			c.lightMode = false
			c.session.Rasterizer.LightDir = c.savedLight
		case ev.MatchString("ctrl+c"):
			return true
		case ev.MatchString("r"):
			c.reset()
			c.session.Rasterizer.LightDir = math3d.V3(0, 0, -1)
		case ev.MatchString("w", "up"):
			c.torque.pitch = torqueStrength
		case ev.MatchString("s", "down"):
			c.torque.pitch = -torqueStrength
		case ev.MatchString("a", "left"):
			c.torque.yaw = -torqueStrength
		case ev.MatchString("d", "right"):
			c.torque.yaw = torqueStrength
		case ev.MatchString("space"):
			orbit.ApplyImpulse(
				(rand.Float64()-0.5)*0.5,
				(rand.Float64()-0.5)*1.5,
			)
		case ev.MatchString("+", "="):
			orbit.Zoom(-zoomStep)
		case ev.MatchString("-", "_"):
			orbit.Zoom(zoomStep)
		case ev.MatchString("p"):
			c.session.Spin = !c.session.Spin
		case ev.MatchString("c"):
			c.session.Rasterizer.DisableFrustumCulling = !c.session.Rasterizer.DisableFrustumCulling
		case ev.MatchString("l"):
			c.lightMode = true
			c.savedLight = c.session.Rasterizer.LightDir
		case ev.MatchString("?"), ev.MatchString("shift+/"):
			c.showHUD = !c.showHUD
		}

	case uv.KeyReleaseEvent:
		switch {
		case ev.MatchString("w", "up", "s", "down"):
			c.torque.pitch = 0
		case ev.MatchString("a", "left", "d", "right"):
			c.torque.yaw = 0
		}

	case uv.MouseClickEvent:
		if c.lightMode {
			c.lightMode = false
			return false
		}
		c.mouseDown = true
		c.lastMouseX, c.lastMouseY = ev.X, ev.Y

	case uv.MouseReleaseEvent:
		c.mouseDown = false

	case uv.MouseMotionEvent:
		switch {
		case c.lightMode:
			c.session.AimLight(ev.X, ev.Y, cols, rows)
		case c.mouseDown:
			dx := ev.X - c.lastMouseX
			dy := ev.Y - c.lastMouseY
			orbit.ApplyImpulse(float64(dy)*dragScale, float64(-dx)*dragScale)
			c.lastMouseX, c.lastMouseY = ev.X, ev.Y
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			orbit.Zoom(-zoomStep)
		case uv.MouseWheelDown:
			orbit.Zoom(zoomStep)
		}
	}
	return false
}

// step applies held-key torque for dt seconds. Key release events are not
// reported by every terminal, so torque also decays on its own.
func (c *controls) step(dt float64) {
	c.session.Orbit.ApplyImpulse(c.torque.pitch*dt, c.torque.yaw*dt)
	c.torque.pitch *= 0.9
	c.torque.yaw *= 0.9
}

func (c *controls) reset() {
	c.session.Orbit.Reset()
	c.torque.pitch, c.torque.yaw = 0, 0
	c.mouseDown = false
}
