// haywire-window - desktop window front end for the haywire rasterizer.
// Draws into a CPU buffer each tick and blits it to an ebiten window.
//
// Controls:
//
//	Mouse drag  - Orbit the camera
//	Wheel       - Zoom in/out
//	W/S/A/D     - Orbit pitch and yaw (arrows work too)
//	Space       - Apply random impulse
//	R           - Reset view and light
//	P           - Toggle object spin
//	C           - Toggle frustum culling
//	L           - Light positioning mode (move mouse, click to set, Esc to cancel)
//	Esc         - Quit (or cancel light mode)
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/taigrr/haywire/pkg/sceneconfig"
	"github.com/taigrr/haywire/pkg/viewer"
)

var (
	targetFPS = flag.Int("fps", 60, "Target ticks per second")
	bgColor   = flag.String("bg", "", "Background color (#rrggbb), overrides the scene")
	scenePath = flag.String("scene", "", "Scene file (YAML)")
	watch     = flag.Bool("watch", false, "Reload the scene file when it changes")
	spin      = flag.Bool("spin", false, "Rotate every object each frame")
	logLevel  = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	logFile   = flag.String("log-file", "", "Write logs to this file instead of stderr")
	winWidth  = flag.Int("width", 1280, "Window width")
	winHeight = flag.Int("height", 720, "Window height")
	scale     = flag.Int("scale", 1, "Window pixels per rendered pixel")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "haywire-window - desktop software rasterizer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: haywire-window [options] [model.obj|model.stl|model.glb]\n")
		fmt.Fprintf(os.Stderr, "       haywire-window [options] -scene scene.yaml\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
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

func run(modelPath string) error {
	logger, closeLog, err := viewer.NewLogger(*logLevel, *logFile, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	var cfg sceneconfig.Config
	title := "haywire"
	switch {
	case *scenePath != "":
		cfg, err = sceneconfig.Load(*scenePath)
		if err != nil {
			return err
		}
		title += " - " + filepath.Base(*scenePath)
	default:
		cfg = sceneconfig.ForModel(modelPath)
		if modelPath != "" {
			title += " - " + filepath.Base(modelPath)
		}
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

	var updates <-chan sceneconfig.Config
	if *watch && *scenePath != "" {
		w, err := sceneconfig.Watch(*scenePath, logger)
		if err != nil {
			return err
		}
		defer w.Close()
		updates = w.Updates()
	}

	return runWindow(session, updates, windowOptions{
		title:  title,
		width:  *winWidth,
		height: *winHeight,
		scale:  max(*scale, 1),
		tps:    *targetFPS,
	})
}

type windowOptions struct {
	title         string
	width, height int
	scale         int
	tps           int
}
