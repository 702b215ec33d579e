//go:build cgo

package main

import (
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/taigrr/haywire/pkg/math3d"
	"github.com/taigrr/haywire/pkg/sceneconfig"
	"github.com/taigrr/haywire/pkg/viewer"
)

const (
	keyTorque = 0.05
	dragScale = 0.01
	zoomStep  = 0.5
)

// runWindow opens a resizable window that shows the session and forwards
// keyboard and mouse input to it. It blocks until the window closes.
func runWindow(session *viewer.Session, updates <-chan sceneconfig.Config, opts windowOptions) error {
	g := &game{session: session, updates: updates, scale: opts.scale}

	ebiten.SetWindowTitle(opts.title)
	ebiten.SetWindowSize(opts.width, opts.height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(opts.tps)
	return ebiten.RunGame(g)
}

type game struct {
	session *viewer.Session
	updates <-chan sceneconfig.Config
	scale   int

	// Buffer size from the last Layout.
	width, height int

	img *ebiten.Image
	pix []byte

	dragging     bool
	lastX, lastY int

	lightMode  bool
	savedLight math3d.Vec3
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		if !g.lightMode {
			return ebiten.Termination
		}
		g.lightMode = false
		g.session.Rasterizer.LightDir = g.savedLight
	}

	if g.session.Poll(g.updates) {
		g.dragging = false
	}
	g.handleKeys()
	g.handleMouse()

	return g.session.Frame(g.width, g.height)
}

func (g *game) handleKeys() {
	s := g.session
	orbit := s.Orbit

	var pitch, yaw float64
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		pitch += keyTorque
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		pitch -= keyTorque
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		yaw -= keyTorque
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		yaw += keyTorque
	}
	if pitch != 0 || yaw != 0 {
		orbit.ApplyImpulse(pitch/float64(ebiten.TPS()), yaw/float64(ebiten.TPS()))
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		orbit.ApplyImpulse((rand.Float64()-0.5)*0.5, (rand.Float64()-0.5)*1.5)
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		orbit.Reset()
		s.Rasterizer.LightDir = math3d.V3(0, 0, -1)
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		s.Spin = !s.Spin
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		s.Rasterizer.DisableFrustumCulling = !s.Rasterizer.DisableFrustumCulling
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		g.lightMode = true
		g.savedLight = s.Rasterizer.LightDir
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd):
		orbit.Zoom(-zoomStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract):
		orbit.Zoom(zoomStep)
	}
}

func (g *game) handleMouse() {
	x, y := ebiten.CursorPosition()

	if g.lightMode {
		g.session.AimLight(x, y, g.width, g.height)
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			g.lightMode = false
		}
		return
	}

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.dragging = true
	case !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		g.dragging = false
	case g.dragging:
		dx, dy := x-g.lastX, y-g.lastY
		g.session.Orbit.ApplyImpulse(float64(dy)*dragScale, float64(-dx)*dragScale)
	}
	g.lastX, g.lastY = x, y

	if _, wy := ebiten.Wheel(); wy != 0 {
		g.session.Orbit.Zoom(-wy * zoomStep)
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	cb := g.session.Rasterizer.Color
	w, h := cb.Width(), cb.Height()
	if w == 0 || h == 0 {
		return
	}
	if g.img == nil || g.img.Bounds().Dx() != w || g.img.Bounds().Dy() != h {
		if g.img != nil {
			g.img.Deallocate()
		}
		g.img = ebiten.NewImage(w, h)
		g.pix = make([]byte, 4*w*h)
	}

	cb.CopyRGBA(g.pix)
	g.img.WritePixels(g.pix)
	screen.DrawImage(g.img, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width = max(outsideWidth/g.scale, 1)
	g.height = max(outsideHeight/g.scale, 1)
	return g.width, g.height
}
