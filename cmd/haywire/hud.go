package main

import (
	"fmt"
	"image/color"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/haywire/pkg/render"
)

var (
	hudBg     = color.RGBA{0, 0, 0, 255}
	hudWhite  = color.RGBA{230, 230, 230, 255}
	hudGreen  = color.RGBA{90, 230, 120, 255}
	hudCyan   = color.RGBA{90, 220, 230, 255}
	hudYellow = color.RGBA{240, 220, 90, 255}
)

// HUD renders an overlay with scene info, frame stats and mode toggles.
type HUD struct {
	title     string
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a new HUD
func NewHUD(title string) *HUD {
	return &HUD{title: title, fpsTime: time.Now()}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Draw writes the overlay into the top and bottom rows of scr.
func (h *HUD) Draw(scr uv.Screen, cols, rows int, c *controls, stats render.Stats, triangles int) {
	if rows < 2 {
		return
	}

	if c.lightMode {
		msg := " ◉ LIGHT MODE - move mouse to aim, click to set, Esc to cancel "
		drawText(scr, max((cols-len([]rune(msg)))/2, 0), rows-1, msg, hudYellow, uv.AttrBold)
		return
	}
	if !c.showHUD {
		return
	}

	drawText(scr, 0, 0, fmt.Sprintf(" %.0f FPS ", h.fps), hudGreen, 0)
	drawText(scr, max((cols-len(h.title)-2)/2, 0), 0, " "+h.title+" ", hudWhite, uv.AttrBold)
	polys := fmt.Sprintf(" %d tris ", triangles)
	drawText(scr, max(cols-len(polys), 0), 0, polys, hudCyan, uv.AttrBold)

	status := fmt.Sprintf(" %s spin  %s culling  objects %d/%d  pixels %d ",
		check(c.spin()), check(c.culling()),
		stats.ObjectsDrawn, stats.ObjectsDrawn+stats.ObjectsCulled, stats.PixelsWritten)
	drawText(scr, 0, rows-1, status, hudWhite, 0)

	hint := " L: aim light "
	drawText(scr, max(cols-len(hint), 0), rows-1, hint, hudYellow, uv.AttrFaint)
}

func check(on bool) string {
	if on {
		return "[✓]"
	}
	return "[ ]"
}

func drawText(scr uv.Screen, x, y int, s string, fg color.Color, attrs uint8) {
	for _, r := range s {
		scr.SetCell(x, y, &uv.Cell{
			Content: string(r),
			Width:   1,
			Style:   uv.Style{Fg: fg, Bg: hudBg, Attrs: attrs},
		})
		x++
	}
}
