package render

import (
	uv "github.com/charmbracelet/ultraviolet"
)

// Draw presents the buffer on a terminal screen inside area using upper
// half blocks: each cell shows two pixel rows, the upper one as foreground
// and the lower one as background. The buffer height should be twice the
// area height.
func (cb *ColorBuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		if topY >= cb.height {
			break
		}
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= cb.width {
				break
			}

			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cb.At(x, topY),
				},
			}
			if botY < cb.height {
				cell.Style.Bg = cb.At(x, botY)
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// TerminalSize returns the buffer dimensions for a terminal of cols x rows
// cells.
func TerminalSize(cols, rows int) (width, height int) {
	return cols, rows * 2
}
