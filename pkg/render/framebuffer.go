// Package render provides software rasterization for haywire.
package render

import (
	"image"
	"image/png"
	"os"
)

// ColorBuffer is a dense width*height grid of packed 0x00RRGGBB pixels.
//
// Pixels are addressed by (row, col) with row 0 at the bottom. Storage is
// top-down, so row r lives at index (height-1-r)*width+col and the backing
// slice can be handed directly to a presenter that expects image order.
type ColorBuffer struct {
	width  int
	height int
	pixels []uint32
}

// NewColorBuffer creates a buffer filled with 0x000000.
func NewColorBuffer(width, height int) *ColorBuffer {
	cb := &ColorBuffer{}
	cb.Resize(width, height)
	return cb
}

// Width returns the width in pixels.
func (cb *ColorBuffer) Width() int { return cb.width }

// Height returns the height in pixels.
func (cb *ColorBuffer) Height() int { return cb.height }

// Pixels returns the backing slice in top-down image order.
func (cb *ColorBuffer) Pixels() []uint32 { return cb.pixels }

// Resize reallocates the buffer and resets every pixel to 0x000000.
func (cb *ColorBuffer) Resize(width, height int) {
	cb.width = max(width, 0)
	cb.height = max(height, 0)
	cb.pixels = make([]uint32, cb.width*cb.height)
}

// Clear fills the buffer with the background color.
func (cb *ColorBuffer) Clear(background Color) {
	fill(cb.pixels, Pack(background))
}

// HandleResizeOrClear reallocates (contents 0x000000) when the dimensions
// changed and otherwise clears in place to background.
func (cb *ColorBuffer) HandleResizeOrClear(width, height int, background Color) {
	if width != cb.width || height != cb.height {
		cb.Resize(width, height)
		return
	}
	cb.Clear(background)
}

func (cb *ColorBuffer) index(row, col int) int {
	return (cb.height-row-1)*cb.width + col
}

func (cb *ColorBuffer) inBounds(row, col int) bool {
	return row >= 0 && row < cb.height && col >= 0 && col < cb.width
}

// Set writes c at (row, col). Out-of-bounds writes are ignored.
func (cb *ColorBuffer) Set(row, col int, c Color) {
	if !cb.inBounds(row, col) {
		return
	}
	cb.pixels[cb.index(row, col)] = Pack(c)
}

// Get returns the packed pixel at (row, col), or 0 when out of bounds.
func (cb *ColorBuffer) Get(row, col int) uint32 {
	if !cb.inBounds(row, col) {
		return 0
	}
	return cb.pixels[cb.index(row, col)]
}

// At returns the pixel at image coordinates (x right, y down).
func (cb *ColorBuffer) At(x, y int) Color {
	if x < 0 || x >= cb.width || y < 0 || y >= cb.height {
		return Color{}
	}
	return Unpack(cb.pixels[y*cb.width+x])
}

// ToImage converts the buffer to a standard Go image.RGBA.
func (cb *ColorBuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cb.width, cb.height))
	for y := 0; y < cb.height; y++ {
		for x := 0; x < cb.width; x++ {
			img.SetRGBA(x, y, cb.At(x, y))
		}
	}
	return img
}

// CopyRGBA writes the buffer into dst as RGBA bytes (4 per pixel, alpha
// 0xFF). dst must hold at least 4*width*height bytes.
func (cb *ColorBuffer) CopyRGBA(dst []byte) {
	for i, p := range cb.pixels {
		j := i * 4
		dst[j+0] = uint8(p >> 16)
		dst[j+1] = uint8(p >> 8)
		dst[j+2] = uint8(p)
		dst[j+3] = 0xFF
	}
}

// SavePNG saves the buffer as a PNG file.
func (cb *ColorBuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, cb.ToImage()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// DepthBuffer holds one depth value per pixel with the same (row, col)
// addressing as ColorBuffer. Values are post-viewport depths in [0,1];
// 1.0 is the far-plane sentinel.
type DepthBuffer struct {
	width  int
	height int
	depths []float64
}

// FarDepth is the value a cleared DepthBuffer holds.
const FarDepth = 1.0

// NewDepthBuffer creates a buffer filled with FarDepth.
func NewDepthBuffer(width, height int) *DepthBuffer {
	db := &DepthBuffer{}
	db.Resize(width, height)
	return db
}

// Width returns the width in pixels.
func (db *DepthBuffer) Width() int { return db.width }

// Height returns the height in pixels.
func (db *DepthBuffer) Height() int { return db.height }

// Resize reallocates the buffer and resets every entry to FarDepth.
func (db *DepthBuffer) Resize(width, height int) {
	db.width = max(width, 0)
	db.height = max(height, 0)
	db.depths = make([]float64, db.width*db.height)
	db.Clear()
}

// Clear resets every entry to FarDepth.
func (db *DepthBuffer) Clear() {
	fill(db.depths, FarDepth)
}

// HandleResizeOrClear reallocates when the dimensions changed and
// otherwise clears in place. Either way every entry ends up FarDepth.
func (db *DepthBuffer) HandleResizeOrClear(width, height int) {
	if width != db.width || height != db.height {
		db.Resize(width, height)
		return
	}
	db.Clear()
}

func (db *DepthBuffer) index(row, col int) int {
	return (db.height-row-1)*db.width + col
}

// Set writes depth at (row, col). Out-of-bounds writes are ignored.
func (db *DepthBuffer) Set(row, col int, depth float64) {
	if row < 0 || row >= db.height || col < 0 || col >= db.width {
		return
	}
	db.depths[db.index(row, col)] = depth
}

// Get returns the depth at (row, col), or FarDepth when out of bounds.
func (db *DepthBuffer) Get(row, col int) float64 {
	if row < 0 || row >= db.height || col < 0 || col >= db.width {
		return FarDepth
	}
	return db.depths[db.index(row, col)]
}

// fill sets every element of s to v by doubling copies.
func fill[T uint32 | float64](s []T, v T) {
	if len(s) == 0 {
		return
	}
	s[0] = v
	for i := 1; i < len(s); i *= 2 {
		copy(s[i:], s[:i])
	}
}
