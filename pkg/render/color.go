package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an alias for color.RGBA for convenience. Alpha is carried for
// image interop but dropped when packed into a ColorBuffer.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack = color.RGBA{0, 0, 0, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
	ColorRed   = color.RGBA{255, 0, 0, 255}
	ColorGreen = color.RGBA{0, 255, 0, 255}
	ColorBlue  = color.RGBA{0, 0, 255, 255}
	ColorGray  = color.RGBA{128, 128, 128, 255}
)

// RGB creates an opaque color from RGB values.
func RGB(r, g, b uint8) Color {
	return color.RGBA{r, g, b, 255}
}

// Pack encodes c as 0x00RRGGBB.
func Pack(c Color) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Unpack decodes a 0x00RRGGBB value into an opaque Color.
func Unpack(p uint32) Color {
	return RGB(uint8(p>>16), uint8(p>>8), uint8(p))
}

// Mix linearly blends from a toward b by t, clamped to [0,1]. Channels
// truncate toward zero; alpha is taken from a.
func Mix(a, b Color, t float64) Color {
	t = math.Max(0, math.Min(1, t))
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x)*(1-t) + float64(y)*t)
	}
	return Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: a.A}
}

// Shade darkens base toward black by (1 - intensity).
func Shade(base Color, intensity float64) Color {
	return Mix(base, ColorBlack, 1-intensity)
}

// DefaultPalette returns a fixed six-color palette.
func DefaultPalette() []Color {
	return []Color{
		RGB(230, 57, 70),
		RGB(241, 250, 238),
		RGB(168, 218, 220),
		RGB(69, 123, 157),
		RGB(244, 162, 97),
		RGB(42, 157, 143),
	}
}

// goldenAngle spreads consecutive hues as far apart as possible.
const goldenAngle = 137.50776405003785

// GeneratePalette returns n distinct colors. The result depends only on n,
// so frames stay reproducible.
func GeneratePalette(n int) []Color {
	palette := make([]Color, n)
	for i := range palette {
		h := math.Mod(float64(i)*goldenAngle, 360)
		r, g, b := colorful.Hsv(h, 0.55, 0.95).RGB255()
		palette[i] = RGB(r, g, b)
	}
	return palette
}

// ParseHexColor parses "#rrggbb".
func ParseHexColor(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB(r, g, b), nil
}
