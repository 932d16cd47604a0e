package dynamo

import (
	"fmt"
	"image/color"
	"math"
	"math/rand"
	"strconv"
)

// Color is the display color of a ball. Physics never reads it.
type Color struct {
	R, G, B uint8
	A       float64
}

var (
	White      = Color{R: 255, G: 255, B: 255, A: 1}
	Black      = Color{A: 1}
	Background = Color{R: 200, G: 215, B: 255, A: 1}
)

func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// RandomColor picks an opaque color with each channel in [0, 255).
func RandomColor(rng *rand.Rand) Color {
	return RGB(uint8(rng.Intn(255)), uint8(rng.Intn(255)), uint8(rng.Intn(255)))
}

// RGBInt packs the color as 0xRRGGBB.
func (c Color) RGBInt() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Mul scales each channel by coef, saturating at 255.
func (c Color) Mul(coef float64) Color {
	return Color{R: clampChannel(float64(c.R) * coef), G: clampChannel(float64(c.G) * coef), B: clampChannel(float64(c.B) * coef), A: c.A}
}

func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: clampChannel(c.A * 255)}
}

func (c Color) Hex() string {
	return fmt.Sprintf("#%06x", c.RGBInt())
}

// ParseHex reads an opaque color written by Hex.
func ParseHex(s string) (Color, error) {
	if len(s) != 7 || s[0] != '#' {
		return Color{}, fmt.Errorf("%w: color %q", ErrParameterBounds, s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: color %q", ErrParameterBounds, s)
	}
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

func (c Color) String() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%g)", c.R, c.G, c.B, c.A)
}

func clampChannel(v float64) uint8 {
	v = math.Floor(v)
	if v >= 255 {
		return 255
	}
	if v <= 0 {
		return 0
	}
	return uint8(v)
}
