package dynamo

import (
	"fmt"
	"math"
)

// Bounds is the rectangular viewport [0, Width] x [0, Height].
type Bounds struct {
	Width  float64
	Height float64
}

func (b Bounds) Validate() error {
	if !(b.Width > 0) || !(b.Height > 0) || math.IsInf(b.Width, 0) || math.IsInf(b.Height, 0) {
		return fmt.Errorf("%w: bounds %gx%g", ErrParameterBounds, b.Width, b.Height)
	}
	return nil
}

func (b Bounds) Center() Vec {
	return Vec{X: b.Width / 2, Y: b.Height / 2}
}

// Contains reports whether a circle of radius r at p lies inside b.
func (b Bounds) Contains(p Vec, r float64) bool {
	return p.X >= r && p.X <= b.Width-r && p.Y >= r && p.Y <= b.Height-r
}
