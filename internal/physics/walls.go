package physics

import (
	"math"

	"github.com/san-kum/ballsim/internal/dynamo"
)

// WallResolver reflects balls off the edges of the viewport.
type WallResolver struct{}

// Resolve clamps every ball into bounds and returns the number of axis
// reflections. A ball outside the band on one axis has that velocity
// component flipped and is snapped to whichever bound is closer.
func (WallResolver) Resolve(balls []*Ball, bounds dynamo.Bounds) int {
	hits := 0
	for _, b := range balls {
		r := b.currentRadius
		x, y := b.position.X, b.position.Y

		if x > bounds.Width-r || x < r {
			b.velocity.X *= -1
			b.position.X = closer(x, r, bounds.Width-r)
			hits++
		}

		if y > bounds.Height-r || y < r {
			b.velocity.Y *= -1
			b.position.Y = closer(y, r, bounds.Height-r)
			hits++
		}
	}
	return hits
}

func closer(x, a, b float64) float64 {
	if math.Abs(x-a) < math.Abs(x-b) {
		return a
	}
	return b
}
