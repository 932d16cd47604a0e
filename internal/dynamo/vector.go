package dynamo

import "math"

// Vec is a 2D vector in screen coordinates (y grows downwards).
type Vec struct {
	X, Y float64
}

func V(x, y float64) Vec { return Vec{X: x, Y: y} }

func (v *Vec) Set(x, y float64) *Vec {
	v.X = x
	v.Y = y
	return v
}

// Copy overwrites v with the components of other.
func (v *Vec) Copy(other Vec) *Vec {
	v.X = other.X
	v.Y = other.Y
	return v
}

func (v *Vec) Shift(dx, dy float64) *Vec {
	v.X += dx
	v.Y += dy
	return v
}

func (v *Vec) Add(other Vec) *Vec {
	v.X += other.X
	v.Y += other.Y
	return v
}

func (v *Vec) Sub(other Vec) *Vec {
	v.X -= other.X
	v.Y -= other.Y
	return v
}

func (v *Vec) Mul(coef float64) *Vec {
	v.X *= coef
	v.Y *= coef
	return v
}

func (v *Vec) Invert() *Vec {
	return v.Mul(-1)
}

// Normalize scales v to unit length. A zero vector is left unchanged.
func (v *Vec) Normalize() *Vec {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Mul(1 / l)
}

// Scale sets the length of v, keeping its direction.
func (v *Vec) Scale(length float64) *Vec {
	return v.Normalize().Mul(length)
}

// Rotate applies the standard 2D rotation matrix for angle radians.
func (v *Vec) Rotate(angle float64) *Vec {
	sin, cos := math.Sincos(angle)
	x, y := v.X, v.Y
	v.X = x*cos - y*sin
	v.Y = x*sin + y*cos
	return v
}

func (v Vec) Dot(other Vec) float64 {
	return v.X*other.X + v.Y*other.Y
}

func (v Vec) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

func (v Vec) DistanceTo(other Vec) float64 {
	return math.Hypot(v.X-other.X, v.Y-other.Y)
}

// Theta returns the angle of v in [0, 2π). The zero vector has angle 0.
func (v Vec) Theta() float64 {
	if v.X == 0 && v.Y == 0 {
		return 0
	}
	theta := math.Atan2(v.Y, v.X)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	return theta
}

func (v Vec) IsValid() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
