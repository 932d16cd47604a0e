// Package factory produces randomized balls for spawning.
package factory

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/ballsim/internal/dynamo"
	"github.com/san-kum/ballsim/internal/physics"
)

// Params controls the distribution of generated balls.
type Params struct {
	MinRadius float64
	MaxRadius float64
	// SpeedFactor scales the viewport width into the launch speed.
	SpeedFactor float64
	// Spread is the half-angle, in radians, of the launch direction.
	Spread  float64
	Density float64
}

func DefaultParams() Params {
	return Params{
		MinRadius:   10,
		MaxRadius:   80,
		SpeedFactor: 0.25,
		Spread:      math.Pi / 16,
		Density:     physics.DefaultDensity,
	}
}

func (p Params) Validate() error {
	if !(p.MinRadius > 0) || !(p.MaxRadius >= p.MinRadius) {
		return fmt.Errorf("%w: radius range [%g, %g)", dynamo.ErrParameterBounds, p.MinRadius, p.MaxRadius)
	}
	if p.Density < 0 || p.SpeedFactor < 0 || p.Spread < 0 {
		return fmt.Errorf("%w: density %g speed %g spread %g", dynamo.ErrParameterBounds, p.Density, p.SpeedFactor, p.Spread)
	}
	return nil
}

type Factory struct {
	rng    *rand.Rand
	params Params
}

func New(seed int64, params Params) (*Factory, error) {
	return NewWithRand(rand.New(rand.NewSource(seed)), params)
}

func NewWithRand(rng *rand.Rand, params Params) (*Factory, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Factory{rng: rng, params: params}, nil
}

func (f *Factory) Params() Params   { return f.params }
func (f *Factory) Rand() *rand.Rand { return f.rng }

// Random creates a ball somewhere inside bounds, at least one diameter
// away from the edges.
func (f *Factory) Random(bounds dynamo.Bounds) (*physics.Ball, error) {
	radius := f.radius()
	pos := dynamo.V(
		f.between(2*radius, bounds.Width-2*radius),
		f.between(2*radius, bounds.Height-2*radius),
	)
	return f.Ball(dynamo.RandomColor(f.rng), radius, pos, f.velocity(bounds))
}

// At creates a random ball centered on p.
func (f *Factory) At(p dynamo.Vec, bounds dynamo.Bounds) (*physics.Ball, error) {
	radius := f.radius()
	return f.Ball(dynamo.RandomColor(f.rng), radius, p, f.velocity(bounds))
}

// Ball creates a ball with the factory density.
func (f *Factory) Ball(color dynamo.Color, radius float64, pos, vel dynamo.Vec) (*physics.Ball, error) {
	return physics.NewBall(color, radius, pos, vel, f.params.Density)
}

func (f *Factory) radius() float64 {
	return f.between(f.params.MinRadius, f.params.MaxRadius)
}

// velocity points right at a fraction of the viewport width per second,
// tilted by a random angle in [-Spread, Spread).
func (f *Factory) velocity(bounds dynamo.Bounds) dynamo.Vec {
	v := dynamo.V(bounds.Width*f.params.SpeedFactor, 0)
	v.Rotate(f.between(-f.params.Spread, f.params.Spread))
	return v
}

func (f *Factory) between(min, max float64) float64 {
	return f.rng.Float64()*(max-min) + min
}
