package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/ballsim/internal/dynamo"
)

const (
	// DefaultDensity is mass per unit area.
	DefaultDensity = 100.0
	// DisposalTimeMs is how long the shrink animation may last.
	DisposalTimeMs = 500.0
)

// Phase is a ball's lifecycle state.
type Phase uint8

const (
	Growing Phase = iota
	Steady
	Disposing
	Disposed
)

func (p Phase) String() string {
	switch p {
	case Growing:
		return "growing"
	case Steady:
		return "steady"
	case Disposing:
		return "disposing"
	case Disposed:
		return "disposed"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// Ball is a circular body with translational kinematics and a
// spawn/despawn animation.
type Ball struct {
	color         dynamo.Color
	radius        float64
	currentRadius float64
	position      dynamo.Vec
	velocity      dynamo.Vec
	mass          float64

	creationTimeMs float64
	disposalTimeMs float64

	phase         Phase
	timeNew       float64
	timeDisposing float64
}

// NewBall creates a Growing ball with zero visible radius. Velocity is in
// units per second. A density of 0 selects DefaultDensity.
func NewBall(color dynamo.Color, radius float64, position, velocity dynamo.Vec, density float64) (*Ball, error) {
	if density == 0 {
		density = DefaultDensity
	}
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("%w: radius %v", dynamo.ErrParameterBounds, radius)
	}
	if !(density > 0) || math.IsInf(density, 0) {
		return nil, fmt.Errorf("%w: density %v", dynamo.ErrParameterBounds, density)
	}
	if !position.IsValid() || !velocity.IsValid() {
		return nil, fmt.Errorf("%w: position %v velocity %v", dynamo.ErrParameterBounds, position, velocity)
	}

	return &Ball{
		color:          color,
		radius:         radius,
		position:       position,
		velocity:       velocity,
		mass:           density * math.Pi * radius * radius,
		creationTimeMs: 2 * radius,
		disposalTimeMs: DisposalTimeMs,
		phase:          Growing,
	}, nil
}

func (b *Ball) Color() dynamo.Color      { return b.color }
func (b *Ball) Radius() float64          { return b.radius }
func (b *Ball) CurrentRadius() float64   { return b.currentRadius }
func (b *Ball) Mass() float64            { return b.mass }
func (b *Ball) Position() dynamo.Vec     { return b.position }
func (b *Ball) Velocity() dynamo.Vec     { return b.velocity }
func (b *Ball) Phase() Phase             { return b.phase }
func (b *Ball) CreationTimeMs() float64  { return b.creationTimeMs }
func (b *Ball) DisposalTimeMs() float64  { return b.disposalTimeMs }
func (b *Ball) SetPosition(p dynamo.Vec) { b.position = p }
func (b *Ball) SetVelocity(v dynamo.Vec) { b.velocity = v }

func (b *Ball) IsDisposed() bool  { return b.phase == Disposed }
func (b *Ball) IsDisposing() bool { return b.phase == Disposing }

// Dispose starts the shrink animation. It has no effect once the ball is
// already disposing.
func (b *Ball) Dispose() {
	if b.phase == Growing || b.phase == Steady {
		b.phase = Disposing
	}
}

// Contains reports whether p lies within the visible disc.
func (b *Ball) Contains(p dynamo.Vec) bool {
	return b.position.DistanceTo(p) <= b.currentRadius
}

// KineticEnergy returns ½mv² in mass·units²/s².
func (b *Ball) KineticEnergy() float64 {
	return 0.5 * b.mass * b.velocity.Dot(b.velocity)
}

func (b *Ball) IsValid() bool {
	return b.position.IsValid() && b.velocity.IsValid() && !math.IsNaN(b.currentRadius)
}

// Update advances the ball by dt milliseconds.
func (b *Ball) Update(dt float64) {
	if b.phase == Disposed {
		return
	}

	b.position.Shift(b.velocity.X*dt/1000, b.velocity.Y*dt/1000)

	switch b.phase {
	case Growing:
		b.timeNew += dt
		remaining := b.creationTimeMs - b.timeNew
		if remaining > 0 {
			b.currentRadius = b.radius * (1 - remaining/b.creationTimeMs)
		} else {
			b.currentRadius = b.radius
			b.phase = Steady
		}
	case Disposing:
		b.timeDisposing += dt
		remaining := b.disposalTimeMs - b.timeDisposing
		if remaining > 0 && b.currentRadius > 1 {
			b.currentRadius *= remaining / b.disposalTimeMs
		} else {
			b.phase = Disposed
		}
	}

	if b.currentRadius < 0 {
		b.currentRadius = 0
	}
}
