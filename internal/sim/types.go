package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/ballsim/internal/control"
	"github.com/san-kum/ballsim/internal/dynamo"
	"github.com/san-kum/ballsim/internal/physics"
)

type Metric interface {
	Name() string
	Observe(balls []*physics.Ball, r Report)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(balls []*physics.Ball, r Report)
}

// Config drives a headless run. Dt is in milliseconds, Duration in seconds.
type Config struct {
	Dt       float64
	Duration float64
	Seed     int64
	Bounds   dynamo.Bounds
	// Script holds timed commands replayed between frames.
	Script []control.Command
}

func DefaultConfig() Config {
	return Config{
		Dt:       1000.0 / 60,
		Duration: 10,
		Bounds:   dynamo.Bounds{Width: 800, Height: 600},
	}
}

func (c Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrInvalidStep, c.Dt)
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %g", dynamo.ErrParameterBounds, c.Duration)
	}
	return c.Bounds.Validate()
}

// Steps is the number of whole frames that fit into Duration.
func (c Config) Steps() int {
	return int(math.Round(c.Duration * 1000 / c.Dt))
}

// Report summarizes one call to Step.
type Report struct {
	Frame    int
	Time     float64
	Dt       float64
	Contacts int
	WallHits int
	Pruned   int
}

type Frame struct {
	Time     float64 `json:"time_ms"`
	Count    int     `json:"count"`
	Energy   float64 `json:"energy"`
	Momentum float64 `json:"momentum"`
	Contacts int     `json:"contacts"`
	WallHits int     `json:"wall_hits"`
}

func frameOf(balls []*physics.Ball, r Report) Frame {
	return Frame{
		Time:     r.Time,
		Count:    len(balls),
		Energy:   physics.TotalKineticEnergy(balls),
		Momentum: physics.TotalMomentum(balls).Length(),
		Contacts: r.Contacts,
		WallHits: r.WallHits,
	}
}

// Snapshot is a detached copy of one ball's observable state.
type Snapshot struct {
	X             float64      `json:"x"`
	Y             float64      `json:"y"`
	VX            float64      `json:"vx"`
	VY            float64      `json:"vy"`
	Radius        float64      `json:"radius"`
	CurrentRadius float64      `json:"current_radius"`
	Mass          float64      `json:"mass"`
	Phase         string       `json:"phase"`
	Color         dynamo.Color `json:"color"`
}

func Snap(balls []*physics.Ball) []Snapshot {
	out := make([]Snapshot, len(balls))
	for i, b := range balls {
		p, v := b.Position(), b.Velocity()
		out[i] = Snapshot{
			X: p.X, Y: p.Y, VX: v.X, VY: v.Y,
			Radius:        b.Radius(),
			CurrentRadius: b.CurrentRadius(),
			Mass:          b.Mass(),
			Phase:         b.Phase().String(),
			Color:         b.Color(),
		}
	}
	return out
}

type Result struct {
	Frames      []Frame
	Final       []Snapshot
	Metrics     map[string]float64
	StepsTaken  int
	EnergyDrift float64
	Errors      []error
}
