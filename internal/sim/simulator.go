package sim

import (
	"context"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/san-kum/ballsim/internal/control"
	"github.com/san-kum/ballsim/internal/dynamo"
	"github.com/san-kum/ballsim/internal/factory"
	"github.com/san-kum/ballsim/internal/physics"
)

const DefaultMaxBalls = 200

type ClickAction int

const (
	ClickIgnored ClickAction = iota
	ClickDisposed
	ClickSpawned
)

func (a ClickAction) String() string {
	switch a {
	case ClickDisposed:
		return "disposed"
	case ClickSpawned:
		return "spawned"
	default:
		return "ignored"
	}
}

type ClickResult struct {
	Action ClickAction
	Ball   *physics.Ball
}

// Simulation owns a ball collection and advances it frame by frame. It is
// not safe for concurrent use; feed input from other goroutines through a
// control.Queue and Drain it between frames.
type Simulation struct {
	balls      []*physics.Ball
	collisions *physics.CollisionResolver
	walls      physics.WallResolver
	factory    *factory.Factory
	maxBalls   int

	frame    int
	time     float64
	stepping bool

	metrics   []Metric
	observers []Observer
	logger    *log.Logger
}

func New(f *factory.Factory, maxBalls int) *Simulation {
	if maxBalls <= 0 {
		maxBalls = DefaultMaxBalls
	}
	return &Simulation{
		collisions: physics.NewCollisionResolver(),
		factory:    f,
		maxBalls:   maxBalls,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		logger:     log.New(io.Discard),
	}
}

func (s *Simulation) AddMetric(m Metric)        { s.metrics = append(s.metrics, m) }
func (s *Simulation) AddObserver(o Observer)    { s.observers = append(s.observers, o) }
func (s *Simulation) SetLogger(l *log.Logger)   { s.logger = l }
func (s *Simulation) Factory() *factory.Factory { return s.factory }
func (s *Simulation) MaxBalls() int             { return s.maxBalls }
func (s *Simulation) Frame() int                { return s.frame }
func (s *Simulation) Time() float64             { return s.time }
func (s *Simulation) Len() int                  { return len(s.balls) }

// Balls returns the live collection in iteration order. The slice is a
// copy; the balls are not.
func (s *Simulation) Balls() []*physics.Ball {
	return slices.Clone(s.balls)
}

// Spawn appends b to the collection.
func (s *Simulation) Spawn(b *physics.Ball) error {
	if s.stepping {
		return dynamo.ErrStepInProgress
	}
	if b == nil {
		return fmt.Errorf("%w: nil ball", dynamo.ErrParameterBounds)
	}
	s.balls = append(s.balls, b)
	p := b.Position()
	s.logger.Debug("spawn", "x", p.X, "y", p.Y, "radius", b.Radius(), "count", len(s.balls))
	return nil
}

// SpawnAt creates a random ball centered on p. It returns a nil ball when
// the collection is full.
func (s *Simulation) SpawnAt(p dynamo.Vec, bounds dynamo.Bounds) (*physics.Ball, error) {
	if s.stepping {
		return nil, dynamo.ErrStepInProgress
	}
	if len(s.balls) >= s.maxBalls {
		return nil, nil
	}
	b, err := s.factory.At(p, bounds)
	if err != nil {
		return nil, err
	}
	return b, s.Spawn(b)
}

// SpawnRandom adds n random balls anywhere inside bounds, stopping at the
// capacity limit. It returns how many were added.
func (s *Simulation) SpawnRandom(n int, bounds dynamo.Bounds) (int, error) {
	added := 0
	for ; added < n && len(s.balls) < s.maxBalls; added++ {
		b, err := s.factory.Random(bounds)
		if err != nil {
			return added, err
		}
		if err := s.Spawn(b); err != nil {
			return added, err
		}
	}
	return added, nil
}

// Click disposes the first ball containing p. When nothing is hit a new
// random ball is spawned at p, unless the collection is full.
func (s *Simulation) Click(p dynamo.Vec, bounds dynamo.Bounds) (ClickResult, error) {
	if s.stepping {
		return ClickResult{}, dynamo.ErrStepInProgress
	}
	for _, b := range s.balls {
		if b.Contains(p) {
			b.Dispose()
			s.logger.Debug("dispose", "x", p.X, "y", p.Y, "radius", b.Radius())
			return ClickResult{Action: ClickDisposed, Ball: b}, nil
		}
	}

	b, err := s.SpawnAt(p, bounds)
	if err != nil {
		return ClickResult{}, err
	}
	if b == nil {
		s.logger.Debug("click ignored, collection full", "max", s.maxBalls)
		return ClickResult{Action: ClickIgnored}, nil
	}
	return ClickResult{Action: ClickSpawned, Ball: b}, nil
}

// Clear starts the disposal animation of every ball.
func (s *Simulation) Clear() error {
	if s.stepping {
		return dynamo.ErrStepInProgress
	}
	for _, b := range s.balls {
		b.Dispose()
	}
	return nil
}

// Drain applies every pending command in q and reports how many ran.
func (s *Simulation) Drain(q *control.Queue, bounds dynamo.Bounds) (int, error) {
	cmds := q.Take()
	for i, c := range cmds {
		var err error
		switch c.Kind {
		case control.Click:
			_, err = s.Click(c.Point, bounds)
		case control.Spawn:
			_, err = s.SpawnAt(c.Point, bounds)
		case control.Clear:
			err = s.Clear()
		default:
			err = fmt.Errorf("%w: unknown command %v", dynamo.ErrParameterBounds, c.Kind)
		}
		if err != nil {
			return i, fmt.Errorf("%s at (%.0f, %.0f): %w", c.Kind, c.Point.X, c.Point.Y, err)
		}
	}
	return len(cmds), nil
}

// Reset replaces the collection and rewinds the clock.
func (s *Simulation) Reset(balls []*physics.Ball) error {
	if s.stepping {
		return dynamo.ErrStepInProgress
	}
	s.balls = slices.Clone(balls)
	s.frame = 0
	s.time = 0
	return nil
}

// Step advances the world by dt milliseconds: integrate and prune, then
// resolve ball contacts, then keep everything inside bounds.
func (s *Simulation) Step(dt float64, bounds dynamo.Bounds) (Report, error) {
	if s.stepping {
		return Report{}, dynamo.ErrStepInProgress
	}
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return Report{}, fmt.Errorf("%w: %g", dynamo.ErrInvalidStep, dt)
	}
	if err := bounds.Validate(); err != nil {
		return Report{}, err
	}

	s.stepping = true
	defer func() { s.stepping = false }()

	before := len(s.balls)
	s.balls = Advance(s.balls, dt)
	r := Report{Dt: dt, Pruned: before - len(s.balls)}
	r.Contacts = s.collisions.Resolve(s.balls)
	r.WallHits = s.walls.Resolve(s.balls, bounds)

	s.frame++
	s.time += dt
	r.Frame, r.Time = s.frame, s.time

	for i, b := range s.balls {
		if !b.IsValid() {
			return r, &dynamo.SimulationError{Frame: s.frame, Time: s.time, Ball: i, Wrapped: dynamo.ErrInvalidState}
		}
	}
	if r.Pruned > 0 {
		s.logger.Debug("pruned", "count", r.Pruned, "frame", s.frame)
	}

	for _, obs := range s.observers {
		obs.OnStep(s.balls, r)
	}
	return r, nil
}

// Run steps the simulation headless for cfg.Duration, replaying cfg.Script
// and recording one Frame per step.
func (s *Simulation) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	steps := cfg.Steps()
	result := &Result{
		Frames:  make([]Frame, 0, steps+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	script := control.NewScript(cfg.Script)
	queue := control.NewQueue()

	result.Frames = append(result.Frames, frameOf(s.balls, Report{Frame: s.frame, Time: s.time}))
	initialEnergy := physics.TotalKineticEnergy(s.balls)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			result.Final = Snap(s.balls)
			return result, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		script.Due(s.time, queue)
		if _, err := s.Drain(queue, cfg.Bounds); err != nil {
			result.Errors = append(result.Errors, err)
		}

		r, err := s.Step(cfg.Dt, cfg.Bounds)
		if err != nil {
			result.Errors = append(result.Errors, err)
			break
		}
		result.StepsTaken++

		for _, m := range s.metrics {
			m.Observe(s.balls, r)
		}
		result.Frames = append(result.Frames, frameOf(s.balls, r))
	}

	finalEnergy := physics.TotalKineticEnergy(s.balls)
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Final = Snap(s.balls)

	s.logger.Info("run complete", "steps", result.StepsTaken, "balls", len(s.balls), "errors", len(result.Errors))
	return result, nil
}

// RunWithCallback steps until cfg.Duration elapses or callback returns
// false. The callback runs before each step and may mutate the collection.
func (s *Simulation) RunWithCallback(ctx context.Context, cfg Config, callback func(s *Simulation, r Report) bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	script := control.NewScript(cfg.Script)
	queue := control.NewQueue()
	end := s.time + cfg.Duration*1000
	r := Report{Frame: s.frame, Time: s.time}

	for s.time < end {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		if !callback(s, r) {
			return nil
		}

		script.Due(s.time, queue)
		if _, err := s.Drain(queue, cfg.Bounds); err != nil {
			return err
		}

		var err error
		if r, err = s.Step(cfg.Dt, cfg.Bounds); err != nil {
			return err
		}
	}

	return nil
}
