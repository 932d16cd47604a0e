package metrics

import (
	"math"

	"github.com/san-kum/ballsim/internal/physics"
	"github.com/san-kum/ballsim/internal/sim"
)

// Stability is the fraction of frames whose deepest residual overlap stays
// within threshold after resolution.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(balls []*physics.Ball, r sim.Report) {
	s.samples++
	if physics.MaxOverlap(balls) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Overlap is the deepest residual overlap seen in any frame.
type Overlap struct {
	name  string
	worst float64
}

func NewOverlap() *Overlap {
	return &Overlap{name: "max_overlap"}
}

func (o *Overlap) Name() string { return o.name }

func (o *Overlap) Observe(balls []*physics.Ball, r sim.Report) {
	o.worst = math.Max(o.worst, physics.MaxOverlap(balls))
}

func (o *Overlap) Value() float64 { return o.worst }
func (o *Overlap) Reset()         { o.worst = 0 }
