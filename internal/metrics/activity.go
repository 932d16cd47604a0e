package metrics

import (
	"github.com/san-kum/ballsim/internal/physics"
	"github.com/san-kum/ballsim/internal/sim"
)

// Population is the mean number of live balls per frame.
type Population struct {
	name    string
	sum     int
	samples int
}

func NewPopulation() *Population {
	return &Population{name: "population"}
}

func (p *Population) Name() string {
	return p.name
}

func (p *Population) Observe(balls []*physics.Ball, r sim.Report) {
	p.sum += len(balls)
	p.samples++
}

func (p *Population) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return float64(p.sum) / float64(p.samples)
}

func (p *Population) Reset() {
	p.sum = 0
	p.samples = 0
}

// CollisionRate is ball contacts per simulated second.
type CollisionRate struct {
	name     string
	contacts int
	elapsed  float64
}

func NewCollisionRate() *CollisionRate {
	return &CollisionRate{name: "collision_rate"}
}

func (c *CollisionRate) Name() string {
	return c.name
}

func (c *CollisionRate) Observe(balls []*physics.Ball, r sim.Report) {
	c.contacts += r.Contacts
	c.elapsed += r.Dt
}

func (c *CollisionRate) Value() float64 {
	if c.elapsed == 0 {
		return 0
	}
	return float64(c.contacts) / (c.elapsed / 1000)
}

func (c *CollisionRate) Reset() {
	c.contacts = 0
	c.elapsed = 0
}

// Defaults returns the metric set recorded by headless runs.
func Defaults() []sim.Metric {
	return []sim.Metric{
		NewEnergy(),
		NewEnergyDrift(),
		NewMomentum(),
		NewPopulation(),
		NewCollisionRate(),
		NewOverlap(),
		NewStability(1.0),
	}
}
