package metrics

import (
	"math"

	"github.com/san-kum/ballsim/internal/physics"
	"github.com/san-kum/ballsim/internal/sim"
)

// Energy is the mean total kinetic energy over observed frames.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(balls []*physics.Ball, r sim.Report) {
	e.totalEnergy += physics.TotalKineticEnergy(balls)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative departure from the first
// observed kinetic energy. Spawning and pruning change the total, so the
// baseline is reset whenever the population changes.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	population    int
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(balls []*physics.Ball, r sim.Report) {
	energy := physics.TotalKineticEnergy(balls)

	if e.samples == 0 || len(balls) != e.population {
		e.initialEnergy = energy
		e.population = len(balls)
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.population = 0
	e.maxDrift = 0
	e.samples = 0
}

// Momentum is the peak magnitude of total linear momentum.
type Momentum struct {
	name string
	peak float64
}

func NewMomentum() *Momentum {
	return &Momentum{name: "momentum"}
}

func (m *Momentum) Name() string { return m.name }

func (m *Momentum) Observe(balls []*physics.Ball, r sim.Report) {
	m.peak = math.Max(m.peak, physics.TotalMomentum(balls).Length())
}

func (m *Momentum) Value() float64 { return m.peak }
func (m *Momentum) Reset()         { m.peak = 0 }
