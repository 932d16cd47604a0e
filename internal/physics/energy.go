package physics

import "github.com/san-kum/ballsim/internal/dynamo"

// TotalKineticEnergy sums ½mv² over balls.
func TotalKineticEnergy(balls []*Ball) float64 {
	e := 0.0
	for _, b := range balls {
		e += b.KineticEnergy()
	}
	return e
}

// TotalMomentum sums m·v over balls.
func TotalMomentum(balls []*Ball) dynamo.Vec {
	var p dynamo.Vec
	for _, b := range balls {
		p.Add(scaled(b.velocity, b.mass))
	}
	return p
}

// MaxOverlap returns the deepest interpenetration between any two balls,
// or zero when none touch.
func MaxOverlap(balls []*Ball) float64 {
	worst := 0.0
	for i := 0; i < len(balls); i++ {
		for j := i + 1; j < len(balls); j++ {
			a, b := balls[i], balls[j]
			depth := a.currentRadius + b.currentRadius - a.position.DistanceTo(b.position)
			if depth > worst {
				worst = depth
			}
		}
	}
	return worst
}
