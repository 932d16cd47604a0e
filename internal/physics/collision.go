package physics

import "github.com/san-kum/ballsim/internal/dynamo"

// CollisionResolver applies elastic impulses and positional correction to
// overlapping balls.
type CollisionResolver struct {
	// Fallback is the contact normal used when two centers coincide.
	// The zero value selects (1, 0).
	Fallback dynamo.Vec
}

func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{Fallback: dynamo.V(1, 0)}
}

// Resolve runs one all-pairs pass over balls and returns the number of
// overlapping pairs it corrected. Every unordered pair is visited twice,
// once from each side.
func (r *CollisionResolver) Resolve(balls []*Ball) int {
	contacts := 0
	for _, a := range balls {
		for _, b := range balls {
			if a == b {
				continue
			}
			if r.ResolvePair(a, b) {
				contacts++
			}
		}
	}
	return contacts
}

// ResolvePair corrects a against b and reports whether they overlapped.
func (r *CollisionResolver) ResolvePair(a, b *Ball) bool {
	proximity := a.position.DistanceTo(b.position) - (a.currentRadius + b.currentRadius)
	if !(proximity < 0) {
		return false
	}

	n := r.normal(a.position, b.position)
	m := a.mass + b.mass

	// only approaching bodies exchange momentum
	dv := a.velocity.Dot(n) - b.velocity.Dot(n)
	if dv < 0 {
		c := dv / m
		a.velocity.Add(scaled(n, -2*b.mass*c))
		b.velocity.Add(scaled(n, 2*a.mass*c))
	}

	correction := -proximity + 1
	a.position.Add(scaled(n, correction*b.mass/m))
	b.position.Sub(scaled(n, correction*a.mass/m))

	return true
}

func (r *CollisionResolver) normal(from, to dynamo.Vec) dynamo.Vec {
	n := from
	n.Sub(to)
	if n.Length() == 0 {
		if r.Fallback.Length() == 0 {
			return dynamo.V(1, 0)
		}
		n = r.Fallback
	}
	n.Normalize()
	return n
}

func scaled(v dynamo.Vec, k float64) dynamo.Vec {
	v.Mul(k)
	return v
}
