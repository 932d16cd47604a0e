package physics_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ballsim/internal/dynamo"
	"github.com/san-kum/ballsim/internal/physics"
)

var _ = Describe("CollisionResolver", func() {
	var resolver *physics.CollisionResolver

	BeforeEach(func() {
		resolver = physics.NewCollisionResolver()
	})

	It("swaps velocities of equal balls in a head-on collision", func() {
		a := steadyBall(50, dynamo.V(0, 0), dynamo.V(0, 0))
		b := steadyBall(50, dynamo.V(-99, 0), dynamo.V(100, 0))

		contacts := resolver.Resolve([]*physics.Ball{a, b})

		Expect(contacts).To(Equal(1))
		Expect(a.Velocity().X).To(BeNumerically("~", 100, 1e-9))
		Expect(a.Velocity().Y).To(BeNumerically("~", 0, 1e-9))
		Expect(b.Velocity().X).To(BeNumerically("~", 0, 1e-9))
		Expect(b.Velocity().Y).To(BeNumerically("~", 0, 1e-9))
	})

	It("pushes overlapping balls apart by the overlap plus one unit", func() {
		a := steadyBall(50, dynamo.V(0, 0), dynamo.Vec{})
		b := steadyBall(50, dynamo.V(-90, 0), dynamo.Vec{})

		resolver.Resolve([]*physics.Ball{a, b})

		gap := a.Position().DistanceTo(b.Position()) - 100
		Expect(gap).To(BeNumerically("~", 1, 1e-9))
		Expect(a.Position().X).To(BeNumerically("~", 5.5, 1e-9))
		Expect(b.Position().X).To(BeNumerically("~", -95.5, 1e-9))
	})

	It("moves the heavier ball less", func() {
		light := steadyBall(10, dynamo.V(0, 0), dynamo.Vec{})
		heavy := steadyBall(40, dynamo.V(45, 0), dynamo.Vec{})

		resolver.Resolve([]*physics.Ball{light, heavy})

		lightShift := math.Abs(light.Position().X - 0)
		heavyShift := math.Abs(heavy.Position().X - 45)
		Expect(heavyShift).To(BeNumerically("<", lightShift))
		Expect(lightShift + heavyShift).To(BeNumerically("~", 6, 1e-9))
		Expect(heavyShift / lightShift).To(BeNumerically("~", light.Mass()/heavy.Mass(), 1e-9))
	})

	It("never mutates mass", func() {
		rng := rand.New(rand.NewSource(7))
		balls := make([]*physics.Ball, 0, 20)
		masses := make([]float64, 0, 20)
		for i := 0; i < 20; i++ {
			b := steadyBall(10+rng.Float64()*30, dynamo.V(rng.Float64()*200, rng.Float64()*200), dynamo.V(rng.Float64()*200-100, rng.Float64()*200-100))
			balls = append(balls, b)
			masses = append(masses, b.Mass())
		}

		for i := 0; i < 50; i++ {
			resolver.Resolve(balls)
		}

		for i, b := range balls {
			Expect(b.Mass()).To(Equal(masses[i]))
		}
	})

	It("applies equal and opposite impulses along the normal", func() {
		a := steadyBall(20, dynamo.V(0, 0), dynamo.V(-40, 15))
		b := steadyBall(40, dynamo.V(-50, -20), dynamo.V(80, 30))
		va, vb := a.Velocity(), b.Velocity()

		Expect(resolver.ResolvePair(a, b)).To(BeTrue())

		dA := a.Velocity()
		dA.Sub(va)
		dB := b.Velocity()
		dB.Sub(vb)
		Expect(dA.Length()).To(BeNumerically(">", 0))
		Expect(a.Mass()*dA.X + b.Mass()*dB.X).To(BeNumerically("~", 0, 1e-3))
		Expect(a.Mass()*dA.Y + b.Mass()*dB.Y).To(BeNumerically("~", 0, 1e-3))

		n := dynamo.V(0, 0)
		n.Sub(dynamo.V(-50, -20)).Normalize()
		cross := dA.X*n.Y - dA.Y*n.X
		Expect(cross).To(BeNumerically("~", 0, 1e-9))
	})

	It("leaves velocities alone for separating pairs but still corrects overlap", func() {
		a := steadyBall(30, dynamo.V(0, 0), dynamo.V(50, 0))
		b := steadyBall(30, dynamo.V(-50, 0), dynamo.V(-50, 0))

		Expect(resolver.ResolvePair(a, b)).To(BeTrue())

		Expect(a.Velocity()).To(Equal(dynamo.V(50, 0)))
		Expect(b.Velocity()).To(Equal(dynamo.V(-50, 0)))
		Expect(a.Position().DistanceTo(b.Position())).To(BeNumerically("~", 61, 1e-9))
	})

	It("ignores pairs that do not overlap", func() {
		a := steadyBall(30, dynamo.V(0, 0), dynamo.V(50, 0))
		b := steadyBall(30, dynamo.V(-60, 0), dynamo.V(100, 0))

		Expect(resolver.Resolve([]*physics.Ball{a, b})).To(BeZero())

		Expect(a.Position()).To(Equal(dynamo.V(0, 0)))
		Expect(b.Position()).To(Equal(dynamo.V(-60, 0)))
		Expect(a.Velocity()).To(Equal(dynamo.V(50, 0)))
		Expect(b.Velocity()).To(Equal(dynamo.V(100, 0)))
	})

	It("uses the current radius of growing balls", func() {
		a, _ := physics.NewBall(dynamo.White, 50, dynamo.V(0, 0), dynamo.Vec{}, 0)
		b, _ := physics.NewBall(dynamo.White, 50, dynamo.V(60, 0), dynamo.Vec{}, 0)

		Expect(resolver.Resolve([]*physics.Ball{a, b})).To(BeZero())

		a.Update(50)
		b.Update(50)
		Expect(a.CurrentRadius()).To(BeNumerically("~", 25, 1e-9))
		Expect(resolver.Resolve([]*physics.Ball{a, b})).To(BeZero())

		a.Update(30)
		b.Update(30)
		Expect(resolver.Resolve([]*physics.Ball{a, b})).To(Equal(1))
	})

	It("separates coincident balls deterministically", func() {
		a := steadyBall(20, dynamo.V(100, 100), dynamo.Vec{})
		b := steadyBall(20, dynamo.V(100, 100), dynamo.Vec{})

		resolver.Resolve([]*physics.Ball{a, b})

		Expect(a.Position().IsValid()).To(BeTrue())
		Expect(b.Position().IsValid()).To(BeTrue())
		Expect(a.Velocity().IsValid()).To(BeTrue())
		Expect(a.Position()).To(Equal(dynamo.V(120.5, 100)))
		Expect(b.Position()).To(Equal(dynamo.V(79.5, 100)))
	})

	It("falls back to (1, 0) for a zero-value resolver", func() {
		a := steadyBall(20, dynamo.V(100, 100), dynamo.Vec{})
		b := steadyBall(20, dynamo.V(100, 100), dynamo.Vec{})

		var zero physics.CollisionResolver
		zero.Resolve([]*physics.Ball{a, b})

		Expect(a.Position().X).To(BeNumerically(">", b.Position().X))
		Expect(a.Position().Y).To(Equal(100.0))
	})

	It("honours a custom fallback normal", func() {
		a := steadyBall(20, dynamo.V(100, 100), dynamo.Vec{})
		b := steadyBall(20, dynamo.V(100, 100), dynamo.Vec{})

		custom := &physics.CollisionResolver{Fallback: dynamo.V(0, -3)}
		custom.Resolve([]*physics.Ball{a, b})

		Expect(a.Position().X).To(Equal(100.0))
		Expect(a.Position().Y).To(BeNumerically("<", b.Position().Y))
	})

	It("skips a ball compared with itself", func() {
		a := steadyBall(20, dynamo.V(100, 100), dynamo.V(10, 0))
		Expect(resolver.Resolve([]*physics.Ball{a})).To(BeZero())
		Expect(a.Position()).To(Equal(dynamo.V(100, 100)))
	})
})
