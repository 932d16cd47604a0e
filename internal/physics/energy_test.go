package physics_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ballsim/internal/dynamo"
	"github.com/san-kum/ballsim/internal/physics"
)

var _ = Describe("Aggregates", func() {
	It("sums kinetic energy and momentum", func() {
		a := steadyBall(10, dynamo.V(0, 0), dynamo.V(3, 4))
		b := steadyBall(10, dynamo.V(500, 0), dynamo.V(-3, -4))

		Expect(physics.TotalKineticEnergy([]*physics.Ball{a, b})).To(BeNumerically("~", 2*0.5*a.Mass()*25, 1e-6))
		Expect(physics.TotalMomentum([]*physics.Ball{a, b}).Length()).To(BeNumerically("~", 0, 1e-9))
	})

	It("conserves momentum through a head-on collision", func() {
		a := steadyBall(20, dynamo.V(0, 0), dynamo.V(50, 0))
		b := steadyBall(30, dynamo.V(45, 0), dynamo.V(-10, 0))
		balls := []*physics.Ball{a, b}
		before := physics.TotalMomentum(balls)

		physics.NewCollisionResolver().Resolve(balls)

		after := physics.TotalMomentum(balls)
		Expect(after.X).To(BeNumerically("~", before.X, 1e-6*a.Mass()))
		Expect(after.Y).To(BeNumerically("~", before.Y, 1e-6*a.Mass()))
	})

	It("measures the deepest overlap", func() {
		a := steadyBall(10, dynamo.V(0, 0), dynamo.Vec{})
		b := steadyBall(10, dynamo.V(15, 0), dynamo.Vec{})
		c := steadyBall(10, dynamo.V(100, 0), dynamo.Vec{})

		Expect(physics.MaxOverlap([]*physics.Ball{a, b, c})).To(BeNumerically("~", 5, 1e-9))
		Expect(physics.MaxOverlap([]*physics.Ball{a, c})).To(BeZero())
	})
})
