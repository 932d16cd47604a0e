package physics_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ballsim/internal/dynamo"
	"github.com/san-kum/ballsim/internal/physics"
)

var _ = Describe("WallResolver", func() {
	var (
		walls  physics.WallResolver
		bounds dynamo.Bounds
	)

	BeforeEach(func() {
		bounds = dynamo.Bounds{Width: 800, Height: 600}
	})

	It("reflects off the left wall and clamps to the radius", func() {
		b := steadyBall(20, dynamo.V(5, 300), dynamo.V(-120, 0))

		hits := walls.Resolve([]*physics.Ball{b}, bounds)

		Expect(hits).To(Equal(1))
		Expect(b.Velocity().X).To(Equal(120.0))
		Expect(b.Position().X).To(Equal(20.0))
		Expect(b.Position().Y).To(Equal(300.0))
	})

	It("handles both axes independently", func() {
		b := steadyBall(10, dynamo.V(795, 598), dynamo.V(30, 40))

		Expect(walls.Resolve([]*physics.Ball{b}, bounds)).To(Equal(2))

		Expect(b.Position()).To(Equal(dynamo.V(790, 590)))
		Expect(b.Velocity()).To(Equal(dynamo.V(-30, -40)))
	})

	It("snaps to the closer bound even if that is the opposite wall", func() {
		b := steadyBall(20, dynamo.V(-700, 300), dynamo.V(-10, 0))

		walls.Resolve([]*physics.Ball{b}, bounds)

		Expect(b.Position().X).To(Equal(20.0))

		far := steadyBall(20, dynamo.V(1700, 300), dynamo.V(10, 0))
		walls.Resolve([]*physics.Ball{far}, bounds)
		Expect(far.Position().X).To(Equal(780.0))
	})

	It("picks the far bound on an exact tie", func() {
		narrow := dynamo.Bounds{Width: 100, Height: 600}
		b := steadyBall(60, dynamo.V(50, 300), dynamo.Vec{})

		walls.Resolve([]*physics.Ball{b}, narrow)

		Expect(b.Position().X).To(Equal(40.0))
	})

	It("leaves balls inside the band untouched", func() {
		b := steadyBall(20, dynamo.V(20, 580), dynamo.V(-5, 5))

		Expect(walls.Resolve([]*physics.Ball{b}, bounds)).To(BeZero())

		Expect(b.Position()).To(Equal(dynamo.V(20, 580)))
		Expect(b.Velocity()).To(Equal(dynamo.V(-5, 5)))
	})

	It("contains every ball after resolution", func() {
		rng := rand.New(rand.NewSource(42))
		balls := make([]*physics.Ball, 0, 100)
		for i := 0; i < 100; i++ {
			pos := dynamo.V(rng.Float64()*2000-600, rng.Float64()*1600-500)
			vel := dynamo.V(rng.Float64()*400-200, rng.Float64()*400-200)
			balls = append(balls, steadyBall(5+rng.Float64()*75, pos, vel))
		}

		walls.Resolve(balls, bounds)

		for _, b := range balls {
			Expect(bounds.Contains(b.Position(), b.CurrentRadius())).To(BeTrue(), "ball at %v r=%v", b.Position(), b.CurrentRadius())
		}
	})

	It("reads new bounds on every call", func() {
		b := steadyBall(20, dynamo.V(500, 300), dynamo.V(10, 0))

		Expect(walls.Resolve([]*physics.Ball{b}, bounds)).To(BeZero())

		shrunk := dynamo.Bounds{Width: 400, Height: 600}
		Expect(walls.Resolve([]*physics.Ball{b}, shrunk)).To(Equal(1))
		Expect(b.Position().X).To(Equal(380.0))
	})
})
