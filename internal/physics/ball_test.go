package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ballsim/internal/dynamo"
	"github.com/san-kum/ballsim/internal/physics"
)

var _ = Describe("Ball", func() {
	Describe("construction", func() {
		It("starts growing with zero visible radius", func() {
			b, err := physics.NewBall(dynamo.White, 40, dynamo.V(100, 100), dynamo.V(10, 0), 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Phase()).To(Equal(physics.Growing))
			Expect(b.CurrentRadius()).To(BeZero())
			Expect(b.Radius()).To(Equal(40.0))
			Expect(b.CreationTimeMs()).To(Equal(80.0))
			Expect(b.DisposalTimeMs()).To(Equal(500.0))
		})

		It("derives mass from density and area", func() {
			b, err := physics.NewBall(dynamo.White, 10, dynamo.Vec{}, dynamo.Vec{}, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Mass()).To(BeNumerically("~", physics.DefaultDensity*math.Pi*100, 1e-9))

			dense, err := physics.NewBall(dynamo.White, 10, dynamo.Vec{}, dynamo.Vec{}, 200)
			Expect(err).NotTo(HaveOccurred())
			Expect(dense.Mass()).To(BeNumerically("~", 2*b.Mass(), 1e-9))
		})

		DescribeTable("rejects invalid parameters",
			func(radius, density float64, pos, vel dynamo.Vec) {
				_, err := physics.NewBall(dynamo.White, radius, pos, vel, density)
				Expect(err).To(MatchError(dynamo.ErrParameterBounds))
			},
			Entry("zero radius", 0.0, 0.0, dynamo.Vec{}, dynamo.Vec{}),
			Entry("negative radius", -5.0, 0.0, dynamo.Vec{}, dynamo.Vec{}),
			Entry("NaN radius", math.NaN(), 0.0, dynamo.Vec{}, dynamo.Vec{}),
			Entry("infinite radius", math.Inf(1), 0.0, dynamo.Vec{}, dynamo.Vec{}),
			Entry("negative density", 10.0, -1.0, dynamo.Vec{}, dynamo.Vec{}),
			Entry("NaN position", 10.0, 0.0, dynamo.V(math.NaN(), 0), dynamo.Vec{}),
			Entry("infinite velocity", 10.0, 0.0, dynamo.Vec{}, dynamo.V(0, math.Inf(-1))),
		)
	})

	Describe("integration", func() {
		It("moves by velocity times seconds elapsed", func() {
			b, _ := physics.NewBall(dynamo.White, 10, dynamo.V(0, 0), dynamo.V(100, -50), 0)
			b.Update(500)
			Expect(b.Position().X).To(BeNumerically("~", 50, 1e-9))
			Expect(b.Position().Y).To(BeNumerically("~", -25, 1e-9))
		})

		It("keeps moving while disposing", func() {
			b := steadyBall(50, dynamo.V(0, 0), dynamo.V(1000, 0))
			b.Dispose()
			b.Update(10)
			Expect(b.Position().X).To(BeNumerically("~", 10, 1e-9))
		})
	})

	Describe("growth", func() {
		It("grows linearly over creation time", func() {
			b, _ := physics.NewBall(dynamo.White, 40, dynamo.Vec{}, dynamo.Vec{}, 0)
			b.Update(20)
			Expect(b.CurrentRadius()).To(BeNumerically("~", 10, 1e-9))
			b.Update(20)
			Expect(b.CurrentRadius()).To(BeNumerically("~", 20, 1e-9))
			Expect(b.Phase()).To(Equal(physics.Growing))
		})

		It("reaches full radius after 2*radius milliseconds and stays steady", func() {
			b, _ := physics.NewBall(dynamo.White, 40, dynamo.Vec{}, dynamo.Vec{}, 0)
			for i := 0; i < 8; i++ {
				b.Update(10)
			}
			Expect(b.CurrentRadius()).To(BeNumerically("~", 40, 1e-9))
			Expect(b.Phase()).To(Equal(physics.Steady))

			for i := 0; i < 100; i++ {
				b.Update(16)
			}
			Expect(b.Phase()).To(Equal(physics.Steady))
			Expect(b.CurrentRadius()).To(Equal(40.0))
		})

		It("snaps to full radius when a frame overshoots", func() {
			b, _ := physics.NewBall(dynamo.White, 40, dynamo.Vec{}, dynamo.Vec{}, 0)
			b.Update(1000)
			Expect(b.CurrentRadius()).To(Equal(40.0))
			Expect(b.Phase()).To(Equal(physics.Steady))
		})
	})

	Describe("disposal", func() {
		It("only flags the ball until the next update", func() {
			b := steadyBall(50, dynamo.Vec{}, dynamo.Vec{})
			b.Dispose()
			Expect(b.Phase()).To(Equal(physics.Disposing))
			Expect(b.CurrentRadius()).To(Equal(50.0))
		})

		It("shrinks by the remaining-time coefficient compounding per frame", func() {
			b := steadyBall(100, dynamo.Vec{}, dynamo.Vec{})
			b.Dispose()
			b.Update(100)
			Expect(b.CurrentRadius()).To(BeNumerically("~", 80, 1e-9))
			b.Update(100)
			Expect(b.CurrentRadius()).To(BeNumerically("~", 48, 1e-9))
			b.Update(100)
			Expect(b.CurrentRadius()).To(BeNumerically("~", 19.2, 1e-9))
		})

		It("becomes disposed once the disposal time has elapsed", func() {
			b := steadyBall(100, dynamo.Vec{}, dynamo.Vec{})
			b.Dispose()
			for i := 0; i < 4; i++ {
				b.Update(100)
				Expect(b.IsDisposed()).To(BeFalse())
			}
			b.Update(100)
			Expect(b.IsDisposed()).To(BeTrue())
		})

		It("becomes disposed early once the radius drops to one", func() {
			b := steadyBall(2, dynamo.Vec{}, dynamo.Vec{})
			b.Dispose()
			frames := 0
			for !b.IsDisposed() {
				b.Update(100)
				frames++
			}
			Expect(frames).To(Equal(3))
		})

		It("shrinks from the radius reached while growing", func() {
			b, _ := physics.NewBall(dynamo.White, 40, dynamo.Vec{}, dynamo.Vec{}, 0)
			b.Update(40)
			Expect(b.CurrentRadius()).To(BeNumerically("~", 20, 1e-9))
			b.Dispose()
			Expect(b.Phase()).To(Equal(physics.Disposing))
			b.Update(250)
			Expect(b.CurrentRadius()).To(BeNumerically("~", 10, 1e-9))
		})

		It("ignores repeated dispose requests", func() {
			b := steadyBall(100, dynamo.Vec{}, dynamo.Vec{})
			b.Dispose()
			b.Update(100)
			b.Dispose()
			Expect(b.Phase()).To(Equal(physics.Disposing))
			Expect(b.CurrentRadius()).To(BeNumerically("~", 80, 1e-9))
		})

		It("treats update on a disposed ball as a no-op", func() {
			b := steadyBall(10, dynamo.V(5, 5), dynamo.V(100, 100))
			b.Dispose()
			for !b.IsDisposed() {
				b.Update(100)
			}
			pos, r := b.Position(), b.CurrentRadius()
			b.Update(100)
			Expect(b.Position()).To(Equal(pos))
			Expect(b.CurrentRadius()).To(Equal(r))
			b.Dispose()
			Expect(b.Phase()).To(Equal(physics.Disposed))
		})
	})

	Describe("lifecycle monotonicity", func() {
		It("never regresses and keeps radius monotone within each phase", func() {
			b, _ := physics.NewBall(dynamo.White, 60, dynamo.Vec{}, dynamo.Vec{}, 0)
			dts := []float64{3, 17, 1, 9, 33, 16, 16, 4, 50, 16, 8, 120, 70, 16, 16, 90, 200}
			prevPhase, prevRadius := b.Phase(), b.CurrentRadius()
			for i, dt := range dts {
				if i == 10 {
					b.Dispose()
				}
				b.Update(dt)
				Expect(int(b.Phase())).To(BeNumerically(">=", int(prevPhase)))
				switch b.Phase() {
				case physics.Growing:
					Expect(b.CurrentRadius()).To(BeNumerically(">=", prevRadius))
				case physics.Disposing:
					Expect(b.CurrentRadius()).To(BeNumerically("<=", prevRadius))
				}
				Expect(b.CurrentRadius()).To(BeNumerically(">=", 0))
				Expect(b.CurrentRadius()).To(BeNumerically("<=", b.Radius()))
				prevPhase, prevRadius = b.Phase(), b.CurrentRadius()
			}
			Expect(b.Phase()).To(Equal(physics.Disposed))
		})
	})

	Describe("Contains", func() {
		It("uses the current radius inclusively", func() {
			b := steadyBall(20, dynamo.V(100, 100), dynamo.Vec{})
			Expect(b.Contains(dynamo.V(120, 100))).To(BeTrue())
			Expect(b.Contains(dynamo.V(121, 100))).To(BeFalse())
		})

		It("contains nothing before the first frame", func() {
			b, _ := physics.NewBall(dynamo.White, 20, dynamo.V(100, 100), dynamo.Vec{}, 0)
			Expect(b.Contains(dynamo.V(101, 100))).To(BeFalse())
		})
	})

	It("names its phases", func() {
		Expect(physics.Growing.String()).To(Equal("growing"))
		Expect(physics.Disposed.String()).To(Equal("disposed"))
	})
})
