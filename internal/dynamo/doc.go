// Package dynamo provides the core value types shared by the ball simulation.
//
// The package has no dependencies beyond the standard library and defines:
//
//   - [Vec]: 2D vector with in-place, chainable arithmetic
//   - [Bounds]: rectangular viewport the balls are confined to
//   - [Color]: opaque RGBA display attribute of a ball
//   - sentinel errors shared by the physics and simulation packages
//
// # Example
//
//	v := dynamo.Vec{X: 200}
//	v.Rotate(math.Pi / 16).Mul(0.5)
//	d := v.DistanceTo(dynamo.Vec{})
//
// # Value Semantics
//
// Vec methods mutate their receiver and return it so transformations can be
// chained. Assigning a Vec copies it; two balls never share vector storage.
package dynamo
