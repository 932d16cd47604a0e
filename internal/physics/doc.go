// Package physics implements the ball model and its collision handling.
//
//   - [Ball]: circular body with explicit Euler kinematics and a
//     Growing → Steady → Disposing → Disposed lifecycle
//   - [CollisionResolver]: all-pairs elastic impulse with positional correction
//   - [WallResolver]: reflection against the viewport edges
//
// Time is always in milliseconds and velocity in units per second.
//
// # Collision Response
//
// For an overlapping pair the contact normal points from the second ball to
// the first. Velocities change only when the balls approach along the normal;
// overlap is always pushed apart by the penetration depth plus one unit, the
// heavier ball moving less:
//
//	r := physics.NewCollisionResolver()
//	contacts := r.Resolve(balls)
//	hits := physics.WallResolver{}.Resolve(balls, bounds)
package physics
