// Package solver drives single tau-hybrid trajectories of a reaction network.
//
// Each call to [Solver.Run] owns one integrator, one combined state vector,
// one random source and one [hybrid.IntegratorData]. The integrator advances
// continuous species and the firing offsets of discrete reactions together;
// after every tau step the offsets that crossed zero fire their reactions.
// Steps that would drive a population negative are rolled back and retried
// with a halved tau, then with a single SSA-style firing.
//
// Network descriptors are read-only, so a Solver without metrics or
// observers may run several trajectories concurrently.
package solver
