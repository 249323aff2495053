// Package hybrid implements the derivative kernel of the tau-hybrid solver.
//
// The integrator advances one combined vector per trajectory. Its first S
// slots hold species concentrations; the next R slots hold one firing-offset
// accumulator per reaction:
//
//	y = [c_0 ... c_{S-1} | o_0 ... o_{R-1}]
//
// On every call [RHS] refreshes the trajectory's [IntegratorData] from y,
// evaluates each species' [DiffEquation] into the continuous half of dydt and
// each [Discrete] reaction's [Propensity] into the offset half. [Continuous]
// reactions contribute only through the species equations.
//
// # Thread Safety
//
// An [IntegratorData] belongs to a single trajectory and is written on every
// call. Species and reaction descriptors are read-only and may be shared by
// any number of trajectories running in parallel.
package hybrid
