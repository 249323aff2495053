// Package dynamo provides core simulation primitives for hybrid kinetics.
//
// The package defines the fundamental interfaces and types shared by the
// integrators, the derivative kernel and the trajectory driver:
//
//   - [State]: flat vector advanced by an integrator
//   - [System]: in-place right-hand side (dydt = f(t, y))
//   - [Integrator]: numerical stepper over a [System]
//   - [Metric] and [Observer]: consumers of the recorded timeline
//   - [Config]: step sizes, output increment and tau step of one run
//
// # Thread Safety
//
// Nothing here holds package-level mutable state. Integrators keep scratch
// buffers and must not be shared between goroutines; give every trajectory
// its own instance.
package dynamo
