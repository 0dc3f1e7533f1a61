// Package dynamo provides the core simulation primitives for sampled plants.
//
// The package defines the interfaces and types shared by every part of the
// simulator:
//
//   - [State]: vector representing plant state
//   - [Plant]: a discrete-time system advanced one fixed sample per call
//   - [Controller]: computes the control input from state and time
//   - [Simulator]: orchestrates a record-then-step run
//   - [Ensemble]: runs independent plants concurrently
//
// # Example
//
//	v, _ := physics.NewVehicle(physics.DefaultVehicleParams())
//	sim := dynamo.New(physics.NewPlant(v), control.NewProfile(throttle, grade))
//	result, _ := sim.Run(ctx, cfg)
//
// # Thread Safety
//
// Simulator and Plant instances are NOT thread-safe. For parallel runs,
// use [Ensemble], which builds a fresh plant for every run.
package dynamo
