// Package physics provides the longitudinal vehicle model.
//
// [Vehicle] owns its parameters and state and is advanced one fixed sample
// at a time with [Vehicle.Step]:
//
//	v, err := physics.NewVehicle(physics.DefaultVehicleParams())
//	if err != nil {
//	    return err
//	}
//	for k := 0; k < 2000; k++ {
//	    record(v.Position(), v.Velocity())
//	    v.Step(throttle(float64(k)*0.01), grade(v.Position()))
//	}
//
// [Plant] wraps a Vehicle as a [dynamo.Plant] so the generic simulator,
// metrics and storage can drive it.
//
// # Concurrency
//
// A Vehicle is plain mutable state. Give every goroutine its own instance.
package physics
