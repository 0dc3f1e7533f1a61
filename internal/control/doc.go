// Package control provides the driver signals that feed a vehicle plant.
//
// Controllers implement the [dynamo.Controller] interface and return
// u = {throttle, gradeAngle}. Throttle is usually a function of time and
// grade a function of position, since the slope depends on where the
// vehicle is on the road:
//
//   - [Profile]: open-loop throttle schedule plus road grade
//   - [Cruise]: PID speed hold on top of a road grade
//   - [Manual]: externally set throttle, used by the live view
//   - [None]: zero throttle on a flat road
//
// # Usage
//
//	throttle := control.CourseThrottle()
//	road := control.CourseGrade()
//	sim := dynamo.New(plant, control.NewProfile(throttle, road))
//
// Controllers implementing [dynamo.Configurable] support live tuning.
package control
