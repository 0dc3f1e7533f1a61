package physics_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/vehsim/internal/dynamo"
	"github.com/san-kum/vehsim/internal/physics"
)

func newVehicle() *physics.Vehicle {
	v, err := physics.NewVehicle(physics.DefaultVehicleParams())
	Expect(err).NotTo(HaveOccurred())
	return v
}

func drive(v *physics.Vehicle, steps int, throttle, grade float64) {
	for i := 0; i < steps; i++ {
		v.Step(throttle, grade)
	}
}

var _ = Describe("Vehicle", func() {
	var veh *physics.Vehicle

	BeforeEach(func() {
		veh = newVehicle()
	})

	Describe("construction", func() {
		It("starts from the default state", func() {
			Expect(veh.State()).To(Equal(dynamo.State{0, 5, 0, 100, 0}))
		})

		It("carries the reference parameters", func() {
			p := veh.Params()
			Expect(p.A0).To(Equal(400.0))
			Expect(p.A2).To(Equal(-0.0002))
			Expect(p.Mass).To(Equal(2000.0))
			Expect(p.MaxTireForce).To(Equal(10000.0))
			Expect(veh.SampleTime()).To(Equal(0.01))
		})

		DescribeTable("rejects parameters it would divide by",
			func(name string, value float64) {
				p, err := physics.DefaultVehicleParams().With(name, value)
				Expect(err).NotTo(HaveOccurred())

				_, err = physics.NewVehicle(p)
				Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
			},
			Entry("zero mass", "mass", 0.0),
			Entry("negative mass", "mass", -1.0),
			Entry("zero inertia", "engine_inertia", 0.0),
			Entry("zero sample time", "sample_time", 0.0),
			Entry("negative sample time", "sample_time", -0.01),
			Entry("NaN stiffness", "tire_stiffness", math.NaN()),
			Entry("infinite drag", "aero_coeff", math.Inf(1)),
		)

		It("names the first non-finite parameter every time", func() {
			p := physics.DefaultVehicleParams()
			p.A0 = math.NaN()
			p.TireStiffness = math.Inf(1)
			p.SampleTime = math.NaN()

			for i := 0; i < 20; i++ {
				Expect(p.Validate()).To(MatchError(ContainSubstring("a0 must be finite")))
			}
		})

		It("lists every parameter in order", func() {
			Expect(physics.ParamNames).To(HaveLen(len(physics.DefaultVehicleParams().GetParams())))
			Expect(physics.ParamNames[0]).To(Equal("a0"))
			Expect(physics.ParamNames[len(physics.ParamNames)-1]).To(Equal("sample_time"))
		})

		It("rejects unknown parameter names", func() {
			_, err := physics.DefaultVehicleParams().With("wing_span", 1)
			Expect(err).To(MatchError(ContainSubstring("wing_span")))
		})
	})

	Describe("a single step from rest state", func() {
		BeforeEach(func() {
			veh.Step(0.2, 0)
		})

		It("integrates with the previous derivatives", func() {
			Expect(veh.Position()).To(BeNumerically("~", 0.05, 1e-12))
			Expect(veh.Velocity()).To(Equal(5.0))
			Expect(veh.EngineSpeed()).To(Equal(100.0))
		})

		It("leaves the end-of-step derivatives for the next call", func() {
			Expect(veh.Acceleration()).To(BeNumerically("~", (10000-34.05)/2000, 1e-9))
			Expect(veh.EngineAccel()).To(BeNumerically("~", 7.802475, 1e-9))
		})

		It("reports the same force balance", func() {
			f := veh.Forces(0.2, 0)
			Expect(f.EngineTorque).To(BeNumerically("~", 81.6, 1e-9))
			Expect(f.Aero).To(BeNumerically("~", 34.0, 1e-9))
			Expect(f.Rolling).To(BeNumerically("~", 0.05, 1e-12))
			Expect(f.Grade).To(Equal(0.0))
			Expect(f.Load).To(BeNumerically("~", 34.05, 1e-9))
			Expect(f.WheelSpeed).To(BeNumerically("~", 35.0, 1e-9))
			Expect(f.Slip).To(BeNumerically("~", 1.1, 1e-9))
			Expect(f.Tire).To(Equal(10000.0))
		})

		It("uses the new acceleration on the following step", func() {
			a := veh.Acceleration()
			veh.Step(0.2, 0)
			Expect(veh.Velocity()).To(BeNumerically("~", 5+0.01*a, 1e-12))
			Expect(veh.Position()).To(BeNumerically("~", 0.05+0.01*5+0.5*0.0001*a, 1e-12))
		})
	})

	Describe("Forces", func() {
		It("does not mutate the state", func() {
			before := veh.State()
			_ = veh.Forces(0.7, 0.1)
			Expect(veh.State()).To(Equal(before))
		})

		It("adds the grade component to the load", func() {
			f := veh.Forces(0, 0.1)
			Expect(f.Grade).To(BeNumerically("~", 2000*9.81*math.Sin(0.1), 1e-9))
			Expect(f.Load).To(BeNumerically("~", f.Aero+f.Rolling+f.Grade, 1e-9))
		})
	})

	Describe("Reset", func() {
		It("restores the initial state after any run", func() {
			drive(veh, 1234, 0.4, 0.03)
			veh.Reset()
			Expect(veh.State()).To(Equal(dynamo.State{0, 5, 0, 100, 0}))
		})

		It("is idempotent", func() {
			drive(veh, 10, 0.4, 0)
			veh.Reset()
			first := veh.State()
			veh.Reset()
			Expect(veh.State()).To(Equal(first))
		})

		It("keeps the parameters", func() {
			p := veh.Params()
			drive(veh, 10, 0.4, 0)
			veh.Reset()
			Expect(veh.Params()).To(Equal(p))
		})
	})

	It("is deterministic for identical inputs", func() {
		run := func() []dynamo.State {
			veh.Reset()
			out := make([]dynamo.State, 0, 500)
			for k := 0; k < 500; k++ {
				out = append(out, veh.State())
				veh.Step(0.2+0.3*math.Sin(float64(k)*0.01), 0.05*math.Cos(veh.Position()/30))
			}
			return out
		}
		Expect(run()).To(Equal(run()))
	})

	Describe("terminal velocity", func() {
		terminal := func(throttle float64) *physics.Vehicle {
			v := newVehicle()
			drive(v, 10000, throttle, 0)
			return v
		}

		It("converges under constant throttle on a flat road", func() {
			v := terminal(0.2)
			Expect(math.Abs(v.Acceleration())).To(BeNumerically("<", 2e-3))

			f := v.Forces(0.2, 0)
			Expect(math.Abs(f.Tire - f.Load)).To(BeNumerically("<", 2000*2e-3+1e-9))
		})

		It("increases with throttle", func() {
			Expect(terminal(0.2).Velocity()).To(BeNumerically("<", terminal(0.3).Velocity()))
			Expect(terminal(0.3).Velocity()).To(BeNumerically("<", terminal(0.5).Velocity()))
		})
	})

	It("reaches a point downhill no later than uphill", func() {
		stepsTo := func(grade float64) int {
			v := newVehicle()
			for k := 0; k < 100000; k++ {
				if v.Position() >= 50 {
					return k
				}
				v.Step(0.3, grade)
			}
			return math.MaxInt
		}
		for _, alpha := range []float64{0.02, 0.05} {
			Expect(stepsTo(-alpha)).To(BeNumerically("<=", stepsTo(alpha)))
		}
	})

	It("coasts down without reversing once the start-up slip has settled", func() {
		speeds := make([]float64, 0, 20000)
		for k := 0; k < 20000; k++ {
			speeds = append(speeds, veh.Velocity())
			veh.Step(0, 0)
		}

		peak := 0
		for i, s := range speeds {
			if s > speeds[peak] {
				peak = i
			}
		}
		for i := peak + 1; i < len(speeds); i++ {
			Expect(speeds[i]).To(BeNumerically("<=", speeds[i-1]+1e-12))
			Expect(speeds[i]).To(BeNumerically(">=", 0))
		}
		Expect(speeds[len(speeds)-1]).To(BeNumerically("<", speeds[peak]))
	})

	It("passes out-of-range throttle through", func() {
		a := newVehicle()
		b := newVehicle()
		a.Step(1.5, 0)
		b.Step(1.0, 0)
		Expect(a.EngineAccel()).To(BeNumerically(">", b.EngineAccel()))
	})
})

var _ = Describe("SlipRatio", func() {
	It("is zero at standstill", func() {
		Expect(physics.SlipRatio(35, 0.3, 0)).To(Equal(0.0))
		Expect(physics.SlipRatio(35, 0.3, 0.001)).To(Equal(0.0))
		Expect(physics.SlipRatio(35, 0.3, -2)).To(Equal(0.0))
	})

	It("normalizes by vehicle speed", func() {
		Expect(physics.SlipRatio(35, 0.3, 5)).To(BeNumerically("~", 1.1, 1e-12))
		Expect(physics.SlipRatio(10, 0.3, 6)).To(BeNumerically("~", -0.5, 1e-12))
	})
})

var _ = Describe("TireForce", func() {
	It("is linear inside the adhesion region", func() {
		Expect(physics.TireForce(0.5, 10000, 10000)).To(Equal(5000.0))
		Expect(physics.TireForce(-0.5, 10000, 10000)).To(Equal(-5000.0))
	})

	It("saturates to the positive limit for large slip of either sign", func() {
		Expect(physics.TireForce(1, 10000, 8000)).To(Equal(8000.0))
		Expect(physics.TireForce(-3, 10000, 8000)).To(Equal(8000.0))
	})
})
