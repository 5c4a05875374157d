package core

import "testing"

// An active limit switch forces the output to neutral and zeroes the
// integral for every joint, regardless of error magnitude.
func TestPIDLimitSwitchForcesNeutral(t *testing.T) {
	var c JointController
	for j := 0; j < len(c.targets); j++ {
		c.SetTarget(j, 1.5)

		// Build up integral first so the clear is observable.
		for i := 0; i < 10; i++ {
			c.Update(j, 0, false)
		}
		if c.State(j).Integral == 0 {
			t.Fatalf("joint %d: integral did not accumulate", j)
		}

		out := c.Update(j, 0, true)
		if out != ServoNeutralUS {
			t.Errorf("joint %d: output = %d with limit active, want neutral %d", j, out, ServoNeutralUS)
		}
		if st := c.State(j); st.Integral != 0 || st.PrevError != 0 {
			t.Errorf("joint %d: controller state not cleared: %+v", j, st)
		}
	}
}

// With zero history, a strictly positive error yields output >= neutral;
// symmetric for negative error.
func TestPIDOutputMonotonicInErrorSign(t *testing.T) {
	errors := []float64{0.001, 0.01, 0.1, 1.0}

	for _, e := range errors {
		var c JointController
		c.SetTarget(0, e)
		if out := c.Update(0, 0, false); out < ServoNeutralUS {
			t.Errorf("error %v: output %d below neutral", e, out)
		}

		var c2 JointController
		c2.SetTarget(0, -e)
		if out := c2.Update(0, 0, false); out > ServoNeutralUS {
			t.Errorf("error %v: output %d above neutral", -e, out)
		}
	}
}

func TestPIDIntegralClamp(t *testing.T) {
	var c JointController
	c.SetTarget(0, JointLimitMax)

	for i := 0; i < 10000; i++ {
		c.Update(0, JointLimitMin, false)
	}

	if integral := c.State(0).Integral; integral > IntegralLimit {
		t.Errorf("integral %v exceeds clamp %v", integral, IntegralLimit)
	}
}

func TestPIDOutputClampedToServoRange(t *testing.T) {
	var c JointController
	c.SetTarget(0, JointLimitMax)
	if out := c.Update(0, JointLimitMin, false); out > ServoMaxUS || out < ServoMinUS {
		t.Errorf("output %d outside [%d, %d]", out, ServoMinUS, ServoMaxUS)
	}

	var c2 JointController
	c2.SetTarget(0, JointLimitMin)
	if out := c2.Update(0, JointLimitMax, false); out > ServoMaxUS || out < ServoMinUS {
		t.Errorf("output %d outside [%d, %d]", out, ServoMinUS, ServoMaxUS)
	}
}

func TestPIDStopClearsAllState(t *testing.T) {
	var c JointController
	var angles [len(c.targets)]float64
	for j := range angles {
		c.SetTarget(j, 1.0)
		c.Update(j, 0, false)
		angles[j] = 0.25
	}

	c.Stop(angles)

	for j := range angles {
		if st := c.State(j); st.Integral != 0 || st.PrevError != 0 {
			t.Errorf("joint %d: state not cleared after Stop", j)
		}
		if c.Target(j) != angles[j] {
			t.Errorf("joint %d: target %v, want measured angle %v", j, c.Target(j), angles[j])
		}
	}
}
