package core

import "github.com/PanditAdityaJi/STM32-Robotic-Arm/protocol"

// ControllerState is one joint's PID accumulator state. It persists across
// control cycles and is written only by the control loop. The integral is
// cleared whenever the joint's limit switch is active or a Stop arrives.
type ControllerState struct {
	Integral  float64
	PrevError float64
}

// JointController runs the per-joint position loop. Each cycle it turns
// the angle error into a servo pulse width, subject to the safety
// interlock which always wins over the computed output.
type JointController struct {
	targets [protocol.NumJoints]float64
	state   [protocol.NumJoints]ControllerState
}

// SetTarget updates a joint's setpoint. The caller validates range; the
// controller itself clips nothing.
func (c *JointController) SetTarget(joint int, angle float64) {
	c.targets[joint] = angle
}

// Target returns a joint's current setpoint.
func (c *JointController) Target(joint int) float64 {
	return c.targets[joint]
}

// Stop zeroes every setpoint contribution: targets hold their value but
// all accumulator state is cleared so outputs return to neutral on joints
// whose error is zero, and no stale integral pushes an output.
func (c *JointController) Stop(currentAngles [protocol.NumJoints]float64) {
	for j := range c.state {
		c.targets[j] = currentAngles[j]
		c.state[j] = ControllerState{}
	}
}

// ClearState resets one joint's accumulators.
func (c *JointController) ClearState(joint int) {
	c.state[joint] = ControllerState{}
}

// State returns a copy of one joint's accumulator state.
func (c *JointController) State(joint int) ControllerState {
	return c.state[joint]
}

// Update computes one joint's actuator command for this cycle. If the
// joint's limit switch is active the output is forced to neutral and the
// integral cleared regardless of the error.
func (c *JointController) Update(joint int, currentAngle float64, limitActive bool) uint16 {
	if limitActive {
		c.state[joint] = ControllerState{}
		return ServoNeutralUS
	}

	st := &c.state[joint]
	err := c.targets[joint] - currentAngle

	st.Integral += err
	if st.Integral > IntegralLimit {
		st.Integral = IntegralLimit
	} else if st.Integral < -IntegralLimit {
		st.Integral = -IntegralLimit
	}

	derivative := err - st.PrevError
	st.PrevError = err

	out := GainP*err + GainI*st.Integral + GainD*derivative

	us := ServoNeutralUS + out*ServoScale
	if us > ServoMaxUS {
		us = ServoMaxUS
	} else if us < ServoMinUS {
		us = ServoMinUS
	}
	return uint16(us)
}
