package core

import "github.com/PanditAdityaJi/STM32-Robotic-Arm/protocol"

// homingDriveUS is the constant slow actuator command used to approach the
// limit switch, on the negative travel side of neutral.
const homingDriveUS = ServoNeutralUS - uint16(HomingRate*ServoScale)

// Calibrator runs the per-joint homing sequence: drive slowly toward the
// limit switch and, on (debounced) switch activation, zero the joint's
// encoder to define its reference origin and halt. Each joint homes
// independently; completion is switch activation, never a fixed time or
// distance.
type Calibrator struct {
	homing [protocol.NumJoints]bool
}

// Begin starts homing one joint.
func (c *Calibrator) Begin(joint int) {
	if joint >= 0 && joint < protocol.NumJoints {
		c.homing[joint] = true
	}
}

// BeginAll starts homing every joint.
func (c *Calibrator) BeginAll() {
	for j := range c.homing {
		c.homing[j] = true
	}
}

// Busy reports whether any joint is still homing.
func (c *Calibrator) Busy() bool {
	for _, h := range c.homing {
		if h {
			return true
		}
	}
	return false
}

// Homing reports whether one joint is homing.
func (c *Calibrator) Homing(joint int) bool {
	return joint >= 0 && joint < protocol.NumJoints && c.homing[joint]
}

// Step advances the calibration by one control cycle. For a homing joint
// it returns an actuator override; the control loop applies it instead of
// the PID output. When the joint's switch is active the encoder is zeroed,
// the controller state cleared, and motion halts at neutral.
func (c *Calibrator) Step(joint int, limits LimitSwitchSet, enc *Encoders, ctrl *JointController) (us uint16, override bool) {
	if !c.homing[joint] {
		return 0, false
	}

	if limits.Active(joint) {
		enc.Zero(joint)
		ctrl.SetTarget(joint, 0)
		ctrl.ClearState(joint)
		c.homing[joint] = false
		return ServoNeutralUS, true
	}

	return homingDriveUS, true
}
