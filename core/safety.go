package core

import "github.com/PanditAdityaJi/STM32-Robotic-Arm/protocol"

// LimitSwitchSet is the per-joint limit switch state for one control
// cycle. Bit i of the mask is set when joint i rests at its mechanical
// travel endpoint.
type LimitSwitchSet [protocol.NumJoints]bool

// Active reports whether a joint's switch is engaged.
func (s LimitSwitchSet) Active(joint int) bool {
	return joint >= 0 && joint < protocol.NumJoints && s[joint]
}

// Mask encodes the set as the telemetry trailer byte.
func (s LimitSwitchSet) Mask() uint8 {
	var m uint8
	for i, active := range s {
		if active {
			m |= 1 << uint(i)
		}
	}
	return m
}

// Interlock reads the limit switches and gates every actuator output.
// Switch reads are debounced: a switch counts as engaged only after
// SwitchDebounceSamples consecutive active reads, mirroring the
// oversampled endstop confirmation used during homing.
type Interlock struct {
	pins       [protocol.NumJoints]GPIOPin
	activeHigh bool
	streak     [protocol.NumJoints]uint8
	state      LimitSwitchSet
}

// NewInterlock configures the limit switch inputs. activeHigh selects the
// switch wiring polarity.
func NewInterlock(pins [protocol.NumJoints]GPIOPin, activeHigh bool) (*Interlock, error) {
	il := &Interlock{pins: pins, activeHigh: activeHigh}
	for _, pin := range pins {
		var err error
		if activeHigh {
			err = MustGPIO().ConfigureInputPullDown(pin)
		} else {
			err = MustGPIO().ConfigureInputPullUp(pin)
		}
		if err != nil {
			return nil, err
		}
	}
	return il, nil
}

// Sample reads all switches once. Called exactly once per control cycle,
// before any output is written.
func (il *Interlock) Sample() LimitSwitchSet {
	for i, pin := range il.pins {
		raw := MustGPIO().ReadPin(pin) == il.activeHigh
		if raw {
			if il.streak[i] < SwitchDebounceSamples {
				il.streak[i]++
			}
			il.state[i] = il.streak[i] >= SwitchDebounceSamples
		} else {
			il.streak[i] = 0
			il.state[i] = false
		}
	}
	return il.state
}

// State returns the switch set from the most recent Sample.
func (il *Interlock) State() LimitSwitchSet {
	return il.state
}
