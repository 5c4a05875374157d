//go:build rp2040

package main

import (
	"machine"

	"github.com/PanditAdityaJi/STM32-Robotic-Arm/core"
	"github.com/PanditAdityaJi/STM32-Robotic-Arm/protocol"
)

// encoderPins maps each joint to its quadrature channel pads.
type encoderPins struct {
	a, b machine.Pin
}

var encoderMap = [protocol.NumJoints]encoderPins{
	{machine.GPIO12, machine.GPIO13},
	{machine.GPIO14, machine.GPIO15},
	{machine.GPIO16, machine.GPIO17},
	{machine.GPIO18, machine.GPIO19},
	{machine.GPIO20, machine.GPIO21},
	{machine.GPIO22, machine.GPIO23},
}

// attachEncoders wires both edges of every channel-A pad to the joint's
// edge handler. The handler runs in interrupt context; it samples the
// pin levels and defers everything else to the machine's atomic state.
func attachEncoders(m *core.Machine) error {
	for j := range encoderMap {
		joint := j
		pins := encoderMap[j]

		pins.a.Configure(machine.PinConfig{Mode: machine.PinInput})
		pins.b.Configure(machine.PinConfig{Mode: machine.PinInput})

		err := pins.a.SetInterrupt(machine.PinRising|machine.PinFalling, func(p machine.Pin) {
			m.HandleQuadratureEdge(joint, p.Get(), pins.b.Get())
		})
		if err != nil {
			return err
		}
	}
	return nil
}
