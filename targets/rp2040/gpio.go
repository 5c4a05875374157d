//go:build rp2040

package main

import (
	"machine"

	"github.com/PanditAdityaJi/STM32-Robotic-Arm/core"
)

// rpGPIODriver implements core.GPIODriver on the RP2040 pads. It serves
// the limit switch inputs.
type rpGPIODriver struct{}

func (rpGPIODriver) ConfigureInputPullUp(pin core.GPIOPin) error {
	machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return nil
}

func (rpGPIODriver) ConfigureInputPullDown(pin core.GPIOPin) error {
	machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	return nil
}

func (rpGPIODriver) ReadPin(pin core.GPIOPin) bool {
	return machine.Pin(pin).Get()
}
