//go:build rp2040

package main

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"github.com/PanditAdityaJi/STM32-Robotic-Arm/core"
	"github.com/PanditAdityaJi/STM32-Robotic-Arm/protocol"
)

// Servo pulse generation on the PIO blocks. Each joint gets one state
// machine that turns a FIFO word into a single high pulse of that many
// microseconds; the control loop pushes one word per cycle, so the 50Hz
// frame rate falls out of the loop period and the pulse width itself is
// hardware-timed with no CPU jitter.
//
// Program flow:
//  1. Pull the 32-bit pulse width (in µs) from the FIFO, blocking.
//  2. Drive the pin high for that many counts at the 1MHz PIO clock.
//  3. Drive the pin low and wait for the next word.
//
// buildServoProgram creates the pulse program using AssemblerV0.
func buildServoProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),        // 0: pull block
		asm.Out(rp2pio.OutDestX, 32).Encode(), // 1: out x, 32 (width in µs)
		asm.Set(rp2pio.SetDestPins, 1).Encode(),
		// width_loop:
		asm.Jmp(3, rp2pio.JmpXNZeroDec).Encode(), // 3: jmp x--, 3
		asm.Set(rp2pio.SetDestPins, 0).Encode(),
		// .wrap
	}
}

const servoPIOOrigin = 0 // load at offset 0 for correct jump addresses

// servoPins maps each joint to its output pad.
var servoPins = [protocol.NumJoints]machine.Pin{
	machine.GPIO6, machine.GPIO7, machine.GPIO8,
	machine.GPIO9, machine.GPIO10, machine.GPIO11,
}

// pioServoDriver implements core.ServoDriver on the two PIO blocks:
// joints 0-3 on PIO0, joints 4-5 on PIO1.
type pioServoDriver struct {
	sms    [protocol.NumJoints]rp2pio.StateMachine
	ready  [protocol.NumJoints]bool
	offset [2]uint8
	loaded [2]bool
}

// NewPIOServoDriver creates the driver. State machines are claimed and
// programmed lazily in Configure.
func NewPIOServoDriver() *pioServoDriver {
	return &pioServoDriver{}
}

func (d *pioServoDriver) pioFor(joint int) (*rp2pio.PIO, uint8, uint8) {
	if joint < 4 {
		return rp2pio.PIO0, 0, uint8(joint)
	}
	return rp2pio.PIO1, 1, uint8(joint - 4)
}

// Configure claims a state machine for the joint, loads the pulse
// program into its PIO block if not already present, and starts it with
// the pin low.
func (d *pioServoDriver) Configure(joint int) error {
	pioHW, pioNum, smNum := d.pioFor(joint)

	if !d.loaded[pioNum] {
		offset, err := pioHW.AddProgram(buildServoProgram(), servoPIOOrigin)
		if err != nil {
			return err
		}
		d.offset[pioNum] = offset
		d.loaded[pioNum] = true
	}

	sm := pioHW.StateMachine(smNum)
	sm.TryClaim()

	pin := servoPins[joint]
	pin.Configure(machine.PinConfig{Mode: pioHW.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(pin, 1)
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(d.offset[pioNum]+4, d.offset[pioNum])
	// 125MHz / 125 = 1MHz: one loop iteration per microsecond of pulse.
	cfg.SetClkDivIntFrac(125, 0)

	sm.Init(d.offset[pioNum], cfg)
	sm.SetPindirsConsecutive(pin, 1, true)
	sm.SetPinsConsecutive(pin, 1, false)
	sm.SetEnabled(true)

	d.sms[joint] = sm
	d.ready[joint] = true
	return nil
}

// SetPulseWidth queues one pulse. Called once per joint per control
// cycle; a full FIFO means earlier pulses are still pending, so the
// word is dropped rather than stalling the loop.
func (d *pioServoDriver) SetPulseWidth(joint int, us uint16) error {
	if !d.ready[joint] {
		return nil
	}
	sm := d.sms[joint]
	if sm.IsTxFIFOFull() {
		return nil
	}
	sm.TxPut(uint32(us))
	return nil
}

var _ core.ServoDriver = (*pioServoDriver)(nil)
