//go:build rp2040

// RP2040 target: UART0 carries the framed protocol to the host, the
// MPU-6050 sits on I2C0, the servo outputs run on the PIO blocks and
// the quadrature encoders and limit switches use plain GPIO.
package main

import (
	"machine"
	"time"

	"github.com/PanditAdityaJi/STM32-Robotic-Arm/core"
	"github.com/PanditAdityaJi/STM32-Robotic-Arm/protocol"
)

// limitPins are the limit switch inputs, one per joint, wired
// normally-open to ground (active low, internal pull-up).
var limitPins = [protocol.NumJoints]core.GPIOPin{2, 3, 24, 25, 26, 27}

func main() {
	// Disable the watchdog on boot to clear any state a previous reset
	// left behind.
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0}); err != nil {
		return
	}

	uart := machine.UART0
	if err := uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GPIO0,
		RX:       machine.GPIO1,
	}); err != nil {
		fatal("uart", err)
	}

	if err := machine.I2C0.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.GPIO4,
		SCL:       machine.GPIO5,
	}); err != nil {
		fatal("i2c", err)
	}

	imu, err := NewMPUIMU(machine.I2C0)
	if err != nil {
		fatal("mpu6050", err)
	}

	core.SetGPIODriver(rpGPIODriver{})
	core.SetServoDriver(NewPIOServoDriver())
	core.SetIMUDriver(imu)

	m, err := core.NewMachine(core.MachineConfig{
		LimitPins:       limitPins,
		LimitActiveHigh: false,
		Emit: func(frame []byte) {
			_, _ = uart.Write(frame)
		},
	})
	if err != nil {
		fatal("machine", err)
	}

	if err := attachEncoders(m); err != nil {
		fatal("encoders", err)
	}

	go uartReaderLoop(uart, m)

	m.Run(make(chan struct{}))
}

// uartReaderLoop drains received bytes into the machine's receive
// queue. Byte framing and resync live in the parser, so raw bytes are
// forwarded as-is.
func uartReaderLoop(uart *machine.UART, m *core.Machine) {
	for {
		for uart.Buffered() > 0 {
			b, err := uart.ReadByte()
			if err != nil {
				break
			}
			m.RxByte(b)
		}
		// Yield to avoid a busy loop.
		time.Sleep(100 * time.Microsecond)
	}
}

// fatal reports a boot failure forever; without a working transport
// there is nowhere better to send it.
func fatal(what string, err error) {
	for {
		println("boot failed:", what, err.Error())
		time.Sleep(time.Second)
	}
}
