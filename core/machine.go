package core

import (
	"time"

	"github.com/PanditAdityaJi/STM32-Robotic-Arm/protocol"
)

// MachineConfig wires a Machine to its target.
type MachineConfig struct {
	// LimitPins are the GPIO inputs of the six limit switches.
	LimitPins [protocol.NumJoints]GPIOPin

	// LimitActiveHigh selects the switch wiring polarity.
	LimitActiveHigh bool

	// Emit writes one encoded frame to the transport.
	Emit func([]byte)

	// Now returns monotonic nanoseconds. Defaults to the runtime clock.
	Now func() int64
}

// Machine is the embedded controller: it owns the receive path, all joint
// and sensor state, and the fixed-period control loop. RxByte and
// HandleQuadratureEdge are the only entry points safe to call from
// interrupt context; everything else belongs to the control loop.
type Machine struct {
	rx     *protocol.ByteFIFO
	parser *protocol.Parser

	enc       Encoders
	sensors   *Sensors
	interlock *Interlock
	ctrl      JointController
	traj      Trajectory
	cal       Calibrator

	maxRate float64

	emit func([]byte)
	now  func() int64

	lastCycleNS int64
}

// NewMachine configures the hardware through the registered HAL drivers
// and returns a ready control unit.
func NewMachine(cfg MachineConfig) (*Machine, error) {
	il, err := NewInterlock(cfg.LimitPins, cfg.LimitActiveHigh)
	if err != nil {
		return nil, err
	}
	for j := 0; j < protocol.NumJoints; j++ {
		if err := MustServo().Configure(j); err != nil {
			return nil, err
		}
	}

	now := cfg.Now
	if now == nil {
		start := time.Now()
		now = func() int64 { return int64(time.Since(start)) }
	}

	return &Machine{
		rx:        protocol.NewByteFIFO(512),
		parser:    protocol.NewParser(),
		sensors:   NewSensors(MustIMU()),
		interlock: il,
		maxRate:   DefaultMaxRate,
		emit:      cfg.Emit,
		now:       now,
	}, nil
}

// RxByte queues one received byte. Interrupt context: O(1), non-blocking.
// A full queue drops the byte; the parser resynchronizes on the next frame.
func (m *Machine) RxByte(b byte) {
	m.rx.Push(b)
}

// HandleQuadratureEdge forwards an encoder channel-A edge to the joint's
// state. Interrupt context.
func (m *Machine) HandleQuadratureEdge(joint int, a, b bool) {
	m.enc.HandleEdge(joint, a, b, m.now())
}

// Encoders exposes the encoder state, e.g. for target wiring.
func (m *Machine) Encoders() *Encoders {
	return &m.enc
}

// RunCycle executes one control cycle: sample switches and sensors,
// dispatch any completed command frames, step the trajectory, then run the
// position loop and write the actuator outputs. The loop is the sole
// writer of ControllerState and of the servo outputs.
func (m *Machine) RunCycle() {
	nowNS := m.now()
	dt := float64(CyclePeriodMs) / 1000.0
	if m.lastCycleNS != 0 {
		dt = float64(nowNS-m.lastCycleNS) / 1e9
	}
	m.lastCycleNS = nowNS

	limits := m.interlock.Sample()
	m.sensors.Sample(nowNS)

	for {
		b, ok := m.rx.Pop()
		if !ok {
			break
		}
		if f, ok := m.parser.Feed(b); ok {
			m.dispatch(f, nowNS)
		}
	}

	var angles [protocol.NumJoints]float64
	for j := 0; j < protocol.NumJoints; j++ {
		angles[j] = m.enc.Angle(j)
	}

	m.traj.Step(&m.ctrl, angles, m.maxRate, dt)

	for j := 0; j < protocol.NumJoints; j++ {
		if us, override := m.cal.Step(j, limits, &m.enc, &m.ctrl); override {
			_ = MustServo().SetPulseWidth(j, us)
			continue
		}
		us := m.ctrl.Update(j, angles[j], limits.Active(j))
		_ = MustServo().SetPulseWidth(j, us)
	}
}

// Run drives RunCycle at the fixed period until stop is closed.
func (m *Machine) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(CyclePeriodMs * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.RunCycle()
		}
	}
}
