package core

import (
	"encoding/binary"
	"math"

	"github.com/PanditAdityaJi/STM32-Robotic-Arm/protocol"
)

// dispatch maps one validated frame to an action. Invalid parameters and
// unknown command bytes are answered with an explicit Error frame instead
// of being dropped silently, so the host can tell a rejection from a frame
// lost in transit.
func (m *Machine) dispatch(f *protocol.Frame, nowNS int64) {
	switch f.Command {
	case protocol.CmdPing:
		m.ack(f.Command)

	case protocol.CmdSetPosition:
		m.handleSetPosition(f)

	case protocol.CmdSetSpeed:
		m.handleSetSpeed(f)

	case protocol.CmdHome, protocol.CmdCalibrate:
		m.handleHome(f)

	case protocol.CmdStop:
		m.handleStop(f)

	case protocol.CmdGetPosition:
		m.handleGetPosition(f)

	case protocol.CmdGetSensorData:
		m.reply(f.Command, PackTelemetry(m.sensors.Estimate(), &m.enc, m.interlock.State(), nowNS))

	case protocol.CmdRunSequence:
		m.handleRun(f, false)

	case protocol.CmdRunTrajectory:
		m.handleRun(f, true)

	default:
		m.nack(f.Command, protocol.ErrCodeUnknownCommand)
	}
}

// handleSetPosition writes one joint setpoint. Payload: joint u8, angle f32.
func (m *Machine) handleSetPosition(f *protocol.Frame) {
	if len(f.Payload) != 5 {
		m.nack(f.Command, protocol.ErrCodeBadLength)
		return
	}
	joint := int(f.Payload[0])
	angle := float64(math.Float32frombits(binary.LittleEndian.Uint32(f.Payload[1:])))

	switch {
	case joint >= protocol.NumJoints:
		m.nack(f.Command, protocol.ErrCodeBadJoint)
	case angle < JointLimitMin || angle > JointLimitMax:
		m.nack(f.Command, protocol.ErrCodeBadValue)
	case m.cal.Busy():
		m.nack(f.Command, protocol.ErrCodeBusy)
	default:
		// A direct setpoint preempts a running trajectory.
		m.traj.Cancel()
		m.ctrl.SetTarget(joint, angle)
		m.ack(f.Command)
	}
}

// handleSetSpeed updates the trajectory shaping rate limit. Payload: f32 rad/s.
func (m *Machine) handleSetSpeed(f *protocol.Frame) {
	if len(f.Payload) != 4 {
		m.nack(f.Command, protocol.ErrCodeBadLength)
		return
	}
	rate := float64(math.Float32frombits(binary.LittleEndian.Uint32(f.Payload)))
	if rate <= 0 || math.IsNaN(rate) {
		m.nack(f.Command, protocol.ErrCodeBadValue)
		return
	}
	m.maxRate = rate
	m.ack(f.Command)
}

// handleHome starts the calibration sequence for one joint (1-byte
// payload) or all joints (empty payload).
func (m *Machine) handleHome(f *protocol.Frame) {
	switch len(f.Payload) {
	case 0:
		m.traj.Cancel()
		m.cal.BeginAll()
		m.ack(f.Command)
	case 1:
		joint := int(f.Payload[0])
		if joint >= protocol.NumJoints {
			m.nack(f.Command, protocol.ErrCodeBadJoint)
			return
		}
		m.cal.Begin(joint)
		m.ack(f.Command)
	default:
		m.nack(f.Command, protocol.ErrCodeBadLength)
	}
}

// handleStop neutralizes all outputs immediately and clears every
// integral term. Targets collapse onto the measured angles so the loop
// holds position instead of chasing a stale setpoint.
func (m *Machine) handleStop(f *protocol.Frame) {
	if len(f.Payload) != 0 {
		m.nack(f.Command, protocol.ErrCodeBadLength)
		return
	}
	m.traj.Cancel()
	m.cal = Calibrator{}

	var angles [protocol.NumJoints]float64
	for j := 0; j < protocol.NumJoints; j++ {
		angles[j] = m.enc.Angle(j)
		_ = MustServo().SetPulseWidth(j, ServoNeutralUS)
	}
	m.ctrl.Stop(angles)
	m.ack(f.Command)
}

// handleGetPosition returns the six joint angles as float32 radians.
func (m *Machine) handleGetPosition(f *protocol.Frame) {
	if len(f.Payload) != 0 {
		m.nack(f.Command, protocol.ErrCodeBadLength)
		return
	}
	payload := make([]byte, 0, protocol.NumJoints*4)
	for j := 0; j < protocol.NumJoints; j++ {
		payload = binary.LittleEndian.AppendUint32(payload, math.Float32bits(float32(m.enc.Angle(j))))
	}
	m.reply(f.Command, payload)
}

// handleRun loads a waypoint list. RunSequence rows are 6 float32 angles;
// RunTrajectory rows append a u16 hold duration in milliseconds. Angles
// are clipped to the joint limits before being applied.
func (m *Machine) handleRun(f *protocol.Frame, timed bool) {
	rowSize := protocol.NumJoints * 4
	if timed {
		rowSize += 2
	}
	if len(f.Payload) < 1 || len(f.Payload) != 1+int(f.Payload[0])*rowSize {
		m.nack(f.Command, protocol.ErrCodeBadLength)
		return
	}
	if m.cal.Busy() {
		m.nack(f.Command, protocol.ErrCodeBusy)
		return
	}

	count := int(f.Payload[0])
	points := make([]Waypoint, count)
	for i := 0; i < count; i++ {
		row := f.Payload[1+i*rowSize:]
		for j := 0; j < protocol.NumJoints; j++ {
			a := float64(math.Float32frombits(binary.LittleEndian.Uint32(row[j*4:])))
			points[i].Angles[j] = clipAngle(a)
		}
		if timed {
			points[i].HoldMS = binary.LittleEndian.Uint16(row[protocol.NumJoints*4:])
		}
	}

	m.traj.Load(points)
	m.ack(f.Command)
}

func clipAngle(a float64) float64 {
	if a < JointLimitMin {
		return JointLimitMin
	}
	if a > JointLimitMax {
		return JointLimitMax
	}
	return a
}

func (m *Machine) ack(cmd uint8) {
	m.reply(cmd, []byte{protocol.StatusOK})
}

func (m *Machine) nack(cmd uint8, code uint8) {
	m.reply(protocol.CmdError, []byte{cmd, code})
}

func (m *Machine) reply(cmd uint8, payload []byte) {
	if m.emit == nil {
		return
	}
	m.emit(protocol.MustEncode(cmd, payload))
}
