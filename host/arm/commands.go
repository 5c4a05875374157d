package arm

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/PanditAdityaJi/STM32-Robotic-Arm/protocol"
)

// Ping verifies liveness of the controller.
func (c *Client) Ping() error {
	_, err := c.Transact(protocol.CmdPing, nil)
	return err
}

// SetPosition commands one joint to an absolute angle in radians.
func (c *Client) SetPosition(joint int, angle float64) error {
	payload := []byte{byte(joint)}
	payload = binary.LittleEndian.AppendUint32(payload, math.Float32bits(float32(angle)))
	_, err := c.Transact(protocol.CmdSetPosition, payload)
	return err
}

// SetSpeed updates the controller's trajectory shaping rate limit (rad/s).
func (c *Client) SetSpeed(rate float64) error {
	payload := binary.LittleEndian.AppendUint32(nil, math.Float32bits(float32(rate)))
	_, err := c.Transact(protocol.CmdSetSpeed, payload)
	return err
}

// Home starts the calibration sequence on every joint. Homing continues
// after the acknowledgment; poll GetSensorData for switch state.
func (c *Client) Home() error {
	_, err := c.Transact(protocol.CmdHome, nil)
	return err
}

// HomeJoint starts the calibration sequence for a single joint.
func (c *Client) HomeJoint(joint int) error {
	_, err := c.Transact(protocol.CmdHome, []byte{byte(joint)})
	return err
}

// Stop neutralizes all actuator outputs immediately.
func (c *Client) Stop() error {
	_, err := c.Transact(protocol.CmdStop, nil)
	return err
}

// GetPosition returns the current joint angles in radians.
func (c *Client) GetPosition() ([protocol.NumJoints]float64, error) {
	var angles [protocol.NumJoints]float64

	resp, err := c.Transact(protocol.CmdGetPosition, nil)
	if err != nil {
		return angles, err
	}
	if len(resp.Payload) != protocol.NumJoints*4 {
		return angles, fmt.Errorf("arm: bad position payload size %d", len(resp.Payload))
	}
	for j := 0; j < protocol.NumJoints; j++ {
		angles[j] = float64(math.Float32frombits(binary.LittleEndian.Uint32(resp.Payload[j*4:])))
	}
	return angles, nil
}

// GetSensorData requests and decodes one telemetry snapshot.
func (c *Client) GetSensorData() (*Telemetry, error) {
	resp, err := c.Transact(protocol.CmdGetSensorData, nil)
	if err != nil {
		return nil, err
	}
	return DecodeTelemetry(resp.Payload)
}

// TimedWaypoint is one RunTrajectory row.
type TimedWaypoint struct {
	Angles [protocol.NumJoints]float64
	Hold   time.Duration
}

// RunSequence uploads waypoints that the controller chases one after
// another, advancing when each is reached.
func (c *Client) RunSequence(points [][protocol.NumJoints]float64) error {
	if len(points) > 10 {
		return fmt.Errorf("arm: sequence too long (%d points, max 10)", len(points))
	}
	payload := []byte{byte(len(points))}
	for _, p := range points {
		for _, a := range p {
			payload = binary.LittleEndian.AppendUint32(payload, math.Float32bits(float32(a)))
		}
	}
	_, err := c.Transact(protocol.CmdRunSequence, payload)
	return err
}

// RunTrajectory uploads timed waypoints; the controller holds each for
// its duration before advancing.
func (c *Client) RunTrajectory(points []TimedWaypoint) error {
	if len(points) > 9 {
		return fmt.Errorf("arm: trajectory too long (%d points, max 9)", len(points))
	}
	payload := []byte{byte(len(points))}
	for _, p := range points {
		for _, a := range p.Angles {
			payload = binary.LittleEndian.AppendUint32(payload, math.Float32bits(float32(a)))
		}
		ms := p.Hold.Milliseconds()
		if ms < 0 {
			ms = 0
		} else if ms > 65535 {
			ms = 65535
		}
		payload = binary.LittleEndian.AppendUint16(payload, uint16(ms))
	}
	_, err := c.Transact(protocol.CmdRunTrajectory, payload)
	return err
}
