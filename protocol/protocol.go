// Package protocol implements the robotic arm link protocol: a marker-delimited
// binary frame format shared by the host and the embedded controller.
package protocol

// Frame layout: [0xAA][0x55][command][length][payload...][checksum]
// where checksum is the low 8 bits of the sum of every preceding byte.
const (
	Marker1 = 0xAA
	Marker2 = 0x55

	// HeaderSize covers marker, command and length bytes.
	HeaderSize = 4
	// OverheadSize is everything that is not payload.
	OverheadSize = HeaderSize + 1

	// MaxPayload is bounded by the one-byte length field.
	MaxPayload = 255
)

// Command byte values. Stable across host and device.
const (
	CmdPing          = 0x01
	CmdSetPosition   = 0x10
	CmdSetSpeed      = 0x11
	CmdHome          = 0x12
	CmdStop          = 0x13
	CmdGetPosition   = 0x20
	CmdGetSensorData = 0x21
	CmdCalibrate     = 0x30
	CmdRunSequence   = 0x40
	CmdRunTrajectory = 0x41

	// CmdError is a device-to-host negative acknowledgment carrying the
	// offending command byte and a reason code.
	CmdError = 0x7F
)

// Error frame reason codes.
const (
	ErrCodeUnknownCommand = 1
	ErrCodeBadLength      = 2
	ErrCodeBadJoint       = 3
	ErrCodeBadValue       = 4 // angle outside joint limits, non-positive rate
	ErrCodeBusy           = 5
)

// StatusOK is the payload byte of a positive acknowledgment.
const StatusOK = 0

// NumJoints is the number of controlled joints on the arm.
const NumJoints = 6

// TelemetrySize is the fixed GetSensorData payload size:
// 3 float32 orientation + 3+3 int16 raw inertial readings,
// 6 x (int32 position + int16 velocity), one limit-switch bitmask byte.
const TelemetrySize = 12 + 12 + NumJoints*6 + 1

// Frame is one complete, checksum-validated protocol message. It is
// immutable once assembled by the Parser or built by Encode.
type Frame struct {
	Command uint8
	Payload []byte
}
