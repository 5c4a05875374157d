package arm

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/PanditAdityaJi/STM32-Robotic-Arm/protocol"
)

// JointTelemetry is one joint's encoder snapshot.
type JointTelemetry struct {
	Position int32 // encoder ticks
	Velocity int16 // ticks per second
	AtLimit  bool
}

// Telemetry is the decoded GetSensorData payload.
type Telemetry struct {
	Roll, Pitch, Yaw float64

	AccelRaw [3]int16
	GyroRaw  [3]int16

	Joints [protocol.NumJoints]JointTelemetry

	// LimitMask is the raw trailing byte, bit i = joint i at limit.
	LimitMask uint8
}

// DecodeTelemetry parses the fixed 61-byte telemetry payload.
func DecodeTelemetry(payload []byte) (*Telemetry, error) {
	if len(payload) != protocol.TelemetrySize {
		return nil, fmt.Errorf("arm: telemetry payload is %d bytes, want %d", len(payload), protocol.TelemetrySize)
	}

	t := &Telemetry{}
	t.Roll = float64(math.Float32frombits(binary.LittleEndian.Uint32(payload[0:])))
	t.Pitch = float64(math.Float32frombits(binary.LittleEndian.Uint32(payload[4:])))
	t.Yaw = float64(math.Float32frombits(binary.LittleEndian.Uint32(payload[8:])))

	for i := 0; i < 3; i++ {
		t.AccelRaw[i] = int16(binary.LittleEndian.Uint16(payload[12+i*2:]))
		t.GyroRaw[i] = int16(binary.LittleEndian.Uint16(payload[18+i*2:]))
	}

	t.LimitMask = payload[len(payload)-1]
	for j := 0; j < protocol.NumJoints; j++ {
		base := 24 + j*6
		t.Joints[j] = JointTelemetry{
			Position: int32(binary.LittleEndian.Uint32(payload[base:])),
			Velocity: int16(binary.LittleEndian.Uint16(payload[base+4:])),
			AtLimit:  t.LimitMask&(1<<uint(j)) != 0,
		}
	}
	return t, nil
}
