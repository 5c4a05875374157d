package core

import (
	"encoding/binary"
	"math"

	"github.com/PanditAdityaJi/STM32-Robotic-Arm/protocol"
)

// PackTelemetry serializes the sensor, encoder and limit-switch state into
// the fixed 61-byte GetSensorData payload. Field order and little-endian
// encoding must match the host-side decoder exactly:
//
//	roll, pitch, yaw        3 x float32
//	raw accel x, y, z       3 x int16
//	raw gyro x, y, z        3 x int16
//	per joint 0..5          position int32 + velocity int16
//	limit switches          1 byte, bit i = joint i at its travel limit
func PackTelemetry(est OrientationEstimate, enc *Encoders, limits LimitSwitchSet, nowNS int64) []byte {
	buf := make([]byte, 0, protocol.TelemetrySize)

	for _, f := range []float64{est.Roll, est.Pitch, est.Yaw} {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(f)))
	}
	for _, v := range []int16{est.AccelX, est.AccelY, est.AccelZ, est.GyroX, est.GyroY, est.GyroZ} {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(v))
	}
	for j := 0; j < protocol.NumJoints; j++ {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(enc.Position(j)))
		buf = binary.LittleEndian.AppendUint16(buf, uint16(enc.Velocity(j, nowNS)))
	}
	buf = append(buf, limits.Mask())

	return buf
}
