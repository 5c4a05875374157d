package core

import "math"

// GyroScale converts a raw gyroscope z register value to rad/s.
// 16.4 LSB per deg/s at the +-2000 deg/s range.
const GyroScale = (math.Pi / 180.0) / 16.4

// OrientationEstimate is the fused orientation plus the raw samples it was
// derived from. Roll and pitch come straight from the accelerometer each
// sample; yaw integrates the gyro rate and therefore drifts without bound.
// There is no correction source for yaw; this is a documented limitation.
type OrientationEstimate struct {
	Roll  float64
	Pitch float64
	Yaw   float64

	AccelX, AccelY, AccelZ int16
	GyroX, GyroY, GyroZ    int16
}

// Sensors computes the orientation estimate from the IMU once per control
// cycle. Owned by the control loop; not safe for concurrent use.
type Sensors struct {
	imu IMUDriver

	estimate   OrientationEstimate
	lastSample int64 // monotonic ns of the previous sample, 0 before first
}

// NewSensors creates the acquisition stage on top of an IMU driver.
func NewSensors(imu IMUDriver) *Sensors {
	return &Sensors{imu: imu}
}

// Sample reads the raw inertial registers and updates the orientation
// estimate. On a read error the previous estimate is kept; a transient
// bus fault must not disturb the control cycle.
func (s *Sensors) Sample(nowNS int64) OrientationEstimate {
	ax, ay, az, err := s.imu.ReadAccel()
	if err != nil {
		return s.estimate
	}
	gx, gy, gz, err := s.imu.ReadGyro()
	if err != nil {
		return s.estimate
	}

	s.estimate.AccelX, s.estimate.AccelY, s.estimate.AccelZ = ax, ay, az
	s.estimate.GyroX, s.estimate.GyroY, s.estimate.GyroZ = gx, gy, gz

	fy, fz := float64(ay), float64(az)
	s.estimate.Roll = math.Atan2(fy, fz)
	s.estimate.Pitch = math.Atan(-float64(ax) / math.Sqrt(fy*fy+fz*fz))

	if s.lastSample != 0 {
		elapsed := float64(nowNS-s.lastSample) / 1e9
		s.estimate.Yaw = wrapAngle(s.estimate.Yaw + float64(gz)*GyroScale*elapsed)
	}
	s.lastSample = nowNS

	return s.estimate
}

// Estimate returns the last computed orientation without sampling.
func (s *Sensors) Estimate() OrientationEstimate {
	return s.estimate
}

// wrapAngle maps an angle into (-pi, pi].
func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
