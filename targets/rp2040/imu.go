//go:build rp2040

package main

import (
	"machine"

	"tinygo.org/x/drivers/mpu6050"
)

// Raw count scaling for the wire format: accelerometer counts are
// 16384/g, gyro counts are 16.4/(°/s). The driver hands back physical
// micro-units, so readings are converted back to counts here.
const (
	accelCountsPerG  = 16384
	gyroCountsPerDPS = 164 // x10
)

// mpuIMU implements core.IMUDriver on an MPU-6050 behind I2C0.
type mpuIMU struct {
	dev mpu6050.Device
}

// NewMPUIMU wakes the sensor and returns the driver.
func NewMPUIMU(bus *machine.I2C) (*mpuIMU, error) {
	dev := mpu6050.New(bus)
	if err := dev.Configure(); err != nil {
		return nil, err
	}
	return &mpuIMU{dev: dev}, nil
}

// ReadAccel returns the acceleration as raw counts. The driver reports
// µg; counts = µg * 16384 / 1e6.
func (m *mpuIMU) ReadAccel() (x, y, z int16, err error) {
	ax, ay, az := m.dev.ReadAcceleration()
	return toCounts(ax, accelCountsPerG, 1000000),
		toCounts(ay, accelCountsPerG, 1000000),
		toCounts(az, accelCountsPerG, 1000000), nil
}

// ReadGyro returns the rotation rate as raw counts. The driver reports
// µ°/s; counts = µ°/s * 16.4 / 1e6.
func (m *mpuIMU) ReadGyro() (x, y, z int16, err error) {
	gx, gy, gz := m.dev.ReadRotation()
	return toCounts(gx, gyroCountsPerDPS, 10000000),
		toCounts(gy, gyroCountsPerDPS, 10000000),
		toCounts(gz, gyroCountsPerDPS, 10000000), nil
}

func toCounts(v int32, num, den int64) int16 {
	c := int64(v) * num / den
	if c > 32767 {
		c = 32767
	} else if c < -32768 {
		c = -32768
	}
	return int16(c)
}
