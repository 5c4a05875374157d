package core

// IMUDriver is the abstract inertial sensor interface. Readings are raw
// signed 16-bit register values; scaling to physical units happens in the
// orientation estimator.
type IMUDriver interface {
	// ReadAccel returns the raw accelerometer sample for x, y, z.
	ReadAccel() (x, y, z int16, err error)

	// ReadGyro returns the raw gyroscope sample for x, y, z.
	ReadGyro() (x, y, z int16, err error)
}

// Global singleton used by core code.
var imuDriver IMUDriver

// SetIMUDriver is called by target-specific code to register its driver.
func SetIMUDriver(d IMUDriver) {
	imuDriver = d
}

// MustIMU returns the configured driver or panics if missing.
func MustIMU() IMUDriver {
	if imuDriver == nil {
		panic("IMU driver not configured")
	}
	return imuDriver
}
