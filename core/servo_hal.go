package core

// ServoDriver is the abstract actuator interface that core code uses.
// Each joint is driven by a hobby-servo style PWM output addressed by
// joint index; the pulse width in microseconds is the actuator command.
type ServoDriver interface {
	// Configure prepares the output for a joint. Called once at startup.
	Configure(joint int) error

	// SetPulseWidth writes the actuator command for a joint.
	// us is clamped by the caller to [ServoMinUS, ServoMaxUS].
	SetPulseWidth(joint int, us uint16) error
}

// Global singleton used by core code.
var servoDriver ServoDriver

// SetServoDriver is called by target-specific code to register its driver.
func SetServoDriver(d ServoDriver) {
	servoDriver = d
}

// MustServo returns the configured driver or panics if missing.
func MustServo() ServoDriver {
	if servoDriver == nil {
		panic("servo driver not configured")
	}
	return servoDriver
}
