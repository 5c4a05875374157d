// Package core implements the embedded side of the arm controller: sensor
// acquisition, the per-joint position loop, safety interlocks and the
// command dispatcher. Hardware access goes through the HAL interfaces in
// this package; targets register their drivers at startup.
package core

import "math"

// Control loop timing.
const (
	// CyclePeriodMs is the fixed control loop period. 20ms matches the
	// 50Hz refresh of the servo outputs.
	CyclePeriodMs = 20
)

// Encoder geometry. Angle per tick = 2*pi / (TicksPerRev * GearRatio).
const (
	TicksPerRev = 2048
	GearRatio   = 4
)

// RadiansPerTick converts encoder ticks to joint radians.
const RadiansPerTick = (2 * math.Pi) / (TicksPerRev * GearRatio)

// Joint travel limits, symmetric for all joints.
const (
	JointLimitMin = -math.Pi / 2
	JointLimitMax = math.Pi / 2
)

// PID gains. Fixed configuration constants, not tuned online.
const (
	GainP = 6.0
	GainI = 0.08
	GainD = 2.5

	// IntegralLimit bounds the accumulated error term (anti-windup).
	IntegralLimit = 50.0
)

// Servo output range, in pulse-width microseconds.
const (
	ServoNeutralUS = 1500
	ServoMinUS     = 1000
	ServoMaxUS     = 2000

	// ServoScale converts PID output (radians of error domain) to
	// microseconds of pulse width.
	ServoScale = 120.0
)

// Motion defaults.
const (
	// DefaultMaxRate is the trajectory shaping rate limit in rad/s,
	// adjustable at runtime with SetSpeed.
	DefaultMaxRate = 1.0

	// HomingRate is the slow constant rate used to approach a limit
	// switch during calibration, in rad/s.
	HomingRate = 0.2

	// WaypointTolerance is the per-joint angle error below which a
	// sequence waypoint counts as reached.
	WaypointTolerance = 0.02

	// SwitchDebounceSamples is the number of consecutive active reads
	// required before a limit switch counts as triggered.
	SwitchDebounceSamples = 3
)
