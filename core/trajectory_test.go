package core

import (
	"math"
	"testing"

	"github.com/PanditAdityaJi/STM32-Robotic-Arm/protocol"
)

func TestTrajectoryRateLimitsSetpoints(t *testing.T) {
	var ctrl JointController
	var traj Trajectory

	wp := Waypoint{}
	wp.Angles[0] = 1.0
	traj.Load([]Waypoint{wp})

	var current [protocol.NumJoints]float64
	maxRate, dt := 0.5, 0.02

	traj.Step(&ctrl, current, maxRate, dt)
	if got, want := ctrl.Target(0), maxRate*dt; math.Abs(got-want) > 1e-12 {
		t.Errorf("setpoint after one step = %v, want %v", got, want)
	}

	// Enough steps to arrive: setpoint settles exactly on the waypoint.
	for i := 0; i < 200; i++ {
		traj.Step(&ctrl, current, maxRate, dt)
	}
	if got := ctrl.Target(0); got != 1.0 {
		t.Errorf("setpoint settled at %v, want 1.0", got)
	}
	// Arm never moved, so the untimed waypoint is not complete.
	if !traj.Active() {
		t.Error("trajectory completed without the joint reaching the waypoint")
	}

	// Once the measured angle arrives, the sequence finishes.
	current[0] = 1.0
	traj.Step(&ctrl, current, maxRate, dt)
	if traj.Active() {
		t.Error("trajectory still active after waypoint reached")
	}
}

func TestTrajectoryTimedWaypoints(t *testing.T) {
	var ctrl JointController
	var traj Trajectory

	first := Waypoint{HoldMS: 100}
	second := Waypoint{HoldMS: 100}
	second.Angles[1] = 0.01
	traj.Load([]Waypoint{first, second})

	var current [protocol.NumJoints]float64
	dt := 0.02

	// First waypoint is at the origin; it must still hold for 100ms
	// (5 cycles) before advancing.
	for i := 0; i < 4; i++ {
		traj.Step(&ctrl, current, DefaultMaxRate, dt)
	}
	if ctrl.Target(1) != 0 {
		t.Error("advanced to second waypoint before hold elapsed")
	}

	for i := 0; i < 20; i++ {
		traj.Step(&ctrl, current, DefaultMaxRate, dt)
	}
	if ctrl.Target(1) != 0.01 {
		t.Errorf("second waypoint target = %v, want 0.01", ctrl.Target(1))
	}
	if traj.Active() {
		t.Error("timed trajectory did not finish")
	}
}

func TestTrajectoryCancel(t *testing.T) {
	var ctrl JointController
	var traj Trajectory

	wp := Waypoint{}
	wp.Angles[0] = 1.0
	traj.Load([]Waypoint{wp})

	var current [protocol.NumJoints]float64
	traj.Step(&ctrl, current, DefaultMaxRate, 0.02)
	mid := ctrl.Target(0)

	traj.Cancel()
	traj.Step(&ctrl, current, DefaultMaxRate, 0.02)

	if traj.Active() {
		t.Error("cancelled trajectory still active")
	}
	if ctrl.Target(0) != mid {
		t.Errorf("setpoint moved after cancel: %v -> %v", mid, ctrl.Target(0))
	}
}
