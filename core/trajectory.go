package core

import "github.com/PanditAdityaJi/STM32-Robotic-Arm/protocol"

// Waypoint is one row of a RunSequence/RunTrajectory command: a full set
// of joint targets, with an optional hold duration for timed trajectories.
type Waypoint struct {
	Angles [protocol.NumJoints]float64
	HoldMS uint16 // 0: advance when the arm reaches the waypoint
}

// Trajectory executes waypoints sequentially by steering the controller
// setpoints toward the active waypoint at a bounded angular rate. The
// interpolation is a plain rate limit; anything fancier is the planner's
// job on the host side.
type Trajectory struct {
	points   []Waypoint
	index    int
	holdLeft float64 // seconds remaining at a timed waypoint
	active   bool
}

// Load replaces any running trajectory. Angles must already be clipped to
// the joint limits by the dispatcher.
func (t *Trajectory) Load(points []Waypoint) {
	t.points = points
	t.index = 0
	t.active = len(points) > 0
	if t.active {
		t.holdLeft = float64(points[0].HoldMS) / 1000.0
	}
}

// Cancel aborts the trajectory, leaving setpoints where they are.
func (t *Trajectory) Cancel() {
	t.active = false
	t.points = nil
}

// Active reports whether waypoints remain.
func (t *Trajectory) Active() bool {
	return t.active
}

// Step advances the controller setpoints by at most maxRate*dt toward the
// active waypoint and handles waypoint completion. current is the measured
// joint angles, used for the reach check of untimed sequences.
func (t *Trajectory) Step(ctrl *JointController, current [protocol.NumJoints]float64, maxRate, dt float64) {
	if !t.active {
		return
	}

	wp := &t.points[t.index]
	maxStep := maxRate * dt

	setpointsAt := true
	for j := 0; j < protocol.NumJoints; j++ {
		diff := wp.Angles[j] - ctrl.Target(j)
		if diff > maxStep {
			diff = maxStep
			setpointsAt = false
		} else if diff < -maxStep {
			diff = -maxStep
			setpointsAt = false
		}
		ctrl.SetTarget(j, ctrl.Target(j)+diff)
	}
	if !setpointsAt {
		return
	}

	if wp.HoldMS > 0 {
		t.holdLeft -= dt
		if t.holdLeft > 0 {
			return
		}
	} else {
		for j := 0; j < protocol.NumJoints; j++ {
			err := wp.Angles[j] - current[j]
			if err > WaypointTolerance || err < -WaypointTolerance {
				return
			}
		}
	}

	t.index++
	if t.index >= len(t.points) {
		t.active = false
		t.points = nil
		return
	}
	t.holdLeft = float64(t.points[t.index].HoldMS) / 1000.0
}
