package core

import (
	"sync/atomic"

	"github.com/PanditAdityaJi/STM32-Robotic-Arm/protocol"
)

// staleEdgeNS is the age after which the velocity estimate decays to zero
// because no quadrature edge has arrived.
const staleEdgeNS = 200 * 1000 * 1000

// JointState holds one joint's encoder state. Position and velocity are
// mutated only by that joint's quadrature edge handler (interrupt context)
// and the calibration reset; the control loop reads atomic snapshots, so
// no lock is shared between the two contexts.
type JointState struct {
	position   int32  // tick count, atomic
	velocity   int32  // ticks/second, atomic, int16 range on the wire
	direction  uint32 // atomic bool: 1 = forward
	lastEdgeNS int64  // atomic, monotonic timestamp of the previous edge
}

// Encoders owns the per-joint encoder state for the whole arm.
type Encoders struct {
	joints [protocol.NumJoints]JointState
}

// HandleEdge processes one quadrature edge on channel A of a joint's
// encoder. b is the level of channel B at the edge: in-phase (a == b)
// counts forward, out-of-phase counts backward. Must be O(1); it is the
// only position mutator besides Zero.
func (e *Encoders) HandleEdge(joint int, a, b bool, nowNS int64) {
	if joint < 0 || joint >= protocol.NumJoints {
		return
	}
	js := &e.joints[joint]

	forward := a == b
	delta := int32(1)
	dir := uint32(1)
	if !forward {
		delta = -1
		dir = 0
	}
	atomic.AddInt32(&js.position, delta)
	atomic.StoreUint32(&js.direction, dir)

	// Velocity from edge-to-edge timing.
	prev := atomic.SwapInt64(&js.lastEdgeNS, nowNS)
	if prev != 0 && nowNS > prev {
		tps := int64(1e9) / (nowNS - prev)
		if tps > 32767 {
			tps = 32767
		}
		if !forward {
			tps = -tps
		}
		atomic.StoreInt32(&js.velocity, int32(tps))
	}
}

// Position returns the joint's tick count snapshot.
func (e *Encoders) Position(joint int) int32 {
	return atomic.LoadInt32(&e.joints[joint].position)
}

// Velocity returns the joint's ticks/second estimate, decayed to zero when
// no edge has been seen recently.
func (e *Encoders) Velocity(joint int, nowNS int64) int16 {
	js := &e.joints[joint]
	last := atomic.LoadInt64(&js.lastEdgeNS)
	if last == 0 || nowNS-last > staleEdgeNS {
		return 0
	}
	v := atomic.LoadInt32(&js.velocity)
	if v > 32767 {
		v = 32767
	} else if v < -32768 {
		v = -32768
	}
	return int16(v)
}

// Angle converts the joint's tick count to radians.
func (e *Encoders) Angle(joint int) float64 {
	return float64(e.Position(joint)) * RadiansPerTick
}

// Direction reports the last observed rotation direction.
func (e *Encoders) Direction(joint int) bool {
	return atomic.LoadUint32(&e.joints[joint].direction) != 0
}

// Zero resets a joint's encoder state. Called only by calibration when the
// limit switch defines the joint's reference origin.
func (e *Encoders) Zero(joint int) {
	if joint < 0 || joint >= protocol.NumJoints {
		return
	}
	js := &e.joints[joint]
	atomic.StoreInt32(&js.position, 0)
	atomic.StoreInt32(&js.velocity, 0)
	atomic.StoreInt64(&js.lastEdgeNS, 0)
}
