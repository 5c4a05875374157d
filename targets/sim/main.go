// Command sim runs the arm controller against simulated hardware and
// serves the framed protocol over TCP. The joint model integrates the
// servo commands back into encoder edges, so homing, the position loop
// and the host tools can all be exercised without a board attached.
package main

import (
	"flag"
	"log"
	"math"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PanditAdityaJi/STM32-Robotic-Arm/core"
	"github.com/PanditAdityaJi/STM32-Robotic-Arm/protocol"
)

// switchBand is how far above the travel minimum the simulated limit
// switch stays engaged.
const switchBand = 0.03

// world is the simulated plant: six joints whose velocity follows the
// commanded pulse width. It is the only writer of the joint angles; the
// control loop reads them back through the simulated drivers.
type world struct {
	machine *core.Machine

	pulse [protocol.NumJoints]uint32 // commanded width, atomic
	limit [protocol.NumJoints]uint32 // switch engaged, atomic bool

	angle [protocol.NumJoints]float64
	ticks [protocol.NumJoints]int32 // edges emitted so far
}

// step advances the plant by dt and feeds the resulting quadrature
// edges to the machine, spaced across the interval so the edge-timing
// velocity estimate stays meaningful.
func (w *world) step(dt float64, nowNS int64) {
	for j := 0; j < protocol.NumJoints; j++ {
		us := float64(atomic.LoadUint32(&w.pulse[j]))
		if us == 0 {
			us = core.ServoNeutralUS
		}
		omega := (us - core.ServoNeutralUS) / core.ServoScale

		w.angle[j] += omega * dt
		if w.angle[j] < core.JointLimitMin-0.05 {
			w.angle[j] = core.JointLimitMin - 0.05 // hard stop
		} else if w.angle[j] > core.JointLimitMax+0.05 {
			w.angle[j] = core.JointLimitMax + 0.05
		}

		engaged := uint32(0)
		if w.angle[j] <= core.JointLimitMin+switchBand {
			engaged = 1
		}
		atomic.StoreUint32(&w.limit[j], engaged)

		target := int32(math.Round(w.angle[j] / core.RadiansPerTick))
		n := target - w.ticks[j]
		if n == 0 {
			continue
		}
		forward := n > 0
		if !forward {
			n = -n
		}
		spacing := int64(dt*1e9) / int64(n+1)
		for i := int32(0); i < n; i++ {
			ts := nowNS - int64(dt*1e9) + int64(i+1)*spacing
			// In-phase edges count forward, out-of-phase backward.
			w.machine.Encoders().HandleEdge(j, true, forward, ts)
		}
		w.ticks[j] = target
	}
}

// run steps the plant on the control period until stop is closed.
func (w *world) run(stop <-chan struct{}) {
	ticker := time.NewTicker(core.CyclePeriodMs * time.Millisecond)
	defer ticker.Stop()
	start := time.Now()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.step(float64(core.CyclePeriodMs)/1000.0, int64(time.Since(start)))
		}
	}
}

// simGPIO serves the limit switch inputs from the plant state.
type simGPIO struct{ w *world }

func (g *simGPIO) ConfigureInputPullUp(pin core.GPIOPin) error   { return nil }
func (g *simGPIO) ConfigureInputPullDown(pin core.GPIOPin) error { return nil }

func (g *simGPIO) ReadPin(pin core.GPIOPin) bool {
	j := int(pin)
	if j < 0 || j >= protocol.NumJoints {
		return false
	}
	return atomic.LoadUint32(&g.w.limit[j]) != 0
}

// simServo records the commanded pulse widths for the plant to consume.
type simServo struct{ w *world }

func (s *simServo) Configure(joint int) error { return nil }

func (s *simServo) SetPulseWidth(joint int, us uint16) error {
	atomic.StoreUint32(&s.w.pulse[joint], uint32(us))
	return nil
}

// simIMU reports a level, stationary arm: 1g straight down, no rotation.
type simIMU struct{}

func (simIMU) ReadAccel() (x, y, z int16, err error) { return 0, 0, 16384, nil }
func (simIMU) ReadGyro() (x, y, z int16, err error)  { return 0, 0, 0, nil }

func main() {
	listen := flag.String("listen", "127.0.0.1:5555", "TCP address to serve the framed protocol on")
	flag.Parse()

	w := &world{}
	core.SetGPIODriver(&simGPIO{w: w})
	core.SetServoDriver(&simServo{w: w})
	core.SetIMUDriver(simIMU{})

	var connMu sync.Mutex
	var conn net.Conn

	m, err := core.NewMachine(core.MachineConfig{
		LimitPins:       [protocol.NumJoints]core.GPIOPin{0, 1, 2, 3, 4, 5},
		LimitActiveHigh: true,
		Emit: func(frame []byte) {
			connMu.Lock()
			c := conn
			connMu.Unlock()
			if c == nil {
				return
			}
			if _, err := c.Write(frame); err != nil {
				log.Printf("sim: write: %v", err)
			}
		},
	})
	if err != nil {
		log.Fatalf("sim: machine init: %v", err)
	}
	w.machine = m

	stop := make(chan struct{})
	go w.run(stop)
	go m.Run(stop)
	defer close(stop)

	ln, err := net.Listen("tcp", *listen)
	if err != nil {
		log.Fatalf("sim: listen: %v", err)
	}
	log.Printf("sim: arm controller listening on %s", ln.Addr())

	// One host at a time, matching the single serial link of the real
	// board. A new connection displaces the previous one.
	for {
		c, err := ln.Accept()
		if err != nil {
			log.Fatalf("sim: accept: %v", err)
		}
		log.Printf("sim: host connected from %s", c.RemoteAddr())

		connMu.Lock()
		if conn != nil {
			_ = conn.Close()
		}
		conn = c
		connMu.Unlock()

		go func(c net.Conn) {
			buf := make([]byte, 256)
			for {
				n, err := c.Read(buf)
				if err != nil {
					log.Printf("sim: host disconnected: %v", err)
					connMu.Lock()
					if conn == c {
						conn = nil
					}
					connMu.Unlock()
					return
				}
				for _, b := range buf[:n] {
					m.RxByte(b)
				}
			}
		}(c)
	}
}
