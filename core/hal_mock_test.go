package core

import "github.com/PanditAdityaJi/STM32-Robotic-Arm/protocol"

// mockGPIO simulates the limit switch inputs.
type mockGPIO struct {
	levels map[GPIOPin]bool
}

func newMockGPIO() *mockGPIO {
	return &mockGPIO{levels: make(map[GPIOPin]bool)}
}

func (g *mockGPIO) ConfigureInputPullUp(pin GPIOPin) error   { return nil }
func (g *mockGPIO) ConfigureInputPullDown(pin GPIOPin) error { return nil }
func (g *mockGPIO) ReadPin(pin GPIOPin) bool                 { return g.levels[pin] }

// mockServo records the last pulse width written per joint.
type mockServo struct {
	last [protocol.NumJoints]uint16
}

func (s *mockServo) Configure(joint int) error { return nil }
func (s *mockServo) SetPulseWidth(joint int, us uint16) error {
	s.last[joint] = us
	return nil
}

// mockIMU returns fixed raw samples.
type mockIMU struct {
	ax, ay, az int16
	gx, gy, gz int16
	err        error
}

func (i *mockIMU) ReadAccel() (int16, int16, int16, error) {
	return i.ax, i.ay, i.az, i.err
}

func (i *mockIMU) ReadGyro() (int16, int16, int16, error) {
	return i.gx, i.gy, i.gz, i.err
}

// testRig wires a Machine to mock drivers, a manual clock and a frame
// capture buffer.
type testRig struct {
	machine *Machine
	gpio    *mockGPIO
	servo   *mockServo
	imu     *mockIMU
	sent    []*protocol.Frame
	clockNS int64
}

func limitPin(joint int) GPIOPin {
	return GPIOPin(10 + joint)
}

func newTestRig(t interface{ Fatalf(string, ...interface{}) }) *testRig {
	rig := &testRig{
		gpio:    newMockGPIO(),
		servo:   &mockServo{},
		imu:     &mockIMU{az: 16384}, // 1g on z: level orientation
		clockNS: 1,
	}
	SetGPIODriver(rig.gpio)
	SetServoDriver(rig.servo)
	SetIMUDriver(rig.imu)

	var pins [protocol.NumJoints]GPIOPin
	for j := range pins {
		pins[j] = limitPin(j)
	}

	parser := protocol.NewParser()
	m, err := NewMachine(MachineConfig{
		LimitPins:       pins,
		LimitActiveHigh: true,
		Emit: func(raw []byte) {
			for _, b := range raw {
				if f, ok := parser.Feed(b); ok {
					rig.sent = append(rig.sent, f)
				}
			}
		},
		Now: func() int64 { return rig.clockNS },
	})
	if err != nil {
		t.Fatalf("NewMachine failed: %v", err)
	}
	rig.machine = m
	return rig
}

// cycle advances the manual clock by one period and runs the loop once.
func (r *testRig) cycle() {
	r.clockNS += CyclePeriodMs * 1e6
	r.machine.RunCycle()
}

// send feeds an encoded command frame into the receive path.
func (r *testRig) send(cmd uint8, payload []byte) {
	for _, b := range protocol.MustEncode(cmd, payload) {
		r.machine.RxByte(b)
	}
}

// lastFrame pops the most recent emitted frame, nil when none.
func (r *testRig) lastFrame() *protocol.Frame {
	if len(r.sent) == 0 {
		return nil
	}
	return r.sent[len(r.sent)-1]
}

// setSwitch toggles a joint's limit switch level.
func (r *testRig) setSwitch(joint int, active bool) {
	r.gpio.levels[limitPin(joint)] = active
}
