package bridge

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/PanditAdityaJi/STM32-Robotic-Arm/host/arm"
	"github.com/PanditAdityaJi/STM32-Robotic-Arm/protocol"
)

// stubCommander records calls and returns canned data.
type stubCommander struct {
	angles     [protocol.NumJoints]float64
	tele       arm.Telemetry
	err        error
	positioned []positionRequest
	homed      []int // -1 = all
	stopped    int
	trajectory []arm.TimedWaypoint
}

func (s *stubCommander) Ping() error { return s.err }

func (s *stubCommander) SetPosition(joint int, angle float64) error {
	if s.err != nil {
		return s.err
	}
	s.positioned = append(s.positioned, positionRequest{Joint: joint, Angle: angle})
	return nil
}

func (s *stubCommander) Home() error {
	s.homed = append(s.homed, -1)
	return s.err
}

func (s *stubCommander) HomeJoint(joint int) error {
	s.homed = append(s.homed, joint)
	return s.err
}

func (s *stubCommander) Stop() error {
	s.stopped++
	return s.err
}

func (s *stubCommander) GetPosition() ([protocol.NumJoints]float64, error) {
	return s.angles, s.err
}

func (s *stubCommander) GetSensorData() (*arm.Telemetry, error) {
	if s.err != nil {
		return nil, s.err
	}
	t := s.tele
	return &t, nil
}

func (s *stubCommander) RunTrajectory(points []arm.TimedWaypoint) error {
	if s.err != nil {
		return s.err
	}
	s.trajectory = points
	return nil
}

func newTestServer(stub *stubCommander) *httptest.Server {
	return httptest.NewServer(NewServer(stub).Router())
}

func TestStateHandler(t *testing.T) {
	stub := &stubCommander{}
	stub.angles[2] = 0.75
	stub.tele.Roll = 0.1
	ts := newTestServer(stub)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/state")
	if err != nil {
		t.Fatalf("GET /state failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var state stateResponse
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if state.Angles[2] != 0.75 || state.Telemetry.Roll != 0.1 {
		t.Errorf("state = %+v", state)
	}
}

func TestPositionHandler(t *testing.T) {
	stub := &stubCommander{}
	ts := newTestServer(stub)
	defer ts.Close()

	body := bytes.NewBufferString(`{"joint": 3, "angle": -0.5}`)
	resp, err := http.Post(ts.URL+"/position", "application/json", body)
	if err != nil {
		t.Fatalf("POST /position failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(stub.positioned) != 1 || stub.positioned[0].Joint != 3 || stub.positioned[0].Angle != -0.5 {
		t.Errorf("positioned = %+v", stub.positioned)
	}
}

func TestPositionHandlerNackIsClientError(t *testing.T) {
	stub := &stubCommander{err: &arm.NackError{Command: protocol.CmdSetPosition, Code: protocol.ErrCodeBadValue}}
	ts := newTestServer(stub)
	defer ts.Close()

	body := bytes.NewBufferString(`{"joint": 0, "angle": 9.0}`)
	resp, err := http.Post(ts.URL+"/position", "application/json", body)
	if err != nil {
		t.Fatalf("POST /position failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422 for a controller rejection", resp.StatusCode)
	}
}

func TestHomeJointHandler(t *testing.T) {
	stub := &stubCommander{}
	ts := newTestServer(stub)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/home/4", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /home/4 failed: %v", err)
	}
	resp.Body.Close()

	if len(stub.homed) != 1 || stub.homed[0] != 4 {
		t.Errorf("homed = %v", stub.homed)
	}
}

func TestTrajectoryHandler(t *testing.T) {
	stub := &stubCommander{}
	ts := newTestServer(stub)
	defer ts.Close()

	body := bytes.NewBufferString(`{"points": [{"angles": [0.1, 0, 0, 0, 0, 0], "hold_ms": 250}]}`)
	resp, err := http.Post(ts.URL+"/trajectory", "application/json", body)
	if err != nil {
		t.Fatalf("POST /trajectory failed: %v", err)
	}
	resp.Body.Close()

	if len(stub.trajectory) != 1 {
		t.Fatalf("trajectory = %+v", stub.trajectory)
	}
	if stub.trajectory[0].Angles[0] != 0.1 || stub.trajectory[0].Hold.Milliseconds() != 250 {
		t.Errorf("point = %+v", stub.trajectory[0])
	}
}

func TestTrajectoryHandlerRejectsEmpty(t *testing.T) {
	ts := newTestServer(&stubCommander{})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/trajectory", "application/json", bytes.NewBufferString(`{"points": []}`))
	if err != nil {
		t.Fatalf("POST /trajectory failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestTelemetryWebsocketStream(t *testing.T) {
	stub := &stubCommander{}
	stub.tele.Yaw = 0.42
	ts := newTestServer(stub)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/telemetry"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	defer conn.Close()

	var tele arm.Telemetry
	if err := conn.ReadJSON(&tele); err != nil {
		t.Fatalf("websocket read failed: %v", err)
	}
	if tele.Yaw != 0.42 {
		t.Errorf("streamed yaw = %v, want 0.42", tele.Yaw)
	}
}
