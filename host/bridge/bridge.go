// Package bridge exposes the host transaction layer to visualization and
// planning clients over HTTP: a small JSON API for commands and state,
// plus a websocket stream of telemetry snapshots.
package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/PanditAdityaJi/STM32-Robotic-Arm/host/arm"
	"github.com/PanditAdityaJi/STM32-Robotic-Arm/protocol"
)

// Commander is the slice of the arm client the bridge needs. *arm.Client
// satisfies it; tests substitute a stub.
type Commander interface {
	Ping() error
	SetPosition(joint int, angle float64) error
	Home() error
	HomeJoint(joint int) error
	Stop() error
	GetPosition() ([protocol.NumJoints]float64, error)
	GetSensorData() (*arm.Telemetry, error)
	RunTrajectory(points []arm.TimedWaypoint) error
}

// DefaultPollInterval paces the websocket telemetry stream. One request
// at a time goes over the serial link, so polling much faster than the
// control cycle only adds load.
const DefaultPollInterval = 100 * time.Millisecond

// Server handles the HTTP routes.
type Server struct {
	arm          Commander
	pollInterval time.Duration
	upgrader     websocket.Upgrader
}

// NewServer creates a bridge in front of an arm commander.
func NewServer(commander Commander) *Server {
	return &Server{
		arm:          commander,
		pollInterval: DefaultPollInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/ping", s.pingHandler).Methods("GET")
	r.HandleFunc("/state", s.stateHandler).Methods("GET")
	r.HandleFunc("/position", s.positionHandler).Methods("POST")
	r.HandleFunc("/home", s.homeHandler).Methods("POST")
	r.HandleFunc("/home/{joint:[0-9]+}", s.homeJointHandler).Methods("POST")
	r.HandleFunc("/stop", s.stopHandler).Methods("POST")
	r.HandleFunc("/trajectory", s.trajectoryHandler).Methods("POST")
	r.HandleFunc("/telemetry", s.telemetryStreamHandler).Methods("GET")

	return r
}

// ListenAndServe blocks serving the API.
func (s *Server) ListenAndServe(addr string) error {
	log.Printf("bridge listening on %s", addr)
	return http.ListenAndServe(addr, s.Router())
}

type stateResponse struct {
	Angles    [protocol.NumJoints]float64 `json:"angles"`
	Telemetry *arm.Telemetry              `json:"telemetry"`
}

type positionRequest struct {
	Joint int     `json:"joint"`
	Angle float64 `json:"angle"`
}

type trajectoryRequest struct {
	Points []trajectoryPoint `json:"points"`
}

type trajectoryPoint struct {
	Angles [protocol.NumJoints]float64 `json:"angles"`
	HoldMS uint16                      `json:"hold_ms"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) pingHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.arm.Ping(); err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) stateHandler(w http.ResponseWriter, r *http.Request) {
	angles, err := s.arm.GetPosition()
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	tele, err := s.arm.GetSensorData()
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, stateResponse{Angles: angles, Telemetry: tele})
}

func (s *Server) positionHandler(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.arm.SetPosition(req.Joint, req.Angle); err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.arm.Home(); err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) homeJointHandler(w http.ResponseWriter, r *http.Request) {
	joint := 0
	fmt.Sscanf(mux.Vars(r)["joint"], "%d", &joint)
	if err := s.arm.HomeJoint(joint); err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) stopHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.arm.Stop(); err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) trajectoryHandler(w http.ResponseWriter, r *http.Request) {
	var req trajectoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Points) == 0 {
		respondError(w, http.StatusBadRequest, "trajectory needs at least one point")
		return
	}

	points := make([]arm.TimedWaypoint, len(req.Points))
	for i, p := range req.Points {
		points[i] = arm.TimedWaypoint{
			Angles: p.Angles,
			Hold:   time.Duration(p.HoldMS) * time.Millisecond,
		}
	}
	if err := s.arm.RunTrajectory(points); err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// telemetryStreamHandler upgrades to a websocket and pushes telemetry
// snapshots at the poll interval until the peer goes away.
func (s *Server) telemetryStreamHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("telemetry websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for range ticker.C {
		tele, err := s.arm.GetSensorData()
		if err != nil {
			_ = conn.WriteJSON(errorResponse{Error: err.Error()})
			continue
		}
		if err := conn.WriteJSON(tele); err != nil {
			return
		}
	}
}

// respondCommandError maps arm errors to HTTP statuses: an explicit
// rejection from the controller is the client's fault, everything else is
// a gateway problem.
func respondCommandError(w http.ResponseWriter, err error) {
	var nack *arm.NackError
	if errors.As(err, &nack) {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	respondError(w, http.StatusBadGateway, err.Error())
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}
