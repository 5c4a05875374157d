package serial

import (
	"fmt"

	"go.bug.st/serial/enumerator"
)

// PortInfo describes a serial port candidate found on the system.
type PortInfo struct {
	Device       string
	IsUSB        bool
	VID          string
	PID          string
	Product      string
	SerialNumber string
}

// Enumerate lists the serial ports present on the system, USB metadata
// included, so callers can locate the arm controller without hardcoding a
// device path.
func Enumerate() ([]PortInfo, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	infos := make([]PortInfo, 0, len(ports))
	for _, p := range ports {
		infos = append(infos, PortInfo{
			Device:       p.Name,
			IsUSB:        p.IsUSB,
			VID:          p.VID,
			PID:          p.PID,
			Product:      p.Product,
			SerialNumber: p.SerialNumber,
		})
	}
	return infos, nil
}
