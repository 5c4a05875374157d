package protocol

import "errors"

var ErrPayloadTooLong = errors.New("payload exceeds 255 bytes")

// Checksum returns the low 8 bits of the byte sum of data.
func Checksum(data []byte) uint8 {
	var sum uint8
	for _, b := range data {
		sum += b
	}
	return sum
}

// Encode builds a complete wire frame for the given command and payload.
// The codec is stateless and symmetric: both the host and the device use it
// for their outgoing direction, and Parser is its incremental inverse.
func Encode(command uint8, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, ErrPayloadTooLong
	}

	buf := make([]byte, 0, OverheadSize+len(payload))
	buf = append(buf, Marker1, Marker2, command, uint8(len(payload)))
	buf = append(buf, payload...)
	buf = append(buf, Checksum(buf))
	return buf, nil
}

// MustEncode is Encode for payloads known to fit, such as fixed-size
// acknowledgments built by the firmware itself.
func MustEncode(command uint8, payload []byte) []byte {
	buf, err := Encode(command, payload)
	if err != nil {
		panic(err)
	}
	return buf
}
