package protocol

import (
	"bytes"
	"testing"
)

func TestChecksum(t *testing.T) {
	testCases := []struct {
		data     []byte
		expected uint8
	}{
		{[]byte{}, 0},
		{[]byte{0x01}, 0x01},
		{[]byte{0xFF, 0x01}, 0x00}, // wraps mod 256
		{[]byte{0xAA, 0x55, 0x01, 0x00}, 0x00},
	}

	for i, tc := range testCases {
		if got := Checksum(tc.data); got != tc.expected {
			t.Errorf("case %d: Checksum(%v) = 0x%02X, want 0x%02X", i, tc.data, got, tc.expected)
		}
	}
}

func TestEncodeLayout(t *testing.T) {
	frame, err := Encode(CmdSetPosition, []byte{2, 0x00, 0x00, 0x80, 0x3F})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if frame[0] != Marker1 || frame[1] != Marker2 {
		t.Errorf("bad marker: % X", frame[:2])
	}
	if frame[2] != CmdSetPosition {
		t.Errorf("command byte = 0x%02X, want 0x%02X", frame[2], CmdSetPosition)
	}
	if int(frame[3]) != 5 {
		t.Errorf("length byte = %d, want 5", frame[3])
	}
	if frame[len(frame)-1] != Checksum(frame[:len(frame)-1]) {
		t.Error("trailing byte is not the checksum of the preceding bytes")
	}
	if len(frame) != OverheadSize+5 {
		t.Errorf("frame length = %d, want %d", len(frame), OverheadSize+5)
	}
}

func TestEncodePayloadTooLong(t *testing.T) {
	if _, err := Encode(CmdPing, make([]byte, 256)); err != ErrPayloadTooLong {
		t.Errorf("expected ErrPayloadTooLong, got %v", err)
	}
}

// Round-trip property: decode(encode(c, p)) == (c, p) for payloads of 0-255 bytes.
func TestEncodeParseRoundTrip(t *testing.T) {
	for size := 0; size <= MaxPayload; size++ {
		payload := make([]byte, size)
		for i := range payload {
			payload[i] = byte(i * 7)
		}

		encoded, err := Encode(CmdGetSensorData, payload)
		if err != nil {
			t.Fatalf("size %d: Encode failed: %v", size, err)
		}

		parser := NewParser()
		var got *Frame
		emitted := 0
		for _, b := range encoded {
			if f, ok := parser.Feed(b); ok {
				got = f
				emitted++
			}
		}

		if emitted != 1 {
			t.Fatalf("size %d: emitted %d frames, want 1", size, emitted)
		}
		if got.Command != CmdGetSensorData {
			t.Errorf("size %d: command = 0x%02X", size, got.Command)
		}
		if !bytes.Equal(got.Payload, payload) {
			t.Errorf("size %d: payload mismatch", size)
		}
	}
}
