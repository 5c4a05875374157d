package protocol

// Parser reassembles frames from an unordered byte stream, one byte per
// call. It is designed to run inside a receive interrupt: Feed is O(1),
// never blocks, and allocates only the payload slice handed out with an
// emitted frame. Noise and truncated frames are recovered from purely by
// rescanning for the two marker bytes.
type Parser struct {
	state   parseState
	command uint8
	length  uint8
	sum     uint8 // running checksum over marker+command+length+payload
	payload []byte
}

type parseState uint8

const (
	waitMarker1 parseState = iota
	waitMarker2
	waitCommand
	waitLength
	waitPayload
	waitChecksum
)

// NewParser returns a Parser scanning for the start of a frame.
func NewParser() *Parser {
	return &Parser{payload: make([]byte, 0, MaxPayload)}
}

// Feed consumes one byte. When the byte completes a frame whose checksum
// validates, the frame is returned with ok=true; in every other case the
// return is (nil, false). Checksum mismatches are dropped silently and the
// parser resumes scanning for the next marker.
func (p *Parser) Feed(b byte) (*Frame, bool) {
	switch p.state {
	case waitMarker1:
		if b == Marker1 {
			p.state = waitMarker2
		}
		// Anything else is inter-frame noise; keep scanning.

	case waitMarker2:
		if b == Marker2 {
			p.state = waitCommand
		} else {
			// Stray 0xAA mid-stream; resynchronize.
			p.state = waitMarker1
		}

	case waitCommand:
		p.command = b
		p.state = waitLength

	case waitLength:
		p.length = b
		p.sum = Marker1 + Marker2 + p.command + p.length
		p.payload = p.payload[:0]
		if p.length == 0 {
			p.state = waitChecksum
		} else {
			p.state = waitPayload
		}

	case waitPayload:
		p.payload = append(p.payload, b)
		p.sum += b
		if len(p.payload) == int(p.length) {
			p.state = waitChecksum
		}

	case waitChecksum:
		p.state = waitMarker1
		if b != p.sum {
			return nil, false
		}
		frame := &Frame{Command: p.command}
		if len(p.payload) > 0 {
			frame.Payload = make([]byte, len(p.payload))
			copy(frame.Payload, p.payload)
		}
		return frame, true
	}

	return nil, false
}

// Reset discards any partially assembled frame.
func (p *Parser) Reset() {
	p.state = waitMarker1
	p.payload = p.payload[:0]
}
