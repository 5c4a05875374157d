// Package arm implements the host side of the robotic arm link: it
// serializes outgoing commands, matches incoming frames to the single
// pending request, and enforces a response timeout.
package arm

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/PanditAdityaJi/STM32-Robotic-Arm/internal/syncutil"
	"github.com/PanditAdityaJi/STM32-Robotic-Arm/protocol"
)

// DefaultTimeout is the response deadline for one transaction.
const DefaultTimeout = time.Second

var (
	// ErrTimeout is returned when no matching response arrives within
	// the timeout window. The transaction slot is released; future
	// transactions are unaffected.
	ErrTimeout = errors.New("arm: response timeout")

	// ErrConnectionLost is returned once the transport has failed.
	// There is no automatic reconnect.
	ErrConnectionLost = errors.New("arm: connection lost")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("arm: client closed")
)

// NackError is an explicit rejection frame from the controller.
type NackError struct {
	Command uint8 // the rejected command byte
	Code    uint8 // protocol.ErrCode* reason
}

func (e *NackError) Error() string {
	return fmt.Sprintf("arm: command 0x%02X rejected (code %d)", e.Command, e.Code)
}

// Client is the host transaction layer. Exactly one request may be
// outstanding at a time: callers serialize on an internal lock, send a
// frame, and wait for the matching response or the timeout. A background
// goroutine drains the transport into the receive state machine.
type Client struct {
	port    io.ReadWriteCloser
	timeout time.Duration

	// reqMu serializes whole transactions (the single-slot model).
	reqMu syncutil.Mutex

	// mu guards the pending slot, shared with the read loop.
	mu         sync.Mutex
	pendingCmd uint8
	pendingCh  chan *protocol.Frame
	lost       bool

	stopChan chan struct{}
	doneChan chan struct{}
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default 1s response deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient starts the read loop on an open transport.
func NewClient(port io.ReadWriteCloser, opts ...Option) *Client {
	c := &Client{
		port:     port,
		timeout:  DefaultTimeout,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.readLoop()
	return c
}

// Transact sends one command frame and blocks until the matching response
// arrives or the timeout elapses. A timeout cancels the wait but not the
// send; a late response is delivered to no one and dropped on the next
// dispatch.
func (c *Client) Transact(cmd uint8, payload []byte) (*protocol.Frame, error) {
	frame, err := protocol.Encode(cmd, payload)
	if err != nil {
		return nil, err
	}

	c.reqMu.Lock()
	defer c.reqMu.Unlock()

	ch := make(chan *protocol.Frame, 1)
	c.mu.Lock()
	if c.lost {
		c.mu.Unlock()
		return nil, ErrConnectionLost
	}
	c.pendingCmd = cmd
	c.pendingCh = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.pendingCh = nil
		c.mu.Unlock()
	}()

	if _, err := c.port.Write(frame); err != nil {
		c.markLost()
		return nil, fmt.Errorf("%w: %v", ErrConnectionLost, err)
	}

	select {
	case resp := <-ch:
		if resp.Command == protocol.CmdError && len(resp.Payload) == 2 {
			return nil, &NackError{Command: resp.Payload[0], Code: resp.Payload[1]}
		}
		return resp, nil
	case <-time.After(c.timeout):
		return nil, ErrTimeout
	case <-c.stopChan:
		return nil, ErrClosed
	}
}

// readLoop drains the transport into the receive state machine and hands
// completed frames to the waiting transaction, if any.
func (c *Client) readLoop() {
	defer close(c.doneChan)

	parser := protocol.NewParser()
	buf := make([]byte, 256)

	for {
		select {
		case <-c.stopChan:
			return
		default:
		}

		n, err := c.port.Read(buf)
		if err != nil {
			c.markLost()
			return
		}
		for _, b := range buf[:n] {
			if f, ok := parser.Feed(b); ok {
				c.dispatch(f)
			}
		}
	}
}

// dispatch matches a received frame against the pending request. A frame
// that matches no pending command (late response after a timeout, or an
// unsolicited message) is dropped.
func (c *Client) dispatch(f *protocol.Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pendingCh == nil {
		return
	}
	matches := f.Command == c.pendingCmd ||
		(f.Command == protocol.CmdError && len(f.Payload) == 2 && f.Payload[0] == c.pendingCmd)
	if !matches {
		return
	}

	select {
	case c.pendingCh <- f:
		c.pendingCh = nil
	default:
	}
}

func (c *Client) markLost() {
	c.mu.Lock()
	c.lost = true
	c.mu.Unlock()
}

// Close stops the read loop and closes the transport.
func (c *Client) Close() error {
	select {
	case <-c.stopChan:
	default:
		close(c.stopChan)
	}
	err := c.port.Close()
	<-c.doneChan
	return err
}
