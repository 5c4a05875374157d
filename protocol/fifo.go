package protocol

import "sync/atomic"

// ByteFIFO is a fixed-capacity single-producer/single-consumer byte queue.
// The receive interrupt pushes raw bytes; the control loop pops them into
// the Parser. Head and tail are advanced atomically so no lock is needed
// as long as there is exactly one producer and one consumer.
type ByteFIFO struct {
	buf  []byte
	mask uint32
	head uint32 // next read index, owned by consumer
	tail uint32 // next write index, owned by producer
}

// NewByteFIFO creates a queue holding up to capacity-1 bytes. Capacity is
// rounded up to a power of two.
func NewByteFIFO(capacity int) *ByteFIFO {
	size := 2
	for size < capacity {
		size <<= 1
	}
	return &ByteFIFO{buf: make([]byte, size), mask: uint32(size - 1)}
}

// Push appends one byte. Returns false when the queue is full, in which
// case the byte is dropped; the framing layer resynchronizes downstream.
func (f *ByteFIFO) Push(b byte) bool {
	tail := atomic.LoadUint32(&f.tail)
	next := (tail + 1) & f.mask
	if next == atomic.LoadUint32(&f.head) {
		return false
	}
	f.buf[tail] = b
	atomic.StoreUint32(&f.tail, next)
	return true
}

// Pop removes and returns one byte, or ok=false when empty.
func (f *ByteFIFO) Pop() (byte, bool) {
	head := atomic.LoadUint32(&f.head)
	if head == atomic.LoadUint32(&f.tail) {
		return 0, false
	}
	b := f.buf[head]
	atomic.StoreUint32(&f.head, (head+1)&f.mask)
	return b, true
}

// Len returns the number of queued bytes.
func (f *ByteFIFO) Len() int {
	head := atomic.LoadUint32(&f.head)
	tail := atomic.LoadUint32(&f.tail)
	return int((tail - head) & f.mask)
}
