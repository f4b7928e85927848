package transport

import (
	"sync"
	"time"

	"github.com/dougsko/rigd/pkg/rig"
)

// MockTransport implements Transport for testing with scripted replies.
// Each Write consumes nothing; each ReadUntil returns the next queued
// reply in order. An empty queue simulates a read timeout.
type MockTransport struct {
	mutex   sync.Mutex
	writes  [][]byte
	replies [][]byte
	failAll bool
	closed  bool
}

// NewMockTransport creates a mock transport
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// QueueReply appends a scripted reply for a future ReadUntil
func (t *MockTransport) QueueReply(data []byte) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.replies = append(t.replies, data)
}

// FailWrites makes every subsequent Write return a transport error
func (t *MockTransport) FailWrites() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.failAll = true
}

// Writes returns everything written so far, in order
func (t *MockTransport) Writes() [][]byte {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	out := make([][]byte, len(t.writes))
	copy(out, t.writes)
	return out
}

// Write records the outbound bytes
func (t *MockTransport) Write(data []byte) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.closed || t.failAll {
		return &rig.TransportError{Op: "write", Err: errMockClosed}
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	t.writes = append(t.writes, cp)
	return nil
}

// ReadUntil returns the next scripted reply or a timeout when none remain
func (t *MockTransport) ReadUntil(terminator byte, timeout time.Duration) ([]byte, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.closed {
		return nil, &rig.TransportError{Op: "read", Err: errMockClosed}
	}
	if len(t.replies) == 0 {
		return nil, &rig.TimeoutError{Op: "read"}
	}
	reply := t.replies[0]
	t.replies = t.replies[1:]
	return reply, nil
}

// Close marks the transport closed
func (t *MockTransport) Close() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.closed = true
	return nil
}

var errMockClosed = &mockError{"mock transport unavailable"}

type mockError struct{ msg string }

func (e *mockError) Error() string { return e.msg }
