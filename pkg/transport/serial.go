package transport

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tarm/serial"

	"github.com/dougsko/rigd/pkg/rig"
)

// pollTimeout bounds each underlying serial read so ReadUntil can
// enforce its own deadline across partial frames
const pollTimeout = 50 * time.Millisecond

// serialPort is the slice of *serial.Port the transport drives
type serialPort interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// SerialTransport implements Transport over a serial port
type SerialTransport struct {
	port  serialPort
	name  string
	mutex sync.Mutex
}

// OpenSerial opens a serial port at the given baud rate
func OpenSerial(cfg Config) (*SerialTransport, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Port,
		Baud:        cfg.BaudRate,
		ReadTimeout: pollTimeout,
	})
	if err != nil {
		return nil, &rig.TransportError{Op: "open",
			Err: fmt.Errorf("failed to open serial port %s: %w", cfg.Port, err)}
	}
	return &SerialTransport{port: port, name: cfg.Port}, nil
}

// Write sends bytes to the device
func (t *SerialTransport) Write(data []byte) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.port == nil {
		return &rig.TransportError{Op: "write", Err: fmt.Errorf("port %s closed", t.name)}
	}
	if _, err := t.port.Write(data); err != nil {
		return &rig.TransportError{Op: "write", Err: err}
	}
	return nil
}

// ReadUntil accumulates bytes until the terminator arrives or the
// deadline passes. Serial reads come back in arbitrary chunks, so
// partial frames are buffered across polls.
func (t *SerialTransport) ReadUntil(terminator byte, timeout time.Duration) ([]byte, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.port == nil {
		return nil, &rig.TransportError{Op: "read", Err: fmt.Errorf("port %s closed", t.name)}
	}

	deadline := time.Now().Add(timeout)
	buf := make([]byte, 0, 64)
	chunk := make([]byte, 64)

	for {
		n, err := t.port.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			for i := len(buf) - n; i < len(buf); i++ {
				if buf[i] == terminator {
					return buf[:i+1], nil
				}
			}
		}
		if err != nil && err != io.EOF {
			return nil, &rig.TransportError{Op: "read", Err: err}
		}
		if time.Now().After(deadline) {
			// bytes without a terminator are a garbled frame, not
			// silence; the distinction decides whether the session faults
			if len(buf) > 0 {
				return nil, &rig.FramingError{Family: "transport",
					Detail: "terminator missing before deadline"}
			}
			return nil, &rig.TimeoutError{Op: "read"}
		}
	}
}

// Close releases the serial port
func (t *SerialTransport) Close() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	if err != nil {
		return &rig.TransportError{Op: "close", Err: err}
	}
	return nil
}
