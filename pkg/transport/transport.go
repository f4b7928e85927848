package transport

import (
	"time"
)

// Transport is the raw byte-stream boundary to the radio. The core
// never enumerates ports itself; callers hand in a port name. Exactly
// one session may own a Transport at a time.
type Transport interface {
	// Write sends bytes to the device
	Write(data []byte) error

	// ReadUntil reads until the terminator byte arrives or the timeout
	// expires. On timeout the partial data read so far is discarded and
	// a timeout error is returned.
	ReadUntil(terminator byte, timeout time.Duration) ([]byte, error)

	// Close releases the port
	Close() error
}

// Config describes how to open a serial transport
type Config struct {
	Port     string // device path, e.g. /dev/ttyUSB0
	BaudRate int
}
