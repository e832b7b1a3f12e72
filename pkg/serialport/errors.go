package serialport

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.bug.st/serial"
)

// Sentinel errors for the connection failure taxonomy.
var (
	// ErrUnsupported indicates the host has no usable serial transport.
	ErrUnsupported = errors.New("serial transport is not supported on this host")

	// ErrCancelled indicates the user dismissed the port picker without
	// choosing a device.
	ErrCancelled = errors.New("port selection cancelled")

	// ErrNoDevice indicates no serial devices are attached.
	ErrNoDevice = errors.New("no serial devices available")
)

// PortError represents a failure of a specific operation on a specific port
type PortError struct {
	Op   string
	Port string
	Err  error
}

// Error implements the error interface
func (e *PortError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("serial %s failed on port %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("serial %s failed on port %s", e.Op, e.Port)
}

// Unwrap returns the underlying cause
func (e *PortError) Unwrap() error {
	return e.Err
}

// NewPortError creates a new port error
func NewPortError(op, port string, cause error) *PortError {
	return &PortError{
		Op:   op,
		Port: port,
		Err:  cause,
	}
}

// benignPatterns are substrings of errors the OS raises when a port is torn
// down underneath a blocked read. They are expected noise during an
// intentional disconnect, not failures worth surfacing.
var benignPatterns = []string{
	"port has been closed",
	"port closed",
	"file already closed",
	"input/output error",
	"device not configured",
	"no such device",
	"bad file descriptor",
}

// IsBenignDisconnect reports whether err is an expected consequence of the
// port being closed while I/O was in flight.
func IsBenignDisconnect(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}

	var portErr *serial.PortError
	if errors.As(err, &portErr) && portErr.Code() == serial.PortClosed {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range benignPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}

	return false
}
