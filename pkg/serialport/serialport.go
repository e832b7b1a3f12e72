// Package serialport adapts the host serial transport: capability checks,
// port enumeration, the user-driven port picker, and opening raw byte
// streams on a chosen device.
package serialport

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

// Port is the raw byte stream of an open serial device. Reads block until
// data arrives or the port becomes unreadable; writes transmit in call order.
type Port interface {
	io.ReadWriteCloser
}

// Chooser presents a list of options to the user and returns the index of
// the selected one. Implementations return ErrCancelled when the user
// dismisses the choice.
type Chooser interface {
	Choose(prompt string, options []string) (int, error)
}

// Transport is the contract for the host serial layer. The production
// implementation is HostTransport; tests substitute fakes.
type Transport interface {
	// Supported reports whether the host exposes a usable serial transport.
	Supported() bool

	// ListPorts returns the names of the serial devices attached to the host.
	ListPorts() ([]string, error)

	// RequestPort runs the user-driven picker over the attached devices and
	// returns the chosen port name. Fails with ErrNoDevice when nothing is
	// attached and ErrCancelled when the user backs out.
	RequestPort(chooser Chooser) (string, error)

	// Open opens the named port at the given baud rate (8 data bits, no
	// parity, one stop bit) and acquires an exclusive OS-level lock on the
	// device until the port is closed or the process exits.
	Open(name string, baudRate int) (Port, error)
}

// HostTransport implements Transport using go.bug.st/serial
type HostTransport struct{}

// NewHostTransport creates the production transport
func NewHostTransport() *HostTransport {
	return &HostTransport{}
}

// Supported reports whether port enumeration works on this host
func (t *HostTransport) Supported() bool {
	_, err := serial.GetPortsList()
	return err == nil
}

// ListPorts returns the available serial port names
func (t *HostTransport) ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}

// RequestPort lets the user pick one of the attached devices
func (t *HostTransport) RequestPort(chooser Chooser) (string, error) {
	ports, err := t.ListPorts()
	if err != nil {
		return "", err
	}

	return PickPort(ports, chooser)
}

// PickPort runs the chooser over a port list and validates the selection
func PickPort(ports []string, chooser Chooser) (string, error) {
	if len(ports) == 0 {
		return "", ErrNoDevice
	}

	index, err := chooser.Choose("Select a serial device", ports)
	if err != nil {
		return "", err
	}

	if index < 0 || index >= len(ports) {
		return "", fmt.Errorf("invalid port selection: %d", index)
	}

	return ports[index], nil
}

// Open opens the named port at the given baud rate
func (t *HostTransport) Open(name string, baudRate int) (Port, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		StopBits: serial.OneStopBit,
		Parity:   serial.NoParity,
	}

	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, NewPortError("open", name, err)
	}

	return port, nil
}
