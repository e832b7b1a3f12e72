// Package controller orchestrates the connection lifecycle: it owns the
// device session, drives the connection state machine, wires the relays,
// and forces a process reload to complete a disconnect.
package controller

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/frankcappelle/xterm1/pkg/display"
	"github.com/frankcappelle/xterm1/pkg/relay"
	"github.com/frankcappelle/xterm1/pkg/serialport"
	"github.com/frankcappelle/xterm1/pkg/session"
)

// State represents the connection state
type State int

const (
	// StateDisconnected is the initial state; no session exists.
	StateDisconnected State = iota
	// StateConnected means a session is open and both relays are wired.
	StateConnected
	// StateDisconnecting is terminal for the process lifetime: teardown has
	// started and a reload is pending. A fresh process starts Disconnected.
	StateDisconnecting
)

// String returns the string representation of State
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}

// Label returns the text for the single UI affordance driven by this state
func (s State) Label() string {
	switch s {
	case StateConnected:
		return "Disconnect"
	case StateDisconnecting:
		return "Disconnecting..."
	default:
		return "Connect to Serial Device"
	}
}

// Reloader completes a disconnect by replacing the process. A reload is the
// only mechanism that guarantees the OS releases the device.
type Reloader interface {
	Reload()
}

// DefaultReloadDelay is how long a disconnect waits before reloading. The
// delay lets the best-effort port close get underway; its completion is
// neither awaited nor guaranteed.
const DefaultReloadDelay = 500 * time.Millisecond

// Config contains the collaborators of a Controller
type Config struct {
	Transport serialport.Transport
	Display   display.Surface
	Chooser   serialport.Chooser
	Reloader  Reloader

	// FixedPort skips the picker and connects to the named port directly.
	FixedPort string

	// ReloadDelay overrides DefaultReloadDelay when positive.
	ReloadDelay time.Duration

	Logger *zap.Logger
}

// Controller drives the connection state machine. It is the exclusive owner
// of the session from open to close.
type Controller struct {
	transport   serialport.Transport
	display     display.Surface
	chooser     serialport.Chooser
	reloader    Reloader
	fixedPort   string
	reloadDelay time.Duration
	log         *zap.Logger

	mu         sync.Mutex
	state      State
	connecting bool
	sess       *session.Session
	writer     *relay.Writer
	cancelData func()
	onState    func(State)
}

// New creates a controller in the Disconnected state
func New(cfg Config) *Controller {
	delay := cfg.ReloadDelay
	if delay <= 0 {
		delay = DefaultReloadDelay
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Controller{
		transport:   cfg.Transport,
		display:     cfg.Display,
		chooser:     cfg.Chooser,
		reloader:    cfg.Reloader,
		fixedPort:   cfg.FixedPort,
		reloadDelay: delay,
		log:         log,
		state:       StateDisconnected,
	}
}

// State returns the current connection state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// OnStateChange registers the single observer of state transitions and
// invokes it immediately with the current state.
func (c *Controller) OnStateChange(fn func(State)) {
	c.mu.Lock()
	c.onState = fn
	state := c.state
	c.mu.Unlock()

	if fn != nil {
		fn(state)
	}
}

// Toggle connects when disconnected and disconnects otherwise. A toggle
// while connected or disconnecting never starts a second session.
func (c *Controller) Toggle() {
	if c.State() == StateDisconnected {
		_ = c.Connect()
		return
	}
	c.Disconnect()
}

// Connect opens a session on the chosen port, wires the write relay as the
// display's input subscription, and starts the read relay. Failures surface
// as a visible line on the display and leave the controller Disconnected.
// At most one Connect makes progress at a time: the picker and the open can
// block for a while, and a second attempt racing them must not open a
// second session.
func (c *Controller) Connect() error {
	c.mu.Lock()
	if c.connecting {
		c.mu.Unlock()
		return fmt.Errorf("connect already in progress")
	}
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return fmt.Errorf("cannot connect while %s", c.state)
	}
	c.connecting = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.connecting = false
		c.mu.Unlock()
	}()

	if !c.transport.Supported() {
		c.display.Writeln("Serial is not supported on this host.")
		return serialport.ErrUnsupported
	}

	portName := c.fixedPort
	if portName == "" {
		name, err := c.transport.RequestPort(c.chooser)
		if err != nil {
			c.display.Writeln("No serial device selected: " + err.Error())
			return err
		}
		portName = name
	}

	sess, err := session.Open(c.transport, portName)
	if err != nil {
		c.log.Error("session open failed", zap.String("port", portName), zap.Error(err))
		c.display.Writeln("Failed to open " + portName + ": " + err.Error())
		return err
	}

	writer := relay.NewWriter(sess, c.log)
	cancel := c.display.OnData(writer.OnData)

	c.mu.Lock()
	c.sess = sess
	c.writer = writer
	c.cancelData = cancel
	c.mu.Unlock()

	c.setState(StateConnected)
	c.display.Writeln(fmt.Sprintf("Connected to %s at %d baud.", portName, session.BaudRate))
	c.display.Focus()
	c.log.Info("connected", zap.String("port", portName))

	go func() {
		if err := relay.RunReader(sess, c.display, c.log); err != nil {
			c.Disconnect()
		}
	}()

	return nil
}

// Disconnect tears the connection down: state moves to Disconnecting, the
// write path is detached, the session is closed best-effort with errors
// swallowed, and after a short fixed delay the process reloads. The reload
// proceeds regardless of the close outcome or the read relay's state.
func (c *Controller) Disconnect() {
	c.mu.Lock()
	if c.state != StateConnected {
		c.mu.Unlock()
		return
	}
	c.state = StateDisconnecting
	sess := c.sess
	writer := c.writer
	cancel := c.cancelData
	onState := c.onState
	c.mu.Unlock()

	if onState != nil {
		onState(StateDisconnecting)
	}

	if sess != nil {
		sent, recv := sess.Stats()
		c.display.Writeln(fmt.Sprintf("Session on %s: %d bytes sent, %d bytes received.",
			sess.PortName(), sent, recv))
	}
	c.display.Writeln("Disconnecting; the terminal will restart.")

	if writer != nil {
		writer.Detach()
	}
	if cancel != nil {
		cancel()
	}

	if sess != nil {
		// The reload fires regardless of the close outcome.
		if err := sess.Close(); err != nil {
			c.log.Debug("ignoring close error", zap.Error(err))
		}
	}

	c.log.Info("disconnecting, reload scheduled", zap.Duration("delay", c.reloadDelay))
	time.AfterFunc(c.reloadDelay, c.reloader.Reload)
}

// setState updates the state and notifies the observer
func (c *Controller) setState(state State) {
	c.mu.Lock()
	c.state = state
	onState := c.onState
	c.mu.Unlock()

	if onState != nil {
		onState(state)
	}
}
