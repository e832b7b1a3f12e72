package controller

import (
	"os"
	"syscall"
)

// ExecReloader replaces the running process with a fresh copy of itself.
// This is the one mechanism that guarantees the OS releases the serial
// device, whatever state the session's close attempt was left in.
type ExecReloader struct {
	// PreExec runs before the process image is replaced. It is the hook
	// for restoring the host terminal from the display widget.
	PreExec func()
}

// Reload re-executes the current binary with the same arguments and
// environment. It does not return.
func (r *ExecReloader) Reload() {
	if r.PreExec != nil {
		r.PreExec()
	}

	if exe, err := os.Executable(); err == nil {
		_ = syscall.Exec(exe, os.Args, os.Environ())
	}

	// Exec only returns on failure. Exiting still releases the device.
	os.Exit(0)
}
