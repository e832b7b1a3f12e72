package cmd

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/frankcappelle/xterm1/pkg/controller"
	"github.com/frankcappelle/xterm1/pkg/display"
	"github.com/frankcappelle/xterm1/pkg/logging"
	"github.com/frankcappelle/xterm1/pkg/serialport"
)

// connectCmd represents the connect command
var connectCmd = &cobra.Command{
	Use:   "connect [port]",
	Short: "Open the terminal and bridge it to a serial device",
	Long: `Open the scrollback terminal and bridge it to a serial device at
115200 baud (8 data bits, no parity, one stop bit).

With a port argument, Ctrl+T connects to that device directly. Without one,
Ctrl+T opens a picker over the attached devices.

Keys:
  Ctrl+T       connect / disconnect (disconnecting restarts the terminal)
  Ctrl+Q       quit
  PgUp/PgDn    scroll the view; any other key is sent to the device

Examples:
  xterm1 connect
  xterm1 connect /dev/ttyUSB0`,
	Args:    cobra.MaximumNArgs(1),
	Aliases: []string{"c", "open"},
	RunE:    runConnect,
}

func runConnect(cmd *cobra.Command, args []string) error {
	// The bridge needs an interactive host terminal to render into.
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("connect requires an interactive terminal")
	}

	fixedPort := ""
	if len(args) == 1 {
		fixedPort = args[0]
	}

	disp := display.New(display.DefaultOptions())
	if err := disp.Open(); err != nil {
		return fmt.Errorf("failed to open display: %w", err)
	}

	ctrl := controller.New(controller.Config{
		Transport: serialport.NewHostTransport(),
		Display:   disp,
		Chooser:   disp,
		Reloader:  &controller.ExecReloader{PreExec: disp.Stop},
		FixedPort: fixedPort,
		Logger:    logging.GetLogger(),
	})

	fitter := display.NewFitter(disp.Fit, display.DefaultQuietPeriod)
	disp.OnResize(fitter.Notify)

	ctrl.OnStateChange(func(s controller.State) {
		disp.SetStatus(fmt.Sprintf("%s │ Ctrl+T: %s │ Ctrl+Q: quit", s, s.Label()))
	})

	// Bindings run on the display's event goroutine; both of these block
	// on it, so they hop to their own goroutine.
	disp.BindKey(tcell.KeyCtrlT, func() { go ctrl.Toggle() })
	disp.BindKey(tcell.KeyCtrlQ, func() { go disp.Stop() })

	disp.Writeln("Press Ctrl+T to connect to a serial device. Ctrl+Q quits.")
	disp.Focus()

	err := disp.Run()
	logging.Sync()
	return err
}
