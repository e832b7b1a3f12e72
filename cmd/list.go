package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/frankcappelle/xterm1/pkg/serialport"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available serial devices",
	Long: `List all serial devices attached to the host.

On different platforms:
  - Windows: COM ports
  - Linux: /dev/ttyUSB*, /dev/ttyACM* and similar devices
  - macOS: /dev/cu.* and /dev/tty.* devices`,
	Aliases: []string{"ls", "ports"},
	Run:     runList,
}

func runList(cmd *cobra.Command, args []string) {
	transport := serialport.NewHostTransport()

	if !transport.Supported() {
		fmt.Fprintln(os.Stderr, "Serial is not supported on this host.")
		os.Exit(1)
	}

	ports, err := transport.ListPorts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
		os.Exit(1)
	}

	if len(ports) == 0 {
		fmt.Println("No serial devices found.")
		return
	}

	fmt.Printf("Found %d serial device(s):\n", len(ports))
	for _, port := range ports {
		fmt.Printf("  %s\n", port)
	}

	fmt.Println("\nUse 'xterm1 connect [port]' to open a terminal on a device.")
}
