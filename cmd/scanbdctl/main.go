// Command scanbdctl is the co-located utility program: it writes one
// "<device>,<action>" message to the daemon's named pipe and exits.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/scanbd/scanbd/internal/ipcpipe"
)

const defaultPipePath = "/var/run/scanbd.pipe"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("scanbdctl", pflag.ContinueOnError)
	pipePath := fs.StringP("pipe", "p", defaultPipePath, "path to the daemon's named pipe")
	device := fs.StringP("device", "d", "", "device name to trigger")
	action := fs.StringP("action", "a", "", "action name to trigger")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *device == "" || *action == "" {
		fmt.Fprintln(os.Stderr, "scanbdctl: --device and --action are both required")
		return 1
	}

	if err := ipcpipe.Write(*pipePath, *device, *action); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
