package app

import (
	"fmt"
	"io"

	"github.com/TanaroSch/clipforward/internal/config"
)

// RunCommand executes a one-shot subcommand and returns the process exit code.
func RunCommand(args []string, version string, stdout, stderr io.Writer) int {
	switch args[0] {
	case "version":
		fmt.Fprintln(stdout, version)
		return 0
	case "init-config":
		path := config.Path()
		if len(args) > 1 {
			path = args[1]
		}
		if err := config.WriteDefault(path); err != nil {
			fmt.Fprintf(stderr, "Error writing config: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, path)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command %q. Usage: clipforward [version | init-config [path]]\n", args[0])
		return 2
	}
}
