package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "scrollkit",
		Short: "Dependency-tracked property graphs for virtual scrolling",
		Long: `Scrollkit evaluates graphs of interdependent properties with
change propagation, built for virtual-scrolling hosts.

The CLI ships two tools:

  • graph  — print the topology of the demo window graph
  • serve  — run a demo window behind the HTTP inspection server`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		graphCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
