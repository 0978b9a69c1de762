package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "dft",
	Short: "Test-access device simulator and scan driver",
	Long: `A simulator and host-side driver for hierarchical test-access
networks: TAP controller, boundary scan, 1500-style core wrappers and
1687-style SIB instrument networks.

Examples:
  dft parse network.icl                       # Parse a network description
  dft info --profile device.toml              # Summarize a device profile
  dft trace --profile device.toml --open sib0 # Run a traced scan scenario`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
