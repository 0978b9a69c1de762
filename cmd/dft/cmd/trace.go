package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceDFT/pkg/device"
	"github.com/OpenTraceLab/OpenTraceDFT/pkg/driver"
	"github.com/OpenTraceLab/OpenTraceDFT/pkg/idcode"
	"github.com/OpenTraceLab/OpenTraceDFT/pkg/trace"
)

var (
	traceProfile    string
	traceOpen       []string
	traceClose      []string
	traceShiftsOnly bool
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Run a traced scan scenario against a simulated device",
	Long: `Instantiate a device from a profile, attach a structured trace
sink, and drive a scan scenario: read the identification word, reconfigure
the requested SIBs and capture the resulting network image. Every TAP tick
is logged.

Examples:
  dft trace --profile device.toml
  dft trace --profile device.toml --open mbist0 --open mbist1
  dft trace --profile device.toml --shifts-only`,
	RunE: runTrace,
}

func init() {
	rootCmd.AddCommand(traceCmd)

	traceCmd.Flags().StringVarP(&traceProfile, "profile", "p", "", "device profile (TOML)")
	traceCmd.Flags().StringArrayVar(&traceOpen, "open", nil, "SIB to open (repeatable)")
	traceCmd.Flags().StringArrayVar(&traceClose, "close", nil, "SIB to close (repeatable)")
	traceCmd.Flags().BoolVar(&traceShiftsOnly, "shifts-only", false,
		"suppress ticks without register activity")
	traceCmd.MarkFlagRequired("profile")
}

func runTrace(cmd *cobra.Command, args []string) error {
	p, err := loadProfile(traceProfile)
	if err != nil {
		return err
	}

	log := trace.NewLogger(os.Stderr, "dft")
	sink := trace.NewSink(log)
	sink.ShiftsOnly = traceShiftsOnly
	p.Config.Tracer = sink

	dev, err := device.New(p.Config)
	if err != nil {
		return err
	}
	host, err := driver.New(dev, p.Topology)
	if err != nil {
		return err
	}

	raw, err := host.ReadIDCode()
	if err != nil {
		return err
	}
	fmt.Printf("IDCODE: %s\n", idcode.Parse(raw))

	for _, name := range traceOpen {
		if err := host.SetSIB(name, true); err != nil {
			return err
		}
		if verbose {
			fmt.Printf("opened %s, scan length now %d bits\n",
				name, host.NetworkLength())
		}
	}
	for _, name := range traceClose {
		if err := host.SetSIB(name, false); err != nil {
			return err
		}
		if verbose {
			fmt.Printf("closed %s, scan length now %d bits\n",
				name, host.NetworkLength())
		}
	}

	if len(traceOpen)+len(traceClose) > 0 {
		image, err := host.CaptureNetwork()
		if err != nil {
			return err
		}
		fmt.Printf("Network scan length: %d bits\n", host.NetworkLength())
		fmt.Printf("Network image:       %s\n", formatBits(image))
		for name, open := range host.SIBStates() {
			state := "closed"
			if open {
				state = "open"
			}
			fmt.Printf("  %-16s %s\n", name, state)
		}
	}

	if err := dev.Health().Err(); err != nil {
		return fmt.Errorf("device reported unreliable scans: %w", err)
	}
	return nil
}

// formatBits renders a scan image serial-output end first.
func formatBits(bits []bool) string {
	buf := make([]byte, len(bits))
	for i, b := range bits {
		if b {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf)
}
