package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceDFT/pkg/device"
	"github.com/OpenTraceLab/OpenTraceDFT/pkg/idcode"
	"github.com/OpenTraceLab/OpenTraceDFT/pkg/sibnet"
)

var (
	infoProfile string
	infoJSON    bool
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Summarize a device profile",
	Long: `Load a device profile and display its identification word, wrapper
widths and instrument network summary.

Examples:
  dft info --profile device.toml
  dft info --profile device.toml --json`,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().StringVarP(&infoProfile, "profile", "p", "", "device profile (TOML)")
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "emit machine-readable JSON")
	infoCmd.MarkFlagRequired("profile")
}

type infoSummary struct {
	Name            string `json:"name"`
	IDCode          string `json:"idcode"`
	Manufacturer    uint16 `json:"manufacturer"`
	PartNumber      uint16 `json:"part_number"`
	Version         uint8  `json:"version"`
	CoreInputWidth  int    `json:"core_input_width"`
	CoreOutputWidth int    `json:"core_output_width"`
	Network         string `json:"network,omitempty"`
	SIBs            int    `json:"sibs"`
	Instruments     int    `json:"instruments"`
	MinScanLength   int    `json:"min_scan_length"`
	MaxScanLength   int    `json:"max_scan_length"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	p, err := loadProfile(infoProfile)
	if err != nil {
		return err
	}

	dev, err := device.New(p.Config)
	if err != nil {
		return err
	}

	id := idcode.Parse(p.Config.IDCode)
	sibs, instruments := countNodes(p.Topology.Nodes)
	summary := infoSummary{
		Name:            p.Name,
		IDCode:          fmt.Sprintf("0x%08X", p.Config.IDCode),
		Manufacturer:    id.ManufacturerCode,
		PartNumber:      id.PartNumber,
		Version:         id.Version,
		CoreInputWidth:  p.Config.CoreInputWidth,
		CoreOutputWidth: p.Config.CoreOutputWidth,
		Network:         p.Topology.Name,
		SIBs:            sibs,
		Instruments:     instruments,
		MinScanLength:   dev.Network().EffectiveLength(),
		MaxScanLength:   fullLength(p.Topology.Nodes),
	}

	if infoJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Printf("Device:  %s\n", summary.Name)
	fmt.Printf("IDCODE:  %s\n", id)
	fmt.Printf("Wrapper: %d inputs, %d outputs\n",
		summary.CoreInputWidth, summary.CoreOutputWidth)
	if summary.Network != "" {
		fmt.Printf("Network: %s (%d SIBs, %d instruments)\n",
			summary.Network, summary.SIBs, summary.Instruments)
		fmt.Printf("  scan length: %d bits closed, %d bits fully open\n",
			summary.MinScanLength, summary.MaxScanLength)
	} else {
		fmt.Println("Network: none")
	}
	return nil
}

func countNodes(nodes []sibnet.Node) (sibs, instruments int) {
	for _, n := range nodes {
		switch n.Kind {
		case sibnet.KindSIB:
			s, i := countNodes(n.Segment)
			sibs += 1 + s
			instruments += i
		case sibnet.KindInstrument:
			instruments++
		}
	}
	return sibs, instruments
}
