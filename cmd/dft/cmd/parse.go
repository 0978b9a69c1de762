package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceDFT/pkg/sibnet"
)

var parseCmd = &cobra.Command{
	Use:   "parse <network-file>",
	Short: "Parse and display a network description",
	Long: `Parse an ICL-lite network description and display the instrument
tree with per-segment scan lengths.

Examples:
  dft parse network.icl
  dft parse -v examples/mbist.icl`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	filename := args[0]

	if verbose {
		fmt.Printf("Parsing network description: %s\n\n", filename)
	}

	topo, err := loadTopology(filename)
	if err != nil {
		return err
	}

	fmt.Printf("Network: %s\n", topo.Name)
	printNodes(topo.Nodes, 1)

	net, err := sibnet.New(topo)
	if err != nil {
		return err
	}
	fmt.Printf("\nScan length (all SIBs closed): %d bits\n", net.EffectiveLength())
	fmt.Printf("Scan length (all SIBs open):   %d bits\n", fullLength(topo.Nodes))
	return nil
}

func printNodes(nodes []sibnet.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		switch n.Kind {
		case sibnet.KindSIB:
			fmt.Printf("%ssib %s\n", indent, n.Name)
			printNodes(n.Segment, depth+1)
		case sibnet.KindInstrument:
			fmt.Printf("%sinstrument %s width %d\n", indent, n.Name, n.Width)
		}
	}
}

// fullLength is the scan length with every SIB open: one control bit per
// SIB plus every instrument width.
func fullLength(nodes []sibnet.Node) int {
	total := 0
	for _, n := range nodes {
		switch n.Kind {
		case sibnet.KindSIB:
			total += 1 + fullLength(n.Segment)
		case sibnet.KindInstrument:
			total += n.Width
		}
	}
	return total
}
