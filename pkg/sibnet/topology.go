// Package sibnet implements an IEEE 1687 style reconfigurable scan network:
// a chain of Segment Insertion Bits (SIBs), each optionally gating a
// downstream segment of further SIBs and leaf instruments. The network
// presents one serial register whose effective length changes as SIBs open
// and close.
package sibnet

import "fmt"

// Kind discriminates topology entries.
type Kind uint8

const (
	// KindSIB is a one-bit gate owning an optional downstream segment.
	KindSIB Kind = iota
	// KindInstrument is a fixed-width leaf.
	KindInstrument
)

// Node is one entry of a topology segment. The tree shape gives every
// segment exactly one owning SIB, so exclusive ownership holds by
// construction.
type Node struct {
	Name    string
	Kind    Kind
	Width   int    // instrument width; must be zero for SIBs
	Segment []Node // SIB downstream segment; must be empty for instruments
}

// Topology is the structural wiring of a network: an ordered list of nodes
// reachable from the entry point. The order is fixed at build time and never
// changes; only SIB control bits change which parts are on the scan path.
//
// Topologies arrive already structured. Parsing description files is the job
// of external tooling (see pkg/icl), never of this package.
type Topology struct {
	Name  string
	Nodes []Node
}

// SIB constructs a SIB node owning the given downstream segment.
func SIB(name string, segment ...Node) Node {
	return Node{Name: name, Kind: KindSIB, Segment: segment}
}

// Instrument constructs a leaf node of the given width.
func Instrument(name string, width int) Node {
	return Node{Name: name, Kind: KindInstrument, Width: width}
}

func validateNodes(nodes []Node, seen map[string]struct{}) error {
	for _, n := range nodes {
		if n.Name == "" {
			return fmt.Errorf("sibnet: node with empty name")
		}
		if _, dup := seen[n.Name]; dup {
			return fmt.Errorf("sibnet: duplicate node name %q", n.Name)
		}
		seen[n.Name] = struct{}{}

		switch n.Kind {
		case KindSIB:
			if n.Width != 0 {
				return fmt.Errorf("sibnet: SIB %q must not declare a width", n.Name)
			}
			if err := validateNodes(n.Segment, seen); err != nil {
				return err
			}
		case KindInstrument:
			if n.Width <= 0 {
				return fmt.Errorf("sibnet: instrument %q needs a positive width, got %d", n.Name, n.Width)
			}
			if len(n.Segment) != 0 {
				return fmt.Errorf("sibnet: instrument %q cannot own a segment", n.Name)
			}
		default:
			return fmt.Errorf("sibnet: node %q has unknown kind %d", n.Name, n.Kind)
		}
	}
	return nil
}

// Validate checks structural soundness: unique names, positive instrument
// widths, segments only under SIBs.
func (t Topology) Validate() error {
	return validateNodes(t.Nodes, make(map[string]struct{}))
}
