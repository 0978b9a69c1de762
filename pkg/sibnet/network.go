package sibnet

import (
	"errors"
	"fmt"

	"github.com/OpenTraceLab/OpenTraceDFT/pkg/scan"
)

// ErrStaleTopology reports a network access sized from a topology view that
// no longer matches the committed SIB states. The caller must re-derive the
// effective length and retry.
var ErrStaleTopology = errors.New("sibnet: stale topology view")

// nodeID indexes the arena.
type nodeID int

// node is an arena entry. SIBs reference their downstream segment by index,
// so opening or closing a segment is a flag flip, never a structural change.
type node struct {
	name     string
	kind     Kind
	open     bool     // committed SIB control bit
	children []nodeID // SIB downstream segment, structural order
	inst     scan.Instrument
}

// pos is one shift position of the active scan path.
type pos struct {
	id  nodeID
	bit int // bit index within an instrument; always 0 for SIBs
}

// Network is the ordered composition of SIBs and instruments reachable from
// the entry point. It implements the generic scan register protocol; its
// length is computed from the committed SIB states, never stored.
type Network struct {
	name   string
	nodes  []node
	roots  []nodeID
	byName map[string]nodeID

	// Active-scan state, rebuilt on every capture.
	path  []pos
	shift []bool
}

// New builds a network from a validated topology. Every instrument starts as
// a scan.Latch of its declared width; Bind replaces leaves with live
// instruments. All SIBs start closed.
func New(t Topology) (*Network, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	n := &Network{
		name:   t.Name,
		byName: make(map[string]nodeID),
	}
	n.roots = n.build(t.Nodes)
	return n, nil
}

func (n *Network) build(nodes []Node) []nodeID {
	ids := make([]nodeID, 0, len(nodes))
	for _, decl := range nodes {
		id := nodeID(len(n.nodes))
		n.nodes = append(n.nodes, node{name: decl.Name, kind: decl.Kind})
		n.byName[decl.Name] = id
		ids = append(ids, id)

		switch decl.Kind {
		case KindSIB:
			n.nodes[id].children = n.build(decl.Segment)
		case KindInstrument:
			n.nodes[id].inst = scan.NewLatch(decl.Width)
		}
	}
	return ids
}

// Bind attaches a live instrument to the named leaf, replacing the default
// latch. The widths must agree.
func (n *Network) Bind(name string, inst scan.Instrument) error {
	id, ok := n.byName[name]
	if !ok {
		return fmt.Errorf("sibnet: unknown node %q", name)
	}
	nd := &n.nodes[id]
	if nd.kind != KindInstrument {
		return fmt.Errorf("sibnet: node %q is a SIB, not an instrument", name)
	}
	if inst.Width() != nd.inst.Width() {
		return fmt.Errorf("sibnet: instrument %q width %d does not match declared width %d",
			name, inst.Width(), nd.inst.Width())
	}
	nd.inst = inst
	return nil
}

// SIBStates reports the committed control bit of every SIB.
func (n *Network) SIBStates() map[string]bool {
	states := make(map[string]bool)
	for _, nd := range n.nodes {
		if nd.kind == KindSIB {
			states[nd.name] = nd.open
		}
	}
	return states
}

// EffectiveLength computes the current scan-path length from the committed
// SIB states: every SIB contributes its control bit, an open SIB adds its
// downstream segment. Callers must re-read it after any update that may have
// flipped a control bit.
func (n *Network) EffectiveLength() int {
	return n.segmentLength(n.roots)
}

func (n *Network) segmentLength(ids []nodeID) int {
	total := 0
	for _, id := range ids {
		nd := &n.nodes[id]
		switch nd.kind {
		case KindSIB:
			total++
			if nd.open {
				total += n.segmentLength(nd.children)
			}
		case KindInstrument:
			total += nd.inst.Width()
		}
	}
	return total
}

// Length implements the generic register contract; see EffectiveLength.
func (n *Network) Length() int { return n.EffectiveLength() }

// ControlBitPositions reports the shift-path index of every reachable SIB's
// control bit under the committed state. SIBs inside closed segments are
// absent because they are not on the path.
func (n *Network) ControlBitPositions() map[string]int {
	positions := make(map[string]int)
	idx := 0
	var walk func(ids []nodeID)
	walk = func(ids []nodeID) {
		for _, id := range ids {
			nd := &n.nodes[id]
			switch nd.kind {
			case KindSIB:
				positions[nd.name] = idx
				idx++
				if nd.open {
					walk(nd.children)
				}
			case KindInstrument:
				idx += nd.inst.Width()
			}
		}
	}
	walk(n.roots)
	return positions
}

// Capture flattens the currently-open path in structural order and loads the
// live control bits and reachable instrument values. A closed SIB's segment
// is skipped entirely: its stale contents are neither shifted nor observable
// this scan.
func (n *Network) Capture() {
	n.path = n.path[:0]
	n.flatten(n.roots)

	n.shift = n.shift[:0]
	for _, p := range n.path {
		nd := &n.nodes[p.id]
		if nd.kind == KindSIB {
			n.shift = append(n.shift, nd.open)
		} else {
			n.shift = append(n.shift, nd.inst.CaptureBits()[p.bit])
		}
	}
}

func (n *Network) flatten(ids []nodeID) {
	for _, id := range ids {
		nd := &n.nodes[id]
		switch nd.kind {
		case KindSIB:
			n.path = append(n.path, pos{id: id})
			if nd.open {
				n.flatten(nd.children)
			}
		case KindInstrument:
			for bit := 0; bit < nd.inst.Width(); bit++ {
				n.path = append(n.path, pos{id: id, bit: bit})
			}
		}
	}
}

// Shift clocks one bit through the active path.
func (n *Network) Shift(in bool) bool {
	if len(n.shift) == 0 {
		// Shifting before any capture observes nothing defined; keep the
		// pass-through deterministic.
		return in
	}
	out := n.shift[0]
	copy(n.shift, n.shift[1:])
	n.shift[len(n.shift)-1] = in
	return out
}

// Update commits the shifted contents along the path built at capture: each
// SIB's new control bit and each reachable instrument's staged write. A
// flipped control bit takes effect starting the next scan, never
// retroactively within this one.
func (n *Network) Update() {
	if len(n.path) == 0 {
		return
	}

	staged := make(map[nodeID][]bool)
	for i, p := range n.path {
		nd := &n.nodes[p.id]
		if nd.kind == KindSIB {
			nd.open = n.shift[i]
			continue
		}
		bits, ok := staged[p.id]
		if !ok {
			bits = make([]bool, nd.inst.Width())
			staged[p.id] = bits
		}
		bits[p.bit] = n.shift[i]
	}
	// Instrument writes commit whole words, in structural order.
	for _, p := range n.path {
		if bits, ok := staged[p.id]; ok && p.bit == 0 {
			n.nodes[p.id].inst.ApplyUpdate(bits)
		}
	}

	n.path = n.path[:0]
	n.shift = n.shift[:0]
}

// Abort discards any in-progress scan without committing. Used when an
// asynchronous reset interrupts a shift.
func (n *Network) Abort() {
	n.path = n.path[:0]
	n.shift = n.shift[:0]
}
