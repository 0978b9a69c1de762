// Package icl parses the ICL-lite network description format used by
// external tooling to describe 1687 instrument network topologies. The
// protocol core never reads files; this package turns text into the
// structured sibnet.Topology the core consumes.
package icl

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2"

	"github.com/OpenTraceLab/OpenTraceDFT/pkg/sibnet"
)

// Parser parses ICL-lite network descriptions.
type Parser struct {
	parser *participle.Parser[File]
}

// NewParser builds a parser instance. The grammar is fixed, so the only
// error source is a programming mistake in the AST tags.
func NewParser() (*Parser, error) {
	parser, err := participle.Build[File](
		participle.Lexer(Lexer),
		participle.Elide("Comment", "Whitespace"),
		participle.Unquote("String"),
	)
	if err != nil {
		return nil, fmt.Errorf("icl: building parser: %w", err)
	}
	return &Parser{parser: parser}, nil
}

// Parse reads a description from a reader.
func (p *Parser) Parse(r io.Reader) (*File, error) {
	file, err := p.parser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("icl: parse error: %w", err)
	}
	return file, nil
}

// ParseString parses a description held in a string.
func (p *Parser) ParseString(input string) (*File, error) {
	file, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("icl: parse error: %w", err)
	}
	return file, nil
}

// ParseFile parses a description file from disk.
func (p *Parser) ParseFile(filename string) (*File, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("icl: opening file: %w", err)
	}
	defer f.Close()
	return p.Parse(f)
}

// Topology converts the parsed file into the structured form the network
// builder consumes, validating it on the way.
func (f *File) Topology() (sibnet.Topology, error) {
	topo := sibnet.Topology{
		Name:  f.Name,
		Nodes: convertNodes(f.Nodes),
	}
	if err := topo.Validate(); err != nil {
		return sibnet.Topology{}, err
	}
	return topo, nil
}

func convertNodes(nodes []*Node) []sibnet.Node {
	out := make([]sibnet.Node, 0, len(nodes))
	for _, n := range nodes {
		switch {
		case n.SIB != nil:
			out = append(out, sibnet.SIB(n.SIB.Name, convertNodes(n.SIB.Nodes)...))
		case n.Instrument != nil:
			out = append(out, sibnet.Instrument(n.Instrument.Name, n.Instrument.Width))
		}
	}
	return out
}
