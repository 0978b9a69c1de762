package icl

// File is a complete ICL-lite description: one named network block holding
// an ordered list of SIBs and instruments.
//
//	network "demo" {
//	    sib mbist0 {
//	        instrument dataport width 4;
//	    }
//	    sib mbist1 {
//	        instrument status width 8;
//	    }
//	}
type File struct {
	Name  string  `parser:"KwNetwork @String LBrace"`
	Nodes []*Node `parser:"@@* RBrace"`
}

// Node is either a SIB block or an instrument declaration.
type Node struct {
	SIB        *SIBDecl        `parser:"  @@"`
	Instrument *InstrumentDecl `parser:"| @@"`
}

// SIBDecl declares a segment insertion bit owning the nested segment.
type SIBDecl struct {
	Name  string  `parser:"KwSib @Ident LBrace"`
	Nodes []*Node `parser:"@@* RBrace"`
}

// InstrumentDecl declares a fixed-width leaf instrument.
type InstrumentDecl struct {
	Name  string `parser:"KwInstrument @Ident"`
	Width int    `parser:"KwWidth @Int Semicolon"`
}
