package icl

import "github.com/alecthomas/participle/v2/lexer"

// Lexer defines the token structure for the ICL-lite network description
// format: C-style line comments, keywords, identifiers and integers.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Whitespace", Pattern: `[\s\t\n\r]+`},

	{Name: "KwNetwork", Pattern: `\bnetwork\b`},
	{Name: "KwSib", Pattern: `\bsib\b`},
	{Name: "KwInstrument", Pattern: `\binstrument\b`},
	{Name: "KwWidth", Pattern: `\bwidth\b`},

	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},

	{Name: "LBrace", Pattern: `\{`},
	{Name: "RBrace", Pattern: `\}`},
	{Name: "Semicolon", Pattern: `;`},
})
