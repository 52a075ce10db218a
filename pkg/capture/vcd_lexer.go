package capture

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// VCDLexer tokenizes IEEE 1364 value change dump files.
//
// Identifier codes are arbitrary printable ASCII, so a scalar change such as
// "1!" or "0#" is a single token and header words may lex as any of the value
// token kinds. The grammar accepts every kind where free text is allowed.
var VCDLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},

	// $enddefinitions must win over $end, which must win over other keywords.
	{Name: "EndDefs", Pattern: `\$enddefinitions`},
	{Name: "End", Pattern: `\$end\b`},
	{Name: "Dump", Pattern: `\$dump(vars|all|on|off)\b`},
	{Name: "Keyword", Pattern: `\$[a-zA-Z_]+`},

	// Simulation time, e.g. #1250
	{Name: "Time", Pattern: `#[0-9]+`},

	// Vector and real changes: value token followed by a separate identifier
	{Name: "Vector", Pattern: `[bBrR][!-~]+`},

	// Scalar change: value character immediately followed by the identifier
	{Name: "Scalar", Pattern: `[01xXzZ][!-~]+`},

	{Name: "Word", Pattern: `[!-~]+`},
})
