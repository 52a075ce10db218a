package capture

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
)

// vcdFile is the whole dump: declarations up to $enddefinitions, then the
// value change section.
type vcdFile struct {
	Decls   []*vcdDecl   `@@* EndDefs End`
	Changes []*vcdChange `@@*`
}

type vcdDecl struct {
	Var       *vcdVar     `  @@`
	Scope     *vcdScope   `| @@`
	Upscope   bool        `| @"$upscope" End`
	Timescale []string    `| "$timescale" @( Word | Scalar | Vector | Time )+ End`
	Other     *vcdSection `| @@`
}

// vcdVar is "$var wire 1 ! MCLR $end". Reference names may carry a bit
// range as a separate token.
type vcdVar struct {
	Type string   `"$var" @( Word | Scalar | Vector | Time )`
	Size string   `@( Word | Scalar | Vector | Time )`
	ID   string   `@( Word | Scalar | Vector | Time )`
	Ref  []string `@( Word | Scalar | Vector | Time )+ End`
}

type vcdScope struct {
	Type string `"$scope" @( Word | Scalar | Vector | Time )`
	Name string `@( Word | Scalar | Vector | Time )? End`
}

// vcdSection is any keyword block whose body is free text ($date,
// $version, $comment, ...).
type vcdSection struct {
	Keyword string   `@Keyword`
	Text    []string `@( Word | Scalar | Vector | Time )* End`
}

type vcdChange struct {
	Time    *string     `  @Time`
	Scalar  *string     `| @Scalar`
	Vector  *vcdVector  `| @@`
	Dump    bool        `| @Dump`
	End     bool        `| @End`
	Comment *vcdSection `| @@`
}

type vcdVector struct {
	Value string `@Vector`
	ID    string `@( Word | Scalar | Vector | Time )`
}

// VCDParser reads value change dumps into a Trace.
type VCDParser struct {
	parser *participle.Parser[vcdFile]
}

// NewVCDParser builds the VCD grammar.
func NewVCDParser() (*VCDParser, error) {
	parser, err := participle.Build[vcdFile](
		participle.Lexer(VCDLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build VCD parser: %w", err)
	}
	return &VCDParser{parser: parser}, nil
}

// Parse reads a VCD stream.
func (p *VCDParser) Parse(r io.Reader) (*Trace, error) {
	ast, err := p.parser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return ast.trace()
}

// ParseString reads a VCD document held in memory.
func (p *VCDParser) ParseString(input string) (*Trace, error) {
	ast, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return ast.trace()
}

// ParseFile reads a VCD file from disk.
func (p *VCDParser) ParseFile(filename string) (*Trace, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return p.Parse(file)
}

// ReadVCD is a convenience wrapper that builds a parser and reads one file.
func ReadVCD(filename string) (*Trace, error) {
	p, err := NewVCDParser()
	if err != nil {
		return nil, err
	}
	return p.ParseFile(filename)
}

// trace flattens the AST into rows. Only 1-bit variables become channels;
// wider vectors are parsed and ignored. x and z read as low.
func (f *vcdFile) trace() (*Trace, error) {
	t := &Trace{}
	ids := make(map[string][]int)

	for _, d := range f.Decls {
		switch {
		case d.Var != nil:
			size, err := strconv.Atoi(d.Var.Size)
			if err != nil {
				return nil, fmt.Errorf("vcd: bad size %q for %s", d.Var.Size, strings.Join(d.Var.Ref, " "))
			}
			if size != 1 {
				continue
			}
			if len(t.Channels) == MaxChannels {
				return nil, fmt.Errorf("vcd: more than %d channels", MaxChannels)
			}
			ids[d.Var.ID] = append(ids[d.Var.ID], len(t.Channels))
			t.Channels = append(t.Channels, d.Var.Ref[0])
		case d.Timescale != nil:
			t.Timescale = strings.Join(d.Timescale, " ")
		}
	}

	var (
		state uint64
		now   int64
		seen  bool
	)
	flush := func() {
		if n := len(t.Rows); n > 0 && t.Rows[n-1].Time == now {
			t.Rows[n-1].Bits = state
			return
		}
		t.Rows = append(t.Rows, Row{Time: now, Bits: state})
	}
	set := func(id string, high bool) {
		for _, idx := range ids[id] {
			if high {
				state |= 1 << uint(idx)
			} else {
				state &^= 1 << uint(idx)
			}
		}
	}

	for _, c := range f.Changes {
		switch {
		case c.Time != nil:
			ts, err := strconv.ParseInt((*c.Time)[1:], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("vcd: bad timestamp %q: %w", *c.Time, err)
			}
			if seen && ts < now {
				return nil, fmt.Errorf("vcd: timestamp %d goes backwards from %d", ts, now)
			}
			if seen && ts != now {
				flush()
			}
			now = ts
			seen = true
		case c.Scalar != nil:
			v := *c.Scalar
			set(v[1:], v[0] == '1')
			seen = true
		case c.Vector != nil:
			v := c.Vector.Value
			if v[0] == 'r' || v[0] == 'R' {
				continue
			}
			// A 1-bit variable dumped in vector form: the last digit is the level.
			set(c.Vector.ID, v[len(v)-1] == '1')
			seen = true
		}
	}
	if seen {
		flush()
	}
	return t, nil
}
