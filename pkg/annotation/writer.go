package annotation

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
)

var rowColors = [NumRows]*color.Color{
	RowJTAGState: color.New(color.FgCyan),
	RowTAP:       color.New(color.FgMagenta),
	RowCommand:   color.New(color.FgYellow, color.Bold),
	RowData:      color.New(color.FgGreen),
	RowTMS:       color.New(color.FgBlue),
	RowTDI:       color.New(color.FgHiBlue),
	RowTDO:       color.New(color.FgHiCyan),
	RowUnknown:   color.New(color.FgRed, color.Bold),
}

// TextWriter prints one annotation per line as
//
//	start-end  ROW      text
//
// with the row name colored when color output is enabled.
type TextWriter struct {
	w       io.Writer
	noColor bool
}

// NewTextWriter returns a writer to w. Color follows fatih/color's terminal
// detection unless noColor forces it off.
func NewTextWriter(w io.Writer, noColor bool) *TextWriter {
	return &TextWriter{w: w, noColor: noColor}
}

// Emit implements Sink.
func (t *TextWriter) Emit(a Annotation) error {
	row := RowOf(a.Category)
	label := fmt.Sprintf("%-7s", row)
	if !t.noColor && !color.NoColor {
		label = rowColors[row].Sprint(label)
	}
	_, err := fmt.Fprintf(t.w, "%10d-%-10d %s %s\n", a.Start, a.End, label, a.Text)
	return err
}

// jsonRecord is the JSON-lines form of an Annotation.
type jsonRecord struct {
	Start    int64  `json:"start"`
	End      int64  `json:"end"`
	Category string `json:"category"`
	Row      string `json:"row"`
	Text     string `json:"text"`
}

// JSONWriter writes one JSON object per annotation per line.
type JSONWriter struct {
	enc *json.Encoder
}

// NewJSONWriter returns a JSON-lines writer to w.
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{enc: json.NewEncoder(w)}
}

// Emit implements Sink.
func (j *JSONWriter) Emit(a Annotation) error {
	return j.enc.Encode(jsonRecord{
		Start:    a.Start,
		End:      a.End,
		Category: a.Category.String(),
		Row:      RowOf(a.Category).String(),
		Text:     a.Text,
	})
}
