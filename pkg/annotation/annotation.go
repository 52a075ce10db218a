// Package annotation defines the decoder output: time-ranged, categorized
// text records, the sinks that receive them and their grouping into display
// rows.
package annotation

import (
	"fmt"
	"strings"
)

// Category identifies the kind of an annotation. IDs are stable and shared by
// every decoder variant.
type Category uint8

const (
	CategorySync Category = iota
	CategoryEnterICSP
	CategoryMTAPInstruction
	CategoryETAPInstruction
	CategoryMTAPCommand
	CategoryData
	CategoryFastData
	CategoryUnknown
	CategoryJTAGState
	CategoryTMS
	CategoryTDI
	CategoryTDO
	CategoryTAPStateMTAP
	CategoryTAPStateETAP
	CategoryStateTLR
	CategoryStateRTI
	CategoryStateDR
	CategoryStateIR
	CategoryTAPReset
	CategoryIDCode
	CategoryStatus

	NumCategories = 21
)

var categoryNames = [NumCategories]string{
	CategorySync:            "sync",
	CategoryEnterICSP:       "enter-icsp",
	CategoryMTAPInstruction: "mtap-instruction",
	CategoryETAPInstruction: "etap-instruction",
	CategoryMTAPCommand:     "mtap-dr-command",
	CategoryData:            "data",
	CategoryFastData:        "fast-data",
	CategoryUnknown:         "unknown",
	CategoryJTAGState:       "jtag-state",
	CategoryTMS:             "tms",
	CategoryTDI:             "tdi",
	CategoryTDO:             "tdo",
	CategoryTAPStateMTAP:    "tap-state-mtap",
	CategoryTAPStateETAP:    "tap-state-etap",
	CategoryStateTLR:        "js-tlr",
	CategoryStateRTI:        "js-rti",
	CategoryStateDR:         "js-dr",
	CategoryStateIR:         "js-ir",
	CategoryTAPReset:        "tap-reset",
	CategoryIDCode:          "idcode",
	CategoryStatus:          "status",
}

func (c Category) String() string {
	if c < NumCategories {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

// Row is a display lane that groups related categories.
type Row uint8

const (
	RowJTAGState Row = iota
	RowTAP
	RowCommand
	RowData
	RowTMS
	RowTDI
	RowTDO
	RowUnknown

	NumRows = 8
)

var rowNames = [NumRows]string{
	RowJTAGState: "JS",
	RowTAP:       "TAP",
	RowCommand:   "Command",
	RowData:      "Data",
	RowTMS:       "TMS",
	RowTDI:       "TDI",
	RowTDO:       "TDO",
	RowUnknown:   "WTF",
}

func (r Row) String() string {
	if r < NumRows {
		return rowNames[r]
	}
	return fmt.Sprintf("Row(%d)", uint8(r))
}

// RowOf returns the display row a category is drawn in.
func RowOf(c Category) Row {
	switch c {
	case CategorySync, CategoryEnterICSP, CategoryJTAGState, CategoryTAPReset,
		CategoryStateTLR, CategoryStateRTI, CategoryStateDR, CategoryStateIR:
		return RowJTAGState
	case CategoryTAPStateMTAP, CategoryTAPStateETAP:
		return RowTAP
	case CategoryMTAPInstruction, CategoryETAPInstruction, CategoryMTAPCommand,
		CategoryIDCode, CategoryStatus:
		return RowCommand
	case CategoryData, CategoryFastData:
		return RowData
	case CategoryTMS:
		return RowTMS
	case CategoryTDI:
		return RowTDI
	case CategoryTDO:
		return RowTDO
	default:
		return RowUnknown
	}
}

// ParseRows parses a comma separated list of row names ("JS,Command,Data").
func ParseRows(list string) ([]Row, error) {
	var rows []Row
	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		found := false
		for i, name := range rowNames {
			if strings.EqualFold(name, field) {
				rows = append(rows, Row(i))
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("annotation: unknown row %q", field)
		}
	}
	return rows, nil
}

// Annotation is one decoded event spanning samples [Start, End].
type Annotation struct {
	Start    int64
	End      int64
	Category Category
	Text     string
}

func (a Annotation) String() string {
	return fmt.Sprintf("%d-%d %s %q", a.Start, a.End, a.Category, a.Text)
}

// Sink receives annotations in emission order.
type Sink interface {
	Emit(a Annotation) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(a Annotation) error

// Emit calls f(a).
func (f SinkFunc) Emit(a Annotation) error { return f(a) }

// Collector keeps every annotation in memory.
type Collector struct {
	Annotations []Annotation
}

// Emit implements Sink.
func (c *Collector) Emit(a Annotation) error {
	c.Annotations = append(c.Annotations, a)
	return nil
}

// Category returns the collected annotations of the given categories.
func (c *Collector) Category(cats ...Category) []Annotation {
	var out []Annotation
	for _, a := range c.Annotations {
		for _, cat := range cats {
			if a.Category == cat {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// Texts returns the text of every collected annotation of the given
// categories.
func (c *Collector) Texts(cats ...Category) []string {
	var out []string
	for _, a := range c.Category(cats...) {
		out = append(out, a.Text)
	}
	return out
}

// FilterRows forwards only annotations drawn in one of rows. With no rows
// every annotation passes.
func FilterRows(next Sink, rows ...Row) Sink {
	if len(rows) == 0 {
		return next
	}
	var keep [NumRows]bool
	for _, r := range rows {
		if r < NumRows {
			keep[r] = true
		}
	}
	return SinkFunc(func(a Annotation) error {
		if !keep[RowOf(a.Category)] {
			return nil
		}
		return next.Emit(a)
	})
}
