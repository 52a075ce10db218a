package capture

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// vcdID returns the short identifier code for channel i: "!", "\"", ... then
// two-character codes once the printable range is exhausted.
func vcdID(i int) string {
	const first, span = '!', '~' - '!' + 1
	if i < span {
		return string(rune(first + i))
	}
	return string(rune(first+i/span-1)) + string(rune(first+i%span))
}

// WriteVCD writes t as a value change dump. Only channels that change are
// written after the initial $dumpvars block.
func WriteVCD(w io.Writer, t *Trace) error {
	bw := bufio.NewWriter(w)

	timescale := t.Timescale
	if timescale == "" {
		timescale = "1 ns"
	}
	fmt.Fprintf(bw, "$version pic32dec $end\n")
	fmt.Fprintf(bw, "$timescale %s $end\n", timescale)
	fmt.Fprintf(bw, "$scope module pic32 $end\n")
	for i, name := range t.Channels {
		fmt.Fprintf(bw, "$var wire 1 %s %s $end\n", vcdID(i), name)
	}
	fmt.Fprintf(bw, "$upscope $end\n")
	fmt.Fprintf(bw, "$enddefinitions $end\n")

	var prev uint64
	for n, row := range t.Rows {
		fmt.Fprintf(bw, "#%d\n", row.Time)
		if n == 0 {
			fmt.Fprintf(bw, "$dumpvars\n")
		}
		for i := range t.Channels {
			mask := uint64(1) << uint(i)
			if n > 0 && (row.Bits^prev)&mask == 0 {
				continue
			}
			v := '0'
			if row.Bits&mask != 0 {
				v = '1'
			}
			fmt.Fprintf(bw, "%c%s\n", v, vcdID(i))
		}
		if n == 0 {
			fmt.Fprintf(bw, "$end\n")
		}
		prev = row.Bits
	}
	return bw.Flush()
}

// WriteVCDFile writes t to filename, replacing any existing file.
func WriteVCDFile(filename string, t *Trace) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteVCD(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
