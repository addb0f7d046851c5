package csv

import (
	"bufio"
	"fmt"
	"io"

	shapetokenizer "github.com/shapestone/shape-core/pkg/tokenizer"

	"github.com/lyrasis/csv-data-tools/internal/reconstruct"
	"github.com/lyrasis/csv-data-tools/internal/tokenizer"
)

// Document is a repaired export: rows in document order, header first.
type Document struct {
	Delimiter string
	Rows      []Row
	// Stats counts the line-break decisions per rule name.
	Stats map[string]int
	// NullFields counts rows whose empty value was made an explicit null.
	NullFields int
	// SeparatorDropped reports whether a dashed underline row was removed.
	SeparatorDropped bool
}

// Header returns the first row, or a zero Row for an empty document.
func (d *Document) Header() Row {
	if len(d.Rows) == 0 {
		return Row{}
	}
	return d.Rows[0]
}

// Data returns the rows after the header.
func (d *Document) Data() []Row {
	if len(d.Rows) < 2 {
		return nil
	}
	return d.Rows[1:]
}

// WriteTo writes one row per line, fields joined by the delimiter and each
// line ending in LF.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, row := range d.Rows {
		c, err := bw.WriteString(row.Raw)
		n += int64(c)
		if err != nil {
			return n, err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return n, err
		}
		n++
	}
	return n, bw.Flush()
}

// Reconstruct repairs a broken export held in memory.
//
// Example:
//
//	opts := csv.DefaultOptions()
//	opts.Delimiter = "|"
//	doc, err := csv.Reconstruct("id|note\r\n1|first\r\n\tsecond\r\n", opts)
//	// doc.Rows[1].Fields == []string{"1", "first%TABBREAK%second"}
func Reconstruct(input string, opts Options) (*Document, error) {
	r, err := newReconstructor(opts)
	if err != nil {
		return nil, err
	}
	return buildDocument(r.ReconstructString(input), opts), nil
}

// ReconstructReader is Reconstruct for an io.Reader. The input is read
// through a buffered stream.
func ReconstructReader(reader io.Reader, opts Options) (*Document, error) {
	r, err := newReconstructor(opts)
	if err != nil {
		return nil, err
	}
	stream := shapetokenizer.NewStreamFromReader(reader)
	markers := tokenizer.TokenizeStream(stream, tokenizerOptions(opts))
	return buildDocument(r.Reconstruct(markers), opts), nil
}

func newReconstructor(opts Options) (*reconstruct.Reconstructor, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	r, err := reconstruct.NewWithOptions(reconstruct.Options{
		Delimiter:        opts.Delimiter,
		LeadingField:     opts.LeadingField,
		NullFields:       true,
		DropSeparatorRow: true,
	})
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	return r, nil
}

func buildDocument(res reconstruct.Result, opts Options) *Document {
	sp := NewSplitter(opts)
	rows := make([]Row, len(res.Rows))
	for i, line := range res.Rows {
		rows[i] = sp.splitLine(line, i+1)
	}
	return &Document{
		Delimiter:        opts.Delimiter,
		Rows:             rows,
		Stats:            res.Stats,
		NullFields:       res.NullFields,
		SeparatorDropped: res.SeparatorDropped,
	}
}
