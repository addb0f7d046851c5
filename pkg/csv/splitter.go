package csv

import (
	"strings"

	"github.com/lyrasis/csv-data-tools/internal/reconstruct"
	"github.com/lyrasis/csv-data-tools/internal/tokenizer"
)

// Row is one logical row of a document.
type Row struct {
	// Index is the 1-based position of the row in its document. The header
	// is row 1.
	Index int
	// Fields holds the trimmed field values.
	Fields []string
	// Raw is the row as written out: the fields re-joined with the delimiter.
	Raw string
}

// Len returns the number of fields.
func (r Row) Len() int {
	return len(r.Fields)
}

// IsBlank reports whether the row has no fields or a single empty one.
func (r Row) IsBlank() bool {
	return len(r.Fields) == 0 || (len(r.Fields) == 1 && r.Fields[0] == "")
}

// Splitter cuts rows into trimmed fields. No quoting is interpreted.
type Splitter struct {
	delim     string
	markers   MarkerStyle
	transform Transform
}

// NewSplitter creates a splitter from the delimiter, marker style and
// transform in opts.
func NewSplitter(opts Options) *Splitter {
	delim := opts.Delimiter
	if delim == "" {
		delim = DefaultOptions().Delimiter
	}
	return &Splitter{delim: delim, markers: opts.Markers, transform: opts.Transform}
}

// Split splits a raw row string on the delimiter. Trailing empty fields are
// kept: "a|b|" has three fields.
func (s *Splitter) Split(raw string, index int) Row {
	parts := strings.Split(raw, s.delim)
	for i, p := range parts {
		parts[i] = s.clean(p)
	}
	return s.row(parts, index)
}

// splitLine splits a reconstructed row on its delimiter markers and renders
// each field's markers in the splitter's style.
func (s *Splitter) splitLine(line reconstruct.Line, index int) Row {
	fields := line.Fields()
	out := make([]string, len(fields))
	var b strings.Builder
	for i, f := range fields {
		b.Reset()
		for _, m := range f {
			s.markers.writeMarker(&b, m)
		}
		out[i] = s.clean(b.String())
	}
	return s.row(out, index)
}

func (s *Splitter) clean(field string) string {
	field = strings.TrimSpace(field)
	if s.transform != nil {
		field = s.transform(field)
	}
	return field
}

func (s *Splitter) row(fields []string, index int) Row {
	return Row{Index: index, Fields: fields, Raw: strings.Join(fields, s.delim)}
}

// tokenizerOptions returns tokenizer options matching opts.
func tokenizerOptions(opts Options) tokenizer.Options {
	return tokenizer.Options{Delimiter: opts.Delimiter}
}
