package csv

import (
	"io"

	"github.com/lyrasis/csv-data-tools/internal/fastparser"
)

// Scanner reads already-delimited text one row at a time. Quoted fields are
// honored and stray quotes are kept as text unless Options.StrictQuotes is
// set. Fields are trimmed and passed
// through the Options transform like reconstructed ones.
//
// Example usage:
//
//	file, _ := os.Open("export_l.psv")
//	defer file.Close()
//
//	opts := csv.DefaultOptions()
//	opts.Delimiter = "|"
//	scanner := csv.NewScanner(file, opts)
//	for scanner.Scan() {
//	    row := scanner.Row()
//	    fmt.Println(row.Index, row.Len())
//	}
//	if err := scanner.Err(); err != nil {
//	    // handle error
//	}
type Scanner struct {
	reader io.Reader
	data   []byte
	opts   Options
	rows   []Row
	index  int
	err    error
	parsed bool
}

// NewScanner creates a Scanner reading from reader.
func NewScanner(reader io.Reader, opts Options) *Scanner {
	return &Scanner{reader: reader, opts: opts, index: -1}
}

// NewBytesScanner creates a Scanner over data already in memory, such as a
// memory-mapped file. data is not retained after the first Scan.
func NewBytesScanner(data []byte, opts Options) *Scanner {
	return &Scanner{data: data, opts: opts, index: -1}
}

// Scan advances to the next row. It returns false at the end of input or on
// error; Err tells them apart.
func (s *Scanner) Scan() bool {
	if !s.parsed {
		s.parsed = true
		if err := s.parse(); err != nil {
			s.err = err
			return false
		}
	}
	s.index++
	return s.index < len(s.rows)
}

// Row returns the current row. Index counts rows, not lines, so a quoted
// field spanning lines does not shift later indexes.
func (s *Scanner) Row() Row {
	if s.index < 0 || s.index >= len(s.rows) {
		return Row{}
	}
	return s.rows[s.index]
}

// Err returns the first error encountered, or nil at a clean end of input.
func (s *Scanner) Err() error {
	return s.err
}

// parse reads everything up front; row counts are needed before the first
// row can be reported anyway.
func (s *Scanner) parse() error {
	if err := s.opts.Validate(); err != nil {
		return err
	}
	data := s.data
	if s.reader != nil {
		var err error
		if data, err = io.ReadAll(s.reader); err != nil {
			return err
		}
	}
	s.data = nil

	records, err := fastparser.ParseRecords(data, fastparser.Options{
		Delimiter:  s.opts.Delimiter,
		LazyQuotes: !s.opts.StrictQuotes,
	})
	if err != nil {
		return err
	}

	sp := NewSplitter(s.opts)
	s.rows = make([]Row, len(records))
	for i, rec := range records {
		fields := make([]string, len(rec.Fields))
		for j, f := range rec.Fields {
			fields[j] = sp.clean(f)
		}
		row := sp.row(fields, i+1)
		row.Raw = rec.Raw
		s.rows[i] = row
	}
	return nil
}

// ReadAll reads every row of already-delimited text.
func ReadAll(reader io.Reader, opts Options) ([]Row, error) {
	s := NewScanner(reader, opts)
	for s.Scan() {
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

// ReadBytes is ReadAll for data in memory.
func ReadBytes(data []byte, opts Options) ([]Row, error) {
	s := NewBytesScanner(data, opts)
	for s.Scan() {
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}
