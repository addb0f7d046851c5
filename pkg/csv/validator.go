package csv

import (
	"strconv"
	"strings"
)

// Example is one sample row kept by an anomaly bucket.
type Example struct {
	Index int
	Raw   string
}

// AnomalyBucket records one wrong field count: how often it occurred and the
// first few rows that had it.
type AnomalyBucket struct {
	FieldCount  int
	Occurrences int
	Examples    []Example
}

// ExampleIndexes returns the example row indexes joined with ", ".
func (b AnomalyBucket) ExampleIndexes() string {
	parts := make([]string, len(b.Examples))
	for i, e := range b.Examples {
		parts[i] = strconv.Itoa(e.Index)
	}
	return strings.Join(parts, ", ")
}

// FileReport is the structural verdict for one file.
type FileReport struct {
	Filename string
	// OK is true iff no row deviated from the header's field count.
	OK       bool
	Expected int
	Correct  int
	// Buckets lists the deviating field counts in first-seen order.
	Buckets []AnomalyBucket
	// Err is set when the file could not be checked at all.
	Err error
}

// Total is the number of data rows the report covers.
func (r FileReport) Total() int {
	n := r.Correct
	for _, b := range r.Buckets {
		n += b.Occurrences
	}
	return n
}

// Validator compares every data row's field count with the header's.
// It is not safe for concurrent use; run one per file.
type Validator struct {
	expected int
	limit    int
	correct  int
	buckets  []*AnomalyBucket
	byCount  map[int]*AnomalyBucket
}

// NewValidator creates a validator for a header row. A blank header fails
// with ErrEmptyHeader.
func NewValidator(header Row, opts Options) (*Validator, error) {
	if header.IsBlank() {
		return nil, ErrEmptyHeader
	}
	limit := opts.ExampleLimit
	if limit < 0 {
		limit = 0
	}
	return &Validator{
		expected: header.Len(),
		limit:    limit,
		byCount:  make(map[int]*AnomalyBucket),
	}, nil
}

// Expected returns the header's field count.
func (v *Validator) Expected() int {
	return v.expected
}

// Record classifies one data row. index is the row's position as reported
// back in examples.
func (v *Validator) Record(row Row, index int) {
	n := row.Len()
	if n == v.expected {
		v.correct++
		return
	}
	b, ok := v.byCount[n]
	if !ok {
		b = &AnomalyBucket{FieldCount: n}
		v.byCount[n] = b
		v.buckets = append(v.buckets, b)
	}
	b.Occurrences++
	if len(b.Examples) < v.limit {
		b.Examples = append(b.Examples, Example{Index: index, Raw: row.Raw})
	}
}

// OK reports whether every recorded row had the expected field count.
func (v *Validator) OK() bool {
	return len(v.buckets) == 0
}

// Total returns the number of rows recorded.
func (v *Validator) Total() int {
	n := v.correct
	for _, b := range v.buckets {
		n += b.Occurrences
	}
	return n
}

// Report returns the verdict for filename. The buckets are copies; further
// Record calls do not change a returned report.
func (v *Validator) Report(filename string) FileReport {
	buckets := make([]AnomalyBucket, len(v.buckets))
	for i, b := range v.buckets {
		buckets[i] = AnomalyBucket{
			FieldCount:  b.FieldCount,
			Occurrences: b.Occurrences,
			Examples:    append([]Example(nil), b.Examples...),
		}
	}
	return FileReport{
		Filename: filename,
		OK:       v.OK(),
		Expected: v.expected,
		Correct:  v.correct,
		Buckets:  buckets,
	}
}

// Check validates rows whose first element is the header. Each data row is
// recorded under its own Index.
func Check(filename string, rows []Row, opts Options) (FileReport, error) {
	if len(rows) == 0 {
		return FileReport{Filename: filename, Err: ErrEmptyHeader}, ErrEmptyHeader
	}
	v, err := NewValidator(rows[0], opts)
	if err != nil {
		return FileReport{Filename: filename, Err: err}, err
	}
	for _, row := range rows[1:] {
		v.Record(row, row.Index)
	}
	return v.Report(filename), nil
}

// CheckDocument validates a reconstructed document.
func CheckDocument(filename string, doc *Document, opts Options) (FileReport, error) {
	return Check(filename, doc.Rows, opts)
}
