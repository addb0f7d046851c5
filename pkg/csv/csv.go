// Package csv repairs and checks delimited exports whose line breaks cannot
// be trusted.
//
// Legacy database exports often hold literal line breaks inside field
// values, pad fields with stray delimiters and spaces, and underline the
// header with dashes. Reconstruct turns such a file back into rows by
// deciding, for each CRLF, whether it ends a row or sits inside a value.
// The Validator then checks that every row has as many fields as the header
// and groups the ones that do not by field count.
//
// Files that are already well formed are read with Scanner, which honors
// quoting, and checked the same way.
//
// # Thread Safety
//
// Reconstruct, ReadAll, ReadBytes and Check keep no shared state and may be
// called from many goroutines at once. A Validator or Scanner belongs to one
// goroutine.
//
// # Example
//
//	opts := csv.DefaultOptions()
//	opts.Delimiter = "|"
//	doc, err := csv.Reconstruct(text, opts)
//	if err != nil {
//	    // invalid options
//	}
//	report, err := csv.CheckDocument("objects.psv", doc, opts)
//	if errors.Is(err, csv.ErrEmptyHeader) {
//	    // nothing to check
//	}
//	fmt.Println(report.OK, report.Correct)
package csv

import (
	"io"
)

// CheckReader reads already-delimited text and validates it.
func CheckReader(filename string, reader io.Reader, opts Options) (FileReport, error) {
	rows, err := ReadAll(reader, opts)
	if err != nil {
		return FileReport{Filename: filename, Err: err}, err
	}
	return Check(filename, rows, opts)
}

// CheckBytes is CheckReader for data in memory.
func CheckBytes(filename string, data []byte, opts Options) (FileReport, error) {
	rows, err := ReadBytes(data, opts)
	if err != nil {
		return FileReport{Filename: filename, Err: err}, err
	}
	return Check(filename, rows, opts)
}
