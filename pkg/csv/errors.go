package csv

import (
	"errors"

	"github.com/lyrasis/csv-data-tools/internal/fastparser"
)

// ErrEmptyHeader is returned for a document whose first row has no columns.
// It is a per-file input error, not a structural finding.
var ErrEmptyHeader = errors.New("empty header row")

// ParseError reports where reading already-delimited text failed, with
// 1-indexed line and column.
type ParseError = fastparser.ParseError

// Parsing errors carried by ParseError.Err.
var (
	ErrBareQuote     = fastparser.ErrBareQuote
	ErrQuote         = fastparser.ErrQuote
	ErrUnclosedQuote = fastparser.ErrUnclosedQuote
)
