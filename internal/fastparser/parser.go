// Package fastparser parses already-delimited text straight from bytes to
// records, without tokens or an AST.
//
// It is the reader for files that are expected to be well formed: the
// structure checker runs it over every file of a batch, so it keeps to one
// pass, pooled scratch buffers and no per-field allocations beyond the
// returned strings.
package fastparser

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	// ErrBareQuote is a quote inside an unquoted field.
	ErrBareQuote = errors.New(`bare " in non-quoted field`)
	// ErrQuote is a stray quote inside a quoted field.
	ErrQuote = errors.New(`extraneous or missing " in quoted field`)
	// ErrUnclosedQuote is a quoted field still open at end of input.
	ErrUnclosedQuote = errors.New("unclosed quoted field")
)

// ParseError reports where parsing failed.
type ParseError struct {
	// StartLine is the line the record started on (1-indexed).
	StartLine int
	// Line is the line where the error occurred (1-indexed).
	Line int
	// Column is the byte column where the error occurred (1-indexed).
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	if e.StartLine == e.Line {
		return fmt.Sprintf("parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("parse error on line %d (record started line %d), column %d: %v",
		e.Line, e.StartLine, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Options configures the parser.
type Options struct {
	// Delimiter separates fields. Default: ","
	Delimiter string
	// LazyQuotes keeps stray quotes as text instead of failing.
	LazyQuotes bool
	// SkipEmptyLines drops blank lines. When false a blank line is a record
	// with no fields.
	SkipEmptyLines bool
}

// DefaultOptions returns strict comma-delimited parsing that keeps blank
// lines as empty records.
func DefaultOptions() Options {
	return Options{Delimiter: ","}
}

// Record is one parsed row.
type Record struct {
	// Line is the 1-indexed line the record starts on.
	Line int
	// Fields holds the unquoted field values.
	Fields []string
	// Raw is the record's source text without its line terminator.
	Raw string
}

// ParseRecords parses data into records. Returned strings never alias data,
// so data may be unmapped once this returns.
func ParseRecords(data []byte, opts Options) ([]Record, error) {
	if opts.Delimiter == "" {
		opts.Delimiter = DefaultOptions().Delimiter
	}
	p := &parser{
		data:   data,
		length: len(data),
		delim:  []byte(opts.Delimiter),
		opts:   opts,
		line:   1,
	}
	return p.parse()
}

// parser holds the scan position over one input.
type parser struct {
	data      []byte
	pos       int
	length    int
	delim     []byte
	opts      Options
	line      int
	lineStart int
}

func (p *parser) parse() ([]Record, error) {
	estimated := p.length / 64
	if estimated < 16 {
		estimated = 16
	}
	records := make([]Record, 0, estimated)

	for p.pos < p.length {
		if p.isNewline() {
			if !p.opts.SkipEmptyLines {
				records = append(records, Record{Line: p.line, Fields: []string{}})
			}
			p.skipNewline()
			continue
		}

		start := p.pos
		startLine := p.line
		fields := getFieldSlice()

		for {
			field, err := p.parseField(startLine)
			if err != nil {
				putFieldSlice(fields)
				return nil, err
			}
			fields = append(fields, field)

			if p.pos >= p.length {
				break
			}
			if p.atDelimiter() {
				p.pos += len(p.delim)
				if p.pos >= p.length {
					// A trailing delimiter ends with an empty field.
					fields = append(fields, "")
					break
				}
				continue
			}
			// parseField stops only at a delimiter, a newline or the end.
			break
		}

		end := p.pos
		rec := Record{
			Line:   startLine,
			Fields: append(make([]string, 0, len(fields)), fields...),
			Raw:    string(p.data[start:end]),
		}
		putFieldSlice(fields)
		records = append(records, rec)

		if p.isNewline() {
			p.skipNewline()
		}
	}

	return records, nil
}

func (p *parser) parseField(startLine int) (string, error) {
	if p.pos >= p.length {
		return "", nil
	}
	if p.data[p.pos] == '"' {
		return p.parseQuotedField(startLine)
	}
	return p.parseUnquotedField(startLine)
}

// parseQuotedField reads a quoted field. A doubled quote is a literal quote.
func (p *parser) parseQuotedField(startLine int) (string, error) {
	quoteCol := p.column()
	p.pos++ // opening quote

	buf := getBuffer()
	defer func() { putBuffer(buf) }()

	for p.pos < p.length {
		c := p.data[p.pos]
		switch {
		case c == '"':
			next := p.pos + 1
			if next < p.length && p.data[next] == '"' {
				buf = append(buf, '"')
				p.pos += 2
				continue
			}
			if next >= p.length || p.delimiterAt(next) || p.data[next] == '\r' || p.data[next] == '\n' {
				p.pos = next
				return string(buf), nil
			}
			if !p.opts.LazyQuotes {
				return "", p.errorf(startLine, ErrQuote)
			}
			buf = append(buf, '"')
			p.pos++
		case c == '\n' || c == '\r':
			buf = append(buf, c)
			p.pos++
			if c == '\r' && p.pos < p.length && p.data[p.pos] == '\n' {
				buf = append(buf, '\n')
				p.pos++
			}
			p.line++
			p.lineStart = p.pos
		default:
			buf = append(buf, c)
			p.pos++
		}
	}

	if p.opts.LazyQuotes {
		return string(buf), nil
	}
	return "", &ParseError{StartLine: startLine, Line: startLine, Column: quoteCol, Err: ErrUnclosedQuote}
}

func (p *parser) parseUnquotedField(startLine int) (string, error) {
	start := p.pos
	for p.pos < p.length {
		c := p.data[p.pos]
		if c == '\r' || c == '\n' || p.atDelimiter() {
			break
		}
		if c == '"' && !p.opts.LazyQuotes {
			return "", p.errorf(startLine, ErrBareQuote)
		}
		p.pos++
	}
	return string(p.data[start:p.pos]), nil
}

func (p *parser) atDelimiter() bool {
	return p.delimiterAt(p.pos)
}

func (p *parser) delimiterAt(i int) bool {
	if len(p.delim) == 1 {
		return i < p.length && p.data[i] == p.delim[0]
	}
	return bytes.HasPrefix(p.data[i:], p.delim)
}

// isNewline checks if current position is at a newline.
func (p *parser) isNewline() bool {
	if p.pos >= p.length {
		return false
	}
	c := p.data[p.pos]
	return c == '\r' || c == '\n'
}

// skipNewline skips a newline sequence (LF, CR or CRLF).
func (p *parser) skipNewline() {
	if p.pos >= p.length {
		return
	}
	if p.data[p.pos] == '\r' {
		p.pos++
		if p.pos < p.length && p.data[p.pos] == '\n' {
			p.pos++
		}
	} else if p.data[p.pos] == '\n' {
		p.pos++
	}
	p.line++
	p.lineStart = p.pos
}

func (p *parser) column() int {
	return p.pos - p.lineStart + 1
}

func (p *parser) errorf(startLine int, err error) *ParseError {
	return &ParseError{StartLine: startLine, Line: p.line, Column: p.column(), Err: err}
}
