package reconstruct

import (
	"regexp"
	"strings"

	"github.com/lyrasis/csv-data-tools/internal/tokenizer"
)

// Line is the run of markers between two CRLF markers.
type Line []tokenizer.Marker

// splitLines cuts a marker stream on every CRLF. A document with n CRLF
// markers always yields n+1 lines, some of which may be empty.
func splitLines(markers []tokenizer.Marker) []Line {
	lines := make([]Line, 0, 16)
	start := 0
	for i, m := range markers {
		if m.Kind == tokenizer.KindCRLF {
			lines = append(lines, Line(markers[start:i]))
			start = i + 1
		}
	}
	return append(lines, Line(markers[start:]))
}

// View renders the line for pattern matching. Text and delimiters appear as
// themselves; every other marker is a NUL byte, which none of the rule
// patterns accept as whitespace, word, digit or dash. The view is never
// written to output.
func (l Line) View() string {
	var b strings.Builder
	for _, m := range l {
		switch m.Kind {
		case tokenizer.KindText, tokenizer.KindDelim, tokenizer.KindDelimRun:
			b.WriteString(m.Text)
		default:
			b.WriteByte(0)
		}
	}
	return b.String()
}

// width is the number of view bytes a marker occupies.
func width(m tokenizer.Marker) int {
	switch m.Kind {
	case tokenizer.KindText, tokenizer.KindDelim, tokenizer.KindDelimRun:
		return len(m.Text)
	default:
		return 1
	}
}

// DropPrefix removes the first n view bytes from the line. A marker cut in
// half keeps its remainder as text.
func (l Line) DropPrefix(n int) Line {
	out := make(Line, 0, len(l))
	for i, m := range l {
		if n <= 0 {
			return append(out, l[i:]...)
		}
		w := width(m)
		if w <= n {
			n -= w
			continue
		}
		out = append(out, tokenizer.Marker{
			Kind:   tokenizer.KindText,
			Text:   m.Text[n:],
			Offset: m.Offset + n,
		})
		n = 0
	}
	return out
}

// Prepend returns a new line with markers placed before l.
func (l Line) Prepend(markers ...tokenizer.Marker) Line {
	out := make(Line, 0, len(markers)+len(l))
	out = append(out, markers...)
	return append(out, l...)
}

// HasDelimiter reports whether the line contains a field delimiter.
func (l Line) HasDelimiter() bool {
	for _, m := range l {
		if m.Kind.IsDelimiter() {
			return true
		}
	}
	return false
}

// Fields cuts the line on delimiter markers.
func (l Line) Fields() []Line {
	fields := make([]Line, 0, 8)
	start := 0
	for i, m := range l {
		if m.Kind.IsDelimiter() {
			fields = append(fields, l[start:i])
			start = i + 1
		}
	}
	return append(fields, l[start:])
}

// IsBlank reports whether the line holds nothing but whitespace text.
func (l Line) IsBlank() bool {
	for _, m := range l {
		if m.Kind != tokenizer.KindText || strings.TrimSpace(m.Text) != "" {
			return false
		}
	}
	return true
}

// rowState summarizes a row as markers are appended to it, so rules can ask
// about the whole row without rescanning it on every CRLF.
type rowState struct {
	leadingField *regexp.Regexp
	leading      strings.Builder

	hasDelim  bool
	leadingOK bool
	// tail is the last view byte that is not a space or tab; zero when there
	// is none or it belongs to a break marker.
	tail byte
}

func newRowState(leadingField *regexp.Regexp) *rowState {
	return &rowState{leadingField: leadingField}
}

func (s *rowState) add(markers ...tokenizer.Marker) {
	for _, m := range markers {
		switch m.Kind {
		case tokenizer.KindText, tokenizer.KindDelim, tokenizer.KindDelimRun:
			if t := strings.TrimRight(m.Text, " \t"); t != "" {
				s.tail = t[len(t)-1]
			}
		default:
			s.tail = 0
		}

		if s.hasDelim {
			continue
		}
		switch {
		case m.Kind.IsDelimiter():
			s.hasDelim = true
			s.leadingOK = s.leadingField.MatchString(strings.TrimSpace(s.leading.String()))
			s.leading.Reset()
		case m.Kind == tokenizer.KindText:
			s.leading.WriteString(m.Text)
		default:
			s.leading.WriteByte(0)
		}
	}
}
