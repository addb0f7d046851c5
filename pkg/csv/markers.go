package csv

import (
	"fmt"
	"strings"

	"github.com/lyrasis/csv-data-tools/internal/tokenizer"
)

// MarkerStyle selects how markers inside a field are written out.
type MarkerStyle int

const (
	// SentinelMarkers writes each marker as a %NAME% placeholder and a null
	// field as NULL, the convention downstream cleanup scripts expect.
	SentinelMarkers MarkerStyle = iota
	// PlainMarkers writes breaks as a single space, restores quotes and
	// leaves null fields empty. The restored quotes are literal text, so a
	// quote-aware reader such as Scanner may join a field that starts with
	// one to the fields after it. Check such output by splitting each line
	// on the delimiter (Splitter) or by reconstructing it again.
	PlainMarkers
)

// Sentinel placeholders written by SentinelMarkers.
const (
	SentinelCR        = "%CR%"
	SentinelLF        = "%LF%"
	SentinelCRLF      = "%CRLF%"
	SentinelLineBreak = "%LINEBREAK%"
	SentinelTabBreak  = "%TABBREAK%"
	SentinelQuote     = "%QUOTE%"
	SentinelNull      = "NULL"
)

// String returns the style name used in configuration.
func (s MarkerStyle) String() string {
	switch s {
	case SentinelMarkers:
		return "sentinel"
	case PlainMarkers:
		return "plain"
	default:
		return fmt.Sprintf("MarkerStyle(%d)", int(s))
	}
}

// ParseMarkerStyle maps "sentinel" or "plain" to a MarkerStyle.
func ParseMarkerStyle(name string) (MarkerStyle, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sentinel":
		return SentinelMarkers, nil
	case "plain":
		return PlainMarkers, nil
	default:
		return 0, &OptionsError{Field: "Markers", Message: name + " is not a marker style; use sentinel or plain"}
	}
}

// writeMarker appends the output form of m.
func (s MarkerStyle) writeMarker(b *strings.Builder, m tokenizer.Marker) {
	switch m.Kind {
	case tokenizer.KindText, tokenizer.KindDelim, tokenizer.KindDelimRun:
		b.WriteString(m.Text)
		return
	}
	if s == PlainMarkers {
		switch m.Kind {
		case tokenizer.KindQuote:
			b.WriteByte('"')
		case tokenizer.KindNullField:
		default:
			b.WriteByte(' ')
		}
		return
	}
	switch m.Kind {
	case tokenizer.KindCR:
		b.WriteString(SentinelCR)
	case tokenizer.KindLF:
		b.WriteString(SentinelLF)
	case tokenizer.KindCRLF:
		b.WriteString(SentinelCRLF)
	case tokenizer.KindLineBreak:
		b.WriteString(SentinelLineBreak)
	case tokenizer.KindTabBreak:
		b.WriteString(SentinelTabBreak)
	case tokenizer.KindQuote:
		b.WriteString(SentinelQuote)
	case tokenizer.KindNullField:
		b.WriteString(SentinelNull)
	}
}
