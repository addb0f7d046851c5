// Package tokenizer classifies the control characters of a delimited export
// into typed markers using Shape's tokenizer framework.
package tokenizer

// Token kind constants emitted by the shape-core tokenizer.
//
// The tokenizer only separates structure from text. Whether a CRLF ends a
// row or sits inside a field value is decided later by the reconstructor.
const (
	// Line terminators
	TokenCRLF = "CRLF" // \r\n
	TokenCR   = "CR"   // lone \r
	TokenLF   = "LF"   // lone \n

	// Structural tokens
	TokenDelim    = "Delim"    // delimiter
	TokenDelimRun = "DelimRun" // delimiter followed by padding spaces
	TokenQuote    = "Quote"    // "

	// Field content token
	TokenText = "Text" // any run of non-structural characters
)

// Kind is the typed form of a marker. The first seven kinds come out of the
// tokenizer; the rest are introduced by the row-boundary reconstructor.
type Kind uint8

const (
	KindText Kind = iota
	KindCR
	KindLF
	KindCRLF
	KindDelim
	KindDelimRun
	KindQuote

	KindNewRow
	KindLineBreak
	KindTabBreak
	KindNullField
)

var kindNames = [...]string{
	KindText:      "TEXT",
	KindCR:        "CR",
	KindLF:        "LF",
	KindCRLF:      "CRLF",
	KindDelim:     "DELIM",
	KindDelimRun:  "DELIM_RUN",
	KindQuote:     "QUOTE",
	KindNewRow:    "NEW_ROW",
	KindLineBreak: "LINE_BREAK",
	KindTabBreak:  "TAB_BREAK",
	KindNullField: "NULL_FIELD",
}

// String returns the marker name, e.g. "CRLF" or "TAB_BREAK".
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// IsDelimiter reports whether k separates fields.
func (k Kind) IsDelimiter() bool {
	return k == KindDelim || k == KindDelimRun
}

// Marker is one token of a marker-annotated document. Text spans carry their
// source text; delimiter markers carry the normalized delimiter; every other
// marker carries the characters it replaced.
type Marker struct {
	Kind   Kind
	Text   string
	Offset int
}

// kindOf maps a shape-core token kind to its Kind.
func kindOf(tokenKind string) Kind {
	switch tokenKind {
	case TokenCRLF:
		return KindCRLF
	case TokenCR:
		return KindCR
	case TokenLF:
		return KindLF
	case TokenDelim:
		return KindDelim
	case TokenDelimRun:
		return KindDelimRun
	case TokenQuote:
		return KindQuote
	default:
		return KindText
	}
}
