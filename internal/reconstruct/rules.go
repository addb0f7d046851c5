package reconstruct

import (
	"regexp"
	"strings"

	"github.com/lyrasis/csv-data-tools/internal/tokenizer"
)

// Decision is what a rule decided about one CRLF.
type Decision uint8

const (
	// NewRow ends the current row; the next line starts a new one.
	NewRow Decision = iota
	// Merge keeps the next line in the current row behind a break marker.
	Merge
	// Drop discards the CRLF and the (blank) next line.
	Drop
	// Collapse discards the next line; the CRLF that follows it is then
	// classified against the same row.
	Collapse
	// SkipLine ends the current row and discards the next line together with
	// the CRLF after it.
	SkipLine
)

func (d Decision) String() string {
	switch d {
	case NewRow:
		return "new-row"
	case Merge:
		return "merge"
	case Drop:
		return "drop"
	case Collapse:
		return "collapse"
	case SkipLine:
		return "skip-line"
	default:
		return "unknown"
	}
}

// Outcome is a rule's verdict for one CRLF.
type Outcome struct {
	Decision Decision
	// Tag is the break marker kind for Merge: KindLineBreak or KindTabBreak.
	Tag tokenizer.Kind
	// Next replaces the next line when non-nil.
	Next Line
	// Absorb merges the following CRLF into the same break. Only meaningful
	// for Merge.
	Absorb bool
}

// Context is what a rule sees when classifying one CRLF.
type Context struct {
	// Row is the row accumulated so far, up to the CRLF.
	Row Line
	// Next is the line after the CRLF.
	Next Line
	// HasMore reports whether another CRLF follows Next.
	HasMore bool
	// Collapsed counts artifact lines collapsed directly before Next.
	Collapsed int
	// Delimiter is the field delimiter.
	Delimiter string

	p    *patterns
	view string
	row  *rowState
}

// NextView returns the pattern-matching view of Next.
func (c *Context) NextView() string {
	return c.view
}

// state returns the running summary of Row, building it when the context
// was made outside a reconstruction pass.
func (c *Context) state() *rowState {
	if c.row == nil {
		c.row = newRowState(c.p.leadingField)
		c.row.add(c.Row...)
	}
	return c.row
}

// RowHasDelimiter reports whether Row contains a field delimiter.
func (c *Context) RowHasDelimiter() bool {
	return c.state().hasDelim
}

// RowIsRecord reports whether Row has a delimiter and its first field
// matches the leading-field pattern.
func (c *Context) RowIsRecord() bool {
	st := c.state()
	return st.hasDelim && st.leadingOK
}

// RowEndsWith reports whether the last character of Row, ignoring trailing
// spaces and tabs, is b.
func (c *Context) RowEndsWith(b byte) bool {
	return c.state().tail == b
}

// Rule classifies a CRLF or declines with ok=false.
type Rule struct {
	Name  string
	Apply func(c *Context) (out Outcome, ok bool)
}

// Rule names, in default precedence order.
const (
	RuleSeparatorRow         = "separator-row"
	RuleEmptyArtifactLine    = "empty-artifact-line"
	RuleDashedContinuation   = "dashed-continuation"
	RuleColonDash            = "colon-dash-continuation"
	RuleTabBreak             = "tab-break"
	RuleSentenceContinuation = "sentence-continuation"
	RuleEndOfDocument        = "end-of-document"
	RuleNewRowIndicator      = "new-row-indicator"
	RuleLabelContinuation    = "label-continuation"
	RuleDefault              = "default"
)

// DefaultRules returns the standard rule list. The first rule that accepts a
// CRLF decides it.
//
// Dashed continuations come before tab breaks: both start with a tab, and the
// dashed shape is the narrower one.
func DefaultRules() []Rule {
	return []Rule{
		{Name: RuleSeparatorRow, Apply: separatorRow},
		{Name: RuleEmptyArtifactLine, Apply: emptyArtifactLine},
		{Name: RuleDashedContinuation, Apply: dashedContinuation},
		{Name: RuleColonDash, Apply: colonDash},
		{Name: RuleTabBreak, Apply: tabBreak},
		{Name: RuleSentenceContinuation, Apply: sentenceContinuation},
		{Name: RuleEndOfDocument, Apply: endOfDocument},
		{Name: RuleNewRowIndicator, Apply: newRowIndicator},
		{Name: RuleLabelContinuation, Apply: labelContinuation},
		{Name: RuleDefault, Apply: defaultRule},
	}
}

// patterns holds the delimiter-specific expressions.
type patterns struct {
	separator    *regexp.Regexp
	emptyLine    *regexp.Regexp
	newRow       *regexp.Regexp
	label        *regexp.Regexp
	leadingField *regexp.Regexp
	tabIsDelim   bool
}

var (
	sentenceRe     = regexp.MustCompile(`^([a-z]\.)\s+\w`)
	dashedRe       = regexp.MustCompile(`^\t+-\w`)
	colonDashRe    = regexp.MustCompile(`^-\w`)
	leadingSpaceRe = regexp.MustCompile(`^ +`)
)

func compilePatterns(delim string, leadingField *regexp.Regexp) *patterns {
	d := regexp.QuoteMeta(delim)
	return &patterns{
		separator:    regexp.MustCompile(`^-+(?:` + d + `-+)+$`),
		emptyLine:    regexp.MustCompile(`^(?:\s|` + d + `)*$`),
		newRow:       regexp.MustCompile(`^ *[0-9-]+` + d),
		label:        regexp.MustCompile(`^[^ 0-9\-]+` + d),
		leadingField: leadingField,
		tabIsDelim:   strings.HasPrefix(delim, "\t"),
	}
}

func separatorRow(c *Context) (Outcome, bool) {
	if !c.HasMore || !c.p.separator.MatchString(c.view) {
		return Outcome{}, false
	}
	return Outcome{Decision: SkipLine}, true
}

// emptyArtifactLine leaves a tab-led line without delimiters to tabBreak, so
// that a field continued after a lone tab stays one value.
func emptyArtifactLine(c *Context) (Outcome, bool) {
	if !c.HasMore || !c.p.emptyLine.MatchString(c.view) {
		return Outcome{}, false
	}
	if !c.p.tabIsDelim && strings.HasPrefix(c.view, "\t") && !c.Next.HasDelimiter() {
		return Outcome{}, false
	}
	return Outcome{Decision: Collapse}, true
}

func dashedContinuation(c *Context) (Outcome, bool) {
	if c.p.tabIsDelim || !dashedRe.MatchString(c.view) {
		return Outcome{}, false
	}
	tabs := len(c.view) - len(strings.TrimLeft(c.view, "\t"))
	return Outcome{Decision: Merge, Tag: tokenizer.KindLineBreak, Next: c.Next.DropPrefix(tabs)}, true
}

// colonDash joins a "label:" row to a "-value" line that follows a blank line.
func colonDash(c *Context) (Outcome, bool) {
	if c.Collapsed == 0 || !colonDashRe.MatchString(c.view) {
		return Outcome{}, false
	}
	if !c.RowEndsWith(':') {
		return Outcome{}, false
	}
	return Outcome{Decision: Merge, Tag: tokenizer.KindLineBreak}, true
}

func tabBreak(c *Context) (Outcome, bool) {
	if c.p.tabIsDelim || !strings.HasPrefix(c.view, "\t") {
		return Outcome{}, false
	}
	rest := c.Next.DropPrefix(1)
	if rest.IsBlank() {
		if !c.HasMore {
			return Outcome{}, false
		}
		return Outcome{Decision: Merge, Tag: tokenizer.KindTabBreak, Next: Line{}, Absorb: true}, true
	}
	return Outcome{Decision: Merge, Tag: tokenizer.KindTabBreak, Next: rest}, true
}

func sentenceContinuation(c *Context) (Outcome, bool) {
	m := sentenceRe.FindStringSubmatchIndex(c.view)
	if m == nil {
		return Outcome{}, false
	}
	// m[1] is one past the word character; keep that character.
	head := c.view[m[2]:m[3]] + " "
	next := c.Next.DropPrefix(m[1] - 1).Prepend(tokenizer.Marker{Kind: tokenizer.KindText, Text: head})
	return Outcome{Decision: Merge, Tag: tokenizer.KindLineBreak, Next: next}, true
}

func endOfDocument(c *Context) (Outcome, bool) {
	if c.HasMore || !c.Next.IsBlank() {
		return Outcome{}, false
	}
	return Outcome{Decision: Drop}, true
}

func newRowIndicator(c *Context) (Outcome, bool) {
	if !c.p.newRow.MatchString(c.view) {
		return Outcome{}, false
	}
	out := Outcome{Decision: NewRow}
	if loc := leadingSpaceRe.FindStringIndex(c.view); loc != nil {
		out.Next = c.Next.DropPrefix(loc[1])
	}
	return out, true
}

func labelContinuation(c *Context) (Outcome, bool) {
	if !c.p.label.MatchString(c.view) {
		return Outcome{}, false
	}
	return Outcome{Decision: Merge, Tag: tokenizer.KindLineBreak}, true
}

// defaultRule splits only after a row that already looks like a record.
// Anything else merges: a false merge shows up later as a ragged row, a
// false split does not.
func defaultRule(c *Context) (Outcome, bool) {
	if c.RowIsRecord() {
		return Outcome{Decision: NewRow}, true
	}
	return Outcome{Decision: Merge, Tag: tokenizer.KindLineBreak}, true
}
