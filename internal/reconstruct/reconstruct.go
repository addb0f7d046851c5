// Package reconstruct decides which CRLF markers of a broken export are real
// row boundaries and which are line breaks inside a field value.
//
// Every CRLF is classified by one forward scan over an ordered rule list;
// the first rule that accepts it decides. Rows come out as marker slices,
// still carrying their delimiter and break markers, ready for splitting.
package reconstruct

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lyrasis/csv-data-tools/internal/tokenizer"
)

// DefaultLeadingField is the shape of a record's first field: an identifier
// made of digits and hyphens.
const DefaultLeadingField = `^[0-9-]+$`

// Options configures the reconstructor.
type Options struct {
	// Delimiter is the field delimiter. Default: ","
	Delimiter string
	// LeadingField is the expression the first field of a finished row must
	// match for the default rule to split after it. Default: DefaultLeadingField
	LeadingField string
	// Rules replaces the default rule list when non-nil.
	Rules []Rule
	// NullFields marks rows holding only an identifier with a NullField
	// marker. Default: true
	NullFields bool
	// DropSeparatorRow removes a second row made only of dash fields.
	// Default: true
	DropSeparatorRow bool
}

// DefaultOptions returns default reconstructor options.
func DefaultOptions() Options {
	return Options{
		Delimiter:        ",",
		LeadingField:     DefaultLeadingField,
		NullFields:       true,
		DropSeparatorRow: true,
	}
}

// Stats counts how often each rule decided a CRLF.
type Stats map[string]int

// Names returns the rule names with at least one hit, sorted.
func (s Stats) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Total is the number of CRLF markers classified.
func (s Stats) Total() int {
	n := 0
	for _, v := range s {
		n += v
	}
	return n
}

// Result is the outcome of one reconstruction pass.
type Result struct {
	Rows  []Line
	Stats Stats
	// NullFields counts rows given a NullField marker.
	NullFields int
	// SeparatorDropped reports whether a dashed second row was removed.
	SeparatorDropped bool
}

// Reconstructor classifies CRLF markers. It holds no per-document state and
// is safe for concurrent use.
type Reconstructor struct {
	opts  Options
	rules []Rule
	p     *patterns
}

// New creates a reconstructor with default options.
func New() *Reconstructor {
	r, _ := NewWithOptions(DefaultOptions())
	return r
}

// NewWithOptions creates a reconstructor. It fails only when LeadingField
// does not compile.
func NewWithOptions(opts Options) (*Reconstructor, error) {
	if opts.Delimiter == "" {
		opts.Delimiter = DefaultOptions().Delimiter
	}
	if opts.LeadingField == "" {
		opts.LeadingField = DefaultLeadingField
	}
	leading, err := regexp.Compile(opts.LeadingField)
	if err != nil {
		return nil, fmt.Errorf("leading field pattern %q: %w", opts.LeadingField, err)
	}
	rules := opts.Rules
	if rules == nil {
		rules = DefaultRules()
	}
	return &Reconstructor{
		opts:  opts,
		rules: rules,
		p:     compilePatterns(opts.Delimiter, leading),
	}, nil
}

// Options returns the options in effect.
func (r *Reconstructor) Options() Options {
	return r.opts
}

// ReconstructString tokenizes input with the reconstructor's delimiter and
// reconstructs it.
func (r *Reconstructor) ReconstructString(input string) Result {
	return r.Reconstruct(tokenizer.Tokenize(input, tokenizer.Options{Delimiter: r.opts.Delimiter}))
}

// Reconstruct classifies every CRLF in markers and returns the rows.
func (r *Reconstructor) Reconstruct(markers []tokenizer.Marker) Result {
	res := Result{Stats: make(Stats)}
	lines := splitLines(markers)

	rows := make([]Line, 0, len(lines))
	cur := append(Line(nil), lines[0]...)
	state := newRowState(r.p.leadingField)
	state.add(cur...)
	collapsed := 0

	for i := 1; i < len(lines); {
		ctx := &Context{
			Row:       cur,
			Next:      lines[i],
			HasMore:   i < len(lines)-1,
			Collapsed: collapsed,
			Delimiter: r.opts.Delimiter,
			p:         r.p,
			view:      lines[i].View(),
			row:       state,
		}
		name, out := r.classify(ctx)
		res.Stats[name]++

		next := lines[i]
		if out.Next != nil {
			next = out.Next
		}
		collapsed = 0

		switch out.Decision {
		case NewRow:
			rows = append(rows, cur)
			cur = append(Line(nil), next...)
			state = newRowState(r.p.leadingField)
			state.add(cur...)
			i++
		case Merge:
			brk := tokenizer.Marker{Kind: out.Tag, Text: "\r\n"}
			cur = append(cur, brk)
			cur = append(cur, next...)
			state.add(brk)
			state.add(next...)
			i++
			if out.Absorb && i < len(lines) {
				cur = append(cur, lines[i]...)
				state.add(lines[i]...)
				i++
			}
		case Drop:
			i++
		case Collapse:
			collapsed = ctx.Collapsed + 1
			i++
		case SkipLine:
			rows = append(rows, cur)
			i++
			cur = append(Line(nil), lines[i]...)
			state = newRowState(r.p.leadingField)
			state.add(cur...)
			i++
		}
	}
	rows = append(rows, cur)

	if r.opts.DropSeparatorRow && len(rows) > 1 && isSeparatorRow(rows[1]) {
		rows = append(rows[:1], rows[2:]...)
		res.SeparatorDropped = true
	}
	if r.opts.NullFields {
		res.NullFields = markNullFields(rows)
	}
	res.Rows = rows
	return res
}

// classify runs the rules in order. A rule list with no match falls back to
// the default rule so every CRLF gets a decision.
func (r *Reconstructor) classify(ctx *Context) (string, Outcome) {
	for _, rule := range r.rules {
		if out, ok := rule.Apply(ctx); ok {
			return rule.Name, out
		}
	}
	out, _ := defaultRule(ctx)
	return RuleDefault, out
}

// isSeparatorRow reports whether every field of row is a dash run and the
// row holds at least one run of four dashes.
func isSeparatorRow(row Line) bool {
	if !strings.Contains(row.View(), "----") {
		return false
	}
	for _, f := range row.Fields() {
		v := strings.TrimSpace(f.View())
		if v == "" || strings.Trim(v, "-") != "" {
			return false
		}
	}
	return true
}

// markNullFields appends a NullField marker to every data row whose first
// field is set and whose other fields are all empty.
func markNullFields(rows []Line) int {
	n := 0
	for i := 1; i < len(rows); i++ {
		if !rows[i].HasDelimiter() {
			continue
		}
		fields := rows[i].Fields()
		if fields[0].IsBlank() {
			continue
		}
		empty := true
		for _, f := range fields[1:] {
			if !f.IsBlank() {
				empty = false
				break
			}
		}
		if empty {
			rows[i] = append(rows[i], tokenizer.Marker{Kind: tokenizer.KindNullField})
			n++
		}
	}
	return n
}
