package csv

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Delimiter names accepted on the command line.
const (
	DelimiterComma = "comma"
	DelimiterPipe  = "pipe"
	DelimiterTab   = "tab"
)

var delimitersByName = map[string]string{
	DelimiterComma: ",",
	DelimiterPipe:  "|",
	DelimiterTab:   "\t",
}

// DelimiterNames returns the accepted delimiter names, sorted.
func DelimiterNames() []string {
	names := make([]string, 0, len(delimitersByName))
	for name := range delimitersByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DelimiterByName maps a delimiter name to its character. Unknown names
// return an *OptionsError.
func DelimiterByName(name string) (string, error) {
	d, ok := delimitersByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", &OptionsError{
			Field:   "Delimiter",
			Message: name + " is not an allowed delimiter; use one of: " + strings.Join(DelimiterNames(), ", "),
		}
	}
	return d, nil
}

// DelimiterName is the inverse of DelimiterByName. Delimiters outside the
// named set are returned as-is.
func DelimiterName(delim string) string {
	for name, d := range delimitersByName {
		if d == delim {
			return name
		}
	}
	return delim
}

// DelimiterForSuffix infers a delimiter from a file suffix such as ".psv".
// The second result is false when the suffix says nothing.
func DelimiterForSuffix(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ",", true
	case ".tsv", ".tab":
		return "\t", true
	case ".psv", ".txt":
		return "|", true
	default:
		return "", false
	}
}

// DefaultExampleLimit is how many example rows an anomaly bucket keeps.
const DefaultExampleLimit = 3

// Options configures reconstruction, splitting and validation.
type Options struct {
	// Delimiter is the field delimiter. Any non-empty string without CR, LF
	// or a double quote. Default: ","
	Delimiter string

	// ExampleLimit caps the example rows kept per anomaly bucket.
	// Default: 3
	ExampleLimit int

	// Markers selects how break and quote markers appear in output fields.
	// Default: SentinelMarkers
	Markers MarkerStyle

	// Transform is applied to every field after trimming. Nil leaves fields
	// untouched.
	Transform Transform

	// LeadingField is the expression a row's first field must match for an
	// unclassified line break after it to count as a row boundary.
	// Default: ^[0-9-]+$
	LeadingField string

	// StrictQuotes makes Scanner fail on stray or unclosed quotes instead of
	// keeping them as text.
	StrictQuotes bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Delimiter:    ",",
		ExampleLimit: DefaultExampleLimit,
		Markers:      SentinelMarkers,
		LeadingField: `^[0-9-]+$`,
	}
}

// validDelim reports whether d can serve as a field delimiter.
func validDelim(d string) bool {
	return d != "" && !strings.ContainsAny(d, "\"\r\n")
}

// Validate checks if the options are valid.
func (o Options) Validate() error {
	if !validDelim(o.Delimiter) {
		return &OptionsError{Field: "Delimiter", Message: "invalid delimiter " + quoteForMessage(o.Delimiter)}
	}
	if o.ExampleLimit < 0 {
		return &OptionsError{Field: "ExampleLimit", Message: "must not be negative"}
	}
	if o.Markers != SentinelMarkers && o.Markers != PlainMarkers {
		return &OptionsError{Field: "Markers", Message: "unknown marker style"}
	}
	if o.LeadingField != "" {
		if _, err := regexp.Compile(o.LeadingField); err != nil {
			return &OptionsError{Field: "LeadingField", Message: err.Error()}
		}
	}
	return nil
}

func quoteForMessage(s string) string {
	if s == "" {
		return "(empty)"
	}
	return "\"" + strings.NewReplacer("\r", `\r`, "\n", `\n`, "\t", `\t`).Replace(s) + "\""
}

// OptionsError represents an invalid option configuration.
type OptionsError struct {
	Field   string
	Message string
}

func (e *OptionsError) Error() string {
	return "csv: invalid " + e.Field + ": " + e.Message
}
