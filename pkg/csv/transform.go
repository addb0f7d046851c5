package csv

import (
	"regexp"
	"strings"
)

// Transform rewrites one field value. Transforms are passed explicitly in
// Options; there is no global registry.
type Transform func(string) string

// Chain applies transforms left to right. Nil entries are skipped.
func Chain(transforms ...Transform) Transform {
	return func(s string) string {
		for _, t := range transforms {
			if t != nil {
				s = t(s)
			}
		}
		return s
	}
}

var (
	multiSpaceRe    = regexp.MustCompile(`  +`)
	leadingBreakRe  = regexp.MustCompile(`^%(?:LINEBREAK|TABBREAK|CRLF|CR|LF|TAB)%`)
	trailingBreakRe = regexp.MustCompile(`%(?:LINEBREAK|TABBREAK|CRLF|CR|LF|TAB)%$`)
)

// StripPlus trims the value, collapses runs of spaces, drops one trailing
// comma and one break sentinel at either end, then trims again. A bare NULL
// becomes empty.
func StripPlus(s string) string {
	if s == SentinelNull {
		return ""
	}
	s = strings.TrimSpace(s)
	s = multiSpaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSuffix(s, ",")
	s = leadingBreakRe.ReplaceAllString(s, "")
	s = trailingBreakRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
