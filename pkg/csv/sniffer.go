package csv

import (
	"strings"
)

// sniffLines is how many non-empty lines the sniffer looks at.
const sniffLines = 20

// Sniffer guesses the delimiter of a sample from the named set: comma, tab
// or pipe.
type Sniffer struct {
	sample    string
	delimiter string
	found     bool
	analyzed  bool
}

// NewSniffer creates a Sniffer over a sample of the file. A few lines are
// enough; the first lines of a file are best since they include the header.
func NewSniffer(sample string) *Sniffer {
	return &Sniffer{sample: sample}
}

// DetectDelimiter returns the most likely delimiter and whether any
// candidate occurred at all. With no evidence it returns "," and false.
func (s *Sniffer) DetectDelimiter() (string, bool) {
	if !s.analyzed {
		s.delimiter, s.found = s.detectDelimiter()
		s.analyzed = true
	}
	return s.delimiter, s.found
}

// detectDelimiter scores each candidate by its count on the first line,
// with a bonus when every sampled line agrees. Broken exports rarely agree,
// so the bonus only breaks ties between plausible candidates.
func (s *Sniffer) detectDelimiter() (string, bool) {
	lines := sampleLines(s.sample)
	if len(lines) == 0 {
		return ",", false
	}

	best, bestScore := ",", 0
	for _, delim := range []string{",", "\t", "|"} {
		first := countDelimiter(lines[0], delim)
		if first == 0 {
			continue
		}
		score := first
		consistent := true
		for _, line := range lines[1:] {
			if countDelimiter(line, delim) != first {
				consistent = false
				break
			}
		}
		if consistent {
			score *= 10
		}
		if score > bestScore {
			best, bestScore = delim, score
		}
	}
	return best, bestScore > 0
}

func sampleLines(sample string) []string {
	raw := strings.FieldsFunc(sample, func(r rune) bool { return r == '\n' || r == '\r' })
	lines := make([]string, 0, sniffLines)
	for _, l := range raw {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
		if len(lines) == sniffLines {
			break
		}
	}
	return lines
}

// countDelimiter counts occurrences of a delimiter, ignoring quoted sections.
func countDelimiter(line string, delim string) int {
	count := 0
	inQuotes := false
	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == '"':
			inQuotes = !inQuotes
		case !inQuotes && strings.HasPrefix(line[i:], delim):
			count++
			i += len(delim) - 1
		}
	}
	return count
}
