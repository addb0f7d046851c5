package tokenizer

import (
	"github.com/shapestone/shape-core/pkg/tokenizer"
)

// Options configures the tokenizer behavior.
type Options struct {
	// Delimiter is the field delimiter. Any non-empty string that does not
	// contain CR, LF or a double quote. Default: ","
	Delimiter string
}

// DefaultOptions returns default tokenizer options.
func DefaultOptions() Options {
	return Options{
		Delimiter: ",",
	}
}

// NewTokenizer creates a structural tokenizer with the default comma delimiter.
func NewTokenizer() tokenizer.Tokenizer {
	return NewTokenizerWithOptions(DefaultOptions())
}

// NewTokenizerWithOptions creates a structural tokenizer.
//
// Matchers run in precedence order, so the longest structural reading of a
// position wins:
// 1. CRLF before CR and LF (a CR followed by LF is one marker, never two)
// 2. Delimiter, absorbing any padding spaces that follow it (the marker
//    keeps only the delimiter)
// 3. Double quote
// 4. Text (everything else)
func NewTokenizerWithOptions(opts Options) tokenizer.Tokenizer {
	delim := opts.Delimiter
	if delim == "" {
		delim = DefaultOptions().Delimiter
	}
	return tokenizer.NewTokenizerWithoutWhitespace(
		tokenizer.StringMatcherFunc(TokenCRLF, "\r\n"),
		tokenizer.StringMatcherFunc(TokenCR, "\r"),
		tokenizer.StringMatcherFunc(TokenLF, "\n"),

		DelimiterMatcher(delim),
		tokenizer.StringMatcherFunc(TokenQuote, `"`),

		TextMatcher(delim),
	)
}

// NewTokenizerWithStreamAndOptions creates a tokenizer from a stream with custom options.
func NewTokenizerWithStreamAndOptions(stream tokenizer.Stream, opts Options) tokenizer.Tokenizer {
	tok := NewTokenizerWithOptions(opts)
	tok.InitializeFromStream(stream)
	return tok
}

// Tokenize runs the tokenizer over a whole document and returns its markers
// in document order.
func Tokenize(input string, opts Options) []Marker {
	tok := NewTokenizerWithOptions(opts)
	tok.Initialize(input)
	return collect(&tok, delimiterOf(opts), len(input)/8)
}

// TokenizeStream is Tokenize for a pre-configured stream.
func TokenizeStream(stream tokenizer.Stream, opts Options) []Marker {
	tok := NewTokenizerWithStreamAndOptions(stream, opts)
	return collect(&tok, delimiterOf(opts), 0)
}

func delimiterOf(opts Options) string {
	if opts.Delimiter == "" {
		return DefaultOptions().Delimiter
	}
	return opts.Delimiter
}

// collect drains tok into markers. A padded delimiter token carries its
// padding; its marker holds the bare delimiter.
func collect(tok *tokenizer.Tokenizer, delim string, hint int) []Marker {
	if hint < 16 {
		hint = 16
	}
	markers := make([]Marker, 0, hint)
	for {
		token, ok := tok.NextToken()
		if !ok {
			break
		}
		kind := kindOf(token.Kind())
		text := token.ValueString()
		if kind == KindDelimRun {
			text = delim
		}
		markers = append(markers, Marker{
			Kind:   kind,
			Text:   text,
			Offset: token.Offset(),
		})
	}
	return markers
}

// DelimiterMatcher matches the delimiter and any spaces padding it.
// A padded delimiter is emitted as TokenDelimRun whose value is everything
// consumed, delimiter and padding; the tokenizer advances by the token value.
func DelimiterMatcher(delim string) tokenizer.Matcher {
	runes := []rune(delim)
	return func(stream tokenizer.Stream) *tokenizer.Token {
		r, ok := stream.PeekChar()
		if !ok || r != runes[0] {
			return nil
		}
		if !stream.MatchChars(runes) {
			return nil
		}

		value := runes
		for {
			r, ok := stream.PeekChar()
			if !ok || r != ' ' {
				break
			}
			stream.NextChar()
			if len(value) == len(runes) {
				value = append([]rune(nil), runes...)
			}
			value = append(value, ' ')
		}

		if len(value) > len(runes) {
			return tokenizer.NewToken(TokenDelimRun, value)
		}
		return tokenizer.NewToken(TokenDelim, runes)
	}
}

// TextMatcher matches runs of characters that are not structural.
//
// It is the last matcher, so whatever it sees was rejected by all the
// others: the first character is always consumed. This matters for
// multi-character delimiters whose first character also occurs on its own.
//
// Performance: Uses ByteStream for fast ASCII scanning when available.
func TextMatcher(delim string) tokenizer.Matcher {
	first := []rune(delim)[0]
	return func(stream tokenizer.Stream) *tokenizer.Token {
		if first < 128 {
			if byteStream, ok := stream.(tokenizer.ByteStream); ok {
				return textMatcherByte(byteStream, byte(first))
			}
		}
		return textMatcherRune(stream, first)
	}
}

// textMatcherByte uses ByteStream for optimal performance. Stop bytes are all
// ASCII, so multi-byte UTF-8 sequences pass through untouched.
func textMatcherByte(stream tokenizer.ByteStream, delim byte) *tokenizer.Token {
	startPos := stream.BytePosition()

	if _, ok := stream.PeekByte(); !ok {
		return nil
	}
	stream.NextByte()

	for {
		b, ok := stream.PeekByte()
		if !ok {
			break
		}
		if b == delim || b == '"' || b == '\n' || b == '\r' {
			break
		}
		stream.NextByte()
	}

	value := stream.SliceFrom(startPos)
	return tokenizer.NewToken(TokenText, []rune(string(value)))
}

// textMatcherRune is the fallback rune-based implementation.
func textMatcherRune(stream tokenizer.Stream, delim rune) *tokenizer.Token {
	r, ok := stream.NextChar()
	if !ok {
		return nil
	}
	value := []rune{r}

	for {
		r, ok := stream.PeekChar()
		if !ok {
			break
		}
		if r == delim || r == '"' || r == '\n' || r == '\r' {
			break
		}
		stream.NextChar()
		value = append(value, r)
	}

	return tokenizer.NewToken(TokenText, value)
}
