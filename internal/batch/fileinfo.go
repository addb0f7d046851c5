package batch

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

// Encoding is the character encoding detected for a file.
type Encoding string

const (
	EncodingASCII       Encoding = "ASCII"
	EncodingUTF8        Encoding = "UTF-8"
	EncodingUTF8BOM     Encoding = "UTF-8 (with BOM)"
	EncodingUTF16LE     Encoding = "UTF-16LE"
	EncodingUTF16BE     Encoding = "UTF-16BE"
	EncodingWindows1252 Encoding = "Windows-1252"
)

// Line length thresholds for the longlines column.
const (
	LongLine     = 300
	VeryLongLine = 4096
)

// sniffBytes bounds how much of a file the UTF-16 heuristic looks at.
const sniffBytes = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// FileInfo describes an input file as it was on disk.
type FileInfo struct {
	Size     int64
	MimeType string
	Encoding Encoding
	// EOL lists the line terminators found, such as "CRLF" or "CRLF, LF".
	EOL string
	// LongLines is "no", "long" or "very long".
	LongLines string
}

// Inspect detects the media type and encoding of raw file bytes. EOL and
// LongLines need decoded text and are filled in by Load.
func Inspect(data []byte) FileInfo {
	return FileInfo{
		Size:     int64(len(data)),
		MimeType: mimetype.Detect(data).String(),
		Encoding: DetectEncoding(data),
	}
}

// DetectEncoding looks for a byte order mark, then for the zero bytes of
// BOM-less UTF-16, then checks UTF-8 validity. Anything else is taken to be
// Windows-1252, the usual code page of the exports.
func DetectEncoding(data []byte) Encoding {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return EncodingUTF8BOM
	case bytes.HasPrefix(data, bomUTF16LE):
		return EncodingUTF16LE
	case bytes.HasPrefix(data, bomUTF16BE):
		return EncodingUTF16BE
	}

	if enc, ok := utf16WithoutBOM(data); ok {
		return enc
	}
	if !utf8.Valid(data) {
		return EncodingWindows1252
	}
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return EncodingUTF8
		}
	}
	return EncodingASCII
}

// utf16WithoutBOM guesses UTF-16 from where the zero bytes fall: mostly
// ASCII text in UTF-16LE has a zero in every odd position.
func utf16WithoutBOM(data []byte) (Encoding, bool) {
	n := len(data)
	if n > sniffBytes {
		n = sniffBytes
	}
	n &^= 1
	if n < 4 {
		return "", false
	}
	var even, odd int
	for i := 0; i < n; i += 2 {
		if data[i] == 0 {
			even++
		}
		if data[i+1] == 0 {
			odd++
		}
	}
	pairs := n / 2
	switch {
	case odd*2 > pairs && even == 0:
		return EncodingUTF16LE, true
	case even*2 > pairs && odd == 0:
		return EncodingUTF16BE, true
	}
	return "", false
}

// describeLines reports the line terminators in text and how long its
// longest line is.
func describeLines(text string) (eol string, longLines string) {
	var crlf, cr, lf bool
	longest, cur := 0, 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				crlf = true
				i++
			} else {
				cr = true
			}
		case '\n':
			lf = true
		default:
			cur++
			continue
		}
		if cur > longest {
			longest = cur
		}
		cur = 0
	}
	if cur > longest {
		longest = cur
	}

	var kinds []string
	if crlf {
		kinds = append(kinds, "CRLF")
	}
	if cr {
		kinds = append(kinds, "CR")
	}
	if lf {
		kinds = append(kinds, "LF")
	}
	eol = "none"
	if len(kinds) > 0 {
		eol = strings.Join(kinds, ", ")
	}

	switch {
	case longest > VeryLongLine:
		longLines = "very long"
	case longest > LongLine:
		longLines = "long"
	default:
		longLines = "no"
	}
	return eol, longLines
}
