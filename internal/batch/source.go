package batch

import (
	"fmt"
	"path/filepath"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/lyrasis/csv-data-tools/internal/fastparser"
)

// Source is one input file, decoded to UTF-8.
type Source struct {
	Path string
	Name string
	Text string
	Info FileInfo
}

// Load maps the file at path, inspects it and decodes it to UTF-8. The
// mapping is released before Load returns.
func Load(path string) (*Source, error) {
	data, cleanup, err := fastparser.MmapFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Stage: StageRead, Err: err}
	}
	defer cleanup()

	info := Inspect(data)
	text, err := Decode(data, info.Encoding)
	if err != nil {
		return nil, &FileError{Path: path, Stage: StageDecode, Err: err}
	}
	info.EOL, info.LongLines = describeLines(text)

	return &Source{
		Path: path,
		Name: filepath.Base(path),
		Text: text,
		Info: info,
	}, nil
}

// Decode converts data in the given encoding to a UTF-8 string, dropping
// any byte order mark. The result never aliases data.
func Decode(data []byte, enc Encoding) (string, error) {
	dec := decoderFor(enc)
	if dec == nil {
		return string(data), nil
	}
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", enc, err)
	}
	return string(out), nil
}

func decoderFor(enc Encoding) *encoding.Decoder {
	switch enc {
	case EncodingUTF8BOM:
		return unicode.UTF8BOM.NewDecoder()
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
	case EncodingWindows1252:
		return charmap.Windows1252.NewDecoder()
	default:
		return nil
	}
}
