package csv

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shapestone/shape-core/pkg/ast"
)

// WriterOptions configures report rendering.
type WriterOptions struct {
	// Comma is the field delimiter. Default: ','
	Comma rune
	// UseCRLF ends lines with \r\n instead of \n.
	UseCRLF bool
}

// DefaultWriterOptions returns comma-separated, LF-terminated output.
func DefaultWriterOptions() WriterOptions {
	return WriterOptions{Comma: ','}
}

// Table is a report: a header row and data rows of string cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// Append adds a data row.
func (t *Table) Append(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Node converts the table to an AST: an array of records, each an array of
// literal fields, header first.
func (t Table) Node() ast.SchemaNode {
	records := make([]ast.SchemaNode, 0, len(t.Rows)+1)
	records = append(records, recordNode(t.Header, 1))
	for i, r := range t.Rows {
		records = append(records, recordNode(r, i+2))
	}
	return ast.NewArrayDataNode(records, ast.ZeroPosition())
}

func recordNode(cells []string, line int) *ast.ArrayDataNode {
	fields := make([]ast.SchemaNode, len(cells))
	for i, c := range cells {
		fields[i] = ast.NewLiteralNode(c, ast.NewPosition(0, line, i+1))
	}
	return ast.NewArrayDataNode(fields, ast.NewPosition(0, line, 1))
}

// Render writes the table as RFC 4180 text.
func (t Table) Render(opts WriterOptions) ([]byte, error) {
	return RenderWithOptions(t.Node(), opts)
}

// Render converts an AST node to comma-separated bytes.
//
// Rendering handles:
//   - Automatic quoting of fields containing the delimiter, quotes, or newlines
//   - Proper escaping of quotes (doubled)
//   - Preservation of empty fields
func Render(node ast.SchemaNode) ([]byte, error) {
	return RenderWithOptions(node, DefaultWriterOptions())
}

// RenderWithOptions converts an AST node to bytes with a custom delimiter and
// line ending.
func RenderWithOptions(node ast.SchemaNode, opts WriterOptions) ([]byte, error) {
	if node == nil {
		return []byte{}, nil
	}
	if opts.Comma == 0 {
		opts.Comma = ','
	}

	var buf bytes.Buffer
	lineEnding := "\n"
	if opts.UseCRLF {
		lineEnding = "\r\n"
	}

	if err := renderNode(node, &buf, opts.Comma, lineEnding); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderNode recursively renders an AST node.
func renderNode(node ast.SchemaNode, buf *bytes.Buffer, delim rune, lineEnding string) error {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *ast.ArrayDataNode:
		return renderArrayData(n, buf, delim, lineEnding)
	case *ast.LiteralNode:
		writeField(buf, literalString(n), delim)
		return nil
	default:
		return fmt.Errorf("unsupported node type for CSV rendering: %T", node)
	}
}

// renderArrayData renders a file (array of records) or a record (array of
// fields). A record with no fields renders as an empty line.
func renderArrayData(node *ast.ArrayDataNode, buf *bytes.Buffer, delim rune, lineEnding string) error {
	elements := node.Elements()
	if len(elements) == 0 {
		return nil
	}

	switch elements[0].(type) {
	case *ast.ArrayDataNode:
		for _, elem := range elements {
			if err := renderNode(elem, buf, delim, lineEnding); err != nil {
				return err
			}
			buf.WriteString(lineEnding)
		}
		return nil

	case *ast.LiteralNode:
		for i, elem := range elements {
			if i > 0 {
				buf.WriteRune(delim)
			}
			if err := renderNode(elem, buf, delim, lineEnding); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("unexpected element type in array: %T", elements[0])
	}
}

func literalString(node *ast.LiteralNode) string {
	switch v := node.Value().(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// writeField writes a field, quoting it when it contains the delimiter, a
// quote, or a line break. Quotes inside are doubled.
func writeField(buf *bytes.Buffer, value string, delim rune) {
	if !strings.ContainsRune(value, delim) && !strings.ContainsAny(value, "\"\n\r") {
		buf.WriteString(value)
		return
	}
	buf.WriteByte('"')
	for _, ch := range value {
		if ch == '"' {
			buf.WriteString(`""`)
		} else {
			buf.WriteRune(ch)
		}
	}
	buf.WriteByte('"')
}
