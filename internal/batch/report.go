package batch

import (
	"context"
	"io"
	"strconv"

	"github.com/lyrasis/csv-data-tools/pkg/csv"
)

// Report column headers.
var (
	CheckReportHeader = []string{"filename", "ok?", "col_ct", "occurrences", "example_rows"}
	FileReportHeader  = []string{"tablename", "encoding", "EOL", "longlines", "structureok", "rows", "columns"}
	InfoReportHeader  = []string{"filename", "size", "mimetype", "encoding", "EOL", "longlines"}
)

// FileReportName is the reconstruct report's name inside the output
// directory.
const FileReportName = "file_report.csv"

// statusError marks a file that could not be processed; the error message
// goes in the row's last column.
const statusError = "error"

func yn(ok bool) string {
	if ok {
		return "y"
	}
	return "n"
}

// CheckTable builds the cumulative check report. Every file gets a summary
// row with its expected count and correct rows; a ragged file gets one more
// row per anomalous field count.
func CheckTable(reports []csv.FileReport) csv.Table {
	t := csv.Table{Header: CheckReportHeader}
	for _, rep := range reports {
		if rep.Err != nil {
			t.Append(rep.Filename, statusError, "", "", rep.Err.Error())
			continue
		}
		t.Append(rep.Filename, yn(rep.OK), strconv.Itoa(rep.Expected), strconv.Itoa(rep.Correct), "")
		for _, b := range rep.Buckets {
			t.Append(rep.Filename, "n", strconv.Itoa(b.FieldCount), strconv.Itoa(b.Occurrences), b.ExampleIndexes())
		}
	}
	return t
}

// FileReportTable builds the reconstruct report: one row per distinct
// field count of each repaired file.
func FileReportTable(results []ReconstructResult) csv.Table {
	t := csv.Table{Header: FileReportHeader}
	for _, res := range results {
		enc, eol, long := string(res.Info.Encoding), res.Info.EOL, res.Info.LongLines
		if res.Err != nil {
			t.Append(res.Name, enc, eol, long, statusError, "", res.Err.Error())
			continue
		}
		ok := yn(res.StructureOK())
		for _, c := range res.Structure {
			t.Append(res.Name, enc, eol, long, ok, strconv.Itoa(c.Rows), strconv.Itoa(c.Columns))
		}
	}
	return t
}

// InfoTable builds the file info report.
func InfoTable(results []InfoResult) csv.Table {
	t := csv.Table{Header: InfoReportHeader}
	for _, res := range results {
		if res.Err != nil {
			t.Append(res.Name, "", statusError, "", "", res.Err.Error())
			continue
		}
		t.Append(res.Name,
			strconv.FormatInt(res.Info.Size, 10),
			res.Info.MimeType,
			string(res.Info.Encoding),
			res.Info.EOL,
			res.Info.LongLines)
	}
	return t
}

// WriteTable renders t as comma-separated text and writes it atomically.
func WriteTable(ctx context.Context, path string, t csv.Table) error {
	data, err := t.Render(csv.DefaultWriterOptions())
	if err != nil {
		return err
	}
	return WriteFileAtomic(ctx, path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
