package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lyrasis/csv-data-tools/internal/batch"
	"github.com/lyrasis/csv-data-tools/pkg/csv"
)

func newShowCmd(a *app) *cobra.Command {
	var (
		input          string
		columns, limit int
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the lines of a file that split into a given number of fields",
		Long: `Splits each physical line of a file on the delimiter, without quote
handling, and prints the lines that have exactly COLUMNS fields. Use it to
look at the rows a check report flagged.`,
		Example: `  csvtools show -i repaired/Objects_l.psv -c 5
  csvtools show -i export.txt -d pipe -c 3 -l 10`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if columns < 0 {
				return &csv.OptionsError{Field: "Columns", Message: "must not be negative"}
			}
			if limit < 0 {
				return &csv.OptionsError{Field: "Limit", Message: "must not be negative"}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := batch.Load(input)
			if err != nil {
				return err
			}
			opts, err := a.cfg.CSVOptions()
			if err != nil {
				return err
			}
			if a.cfg.Delimiter == "" {
				opts.Delimiter = guessDelimiter(input, src.Text, opts.Delimiter)
			}
			a.logger.Debug("showing rows",
				zap.String("file", src.Name),
				zap.String("delimiter", csv.DelimiterName(opts.Delimiter)),
				zap.Int("columns", columns))
			return showRows(cmd.OutOrStdout(), src.Text, opts, columns, limit)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&input, "input", "i", "", "file to read")
	fs.IntVarP(&columns, "columns", "c", 0, "field count to select")
	fs.IntVarP(&limit, "limit", "l", 0, "print at most this many lines (0 for all)")
	addDelimiterFlags(fs)
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("columns")
	return cmd
}

// guessDelimiter picks a delimiter from the file name, then from the text,
// and falls back to def.
func guessDelimiter(path, text, def string) string {
	if d, ok := csv.DelimiterForSuffix(path); ok {
		return d
	}
	sample := text
	if len(sample) > 8*1024 {
		sample = sample[:8*1024]
	}
	if d, ok := csv.NewSniffer(sample).DetectDelimiter(); ok {
		return d
	}
	return def
}

// showRows writes the lines of text with exactly columns fields, at most
// limit of them when limit is positive.
func showRows(w io.Writer, text string, opts csv.Options, columns, limit int) error {
	splitter := csv.NewSplitter(opts)
	text = strings.TrimSuffix(strings.TrimSuffix(text, "\n"), "\r")

	shown := 0
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if splitter.Split(line, i+1).Len() != columns {
			continue
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		shown++
		if limit > 0 && shown >= limit {
			break
		}
	}
	if shown == 0 {
		_, err := fmt.Fprintf(w, "No rows with %d columns\n", columns)
		return err
	}
	return nil
}
