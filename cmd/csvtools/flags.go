package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lyrasis/csv-data-tools/internal/batch"
	"github.com/lyrasis/csv-data-tools/internal/config"
	"github.com/lyrasis/csv-data-tools/pkg/csv"
)

// addDelimiterFlags registers the flags shared by every command that reads
// delimited files.
func addDelimiterFlags(fs *pflag.FlagSet) {
	fs.StringP("delimiter", "d", "", "delimiter name: "+strings.Join(csv.DelimiterNames(), ", "))
	fs.String("markers", "", "marker style for recovered breaks: sentinel or plain")
	fs.Bool("strip-plus", false, "clean fields: collapse space runs, drop a trailing comma and edge break markers, empty NULL")
	fs.String("leading-field", "", "pattern a record's first field must match")
}

// applyFlags copies every flag the user set over cfg. An unknown delimiter
// name fails here, before any file is opened.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()

	if fs.Changed("delimiter") {
		name, _ := fs.GetString("delimiter")
		if _, err := csv.DelimiterByName(name); err != nil {
			return err
		}
		cfg.Delimiter = strings.ToLower(strings.TrimSpace(name))
	}
	if fs.Changed("suffix") {
		cfg.Suffix, _ = fs.GetString("suffix")
	}
	if fs.Changed("markers") {
		name, _ := fs.GetString("markers")
		if _, err := csv.ParseMarkerStyle(name); err != nil {
			return err
		}
		cfg.Markers = strings.ToLower(name)
	}
	if fs.Changed("examples") {
		cfg.ExampleLimit, _ = fs.GetInt("examples")
	}
	if fs.Changed("strip-plus") {
		cfg.StripPlus, _ = fs.GetBool("strip-plus")
	}
	if fs.Changed("strict-quotes") {
		cfg.StrictQuotes, _ = fs.GetBool("strict-quotes")
	}
	if fs.Changed("leading-field") {
		cfg.LeadingField, _ = fs.GetString("leading-field")
	}
	return nil
}

// batchConfig builds the runner configuration for a directory command.
func (a *app) batchConfig() (batch.Config, error) {
	opts, err := a.cfg.CSVOptions()
	if err != nil {
		return batch.Config{}, err
	}
	return batch.Config{
		Suffix:         a.cfg.Suffix,
		Options:        opts,
		SniffDelimiter: !a.cfg.DelimiterExplicit(),
		Workers:        a.cfg.Workers,
	}, nil
}

// emitTable writes t to path, or to out when path is empty.
func emitTable(ctx context.Context, out io.Writer, path string, t csv.Table) error {
	if path != "" {
		if err := batch.WriteTable(ctx, path, t); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		return nil
	}
	data, err := t.Render(csv.DefaultWriterOptions())
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
