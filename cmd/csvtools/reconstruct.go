package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lyrasis/csv-data-tools/internal/batch"
)

func newReconstructCmd(a *app) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "reconstruct",
		Short: "Repair the row structure of every matching file in a directory",
		Long: `Rebuilds rows whose line breaks were damaged on export and writes one
repaired file per input as NAME_l.SUFFIX in the output directory, plus a
file_report.csv describing each file's encoding, line endings and field
counts.`,
		Example: `  csvtools reconstruct -i exports -o repaired -s psv
  csvtools reconstruct -i exports -o repaired -s txt -d pipe --markers plain`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.batchConfig()
			if err != nil {
				return err
			}
			runner := batch.NewRunner(cfg, a.logger)

			results, err := runner.Reconstruct(cmd.Context(), input, output)
			if err != nil {
				return err
			}

			reportPath := filepath.Join(output, batch.FileReportName)
			if err := batch.WriteTable(cmd.Context(), reportPath, batch.FileReportTable(results)); err != nil {
				return fmt.Errorf("write %s: %w", reportPath, err)
			}
			a.logger.Info("report written", zap.String("path", reportPath), zap.String("run_id", runner.RunID()))
			fmt.Fprintf(cmd.OutOrStdout(), "Reconstructed %d files into %s\n", len(results), output)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&input, "input", "i", "", "directory of exports")
	fs.StringVarP(&output, "output", "o", "", "directory for repaired files")
	fs.StringP("suffix", "s", "", "suffix of the files to process")
	addDelimiterFlags(fs)
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
