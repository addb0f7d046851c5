package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lyrasis/csv-data-tools/internal/batch"
)

func newCheckCmd(a *app) *cobra.Command {
	var (
		input, output string
		reconstruct   bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report rows whose field count differs from the header",
		Long: `Reads every matching file in a directory as delimited text and compares
each row's field count with the header's. Files whose rows all match get one
"y" line; ragged files get a summary line and one line per anomalous field
count listing example row numbers (the header is row 1).

Without -o the report is printed to standard output.

Files are read quote-aware unless --reconstruct is set. Output written with
--markers plain keeps literal quotes, so check it with --reconstruct.`,
		Example: `  csvtools check -i repaired -s psv -o structure.csv
  csvtools check -i exports -s txt --reconstruct --examples 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.batchConfig()
			if err != nil {
				return err
			}
			cfg.Reconstruct = reconstruct
			runner := batch.NewRunner(cfg, a.logger)

			reports, err := runner.Check(cmd.Context(), input)
			if err != nil {
				return err
			}
			if err := emitTable(cmd.Context(), cmd.OutOrStdout(), output, batch.CheckTable(reports)); err != nil {
				return err
			}
			if output != "" {
				a.logger.Info("report written", zap.String("path", output), zap.String("run_id", runner.RunID()))
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&input, "input", "i", "", "directory of files to check")
	fs.StringVarP(&output, "output", "o", "", "report file (default stdout)")
	fs.StringP("suffix", "s", "", "suffix of the files to check")
	fs.Int("examples", 0, "example rows kept per anomalous field count (default 3)")
	fs.Bool("strict-quotes", false, "fail a file on stray or unclosed quotes")
	fs.BoolVar(&reconstruct, "reconstruct", false, "repair each file before checking it")
	addDelimiterFlags(fs)
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
