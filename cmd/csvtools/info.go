package main

import (
	"github.com/spf13/cobra"

	"github.com/lyrasis/csv-data-tools/internal/batch"
)

func newInfoCmd(a *app) *cobra.Command {
	var (
		input, output string
		minSize       int64
	)

	cmd := &cobra.Command{
		Use:   "info",
		Short: "List size, type, encoding and line endings of each file",
		Example: `  csvtools info -i exports -s txt
  csvtools info -i exports -m 1024 -o info.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.batchConfig()
			if err != nil {
				return err
			}
			cfg.MinSize = minSize
			results, err := batch.NewRunner(cfg, a.logger).Info(cmd.Context(), input)
			if err != nil {
				return err
			}
			return emitTable(cmd.Context(), cmd.OutOrStdout(), output, batch.InfoTable(results))
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&input, "input", "i", "", "directory to inspect")
	fs.StringVarP(&output, "output", "o", "", "report file (default stdout)")
	fs.StringP("suffix", "s", "", "suffix of the files to inspect (default all)")
	fs.Int64VarP(&minSize, "min-size", "m", 0, "skip files smaller than this many bytes")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
