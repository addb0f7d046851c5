package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newConfigCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print or save the effective configuration",
		Long: `Prints the configuration csvtools would run with, after defaults, the
--config file, .env, CSVTOOLS_* variables and global flags are applied.
With -o the YAML is written to a file that --config can read back.`,
		Example: `  csvtools config
  csvtools --workers 4 config -o csvtools.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" {
				if err := a.cfg.Save(output); err != nil {
					return err
				}
				a.logger.Info("config written", zap.String("path", output))
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
				return nil
			}
			data, err := a.cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the YAML to this file")
	return cmd
}
