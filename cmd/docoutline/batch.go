package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/pipeline"
)

func batchCmd(a *app) *cobra.Command {
	var in, out string
	var workers int

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Write <name>.json for every supported file in a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in == "" {
				in = a.cfg.InputDir
			}
			if out == "" {
				out = a.cfg.OutputDir
			}
			if workers <= 0 {
				workers = a.cfg.BatchWorkers
			}

			report, err := pipeline.RunBatch(cmd.Context(), a.extractor(), in, out, workers, a.log)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, f := range report.Files {
				if f.Error != "" {
					fmt.Fprintf(w, "FAIL %s: %s\n", f.Input, f.Error)
					continue
				}
				fmt.Fprintf(w, "ok   %s -> %s (%d headings)\n", f.Input, f.Output, f.Headings)
			}
			if n := report.Failed(); n > 0 {
				return fmt.Errorf("%d of %d files failed", n, len(report.Files))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "input directory (default from INPUT_DIR)")
	cmd.Flags().StringVar(&out, "out", "", "output directory (default from OUTPUT_DIR)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel files (default from BATCH_WORKERS)")
	return cmd
}
