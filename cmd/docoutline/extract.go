package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

func extractCmd(a *app) *cobra.Command {
	var out string
	var tree bool

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the outline of one document as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := a.extractor().ExtractFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}

			if err := writeExtraction(w, ex, tree); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			if out != "" {
				a.log.Info("outline written", "output", out, "headings", len(ex.Result.Outline))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write JSON to this file instead of stdout")
	cmd.Flags().BoolVar(&tree, "tree", false, "nest headings into a tree")
	return cmd
}

func writeExtraction(w io.Writer, ex *pipeline.Extraction, tree bool) error {
	if tree {
		return pipeline.WriteJSON(w, doctree.Build(ex.Result))
	}
	return pipeline.WriteResult(w, ex.Result)
}
