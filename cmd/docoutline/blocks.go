package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/parser"
)

func blocksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "blocks <file>",
		Short: "Dump the text blocks of a document as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			p, err := parser.ForFile(path, a.cfg.ParserOptions(a.log))
			if err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer f.Close()

			blocks, err := p.Parse(f, filepath.Base(path))
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
			return parser.WriteCSV(cmd.OutOrStdout(), blocks)
		},
	}
}
