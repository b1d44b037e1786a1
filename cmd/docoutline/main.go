package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// app carries what every subcommand needs once the persistent flags have
// been applied.
type app struct {
	cfg config.Config
	log *slog.Logger

	logLevel string
	engine   string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "docoutline",
		Short:         "Extract a title and H1-H4 outline from documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug|info|warn|error (default from LOG_LEVEL)")
	root.PersistentFlags().StringVar(&a.engine, "engine", "", "primary PDF engine (default from PDF_ENGINE)")

	root.AddCommand(extractCmd(a), batchCmd(a), blocksCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	a.cfg = config.Load()
	if a.logLevel != "" {
		lvl, err := config.ParseLevel(a.logLevel)
		if err != nil {
			return err
		}
		a.cfg.LogLevel = lvl
	}
	if a.engine != "" {
		a.cfg.PDFEngine = a.engine
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	// Logs go to stderr so stdout stays clean for results.
	a.log = slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: a.cfg.LogLevel}))
	return nil
}

func (a *app) extractor() *pipeline.Extractor {
	return pipeline.NewExtractor(a.cfg.ParserOptions(a.log), a.cfg.ResultCacheTTL, a.log)
}
