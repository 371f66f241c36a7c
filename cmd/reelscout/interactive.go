package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vmunix/reelscout/internal/session"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"i"},
	Short:   "Search as you type",
	Long: `Start an interactive prompt. Each line is a search; results
refresh as metadata arrives. Use /add N to save a result.

Set log.file in the config to keep log output off the terminal.`,
	Args: cobra.NoArgs,
	RunE: runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	r := session.NewRunner(a.pipeline, a.watchlist, a.bus, a.renderer,
		cmd.InOrStdin(), cmd.OutOrStdout(), a.logger.With("component", "session"))

	if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
