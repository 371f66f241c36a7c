package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vmunix/reelscout/internal/watchlist"
)

const searchTimeout = time.Minute

var searchCmd = &cobra.Command{
	Use:   "search [flags] <query>...",
	Short: "Search the catalog",
	Long: `Search the Netzkino catalog and show TMDB metadata for each match.

Examples:
  reelscout search Godzilla
  reelscout search "Nosferatu" --add 1
  reelscout search alien --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearchCmd,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().Int("add", 0, "Toggle result N on the watchlist")
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	addIndex, _ := cmd.Flags().GetInt("add")

	ctx, cancel := context.WithTimeout(cmd.Context(), searchTimeout)
	defer cancel()

	a, err := setup(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	a.pipeline.Submit(query)
	s, err := a.pipeline.WaitSettled(ctx)
	if err != nil {
		return fmt.Errorf("search %q: %w", query, err)
	}

	out := cmd.OutOrStdout()
	if addIndex > 0 {
		results := s.Results()
		if addIndex > len(results) {
			return fmt.Errorf("no result %d (have %d)", addIndex, len(results))
		}
		id := results[addIndex-1].ID
		change, err := a.watchlist.Toggle(ctx, id, s)
		if errors.Is(err, watchlist.ErrMetadataNotFound) {
			return fmt.Errorf("%s has no metadata, not added", id)
		}
		if err != nil {
			return err
		}
		if !jsonOutput {
			fmt.Fprintf(out, "%s: %s\n\n", change, id)
		}
	}

	if jsonOutput {
		printJSON(out, toSearchJSON(s, a.renderer, a.watchlist.Contains))
	} else {
		a.renderer.State(out, s, a.watchlist.Contains)
	}

	if err := s.Err(); err != nil {
		return err
	}
	return nil
}
