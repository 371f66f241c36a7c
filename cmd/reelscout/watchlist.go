package main

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/spf13/cobra"
	"github.com/vmunix/reelscout/internal/watchlist"
	"github.com/vmunix/reelscout/pkg/titlematch"
)

var imdbIDPattern = regexp.MustCompile(`^tt\d+$`)

var watchlistCmd = &cobra.Command{
	Use:     "watchlist",
	Aliases: []string{"wl"},
	Short:   "Manage saved movies",
}

var watchlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the watchlist",
	Args:  cobra.NoArgs,
	RunE:  runWatchlistList,
}

var watchlistToggleCmd = &cobra.Command{
	Use:   "toggle <imdb-id>",
	Short: "Add a movie by IMDb id, or remove it if already saved",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatchlistToggle,
}

var watchlistRemoveCmd = &cobra.Command{
	Use:   "remove <imdb-id|title>",
	Short: "Remove a movie by IMDb id or title",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatchlistRemove,
}

func init() {
	rootCmd.AddCommand(watchlistCmd)
	watchlistCmd.AddCommand(watchlistListCmd, watchlistToggleCmd, watchlistRemoveCmd)
}

func runWatchlistList(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	entries := a.watchlist.Entries()
	if jsonOutput {
		if entries == nil {
			entries = []watchlist.Entry{}
		}
		printJSON(cmd.OutOrStdout(), entries)
		return nil
	}
	a.renderer.Watchlist(cmd.OutOrStdout(), entries)
	return nil
}

func runWatchlistToggle(cmd *cobra.Command, args []string) error {
	id := args[0]
	if !imdbIDPattern.MatchString(id) {
		return fmt.Errorf("%q is not an IMDb id", id)
	}

	ctx := cmd.Context()
	a, err := setup(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	var src watchlist.Lookup
	if !a.watchlist.Contains(id) {
		movies, err := a.resolver.Resolve(ctx, []string{id})
		if err != nil {
			return fmt.Errorf("resolve %s: %w", id, err)
		}
		src = movies
	}

	change, err := a.watchlist.Toggle(ctx, id, src)
	if errors.Is(err, watchlist.ErrMetadataNotFound) {
		return fmt.Errorf("TMDB has no movie for %s", id)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", change, id)
	return nil
}

func runWatchlistRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := setup(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	target := args[0]
	id := target
	if !imdbIDPattern.MatchString(target) {
		entry, match, ok := a.watchlist.Find(target)
		if !ok || match.Confidence < titlematch.ConfidenceMedium {
			return fmt.Errorf("%w: %q", watchlist.ErrNotFound, target)
		}
		id = entry.ID
		a.logger.Debug("matched watchlist title", "query", target, "title", entry.Title, "score", match.Score)
	}

	if err := a.watchlist.Remove(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed: %s\n", id)
	return nil
}
