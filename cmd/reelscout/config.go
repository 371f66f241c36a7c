package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vmunix/reelscout/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates config.toml syntax, required fields, and environment variable substitution without contacting any service.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configTestCmd)
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	path := configPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		found, err := config.Discover()
		if err != nil {
			return err
		}
		path = found
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var configErr *config.Error
		if errors.As(err, &configErr) {
			printConfigErrors(out, configErr)
			if parsed, perr := config.LoadWithoutValidation(path); perr == nil {
				fmt.Fprintln(out, "Parsed as:")
				printConfigSummary(out, parsed)
			}
			return fmt.Errorf("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(out, cfg)
	fmt.Fprintln(out, "\nConfiguration valid!")
	return nil
}

func printConfigErrors(w io.Writer, e *config.Error) {
	if len(e.Missing) > 0 {
		fmt.Fprintln(w, "Missing environment variables:")
		for _, m := range e.Missing {
			fmt.Fprintf(w, "  - %s\n", m)
		}
		fmt.Fprintln(w)
	}

	if len(e.Errors) > 0 {
		fmt.Fprintln(w, "Validation errors:")
		for _, err := range e.Errors {
			fmt.Fprintf(w, "  - %s\n", err)
		}
		fmt.Fprintln(w)
	}
}

func printConfigSummary(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Configuration Summary:")
	fmt.Fprintf(w, "  Catalog:    %s (device %s)\n", cfg.Catalog.URL, cfg.Catalog.Device)
	fmt.Fprintf(w, "  TMDB:       %s (language %s, %g req/s, %d parallel)\n",
		cfg.TMDB.URL, cfg.TMDB.Language, cfg.TMDB.RequestsPerSecond, cfg.TMDB.Concurrency)
	fmt.Fprintf(w, "  Debounce:   %s\n", cfg.Search.Debounce)
	if cfg.Storage.Driver == config.DriverMemory {
		fmt.Fprintln(w, "  Watchlist:  memory (not persisted)")
	} else {
		fmt.Fprintf(w, "  Watchlist:  %s at %s\n", cfg.Storage.Driver, cfg.Storage.Path)
	}
	logTo := "stderr"
	if cfg.Log.File != "" {
		logTo = cfg.Log.File
	}
	fmt.Fprintf(w, "  Log:        %s (%s)\n", cfg.Log.Level, logTo)
}
