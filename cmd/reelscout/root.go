package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "reelscout",
	Short: "Search Netzkino and keep a watchlist",
	Long: `reelscout - search the Netzkino catalog with TMDB metadata

Queries are matched against Netzkino, cross-referenced by IMDb id
and enriched with titles and posters from TMDB. Movies you like can
be saved to a local watchlist.

Run 'reelscout init' to write a starter config.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "reelscout %s\n", version)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: discovered)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.AddCommand(versionCmd)

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("reelscout {{.Version}}\n")
}
