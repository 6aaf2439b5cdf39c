// manualctl inspects and queries the shop manual from a terminal.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	manualPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "manualctl",
	Short: "Inspect and query the shop manual index",
	Long: `manualctl splits the shop manual the same way the server does,
shows the resulting chunks, and runs retrieval or full answers against it.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&manualPath, "manual", "m", "", "manual file (default: MANUAL_PATH or ./data/manual.txt)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolveManualPath() string {
	if manualPath != "" {
		return manualPath
	}
	if p := os.Getenv("MANUAL_PATH"); p != "" {
		return p
	}
	return "./data/manual.txt"
}
