package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/sketchtrail/internal/cli"
	"github.com/aretw0/sketchtrail/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "sketchtrail",
	Short: "sketchtrail records drawing sessions as a provenance graph",
	Long: `sketchtrail keeps the full history of a drawing surface as an append-only graph.
Every pointer event, clear, undo and redo becomes a node, so any past state can be
rebuilt and a session resumes exactly where it stopped.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Configuration file (default sketchtrail.yaml)")
	rootCmd.PersistentFlags().String("dir", "", "Session directory for the file store (overrides config)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
}

// loadRuntime reads the configuration named by the persistent flags and opens the store.
func loadRuntime(cmd *cobra.Command) (*cli.Runtime, error) {
	path, _ := cmd.Flags().GetString("config")
	dir, _ := cmd.Flags().GetString("dir")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if dir != "" {
		cfg.Store.Path = dir
	}
	return cli.NewRuntime(cfg, cli.NewLogger(debug))
}
