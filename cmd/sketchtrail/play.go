package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/sketchtrail/internal/cli"
	"github.com/aretw0/sketchtrail/pkg/runner"
)

var playCmd = &cobra.Command{
	Use:   "play <session-id>",
	Short: "Apply JSON-Lines input events to a session",
	Long: `Reads one event per line from stdin and writes the session view after each one.

Example input:
  {"type":"pointer_down","x":10,"y":10}
  {"type":"pointer_move","x":40,"y":25}
  {"type":"pointer_up"}
  {"type":"undo"}`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		r := runner.New(rt.Service, runner.WithLogger(rt.Logger))
		return r.Run(ctx, args[0], runner.NewJSONHandler(cmd.InOrStdin(), cmd.OutOrStdout()))
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
}
