package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/sketchtrail"
)

var replayCmd = &cobra.Command{
	Use:   "replay <session-id>",
	Short: "Rebuild the states of a session",
	Long: `Walks the path from the root to the current node and prints the number of strokes
after each step. With --at, prints the full drawing state at that node as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		at, _ := cmd.Flags().GetString("at")

		rt, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		out := cmd.OutOrStdout()
		return rt.Service.View(cmd.Context(), args[0], func(sess *sketchtrail.Session) error {
			if at != "" {
				state, err := sess.ResolveAt(at)
				if err != nil {
					return err
				}
				return writeJSON(out, state)
			}

			g := sess.Graph()
			path, err := g.Path(g.CurrentID())
			if err != nil {
				return err
			}
			for i, n := range path {
				state, err := sess.ResolveAt(n.ID)
				if err != nil {
					return err
				}
				action := n.MutatorName
				if n.IsRoot() {
					action = "root"
				}
				fmt.Fprintf(out, "%3d  %-36s  %-9s  %-8s  strokes=%d\n", i, n.ID, n.Kind, action, len(state.Strokes))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().String("at", "", "Node ID to resolve")
}
