package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/sketchtrail"
	"github.com/aretw0/sketchtrail/internal/cli"
	"github.com/aretw0/sketchtrail/internal/render"
	"github.com/aretw0/sketchtrail/pkg/domain"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <session-id>",
	Short: "Render a session to PNG",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		at, _ := cmd.Flags().GetString("at")

		rt, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		opts := render.Options{
			Width:      rt.Config.Render.Width,
			Height:     rt.Config.Render.Height,
			Background: rt.Config.Render.Background,
		}
		if cmd.Flags().Changed("width") {
			opts.Width, _ = cmd.Flags().GetInt("width")
		}
		if cmd.Flags().Changed("height") {
			opts.Height, _ = cmd.Flags().GetInt("height")
		}

		var strokes []domain.Stroke
		err = rt.Service.View(cmd.Context(), args[0], func(sess *sketchtrail.Session) error {
			if at == "" {
				var err error
				strokes, err = sess.CurrentStrokes()
				return err
			}
			state, err := sess.ResolveAt(at)
			strokes = state.Strokes
			return err
		})
		if err != nil {
			return err
		}

		f, err := os.Create(output)
		if err != nil {
			return err
		}
		if err := render.PNG(f, strokes, opts); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.OutOrStdout(), "Wrote %s (%d strokes)", output, len(strokes))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().StringP("output", "o", "snapshot.png", "Output PNG file")
	snapshotCmd.Flags().String("at", "", "Node ID to render instead of the current node")
	snapshotCmd.Flags().Int("width", 0, "Canvas width (overrides config)")
	snapshotCmd.Flags().Int("height", 0, "Canvas height (overrides config)")
}
