package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/sketchtrail"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of sketchtrail",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sketchtrail version %s\n", strings.TrimSpace(sketchtrail.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
