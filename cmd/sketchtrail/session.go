package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/sketchtrail"
	"github.com/aretw0/sketchtrail/internal/cli"
	"github.com/aretw0/sketchtrail/internal/presentation/graph"
	"github.com/aretw0/sketchtrail/internal/presentation/tui"
	"github.com/aretw0/sketchtrail/pkg/domain"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persisted sessions",
	Long:  `List, inspect, export, import and remove sessions in the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		sessions, err := rt.Service.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No sessions found.")
			return nil
		}
		fmt.Fprintln(out, "Sessions:")
		for _, s := range sessions {
			fmt.Fprintln(out, "- "+s)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the history of a session",
	Long: `Prints the history of a session.
Formats: md (default, styled on a terminal), json (the stored graph), mermaid (flowchart).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]
		format, _ := cmd.Flags().GetString("format")

		rt, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		out := cmd.OutOrStdout()
		if format == "json" {
			sg, err := rt.Service.Export(cmd.Context(), sessionID)
			if err != nil {
				return fmt.Errorf("error loading session '%s': %w", sessionID, err)
			}
			return writeJSON(out, sg)
		}

		return rt.Service.View(cmd.Context(), sessionID, func(sess *sketchtrail.Session) error {
			g := sess.Graph()
			switch format {
			case "mermaid":
				path, err := g.Path(g.CurrentID())
				if err != nil {
					return err
				}
				visited := make([]string, len(path))
				for i, n := range path {
					visited[i] = n.ID
				}
				_, err = io.WriteString(out, graph.GenerateMermaid(sess.History(), &graph.GraphOverlay{
					VisitedNodes: visited,
					CurrentNode:  g.CurrentID(),
				}))
				return err
			case "md", "":
				strokes, err := sess.CurrentStrokes()
				if err != nil {
					return err
				}
				return tui.Print(out, tui.HistoryMarkdown(tui.Summary{
					SessionID: sessionID,
					CurrentID: g.CurrentID(),
					Strokes:   len(strokes),
					CanUndo:   sess.CanUndo(),
					CanRedo:   sess.CanRedo(),
				}, sess.History()))
			default:
				return fmt.Errorf("unknown format %q. Supported: md, json, mermaid", format)
			}
		})
	},
}

var sessionExportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Write the provenance graph of a session as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		rt, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		sg, err := rt.Service.Export(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if output == "" || output == "-" {
			return writeJSON(cmd.OutOrStdout(), sg)
		}
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		if err := writeJSON(f, sg); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	},
}

var sessionImportCmd = &cobra.Command{
	Use:   "import <session-id> <file>",
	Short: "Store a provenance graph as a session",
	Long:  `Validates an exported graph and stores it, replacing any session with the same ID.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, path := args[0], args[1]

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var sg domain.SerializedGraph
		if err := json.Unmarshal(data, &sg); err != nil {
			return fmt.Errorf("invalid graph file: %w", err)
		}

		rt, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.Service.Import(cmd.Context(), sessionID, &sg); err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.OutOrStdout(), "Imported session '%s' (%d nodes)", sessionID, len(sg.Nodes))
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if !all && len(args) == 0 {
			return errors.New("requires at least one session ID or --all")
		}

		rt, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if all {
			if args, err = rt.Service.List(cmd.Context()); err != nil {
				return err
			}
		}

		var errs []error
		for _, sessionID := range args {
			if err := rt.Service.Delete(cmd.Context(), sessionID); err != nil {
				errs = append(errs, fmt.Errorf("error removing '%s': %w", sessionID, err))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", sessionID)
		}
		return errors.Join(errs...)
	},
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionExportCmd)
	sessionCmd.AddCommand(sessionImportCmd)
	sessionCmd.AddCommand(sessionRmCmd)

	sessionInspectCmd.Flags().StringP("format", "f", "md", "Output format: md, json or mermaid")
	sessionExportCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	sessionRmCmd.Flags().Bool("all", false, "Remove every stored session")
}
