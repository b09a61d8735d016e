// Package tui formats sessions for the terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/sketchtrail/pkg/domain"
	"github.com/aretw0/sketchtrail/pkg/provenance"
)

// Summary describes a session for HistoryMarkdown.
type Summary struct {
	SessionID string
	CurrentID string
	Strokes   int
	CanUndo   bool
	CanRedo   bool
}

// HistoryMarkdown renders a session summary and its nodes as a markdown table.
func HistoryMarkdown(sum Summary, nodes []domain.HistoryNode) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Session `%s`\n\n", sum.SessionID)
	fmt.Fprintf(&sb, "- **Nodes:** %d\n", len(nodes))
	fmt.Fprintf(&sb, "- **Strokes:** %d\n", sum.Strokes)
	fmt.Fprintf(&sb, "- **Undo:** %s, **Redo:** %s\n\n", yesNo(sum.CanUndo), yesNo(sum.CanRedo))

	sb.WriteString("| | Time | Node | Kind | Action | Detail |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for _, n := range nodes {
		marker := ""
		if n.ID == sum.CurrentID {
			marker = "▶"
		}
		action := n.MutatorName
		if n.IsRoot() {
			action = "root"
		}
		fmt.Fprintf(&sb, "| %s | %s | `%s` | %s | %s | %s |\n",
			marker,
			n.Timestamp.Format("15:04:05.000"),
			n.ID,
			n.Kind,
			action,
			detail(n),
		)
	}
	return sb.String()
}

func detail(n domain.HistoryNode) string {
	if target, ok := provenance.NavigationTarget(n); ok {
		return fmt.Sprintf("→ `%s`", target)
	}
	if p, ok := n.Parameters["point"].(map[string]any); ok {
		return fmt.Sprintf("(%v, %v)", p["x"], p["y"])
	}
	if pts, ok := n.Parameters["points"].([]any); ok {
		return fmt.Sprintf("%d points", len(pts))
	}
	return ""
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
