package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/sketchtrail/pkg/domain"
	"github.com/aretw0/sketchtrail/pkg/provenance"
)

// GraphOverlay contains session data to highlight on the graph.
type GraphOverlay struct {
	// VisitedNodes is usually the path from the root to the current node.
	VisitedNodes []string
	CurrentNode  string
}

// GenerateMermaid produces a Mermaid flowchart of a provenance graph.
// Shapes follow node kind:
// - Root: ((Circle))
// - Durable: [Rectangle]
// - Ephemeral: (Rounded)
// Undo and redo nodes get a dotted edge to the node they restored.
func GenerateMermaid(nodes []domain.HistoryNode, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		label := node.MutatorName
		switch {
		case node.IsRoot():
			opener, closer = "((", "))"
			label = "root"
		case node.Kind == domain.KindEphemeral:
			opener, closer = "(", ")"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s <br/> %s\"%s\n", safeID, opener, label, shortID(node.ID), closer))

		if node.ParentID != "" {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", sanitizeMermaidID(node.ParentID), safeID))
		}
		if target, ok := provenance.NavigationTarget(node); ok {
			sb.WriteString(fmt.Sprintf("    %s -. %s .-> %s\n", safeID, node.MutatorName, sanitizeMermaidID(target)))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentNode != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode)))
		}
	}

	return sb.String()
}

// shortID keeps the tail of long IDs; UUIDv7 prefixes are time-ordered and
// look alike within a session.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return "n_" + s
}
