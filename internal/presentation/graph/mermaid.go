package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/sticky/pkg/domain"
)

// GraphOverlay contains registry data to visualize on the graph.
type GraphOverlay struct {
	Active   []string
	Inactive []string
	Current  string
}

// OverlayFromSnapshot builds an overlay from a registry snapshot.
func OverlayFromSnapshot(snap *domain.Snapshot) *GraphOverlay {
	if snap == nil {
		return nil
	}
	return &GraphOverlay{
		Active:   snap.Active,
		Inactive: snap.InactiveNames(),
		Current:  snap.Current,
	}
}

// GenerateMermaid produces a Mermaid flowchart of the state hierarchy.
// It applies semantic styling:
// - Root: ((Circle))
// - Sticky: ([Stadium])
// - Deep sticky: [[Subroutine]]
// - Default: [Rectangle]
// It also applies overlay styles (Active/Inactive/Current) if provided.
func GenerateMermaid(states []*domain.State, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    root((\"(root)\"))\n")

	for _, s := range states {
		if s.IsRoot() {
			continue
		}
		safeID := sanitizeMermaidID(s.Name)

		opener, closer := "[", "]"
		switch {
		case s.DeepSticky:
			opener, closer = "[[", "]]"
		case s.Sticky:
			opener, closer = "([", "])"
		}

		label := s.ShortName()
		if len(s.Params) > 0 {
			label = fmt.Sprintf("%s <br/> %s", label, strings.Join(s.Params, ", "))
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		arrow := "-->"
		if s.IsSticky() {
			arrow = "-.->"
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(s.Parent.Name), arrow, safeID))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef active fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef inactive fill:#eeeeee,stroke:#9e9e9e,stroke-width:2px,stroke-dasharray:5 5,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		writeClass(&sb, overlay.Active, "active", overlay.Current)
		writeClass(&sb, overlay.Inactive, "inactive", "")
		if overlay.Current != domain.RootName {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.Current)))
		}
	}

	return sb.String()
}

func writeClass(sb *strings.Builder, names []string, class, skip string) {
	seen := make(map[string]bool)
	for _, name := range names {
		if name == domain.RootName || name == skip {
			continue
		}
		safeID := sanitizeMermaidID(name)
		if !seen[safeID] {
			seen[safeID] = true
			sb.WriteString(fmt.Sprintf("    class %s %s;\n", safeID, class))
		}
	}
}

func sanitizeMermaidID(id string) string {
	if id == domain.RootName {
		return "root"
	}
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return "s_" + s
}
