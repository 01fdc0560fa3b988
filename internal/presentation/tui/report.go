package tui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aretw0/sticky/pkg/domain"
	"github.com/muesli/termenv"
)

// Report summarises one transition for display.
type Report struct {
	Title           string
	From            string
	To              string
	Classifications map[string]domain.Classification
	Inactive        []string
	Steps           []string
	Diff            *domain.SnapshotDiff
	Err             error
}

// Markdown renders the report as a markdown document.
func (r Report) Markdown() string {
	var sb strings.Builder

	title := r.Title
	if title == "" {
		title = fmt.Sprintf("%s → %s", displayName(r.From), displayName(r.To))
	}
	fmt.Fprintf(&sb, "## %s\n\n", title)

	if r.Err != nil {
		fmt.Fprintf(&sb, "> **failed:** %v\n\n", r.Err)
	}

	if len(r.Classifications) > 0 {
		sb.WriteString("| State | Classification |\n|---|---|\n")
		for _, name := range sortedKeys(r.Classifications) {
			fmt.Fprintf(&sb, "| `%s` | %s |\n", displayName(name), r.Classifications[name])
		}
		sb.WriteString("\n")
	}

	if len(r.Steps) > 0 {
		sb.WriteString("**Engine steps**\n\n")
		for i, step := range r.Steps {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
		}
		sb.WriteString("\n")
	}

	if len(r.Inactive) > 0 {
		fmt.Fprintf(&sb, "**Inactive:** %s\n\n", codeList(r.Inactive))
	} else {
		sb.WriteString("**Inactive:** none\n\n")
	}

	if r.Diff != nil {
		writeDiffLine(&sb, "Activated", r.Diff.Activated)
		writeDiffLine(&sb, "Deactivated", r.Diff.Deactivated)
		writeDiffLine(&sb, "Inactivated", r.Diff.Inactivated)
		writeDiffLine(&sb, "Released", r.Diff.Released)
	}

	return sb.String()
}

// Write renders the report with render and writes it to w.
func (r Report) Write(w io.Writer, render func(string) (string, error)) error {
	out, err := render(r.Markdown())
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// Colorize paints a classification for terminal output.
func Colorize(out *termenv.Output, c domain.Classification) termenv.Style {
	s := out.String(string(c))
	switch c {
	case domain.ClassEnter:
		return s.Foreground(out.Color("#22c55e"))
	case domain.ClassExit:
		return s.Foreground(out.Color("#ef4444"))
	case domain.ClassInactivate:
		return s.Foreground(out.Color("#a78bfa")).Italic()
	case domain.ClassReactivate:
		return s.Foreground(out.Color("#38bdf8")).Bold()
	case domain.ClassUpdateParams:
		return s.Foreground(out.Color("#f59e0b"))
	default:
		return s.Faint()
	}
}

// WriteClassifications prints one coloured line per classified state.
func WriteClassifications(w io.Writer, classes map[string]domain.Classification) {
	out := termenv.NewOutput(w)
	for _, name := range sortedKeys(classes) {
		fmt.Fprintf(w, "  %-28s %s\n", displayName(name), Colorize(out, classes[name]))
	}
}

func writeDiffLine(sb *strings.Builder, label string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(sb, "- %s: %s\n", label, codeList(names))
}

func codeList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "`" + displayName(n) + "`"
	}
	return strings.Join(quoted, ", ")
}

func displayName(name string) string {
	if name == domain.RootName {
		return "(root)"
	}
	return name
}

func sortedKeys(m map[string]domain.Classification) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
