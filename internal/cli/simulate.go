package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/sticky/internal/presentation/tui"
	"github.com/aretw0/sticky/pkg/domain"
	"github.com/aretw0/sticky/pkg/loader"
)

// Apply runs one script step and reports what happened.
// A failed transition is reported, not returned; only context errors abort.
func (s *Session) Apply(ctx context.Context, step loader.Step) (tui.Report, error) {
	before := s.Engine.Snapshot()
	s.Trace.ResetSteps()

	var report tui.Report
	if step.Reset != "" {
		report.Title = fmt.Sprintf("reset %s", step.Reset)
		report.Err = s.Engine.Reset(ctx, step.Reset)
	} else {
		report.From = before.Current
		report.To = step.To
		_, report.Err = s.Engine.Transition(ctx, step.To, step.Params, step.Options())
		if e := s.LastEvent(); report.Err == nil && e != nil {
			report.To = e.To
			report.Classifications = e.Classifications
		}
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	after := s.Engine.Snapshot()
	report.Inactive = after.InactiveNames()
	report.Diff = domain.Diff(before, after)
	for _, st := range s.Trace.Steps() {
		report.Steps = append(report.Steps, st.String())
	}
	return report, nil
}

// Run applies every step of script, writing a report per step to w.
// It returns the number of steps that failed.
func (s *Session) Run(ctx context.Context, script *loader.Script, w io.Writer, render func(string) (string, error)) (int, error) {
	failed := 0
	for i, step := range script.Steps {
		report, err := s.Apply(ctx, step)
		if err != nil {
			return failed, err
		}
		if report.Err != nil {
			failed++
			s.Logger.Warn("step failed", "step", i+1, "err", report.Err)
		}
		if report.Title == "" {
			report.Title = fmt.Sprintf("%d. %s → %s", i+1, displayName(report.From), displayName(report.To))
		} else {
			report.Title = fmt.Sprintf("%d. %s", i+1, report.Title)
		}
		if err := report.Write(w, render); err != nil {
			return failed, err
		}
	}
	return failed, nil
}

func displayName(name string) string {
	if name == domain.RootName {
		return "(root)"
	}
	return name
}
