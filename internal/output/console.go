// Package output renders run summaries to the terminal.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/bizobs/journeyload/internal/collector"
)

// Console prints the end-of-run summary derived from the Result Aggregator.
type Console struct {
	writer  io.Writer
	noColor bool
}

// NewConsole creates a console writer. Colors are disabled automatically when
// the writer is not a terminal.
func NewConsole(w io.Writer, noColor bool) *Console {
	if !noColor {
		if f, ok := w.(*os.File); ok {
			if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
				noColor = true
			}
		}
	}
	return &Console{writer: w, noColor: noColor}
}

// PrintSummary renders the per-step and per-journey results.
func (c *Console) PrintSummary(testName string, s collector.Summary) {
	header := color.New(color.FgCyan, color.Bold)
	pass := color.New(color.FgGreen)
	fail := color.New(color.FgRed, color.Bold)
	dim := color.New(color.Faint)
	if c.noColor {
		header.DisableColor()
		pass.DisableColor()
		fail.DisableColor()
		dim.DisableColor()
	}

	fmt.Fprintln(c.writer)
	header.Fprintf(c.writer, "%s\n", testName)
	dim.Fprintf(c.writer, "%s\n", strings.Repeat("=", len(testName)))

	fmt.Fprintf(c.writer, "Journeys:   %d total, ", s.Journeys)
	pass.Fprintf(c.writer, "%d passed", s.Passed)
	fmt.Fprint(c.writer, ", ")
	if s.Failed > 0 {
		fail.Fprintf(c.writer, "%d failed", s.Failed)
	} else {
		fmt.Fprintf(c.writer, "%d failed", s.Failed)
	}
	fmt.Fprintf(c.writer, " (%.1f%% pass rate)\n", s.PassRate*100)

	fmt.Fprintf(c.writer, "Duration:   p50=%s p95=%s max=%s (wall clock %s)\n",
		s.JourneyP50, s.JourneyP95, s.JourneyMax, s.WallClock.Round(time.Millisecond))

	if len(s.Steps) == 0 {
		return
	}

	fmt.Fprintln(c.writer)
	header.Fprintln(c.writer, "Steps")
	for _, step := range s.Steps {
		outcome := pass
		mark := "✓"
		if step.Failed > 0 {
			outcome = fail
			mark = "✗"
		}
		outcome.Fprintf(c.writer, "  %s %-28s", mark, step.StepName)
		fmt.Fprintf(c.writer, " %5d runs  %4d failed  p50=%-8s p95=%-8s max=%s\n",
			step.Count, step.Failed, step.P50, step.P95, step.Max)
	}
}
