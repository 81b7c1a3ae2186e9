// Package report renders per-file patch outcomes and the run summary.
package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/muesli/termenv"

	"github.com/unipatch/unipatch/pkg/patch"
)

var (
	okColor   = color.New(color.FgGreen)
	dryColor  = color.New(color.FgCyan)
	skipColor = color.New(color.FgYellow)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)

	summaryHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	patchedCountStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	skippedCountStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorCountStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
)

// DisableColor turns off ANSI styling for all report output.
func DisableColor() {
	color.NoColor = true
	lipgloss.SetColorProfile(termenv.Ascii)
}

// Writer prints human-readable status lines for patch outcomes.
type Writer struct {
	out     io.Writer
	verbose bool
}

// NewWriter returns a Writer emitting to out. Verbose writers additionally
// print context-mismatch warnings ahead of the status line.
func NewWriter(out io.Writer, verbose bool) *Writer {
	return &Writer{out: out, verbose: verbose}
}

// Outcome prints the status line for one file.
func (w *Writer) Outcome(o patch.Outcome, dryRun bool) {
	switch o.Status {
	case patch.StatusPatched:
		if w.verbose {
			for _, m := range o.Mismatches {
				warnColor.Fprintf(w.out, "[WARN] %s\n", m)
			}
		}
		if dryRun {
			dryColor.Fprintf(w.out, "[DRY-RUN] Would create: %s (from %s) [line ending: %s]\n",
				o.OutputPath, o.Path, o.Style.Ending)
		} else {
			okColor.Fprintf(w.out, "[OK] Patched '%s' -> '%s' [line ending: %s]\n",
				o.Path, o.OutputPath, o.Style.Ending)
		}
	case patch.StatusSkipped:
		skipColor.Fprintf(w.out, "[SKIP] Original file '%s' not found.\n", o.Path)
	default:
		errColor.Fprintf(w.out, "[ERROR] Failed to apply patch to '%s': %v\n", o.Path, o.Err)
	}
}

// Summary prints the final tally block.
func (w *Writer) Summary(t patch.Tally) {
	fmt.Fprintf(w.out, "\n%s\n", summaryHeaderStyle.Render("Summary:"))
	fmt.Fprintf(w.out, "  Files processed: %d\n", t.Processed)
	fmt.Fprintf(w.out, "  Patched:         %s\n", renderCount(patchedCountStyle, t.Patched))
	fmt.Fprintf(w.out, "  Skipped:         %s\n", renderCount(skippedCountStyle, t.Skipped))
	fmt.Fprintf(w.out, "  Errors:          %s\n", renderCount(errorCountStyle, t.Errors))
}

// renderCount styles a count only when it is non-zero so an all-quiet
// summary stays plain.
func renderCount(style lipgloss.Style, n int) string {
	if n == 0 {
		return "0"
	}
	return style.Render(fmt.Sprintf("%d", n))
}
