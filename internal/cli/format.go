package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/danieljhkim/opskit/internal/engine"
)

var (
	// fatih/color disables these itself when output is not a TTY.
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	headerColor  = color.New(color.FgBlue, color.Bold)
	labelColor   = color.New(color.FgWhite, color.Bold)
	valueColor   = color.New(color.FgHiBlack)
	dimColor     = color.New(color.FgHiBlack)
)

// PrintSection prints a section header
func PrintSection(w io.Writer, title string) {
	fmt.Fprintln(w)
	_, _ = headerColor.Fprintf(w, "▸ %s\n", title)
	fmt.Fprintln(w)
}

// PrintSuccess prints a success message with a checkmark
func PrintSuccess(w io.Writer, msg string) {
	_, _ = successColor.Fprintf(w, "✓ %s\n", msg)
}

// PrintWarning prints a warning message with a warning symbol
func PrintWarning(w io.Writer, msg string) {
	_, _ = warningColor.Fprintf(w, "⚠ %s\n", msg)
}

// PrintError prints an error message, normally to stderr
func PrintError(w io.Writer, msg string) {
	_, _ = errorColor.Fprintf(w, "✗ %s\n", msg)
}

// PrintInfo prints an informational message
func PrintInfo(w io.Writer, msg string) {
	fmt.Fprintln(w, msg)
}

// PrintLabelValue prints a label-value pair with proper formatting
func PrintLabelValue(w io.Writer, label, value string) {
	_, _ = labelColor.Fprintf(w, "  %s: ", label)
	_, _ = valueColor.Fprintln(w, value)
}

// PrintEmptyState prints a message when there's no data to show
func PrintEmptyState(w io.Writer, msg string) {
	_, _ = dimColor.Fprintf(w, "  %s\n", msg)
}

// PrintCount formats a count with the right noun
func PrintCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

// formatError formats an error for display.
func formatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// kindColor picks the color an outcome kind is shown in.
func kindColor(kind engine.OutcomeKind) *color.Color {
	switch kind {
	case engine.OutcomeDeleted, engine.OutcomeWouldDelete:
		return successColor
	case engine.OutcomeNotFound:
		return dimColor
	default:
		return errorColor
	}
}

// commitColumns falls back to the planned timestamp when GitLab returned no
// commit.
func commitColumns(o engine.Outcome) (committed, title, url string) {
	committed = o.PlannedAt
	if c := o.Commit; c != nil {
		if !c.CommittedAt.IsZero() {
			committed = c.CommittedAt.Format("2006-01-02 15:04:05 -0700")
		}
		title, url = c.Title, c.WebURL
	}
	return committed, title, url
}

// PrintOutcomes renders one row per planned branch.
func PrintOutcomes(w io.Writer, outcomes []engine.Outcome) {
	if len(outcomes) == 0 {
		PrintEmptyState(w, "Nothing to do: the plan is empty")
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)
	tw.AppendHeader(table.Row{"Project", "Branch", "Result", "Last Commit", "Title", "Commit URL", "Detail"})
	for _, o := range outcomes {
		committed, title, url := commitColumns(o)
		tw.AppendRow(table.Row{
			o.Project,
			o.Branch,
			kindColor(o.Kind).Sprint(string(o.Kind)),
			committed,
			title,
			url,
			o.Err,
		})
	}
	tw.Render()
}

// PrintSummary prints outcome counts in a fixed order.
func PrintSummary(w io.Writer, outcomes []engine.Outcome, dryRun bool) {
	s := engine.Summarize(outcomes)
	order := []engine.OutcomeKind{
		engine.OutcomeDeleted,
		engine.OutcomeWouldDelete,
		engine.OutcomeNotFound,
		engine.OutcomeDeleteFailed,
		engine.OutcomeDeleteUnconfirmed,
	}

	var parts []string
	for _, k := range order {
		if n := s[k]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, k))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "no branches")
	}

	msg := strings.Join(parts, ", ")
	if dryRun {
		msg = "Dry run: " + msg
	}
	if s[engine.OutcomeDeleteFailed]+s[engine.OutcomeDeleteUnconfirmed] > 0 {
		PrintWarning(w, msg)
		return
	}
	PrintSuccess(w, msg)
}
