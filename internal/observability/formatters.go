// Package observability provides logging, metrics, and formatted CLI output.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-analyzer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content. Long lines are
// wrapped at word boundaries.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		for _, wrapped := range wrap(line, inner) {
			fmt.Fprintf(p.out, "│ %s │\n", pad(wrapped, inner))
		}
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad right-pads s with spaces to width runes.
func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// wrap splits a line into chunks of at most width runes, breaking on spaces
// where possible.
func wrap(line string, width int) []string {
	runes := []rune(line)
	if len(runes) <= width {
		return []string{line}
	}

	var out []string
	for len(runes) > width {
		cut := width
		for i := width; i > width/2; i-- {
			if runes[i] == ' ' {
				cut = i
				break
			}
		}
		out = append(out, strings.TrimRight(string(runes[:cut]), " "))
		runes = []rune(strings.TrimLeft(string(runes[cut:]), " "))
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

// bandLabel returns a human label for a score band.
func bandLabel(band string) string {
	switch band {
	case types.BandHigh:
		return "strong match"
	case types.BandMedium:
		return "partial match"
	default:
		return "weak match"
	}
}

// PrintSubmission outputs what is about to be sent to the backend.
func (p *Printer) PrintSubmission(sub *types.Submission, pages int) {
	if sub == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("CV:       %s (%d bytes", sub.FileName, len(sub.Content)))
	if pages > 0 {
		sb.WriteString(fmt.Sprintf(", %d pages", pages))
	}
	sb.WriteString(")\n")

	desc := strings.Join(strings.Fields(sub.JobDescription), " ")
	if len([]rune(desc)) > 120 {
		desc = string([]rune(desc)[:117]) + "..."
	}
	sb.WriteString(fmt.Sprintf("Job:      %s", desc))

	p.printBox("SUBMISSION", sb.String())
}

// PrintAnalysis outputs the match score, the explanation, and the learning plan.
func (p *Printer) PrintAnalysis(resp *types.AnalysisResponse) {
	if resp == nil {
		return
	}

	p.printBox("MATCH SCORE", fmt.Sprintf("%d%% (%s)", resp.MatchScore, bandLabel(resp.Band())))

	if strings.TrimSpace(resp.Reason) != "" {
		p.printBox("ANALYSIS", strings.TrimSpace(resp.Reason))
	}

	if !resp.HasLearningPlan() {
		return
	}

	var sb strings.Builder
	count := min(len(resp.LearningPlan), maxItemsToShow)
	for i := 0; i < count; i++ {
		item := resp.LearningPlan[i]
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, item.DisplayTitle(i)))
		if item.Video != "" {
			sb.WriteString(fmt.Sprintf("   %s\n", item.Video))
		}
	}
	if len(resp.LearningPlan) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more resources\n", len(resp.LearningPlan)-maxItemsToShow))
	}

	p.printBox("LEARNING PLAN", strings.TrimSuffix(sb.String(), "\n"))
}

// CheckStep is one line of a backend connectivity report.
type CheckStep struct {
	Name   string
	OK     bool
	Detail string
}

// PrintCheck outputs a connectivity report followed by troubleshooting hints
// when any step failed.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintCheck(target string, steps []CheckStep, hints []string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Target: %s\n\n", target))
	for i, step := range steps {
		mark := "✓"
		if !step.OK {
			mark = "✗"
		}
		sb.WriteString(fmt.Sprintf("%d. %s %s\n", i+1, mark, step.Name))
		if step.Detail != "" {
			sb.WriteString(fmt.Sprintf("   %s\n", step.Detail))
		}
	}
	p.printBox("BACKEND CHECK", strings.TrimSuffix(sb.String(), "\n"))

	if len(hints) == 0 {
		return
	}
	fmt.Fprintln(p.out, "\nTroubleshooting:")
	for i, hint := range hints {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, hint)
	}
}
