// Package observability renders stage results as bordered terminal panels
// for the CLI's verbose mode, so a dry run reads like a transcript.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/outreach-agent/internal/types"
)

const (
	panelWidth   = 60
	maxListItems = 5
)

// Printer renders stage summaries to a terminal. It assumes a monospace
// display at least panelWidth columns wide.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter returns a Printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, width: panelWidth}
}

// panel draws a titled box around content. Overlong lines are clipped, not
// wrapped; wrapping is the caller's job via wrapText.
//
//nolint:errcheck // terminal output, a failed write has no recovery
func (p *Printer) panel(title, content string) {
	inner := p.width - 4
	rule := strings.Repeat("─", p.width-2)

	fmt.Fprintf(p.out, "┌%s┐\n", rule)
	fmt.Fprintf(p.out, "│ %-*s │\n", inner, title)
	fmt.Fprintf(p.out, "├%s┤\n", rule)
	for _, line := range strings.Split(strings.TrimSuffix(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", inner, clip(line, inner))
	}
	fmt.Fprintf(p.out, "└%s┘\n", rule)
}

// clip shortens s to at most max columns, marking the cut with an ellipsis.
func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// PrintResearchRecord outputs a human-readable summary of prospect research.
func (p *Printer) PrintResearchRecord(rec *types.ResearchRecord) {
	if rec == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Quality:     %.1f/5\n", rec.QualityScore))
	sb.WriteString(fmt.Sprintf("Personality: %s\n", rec.Personality))
	if rec.BusinessFocus != "" {
		sb.WriteString(fmt.Sprintf("Focus:       %s\n", clip(rec.BusinessFocus, 45)))
	}
	sb.WriteString(fmt.Sprintf("Pages:       %d crawled\n", len(rec.PagesCrawled)))

	if len(rec.Triggers) > 0 {
		sb.WriteString("\nTriggers:\n")
		shown := min(len(rec.Triggers), maxListItems)
		for _, trig := range rec.Triggers[:shown] {
			sb.WriteString(fmt.Sprintf("  • [%s] %s\n", trig.Type, clip(trig.Detail, 42)))
		}
		if rest := len(rec.Triggers) - shown; rest > 0 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", rest))
		}
	}

	p.panel("PROSPECT RESEARCH", sb.String())
}

// PrintOfferSelection outputs the matched offer with its rationale.
func (p *Printer) PrintOfferSelection(sel *types.OfferSelection) {
	if sel == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Offer:     %s\n", sel.Offer.Name))
	sb.WriteString(fmt.Sprintf("Relevance: %.2f\n", sel.Relevance))

	if sel.Rationale != "" {
		sb.WriteString("\nRationale:\n")
		for _, line := range wrapText(clip(sel.Rationale, 100), p.width-8) {
			sb.WriteString(fmt.Sprintf("  %s\n", line))
		}
	}

	if len(sel.MatchedKeywords) > 0 {
		keywords := strings.Join(sel.MatchedKeywords, ", ")
		sb.WriteString(fmt.Sprintf("\nKeywords: %s\n", clip(keywords, 45)))
	}

	p.panel("MATCHED OFFER", sb.String())
}

// PrintStrategySelection outputs the chosen outreach strategy.
func (p *Printer) PrintStrategySelection(sel *types.StrategySelection) {
	if sel == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Strategy:    %s\n", sel.StrategyID))
	if sel.Personality != "" {
		sb.WriteString(fmt.Sprintf("Personality: %s\n", sel.Personality))
	}
	if sel.Rationale != "" {
		sb.WriteString("\n")
		for _, line := range wrapText(sel.Rationale, p.width-8) {
			sb.WriteString(fmt.Sprintf("  %s\n", line))
		}
	}

	p.panel("OUTREACH STRATEGY", sb.String())
}

// PrintMessage outputs the generated outreach message.
func (p *Printer) PrintMessage(msg *types.OutreachMessage) {
	if msg == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Subject: %s\n\n", clip(msg.Subject, 45)))

	for _, line := range wrapText(msg.Body, p.width-6) {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if msg.CTAUsed != "" {
		sb.WriteString(fmt.Sprintf("\nCTA: %s\n", clip(msg.CTAUsed, 45)))
	}

	p.panel("GENERATED MESSAGE", sb.String())
}

// PrintOutcome outputs one prospect's terminal outcome.
func (p *Printer) PrintOutcome(o *types.Outcome) {
	if o == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Prospect: %s\n", o.Prospect.DisplayLabel()))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", o.Status))
	sb.WriteString(fmt.Sprintf("Stage:    %s\n", o.StageReached))
	if o.Reason != "" {
		sb.WriteString(fmt.Sprintf("Reason:   %s\n", clip(o.Reason, 45)))
	}
	if o.Unlogged {
		sb.WriteString("\n⚠ Outcome was NOT recorded in the log\n")
	}

	p.panel("OUTCOME", sb.String())
}

// PrintRunTotals outputs aggregate counts after a batch finishes.
func (p *Printer) PrintRunTotals(sent, skipped, failed, unlogged int) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Sent:    %d\n", sent))
	sb.WriteString(fmt.Sprintf("Skipped: %d\n", skipped))
	sb.WriteString(fmt.Sprintf("Failed:  %d", failed))
	if unlogged > 0 {
		sb.WriteString(fmt.Sprintf("\n\n⚠ %d outcome(s) could not be logged", unlogged))
	}

	p.panel("BATCH TOTALS", sb.String())
}

// wrapText splits text into lines no longer than width, breaking on spaces.
func wrapText(text string, width int) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := words[0]
		for _, word := range words[1:] {
			if len(current)+1+len(word) > width {
				lines = append(lines, current)
				current = word
				continue
			}
			current += " " + word
		}
		lines = append(lines, current)
	}
	return lines
}
