package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/outreach-agent/internal/types"
)

// render runs one print call against a fresh Printer and returns its output.
func render(print func(p *Printer)) string {
	var buf bytes.Buffer
	print(NewPrinter(&buf))
	return buf.String()
}

func TestPrintResearchRecord(t *testing.T) {
	rec := &types.ResearchRecord{
		QualityScore:  4.2,
		Personality:   types.PersonalityStartupFounder,
		BusinessFocus: "warehouse robotics",
		PagesCrawled:  []string{"https://acme.com", "https://acme.com/about", "https://acme.com/blog"},
		Triggers: []types.Trigger{
			{Type: "funding", Detail: "raised a Series A in March"},
			{Type: "hiring", Detail: "hiring two ML engineers"},
		},
	}

	out := render(func(p *Printer) { p.PrintResearchRecord(rec) })

	assert.Contains(t, out, "PROSPECT RESEARCH")
	assert.Contains(t, out, "4.2/5")
	assert.Contains(t, out, "startup_founder")
	assert.Contains(t, out, "warehouse robotics")
	assert.Contains(t, out, "[funding]")
	assert.Contains(t, out, "raised a Series A")
}

func TestPrintResearchRecord_TruncatesTriggerList(t *testing.T) {
	rec := &types.ResearchRecord{QualityScore: 3.5}
	for i := 0; i < maxListItems+3; i++ {
		rec.Triggers = append(rec.Triggers, types.Trigger{Type: "news", Detail: "launch announcement"})
	}

	out := render(func(p *Printer) { p.PrintResearchRecord(rec) })

	assert.Contains(t, out, "... and 3 more")
	assert.Equal(t, maxListItems, strings.Count(out, "[news]"))
}

func TestPrintResearchRecord_Nil(t *testing.T) {
	out := render(func(p *Printer) { p.PrintResearchRecord(nil) })
	assert.Empty(t, out)
}

func TestPrintOfferSelection(t *testing.T) {
	sel := &types.OfferSelection{
		Offer:           types.Offer{Name: "AI Consulting"},
		Rationale:       "They are scaling an ML team without senior guidance",
		MatchedKeywords: []string{"machine learning", "hiring"},
		Relevance:       0.82,
	}

	out := render(func(p *Printer) { p.PrintOfferSelection(sel) })

	assert.Contains(t, out, "MATCHED OFFER")
	assert.Contains(t, out, "AI Consulting")
	assert.Contains(t, out, "0.82")
	assert.Contains(t, out, "machine learning, hiring")
}

func TestPrintStrategySelection(t *testing.T) {
	sel := &types.StrategySelection{
		StrategyID:  "pain_agitate_solution",
		Rationale:   "Clear operational pain point observed",
		Personality: types.PersonalityTechnicalOperator,
	}

	out := render(func(p *Printer) { p.PrintStrategySelection(sel) })

	assert.Contains(t, out, "OUTREACH STRATEGY")
	assert.Contains(t, out, "pain_agitate_solution")
	assert.Contains(t, out, "technical_operator")
	assert.Contains(t, out, "operational pain point")
}

func TestPrintMessage(t *testing.T) {
	msg := &types.OutreachMessage{
		Subject: "Your March launch",
		Body:    "Saw the new product line announcement. Congrats.",
		CTAUsed: "Worth a quick call?",
	}

	out := render(func(p *Printer) { p.PrintMessage(msg) })

	assert.Contains(t, out, "GENERATED MESSAGE")
	assert.Contains(t, out, "Your March launch")
	assert.Contains(t, out, "product line announcement")
	assert.Contains(t, out, "Worth a quick call?")
}

func TestPrintOutcome(t *testing.T) {
	outcome := &types.Outcome{
		Prospect: types.Prospect{
			FirstName: "Jane",
			LastName:  "Doe",
			Email:     "jane@acme.com",
			Company:   "Acme",
		},
		Status:       types.StatusSkipped,
		StageReached: types.StageGateCheck,
		Reason:       "insufficient research quality",
	}

	out := render(func(p *Printer) { p.PrintOutcome(outcome) })

	assert.Contains(t, out, "OUTCOME")
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "skipped")
	assert.Contains(t, out, "insufficient research quality")
	assert.NotContains(t, out, "NOT recorded")
}

func TestPrintOutcome_Unlogged(t *testing.T) {
	outcome := &types.Outcome{
		Prospect: types.Prospect{Email: "jane@acme.com", Company: "Acme"},
		Status:   types.StatusSent,
		Unlogged: true,
	}

	out := render(func(p *Printer) { p.PrintOutcome(outcome) })

	assert.Contains(t, out, "NOT recorded")
}

func TestPrintRunTotals(t *testing.T) {
	out := render(func(p *Printer) { p.PrintRunTotals(5, 3, 1, 0) })

	assert.Contains(t, out, "BATCH TOTALS")
	assert.Contains(t, out, "Sent:    5")
	assert.Contains(t, out, "Skipped: 3")
	assert.Contains(t, out, "Failed:  1")
	assert.NotContains(t, out, "could not be logged")
}

func TestPrintRunTotals_Unlogged(t *testing.T) {
	out := render(func(p *Printer) { p.PrintRunTotals(1, 0, 0, 2) })
	assert.Contains(t, out, "2 outcome(s) could not be logged")
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five", 10)
	assert.Equal(t, []string{"one two", "three four", "five"}, lines)
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "exactly-10", clip("exactly-10", 10))
	assert.Equal(t, "exceed:...", clip("exceed:the-limit", 10))
}

func TestPanel_ClipsLongLines(t *testing.T) {
	rec := &types.ResearchRecord{
		QualityScore:  3.0,
		BusinessFocus: "a very long business focus description that should be clipped to fit inside the panel",
	}

	out := render(func(p *Printer) { p.PrintResearchRecord(rec) })

	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), panelWidth, "line overflows panel: %q", line)
	}
	assert.Contains(t, out, "┌")
	assert.Contains(t, out, "└")
}
