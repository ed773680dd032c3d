package message

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/outreach-agent/internal/config"
	"github.com/jonathan/outreach-agent/internal/types"
)

func TestObservationLine_UsesServicesFirst(t *testing.T) {
	got := observationLine(acmeProspect(), manufacturingRecord())
	assert.Equal(t, "Noticed Acme Manufacturing specializes in MRP software, production scheduling.", got)
}

func TestObservationLine_FallsBackToBusinessFocus(t *testing.T) {
	rec := manufacturingRecord()
	rec.Services = nil

	got := observationLine(acmeProspect(), rec)
	assert.Equal(t, "Noticed Acme Manufacturing focuses on inventory optimization software for manufacturers.", got)
}

func TestObservationLine_CompanyKeywordWithoutResearch(t *testing.T) {
	prospect := types.Prospect{FirstName: "Ray", LastName: "Ortiz", Company: "Reyes Consulting Group"}

	got := observationLine(prospect, nil)
	assert.Equal(t, "Noticed Reyes Consulting Group provides strategic consulting.", got)
}

func TestObservationLine_TitlePhrasesFallBackToOpener(t *testing.T) {
	// Title-derived phrases repeat the company name, so the line would read
	// as filler. Those prospects get a generic opener instead.
	prospect := types.Prospect{FirstName: "Sam", LastName: "Hale", Title: "CEO & Founder", Company: "Northwind"}

	got := observationLine(prospect, nil)
	assert.Contains(t, openers, got)
}

func TestObservationLine_OpenerIsDeterministic(t *testing.T) {
	prospect := types.Prospect{FirstName: "Pat", LastName: "Lin"}

	first := observationLine(prospect, nil)
	second := observationLine(prospect, nil)
	assert.Equal(t, first, second)
	assert.Contains(t, openers, first)
}

func TestBusinessFocusPhrase(t *testing.T) {
	tests := []struct {
		name     string
		prospect types.Prospect
		rec      *types.ResearchRecord
		want     string
	}{
		{
			name:     "services win over focus",
			prospect: acmeProspect(),
			rec:      manufacturingRecord(),
			want:     "specializes in MRP software, production scheduling",
		},
		{
			name:     "not specified focus is skipped",
			prospect: types.Prospect{Company: "Harbor Law Group"},
			rec:      &types.ResearchRecord{BusinessFocus: "Not specified"},
			want:     "handles legal work",
		},
		{
			name:     "overlong focus is skipped",
			prospect: types.Prospect{Company: "Vertex Research Partners"},
			rec: &types.ResearchRecord{
				BusinessFocus: "a sprawling portfolio of advisory, analytics, diligence and bespoke engagement services",
			},
			want: "does research and analysis",
		},
		{
			name:     "manager title",
			prospect: types.Prospect{Title: "Office Manager", Company: "Birchwood Dental"},
			want:     "manages operations at Birchwood Dental",
		},
		{
			name:     "director title",
			prospect: types.Prospect{Title: "Director of Sales", Company: "Birchwood Dental"},
			want:     "leads strategy at Birchwood Dental",
		},
		{
			name:     "nothing known",
			prospect: types.Prospect{FirstName: "Ana"},
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, businessFocusPhrase(tt.prospect, tt.rec))
		})
	}
}

func TestRelevantWorkflow(t *testing.T) {
	tests := []struct {
		name     string
		prospect types.Prospect
		rec      *types.ResearchRecord
		want     string
	}{
		{
			name:     "logistics focus avoids echoing the word",
			prospect: types.Prospect{Company: "Hart Freight"},
			rec:      &types.ResearchRecord{BusinessFocus: "logistics coordination for carriers"},
			want:     "supply chain workflows",
		},
		{
			name:     "freight company without the logistics word",
			prospect: types.Prospect{Company: "Hart Freight"},
			want:     "logistics workflows",
		},
		{
			name:     "software focus swaps to technology",
			prospect: acmeProspect(),
			rec:      manufacturingRecord(),
			want:     "technology workflows",
		},
		{
			name:     "manufacturing without a software mention",
			prospect: types.Prospect{Company: "Apex Production"},
			rec:      &types.ResearchRecord{BusinessFocus: "precision machining"},
			want:     "manufacturing workflows",
		},
		{
			name:     "law firm without the legal word",
			prospect: types.Prospect{Company: "Harbor Law Group"},
			rec:      &types.ResearchRecord{BusinessFocus: "estate planning and probate practice"},
			want:     "legal workflows",
		},
		{
			name:     "legal focus swaps to documents",
			prospect: types.Prospect{Company: "Harbor Law Group"},
			rec:      &types.ResearchRecord{BusinessFocus: "legal services for family estates"},
			want:     "document workflows",
		},
		{
			name:     "nothing recognizable",
			prospect: types.Prospect{FirstName: "Ana", Company: "Birchwood Dental"},
			want:     "business automation workflows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relevantWorkflow(tt.prospect, tt.rec))
		})
	}
}

func TestSubjectIndustry(t *testing.T) {
	tests := []struct {
		name     string
		prospect types.Prospect
		want     string
	}{
		{name: "company keyword", prospect: types.Prospect{Company: "Brightline Software"}, want: "tech"},
		{name: "company beats title", prospect: types.Prospect{Company: "Lakeview Realty", Title: "CEO"}, want: "real estate"},
		{name: "title fallback", prospect: types.Prospect{Company: "Northwind", Title: "Founder"}, want: "executive"},
		{name: "operations title", prospect: types.Prospect{Company: "Northwind", Title: "Head of Operations"}, want: "operations"},
		{name: "nothing known", prospect: types.Prospect{Company: "Northwind"}, want: "business"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, subjectIndustry(tt.prospect))
		})
	}
}

func TestTemplateMessage_FullBodyShape(t *testing.T) {
	agent := New(Options{Sender: testSender()})

	msg := agent.templateMessage(acmeProspect(), manufacturingRecord(), rhykaSelection())
	assert.Equal(t, "AI for manufacturing workflows", msg.Subject)
	assert.Equal(t, "Hey Dana,\n\n"+
		"Noticed Acme Manufacturing specializes in MRP software, production scheduling.\n\n"+
		"Working on AI tools for technology workflows. Try demo", msg.Body)
	assert.Equal(t, "Try demo", msg.CTAUsed)
}

func TestTemplateMessage_NoFirstName(t *testing.T) {
	agent := New(Options{Sender: testSender()})

	msg := agent.templateMessage(types.Prospect{Company: "Northwind"}, nil, nil)
	assert.Contains(t, msg.Body, "Hey there,")
	assert.Contains(t, msg.Body, DefaultCTA)
}

func TestSignature(t *testing.T) {
	assert.Equal(t, "\n\n--\nJon Mazur\nFounder, Rhyka\njon@rhyka.example.com\nhttps://cal.example.com/jon",
		signature(testSender()))
	assert.Equal(t, "\n\n--\nJon Mazur", signature(config.SenderIdentity{Name: "Jon Mazur"}))
	assert.Equal(t, "\n\n--\nRhyka", signature(config.SenderIdentity{Company: "Rhyka"}))
	assert.Equal(t, "", signature(config.SenderIdentity{}))
}

func TestAppendSignature(t *testing.T) {
	body := "Hey Dana,\n\nShort note."

	signed := appendSignature(body, testSender())
	assert.Equal(t, body+testSignature, signed)

	// A body that already signs off keeps its own closing.
	closed := "Hey Dana,\n\nShort note.\n\nBest regards,\nJon"
	assert.Equal(t, closed, appendSignature(closed, testSender()))

	assert.Equal(t, body, appendSignature(body, config.SenderIdentity{}))
}
