package message

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/jonathan/outreach-agent/internal/config"
	"github.com/jonathan/outreach-agent/internal/types"
)

// DefaultCTA closes messages when the matched offer carries no call to
// action of its own.
const DefaultCTA = "Want to see what we built?"

// maxFocusLength drops focus phrases too long to read naturally inside the
// one-line observation.
const maxFocusLength = 60

// openers observe something about the prospect when the research gave us
// nothing concrete to point at. The pick is hashed from the prospect's name
// so the same person always gets the same line.
var openers = []string{
	"Been following your work.",
	"Came across your profile.",
	"Saw your background in the industry.",
	"Noticed your expertise.",
	"Impressive track record.",
}

// workflowRule maps focus/company keywords to the workflow label in the
// message's pitch line. When the focus text already uses the primary word,
// the synonym label avoids echoing it back.
type workflowRule struct {
	keywords []string
	primary  string
	synonym  string
	workflow string
}

// Order matters: earlier rules win, like-for-like with broader rules last.
var workflowRules = []workflowRule{
	{keywords: []string{"logistics", "supply chain", "shipping", "freight", "transport"}, primary: "logistics", synonym: "supply chain workflows", workflow: "logistics workflows"},
	{keywords: []string{"real estate", "property", "valuation", "realty"}, primary: "real estate", synonym: "property workflows", workflow: "real estate workflows"},
	{keywords: []string{"legal", "law", "attorney", "estate planning", "probate"}, primary: "legal", synonym: "document workflows", workflow: "legal workflows"},
	{keywords: []string{"research", "analysis", "market research"}, primary: "research", synonym: "data analysis workflows", workflow: "research workflows"},
	{keywords: []string{"consulting", "strategy", "advisory"}, primary: "consulting", synonym: "strategy workflows", workflow: "consulting workflows"},
	{keywords: []string{"advocacy", "non-profit", "nonprofit"}, primary: "advocacy", synonym: "non-profit workflows", workflow: "advocacy workflows"},
	{keywords: []string{"technology", "software", "tech"}, primary: "software", synonym: "technology workflows", workflow: "software workflows"},
	{keywords: []string{"marketing", "communications", "agency"}, primary: "marketing", synonym: "communications workflows", workflow: "marketing workflows"},
	{keywords: []string{"management", "operations"}, workflow: "operational workflows"},
	{keywords: []string{"finance", "investment", "banking", "financial"}, workflow: "financial workflows"},
	{keywords: []string{"healthcare", "medical", "health"}, workflow: "healthcare workflows"},
	{keywords: []string{"education", "training", "learning"}, workflow: "educational workflows"},
	{keywords: []string{"manufacturing", "production", "factory"}, workflow: "manufacturing workflows"},
	{keywords: []string{"retail", "ecommerce", "e-commerce", "store", "shop"}, workflow: "retail workflows"},
	{keywords: []string{"insurance", "claims"}, workflow: "insurance workflows"},
	{keywords: []string{"construction", "engineering", "contractor"}, workflow: "construction workflows"},
	{keywords: []string{"media", "entertainment", "content"}, workflow: "content workflows"},
	{keywords: []string{"agriculture", "food", "farming"}, workflow: "agriculture workflows"},
}

const defaultWorkflow = "business automation workflows"

// templateMessage composes the three-line fallback message without a model:
// greeting, one observation, one pitch line ending in the call to action.
func (a *Agent) templateMessage(prospect types.Prospect, rec *types.ResearchRecord, offer *types.OfferSelection) *types.OutreachMessage {
	cta := offerCTA(offer)
	workflow := relevantWorkflow(prospect, rec)

	body := fmt.Sprintf("Hey %s,\n\n%s\n\nWorking on AI tools for %s. %s",
		greetingName(prospect), observationLine(prospect, rec), workflow, cta)

	return &types.OutreachMessage{
		Subject: fmt.Sprintf("AI for %s workflows", subjectIndustry(prospect)),
		Body:    body,
		CTAUsed: cta,
	}
}

func greetingName(prospect types.Prospect) string {
	if name := strings.TrimSpace(prospect.FirstName); name != "" {
		return name
	}
	return "there"
}

func offerCTA(offer *types.OfferSelection) string {
	if offer != nil && strings.TrimSpace(offer.Offer.CTA) != "" {
		return offer.Offer.CTA
	}
	return DefaultCTA
}

// observationLine points at something the research found, or falls back to
// a generic opener when the focus is missing, repeats the company name, or
// only restates where the prospect works.
func observationLine(prospect types.Prospect, rec *types.ResearchRecord) string {
	focus := businessFocusPhrase(prospect, rec)
	companyLower := strings.ToLower(prospect.Company)

	useOpener := prospect.Company == "" ||
		focus == "" ||
		strings.HasPrefix(focus, "works at") ||
		strings.Contains(strings.ToLower(focus), companyLower)
	if useOpener {
		return openers[openerIndex(prospect.FullName())]
	}

	return fmt.Sprintf("Noticed %s %s.", prospect.Company, focus)
}

// businessFocusPhrase distills what the company does into a verb phrase:
// research findings first, then company-name keywords, then the prospect's
// title. Returns "" when there is nothing to say.
func businessFocusPhrase(prospect types.Prospect, rec *types.ResearchRecord) string {
	if rec != nil {
		if s := rec.ServicesSummary(); usableFocus(s) {
			return "specializes in " + s
		}
		if usableFocus(rec.BusinessFocus) {
			return "focuses on " + rec.BusinessFocus
		}
	}

	company := strings.ToLower(prospect.Company)
	switch {
	case company == "":
		return ""
	case containsAny(company, "consulting", "advisory"):
		return "provides strategic consulting"
	case containsAny(company, "law", "legal", "attorney"):
		return "handles legal work"
	case containsAny(company, "tech", "software"):
		return "builds technology solutions"
	case containsAny(company, "marketing", "agency"):
		return "handles marketing and communications"
	case containsAny(company, "real estate", "property", "realty"):
		return "works in real estate"
	case containsAny(company, "research"):
		return "does research and analysis"
	case containsAny(company, "management"):
		return "provides management services"
	}

	title := strings.ToLower(prospect.Title)
	switch {
	case containsAny(title, "ceo", "founder"):
		return "runs " + prospect.Company
	case strings.Contains(title, "director"):
		return "leads strategy at " + prospect.Company
	case strings.Contains(title, "manager"):
		return "manages operations at " + prospect.Company
	default:
		return "works at " + prospect.Company
	}
}

func usableFocus(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && len(s) < maxFocusLength && !strings.HasPrefix(strings.ToLower(s), "not specified")
}

// relevantWorkflow picks the workflow label for the pitch line from the
// focus phrase and company name.
func relevantWorkflow(prospect types.Prospect, rec *types.ResearchRecord) string {
	text := strings.ToLower(businessFocusPhrase(prospect, rec) + " " + prospect.Company)
	for _, rule := range workflowRules {
		if !containsAny(text, rule.keywords...) {
			continue
		}
		if rule.synonym != "" && strings.Contains(text, rule.primary) {
			return rule.synonym
		}
		return rule.workflow
	}
	return defaultWorkflow
}

// subjectIndustry names the industry for the subject line; it never says
// "unknown".
func subjectIndustry(prospect types.Prospect) string {
	company := strings.ToLower(prospect.Company)
	switch {
	case containsAny(company, "tech", "software"):
		return "tech"
	case containsAny(company, "consulting", "advisory"):
		return "consulting"
	case containsAny(company, "real estate", "property", "realty"):
		return "real estate"
	case containsAny(company, "legal", "law", "attorney"):
		return "legal"
	case containsAny(company, "marketing", "agency"):
		return "marketing"
	case containsAny(company, "logistics", "shipping"):
		return "logistics"
	case containsAny(company, "research", "analysis"):
		return "research"
	case containsAny(company, "management", "operations"):
		return "operations"
	case containsAny(company, "manufacturing", "production"):
		return "manufacturing"
	}

	title := strings.ToLower(prospect.Title)
	switch {
	case containsAny(title, "ceo", "founder", "executive"):
		return "executive"
	case containsAny(title, "marketing", "growth"):
		return "marketing"
	case containsAny(title, "operations", "ops"):
		return "operations"
	case containsAny(title, "tech", "engineering"):
		return "tech"
	}

	return "business"
}

func openerIndex(name string) int {
	h := fnv.New32a()
	h.Write([]byte(name))
	return int(h.Sum32() % uint32(len(openers)))
}

func containsAny(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// formalClosings mark a body that already signs itself off; the signature
// block stays out of those.
var formalClosings = []string{"best regards", "sincerely", "yours truly", "[your name]"}

func hasFormalClosing(body string) bool {
	lower := strings.ToLower(body)
	for _, closing := range formalClosings {
		if strings.Contains(lower, closing) {
			return true
		}
	}
	return false
}

// appendSignature adds the sender block to the body.
func appendSignature(body string, sender config.SenderIdentity) string {
	sig := signature(sender)
	if sig == "" || hasFormalClosing(body) {
		return body
	}
	return body + sig
}

func signature(sender config.SenderIdentity) string {
	var lines []string
	if sender.Name != "" {
		lines = append(lines, sender.Name)
	}
	switch {
	case sender.Title != "" && sender.Company != "":
		lines = append(lines, sender.Title+", "+sender.Company)
	case sender.Title != "":
		lines = append(lines, sender.Title)
	case sender.Company != "":
		lines = append(lines, sender.Company)
	}
	if sender.Phone != "" {
		lines = append(lines, sender.Phone)
	}
	if sender.Email != "" {
		lines = append(lines, sender.Email)
	}
	if sender.CalendarURL != "" {
		lines = append(lines, sender.CalendarURL)
	}
	if len(lines) == 0 {
		return ""
	}
	return "\n\n--\n" + strings.Join(lines, "\n")
}
