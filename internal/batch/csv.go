package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/jonathan/outreach-agent/internal/types"
)

// Column aliases accepted for each prospect field. Headers are matched after
// canonicalization, so "Person Linkedin Url", "LINKEDIN_URL" and
// "linkedin url" all resolve the same way. Apollo exports use the long forms.
var (
	firstNameColumns = []string{"first name", "firstname"}
	lastNameColumns  = []string{"last name", "lastname"}
	fullNameColumns  = []string{"name", "full name", "contact name"}
	emailColumns     = []string{"email", "email address"}
	titleColumns     = []string{"title", "job title"}
	linkedInColumns  = []string{"person linkedin url", "linkedin url", "linkedin"}
	websiteColumns   = []string{"website", "website url", "company domain", "domain"}
	companyColumns   = []string{"company", "company name", "company name for emails"}
	phoneColumns     = []string{"work direct phone", "phone", "phone number", "mobile phone"}
)

// ParseProspects reads a prospect export in CSV form. The first row must be a
// header containing at least an email column; extra columns are ignored and
// column order does not matter. Rows whose cells are all empty are dropped.
// Rows missing required identity fields are still returned as prospects, so
// the batch runner can record a skip outcome for them instead of silently
// losing the row.
func ParseProspects(r io.Reader) ([]types.Prospect, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[canonicalHeader(name)] = i
	}

	if columnOf(index, emailColumns) < 0 {
		return nil, errors.New("missing required column \"Email\"")
	}

	cols := struct {
		first, last, name, email, title, linkedIn, website, company, phone int
	}{
		first:    columnOf(index, firstNameColumns),
		last:     columnOf(index, lastNameColumns),
		name:     columnOf(index, fullNameColumns),
		email:    columnOf(index, emailColumns),
		title:    columnOf(index, titleColumns),
		linkedIn: columnOf(index, linkedInColumns),
		website:  columnOf(index, websiteColumns),
		company:  columnOf(index, companyColumns),
		phone:    columnOf(index, phoneColumns),
	}

	var prospects []types.Prospect
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return prospects, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(prospects)+2, err)
		}

		get := func(col int) string {
			if col < 0 || col >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[col])
		}

		p := types.Prospect{
			FirstName:   get(cols.first),
			LastName:    get(cols.last),
			Email:       get(cols.email),
			Title:       get(cols.title),
			Company:     get(cols.company),
			WebsiteURL:  normalizeURL(get(cols.website)),
			LinkedInURL: normalizeURL(get(cols.linkedIn)),
			Phone:       get(cols.phone),
		}

		// A single "Name" column splits into first/last
		if p.FirstName == "" && p.LastName == "" {
			p.FirstName, p.LastName = splitName(get(cols.name))
		}
		if p.Company == "" {
			p.Company = domainOf(p.WebsiteURL)
		}

		if isEmptyProspect(p) {
			continue
		}
		prospects = append(prospects, p)
	}
}

// ParseProspectsFile opens path and parses it with ParseProspects.
func ParseProspectsFile(path string) ([]types.Prospect, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open prospects file: %w", err)
	}
	defer f.Close()
	return ParseProspects(f)
}

// canonicalHeader lowercases a header cell and collapses separator runs to
// single spaces.
func canonicalHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return strings.Join(strings.Fields(name), " ")
}

func columnOf(index map[string]int, names []string) int {
	for _, n := range names {
		if i, ok := index[n]; ok {
			return i
		}
	}
	return -1
}

// normalizeURL prefixes https:// onto schemeless values, since exports often
// carry bare domains like "acme.com" or "linkedin.com/in/jane".
func normalizeURL(raw string) string {
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		return "https://" + raw
	}
	return raw
}

// domainOf extracts a host from a URL for use as a company fallback.
func domainOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}

func isEmptyProspect(p types.Prospect) bool {
	return p.FirstName == "" && p.LastName == "" && p.Email == "" &&
		p.Company == "" && p.WebsiteURL == "" && p.LinkedInURL == ""
}
