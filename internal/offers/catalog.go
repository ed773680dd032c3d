// Package offers matches researched prospects against the service offering
// catalog. A default catalog ships embedded in the binary; deployments can
// point config at their own file. Matching is LLM-first with a deterministic
// keyword scorer as fallback and tiebreaker.
package offers

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/outreach-agent/internal/schemas"
	"github.com/jonathan/outreach-agent/internal/types"
)

//go:embed catalog.json
var defaultCatalogJSON []byte

// Catalog holds the service offerings available for matching.
type Catalog struct {
	Offers []types.Offer `json:"offers"`
}

// DefaultCatalog loads the catalog embedded in the binary.
func DefaultCatalog() (*Catalog, error) {
	return parseCatalog(defaultCatalogJSON, "embedded catalog")
}

// LoadCatalog loads a catalog from path. An empty path loads the embedded
// default, so config can leave offers_path unset.
func LoadCatalog(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read offer catalog: %w", err)
	}
	return parseCatalog(data, path)
}

// parseCatalog validates raw catalog JSON against the schema before
// unmarshaling, so hand-edited files fail with field-level errors.
func parseCatalog(data []byte, source string) (*Catalog, error) {
	if err := schemas.Validate(schemas.OfferCatalogSchema, string(data)); err != nil {
		return nil, fmt.Errorf("invalid offer catalog %s: %w", source, err)
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse offer catalog %s: %w", source, err)
	}

	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid offer catalog %s: %w", source, err)
	}
	return &catalog, nil
}

// Validate checks every entry and rejects duplicate names, which the JSON
// Schema cannot express. Names are compared case-insensitively because
// Find resolves them that way.
func (c *Catalog) Validate() error {
	if len(c.Offers) == 0 {
		return fmt.Errorf("offer catalog is empty")
	}

	seen := make(map[string]bool, len(c.Offers))
	for i := range c.Offers {
		offer := &c.Offers[i]
		if err := offer.Validate(); err != nil {
			return fmt.Errorf("invalid offer %q: %w", offer.Name, err)
		}
		key := strings.ToLower(offer.Name)
		if seen[key] {
			return fmt.Errorf("duplicate offer name %q", offer.Name)
		}
		seen[key] = true
	}
	return nil
}

// Find returns the offer with the given name, matched case-insensitively.
func (c *Catalog) Find(name string) (types.Offer, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Offer{}, false
	}
	for _, offer := range c.Offers {
		if strings.EqualFold(offer.Name, name) {
			return offer, true
		}
	}
	return types.Offer{}, false
}

// PromptBlock renders the catalog as a list for the matching prompt.
func (c *Catalog) PromptBlock() string {
	lines := make([]string, 0, len(c.Offers))
	for _, offer := range c.Offers {
		lines = append(lines, fmt.Sprintf("- %s: %s (best for: %s)",
			offer.Name, offer.Description, strings.Join(offer.BestFor, ", ")))
	}
	return strings.Join(lines, "\n")
}
