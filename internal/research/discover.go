// Package research - discover.go finds company websites via Google Custom
// Search for prospect rows that carry no website URL.
package research

import (
	"context"
	"fmt"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/jonathan/outreach-agent/internal/fetch"
)

// WebsiteDiscoverer looks up a company's main website with the Custom Search
// API. It implements Discoverer.
type WebsiteDiscoverer struct {
	svc *customsearch.Service
	cx  string
}

// NewWebsiteDiscoverer creates a discoverer backed by a Custom Search engine.
func NewWebsiteDiscoverer(ctx context.Context, apiKey, cx string) (*WebsiteDiscoverer, error) {
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &WebsiteDiscoverer{
		svc: svc,
		cx:  cx,
	}, nil
}

// DiscoverWebsite returns the most likely company website for a company name.
func (d *WebsiteDiscoverer) DiscoverWebsite(ctx context.Context, company string) (string, error) {
	query := fmt.Sprintf("%s official website", company)
	resp, err := d.svc.Cse.List().Context(ctx).Cx(d.cx).Q(query).Do()
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}

	link := pickWebsite(resp.Items)
	if link == "" {
		return "", fmt.Errorf("no website found for %s", company)
	}
	return link, nil
}

// pickWebsite returns the first result that is not a social or directory
// platform. Search for small companies routinely ranks the LinkedIn page
// above the company's own site, and those are useless to the crawler.
func pickWebsite(items []*customsearch.Result) string {
	for _, item := range items {
		if item == nil || item.Link == "" {
			continue
		}
		platform := fetch.DetectPlatform(item.Link)
		if platform != fetch.PlatformUnknown {
			continue
		}
		return item.Link
	}
	return ""
}
