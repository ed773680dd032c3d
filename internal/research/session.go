// Package research - session.go drives the website crawl that feeds
// prospect analysis.
package research

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/outreach-agent/internal/fetch"
)

// minPageText is the minimum extracted text length for a page to contribute
// to the corpus. Shorter pages are boilerplate or fetch artifacts.
const minPageText = 100

// maxDiscoveredLinks caps how many homepage links are added to the frontier.
const maxDiscoveredLinks = 10

// PageFetcher retrieves a single page, transparently using the page cache
// when one is configured. *fetch.CachedFetcher is the production
// implementation.
type PageFetcher interface {
	FetchWithDomain(ctx context.Context, urlStr string, companyDomain *string) (*fetch.CachedResult, error)
}

// RankedURL is a crawl candidate ordered by expected research value.
type RankedURL struct {
	URL      string
	Priority float64
	Kind     fetch.PageKind
}

// Session tracks a single prospect's website crawl.
type Session struct {
	Domain      string
	CrawledURLs []string
	Frontier    []RankedURL
	Corpus      string
}

// CrawlOptions configures a crawl session.
type CrawlOptions struct {
	SeedURL     string
	Fetcher     PageFetcher
	MaxPages    int
	ScrapeDelay time.Duration
	UseBrowser  bool
	Verbose     bool
}

// Crawl fetches the seed page plus a handful of high-value pages from the
// same site and joins their extracted text into a corpus. Pages that fail to
// fetch or yield too little text are skipped, not fatal; the crawl only
// errors when no usable domain can be derived from the seed.
func Crawl(ctx context.Context, opts CrawlOptions) (*Session, error) {
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("page fetcher is required")
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}

	seed := normalizeSeed(opts.SeedURL)
	domain := ExtractDomain(seed)
	if domain == "" {
		return nil, fmt.Errorf("cannot determine domain from seed URL %q", opts.SeedURL)
	}

	session := &Session{
		Domain:      domain,
		CrawledURLs: []string{},
	}
	session.Frontier = append(session.Frontier, RankedURL{
		URL:      seed,
		Priority: kindPriority(fetch.KindHome),
		Kind:     fetch.ClassifyPageKind(seed),
	})
	for _, ru := range patternURLs(domain) {
		session.enqueue(ru)
	}
	sortFrontier(session.Frontier)

	var parts []string
	visited := make(map[string]bool)

	for len(session.CrawledURLs) < opts.MaxPages && len(session.Frontier) > 0 {
		if ctx.Err() != nil {
			break
		}

		target := session.Frontier[0]
		session.Frontier = session.Frontier[1:]

		if visited[target.URL] {
			continue
		}
		visited[target.URL] = true

		// Social platforms serve login walls to anonymous clients.
		if !fetch.DirectlyFetchable(fetch.DetectPlatform(target.URL)) {
			continue
		}

		if len(session.CrawledURLs) > 0 && opts.ScrapeDelay > 0 {
			time.Sleep(opts.ScrapeDelay)
		}

		if opts.Verbose {
			log.Printf("[research] crawling %s (priority %.2f, kind %s)", target.URL, target.Priority, target.Kind)
		}

		html, text, err := fetchPage(ctx, opts.Fetcher, target, domain, opts.UseBrowser, opts.Verbose)
		if err != nil {
			if opts.Verbose {
				log.Printf("[research] fetch %s: %v", target.URL, err)
			}
			continue
		}
		if len(text) < minPageText {
			if opts.Verbose {
				log.Printf("[research] skipping %s: insufficient content (%d chars)", target.URL, len(text))
			}
			continue
		}

		parts = append(parts, fmt.Sprintf("URL: %s (%s)\n%s", target.URL, target.Kind, text))
		session.CrawledURLs = append(session.CrawledURLs, target.URL)

		// The first crawled page is normally the homepage; its navigation
		// links reveal the site's real structure, while pattern URLs are
		// only guesses.
		if len(session.CrawledURLs) == 1 {
			session.enqueueLinks(html, target.URL, visited)
			sortFrontier(session.Frontier)
		}
	}

	session.Corpus = strings.Join(parts, "\n\n---\n\n")

	if opts.Verbose {
		log.Printf("[research] crawl complete: %d pages, corpus %d chars", len(session.CrawledURLs), len(session.Corpus))
	}
	return session, nil
}

// fetchPage retrieves one page. JS-heavy sites serve an empty shell to plain
// HTTP clients, so when the extracted text is too thin and the browser is
// enabled, the page is re-rendered headlessly and the richer text wins.
func fetchPage(ctx context.Context, fetcher PageFetcher, target RankedURL, domain string, useBrowser, verbose bool) (string, string, error) {
	result, err := fetcher.FetchWithDomain(ctx, target.URL, &domain)
	if err != nil {
		return "", "", err
	}
	html, text := result.HTML, result.Text

	if useBrowser && fetch.NeedsRender(text) {
		rendered, berr := fetch.Render(ctx, target.URL, &fetch.RenderOptions{Verbose: verbose})
		if berr == nil {
			t, terr := fetch.ExtractMainText(rendered, fetch.KindContentSelectors(target.Kind), fetch.CompanyNoiseSelectors()...)
			if terr == nil && len(t) > len(text) {
				html, text = rendered, t
			}
		}
	}

	return html, text, nil
}

// kindPriority orders page kinds by expected research value. The homepage
// leads because it always exists and links the rest of the site; about and
// services pages carry the concrete facts the analysis needs.
func kindPriority(kind fetch.PageKind) float64 {
	switch kind {
	case fetch.KindHome:
		return 1.0
	case fetch.KindAbout:
		return 0.9
	case fetch.KindServices:
		return 0.85
	case fetch.KindNews:
		return 0.7
	case fetch.KindCareers:
		return 0.6
	case fetch.KindContact:
		return 0.3
	default:
		return 0.4
	}
}

// highValuePaths are guessed paths tried on every company domain.
var highValuePaths = []string{
	"about",
	"about-us",
	"services",
	"products",
	"solutions",
	"blog",
	"news",
	"team",
}

// patternURLs builds guessed high-value URLs for a domain. Guesses rank
// slightly below discovered links of the same kind.
func patternURLs(domain string) []RankedURL {
	results := make([]RankedURL, 0, len(highValuePaths))
	for _, path := range highValuePaths {
		u := fmt.Sprintf("https://%s/%s", domain, path)
		kind := fetch.ClassifyPageKind(u)
		results = append(results, RankedURL{
			URL:      u,
			Priority: kindPriority(kind) - 0.05,
			Kind:     kind,
		})
	}
	return results
}

// enqueue adds a candidate. A duplicate URL keeps its queue slot but takes
// the higher priority, so a discovered link upgrades a matching guess.
func (s *Session) enqueue(ru RankedURL) {
	for i, existing := range s.Frontier {
		if existing.URL == ru.URL {
			if ru.Priority > existing.Priority {
				s.Frontier[i].Priority = ru.Priority
			}
			return
		}
	}
	s.Frontier = append(s.Frontier, ru)
}

// enqueueLinks extracts links from a crawled page and queues the same-domain
// ones that classify as useful page kinds.
func (s *Session) enqueueLinks(html, baseURL string, visited map[string]bool) {
	links, err := fetch.ExtractLinks(html, baseURL)
	if err != nil {
		return
	}

	added := 0
	for _, link := range links {
		if added >= maxDiscoveredLinks {
			break
		}
		if visited[link] || ExtractDomain(link) != s.Domain {
			continue
		}
		kind := fetch.ClassifyPageKind(link)
		if kind == fetch.KindOther || kind == fetch.KindContact {
			continue
		}
		before := len(s.Frontier)
		s.enqueue(RankedURL{URL: link, Priority: kindPriority(kind), Kind: kind})
		if len(s.Frontier) > before {
			added++
		}
	}
}

func sortFrontier(frontier []RankedURL) {
	sort.SliceStable(frontier, func(i, j int) bool {
		return frontier[i].Priority > frontier[j].Priority
	})
}

// ExtractDomain extracts the host from a URL, handling schemeless input and
// stripping any www prefix. Returns "" when no host can be parsed.
func ExtractDomain(urlStr string) string {
	if urlStr == "" {
		return ""
	}
	if !strings.Contains(urlStr, "://") {
		urlStr = "https://" + urlStr
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}

func normalizeSeed(urlStr string) string {
	urlStr = strings.TrimSpace(urlStr)
	if urlStr == "" {
		return ""
	}
	if !strings.Contains(urlStr, "://") {
		return "https://" + urlStr
	}
	return urlStr
}
