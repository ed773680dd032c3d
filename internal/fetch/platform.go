// Package fetch - platform.go classifies URLs for prospect research.
package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known social or third-party platform.
type Platform string

const (
	// PlatformLinkedIn is linkedin.com, which blocks anonymous scraping
	PlatformLinkedIn Platform = "linkedin"
	// PlatformTwitter is twitter.com / x.com
	PlatformTwitter Platform = "twitter"
	// PlatformFacebook is facebook.com
	PlatformFacebook Platform = "facebook"
	// PlatformCrunchbase is crunchbase.com
	PlatformCrunchbase Platform = "crunchbase"
	// PlatformUnknown is an unrecognized platform, assumed to be a company site
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies a social or third-party platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Host)
	host = strings.TrimPrefix(host, "www.")

	switch {
	case strings.HasSuffix(host, "linkedin.com"):
		return PlatformLinkedIn
	case strings.HasSuffix(host, "twitter.com"), host == "x.com", strings.HasSuffix(host, ".x.com"):
		return PlatformTwitter
	case strings.HasSuffix(host, "facebook.com"):
		return PlatformFacebook
	case strings.HasSuffix(host, "crunchbase.com"):
		return PlatformCrunchbase
	default:
		return PlatformUnknown
	}
}

// DirectlyFetchable reports whether a platform serves useful content to an
// anonymous HTTP client. Social platforms return login walls, so crawling
// them wastes a request and poisons the page cache.
func DirectlyFetchable(platform Platform) bool {
	switch platform {
	case PlatformLinkedIn, PlatformTwitter, PlatformFacebook:
		return false
	default:
		return true
	}
}

// PageKind categorizes a company website page by its URL path.
type PageKind string

const (
	// KindHome is the site root
	KindHome PageKind = "home"
	// KindAbout covers about/team/company pages
	KindAbout PageKind = "about"
	// KindServices covers services/products/solutions pages
	KindServices PageKind = "services"
	// KindNews covers blog/news/press pages
	KindNews PageKind = "news"
	// KindCareers covers careers/jobs pages
	KindCareers PageKind = "careers"
	// KindContact covers contact pages
	KindContact PageKind = "contact"
	// KindOther is any other page
	KindOther PageKind = "other"
)

// kindPathHints maps URL path fragments to page kinds. First match wins.
var kindPathHints = []struct {
	fragment string
	kind     PageKind
}{
	{"about", KindAbout},
	{"team", KindAbout},
	{"who-we-are", KindAbout},
	{"company", KindAbout},
	{"service", KindServices},
	{"product", KindServices},
	{"solution", KindServices},
	{"capabilities", KindServices},
	{"what-we-do", KindServices},
	{"blog", KindNews},
	{"news", KindNews},
	{"press", KindNews},
	{"insights", KindNews},
	{"career", KindCareers},
	{"jobs", KindCareers},
	{"join-us", KindCareers},
	{"contact", KindContact},
}

// ClassifyPageKind categorizes a URL by its path.
func ClassifyPageKind(urlStr string) PageKind {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return KindOther
	}

	path := strings.ToLower(strings.Trim(parsed.Path, "/"))
	if path == "" || path == "index.html" || path == "home" {
		return KindHome
	}

	for _, hint := range kindPathHints {
		if strings.Contains(path, hint.fragment) {
			return hint.kind
		}
	}
	return KindOther
}

// KindContentSelectors returns content selectors tuned for a page kind.
func KindContentSelectors(kind PageKind) []string {
	switch kind {
	case KindAbout:
		return []string{
			".about-content",
			".about-us",
			".team-content",
			"main",
			"article",
			".content",
			"#content",
		}
	case KindServices:
		return []string{
			".services-content",
			".products-content",
			".solutions",
			"main",
			"article",
			".content",
			"#content",
		}
	case KindNews:
		return []string{
			"article",
			".post-content",
			".blog-content",
			".news-content",
			".press-release",
			"main",
			".content",
		}
	case KindCareers:
		return []string{
			".careers-content",
			".open-positions",
			".job-listings",
			"main",
			"article",
			".content",
		}
	default:
		return DefaultTextSelectors()
	}
}

// CompanyNoiseSelectors lists elements to strip from small-business pages
// before text extraction. Nav, header, and footer are already covered by the
// boilerplate pass in ExtractMainText.
func CompanyNoiseSelectors() []string {
	return []string{
		// Forms and signups
		"form",
		".newsletter-signup",
		".newsletter",
		".subscribe-form",
		".contact-form",

		// Chat widgets and popups
		".chat-widget",
		"#intercom-container",
		".drift-widget",
		".modal",

		// Share and follow chrome
		".social-share",
		".share-buttons",
		".social-links",

		// Consent banners
		".cookie-banner",
		".cookie-consent",
		".gdpr-notice",
	}
}
