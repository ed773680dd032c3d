package fetch

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// minRenderedText is the extracted-text length below which a plain HTTP
// fetch is treated as a JavaScript shell. Company sites built on SPA
// frameworks often serve under a hundred characters of real text.
const minRenderedText = 500

// DefaultRenderTimeout bounds a single headless render, including
// navigation, script execution, and the settle delays.
const DefaultRenderTimeout = 30 * time.Second

// NeedsRender reports whether a fetched page is thin enough that headless
// rendering is worth the cost.
func NeedsRender(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < minRenderedText
}

// RenderOptions configures a headless page render.
type RenderOptions struct {
	// Timeout bounds the whole render. Zero means DefaultRenderTimeout.
	Timeout time.Duration
	// Verbose logs render progress.
	Verbose bool
}

// headlessFlags configure Chrome for unattended rendering inside
// containers, where there is no GPU and /dev/shm is tiny.
func headlessFlags() []chromedp.ExecAllocatorOption {
	return append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
}

// Render loads a URL in headless Chrome and returns the DOM serialized
// after scripts have run. Chrome or Chromium must be installed; callers
// treat an error as "use the thin HTTP text" rather than a fatal failure.
func Render(ctx context.Context, url string, opts *RenderOptions) (string, error) {
	timeout := DefaultRenderTimeout
	verbose := false
	if opts != nil {
		if opts.Timeout > 0 {
			timeout = opts.Timeout
		}
		verbose = opts.Verbose
	}

	if verbose {
		log.Printf("[browser] rendering %s", url)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, headlessFlags()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		// SPA frameworks hydrate after ready; give scripts a moment.
		chromedp.Sleep(3*time.Second),
		chromedp.ActionFunc(dismissConsentBanner),
		chromedp.Sleep(1*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	if verbose {
		log.Printf("[browser] rendered %s: %d bytes", url, len(html))
	}
	return html, nil
}

// dismissConsentBanner clicks the first visible cookie-consent button so
// the banner text does not drown out the page content. Sites without a
// banner are left alone; a miss is not an error.
func dismissConsentBanner(ctx context.Context) error {
	_ = chromedp.Click(
		`button[id*="accept" i], button[class*="accept" i], button[aria-label*="accept" i]`,
		chromedp.NodeVisible,
	).Do(ctx)
	return nil
}
