package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL(t *testing.T) {
	var gotUserAgent string
	mux := http.NewServeMux()
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><h1>Riverside Plumbing</h1></body></html>"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	t.Run("success", func(t *testing.T) {
		result, err := URL(context.Background(), server.URL+"/about", nil)
		require.NoError(t, err)
		assert.Equal(t, server.URL+"/about", result.URL)
		assert.Contains(t, result.HTML, "<h1>Riverside Plumbing</h1>")
		assert.Equal(t, http.StatusOK, result.StatusCode)
		assert.Equal(t, DefaultUserAgent, gotUserAgent)
	})

	t.Run("http error keeps partial result", func(t *testing.T) {
		result, err := URL(context.Background(), server.URL+"/missing", nil)
		require.Error(t, err)
		require.NotNil(t, result)
		assert.Equal(t, http.StatusNotFound, result.StatusCode)

		var fetchErr *Error
		assert.ErrorAs(t, err, &fetchErr)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := URL(context.Background(), "not-a-valid-url", nil)
		require.Error(t, err)

		var fetchErr *Error
		assert.ErrorAs(t, err, &fetchErr)
		assert.Contains(t, err.Error(), "invalid URL")
	})
}

func TestExtractMainText_WithMainElement(t *testing.T) {
	html := `<html><body>
		<nav>Home | Services | Contact</nav>
		<main>
			<h1>Riverside Plumbing</h1>
			<p>Emergency pipe repair across the metro area.</p>
		</main>
		<footer>© Riverside Plumbing</footer>
	</body></html>`

	text, err := ExtractMainText(html, DefaultTextSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Riverside Plumbing")
	assert.Contains(t, text, "Emergency pipe repair")
	assert.NotContains(t, text, "Home | Services")
	assert.NotContains(t, text, "©")
}

func TestExtractMainText_FallbackToBody(t *testing.T) {
	html := `<html><body><div>Family-owned since 1998.</div></body></html>`

	text, err := ExtractMainText(html, DefaultTextSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Family-owned since 1998")
}

func TestExtractMainText_AboutPageSelectors(t *testing.T) {
	html := `<html><body>
		<div class="sidebar">Sidebar junk</div>
		<div class="about-content">
			<h2>Our Story</h2>
			<p>Founded in 2015 to build industrial software.</p>
		</div>
	</body></html>`

	text, err := ExtractMainText(html, KindContentSelectors(KindAbout))
	require.NoError(t, err)
	assert.Contains(t, text, "Our Story")
	assert.Contains(t, text, "industrial software")
	assert.NotContains(t, text, "Sidebar junk")
}

func TestExtractMainText_NoiseSelectors(t *testing.T) {
	html := `<html><body><main>
		<p>Real content.</p>
		<div class="newsletter-signup">Subscribe now!</div>
	</main></body></html>`

	text, err := ExtractMainText(html, DefaultTextSelectors(), CompanyNoiseSelectors()...)
	require.NoError(t, err)
	assert.Contains(t, text, "Real content")
	assert.NotContains(t, text, "Subscribe now")
}

func TestExtractLinks(t *testing.T) {
	html := `<html><body>
		<a href="/about">About</a>
		<a href="https://example.com/services">Services</a>
		<a href="https://other-site.com/page">External</a>
		<a href="mailto:hi@example.com">Email</a>
		<a href="#section">Anchor</a>
		<a href="/about">About again</a>
	</body></html>`

	links, err := ExtractLinks(html, "https://example.com/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/about",
		"https://example.com/services",
	}, links)
}

func TestExtractLinks_DropsFragments(t *testing.T) {
	html := `<a href="https://example.com/about#team">Team</a>`

	links, err := ExtractLinks(html, "https://example.com/")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "https://example.com/about", links[0])
}

func TestDefaultTextSelectors(t *testing.T) {
	selectors := DefaultTextSelectors()
	assert.Contains(t, selectors, "main")
	assert.Contains(t, selectors, "article")
}
