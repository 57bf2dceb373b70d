// Package fetch retrieves job postings from the web and reduces them to their
// main text.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ATSOptimizer/1.0)"

// Result holds the raw and processed content from a URL fetch.
type Result struct {
	URL         string
	HTML        string
	Text        string
	ContentType string
	StatusCode  int
	Platform    Platform
	// Rendered is true when the HTML came from the headless browser.
	Rendered  bool
	FromCache bool
}

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	// MinTextLength is the shortest extracted text accepted without a browser render.
	MinTextLength int
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:       DefaultTimeout,
		UserAgent:     DefaultUserAgent,
		MinTextLength: MinContentLength,
	}
}

// Fetcher downloads pages over HTTP and falls back to a Renderer for pages
// whose content is produced by JavaScript.
type Fetcher struct {
	client   *resty.Client
	renderer Renderer
	opts     Options
	logger   *zap.Logger
}

// NewFetcher creates a Fetcher. renderer may be nil to disable the browser fallback.
func NewFetcher(opts *Options, renderer Renderer, logger *zap.Logger) *Fetcher {
	o := DefaultOptions()
	if opts != nil {
		o.Headers = opts.Headers
		if opts.Timeout > 0 {
			o.Timeout = opts.Timeout
		}
		if opts.UserAgent != "" {
			o.UserAgent = opts.UserAgent
		}
		if opts.MinTextLength > 0 {
			o.MinTextLength = opts.MinTextLength
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetTimeout(o.Timeout).
		SetHeader("User-Agent", o.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8").
		SetHeaders(o.Headers).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))

	return &Fetcher{client: client, renderer: renderer, opts: *o, logger: logger}
}

// URL retrieves HTML content from a URL. On a non-200 status the partial
// result is returned together with the error.
func (f *Fetcher) URL(ctx context.Context, urlStr string) (*Result, error) {
	if err := validateURL(urlStr); err != nil {
		return nil, err
	}

	resp, err := f.client.R().SetContext(ctx).Get(urlStr)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}

	result := &Result{
		URL:         urlStr,
		HTML:        string(resp.Body()),
		ContentType: resp.Header().Get("Content-Type"),
		StatusCode:  resp.StatusCode(),
		Platform:    DetectPlatform(urlStr),
	}

	if resp.StatusCode() != http.StatusOK {
		return result, &Error{URL: urlStr, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode())}
	}
	return result, nil
}

// JobPosting fetches a job posting and extracts its description text using
// platform-specific selectors. When the extracted text is too short and a
// Renderer is configured, the page is rendered in a headless browser instead.
func (f *Fetcher) JobPosting(ctx context.Context, urlStr string) (*Result, error) {
	result, err := f.URL(ctx, urlStr)
	if err != nil {
		return nil, err
	}

	text, err := ExtractMainText(result.HTML, PlatformContentSelectors(result.Platform), PlatformNoiseSelectors(result.Platform)...)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to parse HTML", Cause: err}
	}
	result.Text = text

	if !ShouldUseBrowser(text, f.opts.MinTextLength) || f.renderer == nil {
		return result, nil
	}

	f.logger.Info("job posting text too short, rendering in browser",
		zap.String("url", urlStr),
		zap.Int("chars", len(text)),
	)
	html, err := f.renderer.Render(ctx, urlStr)
	if err != nil {
		// Keep the HTTP result; a short description is better than none.
		f.logger.Warn("browser render failed", zap.String("url", urlStr), zap.Error(err))
		return result, nil
	}

	rendered, err := ExtractMainText(html, PlatformContentSelectors(result.Platform), PlatformNoiseSelectors(result.Platform)...)
	if err != nil || len(rendered) <= len(text) {
		return result, nil
	}
	result.HTML = html
	result.Text = rendered
	result.Rendered = true
	return result, nil
}

func validateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Host == "" {
		return &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return &Error{URL: urlStr, Message: fmt.Sprintf("invalid URL: unsupported scheme %q", parsed.Scheme)}
	}
	return nil
}

// ExtractMainText parses HTML and returns the main body text.
// It removes noise elements using noiseSelectors, then finds content using contentSelectors.
// If no content selectors match, it falls back to the body element.
func ExtractMainText(html string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("nav, footer, header, script, style, noscript, svg, .ad, .advertisement, .ads, .sidebar, .cookie-banner, .popup").Remove()
	if len(noiseSelectors) > 0 {
		doc.Find(strings.Join(noiseSelectors, ", ")).Remove()
	}

	var mainContent *goquery.Selection
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			mainContent = selection.First()
			break
		}
	}
	if mainContent == nil {
		mainContent = doc.Find("body")
	}

	// Block elements become line breaks so bullets survive as separate lines.
	mainContent.Find("br").ReplaceWithHtml("\n")
	mainContent.Find("p, li, h1, h2, h3, h4, h5, h6, div, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	mainContent.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("- ")
	})

	return cleanWhitespace(mainContent.Text()), nil
}

// DefaultTextSelectors returns standard selectors for general web content.
func DefaultTextSelectors() []string {
	return []string{
		"main",
		"article",
		".content",
		"#content",
		".main-content",
		"#main-content",
	}
}

// JobPostingSelectors returns selectors optimized for job board pages.
func JobPostingSelectors() []string {
	return []string{
		".job-description",
		".job-content",
		"#job-description",
		"#job-content",
		".posting-content",
		".job-details",
		"[data-testid='job-description']",
		"main",
		"article",
		".content",
		"#content",
	}
}

// cleanWhitespace trims every line, collapses inner spacing and drops empty lines.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" && line != "-" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
