package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// MinContentLength is the default minimum extracted text length to consider an
// HTTP fetch successful.
const MinContentLength = 500

// ShouldUseBrowser returns true if the extracted text is shorter than minLength,
// indicating the page is likely rendered by JavaScript.
func ShouldUseBrowser(extractedText string, minLength int) bool {
	return len(strings.TrimSpace(extractedText)) < minLength
}

const dismissCookieBanners = `(() => {
	const buttons = document.querySelectorAll('button[id*="accept"], button[class*="accept"]');
	buttons.forEach(b => b.click());
	return buttons.length;
})()`

// Renderer returns the HTML of a page after scripts have run.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// ChromeRenderer renders pages in headless Chrome. Requires Chrome/Chromium
// to be installed on the system.
type ChromeRenderer struct {
	Timeout time.Duration
	// Settle is how long to wait after the body is ready for client-side rendering.
	Settle time.Duration
	logger *zap.Logger
}

// NewChromeRenderer returns a renderer with a 30s timeout.
func NewChromeRenderer(logger *zap.Logger) *ChromeRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChromeRenderer{Timeout: 30 * time.Second, Settle: 3 * time.Second, logger: logger}
}

// Render navigates to url and returns the rendered document HTML.
func (r *ChromeRenderer) Render(ctx context.Context, url string) (string, error) {
	r.logger.Debug("starting headless browser", zap.String("url", url))

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(DefaultUserAgent),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, r.Timeout)
	defer cancel()

	var html string
	var dismissed int
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(r.Settle),
		chromedp.Evaluate(dismissCookieBanners, &dismissed),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	r.logger.Debug("rendered page", zap.String("url", url), zap.Int("bytes", len(html)))
	return html, nil
}
