package datasource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/richard-senior/matchodds/internal/logger"
)

// BrowserFetcher renders pages in headless Chromium
// Some stats pages build their tables with JavaScript and return nothing useful to a plain GET
type BrowserFetcher struct {
	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	timeout time.Duration
}

// NewBrowserFetcher starts the playwright driver and launches chromium
// install fetches the driver and browser first when they are missing
func NewBrowserFetcher(install bool, timeout time.Duration) (*BrowserFetcher, error) {
	if install {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return nil, fmt.Errorf("failed to install playwright: %w", err)
		}
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch chromium: %w", err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BrowserFetcher{pw: pw, browser: browser, timeout: timeout}, nil
}

func (f *BrowserFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// one page at a time, the sites throttle parallel sessions
	f.mu.Lock()
	defer f.mu.Unlock()

	page, err := f.browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()

	logger.Inform("Browser get called for", url)
	timeout := f.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	}); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", url, err)
	}

	html, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read page content: %w", err)
	}
	return []byte(html), nil
}

// Close shuts the browser and the driver down
func (f *BrowserFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.browser.Close(); err != nil {
		logger.Warn("Failed to close browser", err)
	}
	return f.pw.Stop()
}
