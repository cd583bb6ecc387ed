package render

import (
	"context"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// A4 paper size in inches
const (
	paperWidthInches  = 8.27
	paperHeightInches = 11.69
)

// Engine exports an HTML document to PDF. Implementations own a browser
// process and must release it in Close.
type Engine interface {
	RenderPDF(ctx context.Context, html string, marginInches float64) ([]byte, error)
	Close() error
}

// chromeEngine drives a headless Chrome instance over the DevTools protocol
type chromeEngine struct {
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
}

// newChromeEngine launches a headless browser. Chrome or Chromium must be
// installed on the system.
func newChromeEngine(ctx context.Context) (Engine, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Start the browser process up front so launch failures surface here
	// rather than in the middle of the render run.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, err
	}

	return &chromeEngine{
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
	}, nil
}

// RenderPDF loads the HTML into the browser, waits for the page to settle,
// and exports it as an A4 PDF with background graphics enabled.
func (e *chromeEngine) RenderPDF(ctx context.Context, html string, marginInches float64) ([]byte, error) {
	renderCtx := e.browserCtx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		renderCtx, cancel = context.WithDeadline(renderCtx, deadline)
		defer cancel()
	}

	var pdf []byte
	err := chromedp.Run(renderCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidthInches).
				WithPaperHeight(paperHeightInches).
				WithMarginTop(marginInches).
				WithMarginBottom(marginInches).
				WithMarginLeft(marginInches).
				WithMarginRight(marginInches).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}

	return pdf, nil
}

// Close shuts down the browser subprocess
func (e *chromeEngine) Close() error {
	e.cancelBrowser()
	e.cancelAlloc()
	return nil
}
