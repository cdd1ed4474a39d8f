package source

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/chromedp/chromedp"
)

// CaptureTimeout bounds a single page capture.
const CaptureTimeout = 10 * time.Second

// Capturer renders web pages to images with a shared headless browser.
type Capturer struct {
	Width  int
	Height int

	browser     context.Context
	allocCancel context.CancelFunc
	cancel      context.CancelFunc
}

// NewCapturer starts a headless browser sized w×h.
func NewCapturer(ctx context.Context, w, h int) *Capturer {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.WindowSize(w, h),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browser, cancel := chromedp.NewContext(allocCtx)

	return &Capturer{
		Width:       w,
		Height:      h,
		browser:     browser,
		allocCancel: allocCancel,
		cancel:      cancel,
	}
}

// Close shuts the browser down.
func (c *Capturer) Close() {
	c.cancel()
	c.allocCancel()
}

// CaptureHTML renders an HTML document.
func (c *Capturer) CaptureHTML(ctx context.Context, html string) (image.Image, error) {
	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html))
	return c.CaptureURL(ctx, dataURL)
}

// CaptureURL navigates a fresh tab to url and screenshots the viewport.
func (c *Capturer) CaptureURL(ctx context.Context, url string) (image.Image, error) {
	tabCtx, tabCancel := chromedp.NewContext(c.browser)
	defer tabCancel()

	runCtx, cancel := context.WithTimeout(tabCtx, CaptureTimeout)
	defer cancel()

	// stop the tab early if the caller gives up
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var p []byte
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.EmulateViewport(int64(c.Width), int64(c.Height)),
		chromedp.CaptureScreenshot(&p),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp run: %w", err)
	}

	img, err := png.Decode(bytes.NewReader(p))
	if err != nil {
		return nil, fmt.Errorf("png decode: %w", err)
	}
	return img, nil
}
