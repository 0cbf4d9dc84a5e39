package render

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/chromedp/chromedp"
)

const screenshotWidth = 1280

// RenderPNG renders an HTML page to a full-page PNG with a headless browser.
func RenderPNG(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html))
	var buf []byte
	err := chromedp.Run(ctx,
		chromedp.EmulateViewport(screenshotWidth, 900),
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(200*time.Millisecond),
		chromedp.FullScreenshot(&buf, 100),
	)
	if err != nil {
		return nil, err
	}
	return buf, nil
}
