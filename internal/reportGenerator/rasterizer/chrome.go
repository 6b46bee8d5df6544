package rasterizer

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/KotFed0t/netbuy_report_bot/utils"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Chrome renders the document in headless Chrome and saves a full page screenshot.
type Chrome struct {
	execPath string
	width    int
}

func NewChrome(execPath string, width int) *Chrome {
	return &Chrome{execPath: execPath, width: width}
}

// Check only validates an explicit executable, otherwise chromedp looks Chrome up itself.
func (c *Chrome) Check() error {
	if c.execPath == "" {
		return nil
	}
	if _, err := os.Stat(c.execPath); err != nil {
		return fmt.Errorf("chrome at %s: %w", c.execPath, err)
	}
	return nil
}

func (c *Chrome) Rasterize(ctx context.Context, html []byte, outPath string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Chrome.Rasterize"

	slog.Debug("Rasterize start", slog.String("rqID", rqID), slog.String("op", op), slog.String("out", outPath))

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.WindowSize(c.width, 400),
	)
	if c.execPath != "" {
		opts = append(opts, chromedp.ExecPath(c.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var buf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// quality 100 produces png
		chromedp.FullScreenshot(&buf, 100),
	)
	if err != nil {
		slog.Error("chrome screenshot failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if err := os.WriteFile(outPath, buf, 0o644); err != nil {
		return err
	}

	slog.Debug("Rasterize completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("bytes", len(buf)))

	return nil
}
