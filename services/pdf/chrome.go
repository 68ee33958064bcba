// Package pdfsvc renders HTML documents to PDF with headless Chrome.
package pdfsvc

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/trezcool/tuition/core"
)

const (
	// A4, in inches
	paperWidth  = 8.27
	paperHeight = 11.69
	// 20px at 96dpi, in inches
	margin = 20.0 / 96
)

// ChromeRenderer starts a headless browser for each document, or attaches to RemoteURL when configured.
type ChromeRenderer struct {
	conf   core.PDFConfig
	logger core.Logger
}

var _ core.PDFRenderer = (*ChromeRenderer)(nil)

func NewChromeRenderer(conf *core.Config, logger core.Logger) *ChromeRenderer {
	return &ChromeRenderer{conf: conf.PDF, logger: logger}
}

func (r *ChromeRenderer) allocator(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.conf.RemoteURL != "" {
		return chromedp.NewRemoteAllocator(ctx, r.conf.RemoteURL)
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.DisableGPU,
	)
	if r.conf.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.conf.ChromePath))
	}
	return chromedp.NewExecAllocator(ctx, opts...)
}

func (r *ChromeRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	if r.conf.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.conf.Timeout)
		defer cancel()
	}
	allocCtx, cancelAlloc := r.allocator(ctx)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(margin).
				WithMarginRight(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		r.logger.Error(fmt.Sprintf("rendering pdf: %v", err), err)
		return nil, &core.RenderError{Message: "Failed to generate PDF", Err: err}
	}
	return pdf, nil
}
