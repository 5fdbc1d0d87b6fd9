package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"sticker-studio/models"
)

const defaultPrintTimeout = 60 * time.Second

// waitForImagesJS resolves once every embedded image in the sheet has decoded
const waitForImagesJS = `
	(function() {
		return Promise.all(Array.from(document.querySelectorAll('image')).map(img => {
			if (typeof img.decode === 'function') {
				return img.decode().catch(() => null);
			}
			return null;
		})).then(() => true);
	})();
`

// detectChromePath detects the path to Chrome/Chromium executable
// Checks the configured path first, then common installation paths
func detectChromePath(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// ChromePDFPrinter prints HTML sheets to PDF with headless Chrome
// Implements PDFPrinterInterface
type ChromePDFPrinter struct {
	chromePath string
	timeout    time.Duration
}

// NewChromePDFPrinter creates a printer; chromePath may be empty for auto-detection
func NewChromePDFPrinter(chromePath string, timeout time.Duration) *ChromePDFPrinter {
	if timeout <= 0 {
		timeout = defaultPrintTimeout
	}
	return &ChromePDFPrinter{
		chromePath: chromePath,
		timeout:    timeout,
	}
}

// Ensure ChromePDFPrinter implements PDFPrinterInterface
var _ PDFPrinterInterface = (*ChromePDFPrinter)(nil)

func mmToInches(mm float64) float64 {
	return mm / mmPerInch
}

// PrintPDF loads htmlContent into a blank tab and prints it with zero margins on
// paper of exactly the sheet format
func (p *ChromePDFPrinter) PrintPDF(ctx context.Context, htmlContent string, format models.PageFormat) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
	)
	if chromePath := detectChromePath(p.chromePath); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	} else {
		log.Printf("⚠️  PrintPDF: Chrome not found in known paths, letting chromedp auto-detect")
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	var imagesReady bool
	var pdfBuf []byte

	err := chromedp.Run(chromedpCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("failed to get frame tree: %w", err)
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(waitForImagesJS, &imagesReady, func(params *runtime.EvaluateParams) *runtime.EvaluateParams {
			return params.WithAwaitPromise(true)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				WithPaperWidth(mmToInches(format.Width)).
				WithPaperHeight(mmToInches(format.Height)).
				WithMarginTop(0). // Marks are positioned from the physical page edge
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithScale(1).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	log.Printf("🖨️  PrintPDF: generated %d bytes (%s %.1fx%.1fmm)", len(pdfBuf), format.Name, format.Width, format.Height)
	return pdfBuf, nil
}
