package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"sticker-studio/layout"
	"sticker-studio/models"
	"sticker-studio/pricing"
	"sticker-studio/repository"
	"sticker-studio/utils"
)

const (
	defaultFetchConcurrency = 4
	pdfContentType          = "application/pdf"
)

// validOrderID keeps order ids usable as a single path segment
var validOrderID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ErrInvalidRequest is matched by every validation error of a print job request
var ErrInvalidRequest = errors.New("invalid print job request")

// Sheet is a laid out document together with the decoded artwork of every placed item
type Sheet struct {
	Document *models.Document
	Assets   map[int]*StickerAsset // keyed by item index
	Failures []models.ItemFailure
}

// PlacedItems returns how many items made it onto the sheet
func (s *Sheet) PlacedItems() int {
	return len(s.Assets)
}

// BuildResult is a sheet serialized to PDF. PDF is nil when no item could be placed.
type BuildResult struct {
	Sheet
	PDF []byte
}

// PrintServiceConfig holds the tunables of the print pipeline
type PrintServiceConfig struct {
	FetchConcurrency int
	Location         *time.Location // timezone of the date folder, UTC when nil
}

// PrintService turns purchased items into stored print-ready documents
type PrintService struct {
	sizes       *pricing.SizeTable
	engine      *layout.Engine
	fetcher     AssetFetcherInterface
	renderer    *SheetRenderer
	printer     PDFPrinterInterface
	store       DocumentStoreInterface
	jobs        repository.PrintJobRepositoryInterface
	concurrency int
	location    *time.Location
	now         func() time.Time
}

// NewPrintService creates a new PrintService. store and jobs may be nil when the caller
// only builds documents (BuildSheet, PrepareSheet).
func NewPrintService(
	sizes *pricing.SizeTable,
	engine *layout.Engine,
	fetcher AssetFetcherInterface,
	printer PDFPrinterInterface,
	store DocumentStoreInterface,
	jobs repository.PrintJobRepositoryInterface,
	cfg PrintServiceConfig,
) *PrintService {
	concurrency := cfg.FetchConcurrency
	if concurrency <= 0 {
		concurrency = defaultFetchConcurrency
	}
	location := cfg.Location
	if location == nil {
		location = time.UTC
	}
	return &PrintService{
		sizes:       sizes,
		engine:      engine,
		fetcher:     fetcher,
		renderer:    NewSheetRenderer(),
		printer:     printer,
		store:       store,
		jobs:        jobs,
		concurrency: concurrency,
		location:    location,
		now:         time.Now,
	}
}

// Renderer returns the HTML renderer used for PDF output
func (s *PrintService) Renderer() *SheetRenderer {
	return s.renderer
}

func newFailure(index int, item models.StickerItem, kind string, err error) models.ItemFailure {
	return models.ItemFailure{
		Index:     index,
		ImageURL:  item.ImageURL,
		SizeClass: item.SizeClass,
		Name:      item.Name,
		Kind:      kind,
		Reason:    err.Error(),
	}
}

// PrepareSheet fetches and decodes every item's artwork and lays the successful items out.
// Failing items are skipped and reported; they never abort the build.
func (s *PrintService) PrepareSheet(ctx context.Context, items []models.StickerItem, label string) (*Sheet, error) {
	indexes := make([]int, len(items))
	for i := range items {
		indexes[i] = i
	}
	return s.prepare(ctx, items, indexes, label)
}

func (s *PrintService) prepare(ctx context.Context, items []models.StickerItem, indexes []int, label string) (*Sheet, error) {
	type outcome struct {
		asset   *StickerAsset
		failure *models.ItemFailure
	}
	outcomes := make([]outcome, len(items))

	// Each task records its own outcome and returns nil so no failure cancels a sibling.
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, item := range items {
		index := indexes[i]

		if _, err := s.sizes.Resolve(item.SizeClass); err != nil {
			log.Printf("⚠️  PrepareSheet: item %d rejected: %v", index, err)
			f := newFailure(index, item, models.FailureInvalidSizeClass, err)
			outcomes[i].failure = &f
			continue
		}

		g.Go(func() error {
			data, err := s.fetcher.Fetch(ctx, item.ImageURL)
			if err != nil {
				log.Printf("❌ PrepareSheet: item %d fetch failed: %v", index, err)
				f := newFailure(index, item, models.FailureFetch, err)
				outcomes[i].failure = &f
				return nil
			}

			asset, err := DecodeAsset(data)
			if err != nil {
				assemblyErr := &AssemblyError{ItemIndex: index, URL: item.ImageURL, Err: err}
				log.Printf("❌ PrepareSheet: %v", assemblyErr)
				f := newFailure(index, item, models.FailureAssembly, assemblyErr)
				outcomes[i].failure = &f
				return nil
			}

			outcomes[i].asset = asset
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("print build aborted: %w", err)
	}

	sheet := &Sheet{Assets: make(map[int]*StickerAsset)}
	var placeable []models.StickerItem
	var placeableIndexes []int
	for i, o := range outcomes {
		if o.failure != nil {
			sheet.Failures = append(sheet.Failures, *o.failure)
			continue
		}
		placeable = append(placeable, items[i])
		placeableIndexes = append(placeableIndexes, indexes[i])
		sheet.Assets[indexes[i]] = o.asset
	}

	result := s.engine.LayoutIndexed(placeable, placeableIndexes)
	sheet.Failures = append(sheet.Failures, result.Failures...)
	for _, f := range result.Failures {
		delete(sheet.Assets, f.Index)
	}
	sheet.Document = result.Document
	sheet.Document.Label = label

	log.Printf("📐 PrepareSheet: %d pages, %d items placed, %d failed", len(sheet.Document.Pages), sheet.PlacedItems(), len(sheet.Failures))
	return sheet, nil
}

// BuildSheet prepares a sheet and serializes it to PDF
func (s *PrintService) BuildSheet(ctx context.Context, items []models.StickerItem, label string) (*BuildResult, error) {
	indexes := make([]int, len(items))
	for i := range items {
		indexes[i] = i
	}
	return s.build(ctx, items, indexes, label)
}

func (s *PrintService) build(ctx context.Context, items []models.StickerItem, indexes []int, label string) (*BuildResult, error) {
	sheet, err := s.prepare(ctx, items, indexes, label)
	if err != nil {
		return nil, err
	}

	result := &BuildResult{Sheet: *sheet}
	if len(sheet.Document.Pages) == 0 {
		log.Printf("⚠️  BuildSheet: no items could be placed, skipping PDF")
		return result, nil
	}

	htmlContent, err := s.renderer.RenderHTML(sheet.Document, sheet.Assets)
	if err != nil {
		return nil, fmt.Errorf("failed to render sheet: %w", err)
	}

	pdf, err := s.printer.PrintPDF(ctx, htmlContent, sheet.Document.Format)
	if err != nil {
		return nil, err
	}
	result.PDF = pdf
	return result, nil
}

// RequestItems converts the collaborator's item list into sticker items.
// A missing size defaults to regular and a missing quantity to a full pack; a size that is
// present but unknown is kept as is so the build reports it as an invalid size class.
func RequestItems(reqItems []models.PrintItemRequest) ([]models.StickerItem, error) {
	items := make([]models.StickerItem, 0, len(reqItems))
	for i, r := range reqItems {
		if r.ImageURL == "" {
			return nil, fmt.Errorf("%w: item %d: imageUrl is required", ErrInvalidRequest, i)
		}

		size := models.SizeRegular
		if r.Size != nil {
			parsed, err := pricing.ParseSizeClass(*r.Size)
			if err != nil {
				size = models.SizeClass(*r.Size)
			} else {
				size = parsed
			}
		}

		qty := layout.PackSize
		if r.Qty != nil {
			if *r.Qty < 1 {
				return nil, fmt.Errorf("%w: item %d: qty must be at least 1", ErrInvalidRequest, i)
			}
			qty = *r.Qty
		}

		items = append(items, models.StickerItem{
			ImageURL:  r.ImageURL,
			SizeClass: size,
			Quantity:  qty,
			Name:      r.Name,
		})
	}
	return items, nil
}

// Fulfill builds, stores and records the print-ready documents of one order
func (s *PrintService) Fulfill(ctx context.Context, req models.PrintJobRequest) (*models.PrintJob, error) {
	if req.OrderID == "" {
		return nil, fmt.Errorf("%w: orderId is required", ErrInvalidRequest)
	}
	if !validOrderID.MatchString(req.OrderID) {
		return nil, fmt.Errorf("%w: orderId %q may only contain letters, digits, '-' and '_'", ErrInvalidRequest, req.OrderID)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrInvalidRequest)
	}
	if s.store == nil {
		return nil, fmt.Errorf("print service has no document store configured")
	}

	items, err := RequestItems(req.Items)
	if err != nil {
		return nil, err
	}

	log.Printf("🖨️  Fulfill: order %s, %d items (perItem=%v)", req.OrderID, len(items), req.PerItem)

	job := &models.PrintJob{
		ID:            uuid.NewString(),
		OrderID:       req.OrderID,
		CustomerEmail: req.CustomerEmail,
		Documents:     []models.PrintDocument{},
		Failures:      []models.ItemFailure{},
		CreatedAt:     s.now().UTC(),
	}
	date := utils.FolderDate(job.CreatedAt, s.location)

	type batch struct {
		items   []models.StickerItem
		indexes []int
		path    string
		label   string
	}
	var batches []batch
	if req.PerItem {
		seen := make(map[string]bool, len(items))
		for i, item := range items {
			docPath := utils.ItemDocumentPath(date, req.OrderID, string(item.SizeClass), item.Name)
			if seen[docPath] {
				// Same size and name as an earlier item: keep both files
				docPath = strings.TrimSuffix(docPath, ".pdf") + fmt.Sprintf("_%d.pdf", i)
			}
			seen[docPath] = true
			batches = append(batches, batch{
				items:   []models.StickerItem{item},
				indexes: []int{i},
				path:    docPath,
				label:   fmt.Sprintf("Order %s · %s (%s)", req.OrderID, displayName(item.Name), item.SizeClass),
			})
		}
	} else {
		indexes := make([]int, len(items))
		for i := range items {
			indexes[i] = i
		}
		batches = append(batches, batch{
			items:   items,
			indexes: indexes,
			path:    utils.OrderDocumentPath(date, req.OrderID),
			label:   fmt.Sprintf("Order %s", req.OrderID),
		})
	}

	for _, b := range batches {
		result, err := s.build(ctx, b.items, b.indexes, b.label)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s: %w", b.path, err)
		}
		job.Failures = append(job.Failures, result.Failures...)
		if result.PDF == nil {
			continue
		}

		url, err := s.store.Save(ctx, b.path, result.PDF, pdfContentType)
		if err != nil {
			return nil, fmt.Errorf("failed to store %s: %w", b.path, err)
		}

		job.Documents = append(job.Documents, models.PrintDocument{
			Path:        b.path,
			URL:         url,
			PageCount:   len(result.Document.Pages),
			PlacedItems: result.PlacedItems(),
		})
		job.PageCount += len(result.Document.Pages)
		job.PlacedItems += result.PlacedItems()
	}
	job.FailedItems = len(job.Failures)

	if s.jobs != nil {
		if err := s.jobs.Insert(ctx, job); err != nil {
			return job, fmt.Errorf("failed to record print job: %w", err)
		}
	}

	log.Printf("✅ Fulfill: order %s -> %d documents, %d pages, %d placed, %d failed",
		req.OrderID, len(job.Documents), job.PageCount, job.PlacedItems, job.FailedItems)
	return job, nil
}

func displayName(name string) string {
	if name == "" {
		return "sticker"
	}
	return name
}
