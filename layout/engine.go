package layout

import (
	"fmt"
	"log"

	"sticker-studio/models"
)

const (
	// PackSize is the number of stickers cut from one purchased design
	PackSize = 4

	defaultTopOffset  = 30.0 // reserved for shop/order identification
	defaultGutter     = 10.0
	defaultMarkLeg    = 6.0
	defaultMarkStroke = 1.0
)

// Resolver maps a size class to its physical footprint
type Resolver interface {
	Resolve(size models.SizeClass) (models.Footprint, error)
}

// Options configures sheet geometry, in millimeters
type Options struct {
	Format     models.PageFormat
	TopOffset  float64
	Gutter     float64
	MarkLeg    float64
	MarkStroke float64
}

// DefaultOptions returns the A4 print-then-cut geometry
func DefaultOptions() Options {
	return Options{
		Format:     models.A4,
		TopOffset:  defaultTopOffset,
		Gutter:     defaultGutter,
		MarkLeg:    defaultMarkLeg,
		MarkStroke: defaultMarkStroke,
	}
}

// sheetPolicy is the fixed cut-tool density for a size class
type sheetPolicy struct {
	pages   int
	perPage int
	columns int
}

func policyFor(size models.SizeClass, quantity int) sheetPolicy {
	if size == models.SizeLarge {
		// Large stickers are cut two per sheet, stacked in one column.
		return sheetPolicy{pages: 2, perPage: 2, columns: 1}
	}
	perPage := quantity
	if perPage < 1 {
		perPage = 1
	}
	if perPage > PackSize {
		perPage = PackSize
	}
	return sheetPolicy{pages: 1, perPage: perPage, columns: 2}
}

// Result holds the laid out document and the items that could not be laid out
type Result struct {
	Document *models.Document
	Failures []models.ItemFailure
}

// Engine computes deterministic sheet layouts
type Engine struct {
	resolver Resolver
	opts     Options
}

// NewEngine creates a layout engine over a size resolver
func NewEngine(resolver Resolver, opts Options) *Engine {
	return &Engine{
		resolver: resolver,
		opts:     opts,
	}
}

// Format returns the page format the engine lays out on
func (e *Engine) Format() models.PageFormat {
	return e.opts.Format
}

// PageCount returns how many pages an item of the given size occupies
func PageCount(size models.SizeClass) int {
	return policyFor(size, PackSize).pages
}

// Layout places every item, in input order, on pages of its own.
// Items whose size class cannot be resolved are reported as failures and get no pages.
func (e *Engine) Layout(items []models.StickerItem) Result {
	return e.LayoutIndexed(items, nil)
}

// LayoutIndexed behaves like Layout, reporting indexes[i] as the item index of items[i].
// A nil indexes slice uses the position in items.
func (e *Engine) LayoutIndexed(items []models.StickerItem, indexes []int) Result {
	doc := &models.Document{
		Format: e.opts.Format,
		Pages:  []models.Page{},
	}
	var failures []models.ItemFailure

	for i, item := range items {
		index := i
		if indexes != nil {
			index = indexes[i]
		}

		fp, err := e.resolver.Resolve(item.SizeClass)
		if err != nil {
			log.Printf("⚠️  Layout: skipping item %d (%s): %v", index, item.ImageURL, err)
			failures = append(failures, models.ItemFailure{
				Index:     index,
				ImageURL:  item.ImageURL,
				SizeClass: item.SizeClass,
				Name:      item.Name,
				Kind:      models.FailureInvalidSizeClass,
				Reason:    err.Error(),
			})
			continue
		}

		policy := policyFor(item.SizeClass, item.Quantity)
		for p := 0; p < policy.pages; p++ {
			doc.Pages = append(doc.Pages, e.newPage(len(doc.Pages)+1, index, item.SizeClass, fp, policy))
		}
	}

	return Result{Document: doc, Failures: failures}
}

// newPage lays out one sheet: marks first, then the grid of placements
func (e *Engine) newPage(number int, index int, size models.SizeClass, fp models.Footprint, policy sheetPolicy) models.Page {
	page := models.Page{
		Number:     number,
		ItemIndex:  index,
		Marks:      RegistrationMarks(e.opts.Format, e.opts.MarkLeg, e.opts.MarkStroke),
		Placements: make([]models.Placement, 0, policy.perPage),
	}

	cols := policy.columns
	if policy.perPage < cols {
		cols = policy.perPage
	}
	blockWidth := float64(cols)*fp.Width + float64(cols-1)*e.opts.Gutter
	startX := (e.opts.Format.Width - blockWidth) / 2
	startY := e.opts.TopOffset

	for pos := 0; pos < policy.perPage; pos++ {
		col := pos % policy.columns
		row := pos / policy.columns
		page.Placements = append(page.Placements, models.Placement{
			ItemIndex: index,
			SizeClass: size,
			X:         startX + float64(col)*(fp.Width+e.opts.Gutter),
			Y:         startY + float64(row)*(fp.Height+e.opts.Gutter),
			Width:     fp.Width,
			Height:    fp.Height,
		})
	}

	return page
}

// Validate checks that every placement of a document lies on its page and that no
// two placements on the same page overlap
func Validate(doc *models.Document) error {
	for _, page := range doc.Pages {
		for i, a := range page.Placements {
			if a.X < 0 || a.Y < 0 || a.X+a.Width > doc.Format.Width || a.Y+a.Height > doc.Format.Height {
				return fmt.Errorf("page %d: placement %d exceeds the page", page.Number, i)
			}
			for j := i + 1; j < len(page.Placements); j++ {
				if overlaps(a, page.Placements[j]) {
					return fmt.Errorf("page %d: placements %d and %d overlap", page.Number, i, j)
				}
			}
		}
	}
	return nil
}

func overlaps(a, b models.Placement) bool {
	return a.X < b.X+b.Width && b.X < a.X+a.Width &&
		a.Y < b.Y+b.Height && b.Y < a.Y+a.Height
}
