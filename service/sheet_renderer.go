package service

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"
	"strconv"

	"sticker-studio/models"
)

//go:embed templates/print_sheet.html
var sheetTemplates embed.FS

var sheetTemplate = template.Must(template.ParseFS(sheetTemplates, "templates/print_sheet.html"))

const labelBaseline = 20.0 // mm from the top edge, inside the reserved header band

// SheetRenderer renders laid out documents as print-sized HTML.
// Every page is one SVG whose user unit is one millimeter.
type SheetRenderer struct{}

// NewSheetRenderer creates a new SheetRenderer
func NewSheetRenderer() *SheetRenderer {
	return &SheetRenderer{}
}

type lineView struct {
	X1, Y1, X2, Y2, Stroke string
}

type imageView struct {
	X, Y, W, H string
	Href       template.URL
}

type pageView struct {
	Number         int
	Label          string
	LabelX, LabelY string
	Lines          []lineView
	Images         []imageView
}

// formatMM renders a length rounded to the micron
func formatMM(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}

// RenderHTML renders doc with the artwork of each item taken from assets (keyed by item index).
// Registration marks are emitted before sticker images on every page.
func (r *SheetRenderer) RenderHTML(doc *models.Document, assets map[int]*StickerAsset) (string, error) {
	uris := make(map[int]template.URL, len(assets))
	pages := make([]pageView, 0, len(doc.Pages))

	for _, page := range doc.Pages {
		view := pageView{
			Number: page.Number,
			LabelX: formatMM(doc.Format.Width / 2),
			LabelY: formatMM(labelBaseline),
		}
		if doc.Label != "" {
			view.Label = fmt.Sprintf("%s · page %d/%d", doc.Label, page.Number, len(doc.Pages))
		}

		for _, mark := range page.Marks {
			for _, leg := range mark.Legs {
				view.Lines = append(view.Lines, lineView{
					X1:     formatMM(leg.X1),
					Y1:     formatMM(leg.Y1),
					X2:     formatMM(leg.X2),
					Y2:     formatMM(leg.Y2),
					Stroke: formatMM(mark.StrokeWidth),
				})
			}
		}

		for _, p := range page.Placements {
			href, ok := uris[p.ItemIndex]
			if !ok {
				asset := assets[p.ItemIndex]
				if asset == nil {
					return "", fmt.Errorf("no artwork for item %d on page %d", p.ItemIndex, page.Number)
				}
				href = template.URL(asset.DataURI())
				uris[p.ItemIndex] = href
			}
			view.Images = append(view.Images, imageView{
				X:    formatMM(p.X),
				Y:    formatMM(p.Y),
				W:    formatMM(p.Width),
				H:    formatMM(p.Height),
				Href: href,
			})
		}

		pages = append(pages, view)
	}

	title := doc.Label
	if title == "" {
		title = "Print sheet"
	}

	data := struct {
		Title  string
		Width  string
		Height string
		Pages  []pageView
	}{
		Title:  title,
		Width:  formatMM(doc.Format.Width),
		Height: formatMM(doc.Format.Height),
		Pages:  pages,
	}

	var buf bytes.Buffer
	if err := sheetTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
