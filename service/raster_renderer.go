package service

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"sticker-studio/models"
)

const (
	defaultPreviewDPI = 300.0
	mmPerInch         = 25.4
)

// RasterRenderer renders laid out pages to bitmaps at a fixed resolution
type RasterRenderer struct {
	DPI float64
}

// NewRasterRenderer creates a renderer at dpi (300 when zero)
func NewRasterRenderer(dpi float64) *RasterRenderer {
	if dpi <= 0 {
		dpi = defaultPreviewDPI
	}
	return &RasterRenderer{DPI: dpi}
}

// px converts millimeters to device pixels
func (r *RasterRenderer) px(mm float64) int {
	return int(math.Round(mm * r.DPI / mmPerInch))
}

func (r *RasterRenderer) rect(x0, y0, x1, y1 float64) image.Rectangle {
	rect := image.Rect(r.px(x0), r.px(y0), r.px(x1), r.px(y1))
	// Keep hairlines visible at low preview resolutions
	if rect.Dx() == 0 {
		rect.Max.X++
	}
	if rect.Dy() == 0 {
		rect.Max.Y++
	}
	return rect
}

// RenderPage draws one page: white sheet, registration marks, then stickers stretched to
// their exact footprint
func (r *RasterRenderer) RenderPage(doc *models.Document, page models.Page, assets map[int]*StickerAsset) (*image.NRGBA, error) {
	canvas := imaging.New(r.px(doc.Format.Width), r.px(doc.Format.Height), color.White)
	ink := image.NewUniform(color.Black)

	for _, mark := range page.Marks {
		half := mark.StrokeWidth / 2
		for _, leg := range mark.Legs {
			x0, x1 := math.Min(leg.X1, leg.X2), math.Max(leg.X1, leg.X2)
			y0, y1 := math.Min(leg.Y1, leg.Y2), math.Max(leg.Y1, leg.Y2)
			if y0 == y1 {
				y0, y1 = y0-half, y1+half
			} else {
				x0, x1 = x0-half, x1+half
			}
			draw.Draw(canvas, r.rect(x0, y0, x1, y1), ink, image.Point{}, draw.Src)
		}
	}

	for _, p := range page.Placements {
		asset := assets[p.ItemIndex]
		if asset == nil {
			return nil, fmt.Errorf("no artwork for item %d on page %d", p.ItemIndex, page.Number)
		}
		target := r.rect(p.X, p.Y, p.X+p.Width, p.Y+p.Height)
		scaled := imaging.Resize(asset.Image, target.Dx(), target.Dy(), imaging.Lanczos)
		draw.Draw(canvas, target, scaled, image.Point{}, draw.Over)
	}

	return canvas, nil
}

// RenderPNG renders every page of doc and encodes each as PNG.
// The returned map is keyed by 1-based page number.
func (r *RasterRenderer) RenderPNG(doc *models.Document, assets map[int]*StickerAsset) (map[int][]byte, error) {
	pages := make(map[int][]byte, len(doc.Pages))
	for _, page := range doc.Pages {
		img, err := r.RenderPage(doc, page, assets)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, fmt.Errorf("failed to encode page %d: %w", page.Number, err)
		}
		pages[page.Number] = buf.Bytes()
	}
	return pages, nil
}
