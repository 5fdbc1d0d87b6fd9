package service

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif" // Register decoders
	_ "image/jpeg"
	_ "image/png"
	"log"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Largest footprint is 127mm; 2400px keeps well above 300 DPI for it.
const maxPrintDimension = 2400

// AssemblyError reports that an item's artwork could not be embedded in the document
type AssemblyError struct {
	ItemIndex int
	URL       string
	Err       error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("failed to embed image %s (item %d): %v", e.URL, e.ItemIndex, e.Err)
}

func (e *AssemblyError) Unwrap() error {
	return e.Err
}

// StickerAsset is decoded artwork ready to be placed on a sheet
type StickerAsset struct {
	Image  image.Image
	Format string // source format as reported by the decoder
	PNG    []byte // normalized encoding embedded in documents
}

// DataURI returns the normalized artwork as a data: URI
func (a *StickerAsset) DataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(a.PNG)
}

// DecodeAsset decodes raw artwork (PNG, JPEG, GIF or WebP), caps its resolution and
// re-encodes it as PNG so every renderer embeds the same payload
func DecodeAsset(data []byte) (*StickerAsset, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	// Apply the EXIF orientation so rotated photos are placed upright
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("image has no pixels")
	}

	if bounds.Dx() > maxPrintDimension || bounds.Dy() > maxPrintDimension {
		log.Printf("🔄 Downscaling image: %dx%d -> fit %d", bounds.Dx(), bounds.Dy(), maxPrintDimension)
		img = imaging.Fit(img, maxPrintDimension, maxPrintDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode to PNG: %w", err)
	}

	return &StickerAsset{
		Image:  img,
		Format: format,
		PNG:    buf.Bytes(),
	}, nil
}
