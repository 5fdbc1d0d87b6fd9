package models

// SizeClass is a physical sticker size tier
type SizeClass string

const (
	SizeSmall   SizeClass = "small"
	SizeRegular SizeClass = "regular"
	SizeLarge   SizeClass = "large"
)

// SizeClasses lists every size class in catalog order
var SizeClasses = []SizeClass{SizeSmall, SizeRegular, SizeLarge}

// Footprint is the physical width x height of a placed sticker, in millimeters
type Footprint struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// StickerItem is one purchased design as consumed by the print pipeline.
// Quantity is the number of stickers requested for the design's pack.
type StickerItem struct {
	ImageURL  string    `json:"imageUrl"`
	SizeClass SizeClass `json:"size"`
	Quantity  int       `json:"qty"`
	Name      string    `json:"name,omitempty"`
}

// SizeInfo represents one entry of the public size catalog
// Example: {"size": "regular", "label": "Regular (3\" x 4\")", "width": 76.2, "height": 101.6, "price": 899, "priceFormatted": "£8.99"}
type SizeInfo struct {
	Size           SizeClass `json:"size"`
	Label          string    `json:"label"`
	Width          float64   `json:"width"`
	Height         float64   `json:"height"`
	Price          int64     `json:"price"` // minor units (pence)
	PriceFormatted string    `json:"priceFormatted"`
}
