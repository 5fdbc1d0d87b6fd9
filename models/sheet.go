package models

// PageFormat describes the physical page of a print sheet, in millimeters.
// Margin is the inset of the registration marks from the page edges.
type PageFormat struct {
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin float64 `json:"margin"`
}

// A4 is the default sheet format for print-then-cut
var A4 = PageFormat{Name: "A4", Width: 210, Height: 297, Margin: 10}

// Corner identifies a page corner
type Corner string

const (
	CornerTopLeft     Corner = "top-left"
	CornerTopRight    Corner = "top-right"
	CornerBottomLeft  Corner = "bottom-left"
	CornerBottomRight Corner = "bottom-right"
)

// Segment is a straight stroke between two points, in millimeters
type Segment struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// RegistrationMark is an L-shaped fiducial made of a horizontal and a vertical leg
// meeting at (X, Y)
type RegistrationMark struct {
	Corner      Corner     `json:"corner"`
	X           float64    `json:"x"`
	Y           float64    `json:"y"`
	Legs        [2]Segment `json:"legs"`
	StrokeWidth float64    `json:"strokeWidth"`
}

// Placement is the top-left position and footprint of one sticker instance on a page
type Placement struct {
	ItemIndex int       `json:"itemIndex"`
	SizeClass SizeClass `json:"size"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
}

// Page is one laid out sheet. Number is 1-based within the document.
type Page struct {
	Number     int                 `json:"number"`
	ItemIndex  int                 `json:"itemIndex"`
	Marks      [4]RegistrationMark `json:"marks"`
	Placements []Placement         `json:"placements"`
}

// Document is the ordered set of laid out pages for one build
type Document struct {
	Format PageFormat `json:"format"`
	Label  string     `json:"label,omitempty"`
	Pages  []Page     `json:"pages"`
}

// PlacementCount returns the total number of placements across all pages
func (d *Document) PlacementCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Placements)
	}
	return n
}
