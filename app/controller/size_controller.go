package controller

import (
	"log"
	"net/http"

	"sticker-studio/pricing"
)

// SizeController serves the sticker size catalog
type SizeController struct {
	sizes *pricing.SizeTable
}

// NewSizeController creates a new SizeController
func NewSizeController(sizes *pricing.SizeTable) *SizeController {
	return &SizeController{sizes: sizes}
}

// ListSizes handles GET /api/sizes
// Example response:
// [{"size": "small", "label": "Small (2\" x 3\")", "width": 50.8, "height": 76.2, "price": 499, "priceFormatted": "£4.99"}, ...]
func (c *SizeController) ListSizes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	catalog := c.sizes.Catalog()
	log.Printf("✅ ListSizes: %d sizes", len(catalog))
	writeJSON(w, http.StatusOK, catalog)
}
