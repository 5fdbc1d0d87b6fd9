package models

import "time"

// Failure kinds reported per item
const (
	FailureFetch            = "fetch"
	FailureInvalidSizeClass = "invalid_size_class"
	FailureAssembly         = "assembly"
)

// ItemFailure describes why one item was left out of a document
type ItemFailure struct {
	Index     int       `json:"index"`
	ImageURL  string    `json:"imageUrl"`
	SizeClass SizeClass `json:"size"`
	Name      string    `json:"name,omitempty"`
	Kind      string    `json:"kind"`
	Reason    string    `json:"reason"`
}

// PrintItemRequest is a purchased item as received from the checkout collaborator.
// Size and Qty are optional; see PrintJobRequest.
type PrintItemRequest struct {
	ImageURL string  `json:"imageUrl"`
	Size     *string `json:"size,omitempty"`
	Name     string  `json:"name,omitempty"`
	Qty      *int    `json:"qty,omitempty"`
}

// PrintJobRequest represents the request body for building the print-ready documents of an order
// Example: {"orderId": "1042", "customerEmail": "ana@example.com", "items": [{"imageUrl": "https://cdn.example.com/s/abc.png", "size": "large", "name": "Space Cat"}]}
// perItem=true produces one document per item instead of one per order
type PrintJobRequest struct {
	OrderID       string             `json:"orderId"`
	CustomerEmail string             `json:"customerEmail"`
	Items         []PrintItemRequest `json:"items"`
	PerItem       bool               `json:"perItem,omitempty"`
}

// PrintDocument is one stored print-ready document
type PrintDocument struct {
	Path        string `json:"path"`
	URL         string `json:"url,omitempty"`
	PageCount   int    `json:"pageCount"`
	PlacedItems int    `json:"placedItems"`
}

// PrintJob represents a fulfillment record in the database
type PrintJob struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"orderId"`
	CustomerEmail string          `json:"customerEmail"`
	Documents     []PrintDocument `json:"documents"`
	PageCount     int             `json:"pageCount"`
	PlacedItems   int             `json:"placedItems"`
	FailedItems   int             `json:"failedItems"`
	Failures      []ItemFailure   `json:"failures"`
	CreatedAt     time.Time       `json:"createdAt"`
}
