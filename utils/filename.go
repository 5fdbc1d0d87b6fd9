package utils

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

const printReadyRoot = "print-ready"

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]`)

// CleanName lowercases a display name and replaces every character outside [a-z0-9] with '-'
// Example: "Space Cat!" -> "space-cat-"
func CleanName(name string) string {
	if strings.TrimSpace(name) == "" {
		name = "sticker"
	}
	return nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
}

// FolderDate formats the day of t in loc as DD-MM-YYYY
func FolderDate(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("02-01-2006")
}

// OrderDocumentPath returns the storage path of an order's print-ready document
// Example: print-ready/07-01-2026/Order_1042.pdf
func OrderDocumentPath(date string, orderID string) string {
	return path.Join(printReadyRoot, date, fmt.Sprintf("Order_%s.pdf", orderID))
}

// ItemDocumentPath returns the storage path of a single item's print-ready document
// Example: print-ready/07-01-2026/Order_1042_large_space-cat.pdf
func ItemDocumentPath(date string, orderID string, size string, name string) string {
	return path.Join(printReadyRoot, date, fmt.Sprintf("Order_%s_%s_%s.pdf", orderID, size, CleanName(name)))
}
