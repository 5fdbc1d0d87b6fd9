package pricing

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"sticker-studio/models"
	"sticker-studio/utils"
)

// ErrInvalidSizeClass is matched by every error returned for a size outside the catalog
var ErrInvalidSizeClass = errors.New("invalid size class")

// InvalidSizeClassError carries the rejected value
type InvalidSizeClassError struct {
	Value string
}

func (e *InvalidSizeClassError) Error() string {
	return fmt.Sprintf("invalid size class %q: expected one of small, regular, large", e.Value)
}

func (e *InvalidSizeClassError) Is(target error) bool {
	return target == ErrInvalidSizeClass
}

// SizeConfig represents the size table configuration file
// Example:
//
//	{
//	  "currency": "GBP",
//	  "sizes": {
//	    "small":   {"label": "Small (2\" x 3\")", "width": 50.8, "height": 76.2, "price": 499},
//	    "regular": {"label": "Regular (3\" x 4\")", "width": 76.2, "height": 101.6, "price": 899},
//	    "large":   {"label": "Large (4\" x 5\")", "width": 101.6, "height": 127.0, "price": 1099}
//	  }
//	}
//
// The same structure is accepted as YAML when the file ends in .yaml or .yml.
type SizeConfig struct {
	Currency string               `json:"currency" yaml:"currency"`
	Sizes    map[string]SizeEntry `json:"sizes" yaml:"sizes"`
}

type SizeEntry struct {
	Label  string  `json:"label" yaml:"label"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
	Price  int64   `json:"price" yaml:"price"` // minor units
}

// SizeTable resolves size classes to footprints and prices.
// It is immutable after construction.
type SizeTable struct {
	currency string
	entries  map[models.SizeClass]SizeEntry
}

// DefaultSizeTable returns the storefront's standard size table
func DefaultSizeTable() *SizeTable {
	return &SizeTable{
		currency: "GBP",
		entries: map[models.SizeClass]SizeEntry{
			models.SizeSmall:   {Label: `Small (2" x 3")`, Width: 50.8, Height: 76.2, Price: 499},
			models.SizeRegular: {Label: `Regular (3" x 4")`, Width: 76.2, Height: 101.6, Price: 899},
			models.SizeLarge:   {Label: `Large (4" x 5")`, Width: 101.6, Height: 127.0, Price: 1099},
		},
	}
}

// LoadSizeTable reads a size table from a JSON or YAML file
func LoadSizeTable(configPath string) (*SizeTable, error) {
	if !filepath.IsAbs(configPath) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		configPath = filepath.Join(wd, configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read size table: %w", err)
	}

	var table *SizeTable
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		table, err = ParseSizeTableYAML(data)
	default:
		table, err = ParseSizeTable(data)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("✅ SizeTable: Successfully loaded size table from %s", configPath)
	return table, nil
}

// ParseSizeTable builds a size table from its JSON representation
func ParseSizeTable(data []byte) (*SizeTable, error) {
	var config SizeConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse size table: %w", err)
	}
	return newSizeTable(&config)
}

// ParseSizeTableYAML builds a size table from its YAML representation
func ParseSizeTableYAML(data []byte) (*SizeTable, error) {
	var config SizeConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse size table: %w", err)
	}
	return newSizeTable(&config)
}

func newSizeTable(config *SizeConfig) (*SizeTable, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid size table: %w", err)
	}

	entries := make(map[models.SizeClass]SizeEntry, len(config.Sizes))
	for name, entry := range config.Sizes {
		entries[models.SizeClass(strings.ToLower(name))] = entry
	}
	return &SizeTable{currency: config.Currency, entries: entries}, nil
}

func validateConfig(config *SizeConfig) error {
	if config.Currency == "" {
		return fmt.Errorf("currency is required")
	}
	for _, size := range models.SizeClasses {
		entry, ok := config.Sizes[string(size)]
		if !ok {
			return fmt.Errorf("size %s is required", size)
		}
		if entry.Width <= 0 || entry.Height <= 0 {
			return fmt.Errorf("size %s must have a positive footprint", size)
		}
		if entry.Price <= 0 {
			return fmt.Errorf("size %s must have a positive price", size)
		}
	}
	if len(config.Sizes) != len(models.SizeClasses) {
		return fmt.Errorf("unknown sizes in table: expected exactly small, regular, large")
	}
	return nil
}

// ParseSizeClass normalizes a size string and rejects anything outside the catalog
func ParseSizeClass(value string) (models.SizeClass, error) {
	size := models.SizeClass(strings.ToLower(strings.TrimSpace(value)))
	switch size {
	case models.SizeSmall, models.SizeRegular, models.SizeLarge:
		return size, nil
	}
	return "", &InvalidSizeClassError{Value: value}
}

func (t *SizeTable) entry(size models.SizeClass) (SizeEntry, error) {
	entry, ok := t.entries[size]
	if !ok {
		return SizeEntry{}, &InvalidSizeClassError{Value: string(size)}
	}
	return entry, nil
}

// Resolve returns the physical footprint of a size class in millimeters
func (t *SizeTable) Resolve(size models.SizeClass) (models.Footprint, error) {
	entry, err := t.entry(size)
	if err != nil {
		return models.Footprint{}, err
	}
	return models.Footprint{Width: entry.Width, Height: entry.Height}, nil
}

// Price returns the retail price of a size class in minor units
func (t *SizeTable) Price(size models.SizeClass) (int64, error) {
	entry, err := t.entry(size)
	if err != nil {
		return 0, err
	}
	return entry.Price, nil
}

// Currency returns the ISO currency code prices are expressed in
func (t *SizeTable) Currency() string {
	return t.currency
}

// Catalog lists every size with its footprint and formatted price
func (t *SizeTable) Catalog() []models.SizeInfo {
	infos := make([]models.SizeInfo, 0, len(models.SizeClasses))
	for _, size := range models.SizeClasses {
		entry := t.entries[size]
		infos = append(infos, models.SizeInfo{
			Size:           size,
			Label:          entry.Label,
			Width:          entry.Width,
			Height:         entry.Height,
			Price:          entry.Price,
			PriceFormatted: utils.FormatMinorUnits(entry.Price, t.currency),
		})
	}
	return infos
}
