package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"sticker-studio/app"
	"sticker-studio/config"
	"sticker-studio/models"
	"sticker-studio/service"
)

// readItems accepts either a bare item array or a full print job request
func readItems(data []byte) ([]models.PrintItemRequest, string, error) {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		var items []models.PrintItemRequest
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, "", fmt.Errorf("invalid items file: %w", err)
		}
		return items, "", nil
	}

	var req models.PrintJobRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, "", fmt.Errorf("invalid items file: %w", err)
	}
	return req.Items, req.OrderID, nil
}

// pagePath returns the file name of one page of a PNG export
// Example: sheet.pdf, page 2 -> sheet-page-2.png
func pagePath(out string, page int) string {
	base := strings.TrimSuffix(out, filepath.Ext(out))
	return fmt.Sprintf("%s-page-%d.png", base, page)
}

func printFailures(cmd *cobra.Command, failures []models.ItemFailure) {
	for _, f := range failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "  item %d (%s, %s): %s: %s\n", f.Index, f.ImageURL, f.SizeClass, f.Kind, f.Reason)
	}
}

func newBuildCmd() *cobra.Command {
	var (
		itemsPath string
		out       string
		format    string
		orderID   string
		dpi       float64
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a print-ready sheet from an items file",
		Long: `Fetches every item's artwork, lays the items out and writes the result.

The items file is either a JSON array of {imageUrl, size, qty, name} or a
print job request object with an "items" field. Items that fail are listed
on stderr and left out of the sheet.`,
		Example: `  # PDF through headless Chrome
  sticker-studio build --items order.json --out Order_1042.pdf

  # One PNG per page, no browser needed
  sticker-studio build --items order.json --out sheet.png --format png --dpi 300`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "pdf" && format != "png" {
				return fmt.Errorf("--format must be pdf or png, got %q", format)
			}

			data, err := os.ReadFile(itemsPath)
			if err != nil {
				return fmt.Errorf("failed to read items file: %w", err)
			}
			reqItems, fileOrderID, err := readItems(data)
			if err != nil {
				return err
			}
			if orderID == "" {
				orderID = fileOrderID
			}
			items, err := service.RequestItems(reqItems)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			sizes, err := app.LoadSizes(cfg)
			if err != nil {
				return err
			}
			printService := app.NewPrintService(cfg, sizes, nil, nil)

			label := ""
			if orderID != "" {
				label = fmt.Sprintf("Order %s", orderID)
			}

			if format == "pdf" {
				result, err := printService.BuildSheet(cmd.Context(), items, label)
				if err != nil {
					return err
				}
				printFailures(cmd, result.Failures)
				if result.PDF == nil {
					return fmt.Errorf("no items could be placed (%d failed)", len(result.Failures))
				}
				if err := os.WriteFile(out, result.PDF, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", out, err)
				}
				log.Printf("✅ Wrote %s: %d pages, %d items placed", out, len(result.Document.Pages), result.PlacedItems())
				return nil
			}

			sheet, err := printService.PrepareSheet(cmd.Context(), items, label)
			if err != nil {
				return err
			}
			printFailures(cmd, sheet.Failures)
			if len(sheet.Document.Pages) == 0 {
				return fmt.Errorf("no items could be placed (%d failed)", len(sheet.Failures))
			}

			pages, err := service.NewRasterRenderer(dpi).RenderPNG(sheet.Document, sheet.Assets)
			if err != nil {
				return err
			}
			for number := 1; number <= len(sheet.Document.Pages); number++ {
				path := pagePath(out, number)
				if err := os.WriteFile(path, pages[number], 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				log.Printf("✅ Wrote %s", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&itemsPath, "items", "i", "", "JSON file with the items to print")
	cmd.Flags().StringVarP(&out, "out", "o", "sheet.pdf", "Output file (PNG pages get a -page-N suffix)")
	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "Output format: pdf or png")
	cmd.Flags().StringVar(&orderID, "order", "", "Order id printed in the sheet header")
	cmd.Flags().Float64Var(&dpi, "dpi", 300, "Resolution of PNG output")
	_ = cmd.MarkFlagRequired("items")

	return cmd
}
