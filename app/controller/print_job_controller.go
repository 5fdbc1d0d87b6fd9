package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"sticker-studio/models"
	"sticker-studio/repository"
	"sticker-studio/service"
)

const maxRequestBody = 1 << 20

// PrintJobController handles HTTP requests for print-ready documents
type PrintJobController struct {
	printService service.PrintServiceInterface
	repository   repository.PrintJobRepositoryInterface
	sheets       *service.SheetRenderer
	raster       *service.RasterRenderer
}

// NewPrintJobController creates a new PrintJobController. repo may be nil when no database is configured.
func NewPrintJobController(printService service.PrintServiceInterface, repo repository.PrintJobRepositoryInterface, raster *service.RasterRenderer) *PrintJobController {
	return &PrintJobController{
		printService: printService,
		repository:   repo,
		sheets:       service.NewSheetRenderer(),
		raster:       raster,
	}
}

func decodePrintJobRequest(r *http.Request) (*models.PrintJobRequest, error) {
	bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	defer r.Body.Close()

	log.Printf("📋 Request body: %s", string(bodyBytes))

	var req models.PrintJobRequest
	if err := json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	return &req, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ Error encoding response: %v", err)
	}
}

// CreatePrintJob handles POST /admin/print-jobs
// Example request:
// POST /admin/print-jobs
// {
//   "orderId": "1042",
//   "customerEmail": "ana@example.com",
//   "items": [
//     {"imageUrl": "https://cdn.example.com/s/abc.png", "size": "large", "name": "Space Cat"},
//     {"imageUrl": "https://cdn.example.com/s/def.png", "size": "small", "qty": 2}
//   ]
// }
// Example response:
// {
//   "id": "0b6f0c9e-3c55-4c43-9a57-2d1e4f3f9a10",
//   "orderId": "1042",
//   "documents": [{"path": "print-ready/07-01-2026/Order_1042.pdf", "url": "...", "pageCount": 3, "placedItems": 2}],
//   "pageCount": 3,
//   "placedItems": 2,
//   "failedItems": 0,
//   "failures": []
// }
func (c *PrintJobController) CreatePrintJob(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 CreatePrintJob: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		log.Printf("❌ CreatePrintJob: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := decodePrintJobRequest(r)
	if err != nil {
		log.Printf("❌ CreatePrintJob: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	job, err := c.printService.Fulfill(r.Context(), *req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			log.Printf("❌ CreatePrintJob: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("❌ CreatePrintJob: Error fulfilling order %s: %v", req.OrderID, err)
		http.Error(w, fmt.Sprintf("Failed to build print job: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✅ CreatePrintJob: order %s -> %d documents", job.OrderID, len(job.Documents))
	writeJSON(w, http.StatusOK, job)
}

// ListPrintJobs handles GET /admin/print-jobs?orderId=1042
// Without orderId the most recent records are returned (limit defaults to 20).
func (c *PrintJobController) ListPrintJobs(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 ListPrintJobs: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if c.repository == nil {
		http.Error(w, "Print job records are not configured", http.StatusServiceUnavailable)
		return
	}

	var (
		jobs []models.PrintJob
		err  error
	)
	if orderID := strings.TrimSpace(r.URL.Query().Get("orderId")); orderID != "" {
		jobs, err = c.repository.GetByOrderID(r.Context(), orderID)
	} else {
		limit := 20
		if v := r.URL.Query().Get("limit"); v != "" {
			limit, err = strconv.Atoi(v)
			if err != nil || limit <= 0 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
		}
		jobs, err = c.repository.ListRecent(r.Context(), limit)
	}
	if err != nil {
		log.Printf("❌ ListPrintJobs: %v", err)
		http.Error(w, fmt.Sprintf("Failed to list print jobs: %v", err), http.StatusInternalServerError)
		return
	}
	if jobs == nil {
		jobs = []models.PrintJob{}
	}

	log.Printf("✅ ListPrintJobs: %d records", len(jobs))
	writeJSON(w, http.StatusOK, jobs)
}

// PreviewPrintJob handles POST /admin/print-jobs/preview?format=png&page=1
// The body is the same as CreatePrintJob but orderId is optional and nothing is stored.
// format=png returns one page as an image, format=html the whole sheet.
func (c *PrintJobController) PreviewPrintJob(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 PreviewPrintJob: Received %s request to %s", r.Method, r.URL.String())

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "png"
	}
	if format != "png" && format != "html" {
		http.Error(w, "format must be png or html", http.StatusBadRequest)
		return
	}

	pageNumber := 1
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "page must be a positive integer", http.StatusBadRequest)
			return
		}
		pageNumber = n
	}

	req, err := decodePrintJobRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	items, err := service.RequestItems(req.Items)
	if err == nil && len(items) == 0 {
		err = fmt.Errorf("%w: at least one item is required", service.ErrInvalidRequest)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	label := ""
	if req.OrderID != "" {
		label = fmt.Sprintf("Order %s", req.OrderID)
	}

	sheet, err := c.printService.PrepareSheet(r.Context(), items, label)
	if err != nil {
		log.Printf("❌ PreviewPrintJob: %v", err)
		http.Error(w, fmt.Sprintf("Failed to prepare sheet: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("X-Page-Count", strconv.Itoa(len(sheet.Document.Pages)))
	w.Header().Set("X-Failed-Items", strconv.Itoa(len(sheet.Failures)))

	if len(sheet.Document.Pages) == 0 {
		log.Printf("⚠️  PreviewPrintJob: no items could be placed")
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"pageCount": 0,
			"failures":  sheet.Failures,
		})
		return
	}

	if format == "html" {
		htmlContent, err := c.sheets.RenderHTML(sheet.Document, sheet.Assets)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to render sheet: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, htmlContent)
		return
	}

	if pageNumber > len(sheet.Document.Pages) {
		http.Error(w, fmt.Sprintf("page %d not found, sheet has %d pages", pageNumber, len(sheet.Document.Pages)), http.StatusNotFound)
		return
	}

	img, err := c.raster.RenderPage(sheet.Document, sheet.Document.Pages[pageNumber-1], sheet.Assets)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to render page: %v", err), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode page: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✅ PreviewPrintJob: page %d/%d rendered (%d bytes)", pageNumber, len(sheet.Document.Pages), buf.Len())
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
