package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sticker-studio/layout"
	"sticker-studio/models"
	"sticker-studio/pricing"
	"sticker-studio/service"
)

type fakePrintService struct {
	engine     *layout.Engine
	fulfillErr error
	lastReq    models.PrintJobRequest
	lastLabel  string
}

func newFakePrintService() *fakePrintService {
	return &fakePrintService{engine: layout.NewEngine(pricing.DefaultSizeTable(), layout.DefaultOptions())}
}

// PrepareSheet lays every item out with a blank asset, failing URLs that contain "missing"
func (f *fakePrintService) PrepareSheet(ctx context.Context, items []models.StickerItem, label string) (*service.Sheet, error) {
	f.lastLabel = label
	sheet := &service.Sheet{Assets: map[int]*service.StickerAsset{}}
	var placeable []models.StickerItem
	var indexes []int
	for i, item := range items {
		if strings.Contains(item.ImageURL, "missing") {
			sheet.Failures = append(sheet.Failures, models.ItemFailure{Index: i, ImageURL: item.ImageURL, Kind: models.FailureFetch, Reason: "404"})
			continue
		}
		placeable = append(placeable, item)
		indexes = append(indexes, i)
		sheet.Assets[i] = &service.StickerAsset{Image: imaging.New(8, 8, color.White), Format: "png", PNG: []byte("png")}
	}
	result := f.engine.LayoutIndexed(placeable, indexes)
	sheet.Failures = append(sheet.Failures, result.Failures...)
	sheet.Document = result.Document
	sheet.Document.Label = label
	return sheet, nil
}

func (f *fakePrintService) BuildSheet(ctx context.Context, items []models.StickerItem, label string) (*service.BuildResult, error) {
	sheet, err := f.PrepareSheet(ctx, items, label)
	if err != nil {
		return nil, err
	}
	return &service.BuildResult{Sheet: *sheet, PDF: []byte("%PDF")}, nil
}

func (f *fakePrintService) Fulfill(ctx context.Context, req models.PrintJobRequest) (*models.PrintJob, error) {
	f.lastReq = req
	if f.fulfillErr != nil {
		return nil, f.fulfillErr
	}
	return &models.PrintJob{
		ID:        "job-1",
		OrderID:   req.OrderID,
		Documents: []models.PrintDocument{{Path: "print-ready/07-01-2026/Order_" + req.OrderID + ".pdf", PageCount: 1, PlacedItems: 1}},
		PageCount: 1,
		Failures:  []models.ItemFailure{},
	}, nil
}

type fakeJobRepository struct {
	byOrder   map[string][]models.PrintJob
	recent    []models.PrintJob
	lastLimit int
	err       error
}

func (r *fakeJobRepository) Insert(ctx context.Context, job *models.PrintJob) error { return nil }

func (r *fakeJobRepository) GetByOrderID(ctx context.Context, orderID string) ([]models.PrintJob, error) {
	return r.byOrder[orderID], r.err
}

func (r *fakeJobRepository) ListRecent(ctx context.Context, limit int) ([]models.PrintJob, error) {
	r.lastLimit = limit
	return r.recent, r.err
}

func newTestController(svc *fakePrintService, repo *fakeJobRepository) *PrintJobController {
	if repo == nil {
		return NewPrintJobController(svc, nil, service.NewRasterRenderer(20))
	}
	return NewPrintJobController(svc, repo, service.NewRasterRenderer(20))
}

func TestCreatePrintJob(t *testing.T) {
	svc := newFakePrintService()
	c := newTestController(svc, nil)

	body := `{"orderId":"1042","customerEmail":"ana@example.com","items":[{"imageUrl":"https://cdn/a.png","size":"large"}]}`
	rec := httptest.NewRecorder()
	c.CreatePrintJob(rec, httptest.NewRequest(http.MethodPost, "/admin/print-jobs", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var job models.PrintJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, "1042", job.OrderID)
	assert.Equal(t, "print-ready/07-01-2026/Order_1042.pdf", job.Documents[0].Path)

	require.Len(t, svc.lastReq.Items, 1)
	require.NotNil(t, svc.lastReq.Items[0].Size)
	assert.Equal(t, "large", *svc.lastReq.Items[0].Size)
	assert.Nil(t, svc.lastReq.Items[0].Qty)
}

func TestCreatePrintJob_Errors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		err    error
		status int
	}{
		{"wrong method", http.MethodGet, "", nil, http.StatusMethodNotAllowed},
		{"malformed body", http.MethodPost, "{", nil, http.StatusBadRequest},
		{"invalid request", http.MethodPost, `{"items":[]}`, fmt.Errorf("%w: orderId is required", service.ErrInvalidRequest), http.StatusBadRequest},
		{"build failure", http.MethodPost, `{"orderId":"1"}`, errors.New("chrome crashed"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakePrintService()
			svc.fulfillErr = tt.err
			c := newTestController(svc, nil)

			rec := httptest.NewRecorder()
			c.CreatePrintJob(rec, httptest.NewRequest(tt.method, "/admin/print-jobs", strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestListPrintJobs(t *testing.T) {
	repo := &fakeJobRepository{
		byOrder: map[string][]models.PrintJob{"1042": {{ID: "a", OrderID: "1042"}}},
		recent:  []models.PrintJob{{ID: "b"}, {ID: "c"}},
	}
	c := newTestController(newFakePrintService(), repo)

	rec := httptest.NewRecorder()
	c.ListPrintJobs(rec, httptest.NewRequest(http.MethodGet, "/admin/print-jobs?orderId=1042", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var jobs []models.PrintJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, "a", jobs[0].ID)

	rec = httptest.NewRecorder()
	c.ListPrintJobs(rec, httptest.NewRequest(http.MethodGet, "/admin/print-jobs?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, repo.lastLimit)

	rec = httptest.NewRecorder()
	c.ListPrintJobs(rec, httptest.NewRequest(http.MethodGet, "/admin/print-jobs?orderId=404", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = httptest.NewRecorder()
	c.ListPrintJobs(rec, httptest.NewRequest(http.MethodGet, "/admin/print-jobs?limit=zero", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPrintJobs_NoDatabase(t *testing.T) {
	c := newTestController(newFakePrintService(), nil)

	rec := httptest.NewRecorder()
	c.ListPrintJobs(rec, httptest.NewRequest(http.MethodGet, "/admin/print-jobs", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPreviewPrintJob_PNG(t *testing.T) {
	svc := newFakePrintService()
	c := newTestController(svc, nil)

	body := `{"orderId":"7","items":[{"imageUrl":"https://cdn/a.png","size":"large"}]}`
	rec := httptest.NewRecorder()
	c.PreviewPrintJob(rec, httptest.NewRequest(http.MethodPost, "/admin/print-jobs/preview?page=2", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "2", rec.Header().Get("X-Page-Count"))
	assert.Equal(t, "Order 7", svc.lastLabel)

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	// A4 at 20 dpi
	assert.Equal(t, 165, img.Bounds().Dx())
	assert.Equal(t, 234, img.Bounds().Dy())
}

func TestPreviewPrintJob_HTML(t *testing.T) {
	c := newTestController(newFakePrintService(), nil)

	body := `{"items":[{"imageUrl":"https://cdn/a.png"},{"imageUrl":"https://cdn/missing.png"}]}`
	rec := httptest.NewRecorder()
	c.PreviewPrintJob(rec, httptest.NewRequest(http.MethodPost, "/admin/print-jobs/preview?format=html", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, "1", rec.Header().Get("X-Failed-Items"))
	assert.Equal(t, 1, strings.Count(rec.Body.String(), "<section"))
	assert.Equal(t, 4, strings.Count(rec.Body.String(), "<image"))
}

func TestPreviewPrintJob_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"bad format", "/admin/print-jobs/preview?format=gif", `{"items":[{"imageUrl":"a"}]}`, http.StatusBadRequest},
		{"bad page", "/admin/print-jobs/preview?page=0", `{"items":[{"imageUrl":"a"}]}`, http.StatusBadRequest},
		{"no items", "/admin/print-jobs/preview", `{"items":[]}`, http.StatusBadRequest},
		{"missing image url", "/admin/print-jobs/preview", `{"items":[{"size":"small"}]}`, http.StatusBadRequest},
		{"page out of range", "/admin/print-jobs/preview?page=3", `{"items":[{"imageUrl":"a","size":"small"}]}`, http.StatusNotFound},
		{"nothing placed", "/admin/print-jobs/preview", `{"items":[{"imageUrl":"missing"}]}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(newFakePrintService(), nil)
			rec := httptest.NewRecorder()
			c.PreviewPrintJob(rec, httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestListSizes(t *testing.T) {
	c := NewSizeController(pricing.DefaultSizeTable())

	rec := httptest.NewRecorder()
	c.ListSizes(rec, httptest.NewRequest(http.MethodGet, "/api/sizes", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var sizes []models.SizeInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sizes))
	require.Len(t, sizes, 3)
	assert.Equal(t, models.SizeRegular, sizes[1].Size)
	assert.Equal(t, int64(899), sizes[1].Price)
	assert.Equal(t, "£8.99", sizes[1].PriceFormatted)

	rec = httptest.NewRecorder()
	c.ListSizes(rec, httptest.NewRequest(http.MethodPost, "/api/sizes", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
