package service

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sticker-studio/layout"
	"sticker-studio/models"
	"sticker-studio/pricing"
)

type fakeFetcher struct {
	images   map[string][]byte
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	delay    time.Duration
}

func (f *fakeFetcher) Fetch(ctx context.Context, imageURL string) ([]byte, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	data, ok := f.images[imageURL]
	if !ok {
		return nil, &FetchError{URL: imageURL, StatusCode: 404, Err: errors.New("not found")}
	}
	return data, nil
}

type fakePrinter struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (p *fakePrinter) PrintPDF(ctx context.Context, htmlContent string, format models.PageFormat) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	p.calls = append(p.calls, htmlContent)
	return []byte(fmt.Sprintf("%%PDF-fake-%d", len(p.calls))), nil
}

type fakeStore struct {
	saved map[string][]byte
}

func (s *fakeStore) Save(ctx context.Context, docPath string, data []byte, contentType string) (string, error) {
	if s.saved == nil {
		s.saved = map[string][]byte{}
	}
	s.saved[docPath] = data
	return "https://files.example.com/" + docPath, nil
}

type fakeJobs struct {
	inserted []*models.PrintJob
	err      error
}

func (r *fakeJobs) Insert(ctx context.Context, job *models.PrintJob) error {
	if r.err != nil {
		return r.err
	}
	r.inserted = append(r.inserted, job)
	return nil
}

func (r *fakeJobs) GetByOrderID(ctx context.Context, orderID string) ([]models.PrintJob, error) {
	return nil, nil
}

func (r *fakeJobs) ListRecent(ctx context.Context, limit int) ([]models.PrintJob, error) {
	return nil, nil
}

type fixture struct {
	fetcher *fakeFetcher
	printer *fakePrinter
	store   *fakeStore
	jobs    *fakeJobs
	service *PrintService
}

func newFixture(t *testing.T, images map[string][]byte) *fixture {
	t.Helper()
	sizes := pricing.DefaultSizeTable()
	f := &fixture{
		fetcher: &fakeFetcher{images: images},
		printer: &fakePrinter{},
		store:   &fakeStore{},
		jobs:    &fakeJobs{},
	}
	f.service = NewPrintService(
		sizes,
		layout.NewEngine(sizes, layout.DefaultOptions()),
		f.fetcher,
		f.printer,
		f.store,
		f.jobs,
		PrintServiceConfig{FetchConcurrency: 2, Location: time.UTC},
	)
	f.service.now = func() time.Time { return time.Date(2026, 1, 7, 9, 0, 0, 0, time.UTC) }
	return f
}

func sticker(url string, size models.SizeClass) models.StickerItem {
	return models.StickerItem{ImageURL: url, SizeClass: size, Quantity: 4}
}

func TestBuildSheet_SecondItemFetchFails(t *testing.T) {
	png := solidPNG(t, 4, 4, color.White)
	f := newFixture(t, map[string][]byte{
		"https://cdn/1.png": png,
		"https://cdn/3.png": png,
	})

	result, err := f.service.BuildSheet(context.Background(), []models.StickerItem{
		sticker("https://cdn/1.png", models.SizeRegular),
		sticker("https://cdn/2.png", models.SizeRegular),
		sticker("https://cdn/3.png", models.SizeSmall),
	}, "")
	require.NoError(t, err)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, 1, result.Failures[0].Index)
	assert.Equal(t, "https://cdn/2.png", result.Failures[0].ImageURL)
	assert.Equal(t, models.FailureFetch, result.Failures[0].Kind)

	require.Len(t, result.Document.Pages, 2)
	assert.Equal(t, 0, result.Document.Pages[0].ItemIndex)
	assert.Equal(t, 2, result.Document.Pages[1].ItemIndex)
	assert.Equal(t, 2, result.PlacedItems())
	assert.NotNil(t, result.PDF)
	require.Len(t, f.printer.calls, 1)
	assert.Equal(t, 2, strings.Count(f.printer.calls[0], "<section"))
}

func TestBuildSheet_CorruptImageIsAssemblyFailure(t *testing.T) {
	f := newFixture(t, map[string][]byte{
		"https://cdn/ok.png":  solidPNG(t, 4, 4, color.White),
		"https://cdn/bad.png": []byte("not an image"),
	})

	result, err := f.service.BuildSheet(context.Background(), []models.StickerItem{
		sticker("https://cdn/bad.png", models.SizeLarge),
		sticker("https://cdn/ok.png", models.SizeLarge),
	}, "")
	require.NoError(t, err)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, models.FailureAssembly, result.Failures[0].Kind)
	assert.Equal(t, 0, result.Failures[0].Index)
	assert.Len(t, result.Document.Pages, 2)
}

func TestBuildSheet_InvalidSizeIsNotFetched(t *testing.T) {
	f := newFixture(t, map[string][]byte{})

	result, err := f.service.BuildSheet(context.Background(), []models.StickerItem{
		sticker("https://cdn/x.png", models.SizeClass("gigantic")),
	}, "")
	require.NoError(t, err)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, models.FailureInvalidSizeClass, result.Failures[0].Kind)
	assert.Equal(t, int32(0), f.fetcher.maxSeen.Load())
}

func TestBuildSheet_AllFailedGivesEmptyDocument(t *testing.T) {
	f := newFixture(t, map[string][]byte{})

	result, err := f.service.BuildSheet(context.Background(), []models.StickerItem{
		sticker("https://cdn/a.png", models.SizeSmall),
		sticker("https://cdn/b.png", models.SizeLarge),
	}, "")
	require.NoError(t, err)

	assert.Len(t, result.Failures, 2)
	assert.Empty(t, result.Document.Pages)
	assert.Nil(t, result.PDF)
	assert.Empty(t, f.printer.calls)
}

func TestBuildSheet_FetchConcurrencyIsBounded(t *testing.T) {
	png := solidPNG(t, 2, 2, color.White)
	images := map[string][]byte{}
	var items []models.StickerItem
	for i := 0; i < 6; i++ {
		url := fmt.Sprintf("https://cdn/%d.png", i)
		images[url] = png
		items = append(items, sticker(url, models.SizeSmall))
	}
	f := newFixture(t, images)
	f.fetcher.delay = 20 * time.Millisecond

	result, err := f.service.BuildSheet(context.Background(), items, "")
	require.NoError(t, err)

	assert.Len(t, result.Document.Pages, 6)
	assert.LessOrEqual(t, f.fetcher.maxSeen.Load(), int32(2))
	for i, page := range result.Document.Pages {
		assert.Equal(t, i, page.ItemIndex, "pages keep input order")
	}
}

func TestBuildSheet_PrinterFailureIsReturned(t *testing.T) {
	f := newFixture(t, map[string][]byte{"https://cdn/a.png": solidPNG(t, 2, 2, color.White)})
	f.printer.err = errors.New("chrome missing")

	_, err := f.service.BuildSheet(context.Background(), []models.StickerItem{
		sticker("https://cdn/a.png", models.SizeSmall),
	}, "")
	assert.Error(t, err)
}

func TestBuildSheet_CancelledContext(t *testing.T) {
	f := newFixture(t, map[string][]byte{"https://cdn/a.png": solidPNG(t, 2, 2, color.White)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.BuildSheet(ctx, []models.StickerItem{sticker("https://cdn/a.png", models.SizeSmall)}, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestRequestItems(t *testing.T) {
	items, err := RequestItems([]models.PrintItemRequest{
		{ImageURL: "a"},
		{ImageURL: "b", Size: strPtr(" LARGE "), Qty: intPtr(2), Name: "Cat"},
		{ImageURL: "c", Size: strPtr("medium")},
	})
	require.NoError(t, err)

	assert.Equal(t, models.StickerItem{ImageURL: "a", SizeClass: models.SizeRegular, Quantity: 4}, items[0])
	assert.Equal(t, models.StickerItem{ImageURL: "b", SizeClass: models.SizeLarge, Quantity: 2, Name: "Cat"}, items[1])
	assert.Equal(t, models.SizeClass("medium"), items[2].SizeClass)

	_, err = RequestItems([]models.PrintItemRequest{{ImageURL: ""}})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = RequestItems([]models.PrintItemRequest{{ImageURL: "a", Qty: intPtr(0)}})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestFulfill_OneDocumentPerOrder(t *testing.T) {
	png := solidPNG(t, 4, 4, color.White)
	f := newFixture(t, map[string][]byte{"https://cdn/a.png": png, "https://cdn/b.png": png})

	job, err := f.service.Fulfill(context.Background(), models.PrintJobRequest{
		OrderID:       "1042",
		CustomerEmail: "ana@example.com",
		Items: []models.PrintItemRequest{
			{ImageURL: "https://cdn/a.png", Size: strPtr("small"), Name: "Fox"},
			{ImageURL: "https://cdn/b.png", Size: strPtr("large"), Name: "Owl"},
			{ImageURL: "https://cdn/c.png", Size: strPtr("huge"), Name: "Bat"},
		},
	})
	require.NoError(t, err)

	require.Len(t, job.Documents, 1)
	assert.Equal(t, "print-ready/07-01-2026/Order_1042.pdf", job.Documents[0].Path)
	assert.Equal(t, "https://files.example.com/print-ready/07-01-2026/Order_1042.pdf", job.Documents[0].URL)
	assert.Equal(t, 3, job.PageCount)
	assert.Equal(t, 2, job.PlacedItems)
	assert.Equal(t, 1, job.FailedItems)
	assert.Equal(t, models.FailureInvalidSizeClass, job.Failures[0].Kind)
	assert.NotEmpty(t, job.ID)

	assert.Contains(t, f.store.saved, "print-ready/07-01-2026/Order_1042.pdf")
	require.Len(t, f.jobs.inserted, 1)
	assert.Equal(t, job, f.jobs.inserted[0])
	assert.Contains(t, f.printer.calls[0], "Order 1042 · page 1/3")
}

func TestFulfill_PerItemDocuments(t *testing.T) {
	png := solidPNG(t, 4, 4, color.White)
	f := newFixture(t, map[string][]byte{"https://cdn/a.png": png, "https://cdn/b.png": png})

	job, err := f.service.Fulfill(context.Background(), models.PrintJobRequest{
		OrderID: "7",
		PerItem: true,
		Items: []models.PrintItemRequest{
			{ImageURL: "https://cdn/a.png", Size: strPtr("regular"), Name: "Space Cat"},
			{ImageURL: "https://cdn/missing.png", Size: strPtr("small")},
			{ImageURL: "https://cdn/b.png", Size: strPtr("large"), Name: "Owl"},
		},
	})
	require.NoError(t, err)

	require.Len(t, job.Documents, 2)
	assert.Equal(t, "print-ready/07-01-2026/Order_7_regular_space-cat.pdf", job.Documents[0].Path)
	assert.Equal(t, 1, job.Documents[0].PageCount)
	assert.Equal(t, "print-ready/07-01-2026/Order_7_large_owl.pdf", job.Documents[1].Path)
	assert.Equal(t, 2, job.Documents[1].PageCount)

	require.Len(t, job.Failures, 1)
	assert.Equal(t, 1, job.Failures[0].Index)
	assert.Len(t, f.store.saved, 2)
}

func TestFulfill_AllItemsFailedStillRecorded(t *testing.T) {
	f := newFixture(t, map[string][]byte{})

	job, err := f.service.Fulfill(context.Background(), models.PrintJobRequest{
		OrderID: "9",
		Items:   []models.PrintItemRequest{{ImageURL: "https://cdn/gone.png"}},
	})
	require.NoError(t, err)

	assert.Empty(t, job.Documents)
	assert.Equal(t, 1, job.FailedItems)
	assert.Empty(t, f.store.saved)
	assert.Len(t, f.jobs.inserted, 1)
}

func TestFulfill_Validation(t *testing.T) {
	f := newFixture(t, map[string][]byte{})

	_, err := f.service.Fulfill(context.Background(), models.PrintJobRequest{Items: []models.PrintItemRequest{{ImageURL: "a"}}})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.service.Fulfill(context.Background(), models.PrintJobRequest{OrderID: "1"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	for _, orderID := range []string{"x/../../07-01-2026/Order_1042", "../../evil", "a/b", "1042.pdf", "a b"} {
		_, err = f.service.Fulfill(context.Background(), models.PrintJobRequest{
			OrderID: orderID,
			Items:   []models.PrintItemRequest{{ImageURL: "a"}},
		})
		assert.ErrorIs(t, err, ErrInvalidRequest, "orderId %q", orderID)
	}
	assert.Empty(t, f.store.saved)
	assert.Empty(t, f.jobs.inserted)
}

func TestFulfill_PerItemDuplicateNamesKeepEveryDocument(t *testing.T) {
	png := solidPNG(t, 4, 4, color.White)
	f := newFixture(t, map[string][]byte{"https://cdn/a.png": png, "https://cdn/b.png": png, "https://cdn/c.png": png})

	job, err := f.service.Fulfill(context.Background(), models.PrintJobRequest{
		OrderID: "7",
		PerItem: true,
		Items: []models.PrintItemRequest{
			{ImageURL: "https://cdn/a.png"},
			{ImageURL: "https://cdn/b.png"},
			{ImageURL: "https://cdn/c.png", Name: "Owl"},
		},
	})
	require.NoError(t, err)

	require.Len(t, job.Documents, 3)
	assert.Equal(t, "print-ready/07-01-2026/Order_7_regular_sticker.pdf", job.Documents[0].Path)
	assert.Equal(t, "print-ready/07-01-2026/Order_7_regular_sticker_1.pdf", job.Documents[1].Path)
	assert.Equal(t, "print-ready/07-01-2026/Order_7_regular_owl.pdf", job.Documents[2].Path)
	assert.Len(t, f.store.saved, 3)
}

func TestFulfill_RecordFailure(t *testing.T) {
	f := newFixture(t, map[string][]byte{"https://cdn/a.png": solidPNG(t, 2, 2, color.White)})
	f.jobs.err = errors.New("db down")

	job, err := f.service.Fulfill(context.Background(), models.PrintJobRequest{
		OrderID: "3",
		Items:   []models.PrintItemRequest{{ImageURL: "https://cdn/a.png"}},
	})
	assert.Error(t, err)
	require.NotNil(t, job)
	assert.Len(t, job.Documents, 1)
}
