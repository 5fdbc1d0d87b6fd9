package app

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"sticker-studio/app/controller"
	"sticker-studio/app/router"
	"sticker-studio/config"
	"sticker-studio/db"
	"sticker-studio/layout"
	"sticker-studio/pricing"
	"sticker-studio/repository"
	"sticker-studio/service"
)

// App is the initialized service: the HTTP handler and the components behind it
type App struct {
	Config       *config.Config
	Sizes        *pricing.SizeTable
	PrintService *service.PrintService
	Jobs         repository.PrintJobRepositoryInterface
	Handler      http.Handler
}

// LoadSizes returns the size table from SIZE_TABLE_PATH, or the built-in table when unset
func LoadSizes(cfg *config.Config) (*pricing.SizeTable, error) {
	if cfg.SizeTablePath == "" {
		return pricing.DefaultSizeTable(), nil
	}
	sizes, err := pricing.LoadSizeTable(cfg.SizeTablePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load size table: %w", err)
	}
	log.Printf("✓ Size table loaded from %s", cfg.SizeTablePath)
	return sizes, nil
}

// NewPrintService wires the print pipeline. store and jobs may be nil for build-only use.
func NewPrintService(cfg *config.Config, sizes *pricing.SizeTable, store service.DocumentStoreInterface, jobs repository.PrintJobRepositoryInterface) *service.PrintService {
	return service.NewPrintService(
		sizes,
		layout.NewEngine(sizes, layout.DefaultOptions()),
		service.NewHTTPAssetFetcher(cfg.FetchTimeout),
		service.NewChromePDFPrinter(cfg.ChromePath, cfg.PrintTimeout),
		store,
		jobs,
		service.PrintServiceConfig{FetchConcurrency: cfg.FetchConcurrent, Location: cfg.Location},
	)
}

// OpenJobs connects to the database and returns the fulfillment record repository.
// It returns nil without error when no database is configured.
func OpenJobs(ctx context.Context, cfg *config.Config) (repository.PrintJobRepositoryInterface, error) {
	if cfg.DatabaseURL == "" {
		log.Printf("⚠️  No database configured, print jobs will not be recorded")
		return nil, nil
	}
	if err := db.InitDB(ctx, cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return repository.NewPrintJobRepository(db.DB), nil
}

func newStore(ctx context.Context, cfg *config.Config) (service.DocumentStoreInterface, string, error) {
	if cfg.Storage == config.StorageDrive {
		store, err := service.NewDriveStore(ctx, cfg.CredentialsPath, cfg.DriveFolderID)
		if err != nil {
			return nil, "", err
		}
		log.Printf("✓ Storing print-ready documents in Drive folder %s", cfg.DriveFolderID)
		return store, "", nil
	}

	store := service.NewLocalStore(cfg.StorageDir, cfg.PublicBaseURL)
	log.Printf("✓ Storing print-ready documents in %s", store.RootDir())
	return store, store.RootDir(), nil
}

// Initialize initializes the application
func Initialize(ctx context.Context, cfg *config.Config) (*App, error) {
	sizes, err := LoadSizes(cfg)
	if err != nil {
		return nil, err
	}

	// Initialize database connection
	jobs, err := OpenJobs(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, filesDir, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	printService := NewPrintService(cfg, sizes, store, jobs)

	// Create controllers
	controllers := &router.Controllers{
		PrintJob: controller.NewPrintJobController(printService, jobs, service.NewRasterRenderer(cfg.PreviewDPI)),
		Size:     controller.NewSizeController(sizes),
	}

	mux := http.NewServeMux()
	router.SetupRoutes(mux, controllers, filesDir)

	return &App{
		Config:       cfg,
		Sizes:        sizes,
		PrintService: printService,
		Jobs:         jobs,
		Handler:      mux,
	}, nil
}

// Close releases the database connection
func (a *App) Close() {
	if err := db.CloseDB(); err != nil {
		log.Printf("⚠️  Error closing database: %v", err)
	}
}
