package router

import (
	"log"
	"net/http"

	"sticker-studio/app/controller"
)

type Controllers struct {
	PrintJob *controller.PrintJobController
	Size     *controller.SizeController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// SetupRoutes registers every endpoint on mux. When filesDir is not empty the stored
// print-ready documents are served from it under /print-ready/.
func SetupRoutes(mux *http.ServeMux, controllers *Controllers, filesDir string) {
	// Ping endpoint
	mux.HandleFunc("/ping", pingHandler)

	// Size catalog
	mux.HandleFunc("/api/sizes", controllers.Size.ListSizes)

	// Print jobs routes
	// Create (POST) or list (GET) print jobs
	mux.HandleFunc("/admin/print-jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			controllers.PrintJob.CreatePrintJob(w, r)
		} else if r.Method == http.MethodGet {
			controllers.PrintJob.ListPrintJobs(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Preview a sheet without storing it
	mux.HandleFunc("/admin/print-jobs/preview", controllers.PrintJob.PreviewPrintJob)

	// Stored documents (local storage only)
	if filesDir != "" {
		log.Printf("📂 Serving print-ready documents from %s", filesDir)
		mux.Handle("/print-ready/", http.FileServer(http.Dir(filesDir)))
	}
}
