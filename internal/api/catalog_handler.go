package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/echophrase/echophrase/internal/catalog"
	"github.com/echophrase/echophrase/internal/preload"
	"github.com/echophrase/echophrase/pkg/types"
)

// CatalogHandler handles catalog-related API endpoints
type CatalogHandler struct {
	repo            catalog.Repository
	source          *catalog.Source
	scheduler       *preload.Scheduler
	warmConcurrency int
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(repo catalog.Repository, source *catalog.Source, scheduler *preload.Scheduler, warmConcurrency int) *CatalogHandler {
	return &CatalogHandler{
		repo:            repo,
		source:          source,
		scheduler:       scheduler,
		warmConcurrency: warmConcurrency,
	}
}

// Catalog dispatches GET and PUT on /api/v1/catalog
func (h *CatalogHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getCatalog(w, r)
	case http.MethodPut:
		h.putCatalog(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// getCatalog returns the active catalog
func (h *CatalogHandler) getCatalog(w http.ResponseWriter, r *http.Request) {
	active := h.source.Catalog()
	if active == nil {
		respondError(w, "No catalog loaded", http.StatusNotFound)
		return
	}
	respondJSON(w, active, http.StatusOK)
}

// putCatalog stores the uploaded catalog, makes it active, and warms its
// audio in the background
func (h *CatalogHandler) putCatalog(w http.ResponseWriter, r *http.Request) {
	var uploaded types.Catalog
	if err := json.NewDecoder(r.Body).Decode(&uploaded); err != nil {
		respondError(w, "Invalid catalog body", http.StatusBadRequest)
		return
	}
	if uploaded.ID == "" {
		respondError(w, "Catalog ID required", http.StatusBadRequest)
		return
	}

	if err := h.repo.SaveCatalog(r.Context(), &uploaded); err != nil {
		respondError(w, "Failed to save catalog", http.StatusInternalServerError)
		return
	}

	h.source.SetCatalog(&uploaded)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("Panic in catalog warm-up for %s: %v", uploaded.ID, rec)
			}
		}()
		if err := h.scheduler.WarmCatalog(context.Background(), h.warmConcurrency); err != nil {
			log.Printf("Catalog warm-up for %s: %v", uploaded.ID, err)
		}
	}()

	respondJSON(w, &uploaded, http.StatusCreated)
}

// ListCatalogs handles GET /api/v1/catalogs
func (h *CatalogHandler) ListCatalogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ids, err := h.repo.ListCatalogs(r.Context())
	if err != nil {
		respondError(w, "Failed to list catalogs", http.StatusInternalServerError)
		return
	}
	respondJSON(w, ids, http.StatusOK)
}

// CatalogByID handles DELETE /api/v1/catalogs/:id
func (h *CatalogHandler) CatalogByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	catalogID := extractIDFromPath(r.URL.Path, "/api/v1/catalogs/")
	if catalogID == "" {
		respondError(w, "Catalog ID required", http.StatusBadRequest)
		return
	}

	if err := h.repo.DeleteCatalog(r.Context(), catalogID); err != nil {
		respondError(w, "Failed to delete catalog", http.StatusInternalServerError)
		return
	}

	// Deleting the active catalog deactivates it
	if active := h.source.Catalog(); active != nil && active.ID == catalogID {
		h.source.SetCatalog(nil)
	}

	w.WriteHeader(http.StatusNoContent)
}

func extractIDFromPath(path, prefix string) string {
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	rest := strings.TrimPrefix(path, prefix)
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
