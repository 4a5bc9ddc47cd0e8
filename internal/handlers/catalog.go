package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"rada-learning/internal/catalog"
	"rada-learning/internal/models"
)

type moduleLister interface {
	ListModules(ctx context.Context) ([]models.Module, error)
}

type CatalogHandler struct {
	modules  moduleLister
	pageSize int
}

func NewCatalogHandler(modules moduleLister, pageSize int) *CatalogHandler {
	return &CatalogHandler{modules: modules, pageSize: pageSize}
}

type catalogResponse struct {
	catalog.Page
	Facets catalog.Facets `json:"facets"`
}

// List searches the catalog without a session.
// GET /api/v1/catalog?q=&category=&difficulty=&limit=
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := h.pageSize
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
				map[string]string{"limit": "must be a positive integer"}, r))
			return
		}
		limit = n
	}

	modules, err := h.modules.ListModules(r.Context())
	if err != nil {
		log.Printf("Catalog list failed: %v", err)
		writeJSON(w, http.StatusBadGateway, errorResp("CONTENT_UNAVAILABLE", "Catalog could not be loaded", r))
		return
	}

	b := catalog.NewBrowser(modules, limit)
	b.SetFilter(catalog.Filter{
		Query:      q.Get("q"),
		Category:   q.Get("category"),
		Difficulty: q.Get("difficulty"),
	})

	writeJSON(w, http.StatusOK, catalogResponse{Page: b.Page(), Facets: catalog.FacetsOf(modules)})
}

// GET /api/v1/challenges
func (h *CatalogHandler) Challenges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"challenges": catalog.Challenges()})
}

// GET /api/v1/challenges/{id}
func (h *CatalogHandler) Challenge(w http.ResponseWriter, r *http.Request) {
	c := catalog.Challenge(chi.URLParam(r, "id"))
	if c == nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Challenge not found", r))
		return
	}
	writeJSON(w, http.StatusOK, c)
}
