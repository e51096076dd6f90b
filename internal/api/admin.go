package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// AdminHandler handles the admin dashboard endpoints.
type AdminHandler struct {
	DB *sql.DB
}

type statsResponse struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Returned int `json:"returned"`
	Today    int `json:"today"`
}

// Stats handles GET /api/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	total, active, returned, today, err := store.CountItems(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to count items")
		return
	}

	jsonResponse(w, http.StatusOK, statsResponse{
		Total:    total,
		Active:   active,
		Returned: returned,
		Today:    today,
	})
}

// Purge handles DELETE /api/items/{id}: permanent removal, unlike the
// soft delete on the public route.
func (h *AdminHandler) Purge(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	if err := store.HardDeleteItem(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to purge item")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "item purged"})
}

// Export handles GET /api/export: the full collection as a JSON download,
// returned items included.
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItems(r.Context(), h.DB, false)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}

	w.Header().Set("Content-Disposition", `attachment; filename="items.json"`)
	jsonResponse(w, http.StatusOK, items)
}
