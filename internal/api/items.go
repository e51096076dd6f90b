package api

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// ItemsHandler handles item CRUD endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

type createItemRequest struct {
	ItemName    string   `json:"itemName"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Images      []string `json:"images"`
}

type updateItemRequest struct {
	Returned   bool   `json:"returned"`
	AdminNotes string `json:"adminNotes"`
	ReturnedBy string `json:"returnedBy"`
}

// List handles GET /items. The public view excludes returned and deleted
// items; admins may pass ?all=true to include returned ones.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := true
	if r.URL.Query().Get("all") == "true" && isAdmin(r.Context()) {
		activeOnly = false
	}

	items, err := store.ListItems(r.Context(), h.DB, activeOnly)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ItemName == "" || req.Location == "" || req.Email == "" {
		jsonError(w, http.StatusBadRequest, "itemName, location, and email required")
		return
	}
	if len(req.Images) < model.MinImages || len(req.Images) > model.MaxImages {
		jsonError(w, http.StatusBadRequest, "between 1 and 4 images required")
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, model.Item{
		ItemName:    req.ItemName,
		Description: req.Description,
		Location:    req.Location,
		Email:       req.Email,
		Phone:       req.Phone,
		Images:      req.Images,
	})
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := store.GetItem(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || item.Deleted {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /items/{id}. Only the returned lifecycle transition
// is supported as a partial update.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Returned {
		jsonError(w, http.StatusBadRequest, "only marking items returned is supported")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || item.Deleted {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	by := req.ReturnedBy
	if by == "" {
		if claims := GetClaims(r.Context()); claims != nil {
			by = claims.Email
		}
	}

	if err := store.MarkReturned(r.Context(), h.DB, id, req.AdminNotes, by); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	item, _ = store.GetItem(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, r.PathValue("id"))
}

// DeleteByBody handles the legacy DELETE /items form that carries the ID
// in a JSON body instead of the path.
func (h *ItemsHandler) DeleteByBody(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(r, &req); err != nil || req.ID == "" {
		jsonError(w, http.StatusBadRequest, "item id required")
		return
	}
	h.deleteByID(w, r, req.ID)
}

// deleteByID soft-deletes an item. Admins may delete anything; other
// users only what they reported themselves.
func (h *ItemsHandler) deleteByID(w http.ResponseWriter, r *http.Request, id string) {
	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || item.Deleted {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	claims := GetClaims(r.Context())
	if !isAdmin(r.Context()) && (claims == nil || !strings.EqualFold(claims.Email, item.Email)) {
		jsonError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	if err := store.SoftDeleteItem(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}
