package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
	"github.com/erazemk/najdeno/internal/workflow"
)

// ItemsHandler handles item registration, listing and claiming.
type ItemsHandler struct {
	DB      *sql.DB
	Service *workflow.Service
}

type createItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	status := r.URL.Query().Get("status")
	if status != "" && status != model.ItemStatusAvailable && status != model.ItemStatusClaimed {
		jsonError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	items, err := h.Service.ListItems(r.Context(), GetIdentity(r.Context()), search, status)
	if err != nil {
		workflowError(w, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items. Accepts either JSON or a multipart form
// with an optional image part.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	var photo *imaging.Photo

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		// Limit to 5 MB.
		r.Body = http.MaxBytesReader(w, r.Body, 5<<20)
		if err := r.ParseMultipartForm(5 << 20); err != nil {
			jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
			return
		}
		req.Name = r.FormValue("name")
		req.Description = r.FormValue("description")
		req.Location = r.FormValue("location")

		if file, _, err := r.FormFile("image"); err == nil {
			defer file.Close()
			processed, err := imaging.Process(file)
			if err != nil {
				jsonError(w, http.StatusBadRequest, err.Error())
				return
			}
			photo = processed
		}
	} else {
		if err := decodeJSON(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	identity := GetIdentity(r.Context())
	item, err := h.Service.CreateItem(r.Context(), identity, req.Name, req.Description, req.Location)
	if err != nil {
		workflowError(w, err)
		return
	}

	if photo != nil {
		if err := store.SetItemImage(r.Context(), h.DB, item.ID, photo.Data, photo.MIME); err != nil {
			// The item exists; losing its photo is not worth failing the
			// registration over.
			slog.Error("saving item photo", "item", item.ID, "error", err)
		} else {
			item.ImageMime = photo.MIME
		}
	}

	slog.Info("item registered", "item", item.ID, "user", identity.Email)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.Service.GetItem(r.Context(), GetIdentity(r.Context()), id)
	if err != nil {
		workflowError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Claim handles POST /api/items/{id}/claim.
func (h *ItemsHandler) Claim(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	identity := GetIdentity(r.Context())
	claim, err := h.Service.ClaimItem(r.Context(), identity, id)
	if err != nil {
		workflowError(w, err)
		return
	}

	slog.Info("item claimed", "item", id, "user", identity.Email)
	jsonResponse(w, http.StatusCreated, claim)
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
