package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// MessagesHandler handles user-to-user messages about items.
type MessagesHandler struct {
	DB *sql.DB
}

type createMessageRequest struct {
	ReceiverID int64  `json:"receiver_id"`
	ItemID     int64  `json:"item_id"`
	Message    string `json:"message"`
}

// Create handles POST /api/messages.
func (h *MessagesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ReceiverID == 0 || req.ItemID == 0 || req.Message == "" {
		jsonError(w, http.StatusBadRequest, "receiver_id, item_id and message are required")
		return
	}

	receiver, err := store.GetUser(r.Context(), h.DB, req.ReceiverID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if receiver == nil {
		jsonError(w, http.StatusNotFound, "receiver not found")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, req.ItemID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	identity := GetIdentity(r.Context())
	message, err := store.CreateMessage(r.Context(), h.DB, identity.UserID, req.ReceiverID, req.ItemID, req.Message)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to send message")
		return
	}

	slog.Info("message sent", "from", identity.Email, "to", receiver.Email, "item", item.ID)
	jsonResponse(w, http.StatusCreated, message)
}

// List handles GET /api/messages, returning the caller's received messages.
func (h *MessagesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := GetIdentity(r.Context())
	messages, err := store.ListMessagesForReceiver(r.Context(), h.DB, identity.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	if messages == nil {
		messages = []model.Message{}
	}
	jsonResponse(w, http.StatusOK, messages)
}

// FeedbackHandler handles service feedback.
type FeedbackHandler struct {
	DB *sql.DB
}

type createFeedbackRequest struct {
	Message string `json:"message"`
}

// Create handles POST /api/feedback.
func (h *FeedbackHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createFeedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		jsonError(w, http.StatusBadRequest, "message required")
		return
	}

	identity := GetIdentity(r.Context())
	if err := store.CreateFeedback(r.Context(), h.DB, identity.UserID, req.Message); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save feedback")
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]string{"message": "feedback received"})
}

// DashboardHandler serves the per-user overview.
type DashboardHandler struct {
	DB *sql.DB
}

type dashboardResponse struct {
	Items    []model.Item    `json:"items"`
	Claims   []model.Claim   `json:"claims"`
	Messages []model.Message `json:"messages"`
}

// Get handles GET /api/dashboard: the caller's registered items, their
// claims, and their received messages.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := GetIdentity(r.Context())

	items, err := store.ListItemsByCreator(r.Context(), h.DB, identity.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	claims, err := store.ListClaimsByClaimant(r.Context(), h.DB, identity.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list claims")
		return
	}

	messages, err := store.ListMessagesForReceiver(r.Context(), h.DB, identity.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}

	resp := dashboardResponse{Items: items, Claims: claims, Messages: messages}
	if resp.Items == nil {
		resp.Items = []model.Item{}
	}
	if resp.Claims == nil {
		resp.Claims = []model.Claim{}
	}
	if resp.Messages == nil {
		resp.Messages = []model.Message{}
	}
	jsonResponse(w, http.StatusOK, resp)
}
