package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
	"github.com/erazemk/najdeno/internal/workflow"
)

// AdminHandler handles the admin-only endpoints.
type AdminHandler struct {
	DB      *sql.DB
	Service *workflow.Service
}

type adminDashboardResponse struct {
	Items    []model.Item     `json:"items"`
	Claims   []model.Claim    `json:"claims"`
	Users    []model.User     `json:"users"`
	Feedback []model.Feedback `json:"feedback"`
}

// Dashboard handles GET /api/admin/dashboard: every item, every live claim,
// all non-admin users, and all feedback.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItems(r.Context(), h.DB, "", "")
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	claims, err := store.ListClaims(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list claims")
		return
	}

	users, err := store.ListNonAdminUsers(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	feedback, err := store.ListFeedback(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list feedback")
		return
	}

	resp := adminDashboardResponse{Items: items, Claims: claims, Users: users, Feedback: feedback}
	if resp.Items == nil {
		resp.Items = []model.Item{}
	}
	if resp.Claims == nil {
		resp.Claims = []model.Claim{}
	}
	if resp.Users == nil {
		resp.Users = []model.User{}
	}
	if resp.Feedback == nil {
		resp.Feedback = []model.Feedback{}
	}
	jsonResponse(w, http.StatusOK, resp)
}

// DeleteItem handles DELETE /api/admin/items/{id}.
func (h *AdminHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	identity := GetIdentity(r.Context())
	if err := h.Service.DeleteItem(r.Context(), identity, id); err != nil {
		workflowError(w, err)
		return
	}

	slog.Info("item deleted", "item", id, "admin", identity.Email)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// DeleteClaim handles DELETE /api/admin/claims/{id}. Revoking a claim makes
// its item available again.
func (h *AdminHandler) DeleteClaim(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	identity := GetIdentity(r.Context())
	if err := h.Service.RevokeClaim(r.Context(), identity, id); err != nil {
		workflowError(w, err)
		return
	}

	slog.Info("claim revoked", "claim", id, "admin", identity.Email)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "claim revoked"})
}

// DeleteUser handles DELETE /api/admin/users/{id}.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}
	if user.Role == model.RoleAdmin {
		jsonError(w, http.StatusForbidden, "cannot delete an admin account")
		return
	}

	identity := GetIdentity(r.Context())
	if err := h.Service.DeleteUser(r.Context(), identity, id); err != nil {
		workflowError(w, err)
		return
	}

	slog.Info("user deleted", "user", user.Email, "admin", identity.Email)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// Reconcile handles POST /api/admin/reconcile, running one expiry pass on
// demand instead of waiting for the next scheduled one.
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.Reconcile(r.Context())
	if err != nil {
		slog.Error("reconciliation failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "reconciliation failed")
		return
	}

	slog.Info("reconciliation run", "admin", GetIdentity(r.Context()).Email,
		"claims_deleted", result.ClaimsDeleted, "items_updated", result.ItemsUpdated)
	jsonResponse(w, http.StatusOK, result)
}
