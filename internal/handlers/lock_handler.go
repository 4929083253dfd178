package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"advisory-backend/internal/auth"
	"advisory-backend/internal/middleware"
	"advisory-backend/internal/models"
	"advisory-backend/internal/services"
	"advisory-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type LockHandler struct {
	Locks     *services.LockService
	Responses *services.ResponseService
	Guard     *auth.AdminGuard
}

func NewLockHandler(locks *services.LockService, responses *services.ResponseService, guard *auth.AdminGuard) *LockHandler {
	return &LockHandler{Locks: locks, Responses: responses, Guard: guard}
}

// adminActionRequest carries the reason and optional TOTP code for
// destructive admin operations.
type adminActionRequest struct {
	Reason   string `json:"reason"`
	TOTPCode string `json:"totp_code,omitempty"`
}

func (h *LockHandler) Acquire(w http.ResponseWriter, r *http.Request) {
	entryID, _ := strconv.Atoi(mux.Vars(r)["id"])
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	status, err := h.Locks.Acquire(r.Context(), entryID, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, status)
}

func (h *LockHandler) Release(w http.ResponseWriter, r *http.Request) {
	entryID, _ := strconv.Atoi(mux.Vars(r)["id"])
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	if err := h.Locks.Release(r.Context(), entryID, userID); err != nil {
		writeDomainError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{"status": "released"})
}

// ForceRelease clears another user's lock. Admin only, audited.
func (h *LockHandler) ForceRelease(w http.ResponseWriter, r *http.Request) {
	entryID, _ := strconv.Atoi(mux.Vars(r)["id"])
	adminID, _ := middleware.GetUserIDFromContext(r.Context())

	var req adminActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Reason == "" {
		utils.Error(w, http.StatusBadRequest, "reason is required")
		return
	}
	if !h.Guard.Verify(req.TOTPCode) {
		utils.Error(w, http.StatusForbidden, "Invalid TOTP code")
		return
	}

	if err := h.Locks.ForceRelease(r.Context(), entryID, adminID, req.Reason); err != nil {
		writeDomainError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{"status": "released"})
}

// UpdateResponse applies a partial edit to the caller's team copy of
// an entry, acquiring the entry lock as a precondition.
func (h *LockHandler) UpdateResponse(w http.ResponseWriter, r *http.Request) {
	entryID, _ := strconv.Atoi(mux.Vars(r)["id"])
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	teamID, ok := middleware.GetTeamIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusForbidden, "Only team members can edit responses")
		return
	}

	var req models.UpdateResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.Responses.UpdateResponse(r.Context(), entryID, userID, teamID, &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}

// Complete finalizes an entry for the caller's team after validating
// the conditional field requirements.
func (h *LockHandler) Complete(w http.ResponseWriter, r *http.Request) {
	entryID, _ := strconv.Atoi(mux.Vars(r)["id"])
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	teamID, ok := middleware.GetTeamIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusForbidden, "Only team members can complete entries")
		return
	}

	var payload models.CompletionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.Locks.Complete(r.Context(), entryID, userID, teamID, &payload)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}

// Reopen clears an entry's completed state. Admin only, audited.
func (h *LockHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	entryID, _ := strconv.Atoi(mux.Vars(r)["id"])
	adminID, _ := middleware.GetUserIDFromContext(r.Context())

	var req adminActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Reason == "" {
		utils.Error(w, http.StatusBadRequest, "reason is required")
		return
	}
	if !h.Guard.Verify(req.TOTPCode) {
		utils.Error(w, http.StatusForbidden, "Invalid TOTP code")
		return
	}

	if err := h.Locks.Reopen(r.Context(), entryID, adminID, req.Reason); err != nil {
		writeDomainError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{"status": "reopened"})
}
