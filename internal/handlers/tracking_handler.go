package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"advisory-backend/internal/auth"
	"advisory-backend/internal/middleware"
	"advisory-backend/internal/services"
	"advisory-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type TrackingHandler struct {
	Service *services.TrackingService
	Guard   *auth.AdminGuard
}

func NewTrackingHandler(s *services.TrackingService, guard *auth.AdminGuard) *TrackingHandler {
	return &TrackingHandler{Service: s, Guard: guard}
}

// MyEditedEntries returns the entry IDs the caller has touched on a
// sheet, used by clients to highlight rows.
func (h *TrackingHandler) MyEditedEntries(w http.ResponseWriter, r *http.Request) {
	sheetID, _ := strconv.Atoi(mux.Vars(r)["id"])
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	ids, err := h.Service.EditedEntryIDsForUser(r.Context(), userID, sheetID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if ids == nil {
		ids = []int{}
	}

	utils.JSON(w, http.StatusOK, map[string][]int{"entry_ids": ids})
}

func (h *TrackingHandler) TeamEditedEntries(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sheetID, _ := strconv.Atoi(vars["id"])
	teamID, _ := strconv.Atoi(vars["teamId"])

	ids, err := h.Service.EditedEntryIDsForTeam(r.Context(), teamID, sheetID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if ids == nil {
		ids = []int{}
	}

	utils.JSON(w, http.StatusOK, map[string][]int{"entry_ids": ids})
}

// ResetTracking wipes the edit ledger for one entry. Admin only, audited.
func (h *TrackingHandler) ResetTracking(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sheetID, _ := strconv.Atoi(vars["id"])
	entryID, _ := strconv.Atoi(vars["entryId"])
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

	if err := h.Service.ResetTracking(r.Context(), sheetID, entryID, adminID, req.Reason); err != nil {
		writeDomainError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
