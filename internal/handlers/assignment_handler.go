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

type AssignmentHandler struct {
	Service *services.AssignmentService
	Guard   *auth.AdminGuard
}

func NewAssignmentHandler(s *services.AssignmentService, guard *auth.AdminGuard) *AssignmentHandler {
	return &AssignmentHandler{Service: s, Guard: guard}
}

// Submit moves the caller's team assignment to completed once every
// response satisfies the completion predicate.
func (h *AssignmentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sheetID, _ := strconv.Atoi(mux.Vars(r)["id"])
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	teamID, ok := middleware.GetTeamIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusForbidden, "Only team members can submit")
		return
	}

	assignment, err := h.Service.Submit(r.Context(), sheetID, teamID, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, assignment)
}

// Unlock reopens a completed assignment for further edits. Admin only,
// reason mandatory, audited.
func (h *AssignmentHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sheetID, _ := strconv.Atoi(vars["id"])
	teamID, _ := strconv.Atoi(vars["teamId"])
	adminID, _ := middleware.GetUserIDFromContext(r.Context())

	var req models.UnlockRequest
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

	assignment, err := h.Service.Unlock(r.Context(), sheetID, teamID, adminID, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, assignment)
}

func (h *AssignmentHandler) Progress(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sheetID, _ := strconv.Atoi(vars["id"])
	teamID, _ := strconv.Atoi(vars["teamId"])

	progress, err := h.Service.Progress(r.Context(), sheetID, teamID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, progress)
}

func (h *AssignmentHandler) ListBySheet(w http.ResponseWriter, r *http.Request) {
	sheetID, _ := strconv.Atoi(mux.Vars(r)["id"])

	assignments, err := h.Service.ListBySheet(r.Context(), sheetID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, assignments)
}
