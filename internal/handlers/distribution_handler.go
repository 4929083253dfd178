package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"advisory-backend/internal/middleware"
	"advisory-backend/internal/models"
	"advisory-backend/internal/services"
	"advisory-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type DistributionHandler struct {
	Service *services.DistributionService
}

func NewDistributionHandler(s *services.DistributionService) *DistributionHandler {
	return &DistributionHandler{Service: s}
}

// Distribute fans a sheet out to the named teams. Safe to repeat;
// existing assignments are kept and missing response copies filled in.
func (h *DistributionHandler) Distribute(w http.ResponseWriter, r *http.Request) {
	sheetID, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.DistributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.TeamIDs) == 0 {
		utils.Error(w, http.StatusBadRequest, "team_ids is required")
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	result, err := h.Service.Distribute(r.Context(), sheetID, req.TeamIDs, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, result)
}

// Backfill creates response copies for entries added to a sheet after
// it was distributed.
func (h *DistributionHandler) Backfill(w http.ResponseWriter, r *http.Request) {
	sheetID, _ := strconv.Atoi(mux.Vars(r)["id"])

	created, err := h.Service.BackfillResponses(r.Context(), sheetID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]int{"responses_created": created})
}

// TeamView serves a team's worksheet: its responses joined with the
// read-only canonical entry fields.
func (h *DistributionHandler) TeamView(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sheetID, _ := strconv.Atoi(vars["id"])
	teamID, _ := strconv.Atoi(vars["teamId"])

	// Members may only read their own team's worksheet.
	role, _ := middleware.GetRoleFromContext(r.Context())
	if role != "admin" {
		ownTeam, ok := middleware.GetTeamIDFromContext(r.Context())
		if !ok || ownTeam != teamID {
			utils.Error(w, http.StatusForbidden, "Forbidden: not your team's worksheet")
			return
		}
	}

	view, err := h.Service.GetTeamView(r.Context(), sheetID, teamID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, view)
}
