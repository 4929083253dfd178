package handlers

import (
	"net/http"
	"strconv"

	"advisory-backend/internal/repositories"
	"advisory-backend/pkg/utils"
)

type AdminActionLogHandler struct {
	Repo *repositories.AdminActionLogRepository
}

func NewAdminActionLogHandler(repo *repositories.AdminActionLogRepository) *AdminActionLogHandler {
	return &AdminActionLogHandler{Repo: repo}
}

func (h *AdminActionLogHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	logs, err := h.Repo.List(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, logs)
}
