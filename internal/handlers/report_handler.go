package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"advisory-backend/internal/services"

	"github.com/gorilla/mux"
)

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(s *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: s}
}

// SheetSummaryPDF streams the per-team progress report for one sheet.
func (h *ReportHandler) SheetSummaryPDF(w http.ResponseWriter, r *http.Request) {
	sheetID, _ := strconv.Atoi(mux.Vars(r)["id"])

	data, err := h.Service.GetSheetSummaryData(r.Context(), sheetID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	pdf, err := h.Service.GenerateSheetSummaryPDF(data)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="sheet_%d_summary.pdf"`, sheetID))
	w.Write(pdf)
}

// TeamViewCSV exports a team's worksheet as CSV.
func (h *ReportHandler) TeamViewCSV(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sheetID, _ := strconv.Atoi(vars["id"])
	teamID, _ := strconv.Atoi(vars["teamId"])

	data, err := h.Service.GenerateTeamViewCSV(r.Context(), sheetID, teamID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="sheet_%d_team_%d.csv"`, sheetID, teamID))
	w.Write(data)
}
