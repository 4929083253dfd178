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

type SheetHandler struct {
	Service *services.SheetService
}

func NewSheetHandler(s *services.SheetService) *SheetHandler {
	return &SheetHandler{Service: s}
}

func (h *SheetHandler) CreateSheet(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	sheet, err := h.Service.CreateSheet(r.Context(), &req, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, sheet)
}

func (h *SheetHandler) GetSheet(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	sheet, err := h.Service.GetSheet(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, sheet)
}

func (h *SheetHandler) ListSheets(w http.ResponseWriter, r *http.Request) {
	sheets, err := h.Service.ListSheets(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, sheets)
}

// ImportDataset loads rows parsed from an uploaded spreadsheet into the
// sheet's canonical entry store.
func (h *SheetHandler) ImportDataset(w http.ResponseWriter, r *http.Request) {
	sheetID, _ := strconv.Atoi(mux.Vars(r)["id"])

	var dataset models.ParsedDataset
	if err := json.NewDecoder(r.Body).Decode(&dataset); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	entries, err := h.Service.ImportDataset(r.Context(), sheetID, &dataset, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, map[string]interface{}{
		"imported": len(entries),
		"entries":  entries,
	})
}

func (h *SheetHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	sheetID, _ := strconv.Atoi(mux.Vars(r)["id"])

	entries, err := h.Service.ListEntries(r.Context(), sheetID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, entries)
}

func (h *SheetHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	entryID, _ := strconv.Atoi(mux.Vars(r)["entryId"])

	if err := h.Service.DeleteEntry(r.Context(), entryID); err != nil {
		writeDomainError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
