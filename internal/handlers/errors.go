package handlers

import (
	"errors"
	"net/http"

	"advisory-backend/internal/models"
	"advisory-backend/pkg/utils"
)

// writeDomainError maps the typed domain errors onto HTTP responses so
// every handler reports conflicts and validation failures the same way.
func writeDomainError(w http.ResponseWriter, err error) {
	var notFound *models.NotFoundError
	var alreadyLocked *models.AlreadyLockedError
	var notHolder *models.NotLockHolderError
	var completed *models.EntryCompletedError
	var assignmentDone *models.AssignmentCompletedError
	var validation *models.ValidationError
	var incomplete *models.IncompleteSubmissionError
	var notCompleted *models.NotCompletedError
	var distribution *models.DistributionError

	switch {
	case errors.As(err, &notFound):
		utils.Error(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &alreadyLocked):
		utils.JSON(w, http.StatusConflict, map[string]interface{}{
			"error":     alreadyLocked.Error(),
			"entry_id":  alreadyLocked.EntryID,
			"held_by":   alreadyLocked.HeldBy,
			"locked_at": alreadyLocked.LockedAt,
		})
	case errors.As(err, &notHolder):
		utils.Error(w, http.StatusConflict, notHolder.Error())
	case errors.As(err, &completed):
		utils.Error(w, http.StatusConflict, completed.Error())
	case errors.As(err, &assignmentDone):
		utils.Error(w, http.StatusConflict, assignmentDone.Error())
	case errors.As(err, &validation):
		utils.JSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":          validation.Error(),
			"missing_fields": validation.MissingFields,
		})
	case errors.As(err, &incomplete):
		utils.JSON(w, http.StatusConflict, map[string]interface{}{
			"error":             incomplete.Error(),
			"pending_entry_ids": incomplete.PendingEntryIDs,
		})
	case errors.As(err, &notCompleted):
		utils.JSON(w, http.StatusConflict, map[string]interface{}{
			"error":  notCompleted.Error(),
			"status": notCompleted.Status,
		})
	case errors.As(err, &distribution):
		utils.Error(w, http.StatusBadRequest, distribution.Error())
	default:
		utils.Error(w, http.StatusInternalServerError, err.Error())
	}
}
