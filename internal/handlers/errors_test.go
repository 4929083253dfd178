package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"advisory-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordDomainError(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	writeDomainError(rec, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestWriteDomainErrorNotFound(t *testing.T) {
	rec, body := recordDomainError(t, &models.NotFoundError{Resource: "entry", ID: 12})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "entry 12 not found", body["error"])
}

func TestWriteDomainErrorAlreadyLocked(t *testing.T) {
	rec, body := recordDomainError(t, &models.AlreadyLockedError{
		EntryID:  5,
		HeldBy:   3,
		LockedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, float64(3), body["held_by"])
	assert.Equal(t, float64(5), body["entry_id"])
	assert.NotEmpty(t, body["locked_at"])
}

func TestWriteDomainErrorValidation(t *testing.T) {
	rec, body := recordDomainError(t, &models.ValidationError{
		MissingFields: []string{"site", "vendor_contact_date"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, []interface{}{"site", "vendor_contact_date"}, body["missing_fields"])
}

func TestWriteDomainErrorIncompleteSubmission(t *testing.T) {
	rec, body := recordDomainError(t, &models.IncompleteSubmissionError{
		SheetID:         1,
		TeamID:          2,
		PendingEntryIDs: []int{10, 11},
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, []interface{}{float64(10), float64(11)}, body["pending_entry_ids"])
}

func TestWriteDomainErrorAssignmentCompleted(t *testing.T) {
	rec, body := recordDomainError(t, &models.AssignmentCompletedError{SheetID: 1, TeamID: 2})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, body["error"], "administrative unlock")
}

func TestWriteDomainErrorNotCompleted(t *testing.T) {
	rec, body := recordDomainError(t, &models.NotCompletedError{
		SheetID: 1, TeamID: 2, Status: models.AssignmentInProgress,
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "in_progress", body["status"])
}

func TestWriteDomainErrorWrapped(t *testing.T) {
	// Services wrap domain errors with context; mapping must still work.
	wrapped := errors.Join(errors.New("submit"), &models.EntryCompletedError{EntryID: 4})
	rec, _ := recordDomainError(t, wrapped)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestWriteDomainErrorFallback(t *testing.T) {
	rec, body := recordDomainError(t, errors.New("pool exhausted"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "pool exhausted", body["error"])
}
