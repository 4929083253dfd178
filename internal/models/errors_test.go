package models

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorsUnwrapWithAs(t *testing.T) {
	lockedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	var base error = fmt.Errorf("acquire failed: %w", &AlreadyLockedError{
		EntryID:  7,
		HeldBy:   3,
		LockedAt: lockedAt,
	})

	var locked *AlreadyLockedError
	if assert.True(t, errors.As(base, &locked)) {
		assert.Equal(t, 7, locked.EntryID)
		assert.Equal(t, 3, locked.HeldBy)
	}
}

func TestDomainErrorMessages(t *testing.T) {
	assert.Equal(t, "sheet 4 not found", (&NotFoundError{Resource: "sheet", ID: 4}).Error())
	assert.Equal(t, "entry 9 is already completed", (&EntryCompletedError{EntryID: 9}).Error())
	assert.Equal(t, "user 2 does not hold the lock on entry 5", (&NotLockHolderError{EntryID: 5, UserID: 2}).Error())
	assert.Equal(t, "missing required fields: site, vendor_contact_date",
		(&ValidationError{MissingFields: []string{"site", "vendor_contact_date"}}).Error())
	assert.Equal(t, "assignment (sheet 1, team 2) has 3 incomplete entries",
		(&IncompleteSubmissionError{SheetID: 1, TeamID: 2, PendingEntryIDs: []int{10, 11, 12}}).Error())
	assert.Equal(t, "assignment (sheet 1, team 2) is completed; an administrative unlock is required before editing",
		(&AssignmentCompletedError{SheetID: 1, TeamID: 2}).Error())
	assert.Equal(t, "update contains no fields",
		(&ValidationError{Message: "update contains no fields"}).Error())
	assert.Equal(t, "assignment (sheet 1, team 2) is in_progress, not completed",
		(&NotCompletedError{SheetID: 1, TeamID: 2, Status: AssignmentInProgress}).Error())
	assert.Equal(t, "cannot distribute sheet 8: sheet has no entries",
		(&DistributionError{SheetID: 8, Reason: "sheet has no entries"}).Error())
}
