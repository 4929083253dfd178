package models

import (
	"fmt"
	"strings"
	"time"
)

// Domain errors are typed so the handler layer can map each one to a
// distinct HTTP response without leaking storage-level detail.

// NotFoundError: a referenced sheet, entry, team, assignment or
// response does not exist.
type NotFoundError struct {
	Resource string
	ID       int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// AlreadyLockedError: the entry is locked by another active holder.
type AlreadyLockedError struct {
	EntryID  int
	HeldBy   int
	LockedAt time.Time
}

func (e *AlreadyLockedError) Error() string {
	return fmt.Sprintf("entry %d is locked by user %d since %s", e.EntryID, e.HeldBy, e.LockedAt.Format(time.RFC3339))
}

// NotLockHolderError: a release was attempted by a user that does not
// hold the lock.
type NotLockHolderError struct {
	EntryID int
	UserID  int
}

func (e *NotLockHolderError) Error() string {
	return fmt.Sprintf("user %d does not hold the lock on entry %d", e.UserID, e.EntryID)
}

// EntryCompletedError: the entry is completed and not lockable except
// through the explicit reopen path.
type EntryCompletedError struct {
	EntryID int
}

func (e *EntryCompletedError) Error() string {
	return fmt.Sprintf("entry %d is already completed", e.EntryID)
}

// AssignmentCompletedError: a response edit or entry completion was
// attempted on an assignment already in the completed state. Completed
// assignments are frozen until an administrative unlock.
type AssignmentCompletedError struct {
	SheetID int
	TeamID  int
}

func (e *AssignmentCompletedError) Error() string {
	return fmt.Sprintf("assignment (sheet %d, team %d) is completed; an administrative unlock is required before editing", e.SheetID, e.TeamID)
}

// ValidationError: a request body is malformed, usually because
// conditionally required fields are missing from a completion payload.
type ValidationError struct {
	Message       string
	MissingFields []string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "missing required fields: " + strings.Join(e.MissingFields, ", ")
}

// IncompleteSubmissionError: a sheet submission was attempted while some
// responses still fail the completion predicate.
type IncompleteSubmissionError struct {
	SheetID         int
	TeamID          int
	PendingEntryIDs []int
}

func (e *IncompleteSubmissionError) Error() string {
	return fmt.Sprintf("assignment (sheet %d, team %d) has %d incomplete entries", e.SheetID, e.TeamID, len(e.PendingEntryIDs))
}

// NotCompletedError: an administrative unlock was attempted on an
// assignment that is not in the completed state.
type NotCompletedError struct {
	SheetID int
	TeamID  int
	Status  string
}

func (e *NotCompletedError) Error() string {
	return fmt.Sprintf("assignment (sheet %d, team %d) is %s, not completed", e.SheetID, e.TeamID, e.Status)
}

// DistributionError: a sheet could not be fanned out to teams.
type DistributionError struct {
	SheetID int
	Reason  string
}

func (e *DistributionError) Error() string {
	return fmt.Sprintf("cannot distribute sheet %d: %s", e.SheetID, e.Reason)
}
