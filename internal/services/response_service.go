package services

import (
	"context"
	"errors"
	"log"

	"advisory-backend/internal/cache"
	"advisory-backend/internal/events"
	"advisory-backend/internal/models"
	"advisory-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
)

// ResponseService applies a team member's field-by-field edits. Every
// edit flows through the lock manager first and is recorded in the edit
// tracking ledger after; the first edit of an assignment flips it to
// in_progress.
type ResponseService struct {
	EntryRepo      *repositories.EntryRepository
	AssignmentRepo *repositories.AssignmentRepository
	ResponseRepo   *repositories.ResponseRepository
	Locks          *LockService
	Tracking       *TrackingService
	Events         *events.Dispatcher
}

func NewResponseService(
	entryRepo *repositories.EntryRepository,
	assignmentRepo *repositories.AssignmentRepository,
	responseRepo *repositories.ResponseRepository,
	locks *LockService,
	tracking *TrackingService,
	dispatcher *events.Dispatcher,
) *ResponseService {
	return &ResponseService{
		EntryRepo:      entryRepo,
		AssignmentRepo: assignmentRepo,
		ResponseRepo:   responseRepo,
		Locks:          locks,
		Tracking:       tracking,
		Events:         dispatcher,
	}
}

// validFlag accepts 'Y', 'N' or empty (unanswered).
func validFlag(v string) bool {
	return v == "" || v == models.FlagYes || v == models.FlagNo
}

// UpdateResponse edits the team's response for one entry. The caller
// must hold (or be able to acquire) the entry lock; a fresh lock held
// by another user surfaces as AlreadyLockedError.
func (s *ResponseService) UpdateResponse(ctx context.Context, entryID, userID, teamID int, req *models.UpdateResponseRequest) (*models.Response, error) {
	if req.IsEmpty() {
		return nil, &models.ValidationError{Message: "update contains no fields"}
	}
	if req.DeployedInKE != nil && !validFlag(*req.DeployedInKE) {
		return nil, &models.ValidationError{MissingFields: []string{"deployed_in_ke"}}
	}
	if req.VendorContacted != nil && !validFlag(*req.VendorContacted) {
		return nil, &models.ValidationError{MissingFields: []string{"vendor_contacted"}}
	}

	entry, err := s.EntryRepo.Get(ctx, entryID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.NotFoundError{Resource: "entry", ID: entryID}
	}
	if err != nil {
		return nil, err
	}
	if entry.IsCompleted {
		return nil, &models.EntryCompletedError{EntryID: entryID}
	}

	assignment, err := s.AssignmentRepo.GetBySheetAndTeam(ctx, entry.SheetID, teamID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.NotFoundError{Resource: "assignment", ID: entry.SheetID}
	}
	if err != nil {
		return nil, err
	}
	// A completed assignment is frozen until an administrative unlock
	// moves it back to in_progress.
	if assignment.Status == models.AssignmentCompleted {
		return nil, &models.AssignmentCompletedError{SheetID: entry.SheetID, TeamID: teamID}
	}

	response, err := s.ResponseRepo.GetByAssignmentAndEntry(ctx, assignment.ID, entryID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.NotFoundError{Resource: "response", ID: entryID}
	}
	if err != nil {
		return nil, err
	}

	// Acquire-or-refresh: holding the lock is a precondition of every
	// response mutation.
	if _, err := s.Locks.Acquire(ctx, entryID, userID); err != nil {
		return nil, err
	}

	updated, err := s.ResponseRepo.UpdateFields(ctx, response.ID, req, userID)
	if err != nil {
		return nil, err
	}

	// First edit of the assignment starts it.
	started, err := s.AssignmentRepo.MarkStarted(ctx, assignment.ID, userID)
	if err != nil {
		log.Printf("[Response] Failed to mark assignment %d started: %v", assignment.ID, err)
	} else if started {
		log.Printf("[Response] Assignment %d moved to in_progress by user %d", assignment.ID, userID)
	}

	s.Tracking.TrackEdit(userID, entry.SheetID, entryID, &response.ID)
	cache.InvalidateTeam(ctx, entry.SheetID, teamID)
	s.Events.Emit(events.Event{
		Type:        events.TypeResponseUpdated,
		SheetID:     entry.SheetID,
		TeamID:      teamID,
		EntryID:     entryID,
		ActorUserID: userID,
	})

	return updated, nil
}
