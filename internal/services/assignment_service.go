package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"advisory-backend/internal/cache"
	"advisory-backend/internal/events"
	"advisory-backend/internal/metrics"
	"advisory-backend/internal/models"
	"advisory-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AssignmentService drives the per-team lifecycle:
// assigned -> in_progress -> completed, plus the administrative reopen.
type AssignmentService struct {
	DB             *pgxpool.Pool
	AssignmentRepo *repositories.AssignmentRepository
	ResponseRepo   *repositories.ResponseRepository
	AdminLogRepo   *repositories.AdminActionLogRepository
	Events         *events.Dispatcher
}

func NewAssignmentService(
	db *pgxpool.Pool,
	assignmentRepo *repositories.AssignmentRepository,
	responseRepo *repositories.ResponseRepository,
	adminLogRepo *repositories.AdminActionLogRepository,
	dispatcher *events.Dispatcher,
) *AssignmentService {
	return &AssignmentService{
		DB:             db,
		AssignmentRepo: assignmentRepo,
		ResponseRepo:   responseRepo,
		AdminLogRepo:   adminLogRepo,
		Events:         dispatcher,
	}
}

// Submit transitions the assignment to completed iff every response
// satisfies the completion predicate. The assignment row is re-read
// under FOR UPDATE inside the transaction so two concurrent submits
// cannot both trigger the completion side effects.
func (s *AssignmentService) Submit(ctx context.Context, sheetID, teamID, userID int) (*models.Assignment, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	assignment, err := s.AssignmentRepo.LockForUpdateTx(ctx, tx, sheetID, teamID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.NotFoundError{Resource: "assignment", ID: sheetID}
	}
	if err != nil {
		return nil, err
	}
	if assignment.Status == models.AssignmentCompleted {
		// Second submit after completion is a no-op, not an error.
		return assignment, nil
	}

	pending, err := s.ResponseRepo.PendingEntryIDsTx(ctx, tx, assignment.ID)
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		return nil, &models.IncompleteSubmissionError{SheetID: sheetID, TeamID: teamID, PendingEntryIDs: pending}
	}

	if err := s.AssignmentRepo.CompleteTx(ctx, tx, assignment.ID, userID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.AssignmentsSubmitted.Inc()
	cache.InvalidateTeam(ctx, sheetID, teamID)
	s.Events.Emit(events.Event{
		Type:        events.TypeAssignmentSubmitted,
		SheetID:     sheetID,
		TeamID:      teamID,
		ActorUserID: userID,
	})

	return s.AssignmentRepo.GetBySheetAndTeam(ctx, sheetID, teamID)
}

// Unlock reopens a completed assignment. Administrative only, requires
// a reason, never alters individual response data.
func (s *AssignmentService) Unlock(ctx context.Context, sheetID, teamID, adminUserID int, reason string) (*models.Assignment, error) {
	unlocked, err := s.AssignmentRepo.Unlock(ctx, sheetID, teamID, reason)
	if err != nil {
		return nil, err
	}
	if !unlocked {
		assignment, err := s.AssignmentRepo.GetBySheetAndTeam(ctx, sheetID, teamID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &models.NotFoundError{Resource: "assignment", ID: sheetID}
		}
		if err != nil {
			return nil, err
		}
		return nil, &models.NotCompletedError{SheetID: sheetID, TeamID: teamID, Status: assignment.Status}
	}

	logEntry := &models.AdminActionLog{
		AdminUserID: adminUserID,
		ActionType:  models.ActionUnlockSheet,
		TargetType:  "assignment",
		TargetID:    &sheetID,
		Description: "completed assignment reopened",
		Reason:      &reason,
	}
	if err := s.AdminLogRepo.Create(ctx, logEntry); err != nil {
		log.Printf("[Assignment] Failed to log unlock: %v", err)
	}

	cache.InvalidateTeam(ctx, sheetID, teamID)
	s.Events.Emit(events.Event{
		Type:        events.TypeAssignmentUnlocked,
		SheetID:     sheetID,
		TeamID:      teamID,
		ActorUserID: adminUserID,
	})

	return s.AssignmentRepo.GetBySheetAndTeam(ctx, sheetID, teamID)
}

// Progress computes the share of responses satisfying the completion
// predicate. Reporting only: the completed transition always uses the
// strict all-or-nothing check in Submit, never this percentage.
func (s *AssignmentService) Progress(ctx context.Context, sheetID, teamID int) (*models.AssignmentProgress, error) {
	if data, ok := cache.GetProgress(ctx, sheetID, teamID); ok {
		var p models.AssignmentProgress
		if err := json.Unmarshal(data, &p); err == nil {
			return &p, nil
		}
	}

	assignment, err := s.AssignmentRepo.GetBySheetAndTeam(ctx, sheetID, teamID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.NotFoundError{Resource: "assignment", ID: sheetID}
	}
	if err != nil {
		return nil, err
	}

	total, done, err := s.ResponseRepo.CountProgress(ctx, assignment.ID)
	if err != nil {
		return nil, err
	}

	p := &models.AssignmentProgress{
		SheetID: sheetID,
		TeamID:  teamID,
		Status:  assignment.Status,
		Total:   total,
		Done:    done,
	}
	if total > 0 {
		p.PercentDone = float64(done) * 100 / float64(total)
	}

	if data, err := json.Marshal(p); err == nil {
		cache.SetProgress(ctx, sheetID, teamID, data)
	}
	return p, nil
}

// ListBySheet returns every team's assignment for a sheet.
func (s *AssignmentService) ListBySheet(ctx context.Context, sheetID int) ([]*models.Assignment, error) {
	return s.AssignmentRepo.ListBySheet(ctx, sheetID)
}
