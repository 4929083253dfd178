package services

import (
	"context"
	"errors"
	"log"
	"time"

	"advisory-backend/internal/cache"
	"advisory-backend/internal/events"
	"advisory-backend/internal/metrics"
	"advisory-backend/internal/models"
	"advisory-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LockService serializes concurrent edit access to entries. All state
// lives on the entry row in Postgres and every transition is a single
// conditional update, so the guarantees hold across server instances
// where an in-process mutex would not.
type LockService struct {
	DB             *pgxpool.Pool
	EntryRepo      *repositories.EntryRepository
	AssignmentRepo *repositories.AssignmentRepository
	ResponseRepo   *repositories.ResponseRepository
	AdminLogRepo   *repositories.AdminActionLogRepository
	Tracking       *TrackingService
	Events         *events.Dispatcher

	staleThreshold time.Duration
}

func NewLockService(
	db *pgxpool.Pool,
	entryRepo *repositories.EntryRepository,
	assignmentRepo *repositories.AssignmentRepository,
	responseRepo *repositories.ResponseRepository,
	adminLogRepo *repositories.AdminActionLogRepository,
	tracking *TrackingService,
	dispatcher *events.Dispatcher,
	staleThreshold time.Duration,
) *LockService {
	return &LockService{
		DB:             db,
		EntryRepo:      entryRepo,
		AssignmentRepo: assignmentRepo,
		ResponseRepo:   responseRepo,
		AdminLogRepo:   adminLogRepo,
		Tracking:       tracking,
		Events:         dispatcher,
		staleThreshold: staleThreshold,
	}
}

func (s *LockService) staleCutoff() time.Time {
	return time.Now().Add(-s.staleThreshold)
}

// Acquire claims the entry for userID. Succeeds when the entry is
// unlocked, already held by the same user (refreshing locked_at), or
// held by a lock older than the staleness threshold. Completed entries
// are never lockable outside the reopen path.
func (s *LockService) Acquire(ctx context.Context, entryID, userID int) (*models.LockStatus, error) {
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

	takingOverStale := entry.LockedByUserID != nil && *entry.LockedByUserID != userID &&
		entry.LockedAt != nil && entry.LockedAt.Before(s.staleCutoff())

	lockedAt, ok, err := s.EntryRepo.TryLock(ctx, entryID, userID, s.staleCutoff())
	if err != nil {
		return nil, err
	}
	if !ok {
		// The conditional update matched nothing: another fresh holder
		// won the race. Re-read to report who.
		return nil, s.classifyLockFailure(ctx, entryID)
	}

	metrics.LocksAcquired.Inc()
	if takingOverStale {
		metrics.StaleLockTakeovers.Inc()
		log.Printf("[Lock] User %d took over stale lock on entry %d (was user %d)", userID, entryID, *entry.LockedByUserID)
	}
	return &models.LockStatus{Locked: true, LockedAt: lockedAt}, nil
}

func (s *LockService) classifyLockFailure(ctx context.Context, entryID int) error {
	entry, err := s.EntryRepo.Get(ctx, entryID)
	if errors.Is(err, pgx.ErrNoRows) {
		return &models.NotFoundError{Resource: "entry", ID: entryID}
	}
	if err != nil {
		return err
	}
	if entry.IsCompleted {
		return &models.EntryCompletedError{EntryID: entryID}
	}
	if entry.LockedByUserID != nil && entry.LockedAt != nil {
		metrics.LockConflicts.Inc()
		return &models.AlreadyLockedError{EntryID: entryID, HeldBy: *entry.LockedByUserID, LockedAt: *entry.LockedAt}
	}
	// Holder released between our update and the re-read; treat as a
	// conflict the caller can immediately retry.
	metrics.LockConflicts.Inc()
	return &models.AlreadyLockedError{EntryID: entryID, HeldBy: 0, LockedAt: time.Now()}
}

// Release clears the lock when userID is the current holder.
func (s *LockService) Release(ctx context.Context, entryID, userID int) error {
	released, err := s.EntryRepo.Unlock(ctx, entryID, userID)
	if err != nil {
		return err
	}
	if !released {
		if _, err := s.EntryRepo.Get(ctx, entryID); errors.Is(err, pgx.ErrNoRows) {
			return &models.NotFoundError{Resource: "entry", ID: entryID}
		} else if err != nil {
			return err
		}
		return &models.NotLockHolderError{EntryID: entryID, UserID: userID}
	}
	return nil
}

// ForceRelease bypasses the holder check. Administrative, audited.
func (s *LockService) ForceRelease(ctx context.Context, entryID, adminUserID int, reason string) error {
	released, err := s.EntryRepo.ForceUnlock(ctx, entryID)
	if err != nil {
		return err
	}
	if !released {
		if _, err := s.EntryRepo.Get(ctx, entryID); errors.Is(err, pgx.ErrNoRows) {
			return &models.NotFoundError{Resource: "entry", ID: entryID}
		} else if err != nil {
			return err
		}
		// Not locked; nothing to release but not an error worth a 4xx.
		return nil
	}

	logEntry := &models.AdminActionLog{
		AdminUserID: adminUserID,
		ActionType:  models.ActionForceRelease,
		TargetType:  "entry",
		TargetID:    &entryID,
		Description: "entry lock force released",
		Reason:      &reason,
	}
	if err := s.AdminLogRepo.Create(ctx, logEntry); err != nil {
		log.Printf("[Lock] Failed to log force release: %v", err)
	}
	return nil
}

// Complete atomically validates the payload, confirms the caller holds
// the lock (acquiring it when free), writes the team's response, marks
// the entry done and clears the lock.
func (s *LockService) Complete(ctx context.Context, entryID, userID, teamID int, payload *models.CompletionPayload) (*models.Response, error) {
	if missing := payload.MissingFields(); len(missing) > 0 {
		return nil, &models.ValidationError{MissingFields: missing}
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
	// Entries of a completed assignment (including ones an admin
	// reopened) stay frozen until the assignment itself is unlocked.
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

	// Hold the lock (or acquire it if free) before touching anything.
	if _, ok, err := s.EntryRepo.TryLock(ctx, entryID, userID, s.staleCutoff()); err != nil {
		return nil, err
	} else if !ok {
		return nil, s.classifyLockFailure(ctx, entryID)
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.ResponseRepo.ApplyCompletionTx(ctx, tx, response.ID, payload, userID); err != nil {
		return nil, err
	}

	done, err := s.EntryRepo.CompleteTx(ctx, tx, entryID, userID)
	if err != nil {
		return nil, err
	}
	if !done {
		// Lock was stolen (force release + reacquire) between our
		// acquire and the completion update.
		return nil, &models.NotLockHolderError{EntryID: entryID, UserID: userID}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	// A direct completion can be the assignment's first edit.
	if _, err := s.AssignmentRepo.MarkStarted(ctx, assignment.ID, userID); err != nil {
		log.Printf("[Lock] Failed to mark assignment %d started: %v", assignment.ID, err)
	}

	s.Tracking.TrackEdit(userID, entry.SheetID, entryID, &response.ID)
	cache.InvalidateTeam(ctx, entry.SheetID, teamID)
	s.Events.Emit(events.Event{
		Type:        events.TypeEntryCompleted,
		SheetID:     entry.SheetID,
		TeamID:      teamID,
		EntryID:     entryID,
		ActorUserID: userID,
	})

	return s.ResponseRepo.Get(ctx, response.ID)
}

// Reopen clears the completion flag so an entry becomes lockable again.
// Administrative, audited.
func (s *LockService) Reopen(ctx context.Context, entryID, adminUserID int, reason string) error {
	reopened, err := s.EntryRepo.Reopen(ctx, entryID)
	if err != nil {
		return err
	}
	if !reopened {
		if _, err := s.EntryRepo.Get(ctx, entryID); errors.Is(err, pgx.ErrNoRows) {
			return &models.NotFoundError{Resource: "entry", ID: entryID}
		} else if err != nil {
			return err
		}
		// Already open; reopening is idempotent.
		return nil
	}

	logEntry := &models.AdminActionLog{
		AdminUserID: adminUserID,
		ActionType:  models.ActionReopenEntry,
		TargetType:  "entry",
		TargetID:    &entryID,
		Description: "completed entry reopened for editing",
		Reason:      &reason,
	}
	if err := s.AdminLogRepo.Create(ctx, logEntry); err != nil {
		log.Printf("[Lock] Failed to log reopen: %v", err)
	}
	return nil
}
