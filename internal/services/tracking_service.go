package services

import (
	"context"
	"log"
	"time"

	"advisory-backend/internal/metrics"
	"advisory-backend/internal/models"
	"advisory-backend/internal/repositories"
)

// TrackingService records edit provenance. Tracking is best-effort
// telemetry: a failed write must never abort the edit that triggered
// it, so TrackEdit hands the upsert to a background goroutine and
// swallows (logs, counts) any failure.
type TrackingService struct {
	TrackingRepo *repositories.EditTrackingRepository
	AdminLogRepo *repositories.AdminActionLogRepository

	// timeout for the detached upsert
	writeTimeout time.Duration
}

func NewTrackingService(trackingRepo *repositories.EditTrackingRepository, adminLogRepo *repositories.AdminActionLogRepository) *TrackingService {
	return &TrackingService{
		TrackingRepo: trackingRepo,
		AdminLogRepo: adminLogRepo,
		writeTimeout: 5 * time.Second,
	}
}

// TrackEdit fires the upsert and returns immediately. The context of
// the triggering request is not reused: the edit should be recorded
// even when the client disconnects right after the mutation commits.
func (s *TrackingService) TrackEdit(userID, sheetID, entryID int, responseID *int) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
		defer cancel()
		if err := s.TrackingRepo.Upsert(ctx, userID, sheetID, entryID, responseID); err != nil {
			metrics.EditTrackingFailures.Inc()
			log.Printf("[Tracking] Failed to record edit (user %d, sheet %d, entry %d): %v", userID, sheetID, entryID, err)
		}
	}()
}

// EditedEntryIDsForUser returns the entries a user has touched in a
// sheet.
func (s *TrackingService) EditedEntryIDsForUser(ctx context.Context, userID, sheetID int) ([]int, error) {
	return s.TrackingRepo.EntryIDsForUser(ctx, userID, sheetID)
}

// EditedEntryIDsForTeam returns the entries any member of the team has
// touched in a sheet.
func (s *TrackingService) EditedEntryIDsForTeam(ctx context.Context, teamID, sheetID int) ([]int, error) {
	return s.TrackingRepo.EntryIDsForTeam(ctx, teamID, sheetID)
}

// RemoveTracking cascades tracking removal when an entry is deleted or
// administratively reset. The admin variant is audited.
func (s *TrackingService) RemoveTracking(ctx context.Context, sheetID, entryID int) error {
	return s.TrackingRepo.Remove(ctx, sheetID, entryID)
}

// ResetTracking is the administrative reset path: removes tracking for
// an entry and records who did it and why.
func (s *TrackingService) ResetTracking(ctx context.Context, sheetID, entryID, adminUserID int, reason string) error {
	if err := s.TrackingRepo.Remove(ctx, sheetID, entryID); err != nil {
		return err
	}
	logEntry := &models.AdminActionLog{
		AdminUserID: adminUserID,
		ActionType:  models.ActionResetTracking,
		TargetType:  "entry",
		TargetID:    &entryID,
		Description: "edit tracking reset",
		Reason:      &reason,
	}
	if err := s.AdminLogRepo.Create(ctx, logEntry); err != nil {
		log.Printf("[Tracking] Failed to log admin reset: %v", err)
	}
	return nil
}
