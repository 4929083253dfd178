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
)

// DistributionService materializes and keeps in sync the per-team
// editable copies of a sheet's entries.
type DistributionService struct {
	SheetRepo      *repositories.SheetRepository
	TeamRepo       *repositories.TeamRepository
	AssignmentRepo *repositories.AssignmentRepository
	ResponseRepo   *repositories.ResponseRepository
	Events         *events.Dispatcher
}

func NewDistributionService(
	sheetRepo *repositories.SheetRepository,
	teamRepo *repositories.TeamRepository,
	assignmentRepo *repositories.AssignmentRepository,
	responseRepo *repositories.ResponseRepository,
	dispatcher *events.Dispatcher,
) *DistributionService {
	return &DistributionService{
		SheetRepo:      sheetRepo,
		TeamRepo:       teamRepo,
		AssignmentRepo: assignmentRepo,
		ResponseRepo:   responseRepo,
		Events:         dispatcher,
	}
}

// Distribute fans the sheet out to the given teams: one assignment in
// 'assigned' status plus one response per entry. Teams that already
// have an assignment for the sheet are skipped, so calling this twice
// is safe. Only team-mutable fields live on responses; identity fields
// stay on the entry and are joined at read time.
func (s *DistributionService) Distribute(ctx context.Context, sheetID int, teamIDs []int, actorUserID int) (*models.DistributeResult, error) {
	if _, err := s.SheetRepo.Get(ctx, sheetID); errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.NotFoundError{Resource: "sheet", ID: sheetID}
	} else if err != nil {
		return nil, err
	}

	entryCount, err := s.SheetRepo.EntryCount(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	if entryCount == 0 {
		return nil, &models.DistributionError{SheetID: sheetID, Reason: "sheet has no entries"}
	}

	result := &models.DistributeResult{}
	for _, teamID := range teamIDs {
		if _, err := s.TeamRepo.Get(ctx, teamID); errors.Is(err, pgx.ErrNoRows) {
			return nil, &models.NotFoundError{Resource: "team", ID: teamID}
		} else if err != nil {
			return nil, err
		}

		assignmentID, created, err := s.AssignmentRepo.Create(ctx, sheetID, teamID, actorUserID)
		if err != nil {
			return nil, err
		}
		if !created {
			log.Printf("[Distribute] Sheet %d already assigned to team %d, skipping", sheetID, teamID)
			continue
		}
		result.AssignmentsCreated++

		n, err := s.ResponseRepo.CreateForAssignment(ctx, assignmentID, sheetID)
		if err != nil {
			return nil, err
		}
		result.ResponsesCreated += n

		s.Events.Emit(events.Event{
			Type:        events.TypeSheetDistributed,
			SheetID:     sheetID,
			TeamID:      teamID,
			ActorUserID: actorUserID,
		})
	}

	if result.AssignmentsCreated > 0 {
		metrics.SheetsDistributed.Inc()
	}
	return result, nil
}

// BackfillResponses creates response rows for entries added to the
// sheet after distribution, for every already-assigned team. Existing
// (assignment, entry) pairs are never duplicated.
func (s *DistributionService) BackfillResponses(ctx context.Context, sheetID int) (int, error) {
	if _, err := s.SheetRepo.Get(ctx, sheetID); errors.Is(err, pgx.ErrNoRows) {
		return 0, &models.NotFoundError{Resource: "sheet", ID: sheetID}
	} else if err != nil {
		return 0, err
	}

	n, err := s.ResponseRepo.BackfillForSheet(ctx, sheetID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("[Distribute] Backfilled %d response(s) for sheet %d", n, sheetID)
		cache.InvalidateSheet(ctx, sheetID)
	}
	return n, nil
}

// GetTeamView returns the assignment metadata plus the joined
// (response, entry) rows for one team. Served from Redis when cached.
func (s *DistributionService) GetTeamView(ctx context.Context, sheetID, teamID int) (*models.TeamView, error) {
	if data, ok := cache.GetTeamView(ctx, sheetID, teamID); ok {
		var view models.TeamView
		if err := json.Unmarshal(data, &view); err == nil {
			return &view, nil
		}
		// Corrupt cache entry; fall through to the database.
	}

	assignment, err := s.AssignmentRepo.GetBySheetAndTeam(ctx, sheetID, teamID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.NotFoundError{Resource: "assignment", ID: sheetID}
	}
	if err != nil {
		return nil, err
	}

	responses, err := s.ResponseRepo.ListTeamView(ctx, assignment.ID)
	if err != nil {
		return nil, err
	}
	if responses == nil {
		responses = []*models.TeamViewRow{}
	}

	view := &models.TeamView{Assignment: assignment, Responses: responses}
	if data, err := json.Marshal(view); err == nil {
		cache.SetTeamView(ctx, sheetID, teamID, data)
	}
	return view, nil
}
