package services

import (
	"context"
	"errors"
	"strings"

	"advisory-backend/internal/models"
	"advisory-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
)

// datasetColumns maps the normalized spreadsheet headers handed over by
// the ingestion collaborator to entry fields. The mapping is fixed;
// anything outside it is ignored.
var datasetColumns = map[string]string{
	"vendor":       "vendor_name",
	"vendor name":  "vendor_name",
	"product":      "product_name",
	"product name": "product_name",
	"cve":          "cve_id",
	"cve id":       "cve_id",
	"risk":         "risk_level",
	"risk level":   "risk_level",
	"source":       "source",
	"advisory":     "advisory_ref",
	"advisory ref": "advisory_ref",
	"description":  "description",
}

// SheetService manages the sheet registry and the canonical entry
// store behind it.
type SheetService struct {
	SheetRepo *repositories.SheetRepository
	EntryRepo *repositories.EntryRepository
	Tracking  *TrackingService
}

func NewSheetService(sheetRepo *repositories.SheetRepository, entryRepo *repositories.EntryRepository, tracking *TrackingService) *SheetService {
	return &SheetService{
		SheetRepo: sheetRepo,
		EntryRepo: entryRepo,
		Tracking:  tracking,
	}
}

func (s *SheetService) CreateSheet(ctx context.Context, req *models.CreateSheetRequest, userID int) (*models.Sheet, error) {
	if req.Title == "" {
		return nil, &models.ValidationError{MissingFields: []string{"title"}}
	}
	if req.ReportingPeriod == "" {
		return nil, &models.ValidationError{MissingFields: []string{"reporting_period"}}
	}

	sheet := &models.Sheet{
		Title:            req.Title,
		ReportingPeriod:  req.ReportingPeriod,
		UploadedByUserID: userID,
	}
	if err := s.SheetRepo.Create(ctx, sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}

func (s *SheetService) GetSheet(ctx context.Context, id int) (*models.Sheet, error) {
	sheet, err := s.SheetRepo.Get(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.NotFoundError{Resource: "sheet", ID: id}
	}
	return sheet, err
}

func (s *SheetService) ListSheets(ctx context.Context) ([]*models.Sheet, error) {
	return s.SheetRepo.List(ctx)
}

// ImportDataset turns the parsed tabular payload into canonical
// entries for the sheet. Rows missing every mapped column are skipped
// rather than stored as empty findings.
func (s *SheetService) ImportDataset(ctx context.Context, sheetID int, dataset *models.ParsedDataset, userID int) ([]*models.Entry, error) {
	if _, err := s.GetSheet(ctx, sheetID); err != nil {
		return nil, err
	}
	if len(dataset.Rows) == 0 {
		return nil, &models.ValidationError{MissingFields: []string{"rows"}}
	}

	var entries []*models.Entry
	for _, row := range dataset.Rows {
		entry, ok := entryFromRow(sheetID, row)
		if !ok {
			continue
		}
		if err := s.EntryRepo.Create(ctx, entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// entryFromRow maps one parsed row onto an entry. Returns false when no
// recognized column carries a value.
func entryFromRow(sheetID int, row map[string]string) (*models.Entry, bool) {
	entry := &models.Entry{SheetID: sheetID}
	mapped := false
	for header, value := range row {
		field, ok := datasetColumns[strings.ToLower(strings.TrimSpace(header))]
		if !ok || value == "" {
			continue
		}
		mapped = true
		switch field {
		case "vendor_name":
			entry.VendorName = value
		case "product_name":
			entry.ProductName = value
		case "cve_id":
			entry.CVEID = value
		case "risk_level":
			entry.RiskLevel = strings.ToLower(value)
		case "source":
			entry.Source = value
		case "advisory_ref":
			entry.AdvisoryRef = value
		case "description":
			entry.Description = value
		}
	}
	return entry, mapped
}

func (s *SheetService) ListEntries(ctx context.Context, sheetID int) ([]*models.Entry, error) {
	if _, err := s.GetSheet(ctx, sheetID); err != nil {
		return nil, err
	}
	return s.EntryRepo.ListBySheet(ctx, sheetID)
}

func (s *SheetService) GetEntry(ctx context.Context, id int) (*models.Entry, error) {
	entry, err := s.EntryRepo.Get(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.NotFoundError{Resource: "entry", ID: id}
	}
	return entry, err
}

// DeleteEntry removes an entry and cascades its tracking records.
func (s *SheetService) DeleteEntry(ctx context.Context, entryID int) error {
	entry, err := s.GetEntry(ctx, entryID)
	if err != nil {
		return err
	}
	// Explicit tracking removal ahead of the FK cascade so the ledger
	// contract holds even if the schema loses the cascade.
	if err := s.Tracking.RemoveTracking(ctx, entry.SheetID, entryID); err != nil {
		return err
	}
	deleted, err := s.EntryRepo.Delete(ctx, entryID)
	if err != nil {
		return err
	}
	if !deleted {
		return &models.NotFoundError{Resource: "entry", ID: entryID}
	}
	return nil
}
