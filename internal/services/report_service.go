package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"advisory-backend/internal/models"
	"advisory-backend/internal/repositories"
	"advisory-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
)

// SheetSummaryData holds everything the sheet-level remediation report needs.
type SheetSummaryData struct {
	Sheet *models.Sheet
	Teams []*TeamSummary
}

type TeamSummary struct {
	Team     *models.Team
	Progress *models.AssignmentProgress
}

type ReportService struct {
	SheetRepo      *repositories.SheetRepository
	TeamRepo       *repositories.TeamRepository
	AssignmentRepo *repositories.AssignmentRepository
	ResponseRepo   *repositories.ResponseRepository
	Assignments    *AssignmentService
	Distribution   *DistributionService
}

func NewReportService(
	sheetRepo *repositories.SheetRepository,
	teamRepo *repositories.TeamRepository,
	assignmentRepo *repositories.AssignmentRepository,
	responseRepo *repositories.ResponseRepository,
	assignments *AssignmentService,
	distribution *DistributionService,
) *ReportService {
	return &ReportService{
		SheetRepo:      sheetRepo,
		TeamRepo:       teamRepo,
		AssignmentRepo: assignmentRepo,
		ResponseRepo:   responseRepo,
		Assignments:    assignments,
		Distribution:   distribution,
	}
}

func (s *ReportService) GetSheetSummaryData(ctx context.Context, sheetID int) (*SheetSummaryData, error) {
	sheet, err := s.SheetRepo.Get(ctx, sheetID)
	if err != nil {
		return nil, &models.NotFoundError{Resource: "sheet", ID: sheetID}
	}

	assignments, err := s.AssignmentRepo.ListBySheet(ctx, sheetID)
	if err != nil {
		return nil, err
	}

	data := &SheetSummaryData{Sheet: sheet}
	for _, a := range assignments {
		team, err := s.TeamRepo.Get(ctx, a.TeamID)
		if err != nil {
			return nil, err
		}
		progress, err := s.Assignments.Progress(ctx, sheetID, a.TeamID)
		if err != nil {
			return nil, err
		}
		data.Teams = append(data.Teams, &TeamSummary{Team: team, Progress: progress})
	}
	return data, nil
}

// GenerateSheetSummaryPDF renders the per-team remediation progress for
// one sheet.
func (s *ReportService) GenerateSheetSummaryPDF(data *SheetSummaryData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Advisory Remediation - Sheet Summary", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Sheet Info Box
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Sheet Information", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Title: %s", data.Sheet.Title), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Period: %s", data.Sheet.ReportingPeriod), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Entries: %d", data.Sheet.EntryCount), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Teams: %d", len(data.Teams)), "RB", 1, "L", false, 0, "")
	pdf.Ln(5)

	// Team Progress Table
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Team Progress", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 7, "Team", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Status", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Total", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Done", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Percent", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, t := range data.Teams {
		pdf.CellFormat(60, 6, t.Team.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, t.Progress.Status, "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", t.Progress.Total), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", t.Progress.Done), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.1f%%", t.Progress.PercentDone), "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateTeamViewCSV exports a team's worksheet as CSV, one row per
// response joined with the canonical entry fields.
func (s *ReportService) GenerateTeamViewCSV(ctx context.Context, sheetID, teamID int) ([]byte, error) {
	view, err := s.Distribution.GetTeamView(ctx, sheetID, teamID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	// Header
	w.Write([]string{
		"#", "Vendor", "Product", "CVE", "Risk", "Source",
		"Current Status", "Deployed in KE", "Site", "Vendor Contacted",
		"Vendor Contact Date", "Vendor Response", "Compensatory Controls",
		"Target Date", "Comments", "Completed",
	})

	// Data rows
	for i, row := range view.Responses {
		contactDate := ""
		if row.VendorContactDate != nil {
			contactDate = row.VendorContactDate.Format("02-Jan-2006")
		}
		targetDate := ""
		if row.TargetDate != nil {
			targetDate = row.TargetDate.Format("02-Jan-2006")
		}
		completed := "NO"
		if row.IsCompleted {
			completed = "YES"
		}
		w.Write([]string{
			fmt.Sprintf("%d", i+1),
			row.VendorName,
			row.ProductName,
			row.CVEID,
			row.RiskLevel,
			row.Source,
			row.CurrentStatus,
			row.DeployedInKE,
			row.Site,
			row.VendorContacted,
			contactDate,
			row.VendorResponse,
			row.CompensatoryControlsProvided,
			targetDate,
			row.Comments,
			completed,
		})
	}

	w.Flush()
	return buf.Bytes(), nil
}
