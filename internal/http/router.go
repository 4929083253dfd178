package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"advisory-backend/internal/handlers"
	"advisory-backend/internal/middleware"
)

func handlerFn(f func(http.ResponseWriter, *http.Request)) http.Handler {
	return http.HandlerFunc(f)
}

func NewRouter(
	authHandler *handlers.AuthHandler,
	sheetHandler *handlers.SheetHandler,
	distributionHandler *handlers.DistributionHandler,
	lockHandler *handlers.LockHandler,
	assignmentHandler *handlers.AssignmentHandler,
	trackingHandler *handlers.TrackingHandler,
	adminActionLogHandler *handlers.AdminActionLogHandler,
	reportHandler *handlers.ReportHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Health probes and Prometheus scrape endpoint
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Public API routes - Authentication
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected API routes - Users and teams
	meAPI := r.PathPrefix("/api/me").Subrouter()
	meAPI.Use(authMiddleware.Authenticate)
	meAPI.HandleFunc("", authHandler.Me).Methods("GET")

	teamsAPI := r.PathPrefix("/api/teams").Subrouter()
	teamsAPI.Use(authMiddleware.Authenticate)
	teamsAPI.HandleFunc("", authHandler.ListTeams).Methods("GET")

	// Protected API routes - Sheets and canonical entries
	sheetsAPI := r.PathPrefix("/api/sheets").Subrouter()
	sheetsAPI.Use(authMiddleware.Authenticate)
	sheetsAPI.HandleFunc("", sheetHandler.ListSheets).Methods("GET")
	sheetsAPI.Handle("", authMiddleware.RequireAdmin(
		handlerFn(sheetHandler.CreateSheet))).Methods("POST")
	sheetsAPI.HandleFunc("/{id}", sheetHandler.GetSheet).Methods("GET")
	sheetsAPI.HandleFunc("/{id}/entries", sheetHandler.ListEntries).Methods("GET")
	sheetsAPI.Handle("/{id}/entries/import", authMiddleware.RequireAdmin(
		handlerFn(sheetHandler.ImportDataset))).Methods("POST")
	sheetsAPI.Handle("/{id}/entries/{entryId}", authMiddleware.RequireAdmin(
		handlerFn(sheetHandler.DeleteEntry))).Methods("DELETE")

	// Distribution, team views and backfill
	sheetsAPI.Handle("/{id}/distribute", authMiddleware.RequireAdmin(
		handlerFn(distributionHandler.Distribute))).Methods("POST")
	sheetsAPI.Handle("/{id}/backfill", authMiddleware.RequireAdmin(
		handlerFn(distributionHandler.Backfill))).Methods("POST")
	sheetsAPI.HandleFunc("/{id}/teams/{teamId}/view", distributionHandler.TeamView).Methods("GET")

	// Assignment lifecycle
	sheetsAPI.HandleFunc("/{id}/submit", assignmentHandler.Submit).Methods("POST")
	sheetsAPI.Handle("/{id}/teams/{teamId}/unlock", authMiddleware.RequireAdmin(
		handlerFn(assignmentHandler.Unlock))).Methods("POST")
	sheetsAPI.HandleFunc("/{id}/teams/{teamId}/progress", assignmentHandler.Progress).Methods("GET")
	sheetsAPI.HandleFunc("/{id}/assignments", assignmentHandler.ListBySheet).Methods("GET")

	// Edit tracking
	sheetsAPI.HandleFunc("/{id}/tracking/me", trackingHandler.MyEditedEntries).Methods("GET")
	sheetsAPI.HandleFunc("/{id}/tracking/teams/{teamId}", trackingHandler.TeamEditedEntries).Methods("GET")
	sheetsAPI.Handle("/{id}/tracking/entries/{entryId}/reset", authMiddleware.RequireAdmin(
		handlerFn(trackingHandler.ResetTracking))).Methods("POST")

	// Reports
	sheetsAPI.HandleFunc("/{id}/report/summary.pdf", reportHandler.SheetSummaryPDF).Methods("GET")
	sheetsAPI.HandleFunc("/{id}/teams/{teamId}/export.csv", reportHandler.TeamViewCSV).Methods("GET")

	// Protected API routes - Entry locks and edits
	entriesAPI := r.PathPrefix("/api/entries").Subrouter()
	entriesAPI.Use(authMiddleware.Authenticate)
	entriesAPI.HandleFunc("/{id}/lock", lockHandler.Acquire).Methods("POST")
	entriesAPI.HandleFunc("/{id}/lock", lockHandler.Release).Methods("DELETE")
	entriesAPI.HandleFunc("/{id}/response", lockHandler.UpdateResponse).Methods("PATCH")
	entriesAPI.HandleFunc("/{id}/complete", lockHandler.Complete).Methods("POST")

	// Admin-only entry overrides
	r.Handle("/api/entries/{id}/force-release", authMiddleware.RequireAdmin(
		handlerFn(lockHandler.ForceRelease))).Methods("POST")
	r.Handle("/api/entries/{id}/reopen", authMiddleware.RequireAdmin(
		handlerFn(lockHandler.Reopen))).Methods("POST")

	// Admin audit log
	r.Handle("/api/admin/actions", authMiddleware.RequireAdmin(
		handlerFn(adminActionLogHandler.List))).Methods("GET")

	return r
}
