package database

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ResponseColumn describes one team-mutable column of the responses
// table and the default it carries when backfilled.
type ResponseColumn struct {
	Name       string
	Definition string // column type + DEFAULT clause
}

// responseColumns is the authoritative whitelist of team-mutable
// response fields. New fields introduced after assignments already
// exist get added here and picked up by ReconcileResponseSchema on the
// next deploy.
var responseColumns = []ResponseColumn{
	{"current_status", "VARCHAR(50) NOT NULL DEFAULT ''"},
	{"deployed_in_ke", "VARCHAR(1) NOT NULL DEFAULT ''"},
	{"site", "VARCHAR(255) NOT NULL DEFAULT ''"},
	{"vendor_contacted", "VARCHAR(1) NOT NULL DEFAULT ''"},
	{"vendor_contact_date", "TIMESTAMPTZ"},
	{"vendor_response", "TEXT NOT NULL DEFAULT ''"},
	{"compensatory_controls_provided", "TEXT NOT NULL DEFAULT ''"},
	{"target_date", "TIMESTAMPTZ"},
	{"comments", "TEXT NOT NULL DEFAULT ''"},
}

// Reconciler brings the responses table in line with the column
// whitelist after the schema has evolved. It is additive only: it adds
// missing columns with their defaults and never rewrites rows that
// already carry a non-default value.
type Reconciler struct {
	pool *pgxpool.Pool
}

func NewReconciler(pool *pgxpool.Pool) *Reconciler {
	return &Reconciler{pool: pool}
}

// ReconcileResponseSchema is an explicit, idempotent administrative
// operation invoked at deploy time, never during request handling.
func (r *Reconciler) ReconcileResponseSchema(ctx context.Context) error {
	existing, err := r.existingColumns(ctx)
	if err != nil {
		return fmt.Errorf("failed to inspect responses schema: %w", err)
	}

	added := 0
	for _, col := range responseColumns {
		if existing[col.Name] {
			continue
		}
		log.Printf("[Reconcile] Adding responses.%s", col.Name)
		query := fmt.Sprintf("ALTER TABLE responses ADD COLUMN IF NOT EXISTS %s %s", col.Name, col.Definition)
		if _, err := r.pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to add column %s: %w", col.Name, err)
		}
		added++
	}

	if added > 0 {
		log.Printf("[Reconcile] Added %d missing response column(s)", added)
	} else {
		log.Println("[Reconcile] Response schema is up to date")
	}
	return nil
}

func (r *Reconciler) existingColumns(ctx context.Context) (map[string]bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_name = 'responses'
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}
