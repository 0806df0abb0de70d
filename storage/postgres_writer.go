package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/CodePeacock/scraper/models"
)

// PostgresWriter mirrors every run's listings into PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id            SERIAL PRIMARY KEY,
			run_id        UUID         NOT NULL,
			locality      TEXT         NOT NULL,
			owner         TEXT         NOT NULL,
			price         TEXT         NOT NULL,
			property_name TEXT         NOT NULL,
			created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_run_id   ON listings(run_id);
		CREATE INDEX IF NOT EXISTS idx_listings_locality ON listings(locality);
	`)
	return err
}

// Write batch-inserts the run's listings, 50 rows per statement, in one
// transaction so a run is mirrored completely or not at all.
func (pw *PostgresWriter) Write(ctx context.Context, run *models.RunReport) error {
	if len(run.Listings) == 0 {
		return nil
	}

	tx, err := pw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	if err := insertAll(ctx, tx, run); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertAll(ctx context.Context, db execer, run *models.RunReport) error {
	const batchSize = 50
	for i := 0; i < len(run.Listings); i += batchSize {
		end := min(i+batchSize, len(run.Listings))
		query, args := insertBatch(run, run.Listings[i:end])
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("postgres: insert rows %d-%d: %w", i, end-1, err)
		}
	}
	return nil
}

func insertBatch(run *models.RunReport, batch []models.Listing) (string, []any) {
	const cols = 5
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*cols)

	for idx, l := range batch {
		base := idx * cols
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d)", base+1, base+2, base+3, base+4, base+5))
		valueArgs = append(valueArgs, run.RunID, run.Locality, l.Owner, l.Price, l.PropertyName)
	}

	query := fmt.Sprintf(`
		INSERT INTO listings (run_id, locality, owner, price, property_name)
		VALUES %s
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
