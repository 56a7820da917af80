package submission

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

// Schema creates the submissions table.
const Schema = `
CREATE TABLE IF NOT EXISTS submissions (
	id                 UUID PRIMARY KEY,
	kind               TEXT NOT NULL,
	site_url           TEXT NOT NULL,
	cloud_id           TEXT NOT NULL,
	outcome            TEXT NOT NULL,
	error_kind         TEXT,
	status_code        INTEGER,
	message            TEXT,
	accepted           INTEGER NOT NULL DEFAULT 0,
	rejected           INTEGER NOT NULL DEFAULT 0,
	unknown_issue_keys TEXT[] NOT NULL DEFAULT '{}',
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS submissions_created_at_idx ON submissions (created_at DESC);
`

const insertSubmission = `
INSERT INTO submissions (
	id, kind, site_url, cloud_id, outcome, error_kind, status_code, message,
	accepted, rejected, unknown_issue_keys, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

const listRecentSubmissions = `
SELECT id, kind, site_url, cloud_id, outcome, error_kind, status_code, message,
	accepted, rejected, unknown_issue_keys, created_at
FROM submissions
ORDER BY created_at DESC
LIMIT $1`

// Store persists submission records.
type Store interface {
	SaveRecord(ctx context.Context, r Record) error
	ListRecent(ctx context.Context, limit int) ([]Record, error)
}

// Querier is the subset of the postgres DB wrapper used by PostgresStore.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore keeps submission history in Postgres.
type PostgresStore struct {
	db     Querier
	logger *zap.Logger
}

// NewPostgresStore creates a new postgres-backed store
func NewPostgresStore(db Querier, logger *zap.Logger) *PostgresStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStore{
		db:     db,
		logger: logger,
	}
}

// InitSchema creates the submissions table if it does not exist.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to initialize submissions schema: %w", err)
	}
	return nil
}

// SaveRecord inserts r.
func (s *PostgresStore) SaveRecord(ctx context.Context, r Record) error {
	keys := r.UnknownIssueKeys
	if keys == nil {
		keys = []string{}
	}

	_, err := s.db.Exec(ctx, insertSubmission,
		r.ID,
		r.Kind,
		r.SiteURL,
		r.CloudID,
		r.Outcome,
		pgtype.Text{String: r.ErrorKind, Valid: r.ErrorKind != ""},
		pgtype.Int4{Int32: int32(r.StatusCode), Valid: r.StatusCode != 0},
		pgtype.Text{String: r.Message, Valid: r.Message != ""},
		int32(r.Accepted),
		int32(r.Rejected),
		keys,
		pgtype.Timestamptz{Time: r.CreatedAt, Valid: !r.CreatedAt.IsZero()},
	)
	if err != nil {
		s.logger.Error("Failed to save submission record",
			zap.String("submission_id", r.ID.String()),
			zap.String("site_url", r.SiteURL),
			zap.Error(err))
		return fmt.Errorf("failed to save submission %s: %w", r.ID, err)
	}

	s.logger.Debug("Saved submission record", zap.String("submission_id", r.ID.String()))
	return nil
}

// ListRecent returns up to limit records, newest first.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(ctx, listRecentSubmissions, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r          Record
			errorKind  pgtype.Text
			statusCode pgtype.Int4
			message    pgtype.Text
			accepted   int32
			rejected   int32
			createdAt  pgtype.Timestamptz
		)
		if err := rows.Scan(
			&r.ID, &r.Kind, &r.SiteURL, &r.CloudID, &r.Outcome,
			&errorKind, &statusCode, &message,
			&accepted, &rejected, &r.UnknownIssueKeys, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		r.ErrorKind = errorKind.String
		r.StatusCode = int(statusCode.Int32)
		r.Message = message.String
		r.Accepted = int(accepted)
		r.Rejected = int(rejected)
		r.CreatedAt = createdAt.Time
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}

	return records, nil
}

// NopStore discards records. It is used when history recording is disabled.
type NopStore struct{}

func (NopStore) SaveRecord(context.Context, Record) error { return nil }

func (NopStore) ListRecent(context.Context, int) ([]Record, error) { return nil, nil }

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = NopStore{}
)
