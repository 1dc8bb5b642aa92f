package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jeffcwolf/klinscore/internal/platform"
)

// List limits.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Store is the SQL index of calculation records.
type Store struct {
	db     *sql.DB
	driver string
}

// NewStore wraps a migrated database. driver is "sqlite" or "postgres".
func NewStore(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

func (s *Store) rebind(query string) string {
	return platform.Rebind(s.driver, query)
}

// Insert adds a summary row.
func (s *Store) Insert(ctx context.Context, sum Summary) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO calculations (id, score_id, score_name, score_version, total, risk_level, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		sum.ID, sum.ScoreID, sum.ScoreName, sum.ScoreVersion, sum.Total, string(sum.RiskLevel), sum.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert calculation: %w", err)
	}
	return nil
}

// Get returns one summary. A missing row wraps ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Summary, error) {
	var sum Summary
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, score_id, score_name, score_version, total, risk_level, created_at
		 FROM calculations WHERE id = ?`), id,
	).Scan(&sum.ID, &sum.ScoreID, &sum.ScoreName, &sum.ScoreVersion, &sum.Total, &sum.RiskLevel, &sum.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get calculation: %w", err)
	}
	return &sum, nil
}

// List returns summaries newest first, optionally filtered by score.
// limit <= 0 means DefaultListLimit; it is capped at MaxListLimit.
func (s *Store) List(ctx context.Context, scoreID string, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	query := `SELECT id, score_id, score_name, score_version, total, risk_level, created_at FROM calculations`
	args := []any{}
	if scoreID != "" {
		query += ` WHERE score_id = ?`
		args = append(args, scoreID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list calculations: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.ScoreID, &sum.ScoreName, &sum.ScoreVersion, &sum.Total, &sum.RiskLevel, &sum.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan calculation: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
