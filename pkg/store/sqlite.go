package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"walksim/pkg/db"
	"walksim/pkg/model"
)

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Runs ---

const runColumns = `id, source, provider, speed_kmh, waypoints, distance_km, steps, state, error,
	started_at, finished_at, min_lat, min_lon, max_lat, max_lon`

func (s *SQLiteStore) SaveRun(ctx context.Context, r *model.RunRecord) error {
	if r.ID == "" {
		return errors.New("run record without id")
	}
	query := `INSERT OR REPLACE INTO runs (` + runColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.Source, r.Provider, r.SpeedKmh, r.Waypoints, r.DistanceKm, r.Steps, r.State, r.Error,
		formatTime(r.StartedAt), formatTime(r.FinishedAt),
		r.MinLat, r.MinLon, r.MaxLat, r.MaxLon)
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return r, err
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*model.RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*model.RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) PruneRuns(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.db.PruneRuns(olderThan)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*model.RunRecord, error) {
	var r model.RunRecord
	var source, provider, state, errText, started, finished sql.NullString
	var minLat, minLon, maxLat, maxLon sql.NullFloat64
	err := sc.Scan(&r.ID, &source, &provider, &r.SpeedKmh, &r.Waypoints, &r.DistanceKm, &r.Steps,
		&state, &errText, &started, &finished, &minLat, &minLon, &maxLat, &maxLon)
	if err != nil {
		return nil, err
	}
	r.Source = source.String
	r.Provider = provider.String
	r.State = state.String
	r.Error = errText.String
	r.StartedAt = parseTime(started.String)
	r.FinishedAt = parseTime(finished.String)
	r.MinLat, r.MinLon, r.MaxLat, r.MaxLon = minLat.Float64, minLon.Float64, maxLat.Float64, maxLon.Float64
	return &r, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(db.TimeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(db.TimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// --- State ---

func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, bool) {
	var val string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM persistent_state WHERE key = ?", key).Scan(&val)
	if err != nil {
		return "", false
	}
	return val, true
}

func (s *SQLiteStore) SetState(ctx context.Context, key, val string) error {
	query := `INSERT OR REPLACE INTO persistent_state (key, value, created_at) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, key, val, time.Now().UTC().Format(db.TimeLayout))
	return err
}

func (s *SQLiteStore) DeleteState(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM persistent_state WHERE key = ?", key)
	return err
}
