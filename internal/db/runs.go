package db

import (
	"context"
	"fmt"
	"time"
)

// Run records one refresh.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Forced     bool
	CacheHit   bool
	Repos      int
	Entries    int
	Warnings   string
}

// RecordRun inserts a refresh run.
func (d *DB) RecordRun(ctx context.Context, r Run) error {
	_, err := d.ExecContext(ctx, `INSERT INTO refresh_runs
		(id, started_at, finished_at, forced, cache_hit, repos, entries, warnings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.UTC(), r.FinishedAt.UTC(), boolInt(r.Forced), boolInt(r.CacheHit), r.Repos, r.Entries, r.Warnings)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", r.ID, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (d *DB) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := d.QueryContext(ctx, `SELECT id, started_at, finished_at, forced, cache_hit, repos, entries, warnings
		FROM refresh_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var forced, hit int
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &forced, &hit, &r.Repos, &r.Entries, &r.Warnings); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Forced, r.CacheHit = forced != 0, hit != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
