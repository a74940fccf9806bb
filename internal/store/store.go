// Package store handles SQLite persistence of attack runs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/vigenere/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			lang TEXT NOT NULL,
			max_len INTEGER NOT NULL,
			workers INTEGER NOT NULL,
			text_len INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_candidates (
			run_id INTEGER NOT NULL,
			rank INTEGER NOT NULL,
			score REAL NOT NULL,
			key TEXT NOT NULL,
			plaintext TEXT NOT NULL,
			PRIMARY KEY (run_id, rank)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ended_at ON runs(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a finished run and its ranked candidates.
func (s *Store) InsertRun(ctx context.Context, run model.RunRecord, candidates []model.Candidate) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, ended_at, mode, lang, max_len, workers, text_len, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt.Format(time.RFC3339Nano),
		run.EndedAt.Format(time.RFC3339Nano),
		run.Mode,
		run.Lang,
		run.MaxLen,
		run.Workers,
		run.TextLen,
		run.DurationMs,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(candidates) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO run_candidates (run_id, rank, score, key, plaintext) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, c := range candidates {
			if _, err := stmt.ExecContext(ctx, id, i+1, c.Score, c.Key, c.Text); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListRuns returns recorded runs, newest first, with their best candidate.
func (s *Store) ListRuns(ctx context.Context, filter model.HistoryFilter) ([]model.RunSummary, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Mode != "" {
		clauses = append(clauses, "r.mode = ?")
		args = append(args, filter.Mode)
	}
	limit := ""
	if filter.Last > 0 {
		limit = "LIMIT ?"
		args = append(args, filter.Last)
	}
	query := fmt.Sprintf(`SELECT r.id, r.ended_at, r.mode, r.lang, r.max_len, r.workers, r.text_len, r.duration_ms,
		COALESCE(b.key, ''), COALESCE(b.score, 0),
		(SELECT COUNT(*) FROM run_candidates c WHERE c.run_id = r.id)
		FROM runs r
		LEFT JOIN run_candidates b ON b.run_id = r.id AND b.rank = 1
		WHERE %s
		ORDER BY r.ended_at DESC, r.id DESC
		%s`, strings.Join(clauses, " AND "), limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunSummary
	for rows.Next() {
		var r model.RunSummary
		var endedAt string
		if err := rows.Scan(&r.RunID, &endedAt, &r.Mode, &r.Lang, &r.MaxLen, &r.Workers, &r.TextLen, &r.DurationMs,
			&r.BestKey, &r.BestScore, &r.Candidates); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		r.EndedAt = parsed
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// ListCandidates returns the ranked candidates of a run.
func (s *Store) ListCandidates(ctx context.Context, runID int64) ([]model.Candidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT score, key, plaintext FROM run_candidates WHERE run_id = ? ORDER BY rank ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.Candidate
	for rows.Next() {
		var c model.Candidate
		if err := rows.Scan(&c.Score, &c.Key, &c.Text); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
