// Package storage provides SQLite-based persistence for batch results.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/flapsim/internal/harness"
	"github.com/vovakirdan/flapsim/internal/policy"
)

// Store manages the SQLite database connection for batch history.
type Store struct {
	db *sql.DB
}

// BatchRecord is one stored batch.
type BatchRecord struct {
	ID        int64
	Policy    string
	Params    policy.Params
	Seed      int64
	Episodes  int
	MaxFrames int
	Mean      float64
	Best      int
	Failed    int
	Duration  time.Duration
	CreatedAt time.Time
}

// EpisodeRecord is one stored episode of a batch.
type EpisodeRecord struct {
	BatchID int64
	Index   int
	Seed    int64
	Score   int
	Frames  int
	Error   string // Empty if the episode completed
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS batches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			policy TEXT NOT NULL,
			w0 REAL NOT NULL,
			w1 REAL NOT NULL,
			w2 REAL NOT NULL,
			bias REAL NOT NULL,
			seed INTEGER NOT NULL,
			episodes INTEGER NOT NULL,
			max_frames INTEGER NOT NULL,
			mean REAL NOT NULL,
			best INTEGER NOT NULL,
			failed INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_batches_policy ON batches(policy);
		CREATE INDEX IF NOT EXISTS idx_batches_top ON batches(policy, mean DESC);

		CREATE TABLE IF NOT EXISTS episodes (
			batch_id INTEGER NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
			idx INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			score INTEGER NOT NULL,
			frames INTEGER NOT NULL,
			error TEXT,
			PRIMARY KEY (batch_id, idx)
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveBatch records a batch and all of its episodes in one transaction.
// Returns the ID of the inserted batch.
func (s *Store) SaveBatch(res harness.BatchResult) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	p := res.Params
	result, err := tx.Exec(
		`INSERT INTO batches
		 (policy, w0, w1, w2, bias, seed, episodes, max_frames, mean, best, failed, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.Policy, p[0], p[1], p[2], p[3],
		res.Seed, len(res.Episodes), res.MaxFrames,
		res.Mean, res.Best(), res.Failed, res.Duration.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save batch: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO episodes (batch_id, idx, seed, score, frames, error) VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot prepare episode insert: %w", err)
	}
	defer stmt.Close()

	for _, ep := range res.Episodes {
		var epErr sql.NullString
		if ep.Err != nil {
			epErr = sql.NullString{String: ep.Err.Error(), Valid: true}
		}
		if _, err := stmt.Exec(id, ep.Index, ep.Seed, ep.Score, ep.Frames, epErr); err != nil {
			return 0, fmt.Errorf("storage: cannot save episode %d: %w", ep.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit batch: %w", err)
	}
	return id, nil
}

const batchColumns = `id, policy, w0, w1, w2, bias, seed, episodes, max_frames,
	mean, best, failed, duration_ms, created_at`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanBatch(row scanner) (BatchRecord, error) {
	var b BatchRecord
	var durationMS int64
	var createdAt any
	err := row.Scan(
		&b.ID, &b.Policy,
		&b.Params[0], &b.Params[1], &b.Params[2], &b.Params[3],
		&b.Seed, &b.Episodes, &b.MaxFrames,
		&b.Mean, &b.Best, &b.Failed, &durationMS, &createdAt,
	)
	if err != nil {
		return b, err
	}
	b.Duration = time.Duration(durationMS) * time.Millisecond
	b.CreatedAt = parseTime(createdAt)
	return b, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// Batches retrieves the most recent batches, newest first.
// An empty policy name matches every policy.
func (s *Store) Batches(policyName string, limit int) ([]BatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+batchColumns+`
		 FROM batches
		 WHERE ? = '' OR policy = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		policyName, policyName, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query batches: %w", err)
	}
	defer rows.Close()

	var batches []BatchRecord
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		batches = append(batches, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return batches, nil
}

// BestBatch returns the batch with the highest mean for the policy.
// Returns nil if no batches exist.
func (s *Store) BestBatch(policyName string) (*BatchRecord, error) {
	b, err := scanBatch(s.db.QueryRow(
		`SELECT `+batchColumns+`
		 FROM batches
		 WHERE ? = '' OR policy = ?
		 ORDER BY mean DESC, id ASC
		 LIMIT 1`,
		policyName, policyName,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query best batch: %w", err)
	}
	return &b, nil
}

// EpisodeScores retrieves the episodes of a batch in index order.
func (s *Store) EpisodeScores(batchID int64) ([]EpisodeRecord, error) {
	rows, err := s.db.Query(
		`SELECT batch_id, idx, seed, score, frames, error
		 FROM episodes
		 WHERE batch_id = ?
		 ORDER BY idx`,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []EpisodeRecord
	for rows.Next() {
		var e EpisodeRecord
		var epErr sql.NullString
		if err := rows.Scan(&e.BatchID, &e.Index, &e.Seed, &e.Score, &e.Frames, &epErr); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.Error = epErr.String
		episodes = append(episodes, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return episodes, nil
}

// ClearBatches deletes all batches and episodes for the policy.
// An empty policy name clears everything.
func (s *Store) ClearBatches(policyName string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM episodes WHERE batch_id IN (SELECT id FROM batches WHERE ? = '' OR policy = ?)`,
		policyName, policyName,
	); err != nil {
		return fmt.Errorf("storage: cannot clear episodes: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM batches WHERE ? = '' OR policy = ?`, policyName, policyName); err != nil {
		return fmt.Errorf("storage: cannot clear batches: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit clear: %w", err)
	}
	return nil
}

// PolicyStats contains aggregated statistics for a policy.
type PolicyStats struct {
	Policy    string
	Batches   int
	Episodes  int
	BestMean  float64
	AvgMean   float64
	BestScore int
	LastRun   time.Time
}

// PolicyStats retrieves statistics for every policy that has stored batches.
func (s *Store) PolicyStats() (map[string]*PolicyStats, error) {
	rows, err := s.db.Query(
		`SELECT policy, COUNT(*), SUM(episodes), MAX(mean), AVG(mean), MAX(best), MAX(created_at)
		 FROM batches
		 GROUP BY policy`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get policy stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*PolicyStats)
	for rows.Next() {
		var ps PolicyStats
		var lastRun any
		if err := rows.Scan(&ps.Policy, &ps.Batches, &ps.Episodes, &ps.BestMean, &ps.AvgMean, &ps.BestScore, &lastRun); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		ps.LastRun = parseTime(lastRun)
		stats[ps.Policy] = &ps
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}
