// Package store handles SQLite persistence of score records.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/rotaenot/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for score records.
type Store struct {
	db *sql.DB
}

// RecordFilter narrows ListRecords. Zero values match everything.
type RecordFilter struct {
	SongID string
	Since  *time.Time
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
		`CREATE TABLE IF NOT EXISTS score_records (
			id INTEGER PRIMARY KEY,
			session_id TEXT NOT NULL UNIQUE,
			song_id TEXT NOT NULL,
			difficulty INTEGER NOT NULL,
			rating REAL NOT NULL,
			played_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_score_records_song_id ON score_records(song_id);`,
		`CREATE INDEX IF NOT EXISTS idx_score_records_played_at ON score_records(played_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRecord stores the score record of a finished session.
func (s *Store) InsertRecord(ctx context.Context, sessionID uuid.UUID, rec model.ScoreRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO score_records (session_id, song_id, difficulty, rating, played_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sessionID.String(),
		rec.SongID,
		rec.Difficulty,
		rec.Rating,
		rec.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert score record: %w", err)
	}
	return res.LastInsertId()
}

// ListRecords returns stored records in insertion order.
func (s *Store) ListRecords(ctx context.Context, filter RecordFilter) ([]model.ScoreRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.SongID != "" {
		clauses = append(clauses, "song_id = ?")
		args = append(args, filter.SongID)
	}
	if filter.Since != nil {
		clauses = append(clauses, "played_at >= ?")
		args = append(args, filter.Since.UTC().Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT song_id, difficulty, rating, played_at
		FROM score_records
		WHERE %s
		ORDER BY id ASC`, strings.Join(clauses, " AND "))
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

	var records []model.ScoreRecord
	for rows.Next() {
		var rec model.ScoreRecord
		var playedAt string
		if err := rows.Scan(&rec.SongID, &rec.Difficulty, &rec.Rating, &playedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, playedAt)
		if err != nil {
			return nil, err
		}
		rec.Timestamp = parsed
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
