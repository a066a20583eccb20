// Package progress persists cross-universe player state: collected clue
// indices, score, and visit counts. Nothing here is reset by universe
// generation; rows survive server restarts.
package progress

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database with a single writer goroutine so pickup
// writes never block the simulation tick.
type Store struct {
	db *sql.DB

	// mu orders enqueues against Close: the channel is only closed while no
	// sender holds the lock, so a pickup racing shutdown can never send on a
	// closed channel.
	mu     sync.Mutex
	ch     chan req
	closed bool

	wg   sync.WaitGroup
	once sync.Once
}

type reqKind int

const (
	reqClue reqKind = iota + 1
	reqScore
	reqVisit
)

type req struct {
	kind         reqKind
	seed         string
	clueIndex    int
	scoreDelta   int
	universeKind string
}

// Open creates the database file (and parent directory) if needed and
// prepares the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("progress store: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("progress store: %w", err)
	}
	if err := prepareSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{
		db: db,
		ch: make(chan req, 64),
	}
	s.wg.Add(1)
	go s.writer()
	return s, nil
}

func prepareSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS clues (
	seed TEXT NOT NULL,
	clue_index INTEGER NOT NULL,
	PRIMARY KEY (seed, clue_index)
);
CREATE TABLE IF NOT EXISTS score (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	total INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS visits (
	universe_kind TEXT PRIMARY KEY,
	count INTEGER NOT NULL DEFAULT 0
);
INSERT OR IGNORE INTO score (id, total) VALUES (1, 0);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("progress store: schema: %w", err)
	}
	return nil
}

func (s *Store) writer() {
	defer s.wg.Done()
	for r := range s.ch {
		s.apply(r)
	}
}

func (s *Store) apply(r req) {
	switch r.kind {
	case reqClue:
		s.db.Exec(`INSERT OR IGNORE INTO clues (seed, clue_index) VALUES (?, ?)`, r.seed, r.clueIndex)
	case reqScore:
		s.db.Exec(`UPDATE score SET total = total + ? WHERE id = 1`, r.scoreDelta)
	case reqVisit:
		s.db.Exec(`INSERT INTO visits (universe_kind, count) VALUES (?, 1)
			ON CONFLICT(universe_kind) DO UPDATE SET count = count + 1`, r.universeKind)
	}
}

func (s *Store) enqueue(r req) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- r:
	default:
		// Writer is backlogged; apply inline rather than lose the record.
		s.apply(r)
	}
}

// RecordClue marks a clue index collected for the given world seed.
func (s *Store) RecordClue(seed string, clueIndex int) {
	s.enqueue(req{kind: reqClue, seed: seed, clueIndex: clueIndex})
}

// AddScore adds delta to the running total.
func (s *Store) AddScore(delta int) {
	s.enqueue(req{kind: reqScore, scoreDelta: delta})
}

// RecordVisit increments the visit counter for a universe kind.
func (s *Store) RecordVisit(universeKind string) {
	s.enqueue(req{kind: reqVisit, universeKind: universeKind})
}

// Clues returns the collected clue indices for a seed, sorted ascending.
func (s *Store) Clues(ctx context.Context, seed string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT clue_index FROM clues WHERE seed = ? ORDER BY clue_index`, seed)
	if err != nil {
		return nil, fmt.Errorf("progress store: %w", err)
	}
	defer rows.Close()

	var indices []int
	for rows.Next() {
		var idx int
		if err := rows.Scan(&idx); err != nil {
			return nil, fmt.Errorf("progress store: %w", err)
		}
		indices = append(indices, idx)
	}
	return indices, rows.Err()
}

// Score returns the running score total.
func (s *Store) Score(ctx context.Context) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `SELECT total FROM score WHERE id = 1`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("progress store: %w", err)
	}
	return total, nil
}

// Visits returns the visit count for a universe kind.
func (s *Store) Visits(ctx context.Context, universeKind string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT count FROM visits WHERE universe_kind = ?`, universeKind).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("progress store: %w", err)
	}
	return count, nil
}

// Close drains pending writes and closes the database.
func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}
