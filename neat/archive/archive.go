// Package archive persists champion genomes in a SQLite database. It is a
// consumer of the population's champion notifications; the core never
// depends on it.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/YonatanGoncharov/neatevolve/neat"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed champion archive.
type Store struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// NewStore creates a store for the given database file. Call Init before
// first use.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Init opens the database and creates the schema. Calling Init on an
// already initialized store is a no-op.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS champions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			generation INTEGER NOT NULL,
			species_id INTEGER NOT NULL,
			fitness REAL NOT NULL,
			payload BLOB NOT NULL
		)
	`)
	if err != nil {
		_ = db.Close()
		return err
	}
	_, err = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_champions_fitness ON champions(fitness)`)
	if err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

// SaveChampion appends one champion record, with the genome stored as its
// JSON durable representation.
func (s *Store) SaveChampion(ctx context.Context, c neat.Champion) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(c.Genome)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO champions (generation, species_id, fitness, payload)
		VALUES (?, ?, ?, ?)
	`, c.Generation, c.SpeciesID, c.Fitness, payload)
	return err
}

// Best returns the highest-fitness champion on record. The second return
// value is false when the archive is empty.
func (s *Store) Best(ctx context.Context) (neat.Champion, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return neat.Champion{}, false, err
	}

	row := db.QueryRowContext(ctx, `
		SELECT generation, species_id, fitness, payload
		FROM champions
		ORDER BY fitness DESC, id DESC
		LIMIT 1
	`)
	c, err := scanChampion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return neat.Champion{}, false, nil
		}
		return neat.Champion{}, false, err
	}
	return c, true, nil
}

// Champions returns every champion on record, newest first.
func (s *Store) Champions(ctx context.Context) ([]neat.Champion, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT generation, species_id, fitness, payload
		FROM champions
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var champions []neat.Champion
	for rows.Next() {
		c, err := scanChampion(rows)
		if err != nil {
			return nil, err
		}
		champions = append(champions, c)
	}
	return champions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChampion(row rowScanner) (neat.Champion, error) {
	var c neat.Champion
	var payload []byte
	if err := row.Scan(&c.Generation, &c.SpeciesID, &c.Fitness, &payload); err != nil {
		return neat.Champion{}, err
	}

	genome := neat.NewGenome()
	if err := json.Unmarshal(payload, genome); err != nil {
		return neat.Champion{}, fmt.Errorf("decode champion genome: %w", err)
	}
	c.Genome = genome
	return c, nil
}
