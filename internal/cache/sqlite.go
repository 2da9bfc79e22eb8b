package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"RealizedBands/internal/model"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// keepSnapshots bounds the table; older rows are pruned on every save.
const keepSnapshots = 5

// SQLiteStore keeps snapshots in SQLite. The table is emptied on open so a
// file-backed database still only serves results from this process.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// each pooled connection to :memory: would see its own empty database
	db.SetMaxOpenConns(1)

	if !strings.Contains(dsn, "memory") {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite cache opened: %s", dsn)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id           TEXT PRIMARY KEY,
			created_at   INTEGER NOT NULL,
			record_count INTEGER NOT NULL,
			payload      BLOB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at)`,
		`DELETE FROM snapshots`,
	}
	for _, st := range stmts {
		if _, err := s.db.Exec(st); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(st), err)
		}
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) error {
	if snap == nil || snap.Response == nil {
		return errors.New("empty snapshot")
	}
	payload, err := json.Marshal(snap.Response)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, created_at, record_count, payload) VALUES (?,?,?,?)`,
		snap.ID, snap.CreatedAt.UnixMilli(), len(snap.Response.Data), payload,
	); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY created_at DESC LIMIT ?)`, keepSnapshots)
	return err
}

func (s *SQLiteStore) Latest(ctx context.Context, maxAge time.Duration) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge).UnixMilli()
	var (
		id        string
		createdAt int64
		payload   []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, payload FROM snapshots
		 WHERE created_at >= ? ORDER BY created_at DESC LIMIT 1`, cutoff,
	).Scan(&id, &createdAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}

	var resp model.ChartResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", id, err)
	}
	return &Snapshot{ID: id, CreatedAt: time.UnixMilli(createdAt), Response: &resp}, nil
}

// Count returns the number of stored snapshots.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&n)
	return n, err
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite cache")
	return s.db.Close()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
