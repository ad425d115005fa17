package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/JoeShih716/go-ledger-core/internal/app/core/usecase"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS ledger_snapshots (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(128) NOT NULL,
	data BYTEA NOT NULL,
	size INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	createIndexSQL = `CREATE INDEX IF NOT EXISTS idx_ledger_snapshots_name ON ledger_snapshots (name, id DESC)`
	insertSQL      = `INSERT INTO ledger_snapshots (name, data, size) VALUES ($1, $2, $3)`
	selectSQL      = `SELECT data FROM ledger_snapshots WHERE name = $1 ORDER BY id DESC LIMIT 1`
)

// SnapshotStore 把帳本快照存進 Postgres，同名快照保留歷史，讀取最新一筆
type SnapshotStore struct {
	db *sql.DB
}

// Open 以 DSN 連線並確認資料庫可用
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Migrate 建立 ledger_snapshots 表
func (s *SnapshotStore) Migrate(ctx context.Context) error {
	for _, stmt := range []string{createTableSQL, createIndexSQL} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate ledger_snapshots: %w", err)
		}
	}
	return nil
}

// Save 新增一筆快照
func (s *SnapshotStore) Save(ctx context.Context, key string, data []byte) error {
	if _, err := s.db.ExecContext(ctx, insertSQL, key, data, len(data)); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// Load 讀取最新的快照
func (s *SnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, selectSQL, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, usecase.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select snapshot: %w", err)
	}
	return data, nil
}

var _ usecase.SnapshotStore = (*SnapshotStore)(nil)
