//go:build !windows && cgo

package production

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLitePersister stores Snapshots in a single SQLite table, keyed by
// chart id, each overwriting its prior row on Save. Gated the same way
// as agentflare-ai-agentml-go's memory/db.go (!windows && cgo), since
// mattn/go-sqlite3 requires cgo.
type SQLitePersister struct {
	db *sql.DB
}

// NewSQLitePersister opens (creating if necessary) a SQLite database at
// path and ensures the snapshots table exists.
func NewSQLitePersister(path string) (*SQLitePersister, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite3 %s: %w", path, err)
	}
	const schema = `CREATE TABLE IF NOT EXISTS snapshots (
		chart_id TEXT PRIMARY KEY,
		payload  TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create snapshots table: %w", err)
	}
	return &SQLitePersister{db: db}, nil
}

func (p *SQLitePersister) Save(ctx context.Context, snapshot Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO snapshots (chart_id, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(chart_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		snapshot.ChartID, string(data), snapshot.Timestamp)
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", snapshot.ChartID, err)
	}
	return nil
}

func (p *SQLitePersister) Load(ctx context.Context, chartID string) (Snapshot, error) {
	row := p.db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE chart_id = ?`, chartID)
	var payload string
	if err := row.Scan(&payload); err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot %q: %w", chartID, err)
	}
	var snapshot Snapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("json unmarshal: %w", err)
	}
	return snapshot, nil
}

// Close releases the underlying database handle.
func (p *SQLitePersister) Close() error {
	return p.db.Close()
}
