package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	_ "modernc.org/sqlite"
)

const busyTimeoutMs = 5000

// SQLite is a journal persisted to a SQLite database file. It is the
// source of truth for the CLI: ledger state is rebuilt by replaying it.
type SQLite struct {
	db     *sql.DB
	closed bool
}

// OpenSQLite opens (or creates) a journal database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		filepath.Clean(path), busyTimeoutMs)
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping journal db: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS records (
	seq       INTEGER PRIMARY KEY AUTOINCREMENT,
	id        TEXT    NOT NULL UNIQUE,
	ts        INTEGER NOT NULL,
	kind      TEXT    NOT NULL,
	addr_from TEXT    NOT NULL,
	addr_to   TEXT    NOT NULL,
	value     TEXT    NOT NULL
);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create journal schema: %w", err)
	}
	return nil
}

// Append persists records in one transaction and assigns their
// sequence numbers.
func (s *SQLite) Append(recs ...Record) error {
	if s.closed {
		return ErrClosed
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin journal tx: %w", err)
	}
	for _, r := range recs {
		_, err := tx.Exec(
			`INSERT INTO records (id, ts, kind, addr_from, addr_to, value) VALUES (?, ?, ?, ?, ?, ?)`,
			r.ID, r.Time.UnixNano(), r.Kind, r.From.Hex(), r.To.Hex(), r.Value.Hex(),
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append journal record: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit journal tx: %w", err)
	}
	return nil
}

// All returns every record in sequence order.
func (s *SQLite) All() ([]Record, error) {
	return s.scan(`SELECT seq, id, ts, kind, addr_from, addr_to, value FROM records ORDER BY seq`)
}

// After returns records with a sequence number strictly greater than seq,
// in sequence order. Used by the watch view to tail the trail.
func (s *SQLite) After(seq uint64) ([]Record, error) {
	return s.scan(
		`SELECT seq, id, ts, kind, addr_from, addr_to, value FROM records WHERE seq > ? ORDER BY seq`,
		seq,
	)
}

func (s *SQLite) scan(query string, args ...any) ([]Record, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r        Record
			ts       int64
			from, to string
			value    string
		)
		if err := rows.Scan(&r.Seq, &r.ID, &ts, &r.Kind, &from, &to, &value); err != nil {
			return nil, fmt.Errorf("scan journal record: %w", err)
		}
		r.Time = time.Unix(0, ts).UTC()
		r.From = common.HexToAddress(from)
		r.To = common.HexToAddress(to)
		v, err := uint256.FromHex(value)
		if err != nil {
			return nil, fmt.Errorf("parse record value %q: %w", value, err)
		}
		r.Value = v
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the underlying database connection.
func (s *SQLite) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
