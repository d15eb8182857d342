// Package sqlite stores index ledgers in a SQLite database.
//
// Every series is a set of rows (series, position, month, body) where body is the JSON record,
// so records keep their fields and field order exactly as in a file ledger.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/indices"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS records (
	series   TEXT    NOT NULL,
	position INTEGER NOT NULL,
	month    TEXT    NOT NULL,
	body     TEXT    NOT NULL,
	PRIMARY KEY (series, position)
)`

// Store is a SQLite database holding ledgers.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens, and creates if needed, the database at path.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Series returns the names of the series in the store, sorted.
func (s *Store) Series(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT series FROM records ORDER BY series`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Ledger returns the ledger of a series. monthKey is the field holding the month of a record.
func (s *Store) Ledger(series, monthKey string) *Ledger {
	return &Ledger{store: s, series: series, monthKey: monthKey}
}

// Ledger is an indices.Ledger stored in a Store.
type Ledger struct {
	store    *Store
	series   string
	monthKey string
}

func (l *Ledger) String() string { return "sqlite:" + l.series }

// ReadAll implements indices.Ledger.
func (l *Ledger) ReadAll(ctx context.Context) ([]*indices.Record, error) {
	rows, err := l.store.db.QueryContext(ctx, `SELECT body FROM records WHERE series = ? ORDER BY position`, l.series)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.series, err)
	}
	defer rows.Close()

	var records []*indices.Record
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		rec := new(indices.Record)
		if err := rec.UnmarshalJSON([]byte(body)); err != nil {
			return nil, fmt.Errorf("read %s: record #%d: %w", l.series, len(records), err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// WriteAll implements indices.Ledger. The series is replaced in a single transaction.
func (l *Ledger) WriteAll(ctx context.Context, records []*indices.Record) (err error) {
	tx, err := l.store.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM records WHERE series = ?`, l.series); err != nil {
		return fmt.Errorf("write %s: %w", l.series, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (series, position, month, body) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("write %s: %w", l.series, err)
	}
	defer stmt.Close()

	for i, rec := range records {
		body, err := rec.MarshalJSON()
		if err != nil {
			return fmt.Errorf("write %s: record #%d: %w", l.series, i, err)
		}
		month := rec.Value(l.monthKey).String()
		if _, err := stmt.ExecContext(ctx, l.series, i, month, string(body)); err != nil {
			return fmt.Errorf("write %s: record #%d: %w", l.series, i, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	l.store.logger.Debug("ledger written", zap.String("series", l.series), zap.Int("records", len(records)))
	return nil
}

// Import copies the records of a ledger into the series, replacing it.
func (l *Ledger) Import(ctx context.Context, from indices.Ledger) (int, error) {
	records, err := from.ReadAll(ctx)
	if err != nil {
		return 0, err
	}
	if _, err := indices.NewSeries(l.monthKey, records); err != nil {
		return 0, fmt.Errorf("import %s: %w", l.series, err)
	}
	return len(records), l.WriteAll(ctx, records)
}
