package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps worksheets in a local sqlite file. Each worksheet row is
// stored as a JSON array of cells; rowid order is submission order.
type SQLiteStore struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

func OpenSQLite(path string, log *zap.SugaredLogger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("OpenSQLite(): failed to open database: %w", err)
	}
	// :memory: databases are per connection
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("OpenSQLite(): failed to connect to database: %w", err)
	}

	createWorksheetsTable := `
	CREATE TABLE IF NOT EXISTS worksheets (
			"id" INTEGER PRIMARY KEY AUTOINCREMENT,
			"name" TEXT NOT NULL UNIQUE,
			"created_at" DATETIME NOT NULL
	);`
	createRowsTable := `
	CREATE TABLE IF NOT EXISTS worksheet_rows (
			"id" INTEGER PRIMARY KEY AUTOINCREMENT,
			"worksheet_id" INTEGER NOT NULL,
			"cells" TEXT NOT NULL,
			FOREIGN KEY(worksheet_id) REFERENCES worksheets(id)
	);`

	if _, err := db.Exec(createWorksheetsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("OpenSQLite(): failed to create worksheets table: %w", err)
	}
	if _, err := db.Exec(createRowsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("OpenSQLite(): failed to create worksheet_rows table: %w", err)
	}
	log.Infof("OpenSQLite(): opened %s", path)

	return &SQLiteStore{db: db, log: log}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) OpenTable(ctx context.Context, name string) (Handle, error) {
	var id int64
	row := s.db.QueryRowContext(ctx, "SELECT id FROM worksheets WHERE name = ?", name)
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Handle{}, ErrTableNotFound
		}
		return Handle{}, err
	}
	return Handle{Name: name, ID: id}, nil
}

func (s *SQLiteStore) CreateTable(ctx context.Context, name string, header []string) (Handle, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Handle{}, err
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRowContext(ctx, "SELECT id FROM worksheets WHERE name = ?", name).Scan(&existing)
	switch {
	case err == nil:
		return Handle{}, ErrTableExists
	case !errors.Is(err, sql.ErrNoRows):
		return Handle{}, err
	}

	res, err := tx.ExecContext(ctx, "INSERT INTO worksheets(name, created_at) VALUES(?, ?)", name, time.Now())
	if err != nil {
		return Handle{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Handle{}, err
	}
	if err := insertRow(ctx, tx, id, header); err != nil {
		return Handle{}, err
	}
	if err := tx.Commit(); err != nil {
		return Handle{}, err
	}
	s.log.Infof("SQLiteStore.CreateTable(): created worksheet %s (id %d)", name, id)
	return Handle{Name: name, ID: id}, nil
}

func (s *SQLiteStore) HeaderRow(ctx context.Context, h Handle) ([]string, error) {
	var raw string
	row := s.db.QueryRowContext(ctx, "SELECT cells FROM worksheet_rows WHERE worksheet_id = ? ORDER BY id LIMIT 1", h.ID)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	var cells []string
	if err := json.Unmarshal([]byte(raw), &cells); err != nil {
		return nil, fmt.Errorf("decode header of %s: %w", h.Name, err)
	}
	return cells, nil
}

func (s *SQLiteStore) AppendRow(ctx context.Context, h Handle, row []string) error {
	return insertRow(ctx, s.db, h.ID, row)
}

func (s *SQLiteStore) ReadTable(ctx context.Context, name string) ([][]string, error) {
	h, err := s.OpenTable(ctx, name)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT cells FROM worksheet_rows WHERE worksheet_id = ? ORDER BY id", h.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var table [][]string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, fmt.Errorf("decode row of %s: %w", name, err)
		}
		table = append(table, cells)
	}
	return table, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertRow(ctx context.Context, db execer, worksheetID int64, row []string) error {
	cells, err := json.Marshal(row)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, "INSERT INTO worksheet_rows(worksheet_id, cells) VALUES(?, ?)", worksheetID, string(cells))
	return err
}
