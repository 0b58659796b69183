package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS reports (
	id            TEXT PRIMARY KEY,
	type          TEXT NOT NULL,
	label         TEXT NOT NULL,
	latitude      REAL NOT NULL,
	longitude     REAL NOT NULL,
	details       TEXT,
	timestamp     INTEGER NOT NULL,
	confirmations INTEGER NOT NULL DEFAULT 1,
	denials       INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS accessibility_submissions (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	location_name TEXT,
	latitude      REAL NOT NULL,
	longitude     REAL NOT NULL,
	issue_type    TEXT NOT NULL,
	description   TEXT,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_reports_type ON reports(type);
CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON reports(timestamp);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateReport(ctx context.Context, r Report) (*Report, error) {
	r.ID = uuid.New().String()
	if r.Timestamp == 0 {
		r.Timestamp = time.Now().Unix()
	}
	if r.Confirmations == 0 {
		r.Confirmations = 1
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (id, type, label, latitude, longitude, details, timestamp, confirmations, denials)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Type, r.Label, r.Latitude, r.Longitude, r.Details, r.Timestamp, r.Confirmations, r.Denials,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert report")
	}
	return &r, nil
}

func (s *SQLiteStore) ListReports(ctx context.Context) ([]Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, label, latitude, longitude, COALESCE(details, ''), timestamp, confirmations, denials
		 FROM reports ORDER BY timestamp DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list reports")
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var r Report
		if err := rows.Scan(&r.ID, &r.Type, &r.Label, &r.Latitude, &r.Longitude, &r.Details, &r.Timestamp, &r.Confirmations, &r.Denials); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan report")
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate reports")
	}
	return reports, nil
}

func (s *SQLiteStore) ConfirmReport(ctx context.Context, id string) (*Report, error) {
	return s.bump(ctx, id, "confirmations")
}

func (s *SQLiteStore) DenyReport(ctx context.Context, id string) (*Report, error) {
	return s.bump(ctx, id, "denials")
}

// bump increments a counter column and returns the updated report. The
// column name is fixed by the two callers, never user input.
func (s *SQLiteStore) bump(ctx context.Context, id, column string) (*Report, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE reports SET `+column+` = `+column+` + 1 WHERE id = ?`, id)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: bump %s", column)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return nil, eris.Errorf("sqlite: report %s not found", id)
	}

	var r Report
	err = s.db.QueryRowContext(ctx,
		`SELECT id, type, label, latitude, longitude, COALESCE(details, ''), timestamp, confirmations, denials
		 FROM reports WHERE id = ?`, id,
	).Scan(&r.ID, &r.Type, &r.Label, &r.Latitude, &r.Longitude, &r.Details, &r.Timestamp, &r.Confirmations, &r.Denials)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: reload report %s", id)
	}
	return &r, nil
}

func (s *SQLiteStore) CreateAccessibility(ctx context.Context, sub AccessibilitySubmission) (*AccessibilitySubmission, error) {
	sub.CreatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO accessibility_submissions (location_name, latitude, longitude, issue_type, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sub.LocationName, sub.Latitude, sub.Longitude, sub.IssueType, sub.Description, sub.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert accessibility submission")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: last insert id")
	}
	sub.ID = id
	return &sub, nil
}

func (s *SQLiteStore) ListAccessibility(ctx context.Context) ([]AccessibilitySubmission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, COALESCE(location_name, ''), latitude, longitude, issue_type, COALESCE(description, ''), created_at
		 FROM accessibility_submissions ORDER BY created_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list accessibility submissions")
	}
	defer rows.Close()

	var subs []AccessibilitySubmission
	for rows.Next() {
		var sub AccessibilitySubmission
		if err := rows.Scan(&sub.ID, &sub.LocationName, &sub.Latitude, &sub.Longitude, &sub.IssueType, &sub.Description, &sub.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan accessibility submission")
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate accessibility submissions")
	}
	return subs, nil
}
