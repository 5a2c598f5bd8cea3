package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"jobfeed/internal/model"
)

// ErrNotFound is returned when a job ID does not exist.
var ErrNotFound = errors.New("job not found")

// Timestamps are stored as RFC 3339 UTC text; lexical comparison on that
// format is chronological, so eviction runs on plain string comparison.
const timeLayout = time.RFC3339

// SQLiteStore persists job records in a SQLite database.
type SQLiteStore struct {
	db    *sql.DB
	clock model.Clock
}

// Open opens (or creates) the database at dbPath and ensures the jobs table
// exists.
func Open(dbPath string, clock model.Clock) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// One writer: serializes concurrent batch runs at transaction granularity.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS jobs (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		company    TEXT NOT NULL,
		title      TEXT NOT NULL,
		location   TEXT NOT NULL DEFAULT '',
		url        TEXT NOT NULL UNIQUE,
		posted_at  TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'new',
		applied_at TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_jobs_posted_at ON jobs(posted_at);`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating jobs table: %w", err)
	}

	return &SQLiteStore{db: db, clock: clock}, nil
}

// InTx runs fn inside one transaction; it commits only if fn returns nil.
func (s *SQLiteStore) InTx(ctx context.Context, fn func(tx model.RecordTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	if err := fn(&recordTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing tx: %w", err)
	}
	return nil
}

type recordTx struct {
	tx *sql.Tx
}

func (t *recordTx) EvictBefore(cutoff time.Time) (int64, error) {
	res, err := t.tx.Exec(
		"DELETE FROM jobs WHERE posted_at < ?",
		cutoff.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting records before %v: %w", cutoff, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (t *recordTx) HasURL(url string) (bool, error) {
	var one int
	err := t.tx.QueryRow("SELECT 1 FROM jobs WHERE url = ?", url).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking url %s: %w", url, err)
	}
	return true, nil
}

func (t *recordTx) Insert(p model.Posting, createdAt time.Time) error {
	_, err := t.tx.Exec(
		`INSERT INTO jobs (company, title, location, url, posted_at, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Company,
		p.Title,
		p.Location,
		p.URL,
		p.PostedAt.UTC().Format(timeLayout),
		string(model.StatusNew),
		createdAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting job %s: %w", p.URL, err)
	}
	return nil
}

// ListOpts filters and paginates ListJobs. Zero values mean "no filter";
// Limit defaults to 100 and is capped at 1000.
type ListOpts struct {
	Company string
	Status  model.Status
	Limit   int
	Offset  int
}

// ListJobs returns stored records newest-first, filtered and paginated.
func (s *SQLiteStore) ListJobs(ctx context.Context, opts ListOpts) ([]model.JobRecord, error) {
	if opts.Limit <= 0 || opts.Limit > 1000 {
		opts.Limit = 100
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	query := `SELECT id, company, title, location, url, posted_at, status, applied_at, created_at
		FROM jobs`
	var (
		where []string
		args  []any
	)
	if opts.Company != "" {
		where = append(where, "company = ?")
		args = append(args, opts.Company)
	}
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(opts.Status))
	}
	for i, w := range where {
		if i == 0 {
			query += " WHERE " + w
		} else {
			query += " AND " + w
		}
	}
	query += " ORDER BY posted_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var out []model.JobRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	return out, nil
}

// GetJob returns one record by ID, or ErrNotFound.
func (s *SQLiteStore) GetJob(ctx context.Context, id int64) (model.JobRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company, title, location, url, posted_at, status, applied_at, created_at
		 FROM jobs WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return model.JobRecord{}, ErrNotFound
	}
	if err != nil {
		return model.JobRecord{}, err
	}
	return rec, nil
}

// UpdateStatus sets a record's workflow status. Transitioning to
// StatusApplied stamps applied_at with the store clock; any other status
// clears it. Ingestion never calls this, only the query layer does.
func (s *SQLiteStore) UpdateStatus(ctx context.Context, id int64, status model.Status) (model.JobRecord, error) {
	var appliedAt any
	if status == model.StatusApplied {
		appliedAt = s.clock.Now().UTC().Format(timeLayout)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE jobs SET status = ?, applied_at = ? WHERE id = ?",
		string(status), appliedAt, id,
	)
	if err != nil {
		return model.JobRecord{}, fmt.Errorf("updating status for job %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.JobRecord{}, ErrNotFound
	}
	return s.GetJob(ctx, id)
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (model.JobRecord, error) {
	var (
		rec       model.JobRecord
		status    string
		postedAt  string
		appliedAt sql.NullString
		createdAt string
	)
	if err := row.Scan(&rec.ID, &rec.Company, &rec.Title, &rec.Location, &rec.URL,
		&postedAt, &status, &appliedAt, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return model.JobRecord{}, err
		}
		return model.JobRecord{}, fmt.Errorf("scanning job row: %w", err)
	}

	rec.Status = model.Status(status)
	var err error
	if rec.PostedAt, err = time.Parse(timeLayout, postedAt); err != nil {
		return model.JobRecord{}, fmt.Errorf("parsing posted_at %q: %w", postedAt, err)
	}
	if rec.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return model.JobRecord{}, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	if appliedAt.Valid {
		t, err := time.Parse(timeLayout, appliedAt.String)
		if err != nil {
			return model.JobRecord{}, fmt.Errorf("parsing applied_at %q: %w", appliedAt.String, err)
		}
		rec.AppliedAt = &t
	}
	return rec, nil
}
