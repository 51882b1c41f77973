// Package journal provides a replica FailureSink that records failures in SQLite.
//
// The journal is an operator-facing record of which backend missed which
// mutation. It does not replay or repair anything.
package journal

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/zoobzio/astql"
	astqlsqlite "github.com/zoobzio/astql/sqlite"
	"github.com/zoobzio/edamame"
	"github.com/zoobzio/replica"
	"github.com/zoobzio/sentinel"
	"github.com/zoobzio/soy"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

func init() {
	sentinel.Tag("db")
	sentinel.Tag("constraints")
}

// DriverName is the database/sql driver used by Open.
const DriverName = "sqlite"

// Table is the table failures are recorded in.
const Table = "replica_failures"

const keyCol = "id"

const schema = `CREATE TABLE IF NOT EXISTS replica_failures (
	id          TEXT PRIMARY KEY,
	op          TEXT NOT NULL,
	role        TEXT NOT NULL,
	object_key  TEXT NOT NULL,
	error       TEXT NOT NULL,
	reported_at INTEGER NOT NULL
)`

var (
	// Recent returns every recorded failure, newest first.
	Recent = edamame.NewQueryStatement("recent", "Failures newest first", edamame.QuerySpec{
		OrderBy: []edamame.OrderBySpec{
			{Field: "reported_at", Direction: "desc"},
		},
	})

	// CountAll counts recorded failures.
	CountAll = edamame.NewAggregateStatement("count", "Count recorded failures", edamame.AggCount, edamame.AggregateSpec{})
)

// Entry is a single recorded failure.
type Entry struct {
	ID         string
	Op         replica.Op
	Role       replica.Role
	Key        string
	Error      string
	ReportedAt time.Time
}

// Record is the stored row for a failure.
type Record struct {
	ID         string `db:"id" constraints:"primarykey"`
	Op         string `db:"op" constraints:"notnull"`
	Role       string `db:"role" constraints:"notnull"`
	Key        string `db:"object_key" constraints:"notnull"`
	Error      string `db:"error" constraints:"notnull"`
	ReportedAt int64  `db:"reported_at" constraints:"notnull"`
}

func (r *Record) entry() Entry {
	return Entry{
		ID:         r.ID,
		Op:         replica.Op(r.Op),
		Role:       replica.Role(r.Role),
		Key:        r.Key,
		Error:      r.Error,
		ReportedAt: time.Unix(0, r.ReportedAt).UTC(),
	}
}

// Journal implements replica.FailureSink backed by a SQL table.
type Journal struct {
	db       *sqlx.DB
	executor *edamame.Executor[Record]
	owned    bool
	now      func() time.Time
	dropped  atomic.Int64
}

// New creates a Journal on db, creating the failure table if needed.
// Queries are rendered for SQLite.
func New(ctx context.Context, db *sqlx.DB) (*Journal, error) {
	return NewWithRenderer(ctx, db, astqlsqlite.New())
}

// NewWithRenderer creates a Journal on db with a custom astql renderer.
// The failure table must be creatable by the schema in use, or already exist.
func NewWithRenderer(ctx context.Context, db *sqlx.DB, renderer astql.Renderer) (*Journal, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, err
	}
	exec, err := edamame.New[Record](db, Table, renderer)
	if err != nil {
		return nil, err
	}
	return &Journal{db: db, executor: exec, now: time.Now}, nil
}

// Open connects to the SQLite database at dsn and creates a Journal on it.
// The connection is closed by Close.
func Open(ctx context.Context, dsn string) (*Journal, error) {
	db, err := sqlx.ConnectContext(ctx, DriverName, dsn)
	if err != nil {
		return nil, err
	}
	// SQLite serialises writers; a single connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	j, err := New(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	j.owned = true
	return j, nil
}

// ReportCritical records failure. Insert errors are counted by Dropped and
// otherwise ignored.
//
// The insert is detached from ctx cancellation: a mutation that failed because
// its request was cancelled is still recorded.
func (j *Journal) ReportCritical(ctx context.Context, failure replica.Failure) {
	r := &Record{
		ID:         uuid.NewString(),
		Op:         string(failure.Op),
		Role:       string(failure.Role),
		Key:        failure.Key,
		ReportedAt: j.now().UnixNano(),
	}
	if failure.Err != nil {
		r.Error = failure.Err.Error()
	}
	if err := j.insert(context.WithoutCancel(ctx), r); err != nil {
		j.dropped.Add(1)
	}
}

func (j *Journal) insert(ctx context.Context, r *Record) error {
	s := j.executor.Soy()
	// InsertFull keeps the generated id in the INSERT.
	insert := s.InsertFull().OnConflict(keyCol).DoUpdate()
	for _, field := range s.Metadata().Fields {
		col := field.Tags["db"]
		if col == "" || col == "-" || col == keyCol {
			continue
		}
		insert = insert.Set(col, col)
	}
	_, err := insert.Build().Exec(ctx, r)
	return err
}

// Get returns the entry with the given id.
// Returns replica.ErrNotFound if no such entry was recorded.
func (j *Journal) Get(ctx context.Context, id string) (Entry, error) {
	r, err := j.executor.Soy().Select().
		Where(keyCol, "=", "id").
		Exec(ctx, map[string]any{"id": id})
	if err != nil {
		if errors.Is(err, soy.ErrNotFound) {
			return Entry{}, replica.ErrNotFound
		}
		return Entry{}, err
	}
	return r.entry(), nil
}

// List returns up to limit entries, newest first.
// Limit of 0 means no limit.
func (j *Journal) List(ctx context.Context, limit int) ([]Entry, error) {
	records, err := j.executor.ExecQuery(ctx, Recent, nil)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	entries := make([]Entry, len(records))
	for i, r := range records {
		entries[i] = r.entry()
	}
	return entries, nil
}

// Count returns the number of recorded failures.
func (j *Journal) Count(ctx context.Context) (int64, error) {
	n, err := j.executor.ExecAggregate(ctx, CountAll, nil)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}

// Executor returns the underlying edamame Executor for custom queries.
func (j *Journal) Executor() *edamame.Executor[Record] {
	return j.executor
}

// Dropped returns how many reports could not be recorded.
func (j *Journal) Dropped() int64 {
	return j.dropped.Load()
}

// Close closes the database if the Journal opened it.
func (j *Journal) Close() error {
	if !j.owned {
		return nil
	}
	return j.db.Close()
}

// Ensure Journal implements replica.FailureSink.
var _ replica.FailureSink = (*Journal)(nil)
