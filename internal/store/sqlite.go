package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/gauntlet/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns
// a Store. Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// --- Run catalog ---

func (s *SQLiteStore) CreateRun(ctx context.Context, run *model.Run) error {
	s.logger.Debug("sql", "op", "insert", "table", "runs", "id", run.ID)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, name, workers, seed, state, op_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Name, run.Workers, run.Seed, string(run.State),
		run.OpCount, run.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	s.logger.Debug("sql", "op", "select", "table", "runs", "id", id)

	run, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT id, name, workers, seed, state, op_count, created_at, completed_at
		 FROM runs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

func (s *SQLiteStore) ListRuns(ctx context.Context) ([]*model.Run, error) {
	s.logger.Debug("sql", "op", "list", "table", "runs")

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, workers, seed, state, op_count, created_at, completed_at
		 FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) FinishRun(ctx context.Context, id string, state model.RunState, opCount int) error {
	s.logger.Debug("sql", "op", "update", "table", "runs", "id", id, "state", state)

	result, err := s.db.ExecContext(ctx,
		`UPDATE runs SET state=?, op_count=?, completed_at=? WHERE id=?`,
		string(state), opCount, time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*model.Run, error) {
	var run model.Run
	var state, createdAt string
	var completedAt *string

	if err := row.Scan(&run.ID, &run.Name, &run.Workers, &run.Seed,
		&state, &run.OpCount, &createdAt, &completedAt); err != nil {
		return nil, err
	}

	run.State = model.RunState(state)
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if completedAt != nil {
		t, _ := time.Parse(time.RFC3339Nano, *completedAt)
		run.CompletedAt = &t
	}
	return &run, nil
}

// --- Operation journal ---

// OpenJournal returns an append-only journal for the given run.
func (s *SQLiteStore) OpenJournal(ctx context.Context, runID string) (Journal, error) {
	s.logger.Debug("journal open", "run_id", runID)
	return &sqliteJournal{store: s, runID: runID}, nil
}

// History reads the journaled ops of a run in strict index order.
func (s *SQLiteStore) History(ctx context.Context, runID string) (model.History, error) {
	s.logger.Debug("sql", "op", "list", "table", "ops", "run_id", runID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, type, f, value, time_ns, process, error
		 FROM ops WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hist model.History
	for rows.Next() {
		var op model.Op
		var typ, valueJSON string
		var process int64

		if err := rows.Scan(&op.Index, &typ, &op.F, &valueJSON, &op.Time, &process, &op.Error); err != nil {
			return nil, err
		}
		op.Type = model.OpType(typ)
		op.Process = model.Process(process)
		if err := json.Unmarshal([]byte(valueJSON), &op.Value); err != nil {
			return nil, fmt.Errorf("unmarshal op %d value: %w", op.Index, err)
		}
		hist = append(hist, op)
	}
	return hist, rows.Err()
}

// sqliteJournal appends ops for one run. Each Append is an autocommitted
// insert, so an op is durable before the coordinator moves on.
type sqliteJournal struct {
	store  *SQLiteStore
	runID  string
	closed bool
}

func (j *sqliteJournal) Append(ctx context.Context, op model.Op) error {
	if j.closed {
		return fmt.Errorf("journal for run %s is closed", j.runID)
	}

	valueJSON, err := json.Marshal(op.Value)
	if err != nil {
		return fmt.Errorf("marshal op %d value: %w", op.Index, err)
	}

	_, err = j.store.db.ExecContext(ctx,
		`INSERT INTO ops (run_id, idx, type, f, value, time_ns, process, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		j.runID, op.Index, string(op.Type), op.F, string(valueJSON),
		op.Time, int64(op.Process), op.Error,
	)
	return err
}

func (j *sqliteJournal) Close(ctx context.Context) error {
	j.closed = true
	return nil
}

func (j *sqliteJournal) History(ctx context.Context) (model.History, error) {
	return j.store.History(ctx, j.runID)
}
