// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/afontaine/blockday/internal/task"
)

// SQLite implements the task, recurring, schedule and skip repositories
// using SQLite.
type SQLite struct {
	db *sql.DB
}

// New creates a new SQLite repository and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateTask adds a new task to the repository.
func (s *SQLite) CreateTask(ctx context.Context, t *task.Task) error {
	query := `
		INSERT INTO tasks (
			id, user_id, name, type, category, subcategory, priority, status,
			estimated_time, due_date, x_date, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		t.ID,
		t.UserID,
		t.Name,
		t.Type,
		t.Category,
		t.Subcategory,
		t.Priority,
		t.Status,
		t.EstimatedTime,
		nullableDate(t.DueDate),
		nullableDate(t.XDate),
		t.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}

	return nil
}

// GetTask retrieves a task by ID. Returns nil, nil when not found.
func (s *SQLite) GetTask(ctx context.Context, id string) (*task.Task, error) {
	query := taskSelect + ` WHERE id = ?`

	row := s.db.QueryRowContext(ctx, query, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying task: %w", err)
	}
	return t, nil
}

// ListTasks returns all tasks for a user matching the filters, in creation
// order.
func (s *SQLite) ListTasks(ctx context.Context, userID string, f task.Filters) ([]*task.Task, error) {
	return s.listTasks(ctx, userID, f, false)
}

// ListEligibleTasks returns the user's scheduling-eligible tasks matching
// the filters: milestone types are excluded at the query level.
func (s *SQLite) ListEligibleTasks(ctx context.Context, userID string, f task.Filters) ([]*task.Task, error) {
	return s.listTasks(ctx, userID, f, true)
}

func (s *SQLite) listTasks(ctx context.Context, userID string, f task.Filters, eligibleOnly bool) ([]*task.Task, error) {
	query := taskSelect + ` WHERE user_id = ?`
	args := []any{userID}

	if eligibleOnly {
		query += ` AND type NOT IN (?, ?)`
		args = append(args, task.TypeMilestone, task.TypeSubMilestone)
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if !f.DueFrom.IsZero() {
		query += ` AND due_date >= ?`
		args = append(args, f.DueFrom.Format("2006-01-02"))
	}
	if !f.DueTo.IsZero() {
		query += ` AND due_date <= ?`
		args = append(args, f.DueTo.Format("2006-01-02"))
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}

	return tasks, nil
}

// UpdateTaskStatus transitions a task's status.
func (s *SQLite) UpdateTaskStatus(ctx context.Context, id string, status task.Status) error {
	result, err := s.db.ExecContext(ctx, `UPDATE tasks SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("updating task status: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}

// CreateRecurring adds a recurring task definition.
func (s *SQLite) CreateRecurring(ctx context.Context, r *task.RecurringTask) error {
	query := `
		INSERT INTO recurring_tasks (
			id, user_id, task_name, time_block, quarter, days_of_week,
			duration_minutes, category, subcategory, priority, active, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID,
		r.UserID,
		r.TaskName,
		r.TimeBlock,
		r.Quarter,
		strings.Join(r.DaysOfWeek, ","),
		r.DurationMinutes,
		r.Category,
		r.Subcategory,
		r.Priority,
		r.Active,
		r.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting recurring task: %w", err)
	}

	return nil
}

// ListActiveRecurring returns the user's active definitions in creation
// order.
func (s *SQLite) ListActiveRecurring(ctx context.Context, userID string) ([]*task.RecurringTask, error) {
	query := `
		SELECT id, user_id, task_name, time_block, quarter, days_of_week,
		       duration_minutes, category, subcategory, priority, active, created_at
		FROM recurring_tasks
		WHERE user_id = ? AND active = 1
		ORDER BY created_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying recurring tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var defs []*task.RecurringTask
	for rows.Next() {
		var (
			r         task.RecurringTask
			days      string
			createdAt string
		)
		err := rows.Scan(
			&r.ID,
			&r.UserID,
			&r.TaskName,
			&r.TimeBlock,
			&r.Quarter,
			&days,
			&r.DurationMinutes,
			&r.Category,
			&r.Subcategory,
			&r.Priority,
			&r.Active,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning recurring task: %w", err)
		}
		if days != "" {
			r.DaysOfWeek = strings.Split(days, ",")
		}
		r.CreatedAt, err = parseTimestamp(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created at: %w", err)
		}
		defs = append(defs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recurring tasks: %w", err)
	}

	return defs, nil
}

// DeactivateRecurring soft-deactivates a definition.
func (s *SQLite) DeactivateRecurring(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE recurring_tasks SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivating recurring task: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}

// GetEntries returns all entries for the user and date, in grid order of
// insertion.
func (s *SQLite) GetEntries(ctx context.Context, userID string, date time.Time) ([]*task.Entry, error) {
	query := entrySelect + ` WHERE user_id = ? AND date = ? ORDER BY time_block, quartile`

	rows, err := s.db.QueryContext(ctx, query, userID, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*task.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	return entries, nil
}

// GetEntry returns the entry occupying one slot. Returns nil, nil when the
// slot is empty.
func (s *SQLite) GetEntry(ctx context.Context, userID string, date time.Time, timeBlock string, quartile int) (*task.Entry, error) {
	query := entrySelect + ` WHERE user_id = ? AND date = ? AND time_block = ? AND quartile = ?`

	row := s.db.QueryRowContext(ctx, query, userID, date.Format("2006-01-02"), timeBlock, quartile)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying entry: %w", err)
	}
	return e, nil
}

// ReplaceEntries atomically deletes the date's entries and inserts the new
// set. Generation is a wholesale replace for the date, never a merge; the
// transaction guarantees callers cannot observe a half-replaced schedule.
func (s *SQLite) ReplaceEntries(ctx context.Context, userID string, date time.Time, entries []*task.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `DELETE FROM daily_entries WHERE user_id = ? AND date = ?`,
		userID, date.Format("2006-01-02"))
	if err != nil {
		return fmt.Errorf("deleting existing entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, entryInsert)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, entryArgs(e)...); err != nil {
			return fmt.Errorf("inserting entry %s q%d: %w", e.TimeBlock, e.Quartile, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// InsertEntry adds a single entry. Returns task.ErrSlotTaken when the slot
// already holds one; the unique index on the slot identity enforces this
// structurally.
func (s *SQLite) InsertEntry(ctx context.Context, e *task.Entry) error {
	if _, err := s.db.ExecContext(ctx, entryInsert, entryArgs(e)...); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s %s q%d", task.ErrSlotTaken,
				e.Date.Format("2006-01-02"), e.TimeBlock, e.Quartile)
		}
		return fmt.Errorf("inserting entry: %w", err)
	}
	return nil
}

// UpdateEntry persists mutations of an existing entry.
func (s *SQLite) UpdateEntry(ctx context.Context, e *task.Entry) error {
	query := `
		UPDATE daily_entries
		SET planned_task_id = ?, actual_task_id = ?, status = ?, reflection = ?, energy_impact = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		e.PlannedTaskID,
		e.ActualTaskID,
		e.Status,
		e.Reflection,
		e.EnergyImpact,
		e.ID,
		e.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating entry: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return task.ErrEntryNotFound
	}
	return nil
}

// AddSkip records a recurring suppression. Re-adding the same skip is a
// no-op, which makes skipping idempotent.
func (s *SQLite) AddSkip(ctx context.Context, sk *task.SkipEntry) error {
	query := `
		INSERT OR IGNORE INTO schedule_skips (user_id, date, time_block, quartile, recurring_key)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		sk.UserID,
		sk.Date.Format("2006-01-02"),
		sk.TimeBlock,
		sk.Quartile,
		sk.RecurringKey,
	)
	if err != nil {
		return fmt.Errorf("inserting skip: %w", err)
	}
	return nil
}

// ListSkips returns all skips for the user and date.
func (s *SQLite) ListSkips(ctx context.Context, userID string, date time.Time) ([]*task.SkipEntry, error) {
	query := `
		SELECT user_id, date, time_block, quartile, recurring_key
		FROM schedule_skips
		WHERE user_id = ? AND date = ?
	`

	rows, err := s.db.QueryContext(ctx, query, userID, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("querying skips: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var skips []*task.SkipEntry
	for rows.Next() {
		var (
			sk      task.SkipEntry
			dateStr string
		)
		if err := rows.Scan(&sk.UserID, &dateStr, &sk.TimeBlock, &sk.Quartile, &sk.RecurringKey); err != nil {
			return nil, fmt.Errorf("scanning skip: %w", err)
		}
		sk.Date, err = parseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("parsing skip date: %w", err)
		}
		skips = append(skips, &sk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating skips: %w", err)
	}

	return skips, nil
}

const taskSelect = `
	SELECT id, user_id, name, type, category, subcategory, priority, status,
	       estimated_time, due_date, x_date, created_at
	FROM tasks
`

const entrySelect = `
	SELECT id, user_id, date, time_block, quartile, planned_task_id,
	       actual_task_id, status, reflection, energy_impact, created_at
	FROM daily_entries
`

const entryInsert = `
	INSERT INTO daily_entries (
		id, user_id, date, time_block, quartile, planned_task_id,
		actual_task_id, status, reflection, energy_impact, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func entryArgs(e *task.Entry) []any {
	return []any{
		e.ID,
		e.UserID,
		e.Date.Format("2006-01-02"),
		e.TimeBlock,
		e.Quartile,
		e.PlannedTaskID,
		e.ActualTaskID,
		e.Status,
		e.Reflection,
		e.EnergyImpact,
		e.CreatedAt.Format(time.RFC3339),
	}
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*task.Task, error) {
	var (
		t         task.Task
		dueDate   sql.NullString
		xDate     sql.NullString
		createdAt string
	)

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Name,
		&t.Type,
		&t.Category,
		&t.Subcategory,
		&t.Priority,
		&t.Status,
		&t.EstimatedTime,
		&dueDate,
		&xDate,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if dueDate.Valid && dueDate.String != "" {
		d, err := parseDate(dueDate.String)
		if err != nil {
			return nil, fmt.Errorf("parsing due date: %w", err)
		}
		t.DueDate = &d
	}
	if xDate.Valid && xDate.String != "" {
		d, err := parseDate(xDate.String)
		if err != nil {
			return nil, fmt.Errorf("parsing x date: %w", err)
		}
		t.XDate = &d
	}

	t.CreatedAt, err = parseTimestamp(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created at: %w", err)
	}

	return &t, nil
}

func scanEntry(row scanner) (*task.Entry, error) {
	var (
		e         task.Entry
		dateStr   string
		createdAt string
	)

	err := row.Scan(
		&e.ID,
		&e.UserID,
		&dateStr,
		&e.TimeBlock,
		&e.Quartile,
		&e.PlannedTaskID,
		&e.ActualTaskID,
		&e.Status,
		&e.Reflection,
		&e.EnergyImpact,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	e.Date, err = parseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("parsing entry date: %w", err)
	}
	e.CreatedAt, err = parseTimestamp(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created at: %w", err)
	}

	return &e, nil
}

// parseDate parses a date string in various formats SQLite might return.
// Date-only values are parsed in local timezone to match time.Now() behavior.
func parseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}

	// SQLite returns DATE columns as "2006-01-02T00:00:00Z" - extract date and parse as local
	if len(s) == 20 && s[10] == 'T' && s[19] == 'Z' {
		if t, err := time.ParseInLocation("2006-01-02", s[:10], time.Local); err == nil {
			return t, nil
		}
	}

	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %s", s)
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}

func nullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}
