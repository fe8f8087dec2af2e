package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jbonatakis/accomplish/internal/task"
)

type TaskRepo struct {
	db *sql.DB
}

func (r *TaskRepo) Create(ctx context.Context, t task.Task) (task.Task, error) {
	ts := now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = ts
	}
	t.UpdatedAt = ts
	if t.Status == "" {
		t.Status = task.StatusQueued
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, prompt, status, summary, result, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Prompt, string(t.Status), t.Summary, t.Result, t.Error, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return task.Task{}, fmt.Errorf("insert task %s: %w", t.ID, err)
	}
	return t, nil
}

func (r *TaskRepo) Get(ctx context.Context, id string) (task.Task, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, prompt, status, summary, result, error, created_at, updated_at
		FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return task.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return task.Task{}, fmt.Errorf("load task %s: %w", id, err)
	}
	return t, nil
}

// List returns the most recent tasks first.
func (r *TaskRepo) List(ctx context.Context, limit int) ([]task.Task, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, prompt, status, summary, result, error, created_at, updated_at
		FROM tasks ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ApplyUpdate records u and folds it into the task row: status changes,
// the final result on completion and the message on error.
func (r *TaskRepo) ApplyUpdate(ctx context.Context, u task.Update) error {
	at := u.At
	if at.IsZero() {
		at = now()
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO task_updates (task_id, type, status, message, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		u.TaskID, string(u.Type), string(u.Status), u.Message, at); err != nil {
		return fmt.Errorf("insert update for %s: %w", u.TaskID, err)
	}

	var res sql.Result
	switch u.Type {
	case task.UpdateComplete:
		res, err = tx.ExecContext(ctx, `UPDATE tasks SET status = ?, result = ?, updated_at = ? WHERE id = ?`,
			string(task.StatusCompleted), u.Message, at, u.TaskID)
	case task.UpdateError:
		status := u.Status
		if status == "" {
			status = task.StatusFailed
		}
		res, err = tx.ExecContext(ctx, `UPDATE tasks SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
			string(status), u.Message, at, u.TaskID)
	default:
		if u.Status == "" {
			return tx.Commit()
		}
		res, err = tx.ExecContext(ctx, `UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`,
			string(u.Status), at, u.TaskID)
	}
	if err != nil {
		return fmt.Errorf("update task %s: %w", u.TaskID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task %s: %w", u.TaskID, ErrNotFound)
	}
	return tx.Commit()
}

// SetSummary stores the short summary shown for favorites and history.
func (r *TaskRepo) SetSummary(ctx context.Context, id string, summary string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET summary = ?, updated_at = ? WHERE id = ?`, summary, now(), id)
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

// Updates returns a task's stream in insertion order.
func (r *TaskRepo) Updates(ctx context.Context, taskID string) ([]task.Update, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT task_id, type, status, message, created_at
		FROM task_updates WHERE task_id = ? ORDER BY id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list updates for %s: %w", taskID, err)
	}
	defer rows.Close()

	var out []task.Update
	for rows.Next() {
		var u task.Update
		var typ, status string
		if err := rows.Scan(&u.TaskID, &typ, &status, &u.Message, &u.At); err != nil {
			return nil, fmt.Errorf("scan update: %w", err)
		}
		u.Type = task.UpdateType(typ)
		u.Status = task.Status(status)
		out = append(out, u)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (task.Task, error) {
	var t task.Task
	var status string
	if err := s.Scan(&t.ID, &t.Prompt, &status, &t.Summary, &t.Result, &t.Error, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return task.Task{}, err
	}
	t.Status = task.Status(status)
	return t, nil
}
