package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jbonatakis/accomplish/internal/task"
)

type FavoriteRepo struct {
	db *sql.DB
}

// List returns favorites, newest first.
func (r *FavoriteRepo) List(ctx context.Context) ([]task.Favorite, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT task_id, prompt, summary, created_at
		FROM favorites ORDER BY created_at DESC, task_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	out := []task.Favorite{}
	for rows.Next() {
		var f task.Favorite
		if err := rows.Scan(&f.TaskID, &f.Prompt, &f.Summary, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Add inserts or refreshes the favorite for f.TaskID.
func (r *FavoriteRepo) Add(ctx context.Context, f task.Favorite) (task.Favorite, error) {
	if f.TaskID == "" {
		return task.Favorite{}, fmt.Errorf("favorite requires a task id")
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO favorites (task_id, prompt, summary, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(task_id) DO UPDATE SET prompt = excluded.prompt, summary = excluded.summary`,
		f.TaskID, f.Prompt, f.Summary, f.CreatedAt)
	if err != nil {
		return task.Favorite{}, fmt.Errorf("save favorite %s: %w", f.TaskID, err)
	}
	return f, nil
}

// Remove deletes the favorite. Removing a missing favorite is not an error.
func (r *FavoriteRepo) Remove(ctx context.Context, taskID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE task_id = ?`, taskID); err != nil {
		return fmt.Errorf("remove favorite %s: %w", taskID, err)
	}
	return nil
}
