package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jbonatakis/accomplish/internal/task"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "accomplish.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accomplish.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	_ = db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	_ = db.Close()
}

func TestTaskLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	created, err := db.Tasks.Create(ctx, task.Task{ID: "task_1", Prompt: "send email"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != task.StatusQueued {
		t.Fatalf("status = %q, want queued", created.Status)
	}

	updates := []task.Update{
		{TaskID: "task_1", Type: task.UpdateStatus, Status: task.StatusRunning},
		{TaskID: "task_1", Type: task.UpdateMessage, Message: "drafting"},
		{TaskID: "task_1", Type: task.UpdateComplete, Message: "sent"},
	}
	for _, u := range updates {
		if err := db.Tasks.ApplyUpdate(ctx, u); err != nil {
			t.Fatalf("apply %s: %v", u.Type, err)
		}
	}

	got, err := db.Tasks.Get(ctx, "task_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != task.StatusCompleted || got.Result != "sent" {
		t.Fatalf("task = %#v", got)
	}

	stream, err := db.Tasks.Updates(ctx, "task_1")
	if err != nil {
		t.Fatalf("updates: %v", err)
	}
	if len(stream) != 3 || stream[1].Message != "drafting" || stream[2].Type != task.UpdateComplete {
		t.Fatalf("stream = %#v", stream)
	}
}

func TestApplyErrorUpdate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.Tasks.Create(ctx, task.Task{ID: "task_2", Prompt: "p"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := db.Tasks.ApplyUpdate(ctx, task.Update{TaskID: "task_2", Type: task.UpdateError, Status: task.StatusInterrupted, Message: "interrupted"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	got, _ := db.Tasks.Get(ctx, "task_2")
	if got.Status != task.StatusInterrupted || got.Error != "interrupted" {
		t.Fatalf("task = %#v", got)
	}
}

func TestGetMissingTask(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.Tasks.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := db.Tasks.SetSummary(context.Background(), "nope", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListTasksNewestFirst(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"task_a", "task_b", "task_c"} {
		if _, err := db.Tasks.Create(ctx, task.Task{ID: id, Prompt: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	got, err := db.Tasks.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "task_c" || got[1].ID != "task_b" {
		t.Fatalf("list = %#v", got)
	}
}

func TestFavorites(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if _, err := db.Favorites.Add(ctx, task.Favorite{TaskID: "task_1", Prompt: "one", CreatedAt: base}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := db.Favorites.Add(ctx, task.Favorite{TaskID: "task_2", Prompt: "two", CreatedAt: base.Add(time.Minute)}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := db.Favorites.Add(ctx, task.Favorite{TaskID: "task_1", Prompt: "one", Summary: "First"}); err != nil {
		t.Fatalf("re-add: %v", err)
	}

	favs, err := db.Favorites.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(favs) != 2 || favs[0].TaskID != "task_2" || favs[1].Summary != "First" {
		t.Fatalf("favorites = %#v", favs)
	}

	if err := db.Favorites.Remove(ctx, "task_2"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := db.Favorites.Remove(ctx, "task_2"); err != nil {
		t.Fatalf("remove missing: %v", err)
	}
	favs, _ = db.Favorites.List(ctx)
	if len(favs) != 1 || favs[0].TaskID != "task_1" {
		t.Fatalf("favorites = %#v", favs)
	}

	if _, err := db.Favorites.Add(ctx, task.Favorite{}); err == nil {
		t.Fatalf("expected empty task id to fail")
	}
}
