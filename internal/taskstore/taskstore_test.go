package taskstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jbonatakis/accomplish/internal/store"
	"github.com/jbonatakis/accomplish/internal/task"
)

type fakeAutomation struct {
	startErr    error
	started     []task.Config
	interrupted []string
	responses   []task.PermissionResponse
}

func (f *fakeAutomation) StartTask(_ context.Context, cfg task.Config) error {
	f.started = append(f.started, cfg)
	return f.startErr
}

func (f *fakeAutomation) InterruptTask(taskID string) error {
	f.interrupted = append(f.interrupted, taskID)
	return nil
}

func (f *fakeAutomation) RespondPermission(resp task.PermissionResponse) error {
	f.responses = append(f.responses, resp)
	return nil
}

func newTestStore(t *testing.T) (*Store, *fakeAutomation, *store.DB) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "accomplish.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	auto := &fakeAutomation{}
	return New(db, auto), auto, db
}

func TestStartTaskSetsLoadingUntilTerminalUpdate(t *testing.T) {
	s, auto, db := newTestStore(t)
	ctx := context.Background()

	created, err := s.StartTask(ctx, task.Config{TaskID: "task_1", Prompt: "  plan trip  "})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if created == nil || created.ID != "task_1" || created.Prompt != "plan trip" {
		t.Fatalf("task = %#v", created)
	}
	if !s.IsLoading() {
		t.Fatalf("expected loading after start")
	}
	if len(auto.started) != 1 || auto.started[0].Prompt != "plan trip" {
		t.Fatalf("started = %#v", auto.started)
	}
	if _, err := s.StartTask(ctx, task.Config{TaskID: "task_2", Prompt: "x"}); !errors.Is(err, ErrTaskActive) {
		t.Fatalf("second start err = %v, want ErrTaskActive", err)
	}

	s.AddTaskUpdate(task.Update{TaskID: "task_1", Type: task.UpdateStatus, Status: task.StatusRunning})
	if !s.IsLoading() {
		t.Fatalf("non-terminal update cleared loading")
	}
	s.AddTaskUpdate(task.Update{TaskID: "task_1", Type: task.UpdateComplete, Message: "Itinerary ready\nDay 1: ..."})
	if s.IsLoading() {
		t.Fatalf("terminal update left loading set")
	}

	cur, ok := s.CurrentTask()
	if !ok || cur.Status != task.StatusCompleted || cur.Summary != "Itinerary ready" {
		t.Fatalf("current = %#v", cur)
	}
	if n := len(s.Updates("task_1")); n != 2 {
		t.Fatalf("updates = %d, want 2", n)
	}
	stored, err := db.Tasks.Get(ctx, "task_1")
	if err != nil || stored.Status != task.StatusCompleted || stored.Summary != "Itinerary ready" {
		t.Fatalf("stored = %#v, err = %v", stored, err)
	}
}

func TestStartTaskFailureClearsLoading(t *testing.T) {
	s, auto, db := newTestStore(t)
	auto.startErr = errors.New("no provider")

	got, err := s.StartTask(context.Background(), task.Config{TaskID: "task_1", Prompt: "x"})
	if err == nil || got != nil {
		t.Fatalf("task = %#v, err = %v", got, err)
	}
	if s.IsLoading() {
		t.Fatalf("loading left set after failed start")
	}
	stored, _ := db.Tasks.Get(context.Background(), "task_1")
	if stored.Status != task.StatusFailed {
		t.Fatalf("stored status = %q, want failed", stored.Status)
	}
}

func TestInterruptTask(t *testing.T) {
	s, auto, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.InterruptTask(ctx); !errors.Is(err, ErrNoActiveTask) {
		t.Fatalf("err = %v, want ErrNoActiveTask", err)
	}
	if _, err := s.StartTask(ctx, task.Config{TaskID: "task_1", Prompt: "x"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.InterruptTask(ctx); err != nil {
		t.Fatalf("interrupt: %v", err)
	}
	if len(auto.interrupted) != 1 || auto.interrupted[0] != "task_1" {
		t.Fatalf("interrupted = %#v", auto.interrupted)
	}
	s.AddTaskUpdate(task.Update{TaskID: "task_1", Type: task.UpdateError, Status: task.StatusInterrupted, Message: "Task interrupted"})
	if s.IsLoading() {
		t.Fatalf("interrupted update left loading set")
	}
}

func TestPermissionFlow(t *testing.T) {
	s, auto, _ := newTestStore(t)
	ctx := context.Background()
	if _, err := s.StartTask(ctx, task.Config{TaskID: "task_1", Prompt: "delete spam"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.RespondPermission(ctx, true); !errors.Is(err, ErrNoPendingPermission) {
		t.Fatalf("err = %v, want ErrNoPendingPermission", err)
	}

	s.SetPermissionRequest(task.PermissionRequest{ID: "req_1", TaskID: "task_1", Operation: "delete"})
	req, ok := s.PermissionRequest()
	if !ok || req.ID != "req_1" {
		t.Fatalf("request = %#v", req)
	}
	if cur, _ := s.CurrentTask(); cur.Status != task.StatusWaitingPermission {
		t.Fatalf("status = %q", cur.Status)
	}

	if err := s.RespondPermission(ctx, false); err != nil {
		t.Fatalf("respond: %v", err)
	}
	if len(auto.responses) != 1 || auto.responses[0].RequestID != "req_1" || auto.responses[0].Allowed {
		t.Fatalf("responses = %#v", auto.responses)
	}
	if _, ok := s.PermissionRequest(); ok {
		t.Fatalf("request still pending after response")
	}
}

func TestFavorites(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := s.StartTask(ctx, task.Config{TaskID: "task_1", Prompt: "weekly report"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.AddTaskUpdate(task.Update{TaskID: "task_1", Type: task.UpdateComplete, Message: "Report drafted"})

	if err := s.AddFavorite(ctx, "task_1"); err != nil {
		t.Fatalf("add favorite: %v", err)
	}
	favs := s.Favorites()
	if len(favs) != 1 || favs[0].Prompt != "weekly report" || favs[0].Summary != "Report drafted" {
		t.Fatalf("favorites = %#v", favs)
	}
	if !s.IsFavorite("task_1") {
		t.Fatalf("IsFavorite = false")
	}

	if err := s.RemoveFavorite(ctx, "task_1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(s.Favorites()) != 0 {
		t.Fatalf("favorite not removed")
	}
	if err := s.LoadFavorites(ctx); err != nil || len(s.Favorites()) != 0 {
		t.Fatalf("reload = %#v, err = %v", s.Favorites(), err)
	}

	if err := s.AddFavorite(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSubscribeNotifiesUntilReleased(t *testing.T) {
	s, _, _ := newTestStore(t)
	calls := 0
	release := s.Subscribe(func() { calls++ })

	s.SetPermissionRequest(task.PermissionRequest{ID: "r"})
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	release()
	s.SetPermissionRequest(task.PermissionRequest{ID: "r2"})
	if calls != 1 {
		t.Fatalf("calls after release = %d", calls)
	}
}

func TestSummaryFrom(t *testing.T) {
	if got := summaryFrom("\n  \n first line \nsecond"); got != "first line" {
		t.Fatalf("summary = %q", got)
	}
	if got := summaryFrom(""); got != "" {
		t.Fatalf("summary = %q", got)
	}
}
