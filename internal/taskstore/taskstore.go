// Package taskstore is the shared task state behind the home and execution
// views: the active task, its update stream, the pending permission request
// and the favorites list. Reads are served from memory; commands persist
// through the store and drive the automation client.
package taskstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/jbonatakis/accomplish/internal/logger"
	"github.com/jbonatakis/accomplish/internal/store"
	"github.com/jbonatakis/accomplish/internal/task"
)

var (
	ErrNoActiveTask        = errors.New("no active task")
	ErrTaskActive          = errors.New("a task is already active")
	ErrNoPendingPermission = errors.New("no pending permission request")
)

// Automation starts and controls task runs.
type Automation interface {
	StartTask(ctx context.Context, cfg task.Config) error
	InterruptTask(taskID string) error
	RespondPermission(resp task.PermissionResponse) error
}

type Store struct {
	db   *store.DB
	auto Automation

	mu         sync.RWMutex
	favorites  []task.Favorite
	loading    bool
	current    *task.Task
	updates    map[string][]task.Update
	permission *task.PermissionRequest

	subMu  sync.Mutex
	subs   map[int]func()
	nextID int
}

func New(db *store.DB, auto Automation) *Store {
	return &Store{
		db:      db,
		auto:    auto,
		updates: map[string][]task.Update{},
		subs:    map[int]func(){},
	}
}

// Subscribe registers fn to be called after every state change. fn runs on
// the goroutine that made the change and must not block.
func (s *Store) Subscribe(fn func()) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Favorites returns a copy of the loaded favorites, newest first.
func (s *Store) Favorites() []task.Favorite {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]task.Favorite(nil), s.favorites...)
}

// IsLoading reports whether a task is active and has not reached a
// terminal update.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) CurrentTask() (task.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return task.Task{}, false
	}
	return *s.current, true
}

func (s *Store) Updates(taskID string) []task.Update {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]task.Update(nil), s.updates[taskID]...)
}

func (s *Store) PermissionRequest() (task.PermissionRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.permission == nil {
		return task.PermissionRequest{}, false
	}
	return *s.permission, true
}

// StartTask records cfg as the active task and starts it. On failure the
// loading flag is cleared and the error returned.
func (s *Store) StartTask(ctx context.Context, cfg task.Config) (*task.Task, error) {
	prompt := strings.TrimSpace(cfg.Prompt)
	if prompt == "" {
		return nil, fmt.Errorf("start task: empty prompt")
	}

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil, ErrTaskActive
	}
	s.loading = true
	s.permission = nil
	s.mu.Unlock()
	s.notify()

	created, err := s.db.Tasks.Create(ctx, task.Task{ID: cfg.TaskID, Prompt: prompt})
	if err != nil {
		s.clearLoading(nil)
		return nil, err
	}

	s.mu.Lock()
	current := created
	s.current = &current
	s.updates[created.ID] = nil
	s.mu.Unlock()
	s.notify()

	if err := s.auto.StartTask(ctx, task.Config{TaskID: created.ID, Prompt: prompt}); err != nil {
		logger.Warn("start task failed", "task", created.ID, "error", err)
		failed := task.Update{TaskID: created.ID, Type: task.UpdateError, Status: task.StatusFailed, Message: err.Error()}
		if perr := s.db.Tasks.ApplyUpdate(context.Background(), failed); perr != nil {
			logger.Warn("record start failure", "task", created.ID, "error", perr)
		}
		s.clearLoading(&failed)
		return nil, err
	}

	logger.Debug("task active", "task", created.ID)
	out := created
	return &out, nil
}

func (s *Store) clearLoading(final *task.Update) {
	s.mu.Lock()
	s.loading = false
	if final != nil && s.current != nil && s.current.ID == final.TaskID {
		s.current.Status = final.Status
		s.current.Error = final.Message
		s.updates[final.TaskID] = append(s.updates[final.TaskID], *final)
	}
	s.mu.Unlock()
	s.notify()
}

// InterruptTask asks the automation client to stop the active task. The
// loading flag clears when the interrupted update arrives.
func (s *Store) InterruptTask(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	active := s.loading && s.current != nil
	id := ""
	if s.current != nil {
		id = s.current.ID
	}
	s.mu.RUnlock()
	if !active {
		return ErrNoActiveTask
	}
	if err := s.auto.InterruptTask(id); err != nil {
		return fmt.Errorf("interrupt %s: %w", id, err)
	}
	return nil
}

// AddTaskUpdate persists u and folds it into the in-memory state. A terminal
// update for the active task clears the loading flag.
func (s *Store) AddTaskUpdate(u task.Update) {
	ctx := context.Background()
	if err := s.db.Tasks.ApplyUpdate(ctx, u); err != nil {
		logger.Warn("persist task update", "task", u.TaskID, "type", u.Type, "error", err)
	}
	var summary string
	if u.Type == task.UpdateComplete {
		summary = summaryFrom(u.Message)
		if summary != "" {
			if err := s.db.Tasks.SetSummary(ctx, u.TaskID, summary); err != nil {
				logger.Warn("persist task summary", "task", u.TaskID, "error", err)
			}
		}
	}

	s.mu.Lock()
	s.updates[u.TaskID] = append(s.updates[u.TaskID], u)
	if s.current != nil && s.current.ID == u.TaskID {
		switch u.Type {
		case task.UpdateComplete:
			s.current.Status = task.StatusCompleted
			s.current.Result = u.Message
			s.current.Summary = summary
		case task.UpdateError:
			s.current.Status = u.Status
			if s.current.Status == "" {
				s.current.Status = task.StatusFailed
			}
			s.current.Error = u.Message
		default:
			if u.Status != "" {
				s.current.Status = u.Status
			}
		}
		s.current.UpdatedAt = u.At
		if u.Terminal() {
			s.loading = false
			s.permission = nil
		}
	}
	s.mu.Unlock()
	s.notify()
}

// SetPermissionRequest records the request the user has to answer next.
func (s *Store) SetPermissionRequest(req task.PermissionRequest) {
	s.mu.Lock()
	r := req
	s.permission = &r
	if s.current != nil && s.current.ID == req.TaskID {
		s.current.Status = task.StatusWaitingPermission
	}
	s.mu.Unlock()
	s.notify()
}

// RespondPermission answers the pending request.
func (s *Store) RespondPermission(ctx context.Context, allowed bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	req := s.permission
	s.permission = nil
	s.mu.Unlock()
	if req == nil {
		return ErrNoPendingPermission
	}
	s.notify()
	if err := s.auto.RespondPermission(task.PermissionResponse{RequestID: req.ID, Allowed: allowed}); err != nil {
		return fmt.Errorf("respond to %s: %w", req.ID, err)
	}
	return nil
}

func (s *Store) LoadFavorites(ctx context.Context) error {
	favs, err := s.db.Favorites.List(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.favorites = favs
	s.mu.Unlock()
	s.notify()
	return nil
}

// AddFavorite saves the prompt and summary of a stored task as a favorite.
func (s *Store) AddFavorite(ctx context.Context, taskID string) error {
	t, err := s.db.Tasks.Get(ctx, taskID)
	if err != nil {
		return err
	}
	if _, err := s.db.Favorites.Add(ctx, task.Favorite{TaskID: t.ID, Prompt: t.Prompt, Summary: t.Summary}); err != nil {
		return err
	}
	return s.LoadFavorites(ctx)
}

func (s *Store) RemoveFavorite(ctx context.Context, taskID string) error {
	if err := s.db.Favorites.Remove(ctx, taskID); err != nil {
		return err
	}
	s.mu.Lock()
	kept := s.favorites[:0:0]
	for _, f := range s.favorites {
		if f.TaskID != taskID {
			kept = append(kept, f)
		}
	}
	s.favorites = kept
	s.mu.Unlock()
	s.notify()
	return nil
}

// IsFavorite reports whether taskID is in the loaded favorites.
func (s *Store) IsFavorite(taskID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.favorites {
		if f.TaskID == taskID {
			return true
		}
	}
	return false
}

const summaryLimit = 80

// summaryFrom takes the first non-blank line of a result.
func summaryFrom(result string) string {
	for _, line := range strings.Split(result, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) > summaryLimit {
			line = string([]rune(line)[:summaryLimit])
		}
		return line
	}
	return ""
}
