package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jbonatakis/accomplish/internal/config"
	"github.com/jbonatakis/accomplish/internal/i18n"
	"github.com/jbonatakis/accomplish/internal/provider"
	"github.com/jbonatakis/accomplish/internal/task"
)

type fakeStore struct {
	mu          sync.Mutex
	loading     bool
	current     *task.Task
	updates     map[string][]task.Update
	permission  *task.PermissionRequest
	favorites   []task.Favorite
	started     []task.Config
	interrupts  int
	responses   []bool
	favorited   []string
	removed     []string
	subscribers int
	released    int
}

func (s *fakeStore) StartTask(_ context.Context, cfg task.Config) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = append(s.started, cfg)
	s.loading = true
	t := task.Task{ID: cfg.TaskID, Prompt: cfg.Prompt, Status: task.StatusRunning, CreatedAt: fixedNow()}
	s.current = &t
	return &t, nil
}

func (s *fakeStore) InterruptTask(context.Context) error {
	s.mu.Lock()
	s.interrupts++
	s.mu.Unlock()
	return nil
}

func (s *fakeStore) Favorites() []task.Favorite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]task.Favorite(nil), s.favorites...)
}

func (s *fakeStore) RemoveFavorite(_ context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, taskID)
	kept := s.favorites[:0]
	for _, f := range s.favorites {
		if f.TaskID != taskID {
			kept = append(kept, f)
		}
	}
	s.favorites = kept
	return nil
}

func (s *fakeStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *fakeStore) AddTaskUpdate(u task.Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updates == nil {
		s.updates = map[string][]task.Update{}
	}
	s.updates[u.TaskID] = append(s.updates[u.TaskID], u)
}

func (s *fakeStore) SetPermissionRequest(req task.PermissionRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permission = &req
}

func (s *fakeStore) CurrentTask() (task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return task.Task{}, false
	}
	return *s.current, true
}

func (s *fakeStore) Updates(taskID string) []task.Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]task.Update(nil), s.updates[taskID]...)
}

func (s *fakeStore) PermissionRequest() (task.PermissionRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.permission == nil {
		return task.PermissionRequest{}, false
	}
	return *s.permission, true
}

func (s *fakeStore) RespondPermission(_ context.Context, allowed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, allowed)
	s.permission = nil
	return nil
}

func (s *fakeStore) AddFavorite(_ context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.favorited = append(s.favorited, taskID)
	return nil
}

func (s *fakeStore) IsFavorite(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.favorited {
		if id == taskID {
			return true
		}
	}
	return false
}

func (s *fakeStore) Subscribe(func()) func() {
	s.mu.Lock()
	s.subscribers++
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.released++
		s.mu.Unlock()
	}
}

type fakeClient struct {
	e2e      bool
	settings provider.Settings
}

func (c *fakeClient) OnTaskUpdate(func(task.Update)) func()                   { return func() {} }
func (c *fakeClient) OnPermissionRequest(func(task.PermissionRequest)) func() { return func() {} }
func (c *fakeClient) IsE2EMode(context.Context) (bool, error)                 { return c.e2e, nil }
func (c *fakeClient) GetProviderSettings(context.Context) (provider.Settings, error) {
	return c.settings, nil
}

func readySettings() provider.Settings {
	return provider.Settings{
		ActiveProvider: "openai",
		Connected: map[string]provider.ConnectedProvider{
			"openai": {APIKey: "sk-test"},
		},
	}
}

func fixedNow() time.Time {
	return time.UnixMilli(1718000000000)
}

func newTestModel(t *testing.T, store *fakeStore, client *fakeClient) Model {
	t.Helper()
	catalog, err := i18n.Load("en")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return NewModel(Deps{
		Store:      store,
		Client:     client,
		Config:     config.DefaultConfig(),
		ConfigPath: "unused.yaml",
		Catalog:    catalog,
		Now:        fixedNow,
	})
}
