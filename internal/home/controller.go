// Package home drives the home screen: the prompt being edited, the
// favorites preview, the example prompts and the settings dialog. It decides
// whether a submit starts a task, interrupts the running one or sends the
// user to provider setup first. Rendering is left to the caller.
package home

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jbonatakis/accomplish/internal/logger"
	"github.com/jbonatakis/accomplish/internal/provider"
	"github.com/jbonatakis/accomplish/internal/task"
)

// FavoritesPreviewCount is how many favorites show before "show all".
const FavoritesPreviewCount = 6

// HomePath is the route that reloads favorites when it becomes active.
const HomePath = "/"

type SettingsTab string

const (
	TabProviders  SettingsTab = "providers"
	TabVoice      SettingsTab = "voice"
	TabSkills     SettingsTab = "skills"
	TabConnectors SettingsTab = "connectors"
)

// SettingsTabs lists the tabs in display order.
var SettingsTabs = []SettingsTab{TabProviders, TabVoice, TabSkills, TabConnectors}

// SettingsDialog is the settings dialog visibility and the tab it opens on.
type SettingsDialog struct {
	Open       bool
	InitialTab SettingsTab
}

// TaskStore is the shared task state the home screen reads and commands.
type TaskStore interface {
	StartTask(ctx context.Context, cfg task.Config) (*task.Task, error)
	InterruptTask(ctx context.Context) error
	Favorites() []task.Favorite
	RemoveFavorite(ctx context.Context, taskID string) error
	IsLoading() bool
	AddTaskUpdate(u task.Update)
	SetPermissionRequest(req task.PermissionRequest)
}

// FavoritesLoader is implemented by stores that can refresh favorites.
type FavoritesLoader interface {
	LoadFavorites(ctx context.Context) error
}

// Client is the automation client: event streams plus mode and settings
// queries.
type Client interface {
	OnTaskUpdate(h func(task.Update)) func()
	OnPermissionRequest(h func(task.PermissionRequest)) func()
	IsE2EMode(ctx context.Context) (bool, error)
	GetProviderSettings(ctx context.Context) (provider.Settings, error)
}

type Navigator interface {
	Navigate(path string)
}

type Translator interface {
	T(key string) string
}

// ExecutionPath is the route of a task's execution view.
func ExecutionPath(taskID string) string {
	return "/execution/" + taskID
}

type Controller struct {
	store  TaskStore
	client Client
	nav    Navigator
	tr     Translator
	ready  func(provider.Settings) bool
	now    func() time.Time

	mu           sync.Mutex
	prompt       string
	showAll      bool
	settings     SettingsDialog
	focusPending bool
	unsubscribe  []func()
}

type Option func(*Controller)

// WithReadiness replaces provider.HasAnyReadyProvider.
func WithReadiness(fn func(provider.Settings) bool) Option {
	return func(c *Controller) { c.ready = fn }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func New(store TaskStore, client Client, nav Navigator, tr Translator, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		client:   client,
		nav:      nav,
		tr:       tr,
		ready:    provider.HasAnyReadyProvider,
		now:      time.Now,
		settings: SettingsDialog{InitialTab: TabProviders},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Prompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prompt
}

func (c *Controller) SetPrompt(p string) {
	c.mu.Lock()
	c.prompt = p
	c.mu.Unlock()
}

// IsLoading reports whether submit would interrupt instead of start.
func (c *Controller) IsLoading() bool {
	return c.store.IsLoading()
}

// Submit interrupts the running task, or starts a task from the prompt. When
// no provider is ready outside e2e mode it opens the providers tab instead
// and keeps the prompt for a retry.
func (c *Controller) Submit(ctx context.Context) error {
	if c.store.IsLoading() {
		logger.Debug("submit while loading, interrupting")
		return c.store.InterruptTask(ctx)
	}
	if strings.TrimSpace(c.Prompt()) == "" {
		return nil
	}

	e2e, err := c.client.IsE2EMode(ctx)
	if err != nil {
		return err
	}
	if !e2e {
		settings, err := c.client.GetProviderSettings(ctx)
		if err != nil {
			return err
		}
		if !c.ready(settings) {
			logger.Info("no ready provider, opening provider settings")
			c.OpenSettings(TabProviders)
			return nil
		}
	}
	return c.execute(ctx)
}

// APIKeySaved closes the settings dialog and retries the pending prompt.
func (c *Controller) APIKeySaved(ctx context.Context) error {
	c.SettingsDialogChange(false)
	if strings.TrimSpace(c.Prompt()) == "" {
		return nil
	}
	return c.execute(ctx)
}

func (c *Controller) execute(ctx context.Context) error {
	prompt := strings.TrimSpace(c.Prompt())
	if prompt == "" || c.store.IsLoading() {
		return nil
	}
	cfg := task.Config{TaskID: task.NewID(c.now()), Prompt: prompt}
	t, err := c.store.StartTask(ctx, cfg)
	if err != nil {
		return fmt.Errorf("start task: %w", err)
	}
	if t != nil {
		c.nav.Navigate(ExecutionPath(t.ID))
	}
	return nil
}

// DisplayedFavorites returns the favorites preview, or every favorite once
// "show all" was chosen.
func (c *Controller) DisplayedFavorites() []task.Favorite {
	favs := c.store.Favorites()
	c.mu.Lock()
	showAll := c.showAll
	c.mu.Unlock()
	if showAll || len(favs) <= FavoritesPreviewCount {
		return favs
	}
	return favs[:FavoritesPreviewCount]
}

// FavoritesCount is the full number of favorites.
func (c *Controller) FavoritesCount() int {
	return len(c.store.Favorites())
}

func (c *Controller) HasMoreFavorites() bool {
	return c.FavoritesCount() > FavoritesPreviewCount
}

// CanShowAllFavorites reports whether the "show all" action is offered.
func (c *Controller) CanShowAllFavorites() bool {
	c.mu.Lock()
	showAll := c.showAll
	c.mu.Unlock()
	return !showAll && c.HasMoreFavorites()
}

func (c *Controller) ShowAllFavorites() {
	c.mu.Lock()
	c.showAll = true
	c.mu.Unlock()
}

// SelectFavorite copies the favorite's prompt into the prompt field.
func (c *Controller) SelectFavorite(f task.Favorite) {
	c.SetPrompt(f.Prompt)
}

func (c *Controller) RemoveFavorite(ctx context.Context, taskID string) error {
	return c.store.RemoveFavorite(ctx, taskID)
}

// Examples returns the use cases with text for the current locale.
func (c *Controller) Examples() []Example {
	out := make([]Example, 0, len(useCases))
	for _, uc := range useCases {
		out = append(out, localize(c.tr, uc))
	}
	return out
}

// SelectExample replaces the prompt with example i's prompt and asks for
// focus. Out of range indexes are ignored.
func (c *Controller) SelectExample(i int) {
	if i < 0 || i >= len(useCases) {
		return
	}
	ex := localize(c.tr, useCases[i])
	c.mu.Lock()
	c.prompt = ex.Prompt
	c.focusPending = true
	c.mu.Unlock()
}

// SelectSkill prepends cmd to the prompt and asks for focus.
func (c *Controller) SelectSkill(cmd string) {
	c.mu.Lock()
	c.prompt = strings.TrimSpace(cmd + " " + c.prompt)
	c.focusPending = true
	c.mu.Unlock()
}

// TakeFocusRequest reports and clears a pending request to focus the prompt
// field. The view calls it once the current frame has rendered.
func (c *Controller) TakeFocusRequest() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	pending := c.focusPending
	c.focusPending = false
	return pending
}

// Mount subscribes to task updates and permission requests and loads
// favorites. Calling Mount again replaces the earlier subscriptions.
func (c *Controller) Mount(ctx context.Context) error {
	c.Unmount()
	offUpdates := c.client.OnTaskUpdate(c.store.AddTaskUpdate)
	offPermissions := c.client.OnPermissionRequest(c.store.SetPermissionRequest)
	c.mu.Lock()
	c.unsubscribe = []func(){offUpdates, offPermissions}
	c.mu.Unlock()
	logger.Debug("home mounted")
	return c.loadFavorites(ctx)
}

// Unmount releases the subscriptions taken by Mount.
func (c *Controller) Unmount() {
	c.mu.Lock()
	fns := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// RouteChanged reloads favorites when the home route becomes active again.
func (c *Controller) RouteChanged(ctx context.Context, path string) error {
	if path != HomePath {
		return nil
	}
	return c.loadFavorites(ctx)
}

func (c *Controller) loadFavorites(ctx context.Context) error {
	loader, ok := c.store.(FavoritesLoader)
	if !ok {
		return nil
	}
	return loader.LoadFavorites(ctx)
}

// Settings returns the settings dialog state.
func (c *Controller) Settings() SettingsDialog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// OpenSettings opens the settings dialog on tab.
func (c *Controller) OpenSettings(tab SettingsTab) {
	c.mu.Lock()
	c.settings = SettingsDialog{Open: true, InitialTab: tab}
	c.mu.Unlock()
}

func (c *Controller) OpenSpeechSettings() {
	c.OpenSettings(TabVoice)
}

func (c *Controller) OpenModelSettings() {
	c.OpenSettings(TabProviders)
}

// SettingsDialogChange sets the dialog visibility. Closing resets the tab to
// providers.
func (c *Controller) SettingsDialogChange(open bool) {
	c.mu.Lock()
	c.settings.Open = open
	if !open {
		c.settings.InitialTab = TabProviders
	}
	c.mu.Unlock()
}

// PlusMenuEnabled reports whether skills and settings can be picked from the
// prompt toolbar. The menu is disabled while a task runs.
func (c *Controller) PlusMenuEnabled() bool {
	return !c.store.IsLoading()
}

func (c *Controller) Title() string            { return c.tr.T("title") }
func (c *Controller) InputPlaceholder() string { return c.tr.T("inputPlaceholder") }
func (c *Controller) ExamplePromptsLabel() string {
	return c.tr.T("examplePrompts")
}
