package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jbonatakis/accomplish/internal/config"
	"github.com/jbonatakis/accomplish/internal/home"
	"github.com/jbonatakis/accomplish/internal/i18n"
	"github.com/jbonatakis/accomplish/internal/skills"
	"github.com/jbonatakis/accomplish/internal/task"
)

type ViewMode int

const (
	ViewModeHome ViewMode = iota
	ViewModeExecution
)

type ActionMode int

const (
	ActionModeNone ActionMode = iota
	ActionModeSettings
	ActionModeSkillPicker
)

// HomeFocus is the part of the home view that receives keys.
type HomeFocus int

const (
	FocusPrompt HomeFocus = iota
	FocusFavorites
	FocusExamples
)

// TaskState is the task store as the execution view uses it.
type TaskState interface {
	IsLoading() bool
	CurrentTask() (task.Task, bool)
	Updates(taskID string) []task.Update
	PermissionRequest() (task.PermissionRequest, bool)
	RespondPermission(ctx context.Context, allowed bool) error
	InterruptTask(ctx context.Context) error
	AddFavorite(ctx context.Context, taskID string) error
	IsFavorite(taskID string) bool
	Subscribe(fn func()) func()
}

// Store is everything the TUI needs from the task store.
type Store interface {
	home.TaskStore
	TaskState
}

type Deps struct {
	Store      Store
	Client     home.Client
	Config     config.Config
	ConfigPath string
	Catalog    *i18n.Catalog
	Skills     []skills.Skill
	// Now overrides the clock used for task ids.
	Now func() time.Time
}

type Model struct {
	ctrl       *home.Controller
	tasks      TaskState
	router     *router
	signal     *storeSignal
	release    func()
	config     config.Config
	configPath string
	catalog    *i18n.Catalog
	skills     []skills.Skill

	viewMode        ViewMode
	actionMode      ActionMode
	focus           HomeFocus
	prompt          textarea.Model
	favoriteIndex   int
	exampleIndex    int
	settingsModal   *SettingsModal
	skillPicker     *SkillPicker
	executionTaskID string

	windowWidth      int
	windowHeight     int
	actionInProgress bool
	actionName       string
	spinnerIndex     int
	ticking          bool
	actionOutput     *ActionOutput
}

func NewModel(d Deps) Model {
	r := newRouter()
	var opts []home.Option
	if d.Now != nil {
		opts = append(opts, home.WithClock(d.Now))
	}
	ctrl := home.New(d.Store, d.Client, r, d.Catalog.Scope("home"), opts...)

	signal := newStoreSignal()
	release := d.Store.Subscribe(signal.Notify)

	skillList := d.Skills
	if len(skillList) == 0 {
		skillList = skills.FromConfig(d.Config.Skills)
	}

	return Model{
		ctrl:       ctrl,
		tasks:      d.Store,
		router:     r,
		signal:     signal,
		release:    release,
		config:     d.Config,
		configPath: d.ConfigPath,
		catalog:    d.Catalog,
		skills:     skillList,
		viewMode:   ViewModeHome,
		focus:      FocusPrompt,
		prompt:     newPromptInput(ctrl.InputPlaceholder()),
	}
}

func newPromptInput(placeholder string) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 8000
	ta.SetWidth(72)
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
	ta.Focus()
	return ta
}

// Controller exposes the home controller, mainly for the program shutdown path.
func (m Model) Controller() *home.Controller {
	return m.ctrl
}

// Close releases the store subscription and the controller's event
// subscriptions.
func (m Model) Close() {
	if m.release != nil {
		m.release()
	}
	m.ctrl.Unmount()
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(MountCmd(m.ctrl), listenStoreCmd(m.signal.ch), textarea.Blink)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = typed.Width
		m.windowHeight = typed.Height
		m.prompt.SetWidth(promptWidth(typed.Width))
		if m.settingsModal != nil {
			m.settingsModal.SetSize(typed.Width, typed.Height)
		}
		return m, nil
	case spinnerTickMsg:
		if !m.busy() {
			m.ticking = false
			return m, nil
		}
		m.spinnerIndex = (m.spinnerIndex + 1) % len(spinnerFrames)
		return m, m.spinnerTickCmd()
	case storeChangedMsg:
		m.clampFavoriteIndex()
		tick := m.startTicking()
		return m, tea.Batch(listenStoreCmd(m.signal.ch), tick)
	case focusPromptMsg:
		if !m.ctrl.TakeFocusRequest() {
			return m, nil
		}
		m = m.syncPromptFromController()
		return m.focusPrompt()
	case HomeActionComplete:
		if typed.Action != actionLoadFavorites {
			m.actionInProgress = false
			m.actionName = ""
		}
		if typed.Err != nil {
			m.actionOutput = errorOutput(typed.Action, typed.Err)
		}
		m.clampFavoriteIndex()
		m = m.syncSettingsDialog()
		if path := m.router.Take(); path != "" {
			return m.navigate(path)
		}
		return m, nil
	case TaskActionComplete:
		m.actionInProgress = false
		m.actionName = ""
		if typed.Err != nil {
			m.actionOutput = errorOutput(typed.Action, typed.Err)
		} else if typed.Action == "favorite" {
			m.actionOutput = infoOutput(m.catalog.T("execution.favorited"))
		}
		return m, nil
	case ConfigSaved:
		return m.handleConfigSaved(typed)
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.actionMode {
		case ActionModeSettings:
			return HandleSettingsKey(m, typed)
		case ActionModeSkillPicker:
			return HandleSkillPickerKey(m, typed)
		}
		// Clear action output on any key press (after reading)
		if m.actionOutput != nil && !m.actionInProgress {
			m.actionOutput = nil
		}
		if m.viewMode == ViewModeExecution {
			return HandleExecutionKey(m, typed)
		}
		return HandleHomeKey(m, typed)
	}

	if m.viewMode == ViewModeHome && m.actionMode == ActionModeNone && m.focus == FocusPrompt {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}

// startAction marks an async action as running and starts the spinner.
func (m Model) startAction(name string, cmd tea.Cmd) (Model, tea.Cmd) {
	m.actionInProgress = true
	m.actionName = name
	tick := m.startTicking()
	return m, tea.Batch(cmd, tick)
}

// navigate applies a route. Leaving the home view clears the prompt.
func (m Model) navigate(path string) (Model, tea.Cmd) {
	view, taskID, ok := parseRoute(path)
	if !ok {
		return m, nil
	}
	if m.viewMode == ViewModeHome && view != ViewModeHome {
		m.prompt.Reset()
		m.ctrl.SetPrompt("")
		m.prompt.Blur()
	}
	m.viewMode = view
	m.executionTaskID = taskID
	if view == ViewModeHome {
		var focus tea.Cmd
		m, focus = m.focusPrompt()
		return m, tea.Batch(RouteChangedCmd(m.ctrl, path), focus)
	}
	tick := m.startTicking()
	return m, tick
}

// syncSettingsDialog opens or closes the settings modal to match the
// controller's dialog state.
func (m Model) syncSettingsDialog() Model {
	state := m.ctrl.Settings()
	switch {
	case state.Open && m.actionMode != ActionModeSettings:
		modal := NewSettingsModal(state.InitialTab, m.config, m.skills, m.catalog)
		modal.SetSize(m.windowWidth, m.windowHeight)
		m.settingsModal = &modal
		m.actionMode = ActionModeSettings
		m.prompt.Blur()
	case !state.Open && m.actionMode == ActionModeSettings:
		m.settingsModal = nil
		m.actionMode = ActionModeNone
		m.focus = FocusPrompt
		m.prompt.Focus()
	}
	return m
}

func (m Model) handleConfigSaved(msg ConfigSaved) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if m.settingsModal != nil {
			m.settingsModal.err = msg.Err
			m.settingsModal.saving = false
			return m, nil
		}
		m.actionOutput = errorOutput("save settings", msg.Err)
		return m, nil
	}
	m.config = msg.Config
	if m.settingsModal != nil {
		m.settingsModal.Reload(msg.Config)
	}
	if msg.Action != "api key" {
		return m, nil
	}
	m.ctrl.SetPrompt(m.prompt.Value())
	// The controller closes the dialog before retrying the prompt.
	m.ctrl.SettingsDialogChange(false)
	m = m.syncSettingsDialog()
	m.actionOutput = infoOutput(m.catalog.T("settings.apiKeySaved"))
	return m.startAction("Starting task...", APIKeySavedCmd(m.ctrl))
}

func (m Model) View() string {
	var content string
	if m.viewMode == ViewModeExecution {
		content = RenderExecutionView(m)
	} else {
		content = RenderHomeView(m)
	}

	// Overlay action output if present
	if m.actionOutput != nil && !m.actionInProgress {
		content = RenderActionOutput(m.actionOutput, m.windowWidth) + "\n" + content
	}

	if m.actionMode == ActionModeSettings && m.settingsModal != nil {
		if modal := RenderSettingsModal(m, *m.settingsModal); modal != "" {
			content = modal
		}
	}
	if m.actionMode == ActionModeSkillPicker && m.skillPicker != nil {
		if modal := RenderSkillPicker(m, *m.skillPicker); modal != "" {
			content = modal
		}
	}

	if m.windowHeight > 1 {
		return content + "\n" + RenderBottomBar(m)
	}
	return content
}

func promptWidth(windowWidth int) int {
	w := windowWidth - 8
	if w > 100 {
		w = 100
	}
	if w < 20 {
		w = 20
	}
	return w
}
