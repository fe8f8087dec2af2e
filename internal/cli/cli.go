package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jbonatakis/accomplish/internal/automation"
	"github.com/jbonatakis/accomplish/internal/config"
	"github.com/jbonatakis/accomplish/internal/i18n"
	"github.com/jbonatakis/accomplish/internal/logger"
	"github.com/jbonatakis/accomplish/internal/skills"
	"github.com/jbonatakis/accomplish/internal/store"
	"github.com/jbonatakis/accomplish/internal/taskstore"
	"github.com/jbonatakis/accomplish/internal/tui"
)

type UsageError struct {
	Message string
}

func (e UsageError) Error() string { return e.Message }

func Usage() string {
	return `accomplish: describe a task and let an assistant do it

Usage:
  accomplish                      start the interactive home screen
  accomplish run -p <prompt>      run one task and print its updates
  accomplish tasks [--limit n]    list recent tasks
  accomplish tasks show <id>      show a task and its update log
  accomplish favorites list
  accomplish favorites add <id>
  accomplish favorites remove <id>
  accomplish providers            list providers and whether they are ready
  accomplish providers set-key    store an API key

Flags:
  --config <path>   config file (default ~/.accomplish/config.yaml)
  --e2e             use the scripted provider and skip readiness checks
  --log-level <l>   debug | info | warn | error
`
}

// app holds global flags and the streams commands write to.
type app struct {
	configPath string
	e2e        bool
	logLevel   string
	mockDelay  time.Duration

	stdout io.Writer
	stderr io.Writer

	// startTUI and confirm are replaced in tests.
	startTUI func(tui.Deps) error
	confirm  func(title string, description string) (bool, error)
	keyForm  func(names []string) (providerKeyInput, error)
}

func newApp() *app {
	return &app{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		mockDelay: 500 * time.Millisecond,
		startTUI:  tui.Start,
		confirm:   confirmWithForm,
		keyForm:   providerKeyForm,
	}
}

func Run(args []string) error {
	return newApp().run(args)
}

func (a *app) run(args []string) error {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	return root.Execute()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "accomplish",
		Short:         "Describe a task and let an assistant do it",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          a.runTUI,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file path")
	root.PersistentFlags().BoolVar(&a.e2e, "e2e", false, "use the scripted provider and skip readiness checks")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Usage())
	})
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return UsageError{Message: err.Error()}
	})

	root.AddCommand(a.runCmd(), a.tasksCmd(), a.favoritesCmd(), a.providersCmd())
	for _, c := range root.Commands() {
		wrapArgs(c)
	}
	return root
}

// wrapArgs turns cobra's positional argument errors into usage errors.
func wrapArgs(cmd *cobra.Command) {
	if check := cmd.Args; check != nil {
		cmd.Args = func(c *cobra.Command, args []string) error {
			if err := check(c, args); err != nil {
				return UsageError{Message: fmt.Sprintf("%s: %v", c.CommandPath(), err)}
			}
			return nil
		}
	}
	for _, sub := range cmd.Commands() {
		wrapArgs(sub)
	}
}

// env is the wiring shared by commands that touch tasks: config, database,
// automation client and task store.
type env struct {
	configPath string
	cfg        config.Config
	db         *store.DB
	client     *automation.Client
	tasks      *taskstore.Store
}

func (a *app) loadConfig() (string, config.Config, error) {
	path, err := config.Path(a.configPath)
	if err != nil {
		return "", config.Config{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return "", config.Config{}, err
	}
	if a.e2e {
		cfg.E2E = true
	}
	if lvl := strings.TrimSpace(a.logLevel); lvl != "" {
		cfg.Log.Level = lvl
	}
	return path, cfg, nil
}

// open loads config, starts logging and opens the store. interactive keeps
// log lines off stderr so they do not draw over the TUI.
func (a *app) open(interactive bool) (*env, error) {
	path, cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	logCfg := logger.Config{Level: cfg.Log.Level, File: cfg.Log.File}
	if !interactive && a.logLevel != "" {
		logCfg.Stderr = true
	}
	if err := logger.Init(logCfg); err != nil {
		fmt.Fprintln(a.stderr, err)
	}

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		logger.Close()
		return nil, err
	}

	client := automation.NewClient(a.configLoader(path), automation.WithMockDelay(a.mockDelay))
	return &env{
		configPath: path,
		cfg:        cfg,
		db:         db,
		client:     client,
		tasks:      taskstore.New(db, client),
	}, nil
}

// configLoader re-reads the config file on each call so keys saved from the
// settings dialog apply to the next task.
func (a *app) configLoader(path string) automation.ConfigLoader {
	return func() (config.Config, error) {
		cfg, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		if a.e2e {
			cfg.E2E = true
		}
		return cfg, nil
	}
}

func (e *env) Close() {
	e.client.Wait()
	if err := e.db.Close(); err != nil {
		logger.Warn("close store", "error", err)
	}
	logger.Close()
}

func (a *app) runTUI(cmd *cobra.Command, _ []string) error {
	e, err := a.open(true)
	if err != nil {
		return err
	}
	defer e.Close()

	catalog, err := i18n.Load(e.cfg.Locale)
	if err != nil {
		return err
	}
	err = a.startTUI(tui.Deps{
		Store:      e.tasks,
		Client:     e.client,
		Config:     e.cfg,
		ConfigPath: e.configPath,
		Catalog:    catalog,
		Skills:     skills.FromConfig(e.cfg.Skills),
	})
	// Leaving the TUI stops whatever is still running. The store listens
	// again so the interrupted update is persisted.
	off := e.client.OnTaskUpdate(e.tasks.AddTaskUpdate)
	defer off()
	if ierr := e.tasks.InterruptTask(context.Background()); ierr != nil && !errors.Is(ierr, taskstore.ErrNoActiveTask) {
		logger.Warn("interrupt on exit", "error", ierr)
	}
	e.client.Wait()
	return err
}
