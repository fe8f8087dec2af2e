package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/jbonatakis/accomplish/internal/config"
	"github.com/jbonatakis/accomplish/internal/logger"
	"github.com/jbonatakis/accomplish/internal/provider"
	"github.com/jbonatakis/accomplish/internal/task"
)

// ConfigLoader returns the current configuration. It is called on every
// query so provider keys saved while the app runs take effect immediately.
type ConfigLoader func() (config.Config, error)

// Client is the automation surface the home screen and CLI talk to: event
// subscriptions, mode and settings queries, and task control.
type Client struct {
	*Bus
	runner    *Runner
	load      ConfigLoader
	mockDelay time.Duration
}

type ClientOption func(*clientOptions)

type clientOptions struct {
	mockDelay time.Duration
	runner    []RunnerOption
}

// WithMockDelay sets how long the e2e provider takes to answer.
func WithMockDelay(d time.Duration) ClientOption {
	return func(o *clientOptions) { o.mockDelay = d }
}

func WithRunnerOptions(opts ...RunnerOption) ClientOption {
	return func(o *clientOptions) { o.runner = append(o.runner, opts...) }
}

func NewClient(load ConfigLoader, opts ...ClientOption) *Client {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}
	c := &Client{
		Bus:       NewBus(),
		load:      load,
		mockDelay: o.mockDelay,
	}
	c.runner = NewRunner(c.Bus, c, o.runner...)
	return c
}

// IsE2EMode reports whether tasks run against the scripted provider and
// provider readiness is skipped.
func (c *Client) IsE2EMode(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	cfg, err := c.load()
	if err != nil {
		return false, fmt.Errorf("load config: %w", err)
	}
	return cfg.E2E, nil
}

func (c *Client) GetProviderSettings(ctx context.Context) (provider.Settings, error) {
	if err := ctx.Err(); err != nil {
		return provider.Settings{}, err
	}
	cfg, err := c.load()
	if err != nil {
		return provider.Settings{}, fmt.Errorf("load config: %w", err)
	}
	return provider.SettingsFromConfig(cfg.Providers), nil
}

// Provider implements ProviderSource.
func (c *Client) Provider(ctx context.Context) (provider.Provider, error) {
	e2e, err := c.IsE2EMode(ctx)
	if err != nil {
		return nil, err
	}
	if e2e {
		logger.Debug("using scripted provider")
		return provider.NewMock(c.mockDelay), nil
	}
	settings, err := c.GetProviderSettings(ctx)
	if err != nil {
		return nil, err
	}
	name, p, err := provider.Build(settings)
	if err != nil {
		return nil, err
	}
	logger.Debug("provider selected", "provider", name)
	return p, nil
}

func (c *Client) StartTask(ctx context.Context, cfg task.Config) error {
	return c.runner.Start(ctx, cfg.TaskID, cfg.Prompt)
}

func (c *Client) InterruptTask(taskID string) error {
	return c.runner.Interrupt(taskID)
}

func (c *Client) RespondPermission(resp task.PermissionResponse) error {
	return c.runner.RespondPermission(resp)
}

// Wait blocks until all running tasks have published their terminal update.
func (c *Client) Wait() {
	c.runner.Wait()
}
