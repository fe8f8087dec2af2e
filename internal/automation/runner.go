package automation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/jbonatakis/accomplish/internal/logger"
	"github.com/jbonatakis/accomplish/internal/provider"
	"github.com/jbonatakis/accomplish/internal/task"
)

var (
	ErrTaskRunning = errors.New("task already running")
	ErrUnknownTask = errors.New("unknown task")
)

const interruptedMessage = "Task interrupted"

// ProviderSource resolves the provider a new task runs against.
type ProviderSource interface {
	Provider(ctx context.Context) (provider.Provider, error)
}

// PermissionPolicy decides whether prompt needs the user's approval before
// it runs. It returns the operation to show in the request.
type PermissionPolicy func(prompt string) (operation string, needed bool)

var sensitiveVerbs = map[string]bool{
	"delete": true, "remove": true, "send": true, "pay": true,
	"purchase": true, "buy": true, "unsubscribe": true,
}

// DefaultPermissionPolicy asks before prompts that delete, send or spend.
func DefaultPermissionPolicy(prompt string) (string, bool) {
	words := strings.FieldsFunc(strings.ToLower(prompt), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if sensitiveVerbs[w] {
			return w, true
		}
	}
	return "", false
}

type Runner struct {
	bus      *Bus
	source   ProviderSource
	policy   PermissionPolicy
	now      func() time.Time
	mu       sync.Mutex
	runs     map[string]*run
	requests map[string]*run
	wg       sync.WaitGroup
}

type run struct {
	taskID string
	cancel context.CancelFunc
	answer chan bool
}

type RunnerOption func(*Runner)

// WithPermissionPolicy replaces DefaultPermissionPolicy. A nil policy never
// asks.
func WithPermissionPolicy(p PermissionPolicy) RunnerOption {
	return func(r *Runner) { r.policy = p }
}

func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

func NewRunner(bus *Bus, source ProviderSource, opts ...RunnerOption) *Runner {
	r := &Runner{
		bus:      bus,
		source:   source,
		policy:   DefaultPermissionPolicy,
		now:      time.Now,
		runs:     map[string]*run{},
		requests: map[string]*run{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start resolves a provider and runs prompt in the background. Updates are
// published to the bus until a terminal update ends the stream.
func (r *Runner) Start(ctx context.Context, taskID string, prompt string) error {
	if strings.TrimSpace(taskID) == "" {
		return fmt.Errorf("start task: empty task id")
	}
	r.mu.Lock()
	if _, ok := r.runs[taskID]; ok {
		r.mu.Unlock()
		return fmt.Errorf("start task %s: %w", taskID, ErrTaskRunning)
	}
	r.mu.Unlock()

	p, err := r.source.Provider(ctx)
	if err != nil {
		return fmt.Errorf("start task %s: %w", taskID, err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	rn := &run{taskID: taskID, cancel: cancel, answer: make(chan bool, 1)}

	r.mu.Lock()
	if _, ok := r.runs[taskID]; ok {
		r.mu.Unlock()
		cancel()
		return fmt.Errorf("start task %s: %w", taskID, ErrTaskRunning)
	}
	r.runs[taskID] = rn
	r.mu.Unlock()

	logger.Info("task started", "task", taskID)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()
		r.execute(runCtx, rn, p, prompt)
	}()
	return nil
}

// Interrupt cancels a running task. The task publishes its own interrupted
// update once it stops.
func (r *Runner) Interrupt(taskID string) error {
	r.mu.Lock()
	rn, ok := r.runs[taskID]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("interrupt %s: %w", taskID, ErrUnknownTask)
	}
	logger.Info("task interrupt requested", "task", taskID)
	rn.cancel()
	return nil
}

// RespondPermission answers a pending permission request.
func (r *Runner) RespondPermission(resp task.PermissionResponse) error {
	r.mu.Lock()
	rn, ok := r.requests[resp.RequestID]
	if ok {
		delete(r.requests, resp.RequestID)
	}
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("permission %s: %w", resp.RequestID, ErrUnknownTask)
	}
	rn.answer <- resp.Allowed
	return nil
}

// Running reports whether taskID has not yet published its terminal update.
func (r *Runner) Running(taskID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.runs[taskID]
	return ok
}

// Wait blocks until every started task has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) execute(ctx context.Context, rn *run, p provider.Provider, prompt string) {
	r.publish(rn.taskID, task.UpdateStatus, task.StatusRunning, "")

	if r.policy != nil {
		if op, needed := r.policy(prompt); needed {
			allowed, err := r.askPermission(ctx, rn, op, prompt)
			if err != nil {
				r.finish(rn, task.UpdateError, task.StatusInterrupted, interruptedMessage)
				return
			}
			if !allowed {
				r.finish(rn, task.UpdateError, task.StatusFailed, fmt.Sprintf("Permission to %s was denied", op))
				return
			}
			r.publish(rn.taskID, task.UpdateStatus, task.StatusRunning, "")
		}
	}

	r.publish(rn.taskID, task.UpdateMessage, "", "Working on: "+prompt)
	result, err := p.Complete(ctx, prompt)
	switch {
	case ctx.Err() != nil:
		r.finish(rn, task.UpdateError, task.StatusInterrupted, interruptedMessage)
	case err != nil:
		logger.Warn("task failed", "task", rn.taskID, "error", err)
		r.finish(rn, task.UpdateError, task.StatusFailed, err.Error())
	default:
		r.finish(rn, task.UpdateComplete, task.StatusCompleted, result)
	}
}

func (r *Runner) askPermission(ctx context.Context, rn *run, op string, prompt string) (bool, error) {
	req := task.PermissionRequest{
		ID:        uuid.NewString(),
		TaskID:    rn.taskID,
		Operation: op,
		Detail:    prompt,
		CreatedAt: r.now(),
	}
	r.mu.Lock()
	r.requests[req.ID] = rn
	r.mu.Unlock()

	r.publish(rn.taskID, task.UpdateStatus, task.StatusWaitingPermission, "")
	logger.Debug("permission requested", "task", rn.taskID, "request", req.ID, "operation", op)
	r.bus.PublishPermissionRequest(req)

	select {
	case allowed := <-rn.answer:
		return allowed, nil
	case <-ctx.Done():
		r.mu.Lock()
		delete(r.requests, req.ID)
		r.mu.Unlock()
		return false, ctx.Err()
	}
}

// finish drops the run before publishing so a terminal update is never seen
// while the task still counts as running.
func (r *Runner) finish(rn *run, typ task.UpdateType, status task.Status, msg string) {
	r.mu.Lock()
	delete(r.runs, rn.taskID)
	r.mu.Unlock()
	logger.Info("task finished", "task", rn.taskID, "status", status)
	r.publish(rn.taskID, typ, status, msg)
}

func (r *Runner) publish(taskID string, typ task.UpdateType, status task.Status, msg string) {
	r.bus.PublishTaskUpdate(task.Update{
		TaskID:  taskID,
		Type:    typ,
		Status:  status,
		Message: msg,
		At:      r.now(),
	})
}
