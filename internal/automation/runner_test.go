package automation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jbonatakis/accomplish/internal/provider"
	"github.com/jbonatakis/accomplish/internal/task"
)

type staticSource struct {
	p   provider.Provider
	err error
}

func (s staticSource) Provider(context.Context) (provider.Provider, error) {
	return s.p, s.err
}

// blockingProvider waits for cancellation or release.
type blockingProvider struct {
	started chan struct{}
	release chan struct{}
}

func newBlockingProvider() *blockingProvider {
	return &blockingProvider{started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (b *blockingProvider) Complete(ctx context.Context, prompt string) (string, error) {
	b.started <- struct{}{}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-b.release:
		return "done", nil
	}
}

type failingProvider struct{}

func (failingProvider) Complete(context.Context, string) (string, error) {
	return "", errors.New("rate limited")
}

type recorder struct {
	mu       sync.Mutex
	updates  []task.Update
	requests chan task.PermissionRequest
}

func record(bus *Bus) *recorder {
	r := &recorder{requests: make(chan task.PermissionRequest, 4)}
	bus.OnTaskUpdate(func(u task.Update) {
		r.mu.Lock()
		r.updates = append(r.updates, u)
		r.mu.Unlock()
	})
	bus.OnPermissionRequest(func(req task.PermissionRequest) { r.requests <- req })
	return r
}

func (r *recorder) snapshot() []task.Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]task.Update(nil), r.updates...)
}

func (r *recorder) last() task.Update {
	all := r.snapshot()
	if len(all) == 0 {
		return task.Update{}
	}
	return all[len(all)-1]
}

func TestRunnerCompletesTask(t *testing.T) {
	bus := NewBus()
	rec := record(bus)
	runner := NewRunner(bus, staticSource{p: provider.NewMock(0)}, WithPermissionPolicy(nil))

	if err := runner.Start(context.Background(), "task_1", "plan my week"); err != nil {
		t.Fatalf("start: %v", err)
	}
	runner.Wait()

	got := rec.snapshot()
	if len(got) != 3 {
		t.Fatalf("updates = %#v", got)
	}
	if got[0].Status != task.StatusRunning || got[1].Type != task.UpdateMessage {
		t.Fatalf("updates = %#v", got)
	}
	if got[2].Type != task.UpdateComplete || got[2].Message != "Completed: plan my week" {
		t.Fatalf("final = %#v", got[2])
	}
	if runner.Running("task_1") {
		t.Fatalf("task still running after completion")
	}
}

func TestRunnerInterrupt(t *testing.T) {
	bus := NewBus()
	rec := record(bus)
	p := newBlockingProvider()
	runner := NewRunner(bus, staticSource{p: p}, WithPermissionPolicy(nil))

	if err := runner.Start(context.Background(), "task_1", "long job"); err != nil {
		t.Fatalf("start: %v", err)
	}
	<-p.started

	if err := runner.Start(context.Background(), "task_1", "again"); !errors.Is(err, ErrTaskRunning) {
		t.Fatalf("second start err = %v, want ErrTaskRunning", err)
	}
	if err := runner.Interrupt("task_1"); err != nil {
		t.Fatalf("interrupt: %v", err)
	}
	runner.Wait()

	final := rec.last()
	if final.Type != task.UpdateError || final.Status != task.StatusInterrupted {
		t.Fatalf("final = %#v", final)
	}
	if err := runner.Interrupt("task_1"); !errors.Is(err, ErrUnknownTask) {
		t.Fatalf("interrupt finished task err = %v", err)
	}
}

func TestRunnerProviderFailure(t *testing.T) {
	bus := NewBus()
	rec := record(bus)
	runner := NewRunner(bus, staticSource{p: failingProvider{}}, WithPermissionPolicy(nil))

	if err := runner.Start(context.Background(), "task_1", "x"); err != nil {
		t.Fatalf("start: %v", err)
	}
	runner.Wait()
	final := rec.last()
	if final.Status != task.StatusFailed || final.Message != "rate limited" {
		t.Fatalf("final = %#v", final)
	}
}

func TestRunnerStartWithoutProvider(t *testing.T) {
	runner := NewRunner(NewBus(), staticSource{err: provider.ErrNoReadyProvider})
	err := runner.Start(context.Background(), "task_1", "x")
	if !errors.Is(err, provider.ErrNoReadyProvider) {
		t.Fatalf("err = %v, want ErrNoReadyProvider", err)
	}
	if runner.Running("task_1") {
		t.Fatalf("task registered despite failed start")
	}
}

func TestRunnerPermissionAllowed(t *testing.T) {
	bus := NewBus()
	rec := record(bus)
	runner := NewRunner(bus, staticSource{p: provider.NewMock(0)})

	if err := runner.Start(context.Background(), "task_1", "Delete old newsletters"); err != nil {
		t.Fatalf("start: %v", err)
	}
	req := waitRequest(t, rec)
	if req.TaskID != "task_1" || req.Operation != "delete" || req.ID == "" {
		t.Fatalf("request = %#v", req)
	}
	if err := runner.RespondPermission(task.PermissionResponse{RequestID: req.ID, Allowed: true}); err != nil {
		t.Fatalf("respond: %v", err)
	}
	runner.Wait()

	if final := rec.last(); final.Type != task.UpdateComplete {
		t.Fatalf("final = %#v", final)
	}
	if err := runner.RespondPermission(task.PermissionResponse{RequestID: req.ID}); !errors.Is(err, ErrUnknownTask) {
		t.Fatalf("second respond err = %v", err)
	}
}

func TestRunnerPermissionDenied(t *testing.T) {
	bus := NewBus()
	rec := record(bus)
	runner := NewRunner(bus, staticSource{p: provider.NewMock(0)})

	if err := runner.Start(context.Background(), "task_1", "send the invoice"); err != nil {
		t.Fatalf("start: %v", err)
	}
	req := waitRequest(t, rec)
	if err := runner.RespondPermission(task.PermissionResponse{RequestID: req.ID, Allowed: false}); err != nil {
		t.Fatalf("respond: %v", err)
	}
	runner.Wait()

	final := rec.last()
	if final.Type != task.UpdateError || final.Status != task.StatusFailed {
		t.Fatalf("final = %#v", final)
	}
	for _, u := range rec.snapshot() {
		if u.Type == task.UpdateMessage {
			t.Fatalf("denied task should not start work: %#v", u)
		}
	}
}

func TestRunnerInterruptWhileWaitingForPermission(t *testing.T) {
	bus := NewBus()
	rec := record(bus)
	runner := NewRunner(bus, staticSource{p: provider.NewMock(0)})

	if err := runner.Start(context.Background(), "task_1", "buy tickets"); err != nil {
		t.Fatalf("start: %v", err)
	}
	req := waitRequest(t, rec)
	if err := runner.Interrupt("task_1"); err != nil {
		t.Fatalf("interrupt: %v", err)
	}
	runner.Wait()

	if final := rec.last(); final.Status != task.StatusInterrupted {
		t.Fatalf("final = %#v", final)
	}
	if err := runner.RespondPermission(task.PermissionResponse{RequestID: req.ID, Allowed: true}); !errors.Is(err, ErrUnknownTask) {
		t.Fatalf("respond after interrupt err = %v", err)
	}
}

func TestDefaultPermissionPolicy(t *testing.T) {
	if _, needed := DefaultPermissionPolicy("summarize my inbox"); needed {
		t.Fatalf("summarize should not need permission")
	}
	if op, needed := DefaultPermissionPolicy("Please SEND, the report"); !needed || op != "send" {
		t.Fatalf("op=%q needed=%v", op, needed)
	}
	if _, needed := DefaultPermissionPolicy("check the sender list"); needed {
		t.Fatalf("partial word should not match")
	}
}

func waitRequest(t *testing.T, rec *recorder) task.PermissionRequest {
	t.Helper()
	select {
	case req := <-rec.requests:
		return req
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for permission request")
	}
	return task.PermissionRequest{}
}
