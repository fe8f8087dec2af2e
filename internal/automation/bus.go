// Package automation runs tasks in-process and publishes their updates and
// permission requests to subscribers.
package automation

import (
	"sync"

	"github.com/google/uuid"

	"github.com/jbonatakis/accomplish/internal/logger"
	"github.com/jbonatakis/accomplish/internal/task"
)

type (
	TaskUpdateHandler        = func(task.Update)
	PermissionRequestHandler = func(task.PermissionRequest)
)

// Bus fans task events out to subscribers. Handlers run synchronously on the
// publishing goroutine, in no particular order, so a task's updates reach
// each handler in the order they were published.
type Bus struct {
	mu          sync.RWMutex
	updates     map[string]TaskUpdateHandler
	permissions map[string]PermissionRequestHandler
}

func NewBus() *Bus {
	return &Bus{
		updates:     map[string]TaskUpdateHandler{},
		permissions: map[string]PermissionRequestHandler{},
	}
}

// OnTaskUpdate registers h and returns a func that removes it. The returned
// func is safe to call more than once.
func (b *Bus) OnTaskUpdate(h TaskUpdateHandler) func() {
	id := uuid.NewString()
	b.mu.Lock()
	b.updates[id] = h
	b.mu.Unlock()
	logger.Debug("subscription added", "id", id, "event", "task_update")
	return func() { b.remove(id) }
}

// OnPermissionRequest registers h and returns a func that removes it.
func (b *Bus) OnPermissionRequest(h PermissionRequestHandler) func() {
	id := uuid.NewString()
	b.mu.Lock()
	b.permissions[id] = h
	b.mu.Unlock()
	logger.Debug("subscription added", "id", id, "event", "permission_request")
	return func() { b.remove(id) }
}

func (b *Bus) remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, u := b.updates[id]
	_, p := b.permissions[id]
	if !u && !p {
		return
	}
	delete(b.updates, id)
	delete(b.permissions, id)
	logger.Debug("subscription removed", "id", id)
}

func (b *Bus) PublishTaskUpdate(u task.Update) {
	b.mu.RLock()
	handlers := make([]TaskUpdateHandler, 0, len(b.updates))
	for _, h := range b.updates {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		dispatch("task_update", func() { h(u) })
	}
}

func (b *Bus) PublishPermissionRequest(req task.PermissionRequest) {
	b.mu.RLock()
	handlers := make([]PermissionRequestHandler, 0, len(b.permissions))
	for _, h := range b.permissions {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		dispatch("permission_request", func() { h(req) })
	}
}

// Subscribers reports the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.updates) + len(b.permissions)
}

func dispatch(event string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("handler panic", "event", event, "panic", r)
		}
	}()
	fn()
}
