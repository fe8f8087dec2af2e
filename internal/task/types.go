// Package task holds the task, update, permission and favorite types shared
// by the store, the automation client and the home screen.
package task

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

type Status string

const (
	StatusQueued            Status = "queued"
	StatusRunning           Status = "running"
	StatusWaitingPermission Status = "waiting_permission"
	StatusCompleted         Status = "completed"
	StatusFailed            Status = "failed"
	StatusInterrupted       Status = "interrupted"
)

// Terminal reports whether no further updates are expected for a task in s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusInterrupted:
		return true
	default:
		return false
	}
}

type Task struct {
	ID        string
	Prompt    string
	Status    Status
	Summary   string
	Result    string
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Config is the request to start a task.
type Config struct {
	TaskID string
	Prompt string
}

// NewID derives a task id from the given time, e.g. task_1718000000000.
func NewID(now time.Time) string {
	return fmt.Sprintf("task_%d", now.UnixMilli())
}

type UpdateType string

const (
	UpdateStatus   UpdateType = "status"
	UpdateMessage  UpdateType = "message"
	UpdateComplete UpdateType = "complete"
	UpdateError    UpdateType = "error"
)

// Update is one event in a task's stream.
type Update struct {
	TaskID  string
	Type    UpdateType
	Status  Status
	Message string
	At      time.Time
}

// Terminal reports whether u ends its task's stream.
func (u Update) Terminal() bool {
	return u.Type == UpdateComplete || u.Type == UpdateError || u.Status.Terminal()
}

// PermissionRequest asks the user to approve an operation a task wants to run.
type PermissionRequest struct {
	ID        string
	TaskID    string
	Operation string
	Detail    string
	CreatedAt time.Time
}

type PermissionResponse struct {
	RequestID string
	Allowed   bool
}

// Favorite is a saved prompt the user can re-run.
type Favorite struct {
	TaskID    string
	Prompt    string
	Summary   string
	CreatedAt time.Time
}

const favoriteLabelLimit = 60

// Label is the summary when present, otherwise the prompt, cut to 60 runes
// with an ellipsis.
func (f Favorite) Label() string {
	text := strings.TrimSpace(f.Summary)
	if text == "" {
		text = f.Prompt
	}
	if utf8.RuneCountInString(text) <= favoriteLabelLimit {
		return text
	}
	runes := []rune(text)
	return string(runes[:favoriteLabelLimit]) + "…"
}
