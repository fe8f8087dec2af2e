package tui

import (
	"strings"
	"sync"

	"github.com/jbonatakis/accomplish/internal/home"
)

// router records navigation requests made from command goroutines. The
// model applies them when the command's result message arrives.
type router struct {
	mu      sync.Mutex
	pending string
}

func newRouter() *router {
	return &router{}
}

func (r *router) Navigate(path string) {
	r.mu.Lock()
	r.pending = path
	r.mu.Unlock()
}

// Take returns and clears the pending path.
func (r *router) Take() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	path := r.pending
	r.pending = ""
	return path
}

const executionPrefix = "/execution/"

// parseRoute splits a path into the view it selects and, for the execution
// view, the task id.
func parseRoute(path string) (ViewMode, string, bool) {
	switch {
	case path == home.HomePath:
		return ViewModeHome, "", true
	case strings.HasPrefix(path, executionPrefix):
		id := strings.TrimPrefix(path, executionPrefix)
		if id == "" {
			return ViewModeHome, "", false
		}
		return ViewModeExecution, id, true
	default:
		return ViewModeHome, "", false
	}
}
