package automation

import (
	"testing"

	"github.com/jbonatakis/accomplish/internal/task"
)

func TestBusDeliversUntilUnsubscribed(t *testing.T) {
	bus := NewBus()
	var got []task.Update
	unsubscribe := bus.OnTaskUpdate(func(u task.Update) { got = append(got, u) })

	bus.PublishTaskUpdate(task.Update{TaskID: "task_1", Type: task.UpdateMessage, Message: "a"})
	unsubscribe()
	bus.PublishTaskUpdate(task.Update{TaskID: "task_1", Type: task.UpdateMessage, Message: "b"})

	if len(got) != 1 || got[0].Message != "a" {
		t.Fatalf("updates = %#v", got)
	}
	if n := bus.Subscribers(); n != 0 {
		t.Fatalf("subscribers = %d, want 0", n)
	}
	unsubscribe()
}

func TestBusSeparatesEventTypes(t *testing.T) {
	bus := NewBus()
	updates, requests := 0, 0
	offUpdates := bus.OnTaskUpdate(func(task.Update) { updates++ })
	offRequests := bus.OnPermissionRequest(func(task.PermissionRequest) { requests++ })
	defer offUpdates()

	bus.PublishPermissionRequest(task.PermissionRequest{ID: "r1"})
	if updates != 0 || requests != 1 {
		t.Fatalf("updates=%d requests=%d", updates, requests)
	}

	offRequests()
	bus.PublishPermissionRequest(task.PermissionRequest{ID: "r2"})
	bus.PublishTaskUpdate(task.Update{TaskID: "task_1"})
	if updates != 1 || requests != 1 {
		t.Fatalf("updates=%d requests=%d", updates, requests)
	}
}

func TestBusRecoversHandlerPanic(t *testing.T) {
	bus := NewBus()
	calls := 0
	defer bus.OnTaskUpdate(func(task.Update) { panic("boom") })()
	defer bus.OnTaskUpdate(func(task.Update) { calls++ })()

	bus.PublishTaskUpdate(task.Update{TaskID: "task_1"})
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}
