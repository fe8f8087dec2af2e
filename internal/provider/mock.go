package provider

import (
	"context"
	"time"
)

// MockName is the scripted provider used in e2e mode.
const MockName = "mock"

func init() {
	RegisterProvider(MockName, Registration{
		Label:        "Mock",
		DefaultModel: "scripted",
		Internal:     true,
		Constructor: func(ConnectedProvider) (Provider, error) {
			return NewMock(0), nil
		},
	})
}

// Mock answers every prompt with a fixed transcript after an optional delay.
// The delay honors cancellation so interrupts can be exercised.
type Mock struct {
	Delay time.Duration
}

func NewMock(delay time.Duration) *Mock {
	return &Mock{Delay: delay}
}

func (m *Mock) Complete(ctx context.Context, prompt string) (string, error) {
	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return "", err
	}
	return "Completed: " + prompt, nil
}
