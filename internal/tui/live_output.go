package tui

import tea "github.com/charmbracelet/bubbletea"

// storeChangedMsg tells the model the task store changed and the view needs
// a redraw.
type storeChangedMsg struct{}

// storeSignal coalesces store notifications into a channel the program
// listens on. Notifications that arrive while one is pending are dropped.
type storeSignal struct {
	ch chan struct{}
}

func newStoreSignal() *storeSignal {
	return &storeSignal{ch: make(chan struct{}, 1)}
}

func (s *storeSignal) Notify() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

func listenStoreCmd(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		<-ch
		return storeChangedMsg{}
	}
}
