// Package sync bridges the capture pipeline into the Bubble Tea runtime.
package sync

import (
	gosync "sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/toastcenter/internal/capture"
)

// CaptureMsg is a tea.Msg sent for every notification the pipeline stored.
type CaptureMsg struct {
	Captured capture.Captured
}

// StoppedMsg is a tea.Msg sent once the pipeline has returned.
type StoppedMsg struct {
	Err error
}

// StateFunc reports the pipeline lifecycle state.
type StateFunc func() capture.State

// Feed delivers captured notifications to the UI one message at a time.
type Feed struct {
	captures <-chan capture.Captured
	state    StateFunc

	mu      gosync.Mutex
	stopped bool
	err     error
}

// New creates a Feed reading from captures. state may be nil.
func New(captures <-chan capture.Captured, state StateFunc) *Feed {
	return &Feed{captures: captures, state: state}
}

// ForPipeline creates a Feed over a pipeline's capture channel.
func ForPipeline(p *capture.Pipeline) *Feed {
	return New(p.Captures(), p.State)
}

// WaitForNext returns a tea.Cmd that waits for the next capture. It must
// be re-issued after every CaptureMsg to keep listening.
func (f *Feed) WaitForNext() tea.Cmd {
	if f == nil || f.captures == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-f.captures
		if !ok {
			return nil
		}
		return CaptureMsg{Captured: c}
	}
}

// MarkStopped records how the pipeline ended and returns the message to
// hand to the program.
func (f *Feed) MarkStopped(err error) StoppedMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	f.err = err
	return StoppedMsg{Err: err}
}

// Status returns a short string describing the capture state.
func (f *Feed) Status() string {
	if f == nil {
		return "no listener"
	}
	f.mu.Lock()
	stopped, err := f.stopped, f.err
	f.mu.Unlock()

	if stopped {
		if err != nil {
			return "capture stopped"
		}
		return "listener closed"
	}
	if f.state == nil {
		return "listening"
	}
	switch s := f.state(); s {
	case capture.StateRunning:
		return "listening"
	default:
		return s.String()
	}
}
