package command

import (
	"context"
	"sync"
)

// FakeRunner records commands and answers them from a handler.
// It is used by tests of packages that shell out.
type FakeRunner struct {
	mu      sync.Mutex
	calls   []Command
	Handler func(cmd Command) Result
}

// Run records cmd and returns the handler's result, or success if no
// handler is set
func (f *FakeRunner) Run(ctx context.Context, cmd Command) Result {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	handler := f.Handler
	f.mu.Unlock()

	if handler == nil {
		return Result{}
	}
	return handler(cmd)
}

// Calls returns a copy of the recorded commands
func (f *FakeRunner) Calls() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Command, len(f.calls))
	copy(out, f.calls)
	return out
}
