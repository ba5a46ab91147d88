package runtime

import (
	"context"
	"fmt"

	"github.com/cuemby/nodemend/pkg/command"
)

// State is the live status of a container as reported by the runtime.
// It is independent of the state recorded in the snapshot.
type State struct {
	Exists  bool
	Running bool
}

// Inspector queries live container state
type Inspector interface {
	// Inspect looks up a container by ID or name. A container that does not
	// exist is reported as State{Exists: false} with a nil error; errors are
	// reserved for failures to talk to the runtime.
	Inspect(ctx context.Context, containerID string) (State, error)
}

// Controller changes container state
type Controller interface {
	// Restart restarts a container regardless of its state
	Restart(ctx context.Context, containerID string) command.Result
}

// Runtime is a container runtime backend
type Runtime interface {
	Inspector
	Controller
	Close() error
}

// Backend names a runtime implementation
type Backend string

const (
	BackendCLI        Backend = "cli"
	BackendAPI        Backend = "api"
	BackendContainerd Backend = "containerd"
)

// Config selects and configures a runtime backend
type Config struct {
	Backend Backend

	// CLI backend
	CLI CLIOptions

	// API backend; empty means DOCKER_HOST from the environment
	DockerHost string

	// containerd backend
	ContainerdSocket    string
	ContainerdNamespace string
}

// New creates the runtime selected by cfg.Backend
func New(cfg Config, runner command.Runner) (Runtime, error) {
	switch cfg.Backend {
	case BackendCLI, "":
		return NewCLIRuntime(runner, cfg.CLI), nil
	case BackendAPI:
		return NewDockerRuntime(cfg.DockerHost)
	case BackendContainerd:
		return NewContainerdRuntime(cfg.ContainerdSocket, cfg.ContainerdNamespace)
	}
	return nil, fmt.Errorf("unknown runtime backend: %q", cfg.Backend)
}

// failed wraps an API error into a command Result so every backend reports
// restarts the same way
func failed(err error) command.Result {
	return command.Result{ExitCode: -1, Err: err}
}
