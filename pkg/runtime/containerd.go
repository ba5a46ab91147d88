package runtime

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"github.com/containerd/containerd"
	"github.com/containerd/containerd/cio"
	"github.com/containerd/containerd/errdefs"
	"github.com/containerd/containerd/namespaces"
	"github.com/cuemby/nodemend/pkg/command"
)

const (
	// DefaultNamespace is the containerd namespace dockerd places its
	// containers in
	DefaultNamespace = "moby"

	// DefaultSocketPath is the default containerd socket
	DefaultSocketPath = "/run/containerd/containerd.sock"

	// DefaultStopTimeout is how long a task gets to exit after SIGTERM
	DefaultStopTimeout = 10 * time.Second
)

// ContainerdRuntime inspects and restarts containers through containerd
type ContainerdRuntime struct {
	client      *containerd.Client
	namespace   string
	stopTimeout time.Duration
}

// NewContainerdRuntime creates a new containerd runtime client
func NewContainerdRuntime(socketPath, namespace string) (*ContainerdRuntime, error) {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	client, err := containerd.New(socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to containerd: %w", err)
	}

	return &ContainerdRuntime{
		client:      client,
		namespace:   namespace,
		stopTimeout: DefaultStopTimeout,
	}, nil
}

// Close closes the containerd client connection
func (r *ContainerdRuntime) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// Inspect reports whether the container exists and its task is running
func (r *ContainerdRuntime) Inspect(ctx context.Context, containerID string) (State, error) {
	ctx = namespaces.WithNamespace(ctx, r.namespace)

	container, err := r.client.LoadContainer(ctx, containerID)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return State{Exists: false}, nil
		}
		return State{}, fmt.Errorf("failed to load container %s: %w", containerID, err)
	}

	task, err := container.Task(ctx, nil)
	if err != nil {
		// No task means container is not running
		return State{Exists: true}, nil
	}

	status, err := task.Status(ctx)
	if err != nil {
		return State{}, fmt.Errorf("failed to get task status: %w", err)
	}

	return State{
		Exists:  true,
		Running: status.Status == containerd.Running || status.Status == containerd.Paused,
	}, nil
}

// Restart stops the container's task if one exists and starts a new one
func (r *ContainerdRuntime) Restart(ctx context.Context, containerID string) command.Result {
	ctx = namespaces.WithNamespace(ctx, r.namespace)

	container, err := r.client.LoadContainer(ctx, containerID)
	if err != nil {
		return failed(fmt.Errorf("failed to load container %s: %w", containerID, err))
	}

	if err := r.stopTask(ctx, container); err != nil {
		return failed(err)
	}

	task, err := container.NewTask(ctx, cio.NullIO)
	if err != nil {
		return failed(fmt.Errorf("failed to create task: %w", err))
	}

	if err := task.Start(ctx); err != nil {
		_, _ = task.Delete(ctx)
		return failed(fmt.Errorf("failed to start task: %w", err))
	}

	return command.Result{}
}

// stopTask terminates and deletes the container's current task, if any
func (r *ContainerdRuntime) stopTask(ctx context.Context, container containerd.Container) error {
	task, err := container.Task(ctx, nil)
	if err != nil {
		// Task might not exist (container not running)
		return nil
	}

	status, err := task.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get task status: %w", err)
	}

	if status.Status != containerd.Stopped {
		stopCtx, cancel := context.WithTimeout(ctx, r.stopTimeout)
		defer cancel()

		statusC, err := task.Wait(stopCtx)
		if err != nil {
			return fmt.Errorf("failed to wait for task: %w", err)
		}

		// Try graceful shutdown first (SIGTERM)
		if err := task.Kill(stopCtx, syscall.SIGTERM); err != nil {
			return fmt.Errorf("failed to kill task: %w", err)
		}

		select {
		case <-statusC:
		case <-stopCtx.Done():
			// Timeout - force kill (SIGKILL)
			killC, err := task.Wait(ctx)
			if err != nil {
				return fmt.Errorf("failed to wait for task: %w", err)
			}
			if err := task.Kill(ctx, syscall.SIGKILL); err != nil {
				return fmt.Errorf("failed to force kill task: %w", err)
			}
			<-killC
		}
	}

	if _, err := task.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}
