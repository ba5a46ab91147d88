package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/cuemby/nodemend/pkg/command"
	"github.com/docker/docker/api/types/container"
	dockerclient "github.com/docker/docker/client"
)

// dockerAPI is the subset of the Docker Engine client used here
type dockerAPI interface {
	ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error)
	ContainerRestart(ctx context.Context, containerID string, options container.StopOptions) error
	Close() error
}

// DockerRuntime talks to the Docker Engine API directly
type DockerRuntime struct {
	client dockerAPI
}

// NewDockerRuntime connects to the daemon at host, or to the one named by
// DOCKER_HOST when host is empty
func NewDockerRuntime(host string) (*DockerRuntime, error) {
	opts := []dockerclient.Opt{dockerclient.WithAPIVersionNegotiation()}
	if host == "" {
		opts = append(opts, dockerclient.FromEnv)
	} else {
		if !strings.Contains(host, "://") {
			host = "unix://" + host
		}
		opts = append(opts, dockerclient.WithHost(host))
	}

	client, err := dockerclient.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}
	return &DockerRuntime{client: client}, nil
}

// Inspect returns the container's live state
func (r *DockerRuntime) Inspect(ctx context.Context, containerID string) (State, error) {
	info, err := r.client.ContainerInspect(ctx, containerID)
	if err != nil {
		if dockerclient.IsErrNotFound(err) {
			return State{Exists: false}, nil
		}
		return State{}, fmt.Errorf("failed to inspect %s: %w", containerID, err)
	}

	state := State{Exists: true}
	if info.ContainerJSONBase != nil && info.State != nil {
		state.Running = info.State.Running
	}
	return state, nil
}

// Restart restarts the container with the daemon's default stop timeout
func (r *DockerRuntime) Restart(ctx context.Context, containerID string) command.Result {
	if err := r.client.ContainerRestart(ctx, containerID, container.StopOptions{}); err != nil {
		return failed(fmt.Errorf("failed to restart %s: %w", containerID, err))
	}
	return command.Result{}
}

// Close closes the client connection
func (r *DockerRuntime) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
