package runtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cuemby/nodemend/pkg/command"
)

// DefaultDockerBinary is the docker CLI looked up in PATH
const DefaultDockerBinary = "docker"

// CLIOptions are the global docker CLI flags. They target a remote or
// TLS-protected daemon such as a Swarm manager.
type CLIOptions struct {
	Binary string

	// Host is passed as -H when set (e.g. "tcp://:3376")
	Host string

	TLSVerify bool
	TLSCACert string
	TLSCert   string
	TLSKey    string

	// Env is added to the CLI's environment
	Env []string
}

// GlobalArgs returns the flags that precede every docker subcommand
func (o CLIOptions) GlobalArgs() []string {
	var args []string
	if o.Host != "" {
		args = append(args, "-H", o.Host)
	}
	if o.TLSVerify {
		args = append(args, "--tlsverify")
	}
	if o.TLSCACert != "" {
		args = append(args, "--tlscacert="+o.TLSCACert)
	}
	if o.TLSCert != "" {
		args = append(args, "--tlscert="+o.TLSCert)
	}
	if o.TLSKey != "" {
		args = append(args, "--tlskey="+o.TLSKey)
	}
	return args
}

// CLIRuntime drives containers through the docker command-line client
type CLIRuntime struct {
	runner command.Runner
	opts   CLIOptions
}

// NewCLIRuntime creates a docker CLI runtime
func NewCLIRuntime(runner command.Runner, opts CLIOptions) *CLIRuntime {
	if opts.Binary == "" {
		opts.Binary = DefaultDockerBinary
	}
	return &CLIRuntime{runner: runner, opts: opts}
}

func (r *CLIRuntime) command(args ...string) command.Command {
	return command.Command{
		Name: r.opts.Binary,
		Args: append(r.opts.GlobalArgs(), args...),
		Env:  r.opts.Env,
	}
}

type inspectState struct {
	State *struct {
		Running bool `json:"Running"`
	} `json:"State"`
}

// Inspect runs "docker inspect" and reads State.Running from its output.
// docker prints "[]" and exits non-zero for an unknown container.
func (r *CLIRuntime) Inspect(ctx context.Context, containerID string) (State, error) {
	result := r.runner.Run(ctx, r.command("inspect", containerID))
	if result.Err != nil {
		return State{}, fmt.Errorf("failed to inspect %s: %w", containerID, result.Err)
	}

	var items []inspectState
	if err := json.Unmarshal([]byte(result.Stdout), &items); err != nil {
		return State{}, fmt.Errorf("failed to inspect %s: %s", containerID, result.Reason())
	}
	if len(items) == 0 {
		return State{Exists: false}, nil
	}

	state := State{Exists: true}
	if items[0].State != nil {
		state.Running = items[0].State.Running
	}
	return state, nil
}

// Restart runs "docker restart"
func (r *CLIRuntime) Restart(ctx context.Context, containerID string) command.Result {
	return r.runner.Run(ctx, r.command("restart", containerID))
}

// Close is a no-op for the CLI backend
func (r *CLIRuntime) Close() error {
	return nil
}
