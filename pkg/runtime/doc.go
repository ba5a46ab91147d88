/*
Package runtime inspects and restarts the containers recorded in the cluster
snapshot.

Recovery needs two things from a container runtime: whether a container
exists and runs, and a way to restart it. Three backends provide them:

	┌──────────────────────── runtime.Runtime ─────────────────────────┐
	│   Inspect(ctx, id) (State, error)   Restart(ctx, id) Result     │
	└──────┬────────────────────────┬─────────────────────────┬────────┘
	       │                        │                         │
	┌──────▼────────┐      ┌────────▼─────────┐     ┌─────────▼─────────┐
	│  CLIRuntime   │      │  DockerRuntime   │     │ ContainerdRuntime │
	│ docker inspect│      │ Engine API       │     │ containerd client │
	│ docker restart│      │ (docker/client)  │     │ namespace "moby"  │
	└───────────────┘      └──────────────────┘     └───────────────────┘

# Backends

cli (default) runs the docker command through command.Runner. Global flags
such as -H tcp://:3376 and --tlsverify with client certificates target a
remote or swarm-managed daemon:

	rt := runtime.NewCLIRuntime(command.NewExecRunner(), runtime.CLIOptions{
		Host:      "tcp://:3376",
		TLSVerify: true,
		TLSCACert: "/opt/gluu/docker/certs/ca.pem",
		TLSCert:   "/opt/gluu/docker/certs/cert.pem",
		TLSKey:    "/opt/gluu/docker/certs/key.pem",
	})

api talks to the Docker Engine API directly. An empty host means the
DOCKER_HOST environment, and the API version is negotiated.

containerd bypasses dockerd and works on containerd's view of the same
containers, which live in the "moby" namespace:
  - Socket: /run/containerd/containerd.sock
  - A container without a task exists but is stopped
  - Restart: SIGTERM, SIGKILL after 10s, delete task, create and start a
    new one

# Inspect semantics

A container that does not exist is State{Exists: false} with a nil error.
Errors mean the runtime could not be asked: daemon down, permission denied,
unparseable output. Callers treat them differently: the readiness gate
counts an error as "not running", recovery skips the container.

# Restart results

Restart returns a command.Result for every backend so failures are logged
the same way. API backends fill Err and ExitCode -1.
*/
package runtime
