package overlay

import (
	"context"
	"strings"

	"github.com/cuemby/nodemend/pkg/command"
)

const (
	// DefaultWeaveBinary is the weave script looked up in PATH
	DefaultWeaveBinary = "weave"

	// DefaultDNSDomain is the overlay's internal DNS domain
	DefaultDNSDomain = "weave.local"
)

// DefaultComponents are the weave containers that must run before any
// container is reattached: router, docker API proxy and network plugin
var DefaultComponents = []string{"weave", "weaveproxy", "weaveplugin"}

// Network manages container membership in the overlay network and its DNS
type Network interface {
	// DNSAdd registers hostname for the container in overlay DNS
	DNSAdd(ctx context.Context, containerID, hostname string) command.Result

	// Detach removes the container from the overlay network
	Detach(ctx context.Context, containerID string) command.Result
}

// Options configure the weave CLI
type Options struct {
	Binary string
	Env    []string
}

// Weave drives the overlay through the weave command-line script
type Weave struct {
	runner command.Runner
	opts   Options
}

// NewWeave creates a weave CLI client
func NewWeave(runner command.Runner, opts Options) *Weave {
	if opts.Binary == "" {
		opts.Binary = DefaultWeaveBinary
	}
	return &Weave{runner: runner, opts: opts}
}

// DNSAdd runs "weave dns-add <cid> -h <hostname>"
func (w *Weave) DNSAdd(ctx context.Context, containerID, hostname string) command.Result {
	return w.runner.Run(ctx, command.Command{
		Name: w.opts.Binary,
		Args: []string{"dns-add", containerID, "-h", hostname},
		Env:  w.opts.Env,
	})
}

// Detach runs "weave detach <cid>"
func (w *Weave) Detach(ctx context.Context, containerID string) command.Result {
	return w.runner.Run(ctx, command.Command{
		Name: w.opts.Binary,
		Args: []string{"detach", containerID},
		Env:  w.opts.Env,
	})
}

// RoleAlias returns the role-scoped DNS name peers use to reach any
// instance of a service, e.g. "oxauth.weave.local"
func RoleAlias(role, domain string) string {
	if domain == "" {
		domain = DefaultDNSDomain
	}
	return role + "." + strings.TrimPrefix(domain, ".")
}
