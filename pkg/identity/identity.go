package identity

import (
	"net"
	"os"
	"strings"

	"github.com/cuemby/nodemend/pkg/types"
)

// HostnameFunc returns the names this machine is known by, most specific
// first
type HostnameFunc func() []string

// Resolver determines which cluster and node the running process belongs
// to. It holds no state of its own; identity is re-derived from the
// snapshot on every run.
type Resolver struct {
	snapshot  *types.Snapshot
	hostnames HostnameFunc
}

// Option configures a Resolver
type Option func(*Resolver)

// WithHostnames overrides the local hostname lookup
func WithHostnames(fn HostnameFunc) Option {
	return func(r *Resolver) {
		r.hostnames = fn
	}
}

// NewResolver creates a resolver over snap
func NewResolver(snap *types.Snapshot, opts ...Option) *Resolver {
	r := &Resolver{
		snapshot:  snap,
		hostnames: LocalHostnames,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveCluster returns the first cluster in the snapshot. Deployments
// have a single cluster.
func (r *Resolver) ResolveCluster() (*types.Cluster, bool) {
	if r.snapshot == nil || len(r.snapshot.Clusters) == 0 {
		return nil, false
	}
	c := r.snapshot.Clusters[0]
	return &c, true
}

// ResolveNode returns the first node whose name equals hint or, when hint
// is empty, one of the local machine's hostnames
func (r *Resolver) ResolveNode(hint string) (*types.Node, bool) {
	if r.snapshot == nil {
		return nil, false
	}

	var candidates []string
	if hint != "" {
		candidates = []string{hint}
	} else {
		candidates = r.hostnames()
	}

	for _, n := range r.snapshot.Nodes {
		if n.Name == "" {
			continue
		}
		for _, name := range candidates {
			if n.Name == name {
				node := n
				return &node, true
			}
		}
	}
	return nil, false
}

// LocalHostnames returns the machine's fully-qualified name, its hostname
// and the hostname's first label, without duplicates
func LocalHostnames() []string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return nil
	}
	return uniqueNonEmpty(lookupFQDN(host), host, shortName(host))
}

func shortName(host string) string {
	if i := strings.IndexByte(host, '.'); i > 0 {
		return host[:i]
	}
	return host
}

// lookupFQDN resolves host's canonical name through reverse lookups of its
// addresses, then CNAME, and falls back to host itself
func lookupFQDN(host string) string {
	if addrs, err := net.LookupHost(host); err == nil {
		for _, addr := range addrs {
			names, err := net.LookupAddr(addr)
			if err != nil {
				continue
			}
			for _, name := range names {
				name = strings.TrimSuffix(name, ".")
				if strings.Contains(name, ".") {
					return name
				}
			}
		}
	}

	if cname, err := net.LookupCNAME(host); err == nil {
		if cname = strings.TrimSuffix(cname, "."); strings.Contains(cname, ".") {
			return cname
		}
	}

	return host
}

func uniqueNonEmpty(values ...string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
