package recovery

import (
	"context"
	"errors"
	"fmt"

	"github.com/cuemby/nodemend/pkg/command"
	"github.com/cuemby/nodemend/pkg/runtime"
	"github.com/cuemby/nodemend/pkg/types"
)

// fakeRuntime keeps container states in memory. A successful restart marks
// the container running, so a second pass sees it as healthy.
type fakeRuntime struct {
	states      map[string]runtime.State
	inspectErrs map[string]error
	restartFail map[string]command.Result
	onRestart   func(id string)
	calls       []string
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		states:      map[string]runtime.State{},
		inspectErrs: map[string]error{},
		restartFail: map[string]command.Result{},
	}
}

func (f *fakeRuntime) stopped(ids ...string) *fakeRuntime {
	for _, id := range ids {
		f.states[id] = runtime.State{Exists: true, Running: false}
	}
	return f
}

func (f *fakeRuntime) running(ids ...string) *fakeRuntime {
	for _, id := range ids {
		f.states[id] = runtime.State{Exists: true, Running: true}
	}
	return f
}

func (f *fakeRuntime) Inspect(ctx context.Context, id string) (runtime.State, error) {
	f.calls = append(f.calls, "inspect "+id)
	if err := f.inspectErrs[id]; err != nil {
		return runtime.State{}, err
	}
	return f.states[id], nil
}

func (f *fakeRuntime) Restart(ctx context.Context, id string) command.Result {
	f.calls = append(f.calls, "restart "+id)
	if f.onRestart != nil {
		f.onRestart(id)
	}
	if res, ok := f.restartFail[id]; ok {
		return res
	}
	f.states[id] = runtime.State{Exists: true, Running: true}
	return command.Result{Stdout: id}
}

func (f *fakeRuntime) Close() error { return nil }

func (f *fakeRuntime) restarts() []string {
	var out []string
	for _, c := range f.calls {
		if len(c) > 8 && c[:8] == "restart " {
			out = append(out, c[8:])
		}
	}
	return out
}

// fakeNetwork records overlay commands as "dns-add <cid> <host>" and
// "detach <cid>"
type fakeNetwork struct {
	calls []string
	fail  map[string]bool
}

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{fail: map[string]bool{}}
}

func (n *fakeNetwork) DNSAdd(ctx context.Context, cid, hostname string) command.Result {
	call := fmt.Sprintf("dns-add %s %s", cid, hostname)
	n.calls = append(n.calls, call)
	if n.fail[call] {
		return command.Result{ExitCode: 1, Stderr: "weave is not running"}
	}
	return command.Result{}
}

func (n *fakeNetwork) Detach(ctx context.Context, cid string) command.Result {
	call := "detach " + cid
	n.calls = append(n.calls, call)
	if n.fail[call] {
		return command.Result{ExitCode: 1, Stderr: "container not attached"}
	}
	return command.Result{}
}

type fakeStore struct {
	snap *types.Snapshot
	err  error
}

func (s *fakeStore) Load(ctx context.Context) (*types.Snapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.snap, nil
}

var errDaemon = errors.New("cannot connect to the docker daemon")

// scenarioSnapshot holds one node with an ldap, a disabled oxauth and an
// nginx container, stored out of priority order
func scenarioSnapshot() *types.Snapshot {
	return &types.Snapshot{
		Clusters: []types.Cluster{{ID: "k1", OxClusterHostname: "idp.example.com"}},
		Nodes: []types.Node{
			{ID: "n0", Name: "other-host"},
			{ID: "n1", Name: "host-a"},
		},
		Containers: []types.Container{
			{ID: "c1", CID: "aaa", Type: types.ContainerTypeLDAP, NodeID: "n1", State: types.ContainerStateSuccess, Hostname: "ldap1.weave.local", Name: "ldap1"},
			{ID: "c2", CID: "ccc", Type: types.ContainerTypeNginx, NodeID: "n1", State: types.ContainerStateSuccess, Hostname: "ng.weave.local", Name: "nginx1"},
			{ID: "c3", CID: "bbb", Type: types.ContainerTypeOxAuth, NodeID: "n1", State: types.ContainerStateDisabled, Hostname: "oa.weave.local", Name: "oxauth1"},
			{ID: "c4", CID: "ddd", Type: types.ContainerTypeOxTrust, NodeID: "n1", State: types.ContainerStateFailed, Hostname: "ot.weave.local", Name: "oxtrust1"},
			{ID: "c5", CID: "eee", Type: types.ContainerTypeLDAP, NodeID: "n0", State: types.ContainerStateSuccess, Hostname: "ldap2.weave.local", Name: "ldap2"},
		},
	}
}
