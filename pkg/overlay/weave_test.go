package overlay

import (
	"context"
	"testing"

	"github.com/cuemby/nodemend/pkg/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeave_DNSAdd(t *testing.T) {
	runner := &command.FakeRunner{}
	w := NewWeave(runner, Options{})

	result := w.DNSAdd(context.Background(), "c1", "ldap.gluu.local")

	assert.True(t, result.Success())
	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, command.Command{
		Name: "weave",
		Args: []string{"dns-add", "c1", "-h", "ldap.gluu.local"},
	}, calls[0])
}

func TestWeave_Detach(t *testing.T) {
	runner := &command.FakeRunner{Handler: func(command.Command) command.Result {
		return command.Result{Stderr: "container c1 not attached", ExitCode: 1}
	}}
	w := NewWeave(runner, Options{Binary: "/usr/local/bin/weave", Env: []string{"DOCKER_HOST=tcp://:3376"}})

	result := w.Detach(context.Background(), "c1")

	assert.False(t, result.Success())
	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/usr/local/bin/weave", calls[0].Name)
	assert.Equal(t, []string{"detach", "c1"}, calls[0].Args)
	assert.Equal(t, []string{"DOCKER_HOST=tcp://:3376"}, calls[0].Env)
}

func TestWeave_HostnameWithSpacesStaysOneArgument(t *testing.T) {
	runner := &command.FakeRunner{}
	NewWeave(runner, Options{}).DNSAdd(context.Background(), "c1", "bad name")

	assert.Equal(t, []string{"dns-add", "c1", "-h", "bad name"}, runner.Calls()[0].Args)
}

func TestRoleAlias(t *testing.T) {
	assert.Equal(t, "oxauth.weave.local", RoleAlias("oxauth", ""))
	assert.Equal(t, "oxtrust.weave.local", RoleAlias("oxtrust", "weave.local"))
	assert.Equal(t, "oxeleven.gluu.internal", RoleAlias("oxeleven", ".gluu.internal"))
}
