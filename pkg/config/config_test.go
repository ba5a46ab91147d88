package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cuemby/nodemend/pkg/log"
	"github.com/cuemby/nodemend/pkg/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/gluuengine/db/shared.json", cfg.Snapshot.URI)
	assert.True(t, cfg.Snapshot.Strict)
	assert.Empty(t, cfg.Node.Hostname)

	assert.Equal(t, "cli", cfg.Runtime.Backend)
	assert.Equal(t, "docker", cfg.Runtime.DockerBin)
	assert.Equal(t, "/run/containerd/containerd.sock", cfg.Runtime.ContainerdSocket)
	assert.Equal(t, "moby", cfg.Runtime.ContainerdNamespace)

	assert.Equal(t, "weave", cfg.Overlay.WeaveBin)
	assert.Equal(t, "weave.local", cfg.Overlay.DNSDomain)

	assert.Equal(t, []string{"weave", "weaveproxy", "weaveplugin"}, cfg.Readiness.Components)
	assert.Equal(t, 6, cfg.Readiness.MaxAttempts)
	assert.Equal(t, 10*time.Second, cfg.Readiness.Delay)
	assert.Equal(t, 10*time.Second, cfg.Readiness.Settle)

	assert.False(t, cfg.Recovery.UnknownTypesLast)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Empty(t, cfg.Metrics.Textfile)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
snapshot:
  uri: bolt:///var/lib/gluuengine/db/shared.db
node:
  hostname: node-1.example.com
runtime:
  backend: cli
  docker_host: tcp://:3376
  tls:
    verify: true
    ca_cert: /opt/gluu/docker/certs/ca.pem
    cert: /opt/gluu/docker/certs/cert.pem
    key: /opt/gluu/docker/certs/key.pem
readiness:
  components: [weave]
  max_attempts: 3
  delay: 2s
  settle: 0s
recovery:
  unknown_types_last: true
logging:
  level: debug
  format: json
metrics:
  textfile: /var/lib/node_exporter/textfile/nodemend.prom
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "bolt:///var/lib/gluuengine/db/shared.db", cfg.Snapshot.URI)
	assert.Equal(t, "node-1.example.com", cfg.Node.Hostname)
	assert.Equal(t, []string{"weave"}, cfg.Readiness.Components)
	assert.Equal(t, 3, cfg.Readiness.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Readiness.Delay)
	assert.Equal(t, time.Duration(0), cfg.Readiness.Settle)
	assert.True(t, cfg.Recovery.UnknownTypesLast)
	assert.Equal(t, "/var/lib/node_exporter/textfile/nodemend.prom", cfg.Metrics.Textfile)

	rc := cfg.RuntimeConfig()
	assert.Equal(t, runtime.BackendCLI, rc.Backend)
	assert.Equal(t, []string{
		"-H", "tcp://:3376",
		"--tlsverify",
		"--tlscacert=/opt/gluu/docker/certs/ca.pem",
		"--tlscert=/opt/gluu/docker/certs/cert.pem",
		"--tlskey=/opt/gluu/docker/certs/key.pem",
	}, rc.CLI.GlobalArgs())

	gc := cfg.GateConfig()
	assert.Equal(t, 3, gc.Policy.MaxAttempts)
	assert.Equal(t, 2*time.Second, gc.Policy.Delay)

	assert.True(t, cfg.InventoryOptions().UnknownLast)

	lc := cfg.LogConfig(&bytes.Buffer{})
	assert.Equal(t, log.DebugLevel, lc.Level)
	assert.True(t, lc.JSONOutput)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("NODEMEND_RUNTIME_BACKEND", "containerd")
	t.Setenv("NODEMEND_NODE_HOSTNAME", "host-b")
	t.Setenv("NODEMEND_READINESS_MAX_ATTEMPTS", "2")
	t.Setenv("NODEMEND_READINESS_DELAY", "500ms")
	t.Setenv("NODEMEND_OVERLAY_DNS_DOMAIN", "overlay.internal")

	cfg, err := Load(writeConfig(t, "runtime:\n  backend: api\n"))
	require.NoError(t, err)

	assert.Equal(t, "containerd", cfg.Runtime.Backend)
	assert.Equal(t, "host-b", cfg.Node.Hostname)
	assert.Equal(t, 2, cfg.Readiness.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Readiness.Delay)
	assert.Equal(t, "overlay.internal", cfg.Overlay.DNSDomain)
}

func TestLoadMalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "runtime: [unterminated\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown backend", "runtime:\n  backend: podman\n", "unknown runtime backend"},
		{"zero attempts", "readiness:\n  max_attempts: 0\n", "max attempts"},
		{"negative delay", "readiness:\n  delay: -1s\n", "delay must not be negative"},
		{"negative settle", "readiness:\n  settle: -1s\n", "readiness.settle"},
		{"no components", "readiness:\n  components: []\n", "readiness.components"},
		{"unknown level", "logging:\n  level: loud\n", "unknown log level"},
		{"unknown format", "logging:\n  format: xml\n", "unknown logging format"},
		{"tls without certs", "runtime:\n  tls:\n    verify: true\n", "requires ca_cert"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
