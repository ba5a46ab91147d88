package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cuemby/nodemend/pkg/inventory"
	"github.com/cuemby/nodemend/pkg/log"
	"github.com/cuemby/nodemend/pkg/overlay"
	"github.com/cuemby/nodemend/pkg/readiness"
	"github.com/cuemby/nodemend/pkg/retry"
	"github.com/cuemby/nodemend/pkg/runtime"
	"github.com/cuemby/nodemend/pkg/storage"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g.
// NODEMEND_RUNTIME_BACKEND=api
const EnvPrefix = "NODEMEND"

// Config holds all nodemend configuration
type Config struct {
	Snapshot  SnapshotConfig  `mapstructure:"snapshot"`
	Node      NodeConfig      `mapstructure:"node"`
	Runtime   RuntimeConfig   `mapstructure:"runtime"`
	Overlay   OverlayConfig   `mapstructure:"overlay"`
	Readiness ReadinessConfig `mapstructure:"readiness"`
	Recovery  RecoveryConfig  `mapstructure:"recovery"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// SnapshotConfig locates the cluster state store
type SnapshotConfig struct {
	// URI is a JSON file path, "file://<path>" or "bolt://<path>"
	URI string `mapstructure:"uri"`

	// Strict fails the run when the snapshot is missing
	Strict bool `mapstructure:"strict"`
}

// NodeConfig overrides node identity
type NodeConfig struct {
	// Hostname is matched against snapshot node names instead of the local
	// hostnames
	Hostname string `mapstructure:"hostname"`
}

// RuntimeConfig selects the container runtime backend
type RuntimeConfig struct {
	Backend             string    `mapstructure:"backend"`
	DockerBin           string    `mapstructure:"docker_bin"`
	DockerHost          string    `mapstructure:"docker_host"`
	TLS                 TLSConfig `mapstructure:"tls"`
	ContainerdSocket    string    `mapstructure:"containerd_socket"`
	ContainerdNamespace string    `mapstructure:"containerd_namespace"`
}

// TLSConfig holds docker client certificates
type TLSConfig struct {
	Verify bool   `mapstructure:"verify"`
	CACert string `mapstructure:"ca_cert"`
	Cert   string `mapstructure:"cert"`
	Key    string `mapstructure:"key"`
}

// OverlayConfig configures the weave CLI
type OverlayConfig struct {
	WeaveBin  string `mapstructure:"weave_bin"`
	DNSDomain string `mapstructure:"dns_domain"`
}

// ReadinessConfig configures the overlay readiness gate
type ReadinessConfig struct {
	Components  []string      `mapstructure:"components"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	Delay       time.Duration `mapstructure:"delay"`
	Settle      time.Duration `mapstructure:"settle"`
}

// RecoveryConfig tunes container ordering
type RecoveryConfig struct {
	UnknownTypesLast bool `mapstructure:"unknown_types_last"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig configures the node_exporter textfile
type MetricsConfig struct {
	// Textfile is written at the end of each run; empty disables it
	Textfile string `mapstructure:"textfile"`
}

// Load reads configuration from defaults, the config file and NODEMEND_*
// environment variables, in increasing precedence. A missing config file
// is not an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/nodemend")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isFileNotFoundError(err) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Every key needs a default so AutomaticEnv can override it during
// Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("snapshot.uri", storage.DefaultSnapshotPath)
	v.SetDefault("snapshot.strict", true)

	v.SetDefault("node.hostname", "")

	v.SetDefault("runtime.backend", string(runtime.BackendCLI))
	v.SetDefault("runtime.docker_bin", runtime.DefaultDockerBinary)
	v.SetDefault("runtime.docker_host", "")
	v.SetDefault("runtime.tls.verify", false)
	v.SetDefault("runtime.tls.ca_cert", "")
	v.SetDefault("runtime.tls.cert", "")
	v.SetDefault("runtime.tls.key", "")
	v.SetDefault("runtime.containerd_socket", runtime.DefaultSocketPath)
	v.SetDefault("runtime.containerd_namespace", runtime.DefaultNamespace)

	v.SetDefault("overlay.weave_bin", overlay.DefaultWeaveBinary)
	v.SetDefault("overlay.dns_domain", overlay.DefaultDNSDomain)

	policy := retry.DefaultPolicy()
	v.SetDefault("readiness.components", overlay.DefaultComponents)
	v.SetDefault("readiness.max_attempts", policy.MaxAttempts)
	v.SetDefault("readiness.delay", policy.Delay.String())
	v.SetDefault("readiness.settle", readiness.DefaultSettleDelay.String())

	v.SetDefault("recovery.unknown_types_last", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("metrics.textfile", "")
}

// Validate checks the configuration for values the agent cannot run with
func (c *Config) Validate() error {
	switch runtime.Backend(c.Runtime.Backend) {
	case runtime.BackendCLI, runtime.BackendAPI, runtime.BackendContainerd:
	default:
		return fmt.Errorf("unknown runtime backend: %q", c.Runtime.Backend)
	}

	if c.Runtime.TLS.Verify && (c.Runtime.TLS.CACert == "" || c.Runtime.TLS.Cert == "" || c.Runtime.TLS.Key == "") {
		return fmt.Errorf("runtime.tls.verify requires ca_cert, cert and key")
	}

	if len(c.Readiness.Components) == 0 {
		return fmt.Errorf("readiness.components must not be empty")
	}
	if err := c.RetryPolicy().Validate(); err != nil {
		return fmt.Errorf("readiness: %w", err)
	}
	if c.Readiness.Settle < 0 {
		return fmt.Errorf("readiness.settle must not be negative: %s", c.Readiness.Settle)
	}

	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown logging format: %q", c.Logging.Format)
	}

	return nil
}

// RetryPolicy returns the readiness polling policy
func (c *Config) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: c.Readiness.MaxAttempts,
		Delay:       c.Readiness.Delay,
	}
}

// GateConfig returns the readiness gate configuration
func (c *Config) GateConfig() readiness.Config {
	return readiness.Config{
		Policy: c.RetryPolicy(),
		Settle: c.Readiness.Settle,
	}
}

// RuntimeConfig returns the runtime backend configuration
func (c *Config) RuntimeConfig() runtime.Config {
	return runtime.Config{
		Backend: runtime.Backend(c.Runtime.Backend),
		CLI: runtime.CLIOptions{
			Binary:    c.Runtime.DockerBin,
			Host:      c.Runtime.DockerHost,
			TLSVerify: c.Runtime.TLS.Verify,
			TLSCACert: c.Runtime.TLS.CACert,
			TLSCert:   c.Runtime.TLS.Cert,
			TLSKey:    c.Runtime.TLS.Key,
		},
		DockerHost:          c.Runtime.DockerHost,
		ContainerdSocket:    c.Runtime.ContainerdSocket,
		ContainerdNamespace: c.Runtime.ContainerdNamespace,
	}
}

// OverlayOptions returns the weave CLI options
func (c *Config) OverlayOptions() overlay.Options {
	return overlay.Options{Binary: c.Overlay.WeaveBin}
}

// InventoryOptions returns the recovery ordering options
func (c *Config) InventoryOptions() inventory.Options {
	return inventory.Options{UnknownLast: c.Recovery.UnknownTypesLast}
}

// LogConfig returns the logger configuration writing to out
func (c *Config) LogConfig(out io.Writer) log.Config {
	level, _ := log.ParseLevel(c.Logging.Level)
	return log.Config{
		Level:      level,
		JSONOutput: c.Logging.Format == "json",
		Output:     out,
	}
}

func isFileNotFoundError(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errors.Is(pathErr, os.ErrNotExist)
	}
	return false
}
