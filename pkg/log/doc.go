/*
Package log builds the structured zerolog loggers used by nodemend.

There is no global logger. The entry point calls New once and hands the
result to every component, which narrows it with WithComponent. Tests pass a
logger writing into a bytes.Buffer and assert on the captured lines.

# Usage

	logger := log.New(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: false,
		Output:     os.Stderr,
	})

	gateLog := log.WithComponent(logger, "readiness")
	gateLog.Warn().Str("component_name", "weave").Msg("weave is not ready; retrying")

Console output (default):

	2026-10-18T10:30:00Z INF restarting container cid=3f2a type=ldap name=gluu_ldap_1 component=recovery

JSON output (logging.format: json):

	{"level":"info","component":"recovery","cid":"3f2a","type":"ldap","time":"...","message":"restarting container"}

# Levels

  - info: normal progress
  - warn: recoverable anomalies (skipped container, failed restart, retries)
  - error: fatal preconditions (network never ready)
*/
package log
