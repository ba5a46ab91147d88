/*
Package metrics provides Prometheus metrics for recovery runs.

nodemend runs once and exits, so there is no scrape endpoint. A run collects
into a private registry and, when metrics.textfile is configured, writes the
result for node_exporter's textfile collector at the end:

	m := metrics.New()
	timer := metrics.NewTimer()
	// ... run ...
	m.RunFinished(err == nil, timer, time.Now())
	_ = m.WriteTextfile("/var/lib/node_exporter/textfile/nodemend.prom")

# Metrics

	nodemend_containers_total{outcome}            counter
	nodemend_commands_total{operation,result}     counter
	nodemend_readiness_attempts_total{component}  counter
	nodemend_component_ready{component}           gauge
	nodemend_last_run_success                     gauge
	nodemend_last_run_timestamp_seconds           gauge
	nodemend_run_duration_seconds                 histogram

Outcomes match recovery.Outcome values: recovered, detached, running,
missing, inspect_failed, restart_failed.

A stopped container left behind by restart_failed is the signal that the
next run has work to do; alert on nodemend_containers_total{outcome="restart_failed"}
increasing, or on nodemend_last_run_success == 0.

All helper methods accept a nil *Metrics.
*/
package metrics
