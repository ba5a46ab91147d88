/*
Package readiness gates recovery on the overlay network being up.

Reattaching a container to weave or registering its DNS name fails while the
weave router, proxy or plugin is still starting, which is common right
after a host reboot. The Gate polls each component's container through a
runtime.Inspector until it reports running:

	gate := readiness.NewGate(rt, readiness.DefaultConfig(), nil, logger, m)
	if err := gate.AwaitAll(ctx, overlay.DefaultComponents...); err != nil {
		var notReady *readiness.NotReadyError
		if errors.As(err, &notReady) { ... }
	}
	_ = gate.Settle(ctx)

Each component gets its own budget of Policy.MaxAttempts polls. A sleep of
Policy.Delay follows every failed poll, so an unreachable component costs
MaxAttempts*Delay (60s with defaults) before the gate gives up. An inspect
error is treated as "not running".

Settle is a fixed wait applied once after all gates pass.
*/
package readiness
