/*
Package recovery brings a rebooted node's identity-platform containers back
into service.

# Pipeline

Agent.Run executes one pass:

 1. Load a fresh snapshot from the state store (strict: a missing file
    aborts the run).
 2. Resolve the cluster and this host's node record. Either missing is a
    precondition failure (ErrNoCluster, ErrNoNode).
 3. Gate on the weave router, proxy and plugin being up, then wait the
    settle delay. A component that never comes up aborts the run with a
    *readiness.NotReadyError.
 4. Hand the node's containers to the Orchestrator.

No container is touched unless every precondition holds.

# Per-container state machine

Containers are processed in ascending recovery priority (ldap, oxauth,
oxtrust, oxidp, nginx), so each service finds its dependencies already up:

	inspect ──► missing        (skip)
	        ──► inspect_failed (skip)
	        ──► running        (skip)
	        ──► restart ──► restart_failed (skip, stays stopped)
	                    ──► DISABLED: weave detach       ──► detached
	                    ──► SUCCESS:  weave dns-add ...  ──► recovered

A SUCCESS container is registered under its own hostname. oxauth, oxtrust
and oxeleven are also registered as "<type>.weave.local", and nginx under
the cluster's public hostname.

Failures never stop the loop; they are logged at warn, counted in metrics
and recorded in the Report. Re-running on a recovered node only inspects.

# Interruption

Cancelling the context stops the run at the next readiness poll, sleep or
container boundary. Run then returns context.Canceled, which IsInterrupted
recognises; the caller treats it as a normal exit.
*/
package recovery
