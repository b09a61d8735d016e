/*
Package observability turns session lifecycle hooks into structured logs and
Prometheus metrics.

Hooks from several sources can be merged with Combine and passed to a session
through sketchtrail.WithLifecycleHooks.
*/
package observability
