/*
Package ports defines the driven ports (interfaces) of the sketchtrail engine.

These interfaces decouple session handling from storage backends and from the
coordination mechanism used when several replicas serve the same sessions.

# Key Interfaces

  - GraphStore: Responsible for persisting and loading serialized provenance graphs.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
*/
package ports
