/*
Package domain contains the core domain models of the sketchtrail provenance engine.

It defines the entities recorded in a drawing session's history and the state they
reconstruct. This package is kept pure and free of external dependencies like I/O or
persistence.

# Key Entities

  - HistoryNode: One step in the provenance graph, tagged Ephemeral or Durable.
  - Invocation: A named mutator call with its parameters, not yet committed.
  - SerializedGraph: The transport shape used for export, import and storage.
  - DrawingState: Strokes plus the active toolbar settings, derived by replay.
*/
package domain
