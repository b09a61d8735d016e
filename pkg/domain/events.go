package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeApplied EventType = "node_applied"
	EventUndo        EventType = "undo"
	EventRedo        EventType = "redo"
	EventCommit      EventType = "commit"
	EventImport      EventType = "import"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NodeEvent is emitted whenever a node is appended to the graph.
type NodeEvent struct {
	EventBase
	NodeID      string   `json:"node_id"`
	ParentID    string   `json:"parent_id"`
	Kind        NodeKind `json:"kind"`
	MutatorName string   `json:"mutator_name"`
}

// NavigationEvent is emitted for undo and redo.
type NavigationEvent struct {
	EventBase
	NodeID   string `json:"node_id"`
	TargetID string `json:"target_id"`
	Depth    int    `json:"depth"`
}

// CommitStatus is the status reported to the host application.
type CommitStatus string

const StatusCommitted CommitStatus = "committed"

// Commit is handed to the host when a stroke completes so it can persist an answer.
type Commit struct {
	Status     CommitStatus     `json:"status"`
	Provenance *SerializedGraph `json:"provenance"`
}

// ImportEvent is emitted after an import attempt.
type ImportEvent struct {
	EventBase
	Nodes int   `json:"nodes"`
	Err   error `json:"-"`
}

// LifecycleHooks defines callbacks for session observability.
// Any hook may be nil.
type LifecycleHooks struct {
	OnNodeApplied func(context.Context, *NodeEvent)
	OnUndo        func(context.Context, *NavigationEvent)
	OnRedo        func(context.Context, *NavigationEvent)
	OnCommit      func(context.Context, *Commit)
	OnImport      func(context.Context, *ImportEvent)
	OnResolve     func(replayed int, duration time.Duration)
}
