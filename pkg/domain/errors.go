package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateAction is returned when two mutators are registered under the same name.
	ErrDuplicateAction = errors.New("duplicate action")

	// ErrUnknownAction is returned when an invocation names a mutator that is not registered.
	ErrUnknownAction = errors.New("unknown action")

	// ErrNodeNotFound is returned when a node ID is not present in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrRootExists is returned when CreateRoot is called on a graph that already has a root.
	ErrRootExists = errors.New("graph already has a root")

	// ErrNoRoot is returned when a graph is used before CreateRoot.
	ErrNoRoot = errors.New("graph has no root")

	// ErrInvalidKind is returned for node kinds other than ephemeral or durable.
	ErrInvalidKind = errors.New("invalid node kind")

	// ErrRootReached signals that undo has no further durable ancestor to return to.
	ErrRootReached = errors.New("root reached")

	// ErrRedoEmpty signals that there is nothing to redo.
	ErrRedoEmpty = errors.New("nothing to redo")

	// ErrMalformedImport is returned when a serialized graph fails structural validation.
	ErrMalformedImport = errors.New("malformed import")

	// ErrSessionNotFound is returned when a session ID cannot be found in the store.
	ErrSessionNotFound = errors.New("session not found")
)

// DuplicateActionError reports a mutator name registered twice.
type DuplicateActionError struct {
	Name string
}

func (e *DuplicateActionError) Error() string {
	return fmt.Sprintf("%s: %q", ErrDuplicateAction, e.Name)
}

func (e *DuplicateActionError) Unwrap() error { return ErrDuplicateAction }

// NodeNotFoundError reports a lookup of an ID absent from the graph.
type NodeNotFoundError struct {
	ID string
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrNodeNotFound, e.ID)
}

func (e *NodeNotFoundError) Unwrap() error { return ErrNodeNotFound }

// MalformedImportError reports why a serialized graph was rejected.
type MalformedImportError struct {
	NodeID string
	Reason string
}

func (e *MalformedImportError) Error() string {
	if e.NodeID == "" {
		return fmt.Sprintf("%s: %s", ErrMalformedImport, e.Reason)
	}
	return fmt.Sprintf("%s: node %q: %s", ErrMalformedImport, e.NodeID, e.Reason)
}

func (e *MalformedImportError) Unwrap() error { return ErrMalformedImport }
