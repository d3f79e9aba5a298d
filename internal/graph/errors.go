package graph

import "fmt"

// ErrNodeNotFound is returned by lookups for a node ID the graph does not
// contain.
type ErrNodeNotFound struct {
	ID string
}

func (e *ErrNodeNotFound) Error() string {
	return fmt.Sprintf("graph: node %q not found", e.ID)
}

// ErrCycleDetected is returned when adding a parent_of edge would create a
// cycle in the resource hierarchy, which must remain a forest.
type ErrCycleDetected struct {
	Source string
	Target string
}

func (e *ErrCycleDetected) Error() string {
	return fmt.Sprintf("graph: parent_of edge %s->%s would create a cycle in the hierarchy", e.Source, e.Target)
}

// ErrDuplicateEdge is returned when an edge with the same (source, target,
// type) key already exists.
type ErrDuplicateEdge struct {
	Key EdgeKey
}

func (e *ErrDuplicateEdge) Error() string {
	return fmt.Sprintf("graph: duplicate edge %s->%s (%s)", e.Key.Source, e.Key.Target, e.Key.Type)
}
