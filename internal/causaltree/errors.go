package causaltree

import (
	"errors"
	"fmt"
)

// InvalidParentError indicates an AddNode call referencing a parent node
// that does not exist in the analysis.
type InvalidParentError struct {
	ParentID string
}

// Error returns the error message
func (e *InvalidParentError) Error() string {
	return fmt.Sprintf("parent node %q does not exist in this analysis", e.ParentID)
}

// NodeNotFoundError indicates an operation referencing a node that does not
// exist in the analysis.
type NodeNotFoundError struct {
	NodeID string
}

// Error returns the error message
func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("node %q does not exist in this analysis", e.NodeID)
}

// HasChildrenError indicates an operation that requires a leaf node was
// attempted on a node with antecedent causes. A cause with further
// antecedents cannot be marked as a root cause, and deleting it would
// orphan its subtree.
type HasChildrenError struct {
	NodeID   string
	Children int
}

// Error returns the error message
func (e *HasChildrenError) Error() string {
	return fmt.Sprintf("node %q has %d child node(s)", e.NodeID, e.Children)
}

// ProtectedNodeError indicates an attempt to delete the final-event node.
type ProtectedNodeError struct {
	NodeID string
}

// Error returns the error message
func (e *ProtectedNodeError) Error() string {
	return fmt.Sprintf("node %q is the final event and cannot be deleted", e.NodeID)
}

// IncompleteAnalysisError indicates an attempt to complete an analysis
// without at least one identified root cause.
type IncompleteAnalysisError struct {
	Reason string
}

// Error returns the error message
func (e *IncompleteAnalysisError) Error() string {
	return fmt.Sprintf("analysis cannot be completed: %s", e.Reason)
}

// IsInvalidParent checks if an error is an InvalidParentError
func IsInvalidParent(err error) bool {
	var e *InvalidParentError
	return errors.As(err, &e)
}

// IsNodeNotFound checks if an error is a NodeNotFoundError
func IsNodeNotFound(err error) bool {
	var e *NodeNotFoundError
	return errors.As(err, &e)
}

// IsHasChildren checks if an error is a HasChildrenError
func IsHasChildren(err error) bool {
	var e *HasChildrenError
	return errors.As(err, &e)
}

// IsProtectedNode checks if an error is a ProtectedNodeError
func IsProtectedNode(err error) bool {
	var e *ProtectedNodeError
	return errors.As(err, &e)
}

// IsIncompleteAnalysis checks if an error is an IncompleteAnalysisError
func IsIncompleteAnalysis(err error) bool {
	var e *IncompleteAnalysisError
	return errors.As(err, &e)
}
