// Package causaltree implements the in-memory causal-tree graph model: a
// directed acyclic graph from a final event back through intermediate facts
// to root causes. The graph points from effect to cause: a node's children
// are its antecedent causes.
package causaltree

// NodeType classifies a node's role in the tree.
type NodeType string

const (
	NodeTypeFinalEvent       NodeType = "final_event"
	NodeTypeIntermediateFact NodeType = "intermediate_fact"
	NodeTypeRootCause        NodeType = "root_cause"
)

// FactType classifies a fact as a variation from the normal course of events
// or a permanent condition.
type FactType string

const (
	FactTypeVariacion  FactType = "variacion"
	FactTypePermanente FactType = "permanente"
)

// Status represents the analysis lifecycle state.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusReviewed   Status = "reviewed"
	StatusArchived   Status = "archived"
)

// MeasureType classifies a preventive measure.
type MeasureType string

const (
	MeasureTypePreventive MeasureType = "preventive"
	MeasureTypeCorrective MeasureType = "corrective"
)

// Priority of a preventive measure.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// MeasureStatus tracks the progress of a preventive measure.
type MeasureStatus string

const (
	MeasureStatusPending    MeasureStatus = "pending"
	MeasureStatusInProgress MeasureStatus = "in_progress"
	MeasureStatusCompleted  MeasureStatus = "completed"
)

// Node is a single fact or event in a causal-tree analysis.
//
// Invariants maintained by the Analysis operations:
//   - exactly one node per analysis has NodeType final_event and Level 0
//   - Level equals parent.Level + 1 for every non-final node
//   - IsRootCause implies NodeType root_cause and no child nodes
//   - Numero is unique within the analysis and never reassigned
type Node struct {
	ID          string   `json:"id"`
	Numero      int      `json:"numero"`
	Fact        string   `json:"fact"`
	NodeType    NodeType `json:"node_type"`
	FactType    FactType `json:"fact_type,omitempty"`
	Level       int      `json:"level"`
	IsRootCause bool     `json:"is_root_cause"`
	Evidence    []string `json:"evidence,omitempty"`
	ChildNodes  []string `json:"child_nodes,omitempty"`
}

// PreventiveMeasure is a preventive or corrective measure attached to an
// analysis.
type PreventiveMeasure struct {
	ID          string        `json:"id"`
	Description string        `json:"description"`
	MeasureType MeasureType   `json:"measure_type"`
	Priority    Priority      `json:"priority"`
	Status      MeasureStatus `json:"status"`
}

// NodePatch carries partial edits for UpdateNode. Nil fields are left
// untouched. Level, Numero and NodeType are never editable through a patch.
type NodePatch struct {
	Fact     *string   `json:"fact,omitempty"`
	FactType *FactType `json:"fact_type,omitempty"`
	Evidence *[]string `json:"evidence,omitempty"`
}
