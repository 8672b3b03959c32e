package causaltree

import (
	"sync"

	"github.com/google/uuid"
)

// Analysis owns the node set of a causal-tree analysis and enforces the
// graph invariants. All mutating operations validate first and apply only
// if valid: a rejected mutation leaves the graph unchanged.
//
// Analysis is safe for concurrent use.
type Analysis struct {
	ID                 string              `json:"id"`
	IncidentID         string              `json:"incident_id"`
	FinalEvent         string              `json:"final_event"`
	Nodes              []*Node             `json:"nodes"`
	RootCauses         []string            `json:"root_causes,omitempty"`
	PreventiveMeasures []PreventiveMeasure `json:"preventive_measures,omitempty"`
	Status             Status              `json:"status"`

	mu sync.Mutex
}

// NewAnalysis creates a draft analysis seeded with its final-event node at
// level 0 and numero 1.
func NewAnalysis(id, incidentID, finalEvent string) *Analysis {
	return &Analysis{
		ID:         id,
		IncidentID: incidentID,
		FinalEvent: finalEvent,
		Status:     StatusDraft,
		Nodes: []*Node{
			{
				ID:       uuid.NewString(),
				Numero:   1,
				Fact:     finalEvent,
				NodeType: NodeTypeFinalEvent,
				Level:    0,
			},
		},
	}
}

// findNode returns the node with the given ID, or nil.
// Caller must hold a.mu.
func (a *Analysis) findNode(nodeID string) *Node {
	for _, n := range a.Nodes {
		if n.ID == nodeID {
			return n
		}
	}
	return nil
}

// Node returns the node with the given ID.
func (a *Analysis) Node(nodeID string) (*Node, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	node := a.findNode(nodeID)
	if node == nil {
		return nil, &NodeNotFoundError{NodeID: nodeID}
	}
	return node, nil
}

// parentOf returns the node listing nodeID as a child, or nil for the
// final event. Caller must hold a.mu.
func (a *Analysis) parentOf(nodeID string) *Node {
	for _, n := range a.Nodes {
		for _, childID := range n.ChildNodes {
			if childID == nodeID {
				return n
			}
		}
	}
	return nil
}

// nextNumero returns max existing numero + 1. Numeros are never reused, so
// deleting a node leaves a permanent gap. Caller must hold a.mu.
func (a *Analysis) nextNumero() int {
	max := 0
	for _, n := range a.Nodes {
		if n.Numero > max {
			max = n.Numero
		}
	}
	return max + 1
}

// AddNode appends a new intermediate fact as an antecedent cause of the
// given parent. Returns InvalidParentError if the parent does not exist.
func (a *Analysis) AddNode(parentID, fact string, factType FactType, evidence []string) (*Node, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	parent := a.findNode(parentID)
	if parent == nil {
		return nil, &InvalidParentError{ParentID: parentID}
	}

	node := &Node{
		ID:       uuid.NewString(),
		Numero:   a.nextNumero(),
		Fact:     fact,
		NodeType: NodeTypeIntermediateFact,
		FactType: factType,
		Level:    parent.Level + 1,
		Evidence: append([]string{}, evidence...),
	}

	a.Nodes = append(a.Nodes, node)
	parent.ChildNodes = append(parent.ChildNodes, node.ID)

	return node, nil
}

// MarkAsRootCause flags a leaf node as a basic/root cause. Returns
// HasChildrenError if the node still has antecedent causes.
func (a *Analysis) MarkAsRootCause(nodeID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	node := a.findNode(nodeID)
	if node == nil {
		return &NodeNotFoundError{NodeID: nodeID}
	}
	if len(node.ChildNodes) > 0 {
		return &HasChildrenError{NodeID: nodeID, Children: len(node.ChildNodes)}
	}

	node.IsRootCause = true
	node.NodeType = NodeTypeRootCause

	for _, id := range a.RootCauses {
		if id == nodeID {
			return nil
		}
	}
	a.RootCauses = append(a.RootCauses, nodeID)

	return nil
}

// DeleteNode removes a leaf node and strips its ID from its parent's
// children. The final-event node can never be deleted; nodes with
// descendants are rejected rather than cascaded.
func (a *Analysis) DeleteNode(nodeID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	node := a.findNode(nodeID)
	if node == nil {
		return &NodeNotFoundError{NodeID: nodeID}
	}
	if node.NodeType == NodeTypeFinalEvent {
		return &ProtectedNodeError{NodeID: nodeID}
	}
	if len(node.ChildNodes) > 0 {
		return &HasChildrenError{NodeID: nodeID, Children: len(node.ChildNodes)}
	}

	if parent := a.parentOf(nodeID); parent != nil {
		children := parent.ChildNodes[:0]
		for _, childID := range parent.ChildNodes {
			if childID != nodeID {
				children = append(children, childID)
			}
		}
		parent.ChildNodes = children
	}

	nodes := a.Nodes[:0]
	for _, n := range a.Nodes {
		if n.ID != nodeID {
			nodes = append(nodes, n)
		}
	}
	a.Nodes = nodes

	rootCauses := a.RootCauses[:0]
	for _, id := range a.RootCauses {
		if id != nodeID {
			rootCauses = append(rootCauses, id)
		}
	}
	a.RootCauses = rootCauses

	return nil
}

// UpdateNode applies partial edits to a node's fact, fact type or evidence.
// Level, Numero and NodeType are never changed through this path.
func (a *Analysis) UpdateNode(nodeID string, patch NodePatch) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	node := a.findNode(nodeID)
	if node == nil {
		return &NodeNotFoundError{NodeID: nodeID}
	}

	if patch.Fact != nil {
		node.Fact = *patch.Fact
	}
	if patch.FactType != nil {
		node.FactType = *patch.FactType
	}
	if patch.Evidence != nil {
		node.Evidence = append([]string{}, (*patch.Evidence)...)
	}

	return nil
}

// Complete transitions the analysis to completed and freezes its root-cause
// set. At least one root cause is required, and every referenced node must
// exist and be flagged as a root cause.
func (a *Analysis) Complete(rootCauseIDs []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(rootCauseIDs) == 0 {
		return &IncompleteAnalysisError{Reason: "at least one root cause must be identified"}
	}

	frozen := make([]string, 0, len(rootCauseIDs))
	seen := make(map[string]bool, len(rootCauseIDs))
	for _, id := range rootCauseIDs {
		node := a.findNode(id)
		if node == nil {
			return &NodeNotFoundError{NodeID: id}
		}
		if !node.IsRootCause {
			return &IncompleteAnalysisError{Reason: "node " + id + " is not marked as a root cause"}
		}
		if !seen[id] {
			seen[id] = true
			frozen = append(frozen, id)
		}
	}

	a.RootCauses = frozen
	a.Status = StatusCompleted

	return nil
}

// RootCauseNodes returns the nodes currently flagged as root causes, in
// node insertion order.
func (a *Analysis) RootCauseNodes() []*Node {
	a.mu.Lock()
	defer a.mu.Unlock()

	var nodes []*Node
	for _, n := range a.Nodes {
		if n.IsRootCause {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Validate checks the structural invariants of an analysis, typically after
// decoding one fetched from the backend.
func (a *Analysis) Validate() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	finalEvents := 0
	numeros := make(map[int]bool, len(a.Nodes))
	byID := make(map[string]*Node, len(a.Nodes))

	for _, n := range a.Nodes {
		if byID[n.ID] != nil {
			return &IncompleteAnalysisError{Reason: "duplicate node id " + n.ID}
		}
		byID[n.ID] = n

		if numeros[n.Numero] {
			return &IncompleteAnalysisError{Reason: "duplicate numero on node " + n.ID}
		}
		numeros[n.Numero] = true

		if n.NodeType == NodeTypeFinalEvent {
			finalEvents++
			if n.Level != 0 {
				return &IncompleteAnalysisError{Reason: "final event must be at level 0"}
			}
		}
		if n.IsRootCause && len(n.ChildNodes) > 0 {
			return &HasChildrenError{NodeID: n.ID, Children: len(n.ChildNodes)}
		}
	}

	if finalEvents != 1 {
		return &IncompleteAnalysisError{Reason: "analysis must have exactly one final event"}
	}

	for _, n := range a.Nodes {
		for _, childID := range n.ChildNodes {
			child := byID[childID]
			if child == nil {
				return &NodeNotFoundError{NodeID: childID}
			}
			if child.Level != n.Level+1 {
				return &IncompleteAnalysisError{Reason: "level invariant violated at node " + childID}
			}
		}
	}

	return nil
}
