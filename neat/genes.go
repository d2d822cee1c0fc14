package neat

import "fmt"

// NodeRole identifies the position of a node within the network graph.
type NodeRole int

const (
	InputNode NodeRole = iota
	HiddenNode
	OutputNode
	BiasNode
)

// String returns the lowercase name of the role, also used by the JSON codec.
func (r NodeRole) String() string {
	switch r {
	case InputNode:
		return "input"
	case HiddenNode:
		return "hidden"
	case OutputNode:
		return "output"
	case BiasNode:
		return "bias"
	}
	return fmt.Sprintf("unknown(%d)", int(r))
}

// ParseNodeRole converts a role name back into a NodeRole.
func ParseNodeRole(name string) (NodeRole, error) {
	switch name {
	case "input":
		return InputNode, nil
	case "hidden":
		return HiddenNode, nil
	case "output":
		return OutputNode, nil
	case "bias":
		return BiasNode, nil
	}
	return 0, fmt.Errorf("unknown node role: %q", name)
}

// sourceOnly reports whether nodes of this role may only ever feed the
// network, never receive from it.
func (r NodeRole) sourceOnly() bool {
	return r == InputNode || r == BiasNode
}

// --------------------------- NodeGene ---------------------------

// NodeGene represents a node (neuron) in the neural network genome.
// It is immutable after creation except through Copy.
type NodeGene struct {
	ID   int
	Role NodeRole
}

// NewNodeGene creates a new NodeGene.
func NewNodeGene(id int, role NodeRole) *NodeGene {
	return &NodeGene{ID: id, Role: role}
}

// String returns a string representation of the NodeGene.
func (ng *NodeGene) String() string {
	return fmt.Sprintf("NodeGene(ID: %d, Role: %s)", ng.ID, ng.Role)
}

// Copy creates a deep copy of the NodeGene.
func (ng *NodeGene) Copy() *NodeGene {
	c := *ng
	return &c
}

// --------------------------- ConnectionGene ---------------------------

// ConnectionGene represents a weighted, directed connection between two
// nodes. Innovation is the historical marking used to align genes between
// arbitrary genomes; it is assigned once at creation and never reused.
// Disabled connections keep their weight and innovation id so that
// alignment still works, but they are excluded from network evaluation.
type ConnectionGene struct {
	In         int
	Out        int
	Weight     float64
	Enabled    bool
	Innovation int
}

// NewConnectionGene creates an enabled connection carrying a fresh
// innovation id drawn from the registry.
func NewConnectionGene(in, out int, weight float64, innovations *InnovationRegistry) *ConnectionGene {
	return &ConnectionGene{
		In:         in,
		Out:        out,
		Weight:     weight,
		Enabled:    true,
		Innovation: innovations.Next(),
	}
}

// String returns a string representation of the ConnectionGene.
func (cg *ConnectionGene) String() string {
	return fmt.Sprintf("ConnGene(%d->%d, Weight: %.3f, Enabled: %t, Innovation: %d)",
		cg.In, cg.Out, cg.Weight, cg.Enabled, cg.Innovation)
}

// Copy creates a deep copy of the ConnectionGene, innovation id included.
func (cg *ConnectionGene) Copy() *ConnectionGene {
	c := *cg
	return &c
}
