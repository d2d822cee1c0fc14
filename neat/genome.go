package neat

import (
	"math"
	"sort"
)

// Genome represents an individual organism: the node and connection genes
// that blueprint one feed-forward network, plus its externally assigned
// fitness score.
type Genome struct {
	Nodes       map[int]*NodeGene // node id -> gene
	Connections []*ConnectionGene
	Fitness     float64
}

// NewGenome creates an empty genome.
func NewGenome() *Genome {
	return &Genome{
		Nodes: make(map[int]*NodeGene),
	}
}

// AddNode inserts a node gene if the id is not already present. Adding an
// existing id is a no-op, which lets crossover union parent nodes without
// checking first.
func (g *Genome) AddNode(id int, role NodeRole) {
	if _, exists := g.Nodes[id]; exists {
		return
	}
	g.Nodes[id] = NewNodeGene(id, role)
}

// AddConnection appends an enabled connection carrying a fresh innovation
// id. Duplicate prevention is the caller's responsibility; use
// HasConnection before calling when duplicates matter.
func (g *Genome) AddConnection(in, out int, weight float64, innovations *InnovationRegistry) {
	g.Connections = append(g.Connections, NewConnectionGene(in, out, weight, innovations))
}

// HasConnection reports whether a connection (enabled or disabled) already
// exists between the two nodes in either direction.
func (g *Genome) HasConnection(a, b int) bool {
	for _, c := range g.Connections {
		if (c.In == a && c.Out == b) || (c.In == b && c.Out == a) {
			return true
		}
	}
	return false
}

// Clone creates a deep copy of the genome with fresh gene instances.
// Fitness is not carried over; the next evaluation assigns it.
func (g *Genome) Clone() *Genome {
	c := NewGenome()
	for id, node := range g.Nodes {
		c.Nodes[id] = node.Copy()
	}
	c.Connections = make([]*ConnectionGene, len(g.Connections))
	for i, conn := range g.Connections {
		c.Connections[i] = conn.Copy()
	}
	return c
}

// MaxInnovation returns the largest innovation id carried by this genome,
// or -1 if it has no connections.
func (g *Genome) MaxInnovation() int {
	maxID := -1
	for _, c := range g.Connections {
		if c.Innovation > maxID {
			maxID = c.Innovation
		}
	}
	return maxID
}

// nextNodeID returns a node id not yet used within this genome.
func (g *Genome) nextNodeID() int {
	maxID := -1
	for id := range g.Nodes {
		if id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}

// NodeIDsByRole returns the ids of all nodes with the given role in
// ascending order. The evaluator relies on this ordering to bind sensor
// inputs and collect action outputs.
func (g *Genome) NodeIDsByRole(role NodeRole) []int {
	ids := []int{}
	for id, node := range g.Nodes {
		if node.Role == role {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// connectionsByInnovation indexes the connection genes by innovation id.
func (g *Genome) connectionsByInnovation() map[int]*ConnectionGene {
	byInnov := make(map[int]*ConnectionGene, len(g.Connections))
	for _, c := range g.Connections {
		byInnov[c.Innovation] = c
	}
	return byInnov
}

// Distance calculates the compatibility distance between this genome and
// another. Connections are aligned by innovation id over the full id range:
// ids present in both genomes are matching (their absolute weight
// difference accumulates), ids present in exactly one are excess when they
// exceed the other genome's maximum innovation id and disjoint otherwise.
//
//	d = (c1*E + c2*D) / L + c3*meanMatchingWeightDiff
//
// where L is the connection count of the larger genome, floored at 1.
// The result is symmetric in the argument order.
func (g *Genome) Distance(other *Genome, c1, c2, c3 float64) float64 {
	byInnovA := g.connectionsByInnovation()
	byInnovB := other.connectionsByInnovation()
	maxA := g.MaxInnovation()
	maxB := other.MaxInnovation()

	maxID := maxA
	if maxB > maxID {
		maxID = maxB
	}

	excess, disjoint, matching := 0, 0, 0
	weightDiff := 0.0
	for id := 0; id <= maxID; id++ {
		a, okA := byInnovA[id]
		b, okB := byInnovB[id]
		switch {
		case okA && okB:
			matching++
			weightDiff += math.Abs(a.Weight - b.Weight)
		case okA:
			if id > maxB {
				excess++
			} else {
				disjoint++
			}
		case okB:
			if id > maxA {
				excess++
			} else {
				disjoint++
			}
		}
	}

	l := float64(len(g.Connections))
	if lb := float64(len(other.Connections)); lb > l {
		l = lb
	}
	if l < 1 {
		l = 1
	}

	d := (c1*float64(excess) + c2*float64(disjoint)) / l
	if matching > 0 {
		d += c3 * weightDiff / float64(matching)
	}
	return d
}
