package neat

import (
	"encoding/json"
	"fmt"
	"sort"
)

// The JSON form of a genome preserves every node's id and role and every
// connection's endpoints, weight, enabled flag, and innovation id, so a
// round trip reconstructs an identical genome.

type nodeGeneRecord struct {
	ID   int    `json:"id"`
	Role string `json:"role"`
}

type connectionGeneRecord struct {
	In         int     `json:"in"`
	Out        int     `json:"out"`
	Weight     float64 `json:"weight"`
	Enabled    bool    `json:"enabled"`
	Innovation int     `json:"innovation"`
}

type genomeRecord struct {
	Nodes       []nodeGeneRecord       `json:"nodes"`
	Connections []connectionGeneRecord `json:"connections"`
	Fitness     float64                `json:"fitness,omitempty"`
}

// MarshalJSON encodes the genome with nodes sorted by id for stable output.
func (g *Genome) MarshalJSON() ([]byte, error) {
	record := genomeRecord{
		Nodes:       make([]nodeGeneRecord, 0, len(g.Nodes)),
		Connections: make([]connectionGeneRecord, 0, len(g.Connections)),
		Fitness:     g.Fitness,
	}
	for _, node := range g.Nodes {
		record.Nodes = append(record.Nodes, nodeGeneRecord{ID: node.ID, Role: node.Role.String()})
	}
	sort.Slice(record.Nodes, func(i, j int) bool {
		return record.Nodes[i].ID < record.Nodes[j].ID
	})
	for _, c := range g.Connections {
		record.Connections = append(record.Connections, connectionGeneRecord{
			In:         c.In,
			Out:        c.Out,
			Weight:     c.Weight,
			Enabled:    c.Enabled,
			Innovation: c.Innovation,
		})
	}
	return json.Marshal(record)
}

// UnmarshalJSON decodes the genome and rebuilds the id-indexed node map
// before the genome is usable; the fast-lookup structure is restored here,
// not lazily.
func (g *Genome) UnmarshalJSON(data []byte) error {
	var record genomeRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}

	nodes := make(map[int]*NodeGene, len(record.Nodes))
	for _, n := range record.Nodes {
		role, err := ParseNodeRole(n.Role)
		if err != nil {
			return fmt.Errorf("node %d: %w", n.ID, err)
		}
		nodes[n.ID] = NewNodeGene(n.ID, role)
	}

	connections := make([]*ConnectionGene, 0, len(record.Connections))
	for _, c := range record.Connections {
		if _, ok := nodes[c.In]; !ok {
			return fmt.Errorf("connection %d->%d references unknown node %d", c.In, c.Out, c.In)
		}
		if _, ok := nodes[c.Out]; !ok {
			return fmt.Errorf("connection %d->%d references unknown node %d", c.In, c.Out, c.Out)
		}
		connections = append(connections, &ConnectionGene{
			In:         c.In,
			Out:        c.Out,
			Weight:     c.Weight,
			Enabled:    c.Enabled,
			Innovation: c.Innovation,
		})
	}

	g.Nodes = nodes
	g.Connections = connections
	g.Fitness = record.Fitness
	return nil
}

// SyncInnovations fast-forwards the registry past every innovation id this
// genome carries. Call it after deserializing a genome into a population
// context so freshly minted ids never collide with loaded ones.
func (g *Genome) SyncInnovations(innovations *InnovationRegistry) {
	for _, c := range g.Connections {
		innovations.Observe(c.Innovation)
	}
}
