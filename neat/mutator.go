package neat

import "math/rand"

// connectionTrialBudget bounds the random search for an unconnected node
// pair in AddConnection. Giving up within the budget is a normal outcome,
// not an error.
const connectionTrialBudget = 100

// Mutator applies weight and structural mutations to genomes. It holds no
// evolutionary state of its own, only the shared RNG and the innovation
// registry that new connections draw their markings from.
type Mutator struct {
	rng         *rand.Rand
	innovations *InnovationRegistry
}

// NewMutator creates a mutator backed by the given RNG and registry.
func NewMutator(rng *rand.Rand, innovations *InnovationRegistry) *Mutator {
	return &Mutator{rng: rng, innovations: innovations}
}

// MutateWeights perturbs every connection's weight. With probability
// perturbChance the weight is shifted by a uniform value in
// [-stepSize, stepSize]; otherwise it is replaced by a fresh uniform draw
// from [-1, 1]. Disabled connections carry weight state too, so they are
// mutated like any other. Resulting magnitudes are not clamped.
func (m *Mutator) MutateWeights(g *Genome, perturbChance, stepSize float64) {
	for _, c := range g.Connections {
		if m.rng.Float64() < perturbChance {
			c.Weight += (m.rng.Float64()*2 - 1) * stepSize
		} else {
			c.Weight = m.rng.Float64()*2 - 1
		}
	}
}

// AddConnection tries up to connectionTrialBudget random node pairs and
// wires the first valid one with a fresh random weight in [-1, 1]. A pair
// is rejected when it is a self-loop, both endpoints are outputs, both are
// inputs or bias nodes, the pair is already connected in either direction,
// or the new edge would close a cycle. When one endpoint is an output the
// direction is forced so the output is never the source; likewise inputs
// and bias nodes are never the destination. At most one connection is
// added per call; finding none within the budget is a silent no-op.
func (m *Mutator) AddConnection(g *Genome) {
	ids := make([]int, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	if len(ids) < 2 {
		return
	}

	for trial := 0; trial < connectionTrialBudget; trial++ {
		a := ids[m.rng.Intn(len(ids))]
		b := ids[m.rng.Intn(len(ids))]
		if a == b {
			continue
		}
		roleA := g.Nodes[a].Role
		roleB := g.Nodes[b].Role
		if roleA == OutputNode && roleB == OutputNode {
			continue
		}
		if roleA.sourceOnly() && roleB.sourceOnly() {
			continue
		}

		in, out := a, b
		if g.Nodes[in].Role == OutputNode {
			in, out = out, in
		}
		if g.Nodes[out].Role.sourceOnly() {
			in, out = out, in
		}

		if g.HasConnection(in, out) {
			continue
		}
		if createsCycle(g, in, out) {
			continue
		}

		g.AddConnection(in, out, m.rng.Float64()*2-1, m.innovations)
		return
	}
}

// AddNode splits a randomly chosen connection by inserting a hidden node:
// the original connection is disabled, the edge into the new node gets
// weight 1.0, and the edge out of it carries the original weight. Genomes
// with no connections are left unchanged.
//
// When the random pick lands on an already disabled connection the whole
// mutation is skipped. This biases the node-add rate downward for genomes
// with many disabled connections; it is long-standing observed behavior
// and deliberately kept.
func (m *Mutator) AddNode(g *Genome) {
	if len(g.Connections) == 0 {
		return
	}

	conn := g.Connections[m.rng.Intn(len(g.Connections))]
	if !conn.Enabled {
		return
	}
	conn.Enabled = false

	id := g.nextNodeID()
	g.AddNode(id, HiddenNode)
	g.AddConnection(conn.In, id, 1.0, m.innovations)
	g.AddConnection(id, conn.Out, conn.Weight, m.innovations)
}

// createsCycle reports whether adding in->out would close a cycle, i.e.
// whether out already reaches in through enabled connections.
func createsCycle(g *Genome, in, out int) bool {
	if in == out {
		return true
	}

	visited := make(map[int]bool)
	queue := []int{out}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current == in {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true

		for _, c := range g.Connections {
			if c.Enabled && c.In == current {
				queue = append(queue, c.Out)
			}
		}
	}
	return false
}
