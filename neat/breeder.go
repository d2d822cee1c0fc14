package neat

import "math/rand"

// Breeder performs parent selection and crossover. Like the Mutator it is
// stateless apart from the shared RNG.
type Breeder struct {
	rng *rand.Rand
}

// NewBreeder creates a breeder backed by the given RNG.
func NewBreeder(rng *rand.Rand) *Breeder {
	return &Breeder{rng: rng}
}

// SelectParent picks a genome from the pool with probability proportional
// to its fitness (roulette-wheel selection). totalFitness must be the sum
// of the pool's fitness values. If floating-point drift keeps the
// accumulated fitness below the pick, the last pool element is returned;
// that is the defined fallback, not an error. A nil result only occurs for
// an empty pool.
func (b *Breeder) SelectParent(pool []*Genome, totalFitness float64) *Genome {
	if len(pool) == 0 {
		return nil
	}

	pick := b.rng.Float64() * totalFitness
	acc := 0.0
	for _, g := range pool {
		acc += g.Fitness
		if acc >= pick {
			return g
		}
	}
	return pool[len(pool)-1]
}

// Crossover combines two parents into a child genome. The fitter parent is
// primary (ties broken by a coin flip). The child unions the node genes of
// both parents. Connections are aligned by innovation id: genes present in
// both parents are inherited from a uniformly random one; genes only the
// primary carries are inherited as-is; genes only the secondary carries
// are dropped. The asymmetry intentionally privileges the fitter parent's
// unique structure.
func (b *Breeder) Crossover(a, other *Genome) *Genome {
	primary, secondary := a, other
	if other.Fitness > a.Fitness || (other.Fitness == a.Fitness && b.rng.Float64() < 0.5) {
		primary, secondary = other, a
	}

	child := NewGenome()
	for id, node := range primary.Nodes {
		child.Nodes[id] = node.Copy()
	}
	for id, node := range secondary.Nodes {
		if _, exists := child.Nodes[id]; !exists {
			child.Nodes[id] = node.Copy()
		}
	}

	secondaryByInnov := secondary.connectionsByInnovation()
	child.Connections = make([]*ConnectionGene, 0, len(primary.Connections))
	for _, conn := range primary.Connections {
		inherited := conn
		if match, exists := secondaryByInnov[conn.Innovation]; exists && b.rng.Float64() < 0.5 {
			inherited = match
		}
		child.Connections = append(child.Connections, inherited.Copy())
	}
	return child
}
