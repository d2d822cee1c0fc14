package neat

import (
	"math"
	"math/rand"
	"sort"
)

// Species groups structurally similar genomes behind one representative.
// Membership is recomputed every generation; only the representative
// snapshot, the best-ever fitness, and the stagnation age persist across
// generations.
type Species struct {
	ID                    int
	Representative        *Genome // snapshot copy, never an alias into the population
	Members               []*Genome
	BestFitness           float64 // monotonic max across the species' lifetime
	AgeWithoutImprovement int
}

// NewSpecies creates a species founded by a single genome. The founder
// becomes both the first member and the representative snapshot.
func NewSpecies(id int, founder *Genome) *Species {
	return &Species{
		ID:             id,
		Representative: founder.Clone(),
		Members:        []*Genome{founder},
		BestFitness:    math.Inf(-1),
	}
}

// TryAdd accepts the genome if its compatibility distance to the
// representative is within the threshold. On acceptance the genome joins
// the members and true is returned; otherwise the species is unmodified.
func (s *Species) TryAdd(g *Genome, threshold, c1, c2, c3 float64) bool {
	if s.Representative.Distance(g, c1, c2, c3) <= threshold {
		s.Members = append(s.Members, g)
		return true
	}
	return false
}

// ResetForNextGen promotes a uniformly random current member to
// representative (as a snapshot copy) and clears the membership, ready for
// re-speciation. Called once per generation before genomes are placed.
func (s *Species) ResetForNextGen(rng *rand.Rand) {
	if len(s.Members) > 0 {
		s.Representative = s.Members[rng.Intn(len(s.Members))].Clone()
	}
	s.Members = nil
}

// UpdateStagnation records the best fitness seen this generation. An
// improvement over the historical best resets the stagnation age;
// anything else increments it.
func (s *Species) UpdateStagnation(generationBest float64) {
	if generationBest > s.BestFitness {
		s.BestFitness = generationBest
		s.AgeWithoutImprovement = 0
		return
	}
	s.AgeWithoutImprovement++
}

// SortMembers orders the members by fitness, best first. This defines the
// elitism order and the crossover parent pool.
func (s *Species) SortMembers() {
	sort.SliceStable(s.Members, func(i, j int) bool {
		return s.Members[i].Fitness > s.Members[j].Fitness
	})
}

// BestMember returns the member with the highest fitness, or nil for an
// empty species. It does not require the members to be sorted.
func (s *Species) BestMember() *Genome {
	var best *Genome
	for _, g := range s.Members {
		if best == nil || g.Fitness > best.Fitness {
			best = g
		}
	}
	return best
}

// TotalFitness sums the members' (shared) fitness values.
func (s *Species) TotalFitness() float64 {
	total := 0.0
	for _, g := range s.Members {
		total += g.Fitness
	}
	return total
}
