package neat

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// FitnessFunc scores a single genome. It is supplied by the caller and
// invoked once per genome per generation; the core neither retries nor
// caches it.
type FitnessFunc func(*Genome) float64

// Champion describes a new per-species best genome, exposed to the caller
// for optional external durable storage.
type Champion struct {
	Genome     *Genome // deep copy, safe to retain
	Generation int
	SpeciesID  int
	Fitness    float64
}

// ChampionHandler receives champions as they are discovered during a
// generation step.
type ChampionHandler func(Champion)

// Population is the top-level orchestrator of the evolutionary process. It
// owns the current genome set, the species list, and the scalar
// evolutionary state that persists across generations.
type Population struct {
	Config      *Config
	Genomes     []*Genome
	Species     []*Species
	Innovations *InnovationRegistry
	Generation  int

	// Self-tuning evolutionary state.
	CompatibilityThreshold float64
	AddConnectionProb      float64
	AddNodeProb            float64

	// Verbose enables the per-generation progress reporting.
	Verbose bool

	lastBestFitness    float64
	allTimeBestFitness float64
	stagnationCounter  int
	speciesIndexer     int

	rng        *rand.Rand
	mutator    *Mutator
	breeder    *Breeder
	onChampion ChampionHandler
}

// NewPopulation creates a population of PopulationSize genomes. Every seed
// genome shares the same topology — each input and the bias node connected
// to each output — so seed genomes share innovation ids and differ only in
// their random weights. Node id conventions established here: inputs are
// 0..NumInputs-1, the bias is NumInputs, outputs follow the bias.
func NewPopulation(config *Config) (*Population, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	seed := config.NEAT.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	innovations := NewInnovationRegistry()

	p := &Population{
		Config:                 config,
		Innovations:            innovations,
		CompatibilityThreshold: config.Speciation.CompatibilityThreshold,
		AddConnectionProb:      config.Mutation.AddConnectionProb,
		AddNodeProb:            config.Mutation.AddNodeProb,
		lastBestFitness:        math.Inf(-1),
		allTimeBestFitness:     math.Inf(-1),
		rng:                    rng,
		mutator:                NewMutator(rng, innovations),
		breeder:                NewBreeder(rng),
	}

	prototype := p.seedPrototype()
	p.Genomes = make([]*Genome, config.NEAT.PopulationSize)
	for i := range p.Genomes {
		g := prototype.Clone()
		for _, c := range g.Connections {
			c.Weight = rng.Float64()*2 - 1
		}
		p.Genomes[i] = g
	}
	return p, nil
}

// seedPrototype builds the common seed topology. Only the prototype calls
// AddConnection, so all seed genomes stay aligned on the same innovation
// ids.
func (p *Population) seedPrototype() *Genome {
	numInputs := p.Config.Genome.NumInputs
	numOutputs := p.Config.Genome.NumOutputs

	g := NewGenome()
	for i := 0; i < numInputs; i++ {
		g.AddNode(i, InputNode)
	}
	biasID := numInputs
	g.AddNode(biasID, BiasNode)
	for i := 0; i < numOutputs; i++ {
		g.AddNode(biasID+1+i, OutputNode)
	}

	for in := 0; in <= biasID; in++ {
		for out := biasID + 1; out <= biasID+numOutputs; out++ {
			g.AddConnection(in, out, 0, p.Innovations)
		}
	}
	return g
}

// OnChampion registers the handler notified whenever a species reaches a
// new best fitness during Evolve.
func (p *Population) OnChampion(fn ChampionHandler) {
	p.onChampion = fn
}

// RunGeneration evaluates every genome with the supplied fitness callback,
// then advances the population by one generation. It returns a copy of the
// generation's best genome with its fitness set.
func (p *Population) RunGeneration(eval FitnessFunc) *Genome {
	for _, g := range p.Genomes {
		g.Fitness = eval(g)
	}

	var champion *Genome
	if best := p.bestGenome(); best != nil {
		champion = best.Clone()
		champion.Fitness = best.Fitness
	}

	p.Evolve()
	return champion
}

// Evolve runs one generation step. Fitness must already be assigned to
// every genome (RunGeneration does this via the callback). The step is a
// fixed pipeline: speciate, share fitness, adjust the compatibility
// threshold, cull stagnant species (exporting champions), sort members,
// adapt the structural mutation rates, and breed the next generation.
// None of the phases fail under degenerate population state; they fall
// back to cloning from the previous generation.
func (p *Population) Evolve() {
	prevGen := p.Genomes

	p.speciate()
	p.shareFitness()
	p.adjustCompatibilityThreshold()
	p.cullStagnantSpecies()
	for _, s := range p.Species {
		s.SortMembers()
	}
	p.adaptMutationRates()

	if p.Verbose {
		p.reportGeneration()
	}

	p.Genomes = p.breedNextGeneration(prevGen)
	p.Generation++
}

// speciate reassigns every genome to the first species whose representative
// is within the compatibility threshold, founding new species for genomes
// no existing species accepts. Species left without members are dropped.
func (p *Population) speciate() {
	for _, s := range p.Species {
		s.ResetForNextGen(p.rng)
	}

	sc := p.Config.Speciation
	for _, g := range p.Genomes {
		placed := false
		for _, s := range p.Species {
			if s.TryAdd(g, p.CompatibilityThreshold, sc.ExcessCoefficient, sc.DisjointCoefficient, sc.WeightCoefficient) {
				placed = true
				break
			}
		}
		if !placed {
			p.speciesIndexer++
			p.Species = append(p.Species, NewSpecies(p.speciesIndexer, g))
		}
	}

	survivors := p.Species[:0]
	for _, s := range p.Species {
		if len(s.Members) > 0 {
			survivors = append(survivors, s)
		}
	}
	p.Species = survivors
}

// shareFitness divides each genome's raw fitness by its species' member
// count, penalizing large species per-individual.
func (p *Population) shareFitness() {
	for _, s := range p.Species {
		n := float64(len(s.Members))
		for _, g := range s.Members {
			g.Fitness /= n
		}
	}
}

// adjustCompatibilityThreshold nudges the threshold toward the target
// species count. It reacts only to the sign of the deviation.
func (p *Population) adjustCompatibilityThreshold() {
	sc := p.Config.Speciation
	if len(p.Species) < sc.TargetSpeciesCount {
		p.CompatibilityThreshold -= sc.ThresholdStep
	} else if len(p.Species) > sc.TargetSpeciesCount {
		p.CompatibilityThreshold += sc.ThresholdStep
	}
	p.CompatibilityThreshold = clamp(p.CompatibilityThreshold, sc.ThresholdMin, sc.ThresholdMax)
}

// cullStagnantSpecies updates each species' stagnation age from this
// generation's best shared fitness and removes species that reached the
// stagnation limit. A species beating its historical best exports its top
// member through the champion handler first.
func (p *Population) cullStagnantSpecies() {
	survivors := p.Species[:0]
	for _, s := range p.Species {
		best := s.BestMember()
		if best == nil {
			continue
		}

		if best.Fitness > s.BestFitness && p.onChampion != nil {
			champ := best.Clone()
			champ.Fitness = best.Fitness
			p.onChampion(Champion{
				Genome:     champ,
				Generation: p.Generation,
				SpeciesID:  s.ID,
				Fitness:    best.Fitness,
			})
		}

		s.UpdateStagnation(best.Fitness)
		if s.AgeWithoutImprovement >= p.Config.Stagnation.StagnationLimit {
			if p.Verbose {
				fmt.Printf("Info: Species %d removed due to stagnation.\n", s.ID)
			}
			continue
		}
		survivors = append(survivors, s)
	}
	p.Species = survivors
}

// adaptMutationRates compares this generation's best fitness against the
// previous one. Sustained stalls nudge both structural mutation
// probabilities upward; genuine improvement nudges them back down.
func (p *Population) adaptMutationRates() {
	mc := p.Config.Mutation
	best := p.bestFitness()
	if best > p.allTimeBestFitness {
		p.allTimeBestFitness = best
	}

	if best-p.lastBestFitness < p.Config.Stagnation.ImprovementEpsilon {
		p.stagnationCounter++
		if p.stagnationCounter >= p.Config.Stagnation.RateStagnationThreshold {
			p.AddConnectionProb += mc.RateNudge
			p.AddNodeProb += mc.RateNudge
			p.stagnationCounter = 0
		}
	} else {
		p.AddConnectionProb -= mc.RateNudge
		p.AddNodeProb -= mc.RateNudge
		p.stagnationCounter = 0
	}

	p.AddConnectionProb = clamp(p.AddConnectionProb, mc.AddConnectionProbMin, mc.AddConnectionProbMax)
	p.AddNodeProb = clamp(p.AddNodeProb, mc.AddNodeProbMin, mc.AddNodeProbMax)
	p.lastBestFitness = best
}

// breedNextGeneration assembles the next genome set: one elite clone per
// species, then crossover offspring from species picked proportionally to
// their total shared fitness. If no species can supply parents, the
// shortfall is padded with clones of random previous-generation genomes.
func (p *Population) breedNextGeneration(prevGen []*Genome) []*Genome {
	popSize := p.Config.NEAT.PopulationSize
	mc := p.Config.Mutation
	next := make([]*Genome, 0, popSize)

	for _, s := range p.Species {
		if len(next) >= popSize {
			break
		}
		if top := s.BestMember(); top != nil {
			next = append(next, top.Clone())
		}
	}

	totals := make([]float64, len(p.Species))
	grandTotal := 0.0
	for i, s := range p.Species {
		totals[i] = s.TotalFitness()
		grandTotal += totals[i]
	}

	for len(next) < popSize {
		if len(p.Species) == 0 || grandTotal <= 0 {
			next = append(next, p.padFromPrevious(prevGen))
			continue
		}

		idx := p.pickSpecies(totals, grandTotal)
		s := p.Species[idx]
		parent1 := p.breeder.SelectParent(s.Members, totals[idx])
		parent2 := p.breeder.SelectParent(s.Members, totals[idx])
		if parent1 == nil || parent2 == nil {
			next = append(next, p.padFromPrevious(prevGen))
			continue
		}

		child := p.breeder.Crossover(parent1, parent2)
		p.mutator.MutateWeights(child, mc.WeightPerturbChance, mc.WeightStepSize)
		if p.rng.Float64() < p.AddConnectionProb {
			p.mutator.AddConnection(child)
		}
		if p.rng.Float64() < p.AddNodeProb {
			p.mutator.AddNode(child)
		}
		next = append(next, child)
	}
	return next
}

// pickSpecies roulette-selects a species index weighted by total shared
// fitness. The last species is the drift fallback.
func (p *Population) pickSpecies(totals []float64, grandTotal float64) int {
	pick := p.rng.Float64() * grandTotal
	acc := 0.0
	for i, t := range totals {
		acc += t
		if acc >= pick {
			return i
		}
	}
	return len(totals) - 1
}

// padFromPrevious clones a uniformly random genome from the previous
// generation, falling back to a fresh seed genome if there is none.
func (p *Population) padFromPrevious(prevGen []*Genome) *Genome {
	if len(prevGen) == 0 {
		g := p.seedPrototype()
		for _, c := range g.Connections {
			c.Weight = p.rng.Float64()*2 - 1
		}
		return g
	}
	return prevGen[p.rng.Intn(len(prevGen))].Clone()
}

// bestGenome returns the genome with the highest fitness, or nil for an
// empty population.
func (p *Population) bestGenome() *Genome {
	var best *Genome
	for _, g := range p.Genomes {
		if best == nil || g.Fitness > best.Fitness {
			best = g
		}
	}
	return best
}

// bestFitness returns the highest fitness in the current population, or
// negative infinity when it is empty.
func (p *Population) bestFitness() float64 {
	if best := p.bestGenome(); best != nil {
		return best.Fitness
	}
	return math.Inf(-1)
}

// reportGeneration prints a one-line generation summary.
func (p *Population) reportGeneration() {
	fitnesses := make([]float64, 0, len(p.Genomes))
	for _, g := range p.Genomes {
		fitnesses = append(fitnesses, g.Fitness)
	}
	fmt.Printf("Generation %d: species=%d best=%.4f mean=%.4f stdev=%.4f threshold=%.2f\n",
		p.Generation, len(p.Species), MaxFloat(fitnesses), Mean(fitnesses), Stdev(fitnesses), p.CompatibilityThreshold)
}
