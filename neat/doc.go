// Package neat evolves populations of small feed-forward neural networks
// with a NeuroEvolution of Augmenting Topologies (NEAT)-style genetic
// algorithm: speciation by compatibility distance, fitness sharing,
// stagnation-based culling, adaptive structural mutation rates, and
// innovation-marked crossover.
//
// The package is environment-agnostic. Callers supply a fitness function
// that scores a candidate network; the population produces successive
// generations of increasingly fit topologies and weights. Genomes are
// compiled into callable networks by the nn subpackage.
//
// Basic usage:
//
//	config := neat.DefaultConfig(numSensors, numActions)
//	pop, err := neat.NewPopulation(config)
//	if err != nil {
//		log.Fatalf("Error creating population: %v", err)
//	}
//
//	for gen := 0; gen < 100; gen++ {
//		best := pop.RunGeneration(func(g *neat.Genome) float64 {
//			net, err := nn.NewNetworkFromConfig(g, config)
//			if err != nil {
//				return 0
//			}
//			return scoreAgainstEnvironment(net)
//		})
//		if best.Fitness >= target {
//			break
//		}
//	}
package neat
