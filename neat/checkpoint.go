package neat

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"math/rand"
	"os"
	"time"
)

// populationSaveData holds the parts of a Population worth persisting. The
// Config is not saved; LoadCheckpoint takes it as an argument, the same way
// the original run obtained it. Species members are not saved either —
// membership is recomputed at the start of every Evolve, so only the
// per-species scalar state and the representative snapshot matter.
type populationSaveData struct {
	Genomes                []*Genome
	Species                []speciesSaveData
	Generation             int
	CompatibilityThreshold float64
	AddConnectionProb      float64
	AddNodeProb            float64
	LastBestFitness        float64
	AllTimeBestFitness     float64
	StagnationCounter      int
	SpeciesIndexer         int
	NextInnovation         int
}

type speciesSaveData struct {
	ID                    int
	Representative        *Genome
	BestFitness           float64
	AgeWithoutImprovement int
}

// SaveCheckpoint writes the population state to a gzip-compressed gob file.
func (p *Population) SaveCheckpoint(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)
	defer gzWriter.Close()

	saveData := populationSaveData{
		Genomes:                p.Genomes,
		Species:                make([]speciesSaveData, 0, len(p.Species)),
		Generation:             p.Generation,
		CompatibilityThreshold: p.CompatibilityThreshold,
		AddConnectionProb:      p.AddConnectionProb,
		AddNodeProb:            p.AddNodeProb,
		LastBestFitness:        p.lastBestFitness,
		AllTimeBestFitness:     p.allTimeBestFitness,
		StagnationCounter:      p.stagnationCounter,
		SpeciesIndexer:         p.speciesIndexer,
		NextInnovation:         p.Innovations.NextID,
	}
	for _, s := range p.Species {
		saveData.Species = append(saveData.Species, speciesSaveData{
			ID:                    s.ID,
			Representative:        s.Representative,
			BestFitness:           s.BestFitness,
			AgeWithoutImprovement: s.AgeWithoutImprovement,
		})
	}

	if err := gob.NewEncoder(gzWriter).Encode(saveData); err != nil {
		return fmt.Errorf("failed to encode population data: %w", err)
	}
	return nil
}

// LoadCheckpoint restores a population from a checkpoint file. The config
// must describe the same sensor/action contract the checkpoint was created
// under; runtime state (RNG, operators) is rebuilt fresh.
func LoadCheckpoint(filePath string, config *Config) (*Population, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for checkpoint: %w", err)
	}
	defer gzReader.Close()

	saveData := populationSaveData{}
	if err := gob.NewDecoder(gzReader).Decode(&saveData); err != nil {
		return nil, fmt.Errorf("failed to decode population data from checkpoint: %w", err)
	}

	seed := config.NEAT.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	innovations := &InnovationRegistry{NextID: saveData.NextInnovation}

	p := &Population{
		Config:                 config,
		Genomes:                saveData.Genomes,
		Innovations:            innovations,
		Generation:             saveData.Generation,
		CompatibilityThreshold: saveData.CompatibilityThreshold,
		AddConnectionProb:      saveData.AddConnectionProb,
		AddNodeProb:            saveData.AddNodeProb,
		lastBestFitness:        saveData.LastBestFitness,
		allTimeBestFitness:     saveData.AllTimeBestFitness,
		stagnationCounter:      saveData.StagnationCounter,
		speciesIndexer:         saveData.SpeciesIndexer,
		rng:                    rng,
		mutator:                NewMutator(rng, innovations),
		breeder:                NewBreeder(rng),
	}
	for _, s := range saveData.Species {
		p.Species = append(p.Species, &Species{
			ID:                    s.ID,
			Representative:        s.Representative,
			BestFitness:           s.BestFitness,
			AgeWithoutImprovement: s.AgeWithoutImprovement,
		})
	}
	return p, nil
}
