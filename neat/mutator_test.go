package neat

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoNodeGenome is the minimal mutable genome: input 0 wired to output 1.
func twoNodeGenome(innovations *InnovationRegistry, weight float64) *Genome {
	g := NewGenome()
	g.AddNode(0, InputNode)
	g.AddNode(1, OutputNode)
	g.AddConnection(0, 1, weight, innovations)
	return g
}

func TestAddNodeSplitsConnection(t *testing.T) {
	innovations := NewInnovationRegistry()
	g := twoNodeGenome(innovations, 0.75)
	original := g.Connections[0]

	m := NewMutator(rand.New(rand.NewSource(1)), innovations)
	m.AddNode(g)

	assert.False(t, original.Enabled, "split connection must be disabled, not removed")
	require.Len(t, g.Nodes, 3)
	require.Len(t, g.Connections, 3)

	hidden := g.Nodes[2]
	require.NotNil(t, hidden, "new node takes the next free id")
	assert.Equal(t, HiddenNode, hidden.Role)

	into, outOf := g.Connections[1], g.Connections[2]
	assert.Equal(t, 0, into.In)
	assert.Equal(t, 2, into.Out)
	assert.Equal(t, 1.0, into.Weight, "edge into the new node carries weight 1")
	assert.True(t, into.Enabled)

	assert.Equal(t, 2, outOf.In)
	assert.Equal(t, 1, outOf.Out)
	assert.Equal(t, 0.75, outOf.Weight, "edge out of the new node keeps the original weight")
	assert.True(t, outOf.Enabled)

	assert.Greater(t, into.Innovation, original.Innovation)
	assert.Greater(t, outOf.Innovation, into.Innovation)
}

func TestAddNodeSkipsDisabledPick(t *testing.T) {
	innovations := NewInnovationRegistry()
	g := twoNodeGenome(innovations, 0.75)
	g.Connections[0].Enabled = false

	m := NewMutator(rand.New(rand.NewSource(1)), innovations)
	m.AddNode(g)

	assert.Len(t, g.Nodes, 2, "landing on a disabled connection skips the mutation")
	assert.Len(t, g.Connections, 1)
}

func TestAddNodeNoConnections(t *testing.T) {
	innovations := NewInnovationRegistry()
	g := NewGenome()
	g.AddNode(0, InputNode)
	g.AddNode(1, OutputNode)

	m := NewMutator(rand.New(rand.NewSource(1)), innovations)
	m.AddNode(g)

	assert.Empty(t, g.Connections)
	assert.Len(t, g.Nodes, 2)
}

func TestAddConnectionWiresOnlyRemainingPair(t *testing.T) {
	innovations := NewInnovationRegistry()
	g := NewGenome()
	g.AddNode(0, InputNode)
	g.AddNode(1, BiasNode)
	g.AddNode(2, OutputNode)
	g.AddConnection(0, 2, 0.5, innovations)

	// With 0->2 present the only legal addition is bias->output. Input
	// and bias cannot be connected to each other and the output can
	// never be a source.
	m := NewMutator(rand.New(rand.NewSource(7)), innovations)
	m.AddConnection(g)

	require.Len(t, g.Connections, 2)
	added := g.Connections[1]
	assert.Equal(t, 1, added.In)
	assert.Equal(t, 2, added.Out)
	assert.True(t, added.Enabled)
	assert.GreaterOrEqual(t, added.Weight, -1.0)
	assert.LessOrEqual(t, added.Weight, 1.0)

	// A second call finds no legal pair and must change nothing.
	m.AddConnection(g)
	assert.Len(t, g.Connections, 2)
}

func TestAddConnectionNeverInvalid(t *testing.T) {
	innovations := NewInnovationRegistry()
	rng := rand.New(rand.NewSource(99))
	m := NewMutator(rng, innovations)

	g := NewGenome()
	g.AddNode(0, InputNode)
	g.AddNode(1, InputNode)
	g.AddNode(2, BiasNode)
	g.AddNode(3, OutputNode)
	g.AddNode(4, OutputNode)
	g.AddNode(5, HiddenNode)
	g.AddNode(6, HiddenNode)

	for i := 0; i < 200; i++ {
		m.AddConnection(g)
	}

	seen := make(map[[2]int]bool)
	for _, c := range g.Connections {
		assert.NotEqual(t, c.In, c.Out, "self-loop %d->%d", c.In, c.Out)
		assert.NotEqual(t, OutputNode, g.Nodes[c.In].Role, "output node used as source")
		assert.False(t, g.Nodes[c.Out].Role.sourceOnly(), "input or bias node used as destination")

		key := [2]int{c.In, c.Out}
		rev := [2]int{c.Out, c.In}
		assert.False(t, seen[key] || seen[rev], "duplicate connection %d->%d", c.In, c.Out)
		seen[key] = true
	}
}

func TestAddConnectionRejectsCycles(t *testing.T) {
	innovations := NewInnovationRegistry()
	g := NewGenome()
	g.AddNode(0, InputNode)
	g.AddNode(1, HiddenNode)
	g.AddNode(2, HiddenNode)
	g.AddNode(3, OutputNode)
	g.AddConnection(0, 1, 0.5, innovations)
	g.AddConnection(1, 2, 0.5, innovations)
	g.AddConnection(2, 3, 0.5, innovations)

	m := NewMutator(rand.New(rand.NewSource(3)), innovations)
	for i := 0; i < 200; i++ {
		m.AddConnection(g)
	}

	// 2->1 would close a cycle through 1->2 and must never appear.
	for _, c := range g.Connections {
		assert.False(t, c.In == 2 && c.Out == 1, "cycle-closing connection added")
	}
	assert.False(t, createsCycle(g, 1, 2), "existing forward edge misreported")
}

func TestMutateWeightsPerturbStaysWithinStep(t *testing.T) {
	innovations := NewInnovationRegistry()
	g := NewGenome()
	g.AddNode(0, InputNode)
	g.AddNode(1, OutputNode)
	g.AddNode(2, HiddenNode)
	g.AddConnection(0, 2, 0.5, innovations)
	g.AddConnection(2, 1, -0.25, innovations)
	g.Connections[1].Enabled = false

	before := []float64{g.Connections[0].Weight, g.Connections[1].Weight}

	m := NewMutator(rand.New(rand.NewSource(5)), innovations)
	m.MutateWeights(g, 1.0, 0.1)

	for i, c := range g.Connections {
		assert.LessOrEqual(t, math.Abs(c.Weight-before[i]), 0.1, "perturbation exceeded the step size")
	}
}

func TestMutateWeightsReplaceDrawsFresh(t *testing.T) {
	innovations := NewInnovationRegistry()
	g := twoNodeGenome(innovations, 7.0) // well outside the fresh-draw range

	m := NewMutator(rand.New(rand.NewSource(5)), innovations)
	m.MutateWeights(g, 0.0, 0.1)

	w := g.Connections[0].Weight
	assert.GreaterOrEqual(t, w, -1.0)
	assert.LessOrEqual(t, w, 1.0)
}

func TestMutateWeightsTouchesDisabledConnections(t *testing.T) {
	innovations := NewInnovationRegistry()
	g := twoNodeGenome(innovations, 7.0)
	g.Connections[0].Enabled = false

	m := NewMutator(rand.New(rand.NewSource(5)), innovations)
	m.MutateWeights(g, 0.0, 0.1)

	assert.NotEqual(t, 7.0, g.Connections[0].Weight, "disabled connections carry weight state and must mutate too")
	assert.False(t, g.Connections[0].Enabled)
}
