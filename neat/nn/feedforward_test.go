package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YonatanGoncharov/neatevolve/neat"
)

// directGenome wires a single input and a bias straight to one output:
// input 0 -> output 2 with the given weight. The bias node 1 is left
// unconnected unless biasWeight is nonzero.
func directGenome(weight, biasWeight float64) *neat.Genome {
	innovations := neat.NewInnovationRegistry()
	g := neat.NewGenome()
	g.AddNode(0, neat.InputNode)
	g.AddNode(1, neat.BiasNode)
	g.AddNode(2, neat.OutputNode)
	g.AddConnection(0, 2, weight, innovations)
	if biasWeight != 0 {
		g.AddConnection(1, 2, biasWeight, innovations)
	}
	return g
}

func TestEvaluateSingleConnection(t *testing.T) {
	net, err := NewNetwork(directGenome(0.5, 0))
	require.NoError(t, err)

	outputs, err := net.Evaluate([]float64{2.0})
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.InDelta(t, math.Tanh(1.0), outputs[0], 1e-12, "output is tanh(0.5 * 2.0)")
}

func TestEvaluateBiasContribution(t *testing.T) {
	net, err := NewNetwork(directGenome(0.5, 0.25))
	require.NoError(t, err)

	outputs, err := net.Evaluate([]float64{2.0})
	require.NoError(t, err)
	assert.InDelta(t, math.Tanh(0.5*2.0+0.25*1.0), outputs[0], 1e-12,
		"bias node feeds the constant 1.0 through its weight")
}

func TestEvaluateCustomBiasValue(t *testing.T) {
	config := neat.DefaultConfig(1, 1)
	config.Genome.BiasValue = 0.5
	config.Genome.Activation = "identity"

	net, err := NewNetworkFromConfig(directGenome(1.0, 1.0), config)
	require.NoError(t, err)

	outputs, err := net.Evaluate([]float64{0.0})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, outputs[0], 1e-12)
}

func TestEvaluateHiddenChain(t *testing.T) {
	innovations := neat.NewInnovationRegistry()
	g := neat.NewGenome()
	g.AddNode(0, neat.InputNode)
	g.AddNode(1, neat.HiddenNode)
	g.AddNode(2, neat.OutputNode)
	g.AddConnection(0, 1, 0.7, innovations)
	g.AddConnection(1, 2, -0.3, innovations)

	net, err := NewNetwork(g)
	require.NoError(t, err)

	outputs, err := net.Evaluate([]float64{1.5})
	require.NoError(t, err)
	want := math.Tanh(-0.3 * math.Tanh(0.7*1.5))
	assert.InDelta(t, want, outputs[0], 1e-12)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	innovations := neat.NewInnovationRegistry()
	g := neat.NewGenome()
	g.AddNode(0, neat.InputNode)
	g.AddNode(1, neat.InputNode)
	g.AddNode(2, neat.BiasNode)
	g.AddNode(5, neat.HiddenNode)
	g.AddNode(6, neat.HiddenNode)
	g.AddNode(3, neat.OutputNode)
	g.AddNode(4, neat.OutputNode)
	g.AddConnection(0, 5, 0.11, innovations)
	g.AddConnection(1, 5, -0.42, innovations)
	g.AddConnection(2, 6, 0.9, innovations)
	g.AddConnection(5, 6, 0.33, innovations)
	g.AddConnection(6, 3, -0.8, innovations)
	g.AddConnection(5, 4, 0.27, innovations)

	net, err := NewNetwork(g)
	require.NoError(t, err)

	first, err := net.Evaluate([]float64{0.4, -1.2})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := net.Evaluate([]float64{0.4, -1.2})
		require.NoError(t, err)
		assert.Equal(t, first, again, "identical inputs must produce bit-identical outputs")
	}
}

func TestEvaluateSkipsDisabledConnections(t *testing.T) {
	g := directGenome(0.5, 0)
	g.Connections[0].Enabled = false

	net, err := NewNetwork(g)
	require.NoError(t, err)

	outputs, err := net.Evaluate([]float64{2.0})
	require.NoError(t, err)
	assert.InDelta(t, math.Tanh(0.0), outputs[0], 1e-12,
		"a disabled connection contributes nothing; the output activates an empty sum")
}

func TestEvaluateInputCountMismatch(t *testing.T) {
	net, err := NewNetwork(directGenome(0.5, 0))
	require.NoError(t, err)

	_, err = net.Evaluate([]float64{1.0, 2.0})
	assert.Error(t, err)
	_, err = net.Evaluate(nil)
	assert.Error(t, err)
}

func TestNewNetworkRejectsCycles(t *testing.T) {
	innovations := neat.NewInnovationRegistry()
	g := neat.NewGenome()
	g.AddNode(0, neat.InputNode)
	g.AddNode(1, neat.HiddenNode)
	g.AddNode(2, neat.HiddenNode)
	g.AddNode(3, neat.OutputNode)
	g.AddConnection(0, 1, 0.5, innovations)
	g.AddConnection(1, 2, 0.5, innovations)
	g.Connections = append(g.Connections, &neat.ConnectionGene{
		In: 2, Out: 1, Weight: 0.5, Enabled: true, Innovation: 99,
	})
	g.AddConnection(2, 3, 0.5, innovations)

	_, err := NewNetwork(g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a DAG")
}

func TestNewNetworkIgnoresDisabledCycle(t *testing.T) {
	innovations := neat.NewInnovationRegistry()
	g := neat.NewGenome()
	g.AddNode(0, neat.InputNode)
	g.AddNode(1, neat.HiddenNode)
	g.AddNode(2, neat.OutputNode)
	g.AddConnection(0, 1, 0.5, innovations)
	g.AddConnection(1, 2, 0.5, innovations)
	g.Connections = append(g.Connections, &neat.ConnectionGene{
		In: 2, Out: 1, Weight: 0.5, Enabled: false, Innovation: 99,
	})

	_, err := NewNetwork(g)
	assert.NoError(t, err, "only enabled connections participate in the topology")
}

func TestNewNetworkRejectsUnknownActivation(t *testing.T) {
	config := neat.DefaultConfig(1, 1)
	config.Genome.Activation = "step"

	_, err := NewNetworkFromConfig(directGenome(0.5, 0), config)
	assert.Error(t, err)
}

func TestNetworkShape(t *testing.T) {
	net, err := NewNetwork(directGenome(0.5, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, net.NumInputs())
	assert.Equal(t, 1, net.NumOutputs())
}
