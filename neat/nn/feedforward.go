// Package nn compiles genomes into runnable feed-forward networks.
package nn

import (
	"fmt"
	"sort"

	"github.com/YonatanGoncharov/neatevolve/neat"
)

// edge is one enabled incoming connection of a node.
type edge struct {
	from   int
	weight float64
}

// Network is a feed-forward phenotype compiled once from a genome
// snapshot. It is pure: evaluating it never mutates state, so identical
// inputs always produce identical outputs.
type Network struct {
	inputs    []int // input node ids, ascending
	biases    []int // bias node ids, ascending
	outputs   []int // output node ids, ascending
	order     []int // evaluation order over non-source nodes
	incoming  map[int][]edge
	activate  neat.ActivationFunc
	biasValue float64
}

// NewNetwork compiles a genome with the conventional defaults: tanh
// nonlinearity and a bias constant of 1.0. It returns an error if the
// genome's enabled connections form a cycle or reference unknown nodes.
func NewNetwork(g *neat.Genome) (*Network, error) {
	return newNetwork(g, "tanh", 1.0)
}

// NewNetworkFromConfig compiles a genome using the activation and bias
// value from the configuration.
func NewNetworkFromConfig(g *neat.Genome, config *neat.Config) (*Network, error) {
	return newNetwork(g, config.Genome.Activation, config.Genome.BiasValue)
}

func newNetwork(g *neat.Genome, activation string, biasValue float64) (*Network, error) {
	activate, err := neat.GetActivation(activation)
	if err != nil {
		return nil, err
	}

	incoming := make(map[int][]edge)
	inDegree := make(map[int]int, len(g.Nodes))
	outEdges := make(map[int][]int)
	for id := range g.Nodes {
		inDegree[id] = 0
	}

	for _, c := range g.Connections {
		if !c.Enabled {
			continue
		}
		if _, ok := g.Nodes[c.In]; !ok {
			return nil, fmt.Errorf("connection %d->%d references unknown node %d", c.In, c.Out, c.In)
		}
		if _, ok := g.Nodes[c.Out]; !ok {
			return nil, fmt.Errorf("connection %d->%d references unknown node %d", c.In, c.Out, c.Out)
		}
		incoming[c.Out] = append(incoming[c.Out], edge{from: c.In, weight: c.Weight})
		outEdges[c.In] = append(outEdges[c.In], c.Out)
		inDegree[c.Out]++
	}

	// Kahn's algorithm over the enabled edges. Sorted processing keeps the
	// resulting order deterministic across runs.
	queue := []int{}
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	sort.Ints(queue)

	topo := make([]int, 0, len(g.Nodes))
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		topo = append(topo, u)

		next := append([]int(nil), outEdges[u]...)
		sort.Ints(next)
		for _, v := range next {
			inDegree[v]--
			if inDegree[v] == 0 {
				queue = append(queue, v)
			}
		}
		sort.Ints(queue)
	}
	if len(topo) != len(g.Nodes) {
		return nil, fmt.Errorf("genome is not a DAG: topological sort covered %d of %d nodes", len(topo), len(g.Nodes))
	}

	// Inputs and bias nodes are value sources, not activation targets;
	// drop them from the evaluation order.
	order := make([]int, 0, len(topo))
	for _, id := range topo {
		role := g.Nodes[id].Role
		if role == neat.InputNode || role == neat.BiasNode {
			continue
		}
		order = append(order, id)
	}

	return &Network{
		inputs:    g.NodeIDsByRole(neat.InputNode),
		biases:    g.NodeIDsByRole(neat.BiasNode),
		outputs:   g.NodeIDsByRole(neat.OutputNode),
		order:     order,
		incoming:  incoming,
		activate:  activate,
		biasValue: biasValue,
	}, nil
}

// NumInputs returns the number of sensor values Evaluate expects.
func (n *Network) NumInputs() int { return len(n.inputs) }

// NumOutputs returns the number of action values Evaluate produces.
func (n *Network) NumOutputs() int { return len(n.outputs) }

// Evaluate runs the network on one sensor vector. inputs[i] is bound to
// the i-th input node in ascending-id order; bias nodes self-initialize to
// the configured constant and receive no external value. Each non-source
// node sums weight x sourceValue over its enabled incoming edges and
// passes the sum through the nonlinearity. The result holds the output
// node values in ascending-id order.
func (n *Network) Evaluate(inputs []float64) ([]float64, error) {
	if len(inputs) != len(n.inputs) {
		return nil, fmt.Errorf("mismatch between input count (%d) and network input nodes (%d)", len(inputs), len(n.inputs))
	}

	values := make(map[int]float64, len(n.inputs)+len(n.biases)+len(n.order))
	for i, id := range n.inputs {
		values[id] = inputs[i]
	}
	for _, id := range n.biases {
		values[id] = n.biasValue
	}

	for _, id := range n.order {
		sum := 0.0
		for _, e := range n.incoming[id] {
			sum += e.weight * values[e.from]
		}
		values[id] = n.activate(sum)
	}

	outputs := make([]float64, len(n.outputs))
	for i, id := range n.outputs {
		outputs[i] = values[id]
	}
	return outputs, nil
}
