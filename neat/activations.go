package neat

import (
	"fmt"
	"math"
)

// ActivationFunc is the nonlinearity applied to a node's summed input.
type ActivationFunc func(x float64) float64

// ActivationFunctions maps function names to the actual activation
// functions, so configuration can select one by name. The conventional
// default is tanh.
var ActivationFunctions = map[string]ActivationFunc{
	"tanh":     Tanh,
	"sigmoid":  Sigmoid,
	"relu":     ReLU,
	"identity": Identity,
	"clamped":  Clamped,
}

// GetActivation retrieves an activation function by name.
func GetActivation(name string) (ActivationFunc, error) {
	if fn, ok := ActivationFunctions[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown activation function: %s", name)
}

// Tanh activation function.
func Tanh(x float64) float64 {
	return math.Tanh(x)
}

// Sigmoid activation function with the conventional steepness of 4.9.
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-4.9*x))
}

// ReLU (Rectified Linear Unit) activation function.
func ReLU(x float64) float64 {
	return math.Max(0, x)
}

// Identity activation function (linear).
func Identity(x float64) float64 {
	return x
}

// Clamped activation function (clamps output between -1 and 1).
func Clamped(x float64) float64 {
	return clamp(x, -1.0, 1.0)
}
