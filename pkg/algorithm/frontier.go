package algorithm

import (
	"github.com/fyerfyer/faultsim/pkg/circuit"
)

// DFrontier returns the gates, by index, where a fault effect stopped after
// the last run: at least one input carries D or D' and the output does not.
func DFrontier(nl *circuit.Netlist) []int {
	frontier := make([]int, 0)

	for _, g := range nl.Gates {
		if isGateInDFrontier(nl, g) {
			frontier = append(frontier, g.Index)
		}
	}

	return frontier
}

// isGateInDFrontier reads net levels, not the gate caches
func isGateInDFrontier(nl *circuit.Netlist, g *circuit.Gate) bool {
	hasFaultyInput := false
	for _, in := range g.Inputs {
		if nl.MustNet(in).Level.IsFaulty() {
			hasFaultyInput = true
			break
		}
	}
	if !hasFaultyInput {
		return false
	}
	return !nl.MustNet(g.Output).Level.IsFaulty()
}

// BlockingInputs returns the inputs of g holding its controlling value. On a
// D-frontier gate these are what kept the fault effect from passing.
func BlockingInputs(nl *circuit.Netlist, g *circuit.Gate) []int {
	cv := g.Type.ControllingValue()
	blocking := make([]int, 0)
	if cv == circuit.X {
		return blocking
	}
	for _, in := range g.Inputs {
		if nl.MustNet(in).Level == cv {
			blocking = append(blocking, in)
		}
	}
	return blocking
}
