package circuit

import (
	"fmt"
	"strings"
)

// GateType represents the type of logic gate
type GateType int

const (
	AND GateType = iota
	OR
	NAND
	NOR
	INV
	BUF // Buffer gate
)

// String returns a string representation of the gate type
func (gt GateType) String() string {
	switch gt {
	case AND:
		return "AND"
	case OR:
		return "OR"
	case NAND:
		return "NAND"
	case NOR:
		return "NOR"
	case INV:
		return "INV"
	case BUF:
		return "BUF"
	default:
		return "UNKNOWN"
	}
}

// Arity returns the number of inputs the gate type takes
func (gt GateType) Arity() int {
	switch gt {
	case INV, BUF:
		return 1
	case AND, OR, NAND, NOR:
		return 2
	default:
		return 0
	}
}

// ControllingValue returns the input value that alone determines the output
// (0 for AND/NAND, 1 for OR/NOR). Unary gates have none and return X.
func (gt GateType) ControllingValue() LogicValue {
	switch gt {
	case AND, NAND:
		return Zero
	case OR, NOR:
		return One
	default:
		return X
	}
}

// ParseGateType converts a netlist keyword to a GateType
func ParseGateType(s string) (GateType, bool) {
	switch strings.ToUpper(s) {
	case "AND":
		return AND, true
	case "OR":
		return OR, true
	case "NAND":
		return NAND, true
	case "NOR":
		return NOR, true
	case "INV":
		return INV, true
	case "BUF":
		return BUF, true
	}
	return 0, false
}

// Evaluate computes a gate output from its input values. A combination the
// table does not cover, such as an input still at U, returns prev unchanged.
func Evaluate(gt GateType, in []LogicValue, prev LogicValue) LogicValue {
	if len(in) != gt.Arity() {
		return prev
	}

	var out LogicValue
	switch gt {
	case AND:
		out = and2(in[0], in[1])
	case NAND:
		out = Invert(and2(in[0], in[1]))
	case OR:
		out = or2(in[0], in[1])
	case NOR:
		out = Invert(or2(in[0], in[1]))
	case INV:
		out = Invert(in[0])
	case BUF:
		out = in[0]
	default:
		return prev
	}

	if out == U {
		return prev
	}
	return out
}

func and2(a, b LogicValue) LogicValue {
	switch {
	case a == U || b == U:
		return U
	case a == Zero || b == Zero:
		return Zero
	case a == X || b == X:
		return X
	case a == One:
		return b
	case b == One:
		return a
	case a == b:
		return a
	default:
		// D with D': the faulty circuit sees a 0 on one of the inputs
		return Zero
	}
}

func or2(a, b LogicValue) LogicValue {
	switch {
	case a == U || b == U:
		return U
	case a == One || b == One:
		return One
	case a == X || b == X:
		return X
	case a == Zero:
		return b
	case b == Zero:
		return a
	case a == b:
		return a
	default:
		return One
	}
}

// Gate represents a logic gate in the netlist. Inputs and Output hold net
// ids; InputValues and Value cache the levels seen during the current run.
type Gate struct {
	Index       int        // Position in Netlist.Gates
	Type        GateType   // Type of the gate
	Inputs      []int      // Input net ids
	Output      int        // Output net id
	InputValues []LogicValue
	Value       LogicValue // Output value, U until evaluated
}

// NewGate creates a new gate with the given parameters
func NewGate(index int, gateType GateType, inputs []int, output int) *Gate {
	in := make([]int, len(inputs))
	copy(in, inputs)
	return &Gate{
		Index:       index,
		Type:        gateType,
		Inputs:      in,
		Output:      output,
		InputValues: make([]LogicValue, len(inputs)),
		Value:       U,
	}
}

// Ready returns true if every input is resolved and the output is not yet
// computed
func (g *Gate) Ready() bool {
	if g.Value.IsResolved() {
		return false
	}
	for _, v := range g.InputValues {
		if !v.IsResolved() {
			return false
		}
	}
	return true
}

// Eval evaluates the gate from its cached inputs. An already computed output
// is never overwritten within a run.
func (g *Gate) Eval() LogicValue {
	if g.Value.IsResolved() {
		return g.Value
	}
	g.Value = Evaluate(g.Type, g.InputValues, g.Value)
	return g.Value
}

// Reset clears the cached values back to U
func (g *Gate) Reset() {
	for i := range g.InputValues {
		g.InputValues[i] = U
	}
	g.Value = U
}

// String returns a string representation of the gate
func (g *Gate) String() string {
	ins := make([]string, len(g.Inputs))
	for i, id := range g.Inputs {
		ins[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("g%d(%s %s -> %d)", g.Index, g.Type, strings.Join(ins, " "), g.Output)
}
