// Package oracle evaluates a netlist as a two-valued and-inverter graph, once
// for the good circuit and once for a faulty copy, and checks simulation
// results against the composition of both.
package oracle

import (
	"github.com/fyerfyer/faultsim/pkg/circuit"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

var (
	ErrCyclic    = errors.New("netlist is not acyclic")
	ErrNotBinary = errors.New("vector is not binary")
	ErrMismatch  = errors.New("simulation disagrees with reference")
)

// Oracle is a compiled netlist
type Oracle struct {
	netlist *circuit.Netlist
	topo    *circuit.Topology
}

// New levelizes the netlist. Cyclic netlists, and netlists where an output
// depends on an undriven net, are rejected.
func New(nl *circuit.Netlist) (*Oracle, error) {
	topo := circuit.NewTopology(nl)
	topo.ComputeLevels()
	if !topo.IsAcyclic() {
		return nil, errors.Wrapf(ErrCyclic, "%d of %d gates cannot be ordered",
			len(nl.Gates)-len(topo.Order), len(nl.Gates))
	}
	for _, id := range nl.Outputs {
		if _, ok := topo.LevelMap[id]; !ok {
			return nil, errors.Wrapf(ErrCyclic, "output %d is not driven from the inputs", id)
		}
	}
	return &Oracle{netlist: nl, topo: topo}, nil
}

// circuitLits maps every leveled net to its literal in c
type circuitLits map[int]z.Lit

// compile builds the literal of every net in topological order. fault, when
// not nil, replaces its net with the stuck constant.
func (o *Oracle) compile(c *logic.C, inputs []z.Lit, fault *circuit.Fault) circuitLits {
	lits := make(circuitLits, len(o.topo.LevelMap))
	constant := func(id int) (z.Lit, bool) {
		if fault == nil || fault.Net != id {
			return z.LitNull, false
		}
		if fault.Kind == circuit.StuckAt1 {
			return c.T, true
		}
		return c.F, true
	}

	for i, id := range o.netlist.Inputs {
		if k, ok := constant(id); ok {
			lits[id] = k
			continue
		}
		lits[id] = inputs[i]
	}

	for _, gi := range o.topo.Order {
		g := o.netlist.Gate(gi)
		if _, ok := lits[g.Output]; ok {
			continue
		}
		if k, ok := constant(g.Output); ok {
			lits[g.Output] = k
			continue
		}

		a := lits[g.Inputs[0]]
		var m z.Lit
		switch g.Type {
		case circuit.AND:
			m = c.And(a, lits[g.Inputs[1]])
		case circuit.NAND:
			m = c.And(a, lits[g.Inputs[1]]).Not()
		case circuit.OR:
			m = c.Or(a, lits[g.Inputs[1]])
		case circuit.NOR:
			m = c.Or(a, lits[g.Inputs[1]]).Not()
		case circuit.INV:
			m = a.Not()
		case circuit.BUF:
			m = a
		}
		lits[g.Output] = m
	}
	return lits
}

// Evaluate returns the expected primary output levels for a binary vector.
// With a fault, outputs where the good and faulty circuits differ are D or D'.
func (o *Oracle) Evaluate(vector []byte, fault *circuit.Fault) ([]circuit.LogicValue, error) {
	nl := o.netlist
	if len(vector) != len(nl.Inputs) {
		return nil, errors.Wrapf(circuit.ErrVectorLength, "got %d values for %d primary inputs",
			len(vector), len(nl.Inputs))
	}

	c := logic.NewCCap(2*len(nl.Gates) + len(nl.Inputs) + 2)
	inputs := make([]z.Lit, len(nl.Inputs))
	values := make([]bool, len(nl.Inputs))
	for i := range nl.Inputs {
		switch circuit.ParseLogicValue(vector[i]) {
		case circuit.Zero:
		case circuit.One:
			values[i] = true
		default:
			return nil, errors.Wrapf(ErrNotBinary, "input %d", nl.Inputs[i])
		}
		inputs[i] = c.Lit()
	}

	good := o.compile(c, inputs, nil)
	faulty := good
	if fault != nil {
		faulty = o.compile(c, inputs, fault)
	}

	vs := make([]bool, c.Len())
	vs[c.T.Var()] = c.T.IsPos()
	for i, m := range inputs {
		vs[m.Var()] = values[i]
	}
	c.Eval(vs)

	levels := make([]circuit.LogicValue, len(nl.Outputs))
	for i, id := range nl.Outputs {
		levels[i] = circuit.Compose(litValue(vs, good[id]), litValue(vs, faulty[id]))
	}
	return levels, nil
}

// Check compares simulated output levels with the reference for the same
// vector and fault.
func (o *Oracle) Check(vector []byte, fault *circuit.Fault, got []circuit.LogicValue) error {
	want, err := o.Evaluate(vector, fault)
	if err != nil {
		return err
	}
	if len(got) != len(want) {
		return errors.Wrapf(ErrMismatch, "%d outputs, reference has %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			return errors.Wrapf(ErrMismatch, "output %d is %s, reference %s",
				o.netlist.Outputs[i], got[i], want[i])
		}
	}
	return nil
}

func litValue(vs []bool, m z.Lit) circuit.LogicValue {
	v := vs[m.Var()]
	if !m.IsPos() {
		v = !v
	}
	if v {
		return circuit.One
	}
	return circuit.Zero
}
