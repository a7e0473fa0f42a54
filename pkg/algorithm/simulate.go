package algorithm

import (
	"github.com/fyerfyer/faultsim/pkg/circuit"
	"github.com/fyerfyer/faultsim/pkg/metrics"
	"github.com/fyerfyer/faultsim/pkg/utils"
	"github.com/pkg/errors"
)

// OutputLevel is the final level of one primary output
type OutputLevel struct {
	Net   int
	Level circuit.LogicValue
}

// Result holds the outcome of one simulation run
type Result struct {
	Outputs     []OutputLevel
	Levels      map[int]circuit.LogicValue // Every net level after the run
	Evaluations int                        // Gates evaluated
	MaxDepth    int                        // Deepest propagation stack
	Seeded      int                        // Primary inputs propagated before stopping
	EarlyExit   bool                       // All outputs resolved before the last input
	Faults      []circuit.Fault            // Faults active during the run
}

// Values returns the output levels in primary output order
func (r *Result) Values() []circuit.LogicValue {
	return levelsOf(r.Outputs)
}

func levelsOf(outputs []OutputLevel) []circuit.LogicValue {
	values := make([]circuit.LogicValue, len(outputs))
	for i, o := range outputs {
		values[i] = o.Level
	}
	return values
}

// Unresolved returns the primary outputs still at U
func (r *Result) Unresolved() []int {
	ids := make([]int, 0)
	for _, o := range r.Outputs {
		if !o.Level.IsResolved() {
			ids = append(ids, o.Net)
		}
	}
	return ids
}

// Detected returns true when a fault effect (D or D') reached an output
func (r *Result) Detected() bool {
	for _, o := range r.Outputs {
		if o.Level.IsFaulty() {
			return true
		}
	}
	return false
}

// Simulator drives values from the primary inputs through a netlist
type Simulator struct {
	Netlist *circuit.Netlist
	Logger  *utils.Logger
	Metrics *metrics.Metrics

	faultEnabled bool
	faults       circuit.FaultTable
	evaluations  int
	maxDepth     int
}

// NewSimulator creates a simulator for the given netlist. Metrics may be nil.
func NewSimulator(nl *circuit.Netlist, logger *utils.Logger, m *metrics.Metrics) *Simulator {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Simulator{
		Netlist: nl,
		Logger:  logger,
		Metrics: m,
	}
}

// frame is one level of the depth-first walk: a net and the position of the
// next fanout gate to visit
type frame struct {
	net int
	pos int
}

// Simulate runs one pass over the netlist. vector is aligned with the
// primary inputs; 0 and 1 seed ZERO and ONE, any other byte seeds X. With
// faultEnabled, every fault of the table overrides the value driven onto its
// net. Outputs left at U are part of the result, not an error.
func (s *Simulator) Simulate(vector []byte, faultEnabled bool, faults circuit.FaultTable) (*Result, error) {
	nl := s.Netlist
	if len(vector) != len(nl.Inputs) {
		return nil, errors.Wrapf(circuit.ErrVectorLength, "got %d values for %d primary inputs",
			len(vector), len(nl.Inputs))
	}

	nl.Reset()
	s.faultEnabled = faultEnabled && len(faults) > 0
	s.faults = faults
	s.evaluations = 0
	s.maxDepth = 0

	res := &Result{Outputs: make([]OutputLevel, 0, len(nl.Outputs))}
	if s.faultEnabled {
		res.Faults = faults.Faults()
		for _, f := range res.Faults {
			s.Logger.Fault("injecting %s on net %d", f.Kind, f.Net)
		}
	}

	for i, id := range nl.Inputs {
		n := nl.MustNet(id)
		n.Level = s.drive(id, circuit.ParseLogicValue(vector[i]))
		s.Logger.Propagation("seed input %d = %s", id, n.Level)
	}

	for i, id := range nl.Inputs {
		s.propagate(id)
		res.Seeded = i + 1
		if s.outputsResolved() {
			res.EarlyExit = i < len(nl.Inputs)-1
			break
		}
	}

	for _, id := range nl.Outputs {
		res.Outputs = append(res.Outputs, OutputLevel{Net: id, Level: nl.MustNet(id).Level})
	}
	res.Levels = nl.Levels()
	res.Evaluations = s.evaluations
	res.MaxDepth = s.maxDepth

	unresolved := res.Unresolved()
	if len(unresolved) > 0 {
		s.Logger.Warning("outputs %v unresolved after propagation", unresolved)
	}
	s.Logger.Debug("run done: %d gates evaluated, %d/%d inputs propagated",
		res.Evaluations, res.Seeded, len(nl.Inputs))
	s.Metrics.ObserveRun(s.faultEnabled, res.Evaluations, res.MaxDepth, len(unresolved), res.EarlyExit)

	return res, nil
}

// propagate walks the fanout of start depth-first, evaluating every gate that
// becomes resolvable and descending into its output net. The explicit stack
// visits gates in the same order as a recursive walk would.
func (s *Simulator) propagate(start int) {
	nl := s.Netlist
	stack := []frame{{net: start}}

	for len(stack) > 0 {
		if len(stack) > s.maxDepth {
			s.maxDepth = len(stack)
		}

		top := &stack[len(stack)-1]
		fanout := nl.MustNet(top.net).Fanout
		if top.pos >= len(fanout) {
			stack = stack[:len(stack)-1]
			continue
		}
		g := nl.Gate(fanout[top.pos])
		top.pos++

		for i, in := range g.Inputs {
			g.InputValues[i] = nl.MustNet(in).Level
		}
		if !g.Ready() {
			if !g.Value.IsResolved() {
				s.Logger.Trace("%s waiting on %v", g, g.InputValues)
			}
			continue
		}

		v := g.Eval()
		s.evaluations++
		if !v.IsResolved() {
			continue
		}

		out := nl.MustNet(g.Output)
		if out.Level.IsResolved() {
			continue
		}
		out.Level = s.drive(out.ID, v)
		s.Logger.Propagation("%s %v -> net %d = %s", g.Type, g.InputValues, out.ID, out.Level)

		stack = append(stack, frame{net: out.ID})
	}
}

// drive returns the level a net takes when v is driven onto it, applying the
// net's stuck-at fault when fault simulation is on
func (s *Simulator) drive(net int, v circuit.LogicValue) circuit.LogicValue {
	if !s.faultEnabled {
		return v
	}
	f, ok := s.faults.Lookup(net)
	if !ok {
		return v
	}
	fv := f.Apply(v)
	if fv != v {
		s.Logger.Fault("net %d %s: %s -> %s", net, f.Kind, v, fv)
	}
	return fv
}

func (s *Simulator) outputsResolved() bool {
	for _, id := range s.Netlist.Outputs {
		if !s.Netlist.MustNet(id).Level.IsResolved() {
			return false
		}
	}
	return true
}

// Simulate builds a simulator without logging or metrics and runs it once
func Simulate(nl *circuit.Netlist, vector []byte, faultEnabled bool, faults circuit.FaultTable) (*Result, error) {
	return NewSimulator(nl, nil, nil).Simulate(vector, faultEnabled, faults)
}
