package circuit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// NetType represents the classification of a net in the circuit
type NetType int

const (
	Internal NetType = iota
	PrimaryInput
	PrimaryOutput
)

// String returns a string representation of the net type
func (t NetType) String() string {
	switch t {
	case PrimaryInput:
		return "INPUT"
	case PrimaryOutput:
		return "OUTPUT"
	default:
		return "NET"
	}
}

// Net represents a wire in the circuit
type Net struct {
	ID     int        // Net identifier from the netlist
	Type   NetType    // Classification of the net
	Level  LogicValue // Current value, U until driven
	Fanout []int      // Indices of the gates reading this net
	Driver int        // Index of the driving gate, -1 if none
}

// NewNet creates an internal net with no driver
func NewNet(id int) *Net {
	return &Net{
		ID:     id,
		Type:   Internal,
		Level:  U,
		Fanout: make([]int, 0),
		Driver: -1,
	}
}

// String returns a string representation of the net
func (n *Net) String() string {
	return fmt.Sprintf("%d=%s", n.ID, n.Level)
}

// PortKind distinguishes INPUT and OUTPUT port declarations
type PortKind int

const (
	InputPort PortKind = iota
	OutputPort
)

// GateRecord is one parsed gate line
type GateRecord struct {
	Type   GateType
	Inputs []int
	Output int
	Line   int // Source line, 0 if unknown
}

// PortRecord is one parsed INPUT or OUTPUT line. -1 marks an empty position.
type PortRecord struct {
	Kind PortKind
	IDs  []int
	Line int
}

// Records is the parsed form of a netlist file
type Records struct {
	Gates []GateRecord
	Ports []PortRecord
}

// Netlist holds all gates and nets of a combinational circuit
type Netlist struct {
	Gates   []*Gate
	Nets    map[int]*Net
	Inputs  []int // Primary input net ids, in declaration order
	Outputs []int // Primary output net ids, in declaration order
}

// NewNetlist creates an empty netlist
func NewNetlist() *Netlist {
	return &Netlist{
		Gates:   make([]*Gate, 0),
		Nets:    make(map[int]*Net),
		Inputs:  make([]int, 0),
		Outputs: make([]int, 0),
	}
}

// BuildNetlist constructs the netlist graph from parsed records
func BuildNetlist(rec Records) (*Netlist, error) {
	nl := NewNetlist()

	for i, gr := range rec.Gates {
		if err := checkGateRecord(gr); err != nil {
			return nil, err
		}
		g := NewGate(i, gr.Type, gr.Inputs, gr.Output)
		nl.Gates = append(nl.Gates, g)

		for _, id := range gr.Inputs {
			n := nl.ensureNet(id)
			n.Fanout = append(n.Fanout, g.Index)
		}
		out := nl.ensureNet(gr.Output)
		if out.Driver < 0 {
			out.Driver = g.Index
		}
	}

	inSeen := make(map[int]bool)
	outSeen := make(map[int]bool)
	for _, pr := range rec.Ports {
		for _, id := range pr.IDs {
			if id == -1 {
				continue
			}
			if id < 0 {
				return nil, errors.Wrapf(ErrMalformedNetlist, "line %d: negative port net id %d", pr.Line, id)
			}
			n := nl.ensureNet(id)
			switch pr.Kind {
			case InputPort:
				n.Type = PrimaryInput
				if !inSeen[id] {
					inSeen[id] = true
					nl.Inputs = append(nl.Inputs, id)
				}
			case OutputPort:
				if n.Type != PrimaryInput {
					n.Type = PrimaryOutput
				}
				if !outSeen[id] {
					outSeen[id] = true
					nl.Outputs = append(nl.Outputs, id)
				}
			}
		}
	}

	return nl, nil
}

func checkGateRecord(gr GateRecord) error {
	if gr.Type.Arity() == 0 {
		return errors.Wrapf(ErrMalformedNetlist, "line %d: unknown gate type %d", gr.Line, int(gr.Type))
	}
	if len(gr.Inputs) != gr.Type.Arity() {
		return errors.Wrapf(ErrMalformedNetlist, "line %d: %s takes %d inputs, got %d",
			gr.Line, gr.Type, gr.Type.Arity(), len(gr.Inputs))
	}
	for _, id := range gr.Inputs {
		if id < 0 {
			return errors.Wrapf(ErrMalformedNetlist, "line %d: negative net id %d", gr.Line, id)
		}
	}
	if gr.Output < 0 {
		return errors.Wrapf(ErrMalformedNetlist, "line %d: negative net id %d", gr.Line, gr.Output)
	}
	return nil
}

// ensureNet returns the net with the given id, creating it on first reference
func (nl *Netlist) ensureNet(id int) *Net {
	if n, ok := nl.Nets[id]; ok {
		return n
	}
	n := NewNet(id)
	nl.Nets[id] = n
	return n
}

// Net returns a net by id
func (nl *Netlist) Net(id int) (*Net, bool) {
	n, ok := nl.Nets[id]
	return n, ok
}

// MustNet returns a net by id and panics if the netlist does not hold it.
// Every id reachable from a gate or port is created by BuildNetlist.
func (nl *Netlist) MustNet(id int) *Net {
	n, ok := nl.Nets[id]
	if !ok {
		inconsistent("net %d missing from directory", id)
	}
	return n
}

// Gate returns a gate by index and panics on an out of range index
func (nl *Netlist) Gate(index int) *Gate {
	if index < 0 || index >= len(nl.Gates) {
		inconsistent("gate %d out of range", index)
	}
	return nl.Gates[index]
}

// NetCount returns the number of nets in the directory
func (nl *Netlist) NetCount() int {
	return len(nl.Nets)
}

// NetIDs returns every net id in ascending order
func (nl *Netlist) NetIDs() []int {
	ids := make([]int, 0, len(nl.Nets))
	for id := range nl.Nets {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// MultiDriven returns, in ascending order, the nets driven by more than one
// gate. Only the first driver to resolve sets such a net.
func (nl *Netlist) MultiDriven() []int {
	drivers := make(map[int]int)
	for _, g := range nl.Gates {
		drivers[g.Output]++
	}
	ids := make([]int, 0)
	for id, count := range drivers {
		if count > 1 {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// Reset resets every net and gate to U
func (nl *Netlist) Reset() {
	for _, n := range nl.Nets {
		n.Level = U
	}
	for _, g := range nl.Gates {
		g.Reset()
	}
}

// Clone returns a deep copy of the netlist, including current levels
func (nl *Netlist) Clone() *Netlist {
	c := &Netlist{
		Gates:   make([]*Gate, len(nl.Gates)),
		Nets:    make(map[int]*Net, len(nl.Nets)),
		Inputs:  append([]int(nil), nl.Inputs...),
		Outputs: append([]int(nil), nl.Outputs...),
	}
	for i, g := range nl.Gates {
		cg := NewGate(g.Index, g.Type, g.Inputs, g.Output)
		copy(cg.InputValues, g.InputValues)
		cg.Value = g.Value
		c.Gates[i] = cg
	}
	for id, n := range nl.Nets {
		c.Nets[id] = &Net{
			ID:     n.ID,
			Type:   n.Type,
			Level:  n.Level,
			Fanout: append([]int(nil), n.Fanout...),
			Driver: n.Driver,
		}
	}
	return c
}

// Levels returns a snapshot of every net level
func (nl *Netlist) Levels() map[int]LogicValue {
	levels := make(map[int]LogicValue, len(nl.Nets))
	for id, n := range nl.Nets {
		levels[id] = n.Level
	}
	return levels
}

// String returns a string representation of the netlist state
func (nl *Netlist) String() string {
	var builder strings.Builder

	builder.WriteString("Inputs: ")
	for _, id := range nl.Inputs {
		builder.WriteString(fmt.Sprintf("%s ", nl.Nets[id]))
	}

	builder.WriteString("\nOutputs: ")
	for _, id := range nl.Outputs {
		builder.WriteString(fmt.Sprintf("%s ", nl.Nets[id]))
	}

	builder.WriteString("\nGates: ")
	for _, g := range nl.Gates {
		builder.WriteString(fmt.Sprintf("%s ", g))
	}

	return builder.String()
}
