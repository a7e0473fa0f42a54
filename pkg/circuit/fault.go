package circuit

import (
	"fmt"
	"sort"
)

// FaultKind is the stuck-at value of a fault
type FaultKind int

const (
	StuckAt0 FaultKind = iota
	StuckAt1
)

// String returns a string representation of the fault kind
func (k FaultKind) String() string {
	if k == StuckAt1 {
		return "stuck-at-1"
	}
	return "stuck-at-0"
}

// Value returns the logic value the faulty circuit is stuck at
func (k FaultKind) Value() LogicValue {
	if k == StuckAt1 {
		return One
	}
	return Zero
}

// FaultRecord is one parsed fault list line. Kind 0 is stuck-at-0 and kind 1
// stuck-at-1; other kinds are ignored.
type FaultRecord struct {
	Net  int
	Kind int
	Line int
}

// Fault is a single stuck-at fault on a net
type Fault struct {
	Net  int
	Kind FaultKind
}

// String returns a string like "12/0"
func (f Fault) String() string {
	return fmt.Sprintf("%d/%d", f.Net, int(f.Kind))
}

// Apply returns the value seen on the faulty net when v is driven onto it.
// The good circuit keeps v, the faulty circuit sees the stuck value.
func (f Fault) Apply(v LogicValue) LogicValue {
	if !v.IsResolved() || v == X {
		return v
	}
	return Compose(v.Good(), f.Kind.Value())
}

// FaultTable is a sparse table of faults keyed by net id
type FaultTable map[int]FaultKind

// BuildFaultTable builds the fault table from parsed records. netCount is
// only a capacity hint.
func BuildFaultTable(records []FaultRecord, netCount int) FaultTable {
	size := len(records)
	if netCount < size {
		size = netCount
	}
	if size < 0 {
		size = 0
	}
	ft := make(FaultTable, size)
	for _, r := range records {
		switch r.Kind {
		case 0:
			ft[r.Net] = StuckAt0
		case 1:
			ft[r.Net] = StuckAt1
		}
	}
	return ft
}

// Lookup returns the fault on a net, if any
func (ft FaultTable) Lookup(net int) (Fault, bool) {
	k, ok := ft[net]
	if !ok {
		return Fault{}, false
	}
	return Fault{Net: net, Kind: k}, true
}

// Len returns the number of faulty nets
func (ft FaultTable) Len() int {
	return len(ft)
}

// Faults returns every fault ordered by net id
func (ft FaultTable) Faults() []Fault {
	faults := make([]Fault, 0, len(ft))
	for net, k := range ft {
		faults = append(faults, Fault{Net: net, Kind: k})
	}
	sort.Slice(faults, func(i, j int) bool {
		return faults[i].Net < faults[j].Net
	})
	return faults
}

// Single returns a table holding only f
func Single(f Fault) FaultTable {
	return FaultTable{f.Net: f.Kind}
}

// AllFaults returns both stuck-at faults for every net, ordered by net id.
// Used to build a full single-fault list when no fault file is given.
func AllFaults(nl *Netlist) []Fault {
	ids := nl.NetIDs()
	faults := make([]Fault, 0, 2*len(ids))
	for _, id := range ids {
		faults = append(faults, Fault{Net: id, Kind: StuckAt0}, Fault{Net: id, Kind: StuckAt1})
	}
	return faults
}
