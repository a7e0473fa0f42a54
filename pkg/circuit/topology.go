package circuit

import (
	"sort"
)

// Topology contains information about the netlist structure
type Topology struct {
	Netlist      *Netlist
	LevelMap     map[int]int  // Net id to its level, primary inputs at 0
	MaxLevel     int          // Maximum level in the circuit
	Order        []int        // Gate indices in topological order
	FanoutPoints []int        // Nets that feed more than one gate
	ReconvPoints map[int]bool // Nets where fanout branches reconverge
	Floating     []int        // Nets that never receive a level
}

// NewTopology creates a new topology analyzer for the given netlist
func NewTopology(nl *Netlist) *Topology {
	return &Topology{
		Netlist:      nl,
		LevelMap:     make(map[int]int),
		ReconvPoints: make(map[int]bool),
	}
}

// Analyze performs a complete topological analysis of the netlist
func (t *Topology) Analyze() {
	t.ComputeLevels()
	t.IdentifyFanoutPoints()
	t.IdentifyReconvergentPaths()
}

// ComputeLevels assigns a level to each net reachable from the primary
// inputs and orders the gates topologically. Gates on a combinational cycle,
// or behind an undriven net, are left out of Order and their output nets end
// up in Floating.
func (t *Topology) ComputeLevels() {
	nl := t.Netlist
	t.LevelMap = make(map[int]int, len(nl.Nets))
	t.Order = make([]int, 0, len(nl.Gates))
	t.MaxLevel = 0

	pending := make([]int, len(nl.Gates))
	queue := make([]int, 0, len(nl.Inputs))
	for _, g := range nl.Gates {
		pending[g.Index] = len(g.Inputs)
	}

	// A primary input is leveled first even if a gate also drives it
	for _, id := range nl.Inputs {
		if _, ok := t.LevelMap[id]; !ok {
			t.LevelMap[id] = 0
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		for _, gi := range nl.MustNet(id).Fanout {
			pending[gi]--
			if pending[gi] != 0 {
				continue
			}
			g := nl.Gate(gi)
			t.Order = append(t.Order, gi)

			level := 0
			for _, in := range g.Inputs {
				if t.LevelMap[in]+1 > level {
					level = t.LevelMap[in] + 1
				}
			}
			if _, ok := t.LevelMap[g.Output]; ok {
				continue
			}
			t.LevelMap[g.Output] = level
			if level > t.MaxLevel {
				t.MaxLevel = level
			}
			queue = append(queue, g.Output)
		}
	}

	t.Floating = make([]int, 0)
	for _, id := range nl.NetIDs() {
		if _, ok := t.LevelMap[id]; !ok {
			t.Floating = append(t.Floating, id)
		}
	}
}

// IsAcyclic returns true if every gate received a topological position
func (t *Topology) IsAcyclic() bool {
	return len(t.Order) == len(t.Netlist.Gates)
}

// IdentifyFanoutPoints identifies all fanout points in the netlist
func (t *Topology) IdentifyFanoutPoints() {
	t.FanoutPoints = make([]int, 0)

	for _, id := range t.Netlist.NetIDs() {
		if len(t.Netlist.Nets[id].Fanout) > 1 {
			t.FanoutPoints = append(t.FanoutPoints, id)
		}
	}
}

// IdentifyReconvergentPaths marks the nets reached from a fanout point by
// more than one path
func (t *Topology) IdentifyReconvergentPaths() {
	nl := t.Netlist
	t.ReconvPoints = make(map[int]bool)

	for _, fanout := range t.FanoutPoints {
		visited := make(map[int]bool)
		queue := make([]int, 0)

		for _, gi := range nl.MustNet(fanout).Fanout {
			out := nl.Gate(gi).Output
			if visited[out] {
				t.ReconvPoints[out] = true
				continue
			}
			visited[out] = true
			queue = append(queue, out)
		}

		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]

			for _, gi := range nl.MustNet(current).Fanout {
				out := nl.Gate(gi).Output
				if out == fanout {
					continue
				}
				if visited[out] {
					t.ReconvPoints[out] = true
					continue
				}
				visited[out] = true
				queue = append(queue, out)
			}
		}
	}
}

// Reconvergent returns the reconvergence nets in ascending order
func (t *Topology) Reconvergent() []int {
	ids := make([]int, 0, len(t.ReconvPoints))
	for id := range t.ReconvPoints {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
