package algorithm

import (
	"github.com/fyerfyer/faultsim/pkg/circuit"
)

// SensitizedNets returns the nets the fault effect travelled through after
// the last run, starting at the fault site, in breadth-first order. A gate
// passes the effect on when its output carries D or D'. Returns nil when the
// site itself holds no fault effect.
func SensitizedNets(nl *circuit.Netlist, site int) []int {
	n, ok := nl.Net(site)
	if !ok || !n.Level.IsFaulty() {
		return nil
	}

	path := []int{site}
	visited := map[int]bool{site: true}
	queue := []int{site}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, gi := range nl.MustNet(current).Fanout {
			out := nl.Gate(gi).Output
			if visited[out] || !nl.MustNet(out).Level.IsFaulty() {
				continue
			}
			visited[out] = true
			path = append(path, out)
			queue = append(queue, out)
		}
	}

	return path
}
