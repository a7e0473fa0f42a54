package algorithm

import (
	"time"

	"github.com/fyerfyer/faultsim/pkg/circuit"
)

// FaultOutcome is the result of simulating one fault
type FaultOutcome struct {
	Fault    circuit.Fault
	Detected bool
	Outputs  []OutputLevel
	Path     []int         // Nets carrying the fault effect, from the site on
	Blocked  []BlockedGate // Where the fault effect stopped
}

// BlockedGate is a D-frontier gate and the inputs holding its controlling
// value
type BlockedGate struct {
	Gate   int
	Inputs []int
}

// Values returns the output levels in primary output order
func (o FaultOutcome) Values() []circuit.LogicValue {
	return levelsOf(o.Outputs)
}

// CampaignStats summarizes a fault list run
type CampaignStats struct {
	Faults    int
	Detected  int
	TotalTime time.Duration
}

// Coverage returns the detected share of the faults as a percentage
func (s CampaignStats) Coverage() float64 {
	if s.Faults == 0 {
		return 0
	}
	return float64(s.Detected) / float64(s.Faults) * 100
}

// Campaign is the outcome of RunFaultList
type Campaign struct {
	Good     *Result // Fault-free run
	Outcomes []FaultOutcome
	Stats    CampaignStats
}

// RunFaultList simulates every fault in turn against one input vector. Each
// fault gets a fresh run with only that fault active.
func (s *Simulator) RunFaultList(vector []byte, faults []circuit.Fault) (*Campaign, error) {
	startTime := time.Now()
	s.Logger.Info("Simulating %d faults", len(faults))
	s.Logger.Indent()
	defer s.Logger.Outdent()

	good, err := s.Simulate(vector, false, nil)
	if err != nil {
		return nil, err
	}

	c := &Campaign{
		Good:     good,
		Outcomes: make([]FaultOutcome, 0, len(faults)),
	}

	for _, f := range faults {
		res, err := s.Simulate(vector, true, circuit.Single(f))
		if err != nil {
			return nil, err
		}

		outcome := FaultOutcome{
			Fault:    f,
			Detected: res.Detected(),
			Outputs:  res.Outputs,
			Path:     SensitizedNets(s.Netlist, f.Net),
		}
		if !outcome.Detected {
			for _, gi := range DFrontier(s.Netlist) {
				outcome.Blocked = append(outcome.Blocked, BlockedGate{
					Gate:   gi,
					Inputs: BlockingInputs(s.Netlist, s.Netlist.Gate(gi)),
				})
			}
		}
		c.Outcomes = append(c.Outcomes, outcome)

		c.Stats.Faults++
		if outcome.Detected {
			c.Stats.Detected++
		}
		s.Metrics.ObserveFault(outcome.Detected)
		s.Logger.Debug("fault %s detected=%v", f, outcome.Detected)
	}

	c.Stats.TotalTime = time.Since(startTime)
	s.Logger.Info("Faults detected: %d/%d", c.Stats.Detected, c.Stats.Faults)
	s.Logger.Info("Fault coverage: %.2f%%", c.Stats.Coverage())

	return c, nil
}
