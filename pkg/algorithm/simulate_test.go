package algorithm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fyerfyer/faultsim/pkg/circuit"
	"github.com/fyerfyer/faultsim/pkg/metrics"
	"github.com/fyerfyer/faultsim/pkg/utils"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const c17 = `
# ISCAS-85 c17
NAND 1 3 10
NAND 3 6 11
NAND 2 11 16
NAND 11 7 19
NAND 10 16 22
NAND 16 19 23
INPUT 1 2 3 6 7
OUTPUT 22 23
`

func mustNetlist(t *testing.T, src string) *circuit.Netlist {
	t.Helper()
	rec, err := utils.ParseNetlist(strings.NewReader(src))
	require.NoError(t, err)
	nl, err := circuit.BuildNetlist(rec)
	require.NoError(t, err)
	return nl
}

func faultTable(t *testing.T, src string, nl *circuit.Netlist) circuit.FaultTable {
	t.Helper()
	records, err := utils.ParseFaultList(strings.NewReader(src))
	require.NoError(t, err)
	return circuit.BuildFaultTable(records, nl.NetCount())
}

// TestSimulateBasicGates covers single gate netlists driven by binary vectors
func TestSimulateBasicGates(t *testing.T) {
	tests := []struct {
		name    string
		netlist string
		vector  []byte
		want    []circuit.LogicValue
	}{
		{"AND 11", "AND 1 2 3\nINPUT 1 2\nOUTPUT 3", []byte{1, 1}, []circuit.LogicValue{circuit.One}},
		{"AND 01", "AND 1 2 3\nINPUT 1 2\nOUTPUT 3", []byte{0, 1}, []circuit.LogicValue{circuit.Zero}},
		{"INV 1", "INV 1 2\nINPUT 1\nOUTPUT 2", []byte{1}, []circuit.LogicValue{circuit.Zero}},
		{"NOR 00", "NOR 1 2 3\nINPUT 1 2\nOUTPUT 3", []byte{0, 0}, []circuit.LogicValue{circuit.One}},
		{"BUF x", "BUF 1 2\nINPUT 1\nOUTPUT 2", []byte{'x'}, []circuit.LogicValue{circuit.X}},
		{"AND 0x", "AND 1 2 3\nINPUT 1 2\nOUTPUT 3", []byte{0, 'x'}, []circuit.LogicValue{circuit.Zero}},
		{"c17 11111", c17, []byte{1, 1, 1, 1, 1}, []circuit.LogicValue{circuit.One, circuit.Zero}},
		{"c17 00000", c17, []byte{0, 0, 0, 0, 0}, []circuit.LogicValue{circuit.Zero, circuit.Zero}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nl := mustNetlist(t, tt.netlist)
			res, err := Simulate(nl, tt.vector, false, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Values())
			assert.Empty(t, res.Unresolved())
			assert.False(t, res.Detected())
		})
	}
}

// TestSimulateInternalNet checks levels of a net that is not an output
func TestSimulateInternalNet(t *testing.T) {
	nl := mustNetlist(t, "OR 1 2 3\nNAND 3 1 4\nINPUT 1 2\nOUTPUT 4")

	res, err := Simulate(nl, []byte{0, 0}, false, nil)
	require.NoError(t, err)

	assert.Equal(t, circuit.Zero, res.Levels[3])
	assert.Equal(t, circuit.Zero, nl.MustNet(3).Level)
	assert.Equal(t, []circuit.LogicValue{circuit.One}, res.Values())
	assert.Equal(t, 2, res.Evaluations)
	assert.Equal(t, 1, res.Seeded)
	assert.True(t, res.EarlyExit)
}

// TestSimulateStuckAt checks an excited stuck-at-0 fault on a primary input
func TestSimulateStuckAt(t *testing.T) {
	nl := mustNetlist(t, "AND 1 2 3\nINPUT 1 2\nOUTPUT 3")
	faults := faultTable(t, "1 0\n", nl)

	tests := []struct {
		vector   []byte
		want     circuit.LogicValue
		detected bool
	}{
		{[]byte{1, 1}, circuit.D, true},
		{[]byte{1, 0}, circuit.Zero, false},
		{[]byte{1, 'x'}, circuit.X, false},
		{[]byte{0, 1}, circuit.Zero, false},
	}
	for _, tt := range tests {
		res, err := Simulate(nl, tt.vector, true, faults)
		require.NoError(t, err)

		if tt.vector[0] == 1 {
			assert.Equal(t, circuit.D, res.Levels[1], "net 1 good 1 faulty 0")
		}
		assert.Equal(t, tt.want, res.Values()[0], "vector %v", tt.vector)
		assert.Equal(t, tt.detected, res.Detected(), "vector %v", tt.vector)
		assert.Equal(t, []circuit.Fault{{Net: 1, Kind: circuit.StuckAt0}}, res.Faults)
	}
}

func TestSimulateFaultDisabled(t *testing.T) {
	nl := mustNetlist(t, "AND 1 2 3\nINPUT 1 2\nOUTPUT 3")
	faults := faultTable(t, "1 0\n", nl)

	res, err := Simulate(nl, []byte{1, 1}, false, faults)
	require.NoError(t, err)
	assert.Equal(t, circuit.One, res.Values()[0])
	assert.Empty(t, res.Faults)
}

func TestSimulateFaultOnGateOutput(t *testing.T) {
	nl := mustNetlist(t, "NAND 1 2 3\nINV 3 4\nINPUT 1 2\nOUTPUT 4")

	// good 3 = 0, stuck at 1 gives D' and the inverter turns it into D
	res, err := Simulate(nl, []byte{1, 1}, true, circuit.Single(circuit.Fault{Net: 3, Kind: circuit.StuckAt1}))
	require.NoError(t, err)
	assert.Equal(t, circuit.Dnot, res.Levels[3])
	assert.Equal(t, circuit.D, res.Values()[0])
	assert.True(t, res.Detected())

	// masked when the good value equals the stuck value
	res, err = Simulate(nl, []byte{0, 1}, true, circuit.Single(circuit.Fault{Net: 3, Kind: circuit.StuckAt1}))
	require.NoError(t, err)
	assert.Equal(t, circuit.One, res.Levels[3])
	assert.False(t, res.Detected())
}

func TestSimulateReconvergentFault(t *testing.T) {
	nl := mustNetlist(t, c17)

	// 11 stuck at 1 under 11111: good 11 = 0
	res, err := Simulate(nl, []byte{1, 1, 1, 1, 1}, true, circuit.Single(circuit.Fault{Net: 11, Kind: circuit.StuckAt1}))
	require.NoError(t, err)
	assert.Equal(t, circuit.Dnot, res.Levels[11])
	assert.Equal(t, circuit.D, res.Levels[16])
	assert.Equal(t, circuit.D, res.Levels[19])
	assert.Equal(t, []circuit.LogicValue{circuit.One, circuit.Dnot}, res.Values())
	assert.True(t, res.Detected())
}

// TestSimulateCycle checks that a feedback loop terminates with U outputs
func TestSimulateCycle(t *testing.T) {
	nl := mustNetlist(t, "AND 1 3 2\nBUF 2 3\nINV 1 4\nINPUT 1\nOUTPUT 2 4")

	for _, v := range []byte{0, 1} {
		res, err := Simulate(nl, []byte{v}, false, nil)
		require.NoError(t, err)
		assert.Equal(t, circuit.U, res.Levels[2])
		assert.Equal(t, circuit.U, res.Levels[3])
		assert.Equal(t, []int{2}, res.Unresolved())
		assert.Equal(t, circuit.Invert(circuit.ParseLogicValue(v)), res.Levels[4])
	}
}

func TestSimulateSelfLoop(t *testing.T) {
	nl := mustNetlist(t, "OR 1 2 2\nINPUT 1\nOUTPUT 2")

	res, err := Simulate(nl, []byte{1}, false, nil)
	require.NoError(t, err)
	assert.Equal(t, []circuit.LogicValue{circuit.U}, res.Values())
	assert.Zero(t, res.Evaluations)
}

// TestSimulateMonotonic checks that a net keeps the first value it receives
func TestSimulateMonotonic(t *testing.T) {
	// net 2 is both a primary input and driven by the inverter
	nl := mustNetlist(t, "INV 1 2\nINPUT 1 2\nOUTPUT 2")
	res, err := Simulate(nl, []byte{1, 1}, false, nil)
	require.NoError(t, err)
	assert.Equal(t, circuit.One, res.Values()[0])

	// two gates drive net 3, the first one evaluated wins
	nl = mustNetlist(t, "BUF 1 3\nINV 2 3\nBUF 3 4\nINPUT 1 2\nOUTPUT 4")
	res, err = Simulate(nl, []byte{1, 1}, false, nil)
	require.NoError(t, err)
	assert.Equal(t, circuit.One, res.Levels[3])
	assert.Equal(t, circuit.One, res.Values()[0])
}

func TestSimulateEvaluatesGatesOnce(t *testing.T) {
	nl := mustNetlist(t, c17)
	for v := 0; v < 32; v++ {
		res, err := Simulate(nl, vectorOf(v, 5), false, nil)
		require.NoError(t, err)
		assert.LessOrEqual(t, res.Evaluations, len(nl.Gates))
		for _, g := range nl.Gates {
			assert.True(t, g.Value.IsResolved(), "%s", g)
			assert.Equal(t, g.Value, nl.MustNet(g.Output).Level)
		}
	}
}

func TestSimulateEarlyExit(t *testing.T) {
	// the output depends only on the first input
	nl := mustNetlist(t, "BUF 1 3\nINV 2 4\nINPUT 1 2\nOUTPUT 3")
	res, err := Simulate(nl, []byte{1, 0}, false, nil)
	require.NoError(t, err)

	assert.True(t, res.EarlyExit)
	assert.Equal(t, 1, res.Seeded)
	assert.Equal(t, circuit.U, res.Levels[4], "second input never propagated")
	assert.Equal(t, circuit.Zero, res.Levels[2], "inputs are seeded up front")

	// both inputs seed before propagation, so one pass resolves the AND
	nl = mustNetlist(t, "AND 1 2 3\nINPUT 1 2\nOUTPUT 3")
	res, err = Simulate(nl, []byte{1, 1}, false, nil)
	require.NoError(t, err)
	assert.True(t, res.EarlyExit)
	assert.Equal(t, 1, res.Seeded)

	// every output needs its own input
	nl = mustNetlist(t, "BUF 1 3\nBUF 2 4\nINPUT 1 2\nOUTPUT 3 4")
	res, err = Simulate(nl, []byte{1, 1}, false, nil)
	require.NoError(t, err)
	assert.False(t, res.EarlyExit)
	assert.Equal(t, 2, res.Seeded)
	assert.Equal(t, []circuit.LogicValue{circuit.One, circuit.One}, res.Values())
}

// TestSimulateTraceWaitingGates logs gates whose inputs are still partly U
func TestSimulateTraceWaitingGates(t *testing.T) {
	var buf bytes.Buffer
	logger := utils.NewLogger(utils.TraceLevel)
	logger.SetOutput(&buf)
	logger.ShowTime = false

	nl := mustNetlist(t, "AND 1 3 2\nBUF 2 3\nINPUT 1\nOUTPUT 2")
	res, err := NewSimulator(nl, logger, nil).Simulate([]byte{1}, false, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, res.Unresolved())

	assert.Contains(t, buf.String(), "[TRACE] g0(AND 1 3 -> 2) waiting on [1 U]\n")
	assert.Contains(t, buf.String(), "[WARNING] outputs [2] unresolved after propagation\n")
}

func TestSimulateDeterministic(t *testing.T) {
	nl := mustNetlist(t, c17)
	faults := circuit.Single(circuit.Fault{Net: 16, Kind: circuit.StuckAt0})

	first, err := Simulate(nl, []byte{0, 1, 1, 0, 1}, true, faults)
	require.NoError(t, err)
	second, err := Simulate(nl.Clone(), []byte{0, 1, 1, 0, 1}, true, faults)
	require.NoError(t, err)
	again, err := Simulate(nl, []byte{0, 1, 1, 0, 1}, true, faults)
	require.NoError(t, err)

	assert.Equal(t, first.Levels, second.Levels)
	assert.Equal(t, first.Levels, again.Levels)
	assert.Equal(t, first.Evaluations, again.Evaluations)
}

func TestSimulateVectorLength(t *testing.T) {
	nl := mustNetlist(t, c17)
	_, err := Simulate(nl, []byte{1, 0}, false, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, circuit.ErrVectorLength))
}

func TestSimulateNoInputs(t *testing.T) {
	nl := mustNetlist(t, "AND 1 2 3\nOUTPUT 3")
	res, err := Simulate(nl, nil, false, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, res.Unresolved())
	assert.Equal(t, 0, res.Seeded)
}

func TestSimulatorMetrics(t *testing.T) {
	m := metrics.New()
	nl := mustNetlist(t, "AND 1 2 3\nINPUT 1 2\nOUTPUT 3")
	sim := NewSimulator(nl, nil, m)

	_, err := sim.Simulate([]byte{1, 1}, false, nil)
	require.NoError(t, err)
	_, err = sim.Simulate([]byte{1, 1}, true, faultTable(t, "2 0", nl))
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("good")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("fault")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.GateEvaluations))
}

func vectorOf(bits, width int) []byte {
	vector := make([]byte, width)
	for i := range vector {
		vector[i] = byte(bits >> (width - 1 - i) & 1)
	}
	return vector
}
