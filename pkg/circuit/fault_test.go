package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaultApply(t *testing.T) {
	sa0 := Fault{Net: 1, Kind: StuckAt0}
	sa1 := Fault{Net: 1, Kind: StuckAt1}

	tests := []struct {
		f     Fault
		in    LogicValue
		want  LogicValue
		label string
	}{
		{sa0, One, D, "excited sa0"},
		{sa0, Zero, Zero, "masked sa0"},
		{sa1, Zero, Dnot, "excited sa1"},
		{sa1, One, One, "masked sa1"},
		{sa0, D, D, "good side of D kept"},
		{sa1, D, One, "good 1 stuck at 1"},
		{sa0, Dnot, Zero, "good 0 stuck at 0"},
		{sa0, X, X, "unknown stays unknown"},
		{sa1, U, U, "not computed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.f.Apply(tt.in), tt.label)
	}
}

func TestFaultString(t *testing.T) {
	assert.Equal(t, "12/0", Fault{Net: 12, Kind: StuckAt0}.String())
	assert.Equal(t, "3/1", Fault{Net: 3, Kind: StuckAt1}.String())
	assert.Equal(t, "stuck-at-1", StuckAt1.String())
	assert.Equal(t, One, StuckAt1.Value())
	assert.Equal(t, Zero, StuckAt0.Value())
}

func TestBuildFaultTable(t *testing.T) {
	ft := BuildFaultTable([]FaultRecord{
		{Net: 7, Kind: 1},
		{Net: 3, Kind: 0},
		{Net: 5, Kind: 2},
		{Net: 9, Kind: -1},
	}, 10)

	assert.Equal(t, 2, ft.Len())

	f, ok := ft.Lookup(7)
	require.True(t, ok)
	assert.Equal(t, Fault{Net: 7, Kind: StuckAt1}, f)

	_, ok = ft.Lookup(5)
	assert.False(t, ok, "kinds other than 0 and 1 are ignored")

	assert.Equal(t, []Fault{{Net: 3, Kind: StuckAt0}, {Net: 7, Kind: StuckAt1}}, ft.Faults())
}

func TestBuildFaultTableLastRecordWins(t *testing.T) {
	ft := BuildFaultTable([]FaultRecord{{Net: 4, Kind: 0}, {Net: 4, Kind: 1}}, 0)
	f, ok := ft.Lookup(4)
	require.True(t, ok)
	assert.Equal(t, StuckAt1, f.Kind)

	// net ids beyond the capacity hint still land in the table
	ft = BuildFaultTable([]FaultRecord{{Net: 1000, Kind: 0}}, 2)
	_, ok = ft.Lookup(1000)
	assert.True(t, ok)
}

func TestSingleAndAllFaults(t *testing.T) {
	f := Fault{Net: 11, Kind: StuckAt1}
	ft := Single(f)
	assert.Equal(t, []Fault{f}, ft.Faults())

	nl := buildC17(t)
	all := AllFaults(nl)
	require.Len(t, all, 2*nl.NetCount())
	assert.Equal(t, Fault{Net: 1, Kind: StuckAt0}, all[0])
	assert.Equal(t, Fault{Net: 1, Kind: StuckAt1}, all[1])
	assert.Equal(t, Fault{Net: 23, Kind: StuckAt1}, all[len(all)-1])
}
