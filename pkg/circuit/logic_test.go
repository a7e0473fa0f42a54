package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvertInvolution(t *testing.T) {
	for _, v := range []LogicValue{Zero, One, D, Dnot} {
		assert.Equal(t, v, Invert(Invert(v)), "invert twice %s", v)
		assert.NotEqual(t, v, Invert(v), "invert %s", v)
	}
	assert.Equal(t, One, Invert(Zero))
	assert.Equal(t, Zero, Invert(One))
	assert.Equal(t, Dnot, Invert(D))
	assert.Equal(t, D, Invert(Dnot))
	assert.Equal(t, X, Invert(X))
	assert.Equal(t, U, Invert(U))
}

func TestLogicValueComponents(t *testing.T) {
	assert.Equal(t, One, D.Good())
	assert.Equal(t, Zero, D.Faulty())
	assert.Equal(t, Zero, Dnot.Good())
	assert.Equal(t, One, Dnot.Faulty())
	assert.Equal(t, X, X.Good())
	assert.Equal(t, One, One.Faulty())

	assert.True(t, D.IsFaulty())
	assert.True(t, Dnot.IsFaulty())
	assert.False(t, X.IsFaulty())
	assert.False(t, U.IsResolved())
	assert.True(t, X.IsResolved())
}

func TestCompose(t *testing.T) {
	tests := []struct {
		good, faulty, want LogicValue
	}{
		{One, Zero, D},
		{Zero, One, Dnot},
		{One, One, One},
		{Zero, Zero, Zero},
		{X, One, X},
		{Zero, X, X},
		{U, One, U},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Compose(tt.good, tt.faulty), "Compose(%s, %s)", tt.good, tt.faulty)
	}

	for _, v := range []LogicValue{Zero, One, D, Dnot, X} {
		assert.Equal(t, v, Compose(v.Good(), v.Faulty()), "round trip %s", v)
	}
}

func TestParseLogicValue(t *testing.T) {
	assert.Equal(t, Zero, ParseLogicValue(0))
	assert.Equal(t, One, ParseLogicValue(1))
	assert.Equal(t, Zero, ParseLogicValue('0'))
	assert.Equal(t, One, ParseLogicValue('1'))
	assert.Equal(t, X, ParseLogicValue(2))
	assert.Equal(t, X, ParseLogicValue('x'))
}

func TestLogicValueString(t *testing.T) {
	assert.Equal(t, "D'", Dnot.String())
	assert.Equal(t, "U", U.String())
	assert.Equal(t, "?", LogicValue(42).String())
}
