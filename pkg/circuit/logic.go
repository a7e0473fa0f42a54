package circuit

// LogicValue represents the possible values of a net
type LogicValue int

const (
	U    LogicValue = iota // Not yet computed in this run
	Zero                   // Logic 0
	One                    // Logic 1
	D                      // Good circuit: 1, Faulty circuit: 0
	Dnot                   // Good circuit: 0, Faulty circuit: 1
	X                      // Unknown/ambiguous signal
)

// String returns a string representation of the logic value
func (v LogicValue) String() string {
	switch v {
	case U:
		return "U"
	case Zero:
		return "0"
	case One:
		return "1"
	case D:
		return "D"
	case Dnot:
		return "D'"
	case X:
		return "X"
	default:
		return "?"
	}
}

// Invert returns the complement of v. X and U are returned unchanged.
func Invert(v LogicValue) LogicValue {
	switch v {
	case Zero:
		return One
	case One:
		return Zero
	case D:
		return Dnot
	case Dnot:
		return D
	default:
		return v
	}
}

// IsResolved returns true once a value has been computed (not U)
func (v LogicValue) IsResolved() bool {
	return v != U
}

// IsFaulty returns true if the value is D or D'
func (v LogicValue) IsFaulty() bool {
	return v == D || v == Dnot
}

// Good returns the good circuit component (1 for D, 0 for D')
func (v LogicValue) Good() LogicValue {
	switch v {
	case D:
		return One
	case Dnot:
		return Zero
	default:
		return v
	}
}

// Faulty returns the faulty circuit component (0 for D, 1 for D')
func (v LogicValue) Faulty() LogicValue {
	switch v {
	case D:
		return Zero
	case Dnot:
		return One
	default:
		return v
	}
}

// Compose builds the composite value of a good and a faulty circuit value.
// Either component being X yields X, and U yields U.
func Compose(good, faulty LogicValue) LogicValue {
	switch {
	case good == U || faulty == U:
		return U
	case good == X || faulty == X:
		return X
	case good == faulty:
		return good
	case good == One && faulty == Zero:
		return D
	case good == Zero && faulty == One:
		return Dnot
	default:
		return X
	}
}

// ParseLogicValue converts an input vector byte into a seed value.
// Both raw bits (0, 1) and ASCII digits are accepted; anything else is X.
func ParseLogicValue(b byte) LogicValue {
	switch b {
	case 0, '0':
		return Zero
	case 1, '1':
		return One
	default:
		return X
	}
}
