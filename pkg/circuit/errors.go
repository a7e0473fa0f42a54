package circuit

import "github.com/pkg/errors"

// Error kinds returned while building or simulating a circuit. Callers match
// them with errors.Is; the concrete errors carry line and net context.
var (
	ErrMalformedNetlist     = errors.New("malformed netlist")
	ErrMalformedFaultRecord = errors.New("malformed fault record")
	ErrVectorLength         = errors.New("input vector length mismatch")
	ErrInconsistent         = errors.New("internal consistency violation")
)

// inconsistent panics with an ErrInconsistent error. It is reserved for
// states the netlist constructor guarantees can never occur.
func inconsistent(format string, args ...interface{}) {
	panic(errors.Wrapf(ErrInconsistent, format, args...))
}
