package utils

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fyerfyer/faultsim/pkg/circuit"
	"github.com/pkg/errors"
)

// ParseNetlist reads a netlist in the whitespace separated record format:
//
//	AND 1 2 3
//	INV 3 4
//	INPUT 1 2 -1
//	OUTPUT 4
//
// Blank lines and lines starting with # are skipped.
func ParseNetlist(r io.Reader) (circuit.Records, error) {
	var rec circuit.Records

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(stripComment(scanner.Text()))
		if len(fields) == 0 {
			continue
		}

		keyword := strings.ToUpper(fields[0])
		switch keyword {
		case "INPUT", "OUTPUT":
			ids, err := parseIDs(fields[1:], lineNo, true)
			if err != nil {
				return rec, err
			}
			kind := circuit.InputPort
			if keyword == "OUTPUT" {
				kind = circuit.OutputPort
			}
			rec.Ports = append(rec.Ports, circuit.PortRecord{Kind: kind, IDs: ids, Line: lineNo})

		default:
			gateType, ok := circuit.ParseGateType(keyword)
			if !ok {
				return rec, errors.Wrapf(circuit.ErrMalformedNetlist, "line %d: unknown record %q", lineNo, fields[0])
			}
			if len(fields) != gateType.Arity()+2 {
				return rec, errors.Wrapf(circuit.ErrMalformedNetlist, "line %d: %s expects %d net ids, got %d",
					lineNo, gateType, gateType.Arity()+1, len(fields)-1)
			}
			ids, err := parseIDs(fields[1:], lineNo, false)
			if err != nil {
				return rec, err
			}
			rec.Gates = append(rec.Gates, circuit.GateRecord{
				Type:   gateType,
				Inputs: ids[:len(ids)-1],
				Output: ids[len(ids)-1],
				Line:   lineNo,
			})
		}
	}

	if err := scanner.Err(); err != nil {
		return rec, errors.Wrap(err, "read netlist")
	}
	return rec, nil
}

// ParseNetlistFile opens and parses a netlist file
func ParseNetlistFile(filename string) (circuit.Records, error) {
	file, err := os.Open(filename)
	if err != nil {
		return circuit.Records{}, errors.Wrap(err, "open netlist")
	}
	defer file.Close()

	rec, err := ParseNetlist(file)
	if err != nil {
		return rec, errors.Wrap(err, filename)
	}
	return rec, nil
}

// LoadNetlist parses a netlist file and builds its graph
func LoadNetlist(filename string, logger *Logger) (*circuit.Netlist, error) {
	rec, err := ParseNetlistFile(filename)
	if err != nil {
		return nil, err
	}
	nl, err := circuit.BuildNetlist(rec)
	if err != nil {
		return nil, errors.Wrap(err, filename)
	}
	if logger != nil {
		logger.Circuit("%s: %d gates, %d nets, %d inputs, %d outputs",
			filename, len(nl.Gates), nl.NetCount(), len(nl.Inputs), len(nl.Outputs))
		if md := nl.MultiDriven(); len(md) > 0 {
			logger.Warning("%s: nets %v have more than one driver", filename, md)
		}
	}
	return nl, nil
}

// parseIDs converts net id tokens. Ports may use -1 as a placeholder; gate
// records only take non-negative ids.
func parseIDs(tokens []string, lineNo int, allowPlaceholder bool) ([]int, error) {
	ids := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		id, err := strconv.Atoi(tok)
		if err != nil {
			return nil, errors.Wrapf(circuit.ErrMalformedNetlist, "line %d: bad net id %q", lineNo, tok)
		}
		if id < 0 && !(allowPlaceholder && id == -1) {
			return nil, errors.Wrapf(circuit.ErrMalformedNetlist, "line %d: negative net id %d", lineNo, id)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseFaultList reads "<net> <kind>" records, one per line
func ParseFaultList(r io.Reader) ([]circuit.FaultRecord, error) {
	records := make([]circuit.FaultRecord, 0)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(stripComment(scanner.Text()))
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, errors.Wrapf(circuit.ErrMalformedFaultRecord, "line %d: expected <net> <kind>, got %d fields",
				lineNo, len(fields))
		}
		net, err := strconv.Atoi(fields[0])
		if err != nil || net < 0 {
			return nil, errors.Wrapf(circuit.ErrMalformedFaultRecord, "line %d: bad net id %q", lineNo, fields[0])
		}
		kind, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, errors.Wrapf(circuit.ErrMalformedFaultRecord, "line %d: bad fault kind %q", lineNo, fields[1])
		}
		records = append(records, circuit.FaultRecord{Net: net, Kind: kind, Line: lineNo})
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read fault list")
	}
	return records, nil
}

// ParseFaultListFile opens and parses a fault list file
func ParseFaultListFile(filename string) ([]circuit.FaultRecord, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "open fault list")
	}
	defer file.Close()

	records, err := ParseFaultList(file)
	if err != nil {
		return nil, errors.Wrap(err, filename)
	}
	return records, nil
}

// ParseVector converts "0110", "0 1 1 0" or "0,1,x" into vector bytes.
// Characters other than 0 and 1 become X when simulated.
func ParseVector(s string) []byte {
	vector := make([]byte, 0, len(s))
	for _, r := range s {
		switch r {
		case ' ', '\t', ',', '\n', '\r':
			continue
		case '0':
			vector = append(vector, 0)
		case '1':
			vector = append(vector, 1)
		default:
			vector = append(vector, 'x')
		}
	}
	return vector
}

// FormatVector is the inverse of ParseVector
func FormatVector(vector []byte) string {
	var b strings.Builder
	for _, v := range vector {
		b.WriteString(circuit.ParseLogicValue(v).String())
	}
	return b.String()
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}
