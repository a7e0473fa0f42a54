package utils

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// OutputEntry is one primary output in a report
type OutputEntry struct {
	Net   int    `yaml:"net"`
	Level string `yaml:"level"`
}

// FaultEntry is one simulated fault in a report
type FaultEntry struct {
	Fault    string        `yaml:"fault"`
	Detected bool          `yaml:"detected"`
	Outputs  []OutputEntry `yaml:"outputs"`
	Path     []int         `yaml:"path,omitempty"`
	Blocked  []string      `yaml:"blocked,omitempty"`
}

// Report is the printable outcome of a command
type Report struct {
	RunID      string        `yaml:"run_id"`
	Netlist    string        `yaml:"netlist"`
	Vector     string        `yaml:"vector"`
	Faults     []string      `yaml:"faults,omitempty"`
	Outputs    []OutputEntry `yaml:"outputs"`
	Unresolved []int         `yaml:"unresolved,omitempty"`
	Detected   bool          `yaml:"detected"`
	FaultList  []FaultEntry  `yaml:"fault_list,omitempty"`
	Coverage   *float64      `yaml:"coverage,omitempty"`
}

// NewReport creates a report with a fresh run id
func NewReport(netlist, vector string) *Report {
	return &Report{
		RunID:   uuid.NewString(),
		Netlist: netlist,
		Vector:  vector,
		Outputs: make([]OutputEntry, 0),
	}
}

// Write writes the report as "text" or "yaml"
func (r *Report) Write(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "", "text":
		_, err := io.WriteString(w, r.Text())
		return errors.Wrap(err, "write report")
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return errors.Wrap(err, "encode report")
		}
		return errors.Wrap(enc.Close(), "encode report")
	}
	return errors.Errorf("unknown output format %q", format)
}

// Text renders the report for the console
func (r *Report) Text() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Run:     %s\n", r.RunID))
	b.WriteString(fmt.Sprintf("Netlist: %s\n", r.Netlist))
	b.WriteString(fmt.Sprintf("Vector:  %s\n", r.Vector))
	if len(r.Faults) > 0 {
		b.WriteString(fmt.Sprintf("Faults:  %s\n", strings.Join(r.Faults, " ")))
	}

	b.WriteString("Outputs:\n")
	for _, o := range r.Outputs {
		b.WriteString(fmt.Sprintf("  %d = %s\n", o.Net, o.Level))
	}
	if len(r.Unresolved) > 0 {
		b.WriteString(fmt.Sprintf("Unresolved: %v\n", r.Unresolved))
	}
	if len(r.Faults) > 0 {
		b.WriteString(fmt.Sprintf("Detected: %v\n", r.Detected))
	}

	for _, f := range r.FaultList {
		status := "undetected"
		if f.Detected {
			status = "detected"
		}
		levels := make([]string, len(f.Outputs))
		for i, o := range f.Outputs {
			levels[i] = fmt.Sprintf("%d=%s", o.Net, o.Level)
		}
		b.WriteString(fmt.Sprintf("  %-8s %-10s %s", f.Fault, status, strings.Join(levels, " ")))
		if len(f.Path) > 0 {
			b.WriteString(fmt.Sprintf("  via %v", f.Path))
		}
		if len(f.Blocked) > 0 {
			b.WriteString(fmt.Sprintf("  blocked at %s", strings.Join(f.Blocked, ", ")))
		}
		b.WriteString("\n")
	}
	if r.Coverage != nil {
		b.WriteString(fmt.Sprintf("Fault coverage: %.2f%%\n", *r.Coverage))
	}

	return b.String()
}
