package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fyerfyer/faultsim/pkg/algorithm"
	"github.com/fyerfyer/faultsim/pkg/circuit"
	"github.com/fyerfyer/faultsim/pkg/config"
	"github.com/fyerfyer/faultsim/pkg/metrics"
	"github.com/fyerfyer/faultsim/pkg/oracle"
	"github.com/fyerfyer/faultsim/pkg/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	verbose    bool
	logFile    string
	format     string
	metrics    bool

	vector    string
	faultFile string
	noFault   bool
	check     bool
}

// env is everything a command needs once flags and config are merged
type env struct {
	cfg     config.Config
	logger  *utils.Logger
	metrics *metrics.Metrics
	out     io.Writer
}

func (e *env) close() {
	e.logger.Close()
}

func newRootCmd() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:   "faultsim",
		Short: "Gate-level logic and stuck-at fault simulator",
		Long: `Simulate combinational netlists under the D-algebra.

Netlist records, one per line:
  AND|OR|NAND|NOR <in1> <in2> <out>
  INV|BUF <in> <out>
  INPUT <id> ...      (-1 marks an empty position)
  OUTPUT <id> ...

Fault list records: <net> <kind>, kind 0 is stuck-at-0 and 1 is stuck-at-1.

Examples:
  faultsim simulate c17.net --vector 10110
  faultsim simulate c17.net --vector 10110 --faults one.flt
  faultsim faults c17.net --vector 10110
  faultsim describe c17.net`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "YAML configuration file")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "Verbose output")
	pf.StringVar(&o.logFile, "log", "", "Log file (default: stderr)")
	pf.StringVar(&o.format, "format", "", "Report format: text or yaml")
	pf.BoolVar(&o.metrics, "metrics", false, "Print run metrics after the report")

	root.AddCommand(newSimulateCmd(o), newFaultsCmd(o), newDescribeCmd(o))
	return root
}

func newSimulateCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate NETLIST",
		Short: "Simulate one input vector, optionally with a fault list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.exec(cmd, func(e *env) error {
				return runSimulate(e, o, args[0])
			})
		},
	}
	addVectorFlags(cmd, o)
	cmd.Flags().BoolVar(&o.noFault, "no-fault", false, "Ignore the fault list and simulate the good circuit")
	return cmd
}

func newFaultsCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "faults NETLIST",
		Short: "Simulate each fault of a fault list on its own and report coverage",
		Long: `Simulate each fault on its own against one input vector.

Without --faults, both stuck-at faults of every net are simulated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.exec(cmd, func(e *env) error {
				return runFaults(e, o, args[0])
			})
		},
	}
	addVectorFlags(cmd, o)
	return cmd
}

func newDescribeCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "describe NETLIST",
		Short: "Print gates, fanouts, ports and structure of a netlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.exec(cmd, func(e *env) error {
				return runDescribe(e, args[0])
			})
		},
	}
}

func addVectorFlags(cmd *cobra.Command, o *options) {
	f := cmd.Flags()
	f.StringVar(&o.vector, "vector", "", "Input vector aligned with the INPUT declarations, e.g. 0110")
	f.StringVar(&o.faultFile, "faults", "", "Fault list file")
	f.BoolVar(&o.check, "check", false, "Cross-check results against the reference evaluator")
	_ = cmd.MarkFlagRequired("vector")
}

// exec runs fn with a fresh env and logs the error it returns, if any
func (o *options) exec(cmd *cobra.Command, fn func(e *env) error) error {
	e, err := o.setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	if err := fn(e); err != nil {
		e.logger.Error("%v", err)
		return err
	}
	return nil
}

// setup merges the config file with the flags that were set explicitly
func (o *options) setup(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if o.verbose {
		cfg.Log.Level = "debug"
	}
	if flags.Changed("log") {
		cfg.Log.File = o.logFile
	}
	if flags.Changed("format") {
		cfg.Output.Format = o.format
	}
	if flags.Changed("metrics") {
		cfg.Output.Metrics = o.metrics
	}
	if flags.Changed("check") {
		cfg.Simulation.OracleCheck = o.check
	}
	if flags.Changed("no-fault") {
		cfg.Simulation.FaultEnabled = !o.noFault
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, err
	}
	logger.SetPrefix(cmd.Name())

	return &env{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
		out:     cmd.OutOrStdout(),
	}, nil
}

func runSimulate(e *env, o *options, netlistFile string) error {
	nl, err := utils.LoadNetlist(netlistFile, e.logger)
	if err != nil {
		return err
	}

	var faults circuit.FaultTable
	if o.faultFile != "" {
		records, err := utils.ParseFaultListFile(o.faultFile)
		if err != nil {
			return err
		}
		faults = circuit.BuildFaultTable(records, nl.NetCount())
		if faults.Len() > 1 {
			e.logger.Warning("%d faults active at once; results assume a single fault", faults.Len())
		}
	}

	vector := utils.ParseVector(o.vector)
	sim := algorithm.NewSimulator(nl, e.logger, e.metrics)
	faultEnabled := e.cfg.Simulation.FaultEnabled && faults.Len() > 0

	res, err := sim.Simulate(vector, faultEnabled, faults)
	if err != nil {
		return err
	}

	if e.cfg.Simulation.OracleCheck {
		if err := checkResult(e, nl, vector, res); err != nil {
			return err
		}
	}

	report := utils.NewReport(netlistFile, utils.FormatVector(vector))
	report.Outputs = outputEntries(res.Outputs)
	report.Unresolved = res.Unresolved()
	for _, f := range res.Faults {
		report.Faults = append(report.Faults, f.String())
	}
	report.Detected = res.Detected()

	return e.finish(report)
}

func runFaults(e *env, o *options, netlistFile string) error {
	nl, err := utils.LoadNetlist(netlistFile, e.logger)
	if err != nil {
		return err
	}

	var faults []circuit.Fault
	if o.faultFile != "" {
		records, err := utils.ParseFaultListFile(o.faultFile)
		if err != nil {
			return err
		}
		faults = circuit.BuildFaultTable(records, nl.NetCount()).Faults()
	} else {
		faults = circuit.AllFaults(nl)
	}

	vector := utils.ParseVector(o.vector)
	sim := algorithm.NewSimulator(nl, e.logger, e.metrics)

	campaign, err := sim.RunFaultList(vector, faults)
	if err != nil {
		return err
	}

	var ref *oracle.Oracle
	if e.cfg.Simulation.OracleCheck {
		ref, err = newOracle(e, nl, vector)
		if err != nil {
			return err
		}
	}

	report := utils.NewReport(netlistFile, utils.FormatVector(vector))
	report.Outputs = outputEntries(campaign.Good.Outputs)
	report.Unresolved = campaign.Good.Unresolved()
	for _, outcome := range campaign.Outcomes {
		if ref != nil {
			f := outcome.Fault
			if err := ref.Check(vector, &f, outcome.Values()); err != nil {
				return errors.Wrapf(err, "fault %s", f)
			}
		}
		entry := utils.FaultEntry{
			Fault:    outcome.Fault.String(),
			Detected: outcome.Detected,
			Outputs:  outputEntries(outcome.Outputs),
			Path:     outcome.Path,
		}
		for _, b := range outcome.Blocked {
			entry.Blocked = append(entry.Blocked, fmt.Sprintf("g%d by %v", b.Gate, b.Inputs))
		}
		report.FaultList = append(report.FaultList, entry)
	}
	coverage := campaign.Stats.Coverage()
	report.Coverage = &coverage

	return e.finish(report)
}

func runDescribe(e *env, netlistFile string) error {
	nl, err := utils.LoadNetlist(netlistFile, e.logger)
	if err != nil {
		return err
	}
	topo := circuit.NewTopology(nl)
	topo.Analyze()

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Netlist: %s\n", netlistFile))
	b.WriteString(fmt.Sprintf("Gates: %d  Nets: %d  Levels: %d\n", len(nl.Gates), nl.NetCount(), topo.MaxLevel))

	b.WriteString("\nGates:\n")
	for _, g := range nl.Gates {
		b.WriteString(fmt.Sprintf("  %s\n", g))
	}

	b.WriteString("\nFanout:\n")
	for _, id := range nl.NetIDs() {
		n := nl.Nets[id]
		level := "-"
		if l, ok := topo.LevelMap[id]; ok {
			level = fmt.Sprint(l)
		}
		b.WriteString(fmt.Sprintf("  net %d (%s, level %s): gates %v\n", id, n.Type, level, n.Fanout))
	}

	b.WriteString(fmt.Sprintf("\nPrimary inputs: %v\n", nl.Inputs))
	b.WriteString(fmt.Sprintf("Primary outputs: %v\n", nl.Outputs))
	b.WriteString(fmt.Sprintf("Fanout points: %v\n", topo.FanoutPoints))
	b.WriteString(fmt.Sprintf("Reconvergent nets: %v\n", topo.Reconvergent()))
	if !topo.IsAcyclic() || len(topo.Floating) > 0 {
		b.WriteString(fmt.Sprintf("Unleveled nets (cycle or undriven): %v\n", topo.Floating))
	}

	_, err = io.WriteString(e.out, b.String())
	return errors.Wrap(err, "write description")
}

func newOracle(e *env, nl *circuit.Netlist, vector []byte) (*oracle.Oracle, error) {
	for _, v := range vector {
		if l := circuit.ParseLogicValue(v); l != circuit.Zero && l != circuit.One {
			return nil, errors.Wrap(oracle.ErrNotBinary, "--check needs a 0/1 vector")
		}
	}
	ref, err := oracle.New(nl)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("reference evaluator ready")
	return ref, nil
}

func checkResult(e *env, nl *circuit.Netlist, vector []byte, res *algorithm.Result) error {
	if len(res.Faults) > 1 {
		e.logger.Warning("reference check skipped: more than one fault active")
		return nil
	}
	ref, err := newOracle(e, nl, vector)
	if err != nil {
		return err
	}
	var fault *circuit.Fault
	if len(res.Faults) == 1 {
		fault = &res.Faults[0]
	}
	if err := ref.Check(vector, fault, res.Values()); err != nil {
		return err
	}
	e.logger.Info("reference check passed")
	return nil
}

func outputEntries(outputs []algorithm.OutputLevel) []utils.OutputEntry {
	entries := make([]utils.OutputEntry, len(outputs))
	for i, o := range outputs {
		entries[i] = utils.OutputEntry{Net: o.Net, Level: o.Level.String()}
	}
	return entries
}

// finish writes the report and, if asked, the metrics
func (e *env) finish(report *utils.Report) error {
	if err := report.Write(e.out, e.cfg.Output.Format); err != nil {
		return err
	}
	if e.cfg.Output.Metrics {
		return e.metrics.WriteText(e.out)
	}
	return nil
}
