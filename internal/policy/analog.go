package policy

import (
	"fmt"
	"strconv"

	"github.com/vovakirdan/flapsim/internal/circuit"
	"github.com/vovakirdan/flapsim/internal/config"
	"github.com/vovakirdan/flapsim/internal/core"
	"github.com/vovakirdan/flapsim/internal/games/flappy"
)

// opAmpName suffixes every node and element of the summing amplifier.
const opAmpName = "_opamp1"

// Circuit computes the weighted sum as the steady-state output of an
// inverting summing amplifier. Each parameter becomes an input conductance,
// so parameters must be non-zero.
type Circuit struct {
	norm      Normalizer
	threshold float64
	cfg       config.CircuitConfig
	solver    circuit.Solver
}

// NewCircuit creates a circuit policy. A nil solver uses circuit.MNA.
func NewCircuit(cfg config.FlappyConfig, solver circuit.Solver) (*Circuit, error) {
	norm, err := NewNormalizer(cfg.Observation)
	if err != nil {
		return nil, err
	}
	if err := cfg.Circuit.ValidateCircuit(); err != nil {
		return nil, fmt.Errorf("policy: %w", err)
	}
	if solver == nil {
		solver = circuit.MNA{}
	}
	return &Circuit{
		norm:      norm,
		threshold: cfg.Policy.Threshold,
		cfg:       cfg.Circuit,
		solver:    solver,
	}, nil
}

// Name implements Policy.
func (c *Circuit) Name() string {
	return "circuit"
}

// Bind implements Policy. Resistors can only realise positive conductances,
// so negative parameters are stored as their magnitude and the matching
// input voltage is inverted at decision time instead.
func (c *Circuit) Bind(p Params) (Decider, error) {
	d := &CircuitDecider{policy: c}
	for i, v := range p {
		if v == 0 {
			return nil, fmt.Errorf("%w: parameter %d", ErrZeroWeight, i)
		}
		if v < 0 {
			d.negative[i] = true
			v = -v
		}
		d.conductance[i] = v
	}
	return d, nil
}

// CircuitDecider is a Circuit bound to one parameter vector.
type CircuitDecider struct {
	policy      *Circuit
	conductance [NumParams]float64 // Parameter magnitudes
	negative    [NumParams]bool    // Parameters that were negative
}

// Negative returns the parameter indices whose input voltage is inverted.
func (d *CircuitDecider) Negative() []int {
	var idx []int
	for i, neg := range d.negative {
		if neg {
			idx = append(idx, i)
		}
	}
	return idx
}

// Inputs returns the four source voltages for obs: the normalised
// observations followed by the constant bias input, with the sign of each
// negative-parameter input flipped.
func (d *CircuitDecider) Inputs(obs flappy.Observation) [NumParams]float64 {
	n := d.policy.norm.Normalize(obs)
	in := [NumParams]float64{n[0], n[1], n[2], 1}
	for i := range in {
		if d.negative[i] {
			in[i] *= -1
		}
	}
	return in
}

// Netlist builds the summing amplifier for obs. The output node is
// "output_opamp1".
func (d *CircuitDecider) Netlist(obs flappy.Observation) (*circuit.Netlist, string) {
	cfg := d.policy.cfg
	n := circuit.New("flappy summing amplifier")
	pins := circuit.AddOpAmp(n, opAmpName, circuit.OpAmpModel{
		InputResistance:  cfg.OpAmp.InputResistance,
		Gain:             cfg.OpAmp.Gain,
		PoleResistance:   cfg.OpAmp.PoleResistance,
		PoleCapacitance:  cfg.OpAmp.PoleCapacitance,
		OutputResistance: cfg.OpAmp.OutputResistance,
	})

	for i, v := range d.Inputs(obs) {
		id := strconv.Itoa(i + 1)
		node := "v" + id + "_r" + id
		n.AddVSource(id, node, circuit.Ground, v)
		n.AddResistor(id, pins.Inverting, node, cfg.ResistorScale/d.conductance[i])
	}
	n.AddResistor("over", pins.Inverting, pins.Output, cfg.Feedback)
	return n, pins.Output
}

// Activation solves the circuit and returns the negated output voltage,
// which undoes the amplifier's inversion.
func (d *CircuitDecider) Activation(obs flappy.Observation) (float64, error) {
	n, out := d.Netlist(obs)
	sol, err := d.policy.solver.OperatingPoint(n)
	if err != nil {
		return 0, fmt.Errorf("policy: circuit solve: %w", err)
	}
	v, err := sol.Voltage(out)
	if err != nil {
		return 0, fmt.Errorf("policy: circuit output: %w", err)
	}
	return -v, nil
}

// Decide implements Decider.
func (d *CircuitDecider) Decide(obs flappy.Observation) (core.Action, error) {
	a, err := d.Activation(obs)
	if err != nil {
		return core.ActionNone, err
	}
	return Threshold(a, d.policy.threshold), nil
}

func init() {
	Register("circuit", func(cfg config.FlappyConfig) (Policy, error) {
		return NewCircuit(cfg, nil)
	})
}
