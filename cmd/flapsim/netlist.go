package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flapsim/internal/circuit"
	"github.com/vovakirdan/flapsim/internal/core"
	"github.com/vovakirdan/flapsim/internal/games/flappy"
	"github.com/vovakirdan/flapsim/internal/policy"
)

var (
	flagDistance float64
	flagHeight   float64
	flagVelocity float64
	flagSolve    bool
)

var netlistCmd = &cobra.Command{
	Use:   "netlist",
	Short: "Print the summing amplifier for one observation",
	Long: `Build the circuit the circuit policy would solve for the given observation
and print it as a SPICE deck. With --solve, also print the operating point
and the resulting action.

Examples:
  flapsim netlist --weights 0.8,-1.2,0.5,0.3 --distance 40 --height 12 --velocity -3
  flapsim netlist --params best.yaml --solve`,
	Args: cobra.NoArgs,
	RunE: runNetlist,
}

func init() {
	netlistCmd.Flags().Float64Var(&flagDistance, "distance", 200, "Observed distance to the next obstacle")
	netlistCmd.Flags().Float64Var(&flagHeight, "height", 0, "Observed gap centre minus bird height")
	netlistCmd.Flags().Float64Var(&flagVelocity, "velocity", 0, "Observed vertical velocity")
	netlistCmd.Flags().BoolVar(&flagSolve, "solve", false, "Solve the operating point")
}

func runNetlist(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	params, err := loadParams()
	if err != nil {
		return err
	}

	pol, err := policy.NewCircuit(cfg, circuit.MNA{})
	if err != nil {
		return err
	}
	dec, err := pol.Bind(params)
	if err != nil {
		return err
	}
	cd := dec.(*policy.CircuitDecider)

	obs := flappy.Observation{Distance: flagDistance, HeightOffset: flagHeight, Velocity: flagVelocity}
	n, out := cd.Netlist(obs)
	if err := n.Err(); err != nil {
		return err
	}
	fmt.Print(n.String())

	if !flagSolve {
		return nil
	}

	sol, activation, action, err := solveNetlist(n, out, cfg.Policy.Threshold)
	if err != nil {
		return err
	}
	fmt.Println()
	printHeading("Operating point")
	for _, node := range n.Nodes() {
		v, err := sol.Voltage(node)
		if err != nil {
			return err
		}
		printField(node, fmt.Sprintf("%.6f V", v))
	}

	fmt.Println()
	printField("Inverted", cd.Negative())
	printField("Activation", fmt.Sprintf("%.6f", activation))
	printField("Action", action)
	return nil
}

// solveNetlist solves n once and derives the activation and action from the
// voltage at out.
func solveNetlist(n *circuit.Netlist, out string, limit float64) (circuit.Solution, float64, core.Action, error) {
	sol, err := circuit.MNA{}.OperatingPoint(n)
	if err != nil {
		return sol, 0, core.ActionNone, err
	}
	vout, err := sol.Voltage(out)
	if err != nil {
		return sol, 0, core.ActionNone, err
	}
	// The amplifier inverts, so the activation is the negated output
	activation := -vout
	return sol, activation, policy.Threshold(activation, limit), nil
}
