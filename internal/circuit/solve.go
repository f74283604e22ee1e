package circuit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Solver computes the DC operating point of a netlist.
type Solver interface {
	OperatingPoint(n *Netlist) (Solution, error)
}

// Solution holds node voltages and source branch currents.
type Solution struct {
	voltages map[string]float64
	currents map[string]float64
}

// Voltage returns the voltage of node relative to ground.
func (s Solution) Voltage(node string) (float64, error) {
	node = canonical(node)
	if node == Ground {
		return 0, nil
	}
	v, ok := s.voltages[node]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNode, node)
	}
	return v, nil
}

// Current returns the current flowing from pos to neg through the named
// voltage source or VCVS (SPICE name, e.g. "V1" or "Egain").
func (s Solution) Current(source string) (float64, error) {
	i, ok := s.currents[source]
	if !ok {
		return 0, fmt.Errorf("%w: no source %q", ErrUnknownNode, source)
	}
	return i, nil
}

// MNA solves netlists with modified nodal analysis: one unknown per
// non-ground node plus one branch current per voltage source or VCVS.
// Capacitors are open circuits at DC and contribute nothing.
type MNA struct{}

// OperatingPoint implements Solver.
func (MNA) OperatingPoint(n *Netlist) (Solution, error) {
	if err := n.Err(); err != nil {
		return Solution{}, err
	}

	nodes := n.Nodes()
	if len(nodes) == 0 {
		return Solution{}, fmt.Errorf("%w: netlist %q has no nodes", ErrSingular, n.Title)
	}
	index := make(map[string]int, len(nodes))
	for i, node := range nodes {
		index[node] = i
	}

	var branches []Element
	for _, e := range n.Elements() {
		if e.Kind == VoltageSource || e.Kind == VCVS {
			branches = append(branches, e)
		}
	}

	size := len(nodes) + len(branches)
	a := mat.NewDense(size, size, nil)
	b := mat.NewVecDense(size, nil)

	// stamp adds v at (row, col); ground rows and columns are dropped.
	stamp := func(row, col string, v float64) {
		r, rok := index[row]
		c, cok := index[col]
		if rok && cok {
			a.Set(r, c, a.At(r, c)+v)
		}
	}
	// stampBranch couples node to branch k in both the KCL row and the
	// branch equation. The KCL coefficient is always ±1.
	stampBranch := func(node string, k int, kcl, eq float64) {
		if i, ok := index[node]; ok {
			a.Set(i, k, a.At(i, k)+kcl)
			a.Set(k, i, a.At(k, i)+eq)
		}
	}
	// stampControl adds a coefficient to branch equation k only.
	stampControl := func(node string, k int, v float64) {
		if i, ok := index[node]; ok {
			a.Set(k, i, a.At(k, i)+v)
		}
	}

	k := len(nodes)
	for _, e := range n.Elements() {
		switch e.Kind {
		case Resistor:
			g := 1 / e.Value
			stamp(e.Pos, e.Pos, g)
			stamp(e.Neg, e.Neg, g)
			stamp(e.Pos, e.Neg, -g)
			stamp(e.Neg, e.Pos, -g)
		case Capacitor:
			// Open at DC
		case VoltageSource:
			stampBranch(e.Pos, k, 1, 1)
			stampBranch(e.Neg, k, -1, -1)
			b.SetVec(k, e.Value)
			k++
		case VCVS:
			stampBranch(e.Pos, k, 1, 1)
			stampBranch(e.Neg, k, -1, -1)
			stampControl(e.CtlPos, k, -e.Value)
			stampControl(e.CtlNeg, k, e.Value)
			k++
		}
	}

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		// An ill-conditioned but solvable system is reported as a Condition
		// error alongside a usable result.
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return Solution{}, fmt.Errorf("%w: %v", ErrSingular, err)
		}
	}

	sol := Solution{
		voltages: make(map[string]float64, len(nodes)),
		currents: make(map[string]float64, len(branches)),
	}
	for i, node := range nodes {
		v := x.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Solution{}, fmt.Errorf("%w: node %q is not finite", ErrSingular, node)
		}
		sol.voltages[node] = v
	}
	for j, e := range branches {
		sol.currents[e.Kind.prefix()+e.Name] = x.AtVec(len(nodes) + j)
	}
	return sol, nil
}
