package policy

import (
	"errors"
	"math"
	"testing"

	"github.com/vovakirdan/flapsim/internal/circuit"
	"github.com/vovakirdan/flapsim/internal/config"
	"github.com/vovakirdan/flapsim/internal/core"
	"github.com/vovakirdan/flapsim/internal/games/flappy"
)

// fixtureParams are shared by the equivalence tests. None contain zeros.
var fixtureParams = []Params{
	{0.8, -1.2, 0.5, 0.3},
	{-0.25, 0.6, 1.4, -2},
	{1.1, 0.9, -0.7, 1.5},
	{-2.5, -0.4, -1.3, -0.05},
	{0.05, 3.2, 0.2, 4},
}

// fixtureObservations spans sentinel, near, far, above and below the gap.
func fixtureObservations() []flappy.Observation {
	var out []flappy.Observation
	for _, d := range []float64{0.5, 30, 75, 130, 200} {
		for _, h := range []float64{-150, -20, 0, 60, 175} {
			for _, v := range []float64{-12, -3, 0, 4.8, 9} {
				out = append(out, flappy.Observation{Distance: d, HeightOffset: h, Velocity: v})
			}
		}
	}
	return out
}

func mustPolicies(t *testing.T) (*Digital, *Circuit) {
	t.Helper()
	cfg := config.DefaultFlappyConfig()
	d, err := NewDigital(cfg)
	if err != nil {
		t.Fatalf("NewDigital() failed: %v", err)
	}
	c, err := NewCircuit(cfg, nil)
	if err != nil {
		t.Fatalf("NewCircuit() failed: %v", err)
	}
	return d, c
}

func TestNewParams(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		wantErr error
	}{
		{"four values", []float64{1, 2, 3, 4}, nil},
		{"too few", []float64{1, 2, 3}, ErrParamCount},
		{"too many", []float64{1, 2, 3, 4, 5}, ErrParamCount},
		{"empty", nil, ErrParamCount},
		{"NaN", []float64{1, math.NaN(), 3, 4}, config.ErrInvalid},
		{"infinite", []float64{1, 2, math.Inf(-1), 4}, config.ErrInvalid},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewParams(tc.values)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Errorf("NewParams(%v) = %v, expected %v", tc.values, err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewParams(%v) failed: %v", tc.values, err)
			}
			if p.Weights() != [3]float64{1, 2, 3} || p.Bias() != 4 {
				t.Errorf("NewParams() = %v", p)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	norm, err := NewNormalizer(config.DefaultFlappyConfig().Observation)
	if err != nil {
		t.Fatal(err)
	}

	got := norm.Normalize(flappy.Observation{Distance: 75, HeightOffset: 400, Velocity: 0})
	expected := [3]float64{5, 5, 2.5}
	if got != expected {
		t.Errorf("Normalize() = %v, expected %v", got, expected)
	}

	got = norm.Normalize(flappy.Observation{Distance: 0, HeightOffset: -80, Velocity: -5})
	expected = [3]float64{0, -1, 0}
	if got != expected {
		t.Errorf("Normalize() = %v, expected %v", got, expected)
	}
}

func TestNormalizerRejectsEmptyRange(t *testing.T) {
	obs := config.DefaultFlappyConfig().Observation
	obs.Height = config.Range{Min: 10, Max: 10}
	if _, err := NewNormalizer(obs); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("NewNormalizer() = %v, expected ErrInvalid", err)
	}
}

func TestDigitalThreshold(t *testing.T) {
	d, _ := mustPolicies(t)
	obs := flappy.Observation{Distance: 40, HeightOffset: 12, Velocity: 3}

	tests := []struct {
		name     string
		bias     float64
		expected core.Action
	}{
		{"exactly at threshold", 2.5, core.ActionNone},
		{"just below", 2.49, core.ActionNone},
		{"just above", 2.51, core.ActionJump},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Zero weights leave only the bias
			action, err := Decide(d, obs, Params{0, 0, 0, tc.bias})
			if err != nil {
				t.Fatal(err)
			}
			if action != tc.expected {
				t.Errorf("Decide() with bias %f = %v, expected %v", tc.bias, action, tc.expected)
			}
		})
	}
}

func TestDigitalActivation(t *testing.T) {
	d, _ := mustPolicies(t)
	dec, err := d.Bind(Params{0.5, -1, 2, 0.25})
	if err != nil {
		t.Fatal(err)
	}

	// Normalised: distance 15 -> 1, height 80 -> 1, velocity 0 -> 2.5
	a, err := dec.Activation(flappy.Observation{Distance: 15, HeightOffset: 80, Velocity: 0})
	if err != nil {
		t.Fatal(err)
	}
	expected := 0.5*1 - 1*1 + 2*2.5 + 0.25
	if math.Abs(a-expected) > 1e-12 {
		t.Errorf("Activation() = %f, expected %f", a, expected)
	}
}

func TestCircuitRejectsZeroWeight(t *testing.T) {
	d, c := mustPolicies(t)

	for i := 0; i < NumParams; i++ {
		p := Params{1, 1, 1, 1}
		p[i] = 0

		if _, err := c.Bind(p); !errors.Is(err, ErrZeroWeight) {
			t.Errorf("circuit Bind(%v) = %v, expected ErrZeroWeight", p, err)
		}
		if _, err := d.Bind(p); err != nil {
			t.Errorf("digital Bind(%v) should accept zero weights: %v", p, err)
		}
	}
}

func TestCircuitSignCompensation(t *testing.T) {
	_, c := mustPolicies(t)
	dec, err := c.Bind(Params{-1, 2, -0.5, -3})
	if err != nil {
		t.Fatal(err)
	}
	cd := dec.(*CircuitDecider)

	neg := cd.Negative()
	if len(neg) != 3 || neg[0] != 0 || neg[1] != 2 || neg[2] != 3 {
		t.Errorf("Negative() = %v, expected [0 2 3]", neg)
	}
	if cd.conductance != [NumParams]float64{1, 2, 0.5, 3} {
		t.Errorf("conductance = %v, expected magnitudes", cd.conductance)
	}

	in := cd.Inputs(flappy.Observation{Distance: 15, HeightOffset: 80, Velocity: 0})
	expected := [NumParams]float64{-1, 1, -2.5, -1}
	if in != expected {
		t.Errorf("Inputs() = %v, expected %v", in, expected)
	}
}

func TestCircuitNetlistDeterministic(t *testing.T) {
	_, c := mustPolicies(t)
	dec, _ := c.Bind(Params{0.3, -0.7, 1.2, 0.4})
	cd := dec.(*CircuitDecider)
	obs := flappy.Observation{Distance: 42, HeightOffset: -17, Velocity: 2.4}

	n1, out := cd.Netlist(obs)
	n2, _ := cd.Netlist(obs)
	if n1.String() != n2.String() {
		t.Error("Netlist() should be deterministic")
	}
	if out != "output_opamp1" {
		t.Errorf("output node = %q, expected output_opamp1", out)
	}
	if err := n1.Err(); err != nil {
		t.Errorf("Netlist() recorded an error: %v", err)
	}
}

func TestPoliciesAgree(t *testing.T) {
	d, c := mustPolicies(t)

	for _, p := range fixtureParams {
		dd, err := d.Bind(p)
		if err != nil {
			t.Fatal(err)
		}
		cd, err := c.Bind(p)
		if err != nil {
			t.Fatalf("circuit Bind(%v) failed: %v", p, err)
		}

		for _, obs := range fixtureObservations() {
			da, _ := dd.Activation(obs)
			ca, err := cd.Activation(obs)
			if err != nil {
				t.Fatalf("circuit Activation(%+v) failed: %v", obs, err)
			}

			tol := 1e-3 * math.Max(1, math.Abs(da))
			if math.Abs(da-ca) > tol {
				t.Errorf("params %v obs %+v: digital %f, circuit %f", p, obs, da, ca)
			}

			// Away from the threshold the actions must match exactly
			if math.Abs(da-2.5) <= tol {
				continue
			}
			dAct, _ := dd.Decide(obs)
			cAct, err := cd.Decide(obs)
			if err != nil {
				t.Fatal(err)
			}
			if dAct != cAct {
				t.Errorf("params %v obs %+v: digital %v, circuit %v", p, obs, dAct, cAct)
			}
		}
	}
}

type failingSolver struct{ err error }

func (f failingSolver) OperatingPoint(*circuit.Netlist) (circuit.Solution, error) {
	return circuit.Solution{}, f.err
}

func TestCircuitSolverFailure(t *testing.T) {
	cfg := config.DefaultFlappyConfig()
	obs := flappy.Observation{Distance: 10, HeightOffset: 5, Velocity: 1}

	c, err := NewCircuit(cfg, failingSolver{err: circuit.ErrSingular})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decide(c, obs, Params{1, 1, 1, 1}); !errors.Is(err, circuit.ErrSingular) {
		t.Errorf("Decide() = %v, expected ErrSingular", err)
	}

	// A solve that succeeds but has no output node
	c, _ = NewCircuit(cfg, failingSolver{})
	if _, err := Decide(c, obs, Params{1, 1, 1, 1}); !errors.Is(err, circuit.ErrUnknownNode) {
		t.Errorf("Decide() = %v, expected ErrUnknownNode", err)
	}
}

func TestNewCircuitValidatesModel(t *testing.T) {
	cfg := config.DefaultFlappyConfig()
	cfg.Circuit.Feedback = 0
	if _, err := NewCircuit(cfg, nil); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("NewCircuit() = %v, expected ErrInvalid", err)
	}
}

func TestDecideAppliesThresholdToActivation(t *testing.T) {
	d, c := mustPolicies(t)
	limit := config.DefaultFlappyConfig().Policy.Threshold

	for _, pol := range []Policy{d, c} {
		dec, err := pol.Bind(fixtureParams[0])
		if err != nil {
			t.Fatal(err)
		}
		for _, obs := range fixtureObservations() {
			a, err := dec.Activation(obs)
			if err != nil {
				t.Fatal(err)
			}
			action, err := dec.Decide(obs)
			if err != nil {
				t.Fatalf("%s Decide(%+v) failed: %v", pol.Name(), obs, err)
			}
			if action != Threshold(a, limit) {
				t.Errorf("%s Decide(%+v) = %v, activation %f", pol.Name(), obs, action, a)
			}
		}
	}
}

func TestThreshold(t *testing.T) {
	tests := []struct {
		activation float64
		expected   core.Action
	}{
		{2.4, core.ActionNone},
		{2.5, core.ActionNone},
		{2.5000001, core.ActionJump},
		{-10, core.ActionNone},
	}
	for _, tc := range tests {
		if got := Threshold(tc.activation, 2.5); got != tc.expected {
			t.Errorf("Threshold(%f, 2.5) = %v, expected %v", tc.activation, got, tc.expected)
		}
	}
}
