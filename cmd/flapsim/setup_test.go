package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/flapsim/internal/config"
	"github.com/vovakirdan/flapsim/internal/policy"
)

// withFlags resets the parameter flags after the test.
func withFlags(t *testing.T, weights []float64, params string) {
	t.Helper()
	oldWeights, oldParams := flagWeights, flagParams
	flagWeights, flagParams = weights, params
	t.Cleanup(func() {
		flagWeights, flagParams = oldWeights, oldParams
	})
}

func TestLoadParamsFromWeights(t *testing.T) {
	withFlags(t, []float64{0.8, -1.2, 0.5, 0.3}, "")

	p, err := loadParams()
	if err != nil {
		t.Fatal(err)
	}
	if p != (policy.Params{0.8, -1.2, 0.5, 0.3}) {
		t.Errorf("loadParams() = %v", p)
	}
}

func TestLoadParamsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	if err := os.WriteFile(path, []byte("params: [1, 2, 3, 4]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Inline weights win over the file
	withFlags(t, []float64{4, 3, 2, 1}, path)
	p, err := loadParams()
	if err != nil {
		t.Fatal(err)
	}
	if p != (policy.Params{4, 3, 2, 1}) {
		t.Errorf("loadParams() with both = %v, expected inline weights", p)
	}

	flagWeights = nil
	p, err = loadParams()
	if err != nil {
		t.Fatal(err)
	}
	if p != (policy.Params{1, 2, 3, 4}) {
		t.Errorf("loadParams() from file = %v", p)
	}
}

func TestLoadParamsErrors(t *testing.T) {
	withFlags(t, nil, "")
	if _, err := loadParams(); err == nil {
		t.Error("loadParams() with no source should fail")
	}

	flagWeights = []float64{1, 2, 3}
	if _, err := loadParams(); !errors.Is(err, policy.ErrParamCount) {
		t.Errorf("loadParams() with 3 weights = %v, expected ErrParamCount", err)
	}
}

func TestPolicyArg(t *testing.T) {
	cfg := config.DefaultFlappyConfig()

	p, err := policyArg(nil, cfg)
	if err != nil || p.Name() != "digital" {
		t.Errorf("policyArg(nil) = %v, %v; expected digital", p, err)
	}

	p, err = policyArg([]string{"circuit"}, cfg)
	if err != nil || p.Name() != "circuit" {
		t.Errorf("policyArg(circuit) = %v, %v", p, err)
	}

	if _, err := policyArg([]string{"analog"}, cfg); err == nil {
		t.Error("policyArg(analog) should fail")
	}
}

func TestResolveSeed(t *testing.T) {
	old := flagSeed
	t.Cleanup(func() { flagSeed = old })

	flagSeed = 42
	if got := resolveSeed(); got != 42 {
		t.Errorf("resolveSeed() = %d, expected 42", got)
	}
	flagSeed = 0
	if got := resolveSeed(); got == 0 {
		t.Error("resolveSeed() should pick a time-based seed for 0")
	}
}
