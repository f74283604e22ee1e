package circuit

// OpAmpModel parameterises the single-pole op-amp macro model.
type OpAmpModel struct {
	InputResistance  float64 // Inverting input to ground
	Gain             float64 // Open-loop gain of the first stage
	PoleResistance   float64
	PoleCapacitance  float64 // Open at DC; sets the dominant pole otherwise
	OutputResistance float64
}

// OpAmpPins names the externally visible nodes of an op-amp instance.
// The non-inverting input is tied to ground.
type OpAmpPins struct {
	Inverting string
	Output    string
}

// AddOpAmp adds an op-amp macro model whose node and element names are
// suffixed with name:
//
//	inverting -[Rin]- gnd
//	int1 = -Gain * V(inverting)
//	int1 -[Rpole]- int2 -[Cpole]- gnd
//	int3 = V(int2)
//	int3 -[Rout]- output
func AddOpAmp(n *Netlist, name string, m OpAmpModel) OpAmpPins {
	pins := OpAmpPins{
		Inverting: "inverting_input" + name,
		Output:    "output" + name,
	}
	int1 := "opamp_internal_1" + name
	int2 := "opamp_internal_2" + name
	int3 := "opamp_internal_3" + name

	n.AddResistor("input"+name, Ground, pins.Inverting, m.InputResistance)
	n.AddVCVS("gain"+name, int1, Ground, Ground, pins.Inverting, m.Gain)
	n.AddResistor("P1"+name, int1, int2, m.PoleResistance)
	n.AddCapacitor("P1"+name, int2, Ground, m.PoleCapacitance)
	n.AddVCVS("buffer"+name, int3, Ground, int2, Ground, 1)
	n.AddResistor("out"+name, int3, pins.Output, m.OutputResistance)
	return pins
}
