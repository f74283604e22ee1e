// Package circuit builds small linear netlists and computes their DC
// operating point. It supports resistors, capacitors (open at DC),
// independent voltage sources and voltage-controlled voltage sources, which
// is enough to model an op-amp based summing amplifier.
package circuit

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Ground is the reference node. "gnd" is accepted as an alias.
const Ground = "0"

var (
	// ErrInvalidElement is returned for elements with bad values or names.
	ErrInvalidElement = errors.New("circuit: invalid element")
	// ErrSingular is returned when the operating point has no unique solution.
	ErrSingular = errors.New("circuit: singular system")
	// ErrUnknownNode is returned when a solution has no entry for a node or source.
	ErrUnknownNode = errors.New("circuit: unknown node")
)

// Kind identifies an element type.
type Kind int

const (
	Resistor Kind = iota
	Capacitor
	VoltageSource
	VCVS
)

// prefix returns the SPICE letter for the element kind.
func (k Kind) prefix() string {
	switch k {
	case Resistor:
		return "R"
	case Capacitor:
		return "C"
	case VoltageSource:
		return "V"
	case VCVS:
		return "E"
	default:
		return "?"
	}
}

// Element is one two-terminal component. Ctl* are only used by VCVS.
type Element struct {
	Kind   Kind
	Name   string
	Pos    string
	Neg    string
	CtlPos string
	CtlNeg string
	Value  float64
}

// Netlist is an ordered list of elements. Add methods record the first error
// and ignore later calls; check it with Err before solving.
type Netlist struct {
	Title    string
	elements []Element
	names    map[string]struct{}
	nodes    []string
	seen     map[string]struct{}
	err      error
}

// New creates an empty netlist.
func New(title string) *Netlist {
	return &Netlist{
		Title: title,
		names: make(map[string]struct{}),
		seen:  make(map[string]struct{}),
	}
}

// AddResistor adds a resistor of ohms between a and b.
func (n *Netlist) AddResistor(name, a, b string, ohms float64) {
	if !(ohms > 0) || math.IsInf(ohms, 0) {
		n.fail(fmt.Errorf("%w: resistor %s value %v", ErrInvalidElement, name, ohms))
		return
	}
	n.add(Element{Kind: Resistor, Name: name, Pos: a, Neg: b, Value: ohms})
}

// AddCapacitor adds a capacitor of farads between a and b.
func (n *Netlist) AddCapacitor(name, a, b string, farads float64) {
	if !(farads > 0) || math.IsInf(farads, 0) {
		n.fail(fmt.Errorf("%w: capacitor %s value %v", ErrInvalidElement, name, farads))
		return
	}
	n.add(Element{Kind: Capacitor, Name: name, Pos: a, Neg: b, Value: farads})
}

// AddVSource adds an independent source holding V(pos) - V(neg) = volts.
func (n *Netlist) AddVSource(name, pos, neg string, volts float64) {
	if math.IsNaN(volts) || math.IsInf(volts, 0) {
		n.fail(fmt.Errorf("%w: source %s value %v", ErrInvalidElement, name, volts))
		return
	}
	n.add(Element{Kind: VoltageSource, Name: name, Pos: pos, Neg: neg, Value: volts})
}

// AddVCVS adds a source holding V(pos) - V(neg) = gain * (V(ctlPos) - V(ctlNeg)).
func (n *Netlist) AddVCVS(name, pos, neg, ctlPos, ctlNeg string, gain float64) {
	if math.IsNaN(gain) || math.IsInf(gain, 0) {
		n.fail(fmt.Errorf("%w: vcvs %s gain %v", ErrInvalidElement, name, gain))
		return
	}
	n.add(Element{Kind: VCVS, Name: name, Pos: pos, Neg: neg, CtlPos: ctlPos, CtlNeg: ctlNeg, Value: gain})
}

func (n *Netlist) add(e Element) {
	if n.err != nil {
		return
	}
	if e.Name == "" {
		n.fail(fmt.Errorf("%w: unnamed %s element", ErrInvalidElement, e.Kind.prefix()))
		return
	}
	key := e.Kind.prefix() + e.Name
	if _, dup := n.names[key]; dup {
		n.fail(fmt.Errorf("%w: duplicate element %s", ErrInvalidElement, key))
		return
	}
	e.Pos, e.Neg = canonical(e.Pos), canonical(e.Neg)
	terminals := []string{e.Pos, e.Neg}
	if e.Kind == VCVS {
		e.CtlPos, e.CtlNeg = canonical(e.CtlPos), canonical(e.CtlNeg)
		terminals = append(terminals, e.CtlPos, e.CtlNeg)
	}
	for _, node := range terminals {
		if node == "" {
			n.fail(fmt.Errorf("%w: element %s has an empty node name", ErrInvalidElement, key))
			return
		}
	}

	n.names[key] = struct{}{}
	n.elements = append(n.elements, e)
	for _, node := range terminals {
		n.track(node)
	}
}

func (n *Netlist) track(node string) {
	if node == Ground {
		return
	}
	if _, ok := n.seen[node]; ok {
		return
	}
	n.seen[node] = struct{}{}
	n.nodes = append(n.nodes, node)
}

func (n *Netlist) fail(err error) {
	if n.err == nil {
		n.err = err
	}
}

// Err returns the first error recorded while building the netlist.
func (n *Netlist) Err() error {
	return n.err
}

// Elements returns the elements in insertion order.
func (n *Netlist) Elements() []Element {
	return n.elements
}

// Nodes returns the non-ground nodes in the order they were first referenced.
func (n *Netlist) Nodes() []string {
	return n.nodes
}

// String renders the netlist as a SPICE-style deck.
func (n *Netlist) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "* %s\n", n.Title)
	for _, e := range n.elements {
		switch e.Kind {
		case VCVS:
			fmt.Fprintf(&b, "%s%s %s %s %s %s %g\n", e.Kind.prefix(), e.Name, e.Pos, e.Neg, e.CtlPos, e.CtlNeg, e.Value)
		default:
			fmt.Fprintf(&b, "%s%s %s %s %g\n", e.Kind.prefix(), e.Name, e.Pos, e.Neg, e.Value)
		}
	}
	b.WriteString(".op\n.end\n")
	return b.String()
}

func canonical(node string) string {
	node = strings.TrimSpace(node)
	if strings.EqualFold(node, "gnd") {
		return Ground
	}
	return node
}
