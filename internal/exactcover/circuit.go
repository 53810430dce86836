// SPDX-License-Identifier: MIT

package exactcover

import (
	"fmt"
	"math"

	"github.com/qsolv/qsudoku/internal/circuit"
)

// CoverCircuit builds the Grover search over an exact-cover instance. Each
// subset maps to one search qubit; each universe element owns a binary
// counter wide enough to count every subset; the oracle flips the phase of
// assignments whose counters all read exactly one.
type CoverCircuit struct {
	inst         Instance
	numSolutions int
	counterBits  int
}

// NewCircuit validates the instance and fixes the counter width.
func NewCircuit(inst Instance, numSolutions int) (*CoverCircuit, error) {
	if len(inst.Subsets) == 0 {
		return nil, fmt.Errorf("exactcover: instance has no subsets")
	}
	if len(inst.Universe) == 0 {
		return nil, fmt.Errorf("exactcover: instance has an empty universe")
	}
	if numSolutions < 1 {
		return nil, fmt.Errorf("exactcover: solution count %d", numSolutions)
	}
	for _, s := range inst.Subsets {
		for _, el := range s.Elements {
			if el < 0 || el >= len(inst.Universe) {
				return nil, fmt.Errorf("exactcover: subset %s references element %d outside universe", s.Name, el)
			}
		}
	}
	return &CoverCircuit{
		inst:         inst,
		numSolutions: numSolutions,
		counterBits:  counterWidth(len(inst.Subsets)),
	}, nil
}

// counterWidth returns the bits needed to count up to n subsets.
func counterWidth(n int) int {
	b := 1
	for 1<<b < n {
		b++
	}
	return b
}

// Subsets returns the encoded subsets in search-qubit order.
func (cc *CoverCircuit) Subsets() []Subset { return cc.inst.Subsets }

// CounterBits returns the per-element counter width.
func (cc *CoverCircuit) CounterBits() int { return cc.counterBits }

// Qubits returns the total width: subset qubits, one counter per universe
// element, and the phase ancilla.
func (cc *CoverCircuit) Qubits() int {
	return len(cc.inst.Subsets) + len(cc.inst.Universe)*cc.counterBits + 1
}

// Iterations returns floor(pi/4 * sqrt(2^s / M)) for s subset qubits and M
// known solutions.
func (cc *CoverCircuit) Iterations() int {
	s := float64(len(cc.inst.Subsets))
	return int(math.Pi / 4 * math.Sqrt(math.Pow(2, s)/float64(cc.numSolutions)))
}

// Build assembles the full circuit with the given iteration count and a
// terminal measurement of the subset register.
func (cc *CoverCircuit) Build(iterations int) (*circuit.Circuit, error) {
	if iterations < 1 {
		return nil, fmt.Errorf("exactcover: iteration count %d", iterations)
	}

	nSub := len(cc.inst.Subsets)
	c := circuit.New()
	s := c.AddRegister("s", nSub)
	counters := make([]circuit.Register, len(cc.inst.Universe))
	for i := range cc.inst.Universe {
		counters[i] = c.AddRegister(fmt.Sprintf("u%d", i), cc.counterBits)
	}
	anc := c.AddRegister("anc", 1)
	c.AddClassical(nSub)

	c.H(s.Qubits()...)
	c.X(anc.Qubit(0))
	c.H(anc.Qubit(0))

	count := cc.counterCircuit(c.Qubits(), s, counters)
	uncount, err := count.Inverse()
	if err != nil {
		return nil, err
	}

	for it := 0; it < iterations; it++ {
		if err := c.Append(count); err != nil {
			return nil, err
		}
		cc.oracle(c, counters, anc.Qubit(0))
		if err := c.Append(uncount); err != nil {
			return nil, err
		}
		cc.diffuser(c, s)
	}

	clbits := make([]int, nSub)
	for i := range clbits {
		clbits[i] = i
	}
	if err := c.Measure(s.Qubits(), clbits); err != nil {
		return nil, err
	}
	return c, nil
}

// counterCircuit increments, for every subset qubit that is set, the counter
// of each element the subset covers. Each increment is a controlled ripple
// across the counter bits, carries first.
func (cc *CoverCircuit) counterCircuit(qubits int, s circuit.Register, counters []circuit.Register) *circuit.Circuit {
	count := circuit.New()
	count.AddRegister("all", qubits)
	for j, subset := range cc.inst.Subsets {
		for _, el := range subset.Elements {
			u := counters[el]
			for k := cc.counterBits - 1; k >= 1; k-- {
				controls := make([]int, 0, k+1)
				controls = append(controls, s.Qubit(j))
				for i := 0; i < k; i++ {
					controls = append(controls, u.Qubit(i))
				}
				count.MCX(controls, u.Qubit(k))
			}
			count.CX(s.Qubit(j), u.Qubit(0))
		}
	}
	return count
}

// oracle kicks a phase onto assignments where every counter reads exactly
// one: the low bit of each counter must be set and every higher bit clear.
func (cc *CoverCircuit) oracle(c *circuit.Circuit, counters []circuit.Register, anc int) {
	var high []int
	var all []int
	for _, u := range counters {
		for k := 0; k < cc.counterBits; k++ {
			q := u.Qubit(k)
			all = append(all, q)
			if k > 0 {
				high = append(high, q)
			}
		}
	}
	c.X(high...)
	c.MCX(all, anc)
	c.X(high...)
}

// diffuser reflects the subset register about the uniform superposition.
func (cc *CoverCircuit) diffuser(c *circuit.Circuit, s circuit.Register) {
	qs := s.Qubits()
	c.H(qs...)
	c.X(qs...)
	if len(qs) == 1 {
		c.Z(qs[0])
	} else {
		c.MCZ(qs[:len(qs)-1], qs[len(qs)-1])
	}
	c.X(qs...)
	c.H(qs...)
}

// Covers maps a measured bitstring (highest classical bit leftmost) back to
// the chosen subsets.
func (cc *CoverCircuit) Covers(bits string) ([]Subset, error) {
	nSub := len(cc.inst.Subsets)
	if len(bits) != nSub {
		return nil, fmt.Errorf("exactcover: bitstring %q does not match %d subsets", bits, nSub)
	}
	var chosen []Subset
	for j := 0; j < nSub; j++ {
		switch bits[nSub-1-j] {
		case '1':
			chosen = append(chosen, cc.inst.Subsets[j])
		case '0':
		default:
			return nil, fmt.Errorf("exactcover: bitstring %q is not binary", bits)
		}
	}
	return chosen, nil
}
