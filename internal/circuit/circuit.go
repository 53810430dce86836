// SPDX-License-Identifier: MIT

// Package circuit holds a minimal gate-level quantum circuit representation:
// named qubit registers, the gate set the solver's oracles need (H, X, Z,
// multi-controlled X and Z, RY, single-qubit initialisation), barriers and
// terminal measurement. Circuits are built once and executed by the sim
// package.
package circuit

import (
	"fmt"
	"math"
)

// Op enumerates gate kinds.
type Op int

const (
	OpH Op = iota
	OpX
	OpZ
	OpCX
	OpMCX
	OpMCZ
	OpRY
	OpInit
	OpBarrier
	OpMeasure
)

func (o Op) String() string {
	switch o {
	case OpH:
		return "h"
	case OpX:
		return "x"
	case OpZ:
		return "z"
	case OpCX:
		return "cx"
	case OpMCX:
		return "mcx"
	case OpMCZ:
		return "mcz"
	case OpRY:
		return "ry"
	case OpInit:
		return "init"
	case OpBarrier:
		return "barrier"
	case OpMeasure:
		return "measure"
	}
	return "unknown"
}

// Gate is one circuit operation. Controls are empty for single-qubit gates.
// For OpInit, Amp0/Amp1 hold the target single-qubit state; for OpRY, Theta
// holds the rotation angle. For OpMeasure, Clbit is the classical bit the
// target qubit is read into.
type Gate struct {
	Op       Op
	Controls []int
	Target   int
	Theta    float64
	Amp0     complex128
	Amp1     complex128
	Clbit    int
}

// Register is a named, contiguous group of qubits.
type Register struct {
	Name  string
	first int
	size  int
}

// Len returns the register width.
func (r Register) Len() int { return r.size }

// Qubit returns the global index of the i-th qubit in the register.
func (r Register) Qubit(i int) int {
	if i < 0 {
		i += r.size // negative indexes address from the end
	}
	return r.first + i
}

// Qubits returns all global indexes of the register.
func (r Register) Qubits() []int {
	out := make([]int, r.size)
	for i := range out {
		out[i] = r.first + i
	}
	return out
}

// Tail returns the last n qubits of the register.
func (r Register) Tail(n int) []int {
	out := make([]int, 0, n)
	for i := r.size - n; i < r.size; i++ {
		out = append(out, r.first+i)
	}
	return out
}

// Circuit is an ordered gate list over a fixed set of qubits and classical
// bits.
type Circuit struct {
	qubits int
	clbits int
	gates  []Gate
}

// New returns an empty circuit with no registers yet.
func New() *Circuit { return &Circuit{} }

// AddRegister appends a named register of the given width.
func (c *Circuit) AddRegister(name string, size int) Register {
	r := Register{Name: name, first: c.qubits, size: size}
	c.qubits += size
	return r
}

// AddClassical appends classical readout bits and returns the index of the
// first new bit.
func (c *Circuit) AddClassical(size int) int {
	first := c.clbits
	c.clbits += size
	return first
}

// Qubits returns the total qubit count.
func (c *Circuit) Qubits() int { return c.qubits }

// Clbits returns the total classical bit count.
func (c *Circuit) Clbits() int { return c.clbits }

// Gates returns the gate list. Callers must not mutate it.
func (c *Circuit) Gates() []Gate { return c.gates }

func (c *Circuit) checkQubit(q int) {
	if q < 0 || q >= c.qubits {
		panic(fmt.Sprintf("circuit: qubit %d out of range 0..%d", q, c.qubits-1))
	}
}

// H applies a Hadamard to each listed qubit.
func (c *Circuit) H(qubits ...int) {
	for _, q := range qubits {
		c.checkQubit(q)
		c.gates = append(c.gates, Gate{Op: OpH, Target: q})
	}
}

// X applies a Pauli-X to each listed qubit.
func (c *Circuit) X(qubits ...int) {
	for _, q := range qubits {
		c.checkQubit(q)
		c.gates = append(c.gates, Gate{Op: OpX, Target: q})
	}
}

// Z applies a Pauli-Z to each listed qubit.
func (c *Circuit) Z(qubits ...int) {
	for _, q := range qubits {
		c.checkQubit(q)
		c.gates = append(c.gates, Gate{Op: OpZ, Target: q})
	}
}

// CX applies a controlled X.
func (c *Circuit) CX(control, target int) {
	c.checkQubit(control)
	c.checkQubit(target)
	c.gates = append(c.gates, Gate{Op: OpCX, Controls: []int{control}, Target: target})
}

// CCX applies a Toffoli.
func (c *Circuit) CCX(control1, control2, target int) {
	c.MCX([]int{control1, control2}, target)
}

// MCX applies an X on target controlled by every listed qubit.
func (c *Circuit) MCX(controls []int, target int) {
	for _, q := range controls {
		c.checkQubit(q)
	}
	c.checkQubit(target)
	cp := make([]int, len(controls))
	copy(cp, controls)
	c.gates = append(c.gates, Gate{Op: OpMCX, Controls: cp, Target: target})
}

// MCZ applies a Z on target controlled by every listed qubit.
func (c *Circuit) MCZ(controls []int, target int) {
	for _, q := range controls {
		c.checkQubit(q)
	}
	c.checkQubit(target)
	cp := make([]int, len(controls))
	copy(cp, controls)
	c.gates = append(c.gates, Gate{Op: OpMCZ, Controls: cp, Target: target})
}

// RY applies a Y-rotation by theta.
func (c *Circuit) RY(theta float64, target int) {
	c.checkQubit(target)
	c.gates = append(c.gates, Gate{Op: OpRY, Theta: theta, Target: target})
}

// Initialize prepares a single qubit in the state amp0|0> + amp1|1>. The
// amplitudes must be normalised; the qubit must still be in |0>.
func (c *Circuit) Initialize(target int, amp0, amp1 complex128) error {
	c.checkQubit(target)
	norm := real(amp0)*real(amp0) + imag(amp0)*imag(amp0) +
		real(amp1)*real(amp1) + imag(amp1)*imag(amp1)
	if math.Abs(norm-1) > 1e-9 {
		return fmt.Errorf("circuit: initialize amplitudes not normalised (norm %f)", norm)
	}
	c.gates = append(c.gates, Gate{Op: OpInit, Target: target, Amp0: amp0, Amp1: amp1})
	return nil
}

// Barrier records a scheduling barrier. It has no effect on simulation and
// is skipped by gate counting.
func (c *Circuit) Barrier() {
	c.gates = append(c.gates, Gate{Op: OpBarrier})
}

// Measure reads each listed qubit into the corresponding classical bit.
func (c *Circuit) Measure(qubits []int, clbits []int) error {
	if len(qubits) != len(clbits) {
		return fmt.Errorf("circuit: measure %d qubits into %d clbits", len(qubits), len(clbits))
	}
	for i, q := range qubits {
		c.checkQubit(q)
		if clbits[i] < 0 || clbits[i] >= c.clbits {
			return fmt.Errorf("circuit: clbit %d out of range 0..%d", clbits[i], c.clbits-1)
		}
		c.gates = append(c.gates, Gate{Op: OpMeasure, Target: q, Clbit: clbits[i]})
	}
	return nil
}

// Append concatenates the gates of other onto c. Both circuits must agree on
// qubit count; classical bits are not carried over.
func (c *Circuit) Append(other *Circuit) error {
	if other.qubits != c.qubits {
		return fmt.Errorf("circuit: append %d-qubit circuit onto %d qubits", other.qubits, c.qubits)
	}
	for _, g := range other.gates {
		if g.Op == OpMeasure {
			return fmt.Errorf("circuit: cannot append a measuring circuit")
		}
	}
	c.gates = append(c.gates, other.gates...)
	return nil
}

// Inverse returns the adjoint circuit: gates reversed, rotation angles
// negated. Circuits containing initialisation or measurement have no
// inverse.
func (c *Circuit) Inverse() (*Circuit, error) {
	inv := &Circuit{qubits: c.qubits, clbits: c.clbits}
	inv.gates = make([]Gate, 0, len(c.gates))
	for i := len(c.gates) - 1; i >= 0; i-- {
		g := c.gates[i]
		switch g.Op {
		case OpInit, OpMeasure:
			return nil, fmt.Errorf("circuit: %s has no inverse", g.Op)
		case OpRY:
			g.Theta = -g.Theta
		}
		inv.gates = append(inv.gates, g)
	}
	return inv, nil
}

// Stats summarises circuit size.
type Stats struct {
	Qubits int `json:"qubits"`
	Gates  int `json:"gates"` // barriers and measurements excluded
	MCX    int `json:"mcx"`   // multi-controlled X with three or more controls
}

// Size returns circuit statistics.
func (c *Circuit) Size() Stats {
	s := Stats{Qubits: c.qubits}
	for _, g := range c.gates {
		switch g.Op {
		case OpBarrier, OpMeasure:
			continue
		case OpMCX:
			if len(g.Controls) >= 3 {
				s.MCX++
			}
		}
		s.Gates++
	}
	return s
}
