// SPDX-License-Identifier: MIT

// Package sim executes circuits on a dense statevector simulator. The
// reference pipeline submitted circuits to a remote QASM simulator; running
// locally keeps solves deterministic (seeded sampling) and free of network
// dependencies. State size doubles per qubit, so the solver guards circuit
// width before handing circuits to Run.
package sim

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"sort"

	"github.com/qsolv/qsudoku/internal/circuit"
)

// MaxQubits is the hard width limit of the simulator backend; beyond this a
// dense statevector no longer fits sensible memory budgets.
const MaxQubits = 26

// Counts maps measured bitstrings to their number of occurrences. Bitstrings
// follow the usual readout convention: the highest classical bit is the
// leftmost character.
type Counts map[string]int

// Run simulates the circuit and samples its terminal measurement shots
// times using a seeded RNG.
func Run(c *circuit.Circuit, shots int, seed int64) (Counts, error) {
	if shots < 1 {
		return nil, fmt.Errorf("sim: shots must be positive, got %d", shots)
	}
	state, measured, err := evolve(c)
	if err != nil {
		return nil, err
	}
	if len(measured) == 0 {
		return nil, fmt.Errorf("sim: circuit has no measurement")
	}
	return sample(state, measured, c.Clbits(), shots, seed), nil
}

// Statevector returns the final state of a circuit without measurements
// applied. Intended for tests and diagnostics.
func Statevector(c *circuit.Circuit) ([]complex128, error) {
	state, _, err := evolve(c)
	return state, err
}

// evolve applies every gate and collects the measurement map (classical bit
// to qubit). Measurements must be terminal.
func evolve(c *circuit.Circuit) ([]complex128, map[int]int, error) {
	n := c.Qubits()
	if n < 1 {
		return nil, nil, fmt.Errorf("sim: circuit has no qubits")
	}
	if n > MaxQubits {
		return nil, nil, fmt.Errorf("sim: %d qubits exceed backend limit of %d", n, MaxQubits)
	}

	state := make([]complex128, 1<<uint(n))
	state[0] = 1

	measured := make(map[int]int) // clbit -> qubit
	sealed := false               // no unitaries after the first measure

	for _, g := range c.Gates() {
		if sealed && g.Op != circuit.OpMeasure && g.Op != circuit.OpBarrier {
			return nil, nil, fmt.Errorf("sim: %s gate after measurement", g.Op)
		}
		switch g.Op {
		case circuit.OpBarrier:
			// no-op
		case circuit.OpH:
			h := complex(1/math.Sqrt2, 0)
			applySingle(state, g.Target, h, h, h, -h)
		case circuit.OpX:
			applySingle(state, g.Target, 0, 1, 1, 0)
		case circuit.OpZ:
			applySingle(state, g.Target, 1, 0, 0, -1)
		case circuit.OpRY:
			cos := complex(math.Cos(g.Theta/2), 0)
			sin := complex(math.Sin(g.Theta/2), 0)
			applySingle(state, g.Target, cos, -sin, sin, cos)
		case circuit.OpInit:
			if err := applyInit(state, g.Target, g.Amp0, g.Amp1); err != nil {
				return nil, nil, err
			}
		case circuit.OpCX, circuit.OpMCX:
			applyMCX(state, g.Controls, g.Target)
		case circuit.OpMCZ:
			applyMCZ(state, g.Controls, g.Target)
		case circuit.OpMeasure:
			sealed = true
			measured[g.Clbit] = g.Target
		default:
			return nil, nil, fmt.Errorf("sim: unsupported op %s", g.Op)
		}
	}
	return state, measured, nil
}

// applySingle applies the unitary [[a b] [c d]] to one qubit.
func applySingle(state []complex128, q int, a, b, c, d complex128) {
	mask := 1 << uint(q)
	for i := range state {
		if i&mask != 0 {
			continue
		}
		j := i | mask
		s0, s1 := state[i], state[j]
		state[i] = a*s0 + b*s1
		state[j] = c*s0 + d*s1
	}
}

// applyInit prepares a qubit in amp0|0> + amp1|1>. The qubit must still be
// disentangled in |0>.
func applyInit(state []complex128, q int, amp0, amp1 complex128) error {
	mask := 1 << uint(q)
	for i := range state {
		if i&mask != 0 && cmplx.Abs(state[i]) > 1e-9 {
			return fmt.Errorf("sim: initialize on qubit %d which is not in |0>", q)
		}
	}
	for i := range state {
		if i&mask != 0 {
			continue
		}
		j := i | mask
		s0 := state[i]
		state[i] = amp0 * s0
		state[j] = amp1 * s0
	}
	return nil
}

func controlMask(controls []int) int {
	mask := 0
	for _, q := range controls {
		mask |= 1 << uint(q)
	}
	return mask
}

func applyMCX(state []complex128, controls []int, target int) {
	cmask := controlMask(controls)
	tmask := 1 << uint(target)
	for i := range state {
		if i&cmask == cmask && i&tmask == 0 {
			j := i | tmask
			state[i], state[j] = state[j], state[i]
		}
	}
}

func applyMCZ(state []complex128, controls []int, target int) {
	cmask := controlMask(controls)
	tmask := 1 << uint(target)
	for i := range state {
		if i&cmask == cmask && i&tmask != 0 {
			state[i] = -state[i]
		}
	}
}

// sample draws shots basis states from the final distribution and renders
// each as a classical bitstring.
func sample(state []complex128, measured map[int]int, clbits, shots int, seed int64) Counts {
	cumulative := make([]float64, len(state))
	total := 0.0
	for i, amp := range state {
		p := real(amp)*real(amp) + imag(amp)*imag(amp)
		total += p
		cumulative[i] = total
	}

	rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- sampling, not crypto

	counts := make(Counts)
	buf := make([]byte, clbits)
	for s := 0; s < shots; s++ {
		r := rng.Float64() * total
		idx := sort.SearchFloat64s(cumulative, r)
		if idx >= len(state) {
			idx = len(state) - 1
		}
		for cl := 0; cl < clbits; cl++ {
			bit := byte('0')
			if q, ok := measured[cl]; ok && idx&(1<<uint(q)) != 0 {
				bit = '1'
			}
			// highest classical bit first
			buf[clbits-1-cl] = bit
		}
		counts[string(buf)]++
	}
	return counts
}
