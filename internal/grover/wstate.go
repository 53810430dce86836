// SPDX-License-Identifier: MIT

package grover

import (
	"fmt"
	"math"

	"github.com/qsolv/qsudoku/internal/circuit"
)

// PrepareWState prepares a W-state across the listed qubits: an equal
// superposition of all basis states with exactly one qubit set. Follows the
// cascaded controlled-rotation construction for arbitrary W states.
func PrepareWState(c *circuit.Circuit, qubits []int) error {
	if len(qubits) == 0 {
		return fmt.Errorf("grover: w-state needs at least one qubit")
	}

	n := len(qubits)
	angles := wAngles(n)

	c.X(qubits[0])
	for i := 0; i < n-1; i++ {
		control, target := qubits[i], qubits[i+1]
		theta := angles[i]

		c.CX(control, target)
		c.RY(-theta, target)
		c.CX(control, target)
		c.RY(theta, target)
		c.CX(target, control)
	}
	return nil
}

// PrepareControlledWState prepares the W-state on the target qubits only
// when every control qubit is set.
func PrepareControlledWState(c *circuit.Circuit, targets, controls []int) error {
	if len(targets) == 0 {
		return fmt.Errorf("grover: controlled w-state needs at least one target")
	}

	n := len(targets)
	angles := wAngles(n)

	c.MCX(controls, targets[0])
	for i := 0; i < n-1; i++ {
		current, next := targets[i], targets[i+1]
		theta := angles[i]

		c.MCX(append([]int{current}, controls...), next)
		c.RY(-theta, next)
		c.MCX(append([]int{current}, controls...), next)
		c.RY(theta, next)
		c.MCX(append([]int{next}, controls...), current)
	}
	return nil
}

// TraverseBlocks recursively stacks controlled W-states across qubit
// blocks: each recursion level fixes one more control qubit until a block
// is fully constrained, then a single multi-controlled X closes it.
func TraverseBlocks(c *circuit.Circuit, blockSize int, blocks [][]int, controls, targets []int) error {
	if len(controls) < blockSize-1 {
		original := append([]int{}, targets...)

		remaining := make([][]int, 0, len(blocks))
		for _, block := range blocks {
			keep := true
			for _, ctrl := range controls {
				if contains(block, ctrl) {
					keep = false
					break
				}
			}
			if keep {
				remaining = append(remaining, block)
			}
		}

		var live []int
		for _, q := range targets {
			for _, block := range remaining {
				if contains(block, q) {
					live = append(live, q)
					break
				}
			}
		}

		if err := PrepareControlledWState(c, live, controls); err != nil {
			return err
		}

		for _, q := range original {
			inBlock := false
			for _, block := range remaining {
				if contains(block, q) {
					inBlock = true
					break
				}
			}
			if !inBlock {
				continue
			}
			next := make([]int, 0, len(original)-1)
			for _, other := range original {
				if other != q {
					next = append(next, other+blockSize)
				}
			}
			if err := TraverseBlocks(c, blockSize, remaining, append(append([]int{}, controls...), q), next); err != nil {
				return err
			}
		}
		return nil
	}

	if len(controls) == blockSize-1 {
		c.MCX(controls, targets[0])
	}
	return nil
}

// wAngles returns the rotation ladder theta_i = arccos(sqrt(1/(n+2-i))) for
// i = 2..n.
func wAngles(n int) []float64 {
	angles := make([]float64, 0, n-1)
	for i := 2; i <= n; i++ {
		angles = append(angles, math.Acos(math.Sqrt(1/float64(n+2-i))))
	}
	return angles
}

func contains(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
