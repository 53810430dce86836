// SPDX-License-Identifier: MIT

// Package decode post-processes measurement results: prefix filtering of
// counts, bitstring algebra used during oracle construction, and gate
// accounting between barriers.
package decode

import (
	"fmt"
	"strings"

	"github.com/qsolv/qsudoku/internal/circuit"
	"github.com/qsolv/qsudoku/internal/sim"
)

// FilterPrefix keeps the bitstrings carrying the given prefix, strips it and
// reverses the remainder. The reversal restores qubit order for readouts
// where the highest classical bit prints first.
func FilterPrefix(counts sim.Counts, prefix string) []string {
	var out []string
	for bits := range counts {
		if !strings.HasPrefix(bits, prefix) {
			continue
		}
		out = append(out, reverse(bits[len(prefix):]))
	}
	return out
}

// GatesBetweenBarriers counts the gates between the first two barriers of a
// circuit. Fewer than two barriers is an error.
func GatesBetweenBarriers(c *circuit.Circuit) (int, error) {
	barriers := 0
	gates := 0
	for _, g := range c.Gates() {
		if g.Op == circuit.OpBarrier {
			barriers++
			if barriers == 2 {
				return gates, nil
			}
			continue
		}
		if barriers == 1 {
			gates++
		}
	}
	return 0, fmt.Errorf("decode: fewer than two barriers in circuit")
}

// MultiQubitOR stores the OR of the control qubits in the target: an
// X-framed multi-controlled X with a final X on the target.
func MultiQubitOR(c *circuit.Circuit, controls []int, target int) {
	c.X(controls...)
	c.MCX(controls, target)
	c.X(controls...)
	c.X(target)
}

// NegatedOR returns the bitwise NOT of the OR across all bitstrings except
// the excluded key. All bitstrings must share one length.
func NegatedOR(bitstrings map[string]string, excludedKey string) (string, error) {
	length := -1
	for _, bits := range bitstrings {
		if length == -1 {
			length = len(bits)
		} else if len(bits) != length {
			return "", fmt.Errorf("decode: mixed bitstring lengths")
		}
	}
	if length == -1 {
		return "", fmt.Errorf("decode: no bitstrings")
	}

	or := make([]byte, length)
	for i := range or {
		or[i] = '0'
	}
	for key, bits := range bitstrings {
		if key == excludedKey {
			continue
		}
		for i := 0; i < length; i++ {
			if bits[i] == '1' {
				or[i] = '1'
			}
		}
	}
	for i := range or {
		if or[i] == '1' {
			or[i] = '0'
		} else {
			or[i] = '1'
		}
	}
	return string(or), nil
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
