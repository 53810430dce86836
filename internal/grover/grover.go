// SPDX-License-Identifier: MIT

// Package grover builds Grover circuits for the graph-coloring reduction of
// a puzzle: every open pair of fields is an edge whose endpoints must carry
// different colors. Field values are binary-encoded in colorSize qubits per
// field; a comparator per edge feeds an oracle qubit held in |->, and a
// diffuser over the unknown fields amplifies valid colorings.
package grover

import (
	"fmt"
	"math"
	"sort"

	"github.com/qsolv/qsudoku/internal/circuit"
)

// Builder assembles the Grover circuit for one set of open pairs.
type Builder struct {
	pairs      [][2]int // original field indexes
	normalized [][2]int
	fieldOrder []int       // normalized position -> original field index
	values     map[int]int // normalized field -> color (digit-1)
	unitHeight int
	unitWidth  int
}

// New returns a builder for the given open pairs and givens. Givens map
// original field indexes to digits (1-based); givens not referenced by any
// pair are dropped during normalisation.
func New(pairs [][2]int, givens map[int]int, unitHeight, unitWidth int) (*Builder, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("grover: no open pairs")
	}
	if unitHeight < 1 || unitWidth < 1 {
		return nil, fmt.Errorf("grover: invalid subunit %dx%d", unitHeight, unitWidth)
	}

	b := &Builder{
		pairs:      pairs,
		unitHeight: unitHeight,
		unitWidth:  unitWidth,
	}

	// Normalise: the field indexes appearing in the pairs, in ascending
	// order, become positions 0..n-1.
	seen := make(map[int]bool)
	for _, p := range pairs {
		seen[p[0]] = true
		seen[p[1]] = true
	}
	b.fieldOrder = make([]int, 0, len(seen))
	for idx := range seen {
		b.fieldOrder = append(b.fieldOrder, idx)
	}
	sort.Ints(b.fieldOrder)

	toNorm := make(map[int]int, len(b.fieldOrder))
	for pos, idx := range b.fieldOrder {
		toNorm[idx] = pos
	}

	b.normalized = make([][2]int, len(pairs))
	for i, p := range pairs {
		b.normalized[i] = [2]int{toNorm[p[0]], toNorm[p[1]]}
	}

	b.values = make(map[int]int)
	digits := unitHeight * unitWidth
	for idx, digit := range givens {
		pos, ok := toNorm[idx]
		if !ok {
			continue // given outside every pair carries no constraint here
		}
		if digit < 1 || digit > digits {
			return nil, fmt.Errorf("grover: digit %d out of range 1..%d", digit, digits)
		}
		b.values[pos] = digit - 1 // colors are 0-based
	}

	return b, nil
}

// ColorSize returns the number of qubits encoding one field's color: enough
// bits for color subunitSize-1.
func (b *Builder) ColorSize() int {
	return bitLen(b.unitHeight*b.unitWidth - 1)
}

// Fields returns the number of distinct fields referenced by the pairs.
func (b *Builder) Fields() int { return len(b.fieldOrder) }

// FieldOrder returns the original field index per normalized position.
func (b *Builder) FieldOrder() []int {
	out := make([]int, len(b.fieldOrder))
	copy(out, b.fieldOrder)
	return out
}

// UnknownQubits returns the width of the superposed part of the input
// register.
func (b *Builder) UnknownQubits() int {
	return (b.Fields() - len(b.values)) * b.ColorSize()
}

// Iterations returns the Grover iteration count, pi/4 * sqrt(N) over the
// unknown qubits.
func (b *Builder) Iterations() int {
	return int(math.Pi / 4 * math.Sqrt(float64(b.UnknownQubits())))
}

// Circuit assembles the full circuit: input register (colorSize qubits per
// field), one compare qubit per pair, the oracle out qubit in |->, Grover
// iterations and terminal measurement of the input register.
func (b *Builder) Circuit() (*circuit.Circuit, error) {
	return b.circuit(b.Iterations())
}

// CircuitWithIterations is Circuit with an explicit iteration count.
func (b *Builder) CircuitWithIterations(iterations int) (*circuit.Circuit, error) {
	if iterations < 0 {
		return nil, fmt.Errorf("grover: negative iteration count %d", iterations)
	}
	return b.circuit(iterations)
}

func (b *Builder) circuit(iterations int) (*circuit.Circuit, error) {
	colorSize := b.ColorSize()
	inputBits := b.Fields() * colorSize

	c := circuit.New()
	in := c.AddRegister("in", inputBits)
	cmp := c.AddRegister("cmp", len(b.normalized))
	out := c.AddRegister("out", 1)
	c.AddClassical(inputBits)

	// oracle qubit in |->
	if err := c.Initialize(out.Qubit(0), 0, 1); err != nil {
		return nil, err
	}
	c.H(out.Qubit(0))

	unknown, err := b.applyInits(c, in, colorSize)
	if err != nil {
		return nil, err
	}
	c.Barrier()

	for i := 0; i < iterations; i++ {
		b.oracle(c, in, cmp, out, colorSize)
		c.Barrier()
		b.diffuser(c, unknown, out)
		c.Barrier()
	}

	clbits := make([]int, inputBits)
	for i := range clbits {
		clbits[i] = i
	}
	if err := c.Measure(in.Qubits(), clbits); err != nil {
		return nil, err
	}
	return c, nil
}

// applyInits prepares the input register: given fields in the binary
// encoding of their color (most significant bit on the field's first
// qubit), unknown fields in uniform superposition. It returns the global
// indexes of the superposed qubits.
func (b *Builder) applyInits(c *circuit.Circuit, in circuit.Register, colorSize int) ([]int, error) {
	plus := complex(1/math.Sqrt2, 0)
	var unknown []int

	for pos := 0; pos < b.Fields(); pos++ {
		color, known := b.values[pos]
		for j := 0; j < colorSize; j++ {
			q := in.Qubit(pos*colorSize + j)
			if !known {
				if err := c.Initialize(q, plus, plus); err != nil {
					return nil, err
				}
				unknown = append(unknown, q)
				continue
			}
			// bit j counts from the most significant end
			if color>>(uint(colorSize-1-j))&1 == 1 {
				if err := c.Initialize(q, 0, 1); err != nil {
					return nil, err
				}
			} else if err := c.Initialize(q, 1, 0); err != nil {
				return nil, err
			}
		}
	}
	return unknown, nil
}

// oracle applies the graph-coloring oracle: comparators for every pair, a
// phase kickback when all pairs differ, comparators again to uncompute.
func (b *Builder) oracle(c *circuit.Circuit, in, cmp, out circuit.Register, colorSize int) {
	for i, p := range b.normalized {
		b.comparator(c, in, p[0], p[1], cmp.Qubit(i), colorSize)
	}
	c.MCX(cmp.Qubits(), out.Qubit(0))
	for i, p := range b.normalized {
		b.comparator(c, in, p[0], p[1], cmp.Qubit(i), colorSize)
	}
}

// comparator flips the compare qubit iff fields x and y hold different
// colors: every color bit is XORed onto it, then a multi-controlled X per
// valid qubit combination cancels the double counts. Combinations
// containing a bit and its counterpart in the other field (index distance
// colorSize*|x-y|) are skipped.
func (b *Builder) comparator(c *circuit.Circuit, in circuit.Register, x, y, cmpQubit, colorSize int) {
	xQubits := make([]int, colorSize)
	yQubits := make([]int, colorSize)
	for i := 0; i < colorSize; i++ {
		xQubits[i] = x*colorSize + i
		yQubits[i] = y*colorSize + i
	}
	forbidden := colorSize * abs(y-x)
	local := append(append([]int{}, xQubits...), yQubits...)

	for i := 0; i < colorSize; i++ {
		c.CX(in.Qubit(xQubits[i]), cmpQubit)
		c.CX(in.Qubit(yQubits[i]), cmpQubit)
	}

	for size := 2; size <= colorSize; size++ {
		for _, comb := range validCombinations(local, size, forbidden) {
			controls := make([]int, len(comb))
			for i, q := range comb {
				controls[i] = in.Qubit(q)
			}
			c.MCX(controls, cmpQubit)
		}
	}
}

// diffuser reflects the unknown qubits about their uniform superposition,
// with the phase flip kicked back through the out qubit.
func (b *Builder) diffuser(c *circuit.Circuit, unknown []int, out circuit.Register) {
	if len(unknown) == 0 {
		return
	}
	c.H(unknown...)
	c.X(unknown...)
	c.MCX(unknown, out.Qubit(0))
	c.X(unknown...)
	c.H(unknown...)
}

// validCombinations enumerates size-element combinations of elements whose
// members never differ by exactly forbidden.
func validCombinations(elements []int, size, forbidden int) [][]int {
	var out [][]int
	comb := make([]int, size)
	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == size {
			cp := make([]int, size)
			copy(cp, comb)
			out = append(out, cp)
			return
		}
		for i := start; i < len(elements); i++ {
			candidate := elements[i]
			ok := true
			for j := 0; j < depth; j++ {
				if abs(comb[j]-candidate) == forbidden {
					ok = false
					break
				}
			}
			if ok {
				comb[depth] = candidate
				walk(i+1, depth+1)
			}
		}
	}
	walk(0, 0)
	return out
}

// Decode translates a measured bitstring (highest classical bit first) into
// digits per original field index. Outcomes whose color exceeds the digit
// range are rejected.
func (b *Builder) Decode(bits string) (map[int]int, error) {
	colorSize := b.ColorSize()
	inputBits := b.Fields() * colorSize
	if len(bits) != inputBits {
		return nil, fmt.Errorf("grover: bitstring length %d, want %d", len(bits), inputBits)
	}
	digits := b.unitHeight * b.unitWidth

	out := make(map[int]int, b.Fields())
	for pos, fieldIdx := range b.fieldOrder {
		color := 0
		for j := 0; j < colorSize; j++ {
			// clbit k sits at string position inputBits-1-k
			k := pos*colorSize + j
			ch := bits[inputBits-1-k]
			color <<= 1
			if ch == '1' {
				color |= 1
			} else if ch != '0' {
				return nil, fmt.Errorf("grover: invalid bit %q", ch)
			}
		}
		if color >= digits {
			return nil, fmt.Errorf("grover: field %d measured color %d outside 0..%d",
				fieldIdx, color, digits-1)
		}
		out[fieldIdx] = color + 1
	}
	return out, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func bitLen(v int) int {
	if v <= 0 {
		return 1
	}
	n := 0
	for v > 0 {
		n++
		v >>= 1
	}
	return n
}
