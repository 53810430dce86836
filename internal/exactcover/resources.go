// SPDX-License-Identifier: MIT

package exactcover

// Resources is a closed-form size estimate of the cover circuit. It avoids
// building the gate list, which matters for boards whose circuits exceed any
// simulable width.
type Resources struct {
	Qubits     int `json:"qubits"`
	TotalGates int `json:"totalGates"`
	MCXGates   int `json:"mcxGates"`
}

// Resources estimates circuit size for the given iteration count. Pass
// Iterations() for the standard count.
func (cc *CoverCircuit) Resources(iterations int) Resources {
	sSize := len(cc.inst.Subsets)
	uSize := len(cc.inst.Universe)
	b := cc.counterBits

	counterGates := 0
	for _, s := range cc.inst.Subsets {
		counterGates += len(s.Elements) * b
	}
	oracleGates := 1 + 2*((uSize-1)*b)
	diffuserGates := 1 + 4*sSize
	mcxGates := iterations * (oracleGates + 2*counterGates)

	return Resources{
		Qubits:     sSize + uSize*b + 1,
		TotalGates: sSize + 2 + mcxGates + iterations*diffuserGates,
		MCXGates:   mcxGates,
	}
}
