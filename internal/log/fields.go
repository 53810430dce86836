// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldJobID     = "job_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Solver fields
	FieldStrategy   = "strategy"
	FieldShots      = "shots"
	FieldIterations = "iterations"
	FieldQubits     = "qubits"
	FieldGates      = "gates"
	FieldRounds     = "rounds"

	// Path fields
	FieldPath = "path"
)
