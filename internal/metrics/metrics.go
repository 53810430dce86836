// SPDX-License-Identifier: MIT
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Solve metrics
	solvesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qsudoku_solves_total",
		Help: "Solve runs by strategy and outcome",
	}, []string{"strategy", "outcome"}) // outcome=solved|classical|failed

	solveDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "qsudoku_solve_duration_seconds",
		Help:    "End-to-end solve duration including simulation",
		Buckets: prometheus.DefBuckets,
	}, []string{"strategy"})

	circuitQubits = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "qsudoku_circuit_qubits",
		Help:    "Qubit width of executed circuits",
		Buckets: []float64{4, 8, 12, 16, 20, 24, 26},
	}, []string{"strategy"})

	circuitGates = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "qsudoku_circuit_gates",
		Help:    "Gate count of executed circuits",
		Buckets: prometheus.ExponentialBuckets(16, 4, 8),
	}, []string{"strategy"})

	// Estimation metrics
	estimateSweepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qsudoku_estimate_sweeps_total",
		Help: "Resource estimation sweeps by outcome",
	}, []string{"outcome"}) // outcome=success|failure

	estimateFilesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qsudoku_estimate_files_total",
		Help: "Puzzle files processed by estimation sweeps",
	})

	// Job metrics
	jobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qsudoku_jobs_total",
		Help: "Background jobs by terminal state",
	}, []string{"state"}) // state=done|failed

	jobsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "qsudoku_jobs_active",
		Help: "Background jobs currently running",
	})

	// Cache metrics
	cacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qsudoku_cache_requests_total",
		Help: "Solution cache lookups by result",
	}, []string{"result"}) // result=hit|miss|error

	// Library metrics
	libraryPuzzles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "qsudoku_library_puzzles",
		Help: "Puzzle files currently indexed",
	})

	libraryRescansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qsudoku_library_rescans_total",
		Help: "Library rescans triggered by file events",
	})
)

func RecordSolve(strategy, outcome string, seconds float64) {
	solvesTotal.WithLabelValues(strategy, outcome).Inc()
	solveDurationSeconds.WithLabelValues(strategy).Observe(seconds)
}

func RecordCircuit(strategy string, qubits, gates int) {
	circuitQubits.WithLabelValues(strategy).Observe(float64(qubits))
	circuitGates.WithLabelValues(strategy).Observe(float64(gates))
}

func RecordEstimateSweep(outcome string, files int) {
	estimateSweepsTotal.WithLabelValues(outcome).Inc()
	estimateFilesTotal.Add(float64(files))
}

func JobStarted() { jobsActive.Inc() }

func JobFinished(state string) {
	jobsActive.Dec()
	jobsTotal.WithLabelValues(state).Inc()
}

func RecordCacheRequest(result string) { cacheRequestsTotal.WithLabelValues(result).Inc() }

func SetLibraryPuzzles(n int) { libraryPuzzles.Set(float64(n)) }
func IncLibraryRescan()       { libraryRescansTotal.Inc() }
