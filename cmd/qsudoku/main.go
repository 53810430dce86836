// SPDX-License-Identifier: MIT

// qsudoku is the command line interface: solve puzzles, estimate circuit
// resources and sweep puzzle directories without running the daemon.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/qsolv/qsudoku/internal/board"
	"github.com/qsolv/qsudoku/internal/estimate"
	qslog "github.com/qsolv/qsudoku/internal/log"
	"github.com/qsolv/qsudoku/internal/solver"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: qsudoku <command> [flags]

commands:
  solve <puzzle.csv>     solve a puzzle with Grover search
  estimate <puzzle.csv>  estimate circuit resources for both encodings
  sweep <dir>            estimate every classified puzzle in a directory
  print <puzzle.csv>     parse and display a puzzle
`)
	os.Exit(2)
}

func main() {
	qslog.Configure(qslog.Config{})
	qslog.SetLevel(os.Getenv("QSUDOKU_LOG_LEVEL"))

	if len(os.Args) < 2 {
		usage()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "solve":
		err = runSolve(ctx, os.Args[2:])
	case "estimate":
		err = runEstimate(os.Args[2:])
	case "sweep":
		err = runSweep(ctx, os.Args[2:])
	case "print":
		err = runPrint(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "qsudoku: %v\n", err)
		os.Exit(1)
	}
}

func runSolve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("solve", flag.ExitOnError)
	strategy := fs.String("strategy", string(solver.StrategyPairs), "pairs, cover-simple or cover-pattern")
	shots := fs.Int("shots", 1024, "measurement shots")
	seed := fs.Int64("seed", 0, "simulator sampling seed")
	iterations := fs.Int("iterations", 0, "Grover iterations, 0 derives from the search space")
	numSolutions := fs.Int("num-solutions", 1, "assumed solution count for cover encodings")
	maxQubits := fs.Int("max-qubits", 0, "refuse circuits above this width, 0 uses the simulator limit")
	asJSON := fs.Bool("json", false, "print the result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("solve expects exactly one puzzle file")
	}

	b, err := board.LoadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	parsed, err := solver.ParseStrategy(*strategy)
	if err != nil {
		return err
	}

	res, err := solver.New().Solve(ctx, b, solver.Options{
		Strategy:     parsed,
		Shots:        *shots,
		Seed:         *seed,
		Iterations:   *iterations,
		NumSolutions: *numSolutions,
		MaxQubits:    *maxQubits,
	})
	if err != nil {
		return err
	}

	if *asJSON {
		return printJSON(res)
	}
	fmt.Println(res.Board)
	if res.Classical {
		fmt.Printf("solved classically after %d reduction rounds\n", res.Rounds)
		return nil
	}
	fmt.Printf("strategy %s, %d iterations, outcome %s (%d/%d shots), %d qubits\n",
		res.Strategy, res.Iterations, res.Outcome, res.OutcomeCount, res.Shots, res.Circuit.Qubits)
	return nil
}

func runEstimate(args []string) error {
	fs := flag.NewFlagSet("estimate", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "print the result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("estimate expects exactly one puzzle file")
	}

	res, err := estimate.New().File(fs.Arg(0))
	if err != nil {
		return err
	}
	if *asJSON {
		return printJSON(res)
	}
	if res.Classical {
		fmt.Println("puzzle reduces classically, nothing to encode")
		return nil
	}
	fmt.Printf("simple:  %d qubits, %d gates (%d MCX)\n", res.Simple.Qubits, res.Simple.TotalGates, res.Simple.MCXGates)
	fmt.Printf("pattern: %d qubits, %d gates (%d MCX)\n", res.Pattern.Qubits, res.Pattern.TotalGates, res.Pattern.MCXGates)
	return nil
}

func runSweep(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "print the report as JSON")
	archivePath := fs.String("archive", "", "also record the sweep in this SQLite database")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("sweep expects exactly one directory")
	}

	report, err := estimate.New().SweepDir(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	if *archivePath != "" {
		archive, err := estimate.OpenArchive(*archivePath)
		if err != nil {
			return err
		}
		defer func() { _ = archive.Close() }()
		if err := archive.Save(ctx, report); err != nil {
			return err
		}
	}

	if *asJSON {
		return printJSON(report)
	}
	for _, f := range report.Files {
		if f.Classical {
			fmt.Printf("%-24s %-8s classical\n", f.File, f.Class)
			continue
		}
		fmt.Printf("%-24s %-8s simple %d qubits / %d gates, pattern %d qubits / %d gates\n",
			f.File, f.Class, f.Simple.Qubits, f.Simple.TotalGates, f.Pattern.Qubits, f.Pattern.TotalGates)
	}
	keys := make([]string, 0, len(report.Averages))
	for key := range report.Averages {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		avg := report.Averages[key]
		fmt.Printf("avg %-16s %.1f qubits, %.1f gates\n", key, avg.Qubits, avg.Gates)
	}
	return nil
}

func runPrint(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("print expects exactly one puzzle file")
	}
	b, err := board.LoadFile(args[0])
	if err != nil {
		return err
	}
	fmt.Println(b)
	fmt.Printf("%dx%d board, %d empty fields\n", b.Rows(), b.Cols(), b.EmptyCount())
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
