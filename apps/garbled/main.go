//
// main.go
//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/alpenlabs/garbled-circuits/circuit"
	"github.com/alpenlabs/garbled-circuits/ot"
)

func main() {
	file := flag.String("c", "", "Circuit file")
	seedHex := flag.String("seed", "", "Hex-encoded 32-byte garbling seed (defaults to all-zero)")
	inputs := flag.String("i", "", "Primary input bits, comma-separated wire=bit pairs, e.g. 0=1,1=0")
	dump := flag.Bool("dump", false, "Print a wire-usage report for the circuit file and exit")
	tablesFile := flag.String("tables", "", "AND-table file (written after garbling, read back before evaluation)")
	selectedFile := flag.String("selected", "", "Selected-inputs file (written after selecting primary inputs, read back before evaluation)")
	resultFile := flag.String("result", "", "Evaluation-result file (written after evaluation)")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	if len(*file) == 0 {
		fmt.Println("Circuit file not specified")
		os.Exit(1)
	}

	if *dump {
		if err := dumpReports([]string{*file}); err != nil {
			log.Fatal(err)
		}
		return
	}

	seed, err := parseSeed(*seedHex)
	if err != nil {
		log.Fatal(err)
	}

	bits, err := parseInputs(*inputs)
	if err != nil {
		log.Fatal(err)
	}

	opts := runOptions{
		tablesFile:   *tablesFile,
		selectedFile: *selectedFile,
		resultFile:   *resultFile,
		verbose:      *verbose,
	}
	if err := run(*file, seed, bits, opts); err != nil {
		log.Fatal(err)
	}
}

// runOptions names the file paths through which the AND tables and the
// selected-inputs and evaluation-result documents are exchanged. Any
// left blank keeps the corresponding value in memory instead of
// round-tripping it through a file.
type runOptions struct {
	tablesFile   string
	selectedFile string
	resultFile   string
	verbose      bool
}

// run drives the full pipeline over a single circuit file: analyze,
// garble, select primary inputs, evaluate, and cross-check the result
// against the plain reference evaluator. When opts names a file path
// for the AND tables or the selected-inputs document, that value is
// written out and read back rather than kept in memory, exercising the
// same encode/decode path a real two-party run would use to exchange
// it out of process.
func run(file string, seed [32]byte, bits map[uint32]bool, opts runOptions) error {
	report, err := analyzeFile(file)
	if err != nil {
		return err
	}
	fmt.Printf("Circuit %s:\n", file)
	report.WriteTable(os.Stdout)
	if report.GateCountMismatch {
		fmt.Printf("warning: header declares %d gates, file has %d\n",
			report.HeaderGateCount, report.ObservedGateCount)
	}

	for _, w := range report.PrimaryInputWires {
		if _, ok := bits[w]; !ok {
			return fmt.Errorf("no input bit supplied for primary input wire %d", w)
		}
	}

	ls, err := openLineStream(file)
	if err != nil {
		return err
	}
	gr, err := circuit.Garble(ls, report, seed)
	if err != nil {
		return err
	}
	fmt.Printf("AND tables: %d\n", len(gr.Tables))

	tables, err := roundTripTables(gr.Tables, opts.tablesFile)
	if err != nil {
		return err
	}

	selected, err := ot.SelectAll(gr.Labels.InputLabels, gr.Labels.Delta, bits)
	if err != nil {
		return err
	}
	selected, err = roundTripSelected(selected, opts.selectedFile)
	if err != nil {
		return err
	}

	ls, err = openLineStream(file)
	if err != nil {
		return err
	}
	outputs, err := circuit.Evaluate(ls, report, selected, tables)
	if err != nil {
		return err
	}
	outputs, err = roundTripSelected(outputs, opts.resultFile)
	if err != nil {
		return err
	}

	c, err := parseCircuitFile(file)
	if err != nil {
		return err
	}
	plain, err := circuit.ComputePlain(c, bits)
	if err != nil {
		return err
	}

	for _, w := range report.PrimaryOutputWires {
		sel := outputs[w]
		fmt.Printf("wire %d: %v\n", w, sel.Bit)
		if opts.verbose {
			fmt.Printf("  label: %s\n", sel.Label)
		}
		if sel.Bit != plain[w] {
			return fmt.Errorf("wire %d: garbled result %v disagrees with plain result %v", w, sel.Bit, plain[w])
		}
	}
	return nil
}

// roundTripTables writes tables to path and reads them back when path
// is non-empty, otherwise it returns tables unchanged.
func roundTripTables(tables []circuit.ANDTable, path string) ([]circuit.ANDTable, error) {
	if len(path) == 0 {
		return tables, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	err = circuit.WriteTables(f, tables)
	f.Close()
	if err != nil {
		return nil, err
	}

	f, err = os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return circuit.ReadTables(f)
}

// roundTripSelected writes selected to path and reads it back when
// path is non-empty, otherwise it returns selected unchanged.
func roundTripSelected(selected map[uint32]ot.Selected, path string) (map[uint32]ot.Selected, error) {
	if len(path) == 0 {
		return selected, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	err = ot.EncodeSelected(f, selected)
	f.Close()
	if err != nil {
		return nil, err
	}

	f, err = os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ot.DecodeSelected(f)
}

func analyzeFile(file string) (*circuit.Report, error) {
	ls, err := openLineStream(file)
	if err != nil {
		return nil, err
	}
	return circuit.Analyze(ls)
}

func parseCircuitFile(file string) (*circuit.Circuit, error) {
	ls, err := openLineStream(file)
	if err != nil {
		return nil, err
	}
	return circuit.ParseCircuit(ls)
}

func openLineStream(file string) (*circuit.LineStream, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	return circuit.NewLineStream(f), nil
}

func parseSeed(s string) ([32]byte, error) {
	var seed [32]byte
	if len(s) == 0 {
		return seed, nil
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return seed, fmt.Errorf("invalid seed: %w", err)
	}
	if len(raw) != 32 {
		return seed, fmt.Errorf("seed must be exactly 32 bytes, got %d", len(raw))
	}
	copy(seed[:], raw)
	return seed, nil
}

func parseInputs(s string) (map[uint32]bool, error) {
	bits := make(map[uint32]bool)
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return bits, nil
	}
	for _, pair := range strings.Split(s, ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed input pair %q, want wire=bit", pair)
		}
		wire, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("malformed wire id in %q: %w", pair, err)
		}
		bit, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 1)
		if err != nil {
			return nil, fmt.Errorf("malformed bit in %q: %w", pair, err)
		}
		bits[uint32(wire)] = bit == 1
	}
	return bits, nil
}
