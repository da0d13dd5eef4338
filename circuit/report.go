//
// report.go
//
// Copyright (c) 2024 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/markkurossi/tabulate"
)

// maxUsageCount is the saturation ceiling for a wire's input-consumption
// counter. A wire whose count reaches this value is treated as
// permanent: it is never decremented and never leaves the active set
// during garbling or evaluation.
const maxUsageCount = 255

// Report is the wire-usage analyzer's output: a complete classification
// of every wire in the circuit, derived from a single pass over the
// file.
type Report struct {
	TotalWires         int
	WireUsageCounts    []byte
	PrimaryInputWires  []uint32
	PrimaryOutputWires []uint32
	PrimaryInputs      int
	IntermediateWires  int
	PrimaryOutputs     int
	MissingWiresCount  int
	GateCountMismatch  bool
	HeaderGateCount    int
	ObservedGateCount  int
}

// Analyze runs the wire-usage analyzer over ls, which must be
// positioned at the start of a Bristol file. It performs a single
// pass: the header is parsed for num_wires, then every gate line is
// parsed under the analyzer's generic k_in/k_out grammar (gate kind
// and arity are not validated here; only wire-id range and token
// count are). A gate-count mismatch between the header and the number
// of lines actually processed is a warning, not a failure - it is
// reported back to the caller via GateCountMismatch rather than
// aborting the pass.
func Analyze(ls *LineStream) (*Report, error) {
	numGates, numWires, err := parseHeader(ls)
	if err != nil {
		return nil, err
	}

	counts := make([]byte, numWires)
	hasProducer := make([]bool, numWires)

	lineNo := 1
	observed := 0
	for {
		line, ok, err := ls.Next()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
		}
		if !ok {
			break
		}
		lineNo++

		inputs, outputs, err := parseUsageGateLine(line, numWires)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		observed++

		for _, w := range inputs {
			if counts[w] < maxUsageCount {
				counts[w]++
			}
		}
		for _, w := range outputs {
			hasProducer[w] = true
		}
	}

	var primaryInputs, primaryOutputs []uint32
	var numPrimaryInputs, numIntermediate, numPrimaryOutputs, numMissing int

	for w := 0; w < numWires; w++ {
		count := counts[w]
		producer := hasProducer[w]

		switch {
		case count == 0 && !producer:
			numMissing++
		case count > 0 && !producer:
			primaryInputs = append(primaryInputs, uint32(w))
			numPrimaryInputs++
		case count == 0 && producer:
			primaryOutputs = append(primaryOutputs, uint32(w))
			numPrimaryOutputs++
		default:
			numIntermediate++
		}
	}

	sort.Slice(primaryInputs, func(i, j int) bool { return primaryInputs[i] < primaryInputs[j] })
	sort.Slice(primaryOutputs, func(i, j int) bool { return primaryOutputs[i] < primaryOutputs[j] })

	return &Report{
		TotalWires:         numWires,
		WireUsageCounts:    counts,
		PrimaryInputWires:  primaryInputs,
		PrimaryOutputWires: primaryOutputs,
		PrimaryInputs:      numPrimaryInputs,
		IntermediateWires:  numIntermediate,
		PrimaryOutputs:     numPrimaryOutputs,
		MissingWiresCount:  numMissing,
		GateCountMismatch:  observed != numGates,
		HeaderGateCount:    numGates,
		ObservedGateCount:  observed,
	}, nil
}

// WriteTable renders a human-readable summary of the report.
func (r *Report) WriteTable(w io.Writer) {
	tab := tabulate.New(tabulate.Github)
	tab.Header("Category").SetAlign(tabulate.MR)
	tab.Header("Count").SetAlign(tabulate.MR)

	row := tab.Row()
	row.Column("Total wires")
	row.Column(fmt.Sprintf("%d", r.TotalWires))

	row = tab.Row()
	row.Column("Primary inputs")
	row.Column(fmt.Sprintf("%d", r.PrimaryInputs))

	row = tab.Row()
	row.Column("Intermediate wires")
	row.Column(fmt.Sprintf("%d", r.IntermediateWires))

	row = tab.Row()
	row.Column("Primary outputs")
	row.Column(fmt.Sprintf("%d", r.PrimaryOutputs))

	row = tab.Row()
	row.Column("Missing wires")
	row.Column(fmt.Sprintf("%d", r.MissingWiresCount))

	row = tab.Row()
	row.Column("Header gate count")
	row.Column(fmt.Sprintf("%d", r.HeaderGateCount))

	row = tab.Row()
	row.Column("Observed gate count")
	row.Column(fmt.Sprintf("%d", r.ObservedGateCount))

	tab.Print(w)
}

// GateKindCounts tallies how many gate lines of a circuit file fall
// into each recognized kind, plus a count of lines whose kind this
// core rejects. It exists so a caller can see what a parse would
// reject before running ParseCircuit, Garble or Evaluate against the
// strict grammar.
type GateKindCounts struct {
	XOR         int
	AND         int
	Unsupported int
}

// CountGateKinds walks ls (positioned at the start of a Bristol file)
// counting gate kinds under the analyzer's generic grammar. It does
// not fail on an unsupported kind; it tallies it instead.
func CountGateKinds(ls *LineStream) (*GateKindCounts, error) {
	_, numWires, err := parseHeader(ls)
	if err != nil {
		return nil, err
	}

	counts := &GateKindCounts{}
	lineNo := 1
	for {
		line, ok, err := ls.Next()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
		}
		if !ok {
			break
		}
		lineNo++

		if _, _, err := parseUsageGateLine(line, numWires); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		fields := bytes.Fields(line)
		kind := string(fields[len(fields)-1])
		switch kind {
		case "XOR":
			counts.XOR++
		case "AND":
			counts.AND++
		default:
			counts.Unsupported++
		}
	}
	return counts, nil
}

// SingleUseGateCounts tallies, among the wires a report classifies as
// consumed exactly once, how many were produced by an AND gate versus
// an XOR gate. Total counts every single-use wire regardless of the
// producing gate's kind, so AND+XOR can fall short of Total when other
// kinds (e.g. NAND, OR) produce single-use wires too.
type SingleUseGateCounts struct {
	AND   int
	XOR   int
	Total int
}

// CountSingleUseGates walks ls (positioned at the start of a Bristol
// file) and classifies each gate's output wires against report's
// per-wire usage counts. A wire consumed exactly once is single-use;
// such a wire's value is never needed past its one consumer, which
// makes it a release candidate immediately after that gate runs. report
// must have been produced by Analyze over the same file.
func CountSingleUseGates(ls *LineStream, report *Report) (*SingleUseGateCounts, error) {
	_, numWires, err := parseHeader(ls)
	if err != nil {
		return nil, err
	}

	counts := &SingleUseGateCounts{}
	lineNo := 1
	for {
		line, ok, err := ls.Next()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
		}
		if !ok {
			break
		}
		lineNo++

		_, outputs, err := parseUsageGateLine(line, numWires)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		fields := bytes.Fields(line)
		kind := string(fields[len(fields)-1])

		for _, w := range outputs {
			if w >= len(report.WireUsageCounts) || report.WireUsageCounts[w] != 1 {
				continue
			}
			counts.Total++
			switch kind {
			case "AND":
				counts.AND++
			case "XOR":
				counts.XOR++
			}
		}
	}
	return counts, nil
}
