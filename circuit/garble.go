//
// garble.go
//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"fmt"

	"github.com/alpenlabs/garbled-circuits/ot"
)

// ANDTable is a garbled AND gate's four-ciphertext truth table, in
// canonical row order (0,0), (0,1), (1,0), (1,1). No half-gates, no
// row reduction: every row is a full 128-bit ciphertext.
type ANDTable [4]ot.Label

// GarbleResult is the garbler's complete output: the labels document
// (primary-input and primary-output zero-labels plus the global
// offset) and the ordered sequence of garbled AND tables, one per AND
// gate in file order.
type GarbleResult struct {
	Labels *ot.Labels
	Tables []ANDTable
}

// Garble runs the streaming garbler over ls, which must be positioned
// at the start of the same circuit file report was computed from. seed
// keys the deterministic label stream: the same seed and circuit
// always produce byte-identical tables, labels, and Delta.
func Garble(ls *LineStream, report *Report, seed [32]byte) (*GarbleResult, error) {
	stream, err := ot.NewStream(seed)
	if err != nil {
		return nil, err
	}
	delta, err := stream.NextLabel()
	if err != nil {
		return nil, err
	}

	_, numWires, err := parseHeader(ls)
	if err != nil {
		return nil, err
	}
	if numWires != report.TotalWires {
		return nil, fmt.Errorf("circuit file has %d wires, report has %d", numWires, report.TotalWires)
	}

	remaining := append([]byte(nil), report.WireUsageCounts...)
	active := make(map[uint32]ot.Label, len(report.PrimaryInputWires))
	inputLabels := make(map[uint32]ot.Label, len(report.PrimaryInputWires))

	for _, w := range report.PrimaryInputWires {
		l0, err := stream.NextLabel()
		if err != nil {
			return nil, err
		}
		active[w] = l0
		inputLabels[w] = l0
	}

	var tables []ANDTable
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

		gate, err := parseStrictGateLine(line, numWires)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		a, ok := active[uint32(gate.Input0)]
		if !ok {
			return nil, fmt.Errorf("line %d: input wire %d not in active set", lineNo, gate.Input0)
		}
		b, ok := active[uint32(gate.Input1)]
		if !ok {
			return nil, fmt.Errorf("line %d: input wire %d not in active set", lineNo, gate.Input1)
		}

		var c ot.Label
		switch gate.Op {
		case XOR:
			c = a
			c.Xor(b)

		case AND:
			c, err = stream.NextLabel()
			if err != nil {
				return nil, err
			}
			table := garbleAND(a, b, c, delta)
			tables = append(tables, table)

		default:
			return nil, fmt.Errorf("line %d: unsupported gate kind %s", lineNo, gate.Op)
		}

		active[uint32(gate.Output)] = c
		releaseUsage(remaining, active, uint32(gate.Input0))
		releaseUsage(remaining, active, uint32(gate.Input1))
	}

	outputLabels := make(map[uint32]ot.Label, len(report.PrimaryOutputWires))
	for _, w := range report.PrimaryOutputWires {
		l0, ok := active[w]
		if !ok {
			return nil, fmt.Errorf("primary output wire %d not in active set at finalization", w)
		}
		outputLabels[w] = l0
	}

	return &GarbleResult{
		Labels: &ot.Labels{
			InputLabels:  inputLabels,
			OutputLabels: outputLabels,
			Delta:        delta,
		},
		Tables: tables,
	}, nil
}

// garbleAND builds the four-ciphertext table for an AND gate whose
// operand zero-labels are a and b and whose output zero-label is c0,
// under global offset delta.
func garbleAND(a, b, c0, delta ot.Label) ANDTable {
	c1 := c0
	c1.Xor(delta)

	a1 := a
	a1.Xor(delta)
	b1 := b
	b1.Xor(delta)

	rows := [4][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}

	var table ANDTable
	for i, r := range rows {
		la := a
		if r[0] == 1 {
			la = a1
		}
		lb := b
		if r[1] == 1 {
			lb = b1
		}
		key := ot.Hash(la, lb)

		plaintext := c0
		if r[0]&r[1] == 1 {
			plaintext = c1
		}
		key.Xor(plaintext)
		table[i] = key
	}
	return table
}

// releaseUsage decrements w's remaining-use count, if it has not
// saturated at 255, and evicts w from active once the count reaches
// zero. A saturated count is never decremented; the wire is permanent
// for the rest of the pass.
func releaseUsage(remaining []byte, active map[uint32]ot.Label, w uint32) {
	if remaining[w] == maxUsageCount {
		return
	}
	remaining[w]--
	if remaining[w] == 0 {
		delete(active, w)
	}
}
