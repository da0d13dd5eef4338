//
// eval.go
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

// Evaluate runs the streaming evaluator over ls, which must be
// rewound to the start of the same circuit file report was computed
// from. selected holds one (label, bit) pair per primary input wire,
// as produced by ot.SelectAll or ot.SelectRandom. tables must be
// consumed in exactly the order the garbler produced them - this is
// the binding contract between the two passes. It returns one
// (label, bit) pair per primary output wire.
func Evaluate(ls *LineStream, report *Report, selected map[uint32]ot.Selected, tables []ANDTable) (map[uint32]ot.Selected, error) {
	_, numWires, err := parseHeader(ls)
	if err != nil {
		return nil, err
	}
	if numWires != report.TotalWires {
		return nil, fmt.Errorf("circuit file has %d wires, report has %d", numWires, report.TotalWires)
	}

	remaining := append([]byte(nil), report.WireUsageCounts...)
	active := make(map[uint32]ot.Selected, len(selected))
	for w, sel := range selected {
		active[w] = sel
	}

	tableIdx := 0
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

		var c ot.Selected
		switch gate.Op {
		case XOR:
			l := a.Label
			l.Xor(b.Label)
			c = ot.Selected{Label: l, Bit: a.Bit != b.Bit}

		case AND:
			if tableIdx >= len(tables) {
				return nil, fmt.Errorf("line %d: AND-table underflow: need table %d, have %d", lineNo, tableIdx, len(tables))
			}
			row := boolIndex(a.Bit)*2 + boolIndex(b.Bit)
			key := ot.Hash(a.Label, b.Label)
			l := tables[tableIdx][row]
			l.Xor(key)
			c = ot.Selected{Label: l, Bit: a.Bit && b.Bit}
			tableIdx++

		default:
			return nil, fmt.Errorf("line %d: unsupported gate kind %s", lineNo, gate.Op)
		}

		active[uint32(gate.Output)] = c
		releaseEvalUsage(remaining, active, uint32(gate.Input0))
		releaseEvalUsage(remaining, active, uint32(gate.Input1))
	}

	outputs := make(map[uint32]ot.Selected, len(report.PrimaryOutputWires))
	for _, w := range report.PrimaryOutputWires {
		sel, ok := active[w]
		if !ok {
			return nil, fmt.Errorf("primary output wire %d not in active set at finalization", w)
		}
		outputs[w] = sel
	}
	return outputs, nil
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}

func releaseEvalUsage(remaining []byte, active map[uint32]ot.Selected, w uint32) {
	if remaining[w] == maxUsageCount {
		return
	}
	remaining[w]--
	if remaining[w] == 0 {
		delete(active, w)
	}
}
