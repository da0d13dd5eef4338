//
// parser.go
//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"bytes"
	"fmt"
	"strconv"
)

// parseHeader reads the file's first line, "num_gates num_wires", and
// validates that it has exactly two non-negative integer tokens. It is
// shared by every pass that walks a circuit file: the analyzer, the
// garbler, the evaluator, and ParseCircuit.
func parseHeader(ls *LineStream) (numGates, numWires int, err error) {
	line, ok, err := ls.Next()
	if err != nil {
		return 0, 0, fmt.Errorf("line 1: %w", err)
	}
	if !ok || len(bytes.TrimSpace(line)) == 0 {
		return 0, 0, fmt.Errorf("line 1: missing header")
	}
	fields := bytes.Fields(line)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("line 1: header must have exactly 2 fields, got %d", len(fields))
	}
	numGates, err = strconv.Atoi(string(fields[0]))
	if err != nil || numGates < 0 {
		return 0, 0, fmt.Errorf("line 1: invalid gate count %q", fields[0])
	}
	numWires, err = strconv.Atoi(string(fields[1]))
	if err != nil || numWires < 0 {
		return 0, 0, fmt.Errorf("line 1: invalid wire count %q", fields[1])
	}
	return numGates, numWires, nil
}

func parseWireID(s string, numWires int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid wire id %q: %w", s, err)
	}
	if v < 0 || v >= numWires {
		return 0, fmt.Errorf("wire id %d out of range [0, %d)", v, numWires)
	}
	return v, nil
}

// parseUsageGateLine parses a gate line under the analyzer's generic
// grammar: "k_in k_out w_in1 ... w_in{k_in} w_out1 ... w_out{k_out}
// KIND", for any non-negative k_in/k_out and any KIND token. The
// analyzer only cares that every referenced wire id is in range and
// that the token count matches k_in/k_out exactly; gate shape and kind
// are not otherwise validated at this stage.
func parseUsageGateLine(line []byte, numWires int) (inputs, outputs []int, err error) {
	if len(bytes.TrimSpace(line)) == 0 {
		return nil, nil, fmt.Errorf("empty gate line")
	}
	fields := bytes.Fields(line)
	if len(fields) < 2 {
		return nil, nil, fmt.Errorf("expected at least k_in and k_out fields, got %d", len(fields))
	}
	kIn, err := strconv.Atoi(string(fields[0]))
	if err != nil || kIn < 0 {
		return nil, nil, fmt.Errorf("invalid k_in %q", fields[0])
	}
	kOut, err := strconv.Atoi(string(fields[1]))
	if err != nil || kOut < 0 {
		return nil, nil, fmt.Errorf("invalid k_out %q", fields[1])
	}
	want := 2 + kIn + kOut + 1
	if len(fields) != want {
		return nil, nil, fmt.Errorf("expected %d fields for k_in=%d k_out=%d, got %d",
			want, kIn, kOut, len(fields))
	}

	inputs = make([]int, kIn)
	for i := 0; i < kIn; i++ {
		v, err := parseWireID(string(fields[2+i]), numWires)
		if err != nil {
			return nil, nil, err
		}
		inputs[i] = v
	}
	outputs = make([]int, kOut)
	for i := 0; i < kOut; i++ {
		v, err := parseWireID(string(fields[2+kIn+i]), numWires)
		if err != nil {
			return nil, nil, err
		}
		outputs[i] = v
	}
	return inputs, outputs, nil
}

// parseStrictGateLine parses a gate line under the core's gate grammar:
// "2 1 in0 in1 out KIND" with KIND one of XOR or AND. Every other
// shape - any arity but two inputs and one output, or any kind but XOR
// and AND - is rejected. This is the grammar the garbler, evaluator,
// and ParseCircuit require.
func parseStrictGateLine(line []byte, numWires int) (Gate, error) {
	if len(bytes.TrimSpace(line)) == 0 {
		return Gate{}, fmt.Errorf("empty gate line")
	}
	fields := bytes.Fields(line)
	if len(fields) < 2 {
		return Gate{}, fmt.Errorf("expected at least k_in and k_out fields, got %d", len(fields))
	}
	kIn, err := strconv.Atoi(string(fields[0]))
	if err != nil {
		return Gate{}, fmt.Errorf("invalid k_in %q", fields[0])
	}
	kOut, err := strconv.Atoi(string(fields[1]))
	if err != nil {
		return Gate{}, fmt.Errorf("invalid k_out %q", fields[1])
	}
	if kIn != 2 || kOut != 1 {
		return Gate{}, fmt.Errorf("unsupported gate shape: %d inputs, %d outputs", kIn, kOut)
	}
	if len(fields) != 6 {
		return Gate{}, fmt.Errorf("expected 6 fields, got %d", len(fields))
	}

	in0, err := parseWireID(string(fields[2]), numWires)
	if err != nil {
		return Gate{}, err
	}
	in1, err := parseWireID(string(fields[3]), numWires)
	if err != nil {
		return Gate{}, err
	}
	out, err := parseWireID(string(fields[4]), numWires)
	if err != nil {
		return Gate{}, err
	}
	op, err := ParseOperation(string(fields[5]))
	if err != nil {
		return Gate{}, err
	}
	return Gate{Input0: Wire(in0), Input1: Wire(in1), Output: Wire(out), Op: op}, nil
}

// ParseCircuit reads a whole circuit file into memory. It is meant for
// tests and for the plain reference evaluator, which both want random
// access to the gate list; the streaming passes never call it.
func ParseCircuit(ls *LineStream) (*Circuit, error) {
	numGates, numWires, err := parseHeader(ls)
	if err != nil {
		return nil, err
	}

	gates := make([]Gate, 0, numGates)
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
		gates = append(gates, gate)
	}

	if len(gates) != numGates {
		return nil, fmt.Errorf("gate count mismatch: header says %d, file has %d", numGates, len(gates))
	}

	return &Circuit{
		NumGates: numGates,
		NumWires: numWires,
		Gates:    gates,
	}, nil
}
