//
// pipeline_test.go
//
// Copyright (c) 2024 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/alpenlabs/garbled-circuits/ot"
)

// runGarbled garbles data with seed, selects primary-input bits
// according to inputs, evaluates, and returns the output bit for every
// wire in report.PrimaryOutputWires alongside the garble result (so
// callers can inspect tables directly).
func runGarbled(t *testing.T, data string, seed [32]byte, inputs map[uint32]bool) (map[uint32]bool, *GarbleResult) {
	t.Helper()

	report, err := Analyze(NewLineStream(strings.NewReader(data)))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	gr, err := Garble(NewLineStream(strings.NewReader(data)), report, seed)
	if err != nil {
		t.Fatalf("Garble failed: %v", err)
	}

	selected, err := ot.SelectAll(gr.Labels.InputLabels, gr.Labels.Delta, inputs)
	if err != nil {
		t.Fatalf("SelectAll failed: %v", err)
	}

	outputs, err := Evaluate(NewLineStream(strings.NewReader(data)), report, selected, gr.Tables)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	bits := make(map[uint32]bool, len(outputs))
	for w, sel := range outputs {
		bits[w] = sel.Bit
	}
	return bits, gr
}

func TestEndToEndSingleXOR(t *testing.T) {
	data := "1 3\n2 1 0 1 2 XOR\n"
	var seed [32]byte

	bits, gr := runGarbled(t, data, seed, map[uint32]bool{0: true, 1: false})
	if !bits[2] {
		t.Fatalf("wire 2 = %v, want true", bits[2])
	}
	if len(gr.Tables) != 0 {
		t.Fatalf("expected 0 AND tables, got %d", len(gr.Tables))
	}
}

func TestEndToEndSingleAND(t *testing.T) {
	data := "1 3\n2 1 0 1 2 AND\n"
	var seed [32]byte

	bits, gr := runGarbled(t, data, seed, map[uint32]bool{0: true, 1: true})
	if !bits[2] {
		t.Fatalf("wire 2 = %v, want true", bits[2])
	}
	if len(gr.Tables) != 1 {
		t.Fatalf("expected 1 AND table, got %d", len(gr.Tables))
	}

	l1c := gr.Labels.OutputLabels[2]
	l1c.Xor(gr.Labels.Delta)

	a1 := gr.Labels.InputLabels[0]
	a1.Xor(gr.Labels.Delta)
	b1 := gr.Labels.InputLabels[1]
	b1.Xor(gr.Labels.Delta)

	key := ot.Hash(a1, b1)
	decrypted := gr.Tables[0][3] // row (1,1)
	decrypted.Xor(key)
	if !decrypted.Equal(l1c) {
		t.Fatalf("row (1,1) did not decrypt to L0[2] xor Delta")
	}
}

func TestEndToEndMixed(t *testing.T) {
	data := "3 6\n" +
		"2 1 0 1 2 XOR\n" +
		"2 1 2 3 4 XOR\n" +
		"2 1 2 4 5 AND\n"
	var seed [32]byte

	bits, gr := runGarbled(t, data, seed, map[uint32]bool{0: true, 1: false, 3: true})
	if bits[5] {
		t.Fatalf("wire 5 = %v, want false", bits[5])
	}
	if len(gr.Tables) != 1 {
		t.Fatalf("expected 1 AND table, got %d", len(gr.Tables))
	}
}

func TestEndToEndFourANDConjunction(t *testing.T) {
	// (0 AND 1) = 4; (2 AND 3) = 5; (4 AND 5) = 6.
	data := "3 7\n" +
		"2 1 0 1 4 AND\n" +
		"2 1 2 3 5 AND\n" +
		"2 1 4 5 6 AND\n"
	var seed [32]byte

	for pattern := 0; pattern < 16; pattern++ {
		inputs := map[uint32]bool{
			0: pattern&1 != 0,
			1: pattern&2 != 0,
			2: pattern&4 != 0,
			3: pattern&8 != 0,
		}
		bits, _ := runGarbled(t, data, seed, inputs)
		want := pattern == 15
		if bits[6] != want {
			t.Fatalf("pattern %04b: wire 6 = %v, want %v", pattern, bits[6], want)
		}

		plain, err := ParseCircuit(NewLineStream(strings.NewReader(data)))
		if err != nil {
			t.Fatalf("ParseCircuit failed: %v", err)
		}
		plainBits, err := ComputePlain(plain, inputs)
		if err != nil {
			t.Fatalf("ComputePlain failed: %v", err)
		}
		if plainBits[6] != want {
			t.Fatalf("pattern %04b: plain wire 6 = %v, want %v", pattern, plainBits[6], want)
		}
	}
}

func TestEndToEnd64BitAdder(t *testing.T) {
	const n = 64
	const sumBase = 440

	data, _ := buildAdder64(sumBase)

	var seed [32]byte
	seed[0] = 0x42

	rng := rand.New(rand.NewSource(1))

	check := func(a, b uint64) {
		inputs := make(map[uint32]bool, 2*n)
		for i := 0; i < n; i++ {
			inputs[uint32(i)] = (a>>uint(i))&1 == 1
			inputs[uint32(n+i)] = (b>>uint(i))&1 == 1
		}

		bits, _ := runGarbled(t, data, seed, inputs)

		plain, err := ParseCircuit(NewLineStream(strings.NewReader(data)))
		if err != nil {
			t.Fatalf("ParseCircuit failed: %v", err)
		}
		plainBits, err := ComputePlain(plain, inputs)
		if err != nil {
			t.Fatalf("ComputePlain failed: %v", err)
		}

		want := a + b
		for i := 0; i < n; i++ {
			w := uint32(sumBase + i)
			expectBit := (want>>uint(i))&1 == 1
			if bits[w] != expectBit {
				t.Fatalf("a=%d b=%d: garbled sum bit %d = %v, want %v", a, b, i, bits[w], expectBit)
			}
			if plainBits[w] != expectBit {
				t.Fatalf("a=%d b=%d: plain sum bit %d = %v, want %v", a, b, i, plainBits[w], expectBit)
			}
		}
	}

	check(0, 0)
	check(^uint64(0), 1)
	for i := 0; i < 10; i++ {
		check(rng.Uint64(), rng.Uint64())
	}
}

// buildAdder64 builds a 64-bit ripple-carry adder whose sum bits land
// exactly on wires [sumBase, sumBase+64). Internal scratch wires are
// allocated densely after the sum range so every wire id stays within
// num_wires and no scratch wire collides with a sum wire.
func buildAdder64(sumBase int) (string, int) {
	const n = 64
	next := sumBase + n
	alloc := func() int {
		w := next
		next++
		return w
	}

	var gates []string
	carry := -1 // -1 means "no carry into this bit" (bit 0)
	for i := 0; i < n; i++ {
		a := i
		bw := n + i
		sumWire := sumBase + i

		if carry < 0 {
			gates = append(gates, fmt.Sprintf("2 1 %d %d %d XOR", a, bw, sumWire))
			aandb := alloc()
			gates = append(gates, fmt.Sprintf("2 1 %d %d %d AND", a, bw, aandb))
			carry = aandb
			continue
		}

		axorb := alloc()
		gates = append(gates, fmt.Sprintf("2 1 %d %d %d XOR", a, bw, axorb))
		gates = append(gates, fmt.Sprintf("2 1 %d %d %d XOR", axorb, carry, sumWire))

		if i == n-1 {
			break
		}

		aandb := alloc()
		gates = append(gates, fmt.Sprintf("2 1 %d %d %d AND", a, bw, aandb))
		axorbANDcarry := alloc()
		gates = append(gates, fmt.Sprintf("2 1 %d %d %d AND", axorb, carry, axorbANDcarry))
		newCarry := alloc()
		gates = append(gates, fmt.Sprintf("2 1 %d %d %d XOR", aandb, axorbANDcarry, newCarry))
		carry = newCarry
	}

	numWires := next
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d %d\n", len(gates), numWires))
	for _, g := range gates {
		b.WriteString(g)
		b.WriteString("\n")
	}
	return b.String(), numWires
}

func TestDeterministicReseed(t *testing.T) {
	data := "3 6\n" +
		"2 1 0 1 2 XOR\n" +
		"2 1 2 3 4 AND\n" +
		"2 1 2 4 5 AND\n"

	var seed [32]byte
	for i := range seed {
		seed[i] = 0x42
	}

	report, err := Analyze(NewLineStream(strings.NewReader(data)))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	gr1, err := Garble(NewLineStream(strings.NewReader(data)), report, seed)
	if err != nil {
		t.Fatalf("Garble failed: %v", err)
	}
	gr2, err := Garble(NewLineStream(strings.NewReader(data)), report, seed)
	if err != nil {
		t.Fatalf("Garble failed: %v", err)
	}

	if !gr1.Labels.Delta.Equal(gr2.Labels.Delta) {
		t.Fatal("Delta differs across two runs with the same seed")
	}
	if len(gr1.Tables) != len(gr2.Tables) {
		t.Fatalf("table count differs: %d vs %d", len(gr1.Tables), len(gr2.Tables))
	}
	for i := range gr1.Tables {
		for j := 0; j < 4; j++ {
			if !gr1.Tables[i][j].Equal(gr2.Tables[i][j]) {
				t.Fatalf("table %d row %d differs across runs", i, j)
			}
		}
	}
}
