//
// selected_test.go
//
// Copyright (c) 2024 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"io"
	"strings"
	"testing"
)

func TestSelectedJSONRoundTrip(t *testing.T) {
	orig := map[uint32]Selected{
		0: {Label: Label{D0: 1, D1: 2}, Bit: true},
		1: {Label: Label{D0: 3, D1: 4}, Bit: false},
		7: {Label: Label{D0: 0xdead, D1: 0xbeef}, Bit: true},
	}

	pr, pw := io.Pipe()
	go func() {
		if err := EncodeSelected(pw, orig); err != nil {
			t.Errorf("EncodeSelected failed: %v", err)
		}
		pw.Close()
	}()

	got, err := DecodeSelected(pr)
	if err != nil {
		t.Fatalf("DecodeSelected failed: %v", err)
	}

	if len(got) != len(orig) {
		t.Fatalf("wire count mismatch: got %d, want %d", len(got), len(orig))
	}
	for w, sel := range orig {
		gotSel, ok := got[w]
		if !ok {
			t.Fatalf("wire %d missing after round trip", w)
		}
		if gotSel.Bit != sel.Bit || !gotSel.Label.Equal(sel.Label) {
			t.Fatalf("wire %d mismatch: got %+v, want %+v", w, gotSel, sel)
		}
	}
}

func TestDecodeSelectedEmptyDocument(t *testing.T) {
	got, err := DecodeSelected(strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("DecodeSelected failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty map, got %+v", got)
	}
}
