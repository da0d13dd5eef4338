package circuit

import (
	"bytes"
	"strings"
	"testing"
)

func TestTablesRoundTrip(t *testing.T) {
	data := "2 4\n2 1 0 1 2 AND\n2 1 0 2 3 XOR\n"
	var seed [32]byte

	report, err := Analyze(NewLineStream(strings.NewReader(data)))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	gr, err := Garble(NewLineStream(strings.NewReader(data)), report, seed)
	if err != nil {
		t.Fatalf("Garble failed: %v", err)
	}
	if len(gr.Tables) == 0 {
		t.Fatalf("expected at least one AND table")
	}

	var buf bytes.Buffer
	if err := WriteTables(&buf, gr.Tables); err != nil {
		t.Fatalf("WriteTables failed: %v", err)
	}

	got, err := ReadTables(&buf)
	if err != nil {
		t.Fatalf("ReadTables failed: %v", err)
	}

	if len(got) != len(gr.Tables) {
		t.Fatalf("table count mismatch: got %d, want %d", len(got), len(gr.Tables))
	}
	for i, table := range gr.Tables {
		for row := range table {
			if !got[i][row].Equal(table[row]) {
				t.Fatalf("table %d row %d mismatch: got %s, want %s", i, row, got[i][row], table[row])
			}
		}
	}
}

func TestReadTablesRejectsTruncatedInput(t *testing.T) {
	_, err := ReadTables(strings.NewReader("not a multiple of the record size"))
	if err == nil {
		t.Fatalf("expected error for malformed and-table input")
	}
}
