//
// marshal.go
//
// Copyright (c) 2020-2024 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"fmt"
	"io"

	"github.com/alpenlabs/garbled-circuits/ot"
)

// andTableSize is the size in bytes of one marshaled AND table: four
// 128-bit ciphertexts, no header, no framing.
const andTableSize = 4 * 16

// WriteTables writes tables as a flat concatenation of 64-byte
// records, one per AND gate, in gate-appearance order.
func WriteTables(w io.Writer, tables []ANDTable) error {
	var buf ot.LabelData
	for _, table := range tables {
		for _, l := range table {
			if _, err := w.Write(l.Bytes(&buf)); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadTables reads back the binary AND-table format produced by
// WriteTables.
func ReadTables(r io.Reader) ([]ANDTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data)%andTableSize != 0 {
		return nil, fmt.Errorf("and-table file size %d is not a multiple of %d", len(data), andTableSize)
	}

	n := len(data) / andTableSize
	tables := make([]ANDTable, n)
	for i := 0; i < n; i++ {
		rec := data[i*andTableSize : (i+1)*andTableSize]
		for j := 0; j < 4; j++ {
			var l ot.Label
			if err := l.SetBytes(rec[j*16 : (j+1)*16]); err != nil {
				return nil, fmt.Errorf("and-table record %d row %d: %w", i, j, err)
			}
			tables[i][j] = l
		}
	}
	return tables, nil
}
