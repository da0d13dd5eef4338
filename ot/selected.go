//
// selected.go
//
// Copyright (c) 2024 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"encoding/json"
	"fmt"
	"io"
)

// EncodeSelected writes a mapping from wire id to its selected (label,
// bit) pair as JSON. The same format serves both external interfaces
// built on map[uint32]Selected: the selected-inputs file a garbler
// hands an evaluator (primary-input wire id to pair) and the
// evaluation-result file an evaluator hands back (primary-output wire
// id to pair).
func EncodeSelected(w io.Writer, selected map[uint32]Selected) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(selected)
}

// DecodeSelected reads back a document written by EncodeSelected.
func DecodeSelected(r io.Reader) (map[uint32]Selected, error) {
	var m map[uint32]Selected
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("ot: decoding selected-inputs document: %w", err)
	}
	if m == nil {
		m = map[uint32]Selected{}
	}
	return m, nil
}
