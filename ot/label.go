//
// label.go
//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

// Package ot implements the wire-label algebra and the oblivious-transfer
// stand-in used by the garbled-circuit core: 128-bit labels, the
// deterministic label stream keyed from a 32-byte seed, the garbling hash,
// and the input selector that picks one label per primary input wire in
// place of a real OT exchange.
package ot

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Label implements a 128 bit wire label. Only the label for wire value 0
// is ever stored; the label for value 1 is L0 XOR the circuit's global
// offset Delta.
type Label struct {
	D0 uint64
	D1 uint64
}

// LabelData contains label data as a byte array.
type LabelData [16]byte

func (l Label) String() string {
	return fmt.Sprintf("%016x%016x", l.D0, l.D1)
}

// Equal tests if the labels are equal.
func (l Label) Equal(o Label) bool {
	return l.D0 == o.D0 && l.D1 == o.D1
}

// NewLabel creates a new random label from rand.
func NewLabel(rand io.Reader) (Label, error) {
	var buf LabelData
	var label Label

	if _, err := rand.Read(buf[:]); err != nil {
		return label, err
	}
	label.SetData(&buf)
	return label, nil
}

// Xor xors the label with the argument label.
func (l *Label) Xor(o Label) {
	l.D0 ^= o.D0
	l.D1 ^= o.D1
}

// Xored returns a new label holding l XOR o, leaving l unchanged.
func (l Label) Xored(o Label) Label {
	l.Xor(o)
	return l
}

// GetData gets the label as label data.
func (l Label) GetData(buf *LabelData) {
	binary.BigEndian.PutUint64(buf[0:8], l.D0)
	binary.BigEndian.PutUint64(buf[8:16], l.D1)
}

// SetData sets the label from label data.
func (l *Label) SetData(data *LabelData) {
	l.D0 = binary.BigEndian.Uint64(data[0:8])
	l.D1 = binary.BigEndian.Uint64(data[8:16])
}

// Bytes returns the label data as bytes, using buf as scratch space.
func (l Label) Bytes(buf *LabelData) []byte {
	l.GetData(buf)
	return buf[:]
}

// SetBytes sets the label from a 16-byte slice.
func (l *Label) SetBytes(data []byte) error {
	if len(data) != 16 {
		return fmt.Errorf("ot: label data must be 16 bytes, got %d", len(data))
	}
	var buf LabelData
	copy(buf[:], data)
	l.SetData(&buf)
	return nil
}
