//
// stream.go
//
// Copyright (c) 2024 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"fmt"
	"sort"

	"golang.org/x/crypto/chacha20"
)

// Stream is a deterministic label generator. Given the same 32-byte seed,
// it produces the same sequence of labels and bits on every run, which
// lets a garbling run and a later verification run agree on Delta and on
// every primary-input label without exchanging them out of band.
//
// A Stream is not safe for concurrent use.
type Stream struct {
	cipher *chacha20.Cipher
	block  [64]byte
	pos    int
}

// NewStream creates a label stream keyed by seed. The nonce is fixed at
// zero: the seed alone determines the whole output sequence, which is
// exactly the reproducibility contract callers need.
func NewStream(seed [32]byte) (*Stream, error) {
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		return nil, fmt.Errorf("ot: creating label stream: %w", err)
	}
	s := &Stream{cipher: c}
	s.pos = len(s.block)
	return s, nil
}

// next returns the next n bytes of keystream. n must not exceed the
// internal block size.
func (s *Stream) next(n int) []byte {
	if s.pos+n > len(s.block) {
		var zero [64]byte
		s.cipher.XORKeyStream(s.block[:], zero[:])
		s.pos = 0
	}
	out := s.block[s.pos : s.pos+n]
	s.pos += n
	return out
}

// NextLabel draws the next 128-bit label from the stream.
func (s *Stream) NextLabel() (Label, error) {
	var l Label
	if err := l.SetBytes(s.next(16)); err != nil {
		return l, err
	}
	return l, nil
}

// NextBit draws the next pseudo-random bit from the stream.
func (s *Stream) NextBit() bool {
	b := s.next(1)[0]
	return b&1 == 1
}

// RandomBits draws one pseudo-random bit per wire id in wires, in
// ascending wire-id order, so that the result is independent of map
// iteration order and therefore reproducible.
func (s *Stream) RandomBits(wires []uint32) map[uint32]bool {
	sorted := append([]uint32(nil), wires...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	bits := make(map[uint32]bool, len(sorted))
	for _, w := range sorted {
		bits[w] = s.NextBit()
	}
	return bits
}
