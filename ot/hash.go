//
// hash.go
//
// Copyright (c) 2024 Markku Rossi
//
// All rights reserved.
//

package ot

import "crypto/sha256"

// Hash computes the garbling pseudo-random function H used to derive a
// one-time pad from a gate's input labels. It is the first 16 bytes of
// SHA-256 over the concatenation of the input labels' raw bytes, in the
// order given. No gate index or other tweak is mixed in: garbling the
// same pair of labels always yields the same pad, regardless of which
// gate they happen to appear in.
func Hash(labels ...Label) Label {
	h := sha256.New()
	var buf LabelData
	for _, l := range labels {
		h.Write(l.Bytes(&buf))
	}
	sum := h.Sum(nil)

	var out Label
	// sum is 32 bytes; SetBytes only ever errors on wrong length, and
	// sum[:16] is always exactly 16 bytes.
	_ = out.SetBytes(sum[:16])
	return out
}
