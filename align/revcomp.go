// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package align

// revCompTable maps each ASCII byte to its complement, extended beyond
// biosimd's {A,C,G,T,N} to also pass X (modified-base wildcard) and
// lowercase bases through sensibly, since read windows and adapter
// templates in this package are not pre-validated to be uppercase-only.
var revCompTable = buildRevCompTable()

func buildRevCompTable() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = 'N'
	}
	pairs := map[byte]byte{
		'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C',
		'a': 't', 't': 'a', 'c': 'g', 'g': 'c',
		'N': 'N', 'n': 'n', 'X': 'X', 'x': 'x',
	}
	for a, b := range pairs {
		t[a] = b
	}
	return t
}

// ReverseComplement returns the reverse complement of seq, leaving seq
// itself unmodified.
func ReverseComplement(seq []byte) []byte {
	out := make([]byte, len(seq))
	n := len(seq)
	for i, b := range seq {
		out[n-1-i] = revCompTable[b]
	}
	return out
}

// ReverseComplementInplace reverse-complements seq in place.
func ReverseComplementInplace(seq []byte) {
	n := len(seq)
	half := n / 2
	for i, j := 0, n-1; i != half; i, j = i+1, j-1 {
		seq[i], seq[j] = revCompTable[seq[j]], revCompTable[seq[i]]
	}
	if n&1 == 1 {
		seq[half] = revCompTable[seq[half]]
	}
}
