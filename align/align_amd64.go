// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// +build amd64,!appengine

package align

// alignScore computes the semi-global affine-gap alignment score and
// template-end column using a rolling pair of rows, so memory use is
// O(len(reference)) rather than O(len(template)*len(reference)).
//
// This file and align_generic.go are kept as separate, architecture-
// tagged implementations to preserve the same dispatch seam biosimd
// used for its packed-sequence primitives. Unlike biosimd, this
// implementation has no hand-written SSE/AVX kernel underneath it: the
// scoring recurrence here is the same portable Go on both build tags.
// A vectorized kernel belongs here eventually (one row of the score-only
// recurrence is a textbook target for SIMD), but none is implemented.
func alignScore(template, reference []byte, m *Matrix, gapOpen, gapExtend int32) (int32, int) {
	return alignScorePortable(template, reference, m, gapOpen, gapExtend)
}
