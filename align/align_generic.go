// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// +build !amd64 appengine

package align

// alignScore is the portable fallback. See align_amd64.go: on this
// repository's supported platforms it computes the identical result as
// the amd64 build, since no vector kernel exists yet.
func alignScore(template, reference []byte, m *Matrix, gapOpen, gapExtend int32) (int32, int) {
	return alignScorePortable(template, reference, m, gapOpen, gapExtend)
}
