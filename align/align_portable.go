package align

// alignScorePortable implements the Gotoh affine-gap recurrence with two
// rolling rows. Row 0 (template not yet started) is initialized to zero
// across every column, so any leading overhang of reference before the
// template's match begins is free. The answer is the maximum value
// anywhere in the final row (template fully consumed), so any trailing
// overhang of reference after the template's match ends is free too.
// Reference itself gets no such exemption: a reference base skipped in
// the interior of the alignment is charged the ordinary affine cost via
// the f (insert-in-template) state.
func alignScorePortable(template, reference []byte, m *Matrix, gapOpen, gapExtend int32) (int32, int) {
	cols := len(reference)
	if len(template) == 0 {
		return 0, 0
	}
	if cols == 0 {
		return 0, 0
	}

	// h/v/f hold the three Gotoh states for the previous row; hCur/vCur/
	// fCur hold them for the row currently being computed.
	h := make([]int32, cols+1)
	v := make([]int32, cols+1)
	hCur := make([]int32, cols+1)
	vCur := make([]int32, cols+1)
	fCur := make([]int32, cols+1)

	for j := range h {
		h[j] = 0
		v[j] = negInf
	}

	var best int32
	var bestJ int
	for i := 1; i <= len(template); i++ {
		hCur[0] = 0
		vCur[0] = max32(h[0]-gapOpen, v[0]-gapExtend)
		hCur[0] = vCur[0]
		fCur[0] = negInf

		tb := template[i-1]
		for j := 1; j <= cols; j++ {
			diag := h[j-1] + m.Score(tb, reference[j-1])
			vCur[j] = max32(h[j]-gapOpen, v[j]-gapExtend)
			fCur[j] = max32(hCur[j-1]-gapOpen, fCur[j-1]-gapExtend)
			hCur[j] = max32(diag, vCur[j], fCur[j])
		}

		if i == len(template) {
			best = hCur[0]
			bestJ = 0
			for j := 1; j <= cols; j++ {
				if hCur[j] > best {
					best = hCur[j]
					bestJ = j
				}
			}
		}

		h, hCur = hCur, h
		v, vCur = vCur, v
	}

	return best, bestJ
}
