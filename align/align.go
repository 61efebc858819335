package align

// negInf is a large negative sentinel used in place of -infinity; it must
// stay far enough from zero that two gap penalties can be subtracted from
// it without overflowing int32.
const negInf = int32(-(1 << 28))

// Result is the outcome of a score-only semi-global alignment.
type Result struct {
	// Score is the raw (unnormalized) alignment score.
	Score int32
	// QueryEnd is the number of reference (read window) bases consumed
	// by the alignment — a half-open trim boundary into reference, not
	// an inclusive index.
	QueryEnd int
}

// StatsResult additionally reports the number of matching bases and the
// alignment length, at the cost of a full traceback. Used where the
// caller needs an identity fraction rather than just a score.
type StatsResult struct {
	Result
	Matches int
	Length  int
}

// Align performs semi-global pairwise alignment of template against
// reference with affine gap penalties. Gaps at the beginning and end of
// template are free: the read window's overhang before the template
// starts and after it ends costs nothing. Reference (the read window)
// has no such exemption — every reference base that is skipped in the
// interior of the alignment is charged the usual affine gap cost. This
// is what lets a short adapter template be located anywhere inside a
// longer read window.
//
// This is the hottest function in the package; see align_amd64.go and
// align_generic.go for the dispatch seam.
func Align(template, reference []byte, m *Matrix, gapOpen, gapExtend int32) Result {
	score, end := alignScore(template, reference, m, gapOpen, gapExtend)
	return Result{Score: score, QueryEnd: end}
}

// AlignStats performs the same alignment as Align, but additionally
// returns the number of aligned columns that were exact matches and the
// total number of aligned columns (the alignment length). It always
// runs the scalar, traceback-capable implementation: it is used for
// per-candidate barcode identity checks, not the inner scanning loop.
func AlignStats(template, reference []byte, m *Matrix, gapOpen, gapExtend int32) StatsResult {
	rows, cols := len(template), len(reference)
	if rows == 0 {
		return StatsResult{Result: Result{Score: 0, QueryEnd: 0}}
	}

	type cell struct {
		h, v, f int32
	}
	// dp[i][j] mirrors the recurrence in alignScore, but kept in full
	// (not rolled) so traceback can recover the path.
	dp := make([][]cell, rows+1)
	for i := range dp {
		dp[i] = make([]cell, cols+1)
	}
	for j := 0; j <= cols; j++ {
		dp[0][j] = cell{h: 0, v: negInf, f: negInf}
	}
	for i := 1; i <= rows; i++ {
		dp[i][0] = cell{}
		v := max32(dp[i-1][0].h-gapOpen, dp[i-1][0].v-gapExtend)
		dp[i][0] = cell{h: v, v: v, f: negInf}
		for j := 1; j <= cols; j++ {
			diag := dp[i-1][j-1].h + m.Score(template[i-1], reference[j-1])
			v := max32(dp[i-1][j].h-gapOpen, dp[i-1][j].v-gapExtend)
			f := max32(dp[i][j-1].h-gapOpen, dp[i][j-1].f-gapExtend)
			dp[i][j] = cell{h: max32(diag, v, f), v: v, f: f}
		}
	}

	bestJ := 0
	best := dp[rows][0].h
	for j := 1; j <= cols; j++ {
		if dp[rows][j].h > best {
			best = dp[rows][j].h
			bestJ = j
		}
	}

	// Traceback from (rows, bestJ) to row 0, counting matched columns
	// (diagonal moves where the two bytes are identical) and total
	// aligned columns.
	matches, length := 0, 0
	i, j := rows, bestJ
	for i > 0 {
		cur := dp[i][j]
		switch {
		case j > 0 && cur.h == dp[i-1][j-1].h+m.Score(template[i-1], reference[j-1]):
			if template[i-1] == reference[j-1] {
				matches++
			}
			length++
			i--
			j--
		case cur.h == cur.v:
			length++
			i--
		default:
			length++
			j--
		}
	}

	return StatsResult{
		Result:  Result{Score: best, QueryEnd: bestJ},
		Matches: matches,
		Length:  length,
	}
}

func max32(vs ...int32) int32 {
	best := vs[0]
	for _, v := range vs[1:] {
		if v > best {
			best = v
		}
	}
	return best
}
