// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

package quality

// Delta is the change in one score between two assessments.
type Delta struct {
	Delta float64 `json:"delta"`
	// PercentChange is delta relative to the previous score, 0 when the
	// previous score was 0.
	PercentChange float64 `json:"percent_change"`
	Improvement   bool    `json:"improvement"`
}

// Comparison is the pairwise diff between a current and a previous report.
type Comparison struct {
	Overall    Delta               `json:"overall"`
	Dimensions map[Dimension]Delta `json:"dimensions"`
}

func makeDelta(current, previous float64) Delta {
	d := current - previous
	pct := 0.0
	if previous != 0 {
		pct = d / previous * 100
	}
	return Delta{
		Delta:         d,
		PercentChange: pct,
		Improvement:   d > 0,
	}
}

// Compare diffs the current report against the previous one, overall and
// per dimension. Dimensions present in only one report are diffed against
// an implicit 0 so regressions to or from a missing score stay visible.
func Compare(current, previous *Report) Comparison {
	dims := make(map[Dimension]Delta)
	for _, dim := range DimensionOrder {
		cur, curOK := current.DimensionScores[dim]
		prev, prevOK := previous.DimensionScores[dim]
		if !curOK && !prevOK {
			continue
		}
		dims[dim] = makeDelta(cur.Score, prev.Score)
	}

	return Comparison{
		Overall:    makeDelta(current.OverallScore, previous.OverallScore),
		Dimensions: dims,
	}
}
