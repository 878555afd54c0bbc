package sqlbench

import "sort"

// RankedResult is an AggregateResult plus its slowdown relative to the
// winner, in percent. The winner's slowdown is 0.
type RankedResult struct {
	AggregateResult
	Slowdown float64
}

// ComparisonReport orders variants by average duration, ascending. Variants
// whose every execution failed are never ranked; they are listed in
// Unavailable so the report still accounts for every registered variant.
type ComparisonReport struct {
	Ranked      []RankedResult
	Unavailable []AggregateResult
}

// Compare ranks results ascending by average duration, ties broken by
// variant id for determinism. Slowdown is (avg/winnerAvg - 1) * 100. A
// winner average below one nanosecond is clamped to one tick so the ratio
// stays defined.
func Compare(results []AggregateResult) ComparisonReport {
	report := ComparisonReport{}

	ranked := []AggregateResult{}

	for _, r := range results {
		if r.AllFailed {
			report.Unavailable = append(report.Unavailable, r)

			continue
		}

		ranked = append(ranked, r)
	}

	sort.SliceStable(report.Unavailable, func(i, j int) bool {
		return report.Unavailable[i].VariantID < report.Unavailable[j].VariantID
	})

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Avg != ranked[j].Avg {
			return ranked[i].Avg < ranked[j].Avg
		}

		return ranked[i].VariantID < ranked[j].VariantID
	})

	if len(ranked) == 0 {
		return report
	}

	winnerAvg := ranked[0].Avg
	if winnerAvg < 1 {
		winnerAvg = 1
	}

	for _, r := range ranked {
		slowdown := (r.Avg/winnerAvg - 1) * 100
		if slowdown < 0 {
			slowdown = 0
		}

		report.Ranked = append(report.Ranked, RankedResult{
			AggregateResult: r,
			Slowdown:        slowdown,
		})
	}

	return report
}
