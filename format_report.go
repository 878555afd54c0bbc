package sqlbench

import (
	"fmt"
	"strings"
	"time"
)

const (
	rankedLineFmt      = "%s %-12s avg: %9.2fms  min: %9.2fms  max: %9.2fms  median: %9.2fms  samples: %d%s\n"
	unavailableLineFmt = "! %-12s unavailable (%d failed, %d timed out)\n"
)

// FormatReport renders the human-readable summary. It is derived from the
// same ComparisonReport value the JSON artifact is built from, so the two
// never disagree.
func FormatReport(report ComparisonReport) string {
	var b strings.Builder

	b.WriteString("#comparison (fastest first):\n")

	for i, r := range report.Ranked {
		marker := " "
		suffix := fmt.Sprintf("  +%.1f%%", r.Slowdown)

		if i == 0 {
			marker = "*"
			suffix = "  winner"
		}

		fmt.Fprintf(&b, rankedLineFmt,
			marker,
			r.VariantID,
			millis(r.Avg),
			durationMillis(r.Min),
			durationMillis(r.Max),
			durationMillis(r.Median),
			r.SampleCount,
			suffix,
		)
	}

	for _, r := range report.Unavailable {
		fmt.Fprintf(&b, unavailableLineFmt, r.VariantID, r.Failures, r.Timeouts)
	}

	return b.String()
}

func millis(nanos float64) float64 {
	return nanos / float64(time.Millisecond)
}

func durationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
