package sqlbench_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchkit/sqlbench"
)

func TestFormatReport(t *testing.T) {
	results := []sqlbench.AggregateResult{
		sqlbench.Aggregate("variant1", measurementsFromMillis("variant1", []int{10, 12, 11})),
		sqlbench.Aggregate("variant2", measurementsFromMillis("variant2", []int{9, 9, 9})),
		sqlbench.Aggregate("variant3", []sqlbench.Measurement{
			{VariantID: "variant3", Failed: true, Kind: sqlbench.ErrorKindTimeout},
		}),
	}

	out := sqlbench.FormatReport(sqlbench.Compare(results))

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)

	// winner first, marked; loser carries its slowdown; failed variant
	// is listed, never silently dropped
	assert.True(t, strings.HasPrefix(lines[1], "* variant2"), "got %q", lines[1])
	assert.Contains(t, lines[1], "winner")
	assert.True(t, strings.HasPrefix(lines[2], "  variant1"), "got %q", lines[2])
	assert.Contains(t, lines[2], "+22.2%")
	assert.True(t, strings.HasPrefix(lines[3], "! variant3"), "got %q", lines[3])
	assert.Contains(t, lines[3], "unavailable")
	assert.Contains(t, lines[3], "1 timed out")
}

func TestFormatReportEmpty(t *testing.T) {
	out := sqlbench.FormatReport(sqlbench.ComparisonReport{})
	assert.Equal(t, "#comparison (fastest first):\n", out)
}
