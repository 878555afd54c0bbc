package sqlbench_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchkit/sqlbench"
)

func measurementsFromMillis(variantID string, millis []int, failed ...int) []sqlbench.Measurement {
	failedSet := map[int]bool{}
	for _, i := range failed {
		failedSet[i] = true
	}

	out := make([]sqlbench.Measurement, 0, len(millis))

	for i, ms := range millis {
		m := sqlbench.Measurement{
			VariantID: variantID,
			Sequence:  i,
			Duration:  time.Duration(ms) * time.Millisecond,
		}

		if failedSet[i] {
			m.Failed = true
			m.Kind = sqlbench.ErrorKindExecution
			m.Duration = 0
		}

		out = append(out, m)
	}

	return out
}

func TestAggregateKnownValues(t *testing.T) {
	measurements := measurementsFromMillis("lateral", []int{10, 20, 30, 0, 0}, 3, 4)

	res := sqlbench.Aggregate("lateral", measurements)

	assert.Equal(t, "lateral", res.VariantID)
	assert.Equal(t, 3, res.SampleCount)
	assert.Equal(t, 2, res.Failures)
	assert.False(t, res.AllFailed)

	assert.InDelta(t, float64(20*time.Millisecond), res.Avg, 1)
	assert.Equal(t, 10*time.Millisecond, res.Min)
	assert.Equal(t, 30*time.Millisecond, res.Max)
	assert.Equal(t, 20*time.Millisecond, res.Median)
	assert.Equal(t, 29*time.Millisecond, res.P95)
}

func TestAggregateSingleSample(t *testing.T) {
	res := sqlbench.Aggregate("window", measurementsFromMillis("window", []int{42}))

	assert.Equal(t, 1, res.SampleCount)
	assert.Equal(t, 42*time.Millisecond, res.Min)
	assert.Equal(t, 42*time.Millisecond, res.Max)
	assert.Equal(t, 42*time.Millisecond, res.Median)
	assert.InDelta(t, float64(42*time.Millisecond), res.Avg, 1)
}

func TestAggregateBoundsHoldForRandomDurations(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 200; trial++ {
		n := rng.Intn(50) + 1
		measurements := make([]sqlbench.Measurement, n)

		for i := range measurements {
			measurements[i] = sqlbench.Measurement{
				VariantID: "v",
				Sequence:  i,
				Duration:  time.Duration(rng.Int63n(int64(10 * time.Second))),
			}
		}

		res := sqlbench.Aggregate("v", measurements)

		require.Equal(t, n, res.SampleCount)
		require.LessOrEqual(t, float64(res.Min), res.Avg)
		require.LessOrEqual(t, res.Avg, float64(res.Max))
	}
}

func TestAggregateAllFailed(t *testing.T) {
	measurements := []sqlbench.Measurement{
		{VariantID: "correlated", Sequence: 0, Failed: true, Kind: sqlbench.ErrorKindTimeout},
		{VariantID: "correlated", Sequence: 1, Failed: true, Kind: sqlbench.ErrorKindTimeout},
		{VariantID: "correlated", Sequence: 2, Failed: true, Kind: sqlbench.ErrorKindExecution},
	}

	res := sqlbench.Aggregate("correlated", measurements)

	assert.True(t, res.AllFailed)
	assert.Equal(t, 0, res.SampleCount)
	assert.Equal(t, 3, res.Failures)
	assert.Equal(t, 2, res.Timeouts)
	assert.Zero(t, res.Avg)
	assert.Zero(t, res.Min)
	assert.Zero(t, res.Max)
}

func TestAggregateEmptyInput(t *testing.T) {
	res := sqlbench.Aggregate("lateral", nil)

	assert.True(t, res.AllFailed)
	assert.Equal(t, 0, res.SampleCount)
}
