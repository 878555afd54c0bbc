package sqlbench

import (
	"math"
	"sort"
	"time"
)

// AggregateResult is the statistical summary of a variant's surviving
// (non-failed) measurements. Min <= Avg <= Max holds whenever SampleCount
// is positive. When every measurement failed, AllFailed is set and the
// numeric fields are left at zero rather than computed.
type AggregateResult struct {
	VariantID   string
	SampleCount int
	Avg         float64 // nanoseconds
	Min         time.Duration
	Max         time.Duration
	Median      time.Duration
	P95         time.Duration
	AllFailed   bool
	Failures    int
	Timeouts    int
}

// Aggregate reduces a variant's measurements. Failed entries are filtered
// out before reducing; the sum accumulates in int64 nanoseconds, which is
// wide enough for any run this harness can produce.
func Aggregate(variantID string, measurements []Measurement) AggregateResult {
	res := AggregateResult{VariantID: variantID}

	durations := []float64{}

	var sum int64

	minDur := time.Duration(math.MaxInt64)
	maxDur := time.Duration(math.MinInt64)

	for _, m := range measurements {
		if m.Failed {
			res.Failures++

			if m.Kind == ErrorKindTimeout {
				res.Timeouts++
			}

			continue
		}

		res.SampleCount++
		sum += int64(m.Duration)

		if m.Duration < minDur {
			minDur = m.Duration
		}

		if m.Duration > maxDur {
			maxDur = m.Duration
		}

		durations = append(durations, float64(m.Duration))
	}

	if res.SampleCount == 0 {
		res.AllFailed = true

		return res
	}

	sort.Float64s(durations)

	res.Avg = float64(sum) / float64(res.SampleCount)
	res.Min = minDur
	res.Max = maxDur
	res.Median = time.Duration(percentile(durations, 50))
	res.P95 = time.Duration(percentile(durations, 95))

	return res
}

const (
	maxPercentile = 100
	minPercentile = 0
)

// percentile interpolates the p-th percentile over sorted data.
func percentile(data []float64, p float64) float64 {
	if p < minPercentile || p > maxPercentile {
		return math.NaN()
	}

	n := float64(len(data))

	if n == 0 {
		return math.NaN()
	}

	if n == 1 {
		return data[0]
	}

	rank := (p/100)*(n-1) + 1
	ri := float64(int64(rank))
	rf := rank - ri
	i := int(ri) - 1

	// an integral rank needs no interpolation; at p=100 rank is n and
	// data[i+1] would be out of range
	if rf == 0 {
		return data[i]
	}

	return data[i] + rf*(data[i+1]-data[i])
}
