package sqlbench

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrorKind classifies why an execution failed. Timeouts are tagged
// separately so a report can tell "statement failed" from "statement too
// slow to finish".
type ErrorKind string

const (
	ErrorKindNone      ErrorKind = ""
	ErrorKindExecution ErrorKind = "execution"
	ErrorKindTimeout   ErrorKind = "timeout"
)

// Measurement is one timed execution of a variant. A failed execution is
// data, not control flow: it stays in the sequence with Failed set and is
// filtered out at aggregation time.
type Measurement struct {
	VariantID string
	Sequence  int
	Duration  time.Duration
	Rows      int
	Failed    bool
	Kind      ErrorKind
}

// Querier is the shared connection handle the engine drives. *sql.DB
// satisfies it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

var (
	ErrMeasuredCount = errors.New("measured count must be at least 1")
	ErrWarmupCount   = errors.New("warmup count must not be negative")
)

// Engine runs variants against a single shared handle. All executions are
// issued sequentially and synchronously: per-statement latency is the
// object under study, and concurrent execution would contend for the very
// resources being measured.
type Engine struct {
	db  Querier
	log logrus.FieldLogger
}

func NewEngine(db Querier, log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Engine{db: db, log: log}
}

// Run executes one variant warmup+measured times back to back and returns
// the measured samples. See RunInterleaved for the semantics; Run is the
// block-sequential mode.
func (e *Engine) Run(ctx context.Context, v QueryVariant, warmup, measured int, timeout time.Duration) ([]Measurement, error) {
	byVariant, err := e.RunInterleaved(ctx, []QueryVariant{v}, warmup, measured, timeout)

	return byVariant[v.ID], err
}

// RunInterleaved executes every variant exactly warmup+measured times,
// round-robin across variants so no variant benefits from the buffer-pool
// state its predecessor left behind. The first warmup rounds are run and
// fully consumed but not recorded. Each measured execution is timed with
// the monotonic clock from statement dispatch to full result-set
// consumption and appended as a Measurement, Sequence starting at 0 per
// variant.
//
// Failures never abort the run; they are recorded with Failed set. If ctx
// is cancelled, RunInterleaved stops before the next execution and returns
// what was collected so far together with ctx.Err().
func (e *Engine) RunInterleaved(ctx context.Context, variants []QueryVariant, warmup, measured int, timeout time.Duration) (map[string][]Measurement, error) {
	if measured < 1 {
		return nil, ErrMeasuredCount
	}

	if warmup < 0 {
		return nil, ErrWarmupCount
	}

	byVariant := make(map[string][]Measurement, len(variants))
	for _, v := range variants {
		byVariant[v.ID] = []Measurement{}
	}

	rounds := warmup + measured
	for round := 0; round < rounds; round++ {
		for _, v := range variants {
			if err := ctx.Err(); err != nil {
				return byVariant, err
			}

			elapsed, rows, err := e.execute(ctx, v.Statement, timeout)

			if round < warmup {
				if err != nil {
					e.log.WithFields(logrus.Fields{
						"variant": v.ID,
						"round":   round,
					}).WithError(err).Warn("warmup execution failed")
				}

				continue
			}

			m := Measurement{
				VariantID: v.ID,
				Sequence:  round - warmup,
				Duration:  elapsed,
				Rows:      rows,
			}

			if err != nil {
				// An execution aborted by benchmark cancellation is not a
				// sample; stop here and hand back what we have.
				if ctx.Err() != nil {
					return byVariant, ctx.Err()
				}

				m.Failed = true
				m.Kind = classify(err)
				m.Rows = 0

				e.log.WithFields(logrus.Fields{
					"variant":  v.ID,
					"sequence": m.Sequence,
					"kind":     m.Kind,
				}).WithError(err).Warn("execution failed")
			}

			byVariant[v.ID] = append(byVariant[v.ID], m)
		}
	}

	return byVariant, nil
}

// execute dispatches the statement and drains the result set; the clock
// only stops once every row has been consumed, since the variants differ
// in row-count shape. timeout bounds this single execution.
func (e *Engine) execute(ctx context.Context, statement string, timeout time.Duration) (time.Duration, int, error) {
	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()

	rows, err := e.db.QueryContext(ctx, statement)
	if err != nil {
		return time.Since(start), 0, err
	}

	count := 0
	for rows.Next() {
		count++
	}

	err = rows.Err()
	if cerr := rows.Close(); err == nil {
		err = cerr
	}

	return time.Since(start), count, err
}

func classify(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorKindTimeout
	}

	return ErrorKindExecution
}
