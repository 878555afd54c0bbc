package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Schema from the MySQL lateral derived table example: salespeople and
// their sales, with a composite index matching the per-salesperson
// max-amount probe every variant performs.
const (
	dropSalesSQL       = `DROP TABLE IF EXISTS all_sales`
	dropSalespersonSQL = `DROP TABLE IF EXISTS salesperson`

	createSalespersonSQL = `CREATE TABLE salesperson (
    id INT AUTO_INCREMENT PRIMARY KEY,
    name VARCHAR(100) NOT NULL
) ENGINE=InnoDB`

	createSalesSQL = `CREATE TABLE all_sales (
    id INT AUTO_INCREMENT PRIMARY KEY,
    salesperson_id INT NOT NULL,
    customer_name VARCHAR(100) NOT NULL,
    amount DECIMAL(10,2) NOT NULL,
    sale_date DATE NOT NULL,
    INDEX idx_salesperson (salesperson_id),
    INDEX idx_salesperson_amount (salesperson_id, amount DESC)
) ENGINE=InnoDB`

	analyzeSalespersonSQL = `ANALYZE TABLE salesperson`
	analyzeSalesSQL       = `ANALYZE TABLE all_sales`
)

const (
	// batchSize matches the flush cadence the dataset was originally
	// loaded with; larger batches start hitting max_allowed_packet.
	batchSize = 5000

	customerSpace  = 10000
	maxAmountCents = 5_000_000
	saleDate       = "2024-01-01"
)

// SaleRow is one synthetic sale. Amount is rendered as a DECIMAL(10,2)
// literal so no float ever touches the wire.
type SaleRow struct {
	SalespersonID int
	Customer      string
	Amount        string
	SaleDate      string
}

// GenerateSales produces the full deterministic row set for a seed. Row i
// belongs to salesperson (i % persons) + 1, spreading sales evenly the way
// the original dataset did. The same seed always yields the same rows, so
// a run can be repeated against identical data.
func GenerateSales(seed int64, persons, records int) []SaleRow {
	rng := rand.New(rand.NewSource(seed))
	rows := make([]SaleRow, records)

	for i := range rows {
		customer := rng.Intn(customerSpace)
		cents := rng.Int63n(maxAmountCents)

		rows[i] = SaleRow{
			SalespersonID: i%persons + 1,
			Customer:      fmt.Sprintf("Customer_%d", customer),
			Amount:        fmt.Sprintf("%d.%02d", cents/100, cents%100),
			SaleDate:      saleDate,
		}
	}

	return rows
}

// Generator populates the benchmark schema with reproducible synthetic
// rows. Generation happens outside the measured path, so batch inserts are
// fanned out over a small worker pool; the rows themselves are produced
// deterministically before fan-out, keeping content independent of insert
// order.
type Generator struct {
	Seed    int64
	Workers int
	Log     logrus.FieldLogger
}

// Populate drops and recreates the schema, then loads persons salespeople
// and records sales. Dropping first makes a repeat call land in the same
// state as the first one.
func (g *Generator) Populate(ctx context.Context, db *sql.DB, persons, records int) error {
	if persons < 1 {
		return fmt.Errorf("persons must be at least 1, got %d", persons)
	}

	if records < 0 {
		return fmt.Errorf("records must not be negative, got %d", records)
	}

	log := g.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	for _, stmt := range []string{dropSalesSQL, dropSalespersonSQL, createSalespersonSQL, createSalesSQL} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema setup: %w", err)
		}
	}

	if err := g.insertSalespeople(ctx, db, persons); err != nil {
		return fmt.Errorf("insert salespeople: %w", err)
	}

	if err := g.insertSales(ctx, db, persons, records); err != nil {
		return fmt.Errorf("insert sales: %w", err)
	}

	// refresh optimizer statistics so no variant pays for them mid-run
	for _, stmt := range []string{analyzeSalespersonSQL, analyzeSalesSQL} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("analyze: %w", err)
		}
	}

	log.WithFields(logrus.Fields{
		"persons": persons,
		"records": records,
		"seed":    g.Seed,
	}).Info("dataset ready")

	return nil
}

func (g *Generator) insertSalespeople(ctx context.Context, db *sql.DB, persons int) error {
	for offset := 0; offset < persons; offset += batchSize {
		n := persons - offset
		if n > batchSize {
			n = batchSize
		}

		var sb strings.Builder

		sb.WriteString("INSERT INTO salesperson (name) VALUES ")

		args := make([]any, 0, n)

		for i := 0; i < n; i++ {
			if i > 0 {
				sb.WriteString(", ")
			}

			sb.WriteString("(?)")
			args = append(args, fmt.Sprintf("Salesperson_%d", offset+i+1))
		}

		if _, err := db.ExecContext(ctx, sb.String(), args...); err != nil {
			return err
		}
	}

	return nil
}

type batch struct {
	stmt string
	args []any
}

func (g *Generator) insertSales(ctx context.Context, db *sql.DB, persons, records int) error {
	if records == 0 {
		return nil
	}

	workerCount := g.Workers
	if workerCount < 1 {
		workerCount = 1
	}

	rows := GenerateSales(g.Seed, persons, records)
	batches, errs := startLoaders(ctx, db, workerCount)

	var loadErr error

	done := make(chan struct{})

	go func() {
		for err := range errs {
			if err != nil && loadErr == nil {
				loadErr = err
			}
		}

		close(done)
	}()

	for offset := 0; offset < len(rows); offset += batchSize {
		end := offset + batchSize
		if end > len(rows) {
			end = len(rows)
		}

		stmt, args := buildSalesBatch(rows[offset:end])
		batches <- batch{stmt: stmt, args: args}
	}

	close(batches)
	<-done

	return loadErr
}

// startLoaders initializes insert workers and sets up channels.
func startLoaders(ctx context.Context, db *sql.DB, workerCount int) (chan batch, chan error) {
	batches := make(chan batch)
	errs := make(chan error)

	var wg sync.WaitGroup

	wg.Add(workerCount)

	for i := 0; i < workerCount; i++ {
		go func() {
			defer wg.Done()

			for b := range batches {
				_, err := db.ExecContext(ctx, b.stmt, b.args...)
				errs <- err
			}
		}()
	}

	// close error channel after every worker finishes
	go func() {
		wg.Wait()
		close(errs)
	}()

	return batches, errs
}

func buildSalesBatch(rows []SaleRow) (string, []any) {
	var sb strings.Builder

	sb.WriteString("INSERT INTO all_sales (salesperson_id, customer_name, amount, sale_date) VALUES ")

	args := make([]any, 0, len(rows)*4)

	for i, r := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString("(?, ?, ?, ?)")
		args = append(args, r.SalespersonID, r.Customer, r.Amount, r.SaleDate)
	}

	return sb.String(), args
}
