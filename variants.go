package sqlbench

// The stock variants are three strategies for the same question: for each
// salesperson, the largest sale and the customer who made it. The first
// two are the forms the MySQL reference manual recommends; the correlated
// subquery is its documented counterexample, kept here as the baseline to
// beat. See https://dev.mysql.com/doc/refman/9.5/en/lateral-derived-tables.html

const lateralSQL = `
SELECT
  salesperson.name,
  max_sale.amount,
  max_sale.customer_name
FROM
  salesperson,
  LATERAL
  (SELECT amount, customer_name
    FROM all_sales
    WHERE all_sales.salesperson_id = salesperson.id
    ORDER BY amount DESC LIMIT 1)
  AS max_sale
`

const windowSQL = `
SELECT
    s.name,
    ranked.amount,
    ranked.customer_name
FROM salesperson s
JOIN (
    SELECT
        salesperson_id,
        amount,
        customer_name,
        ROW_NUMBER() OVER (PARTITION BY salesperson_id ORDER BY amount DESC) AS rn
    FROM all_sales
) ranked ON s.id = ranked.salesperson_id AND ranked.rn = 1
`

const correlatedSQL = `
SELECT
  salesperson.name,
  (SELECT MAX(amount) AS amount
    FROM all_sales
    WHERE all_sales.salesperson_id = salesperson.id)
  AS amount,
  (SELECT customer_name
    FROM all_sales
    WHERE all_sales.salesperson_id = salesperson.id
    AND all_sales.amount =
         (SELECT MAX(amount) AS amount
           FROM all_sales
           WHERE all_sales.salesperson_id = salesperson.id))
  AS customer_name
FROM salesperson
`

func DefaultVariants() []QueryVariant {
	return []QueryVariant{
		{ID: "lateral", DisplayName: "LATERAL derived table", Statement: lateralSQL},
		{ID: "window", DisplayName: "ROW_NUMBER window function", Statement: windowSQL},
		{ID: "correlated", DisplayName: "correlated subquery", Statement: correlatedSQL},
	}
}
