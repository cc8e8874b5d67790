package postgres

import (
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// scanSums lee filas (part_id, suma) en out.
func scanSums(rows pgx.Rows, out map[string]decimal.Decimal) error {
	for rows.Next() {
		var id string
		var sum decimal.Decimal
		if err := rows.Scan(&id, &sum); err != nil {
			return err
		}
		out[id] = sum
	}
	return rows.Err()
}

// scanIDs lee una columna de ids.
func scanIDs(rows pgx.Rows) ([]string, error) {
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
