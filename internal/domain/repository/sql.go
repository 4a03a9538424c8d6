package repository

import (
	"context"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"
)

// ext returns tx when one is given so callers can join a transaction.
func ext(db *sqlx.DB, tx *sqlx.Tx) sqlx.ExtContext {
	if tx != nil {
		return tx
	}
	return db
}

// insertReturningID runs an INSERT written with ? placeholders and returns
// the generated id. Postgres has no LastInsertId, so it uses RETURNING.
func insertReturningID(ctx context.Context, e sqlx.ExtContext, query string, args ...interface{}) (int64, error) {
	if e.DriverName() == "pgx" {
		var id int64
		if err := e.QueryRowxContext(ctx, e.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := e.ExecContext(ctx, e.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
