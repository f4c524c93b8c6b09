package handler

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// dateLayout is the wire format for all date path params and payload fields.
const dateLayout = "2006-01-02"

// parseDate parses a YYYY-MM-DD string into a UTC midnight time.
func parseDate(raw string) (time.Time, error) {
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
