package db

import (
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgtype"
)

// Numeric converts a float into a pgtype.Numeric query argument.
func Numeric(f float64) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(strconv.FormatFloat(f, 'f', -1, 64)); err != nil {
		return n, fmt.Errorf("platform/db: numeric from %v: %w", f, err)
	}
	return n, nil
}
