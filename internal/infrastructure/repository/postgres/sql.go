package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const undefinedTableCode = "42P01"

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUndefinedTable(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == undefinedTableCode
}

// hintMissingSchema points at the migration tool when a table is absent.
func hintMissingSchema(err error) error {
	if isUndefinedTable(err) {
		return fmt.Errorf("%w (run `migration up` to create the schema)", err)
	}
	return err
}
