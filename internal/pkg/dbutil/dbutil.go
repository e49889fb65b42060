package dbutil

import (
	"github.com/jmoiron/sqlx"
)

// Finalize converts the '?' placeholders produced by gendry into the
// '$n' form postgres expects.
func Finalize(query string, args []interface{}) (string, []interface{}) {
	return sqlx.Rebind(sqlx.DOLLAR, query), args
}
