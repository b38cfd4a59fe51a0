package store

import (
	sq "github.com/Masterminds/squirrel"
)

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

// numeric binds a decimal string to a numeric column without a float round trip.
func numeric(v string) sq.Sqlizer {
	return sq.Expr("?::numeric", v)
}
