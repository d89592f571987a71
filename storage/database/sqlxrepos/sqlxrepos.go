// Package sqlxrepos implements the core repositories on PostgreSQL with sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/geeky-hamster/Quizme/core"
)

// conditions accumulates `AND`-ed WHERE clauses with their positional args.
type conditions struct {
	clauses []string
	args    []interface{}
}

// add appends a clause in which every `?` stands for `arg`.
func (c *conditions) add(clause string, arg interface{}) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, strings.ReplaceAll(clause, "?", fmt.Sprintf("$%d", len(c.args))))
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// limit appends a LIMIT clause when n > 0.
func (c *conditions) limit(n int) string {
	if n <= 0 {
		return ""
	}
	c.args = append(c.args, n)
	return fmt.Sprintf(" LIMIT $%d", len(c.args))
}

// orderBy renders already whitelisted orderings, falling back to `def`.
func orderBy(orderings []core.DBOrdering, def string) string {
	if len(orderings) == 0 {
		return " ORDER BY " + def
	}
	parts := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		parts = append(parts, ord.String())
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// checkAffected turns an update or delete that touched no row into `notFound`.
func checkAffected(res sql.Result, err error, notFound error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func get(ctx context.Context, db *sqlx.DB, dst interface{}, notFound error, query string, args ...interface{}) error {
	err := db.GetContext(ctx, dst, query, args...)
	if err == sql.ErrNoRows {
		return notFound
	}
	return err
}
