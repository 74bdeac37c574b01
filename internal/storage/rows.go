// ABOUTME: Shared SQL helpers for predicate building and batched row delivery.
// ABOUTME: Translates query.Predicate and query.Sort into WHERE and ORDER BY clauses.
package storage

import (
	"context"
	"database/sql"
	"strings"

	"github.com/harperreed/pace/internal/query"
)

// clause accumulates WHERE conditions and their arguments.
type clause struct {
	conds []string
	args  []any
}

func (c *clause) add(cond string, args ...any) {
	c.conds = append(c.conds, cond)
	c.args = append(c.args, args...)
}

// timeRange adds an overlap condition for the predicate's time bounds.
func (c *clause) timeRange(p query.Predicate, startCol, endCol string) {
	if !p.Start.IsZero() {
		c.add(endCol+" >= ?", formatTime(p.Start))
	}
	if !p.End.IsZero() {
		c.add(startCol+" <= ?", formatTime(p.End))
	}
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// prefixPattern returns a LIKE pattern, used with ESCAPE '\', that matches
// IDs starting with prefix.
func prefixPattern(prefix string) string {
	return likeEscaper.Replace(strings.ToLower(prefix)) + "%"
}

func (c *clause) String() string {
	if len(c.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.conds, " AND ")
}

// orderBy renders ORDER BY and LIMIT. The row id breaks ties so equal
// timestamps come back in insertion order.
func orderBy(s query.Sort, startCol, endCol string, limit int, args []any) (string, []any) {
	col := startCol
	if s.Field == query.SortEnd {
		col = endCol
	}
	dir := "ASC"
	if s.Descending {
		dir = "DESC"
	}
	out := " ORDER BY " + col + " " + dir + ", rowid " + dir
	if limit > 0 {
		out += " LIMIT ?"
		args = append(args, limit)
	}
	return out, args
}

// deliverRows scans rows into batches of size and hands each to deliver.
// rows is closed before returning.
func deliverRows[T any](ctx context.Context, rows *sql.Rows, size int, scan func(*sql.Rows) (T, error), deliver query.DeliverFunc[T]) error {
	defer rows.Close()

	batch := make([]T, 0, size)
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		item, err := scan(rows)
		if err != nil {
			return err
		}
		batch = append(batch, item)
		if len(batch) == size {
			if err := deliver(batch); err != nil {
				return err
			}
			batch = make([]T, 0, size)
		}
	}
	if err := rows.Err(); err != nil {
		return classify(err)
	}
	if len(batch) > 0 {
		return deliver(batch)
	}
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
