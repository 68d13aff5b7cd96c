package db

import (
	"fmt"
	"strings"
)

// Query builds a SELECT with positional arguments. Repositories use it to turn
// their list filters into WHERE clauses.
type Query struct {
	from    string
	cols    string
	where   []string
	args    []interface{}
	orderBy string
}

func NewQuery(from, cols string) *Query {
	return &Query{from: from, cols: cols}
}

// Where appends a clause. Placeholders are written as "?" and numbered here.
func (q *Query) Where(clause string, args ...interface{}) *Query {
	for _, a := range args {
		clause = strings.Replace(clause, "?", fmt.Sprintf("$%d", len(q.args)+1), 1)
		q.args = append(q.args, a)
	}
	q.where = append(q.where, clause)
	return q
}

// WhereIf appends the clause only when cond holds.
func (q *Query) WhereIf(cond bool, clause string, args ...interface{}) *Query {
	if cond {
		q.Where(clause, args...)
	}
	return q
}

func (q *Query) OrderBy(orderBy string) *Query {
	q.orderBy = orderBy
	return q
}

func (q *Query) SQL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", q.cols, q.from)
	if len(q.where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(q.where, " AND "))
	}
	if q.orderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(q.orderBy)
	}
	return b.String()
}

func (q *Query) Args() []interface{} {
	return q.args
}
