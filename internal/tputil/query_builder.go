package tputil

import (
	"errors"
	"fmt"
	"strings"
)

// QueryBuilder offers a way to build a SQL statement for the trace query
// engine. Statements are assembled internally by the analysis components,
// never from user input.
type QueryBuilder struct {
	Table string

	Distinct        bool
	GroupBy         string
	Limit           uint64
	OrderBy         string
	SelectCols      []string
	WhereConditions []string
}

func (q *QueryBuilder) Query() (string, error) {
	if q.Table == "" {
		return "", errors.New("no table selected")
	}
	if len(q.SelectCols) == 0 {
		return "", errors.New("no column selected")
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	if q.Distinct {
		sb.WriteString("DISTINCT ")
	}
	sb.WriteString(fmt.Sprintf("%s FROM %s", strings.Join(q.SelectCols, ", "), q.Table))

	if len(q.WhereConditions) > 0 {
		sb.WriteString(fmt.Sprintf(" WHERE %s", strings.Join(q.WhereConditions, " AND ")))
	}

	if q.GroupBy != "" {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(q.GroupBy)
	}

	if q.OrderBy != "" {
		sb.WriteString(fmt.Sprintf(" ORDER BY %s", q.OrderBy))
	}

	if q.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", q.Limit))
	}

	return sb.String(), nil
}
