// Package request provides a small SELECT builder that a controller can
// watch instead of raw SQL.
//
// Every built query is parameterized (values are never interpolated) and
// always carries an ORDER BY, so the fetched sequence is deterministic and
// diffs are stable across refetches.
package request

import (
	"fmt"
	"regexp"
	"strings"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Select builds a single-table SELECT.
//
// The zero Select is not usable; start from NewSelect.
type Select struct {
	table   string
	columns []string
	wheres  []condition
	orderBy []string
}

type condition struct {
	column string
	op     string
	value  any
}

// NewSelect starts a SELECT over table.
func NewSelect(table string) *Select {
	return &Select{table: table}
}

// Columns sets the projected columns. Unset means '*'.
func (s *Select) Columns(columns ...string) *Select {
	s.columns = append([]string(nil), columns...)
	return s
}

// WhereEq adds an equality condition. Conditions combine with AND in the
// order they were added.
func (s *Select) WhereEq(column string, value any) *Select {
	s.wheres = append(s.wheres, condition{column: column, op: "=", value: value})
	return s
}

// OrderBy sets the ordering terms. Each term is a column name optionally
// followed by ASC or DESC. Without ordering terms the query orders by
// rowid, keeping results deterministic.
func (s *Select) OrderBy(terms ...string) *Select {
	s.orderBy = append([]string(nil), terms...)
	return s
}

// ToSQL renders the request as parameterized SQL.
func (s *Select) ToSQL() (string, []any, error) {
	if err := validateIdent(s.table); err != nil {
		return "", nil, fmt.Errorf("table: %w", err)
	}

	projection := "*"
	if len(s.columns) > 0 {
		quoted := make([]string, len(s.columns))
		for i, c := range s.columns {
			if err := validateIdent(c); err != nil {
				return "", nil, fmt.Errorf("column: %w", err)
			}
			quoted[i] = quoteIdent(c)
		}
		projection = strings.Join(quoted, ", ")
	}

	var sb strings.Builder
	var args []any
	fmt.Fprintf(&sb, "SELECT %s FROM %s", projection, quoteIdent(s.table))

	for i, w := range s.wheres {
		if err := validateIdent(w.column); err != nil {
			return "", nil, fmt.Errorf("where column: %w", err)
		}
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		fmt.Fprintf(&sb, "%s %s ?", quoteIdent(w.column), w.op)
		args = append(args, w.value)
	}

	sb.WriteString(" ORDER BY ")
	if len(s.orderBy) == 0 {
		sb.WriteString("rowid")
	} else {
		terms := make([]string, len(s.orderBy))
		for i, t := range s.orderBy {
			term, err := renderOrderTerm(t)
			if err != nil {
				return "", nil, err
			}
			terms[i] = term
		}
		sb.WriteString(strings.Join(terms, ", "))
	}

	return sb.String(), args, nil
}

func renderOrderTerm(term string) (string, error) {
	fields := strings.Fields(term)
	switch len(fields) {
	case 1:
		if err := validateIdent(fields[0]); err != nil {
			return "", fmt.Errorf("order term: %w", err)
		}
		return quoteIdent(fields[0]), nil
	case 2:
		dir := strings.ToUpper(fields[1])
		if dir != "ASC" && dir != "DESC" {
			return "", fmt.Errorf("order term %q: direction must be ASC or DESC", term)
		}
		if err := validateIdent(fields[0]); err != nil {
			return "", fmt.Errorf("order term: %w", err)
		}
		return quoteIdent(fields[0]) + " " + dir, nil
	default:
		return "", fmt.Errorf("order term %q: expected column [ASC|DESC]", term)
	}
}

func validateIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}
