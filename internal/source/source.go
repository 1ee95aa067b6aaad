package source

import (
	"context"
	"database/sql"
	"fmt"
)

// Querier prepares and runs queries. Satisfied by *sql.DB, *sql.Conn and
// *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Request is a query produced by a builder instead of raw SQL.
type Request interface {
	// ToSQL renders the request as parameterized SQL.
	ToSQL() (query string, args []any, err error)
}

type sourceKind int

const (
	kindSQL sourceKind = iota + 1
	kindRequest
)

// Source is the tagged query-source variant: raw SQL plus arguments, or a
// builder Request. Immutable after construction.
type Source struct {
	kind sourceKind
	text string
	args []any
	req  Request
}

// NewSQL creates a source from SQL text and positional arguments.
func NewSQL(text string, args ...any) *Source {
	return &Source{kind: kindSQL, text: text, args: args}
}

// NewRequest creates a source from a builder request.
func NewRequest(req Request) *Source {
	return &Source{kind: kindRequest, req: req}
}

// Statement is a validated query ready to fetch: its text, bound arguments,
// and the set of tables it reads.
type Statement struct {
	SQL  string
	Args []any

	// SourceTables holds the lowercased names of every table the query
	// reads. Scope filtering is conservative: the set may over-approximate,
	// never under-approximate.
	SourceTables map[string]struct{}
}

// Prepare resolves the source into a Statement against the live database.
//
// It validates the SQL by preparing it, checks that the argument count
// matches the statement's placeholders, and extracts the source tables from
// the query's AST. All failures surface as *ConfigurationError.
func (s *Source) Prepare(ctx context.Context, q Querier) (*Statement, error) {
	text, args := s.text, s.args
	if s.kind == kindRequest {
		var err error
		text, args, err = s.req.ToSQL()
		if err != nil {
			return nil, &ConfigurationError{Message: "request did not produce SQL", Err: err}
		}
	}

	if want := countPlaceholders(text); want != len(args) {
		return nil, &ConfigurationError{
			Query:   text,
			Message: fmt.Sprintf("statement has %d placeholders but %d arguments were given", want, len(args)),
		}
	}

	// A prepare round-trip catches syntax errors and unknown columns before
	// any observer is attached.
	stmt, err := q.PrepareContext(ctx, text)
	if err != nil {
		return nil, &ConfigurationError{Query: text, Message: "statement did not prepare", Err: err}
	}
	stmt.Close()

	tables, err := SourceTables(text)
	if err != nil {
		return nil, &ConfigurationError{Query: text, Message: "could not resolve source tables", Err: err}
	}

	return &Statement{SQL: text, Args: append([]any(nil), args...), SourceTables: tables}, nil
}

// countPlaceholders counts '?' parameter marks in text, skipping string
// literals, quoted identifiers and comments.
func countPlaceholders(text string) int {
	count := 0
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '\'', '"', '`':
			// Consume to the closing quote; doubled quotes escape.
			for i++; i < len(text); i++ {
				if text[i] == c {
					if i+1 < len(text) && text[i+1] == c {
						i++
						continue
					}
					break
				}
			}
		case '-':
			if i+1 < len(text) && text[i+1] == '-' {
				for i += 2; i < len(text) && text[i] != '\n'; i++ {
				}
			}
		case '/':
			if i+1 < len(text) && text[i+1] == '*' {
				for i += 2; i+1 < len(text); i++ {
					if text[i] == '*' && text[i+1] == '/' {
						i++
						break
					}
				}
			}
		case '?':
			count++
		}
	}
	return count
}
