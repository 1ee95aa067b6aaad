package source

import (
	"encoding/json"
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// SourceTables resolves the tables a SELECT reads by walking its AST.
//
// The walk collects every range-variable reference in the statement,
// including those inside joins, subqueries and CTEs. CTE names themselves
// may end up in the set; over-approximation is fine because scope filtering
// must be conservative. Names are lowercased and schema-stripped.
//
// The parser speaks the PostgreSQL grammar. Plain SELECTs shared with
// SQLite parse identically; dialect-specific syntax fails the parse and is
// reported to the caller as a preparation failure. SQLite's '?' parameter
// marks are not PostgreSQL syntax, so they are rewritten to '$n' form
// before parsing.
func SourceTables(sqlText string) (map[string]struct{}, error) {
	raw, err := pg_query.ParseToJSON(translatePlaceholders(sqlText))
	if err != nil {
		return nil, fmt.Errorf("parse query: %w", err)
	}

	var tree map[string]any
	if err := json.Unmarshal([]byte(raw), &tree); err != nil {
		return nil, fmt.Errorf("decode query ast: %w", err)
	}

	tables := make(map[string]struct{})
	collectRangeVars(tree, tables)
	if len(tables) == 0 {
		return nil, fmt.Errorf("query reads no tables")
	}
	return tables, nil
}

// translatePlaceholders rewrites SQLite '?' parameter marks to the '$n'
// form PostgreSQL's grammar requires, skipping string literals, quoted
// identifiers and comments the same way countPlaceholders does.
func translatePlaceholders(text string) string {
	var sb strings.Builder
	sb.Grow(len(text) + 8)
	n := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '\'', '"', '`':
			start := i
			for i++; i < len(text); i++ {
				if text[i] == c {
					if i+1 < len(text) && text[i+1] == c {
						i++
						continue
					}
					break
				}
			}
			if i >= len(text) {
				i = len(text) - 1
			}
			sb.WriteString(text[start : i+1])
		case '-':
			if i+1 < len(text) && text[i+1] == '-' {
				start := i
				for i += 2; i < len(text) && text[i] != '\n'; i++ {
				}
				if i >= len(text) {
					i = len(text) - 1
				}
				sb.WriteString(text[start : i+1])
				continue
			}
			sb.WriteByte(c)
		case '/':
			if i+1 < len(text) && text[i+1] == '*' {
				start := i
				for i += 2; i+1 < len(text); i++ {
					if text[i] == '*' && text[i+1] == '/' {
						i++
						break
					}
				}
				if i >= len(text) {
					i = len(text) - 1
				}
				sb.WriteString(text[start : i+1])
				continue
			}
			sb.WriteByte(c)
		case '?':
			n++
			fmt.Fprintf(&sb, "$%d", n)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// collectRangeVars walks the JSON AST and records every RangeVar relname.
func collectRangeVars(node any, tables map[string]struct{}) {
	switch n := node.(type) {
	case map[string]any:
		if rv, ok := n["RangeVar"].(map[string]any); ok {
			if name, ok := rv["relname"].(string); ok && name != "" {
				tables[strings.ToLower(name)] = struct{}{}
			}
		}
		for _, v := range n {
			collectRangeVars(v, tables)
		}
	case []any:
		for _, v := range n {
			collectRangeVars(v, tables)
		}
	}
}
