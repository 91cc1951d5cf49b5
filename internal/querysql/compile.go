package querysql

import (
	"fmt"
	"regexp"
	"strings"
)

// tiebreaker is the final ORDER BY key of every query.
const tiebreaker = "id"

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidateIdentifier rejects anything that is not a plain lower-case SQL
// identifier.
func ValidateIdentifier(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

// Compile converts a Select to parameterized SQL.
// Returns (sql, params, error).
func Compile(q Select) (string, []any, error) {
	if err := ValidateIdentifier(q.From); err != nil {
		return "", nil, fmt.Errorf("from: %w", err)
	}
	if len(q.Columns) == 0 {
		return "", nil, fmt.Errorf("select from %s: at least one column is required", q.From)
	}
	for _, col := range q.Columns {
		if err := ValidateIdentifier(col); err != nil {
			return "", nil, fmt.Errorf("column: %w", err)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(q.Columns, ", "), q.From)

	var params []any
	if q.Filter != nil {
		where, filterParams, err := compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(where)
		params = filterParams
	}

	order, err := orderClause(q.OrderBy)
	if err != nil {
		return "", nil, err
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(order)

	return b.String(), params, nil
}

// orderClause always ends with the id tiebreaker. COLLATE BINARY keeps text
// ordering stable across SQLite builds.
func orderClause(keys []string) (string, error) {
	parts := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		if err := ValidateIdentifier(k); err != nil {
			return "", fmt.Errorf("order by: %w", err)
		}
		if k == tiebreaker {
			continue
		}
		parts = append(parts, k+" ASC")
	}
	parts = append(parts, tiebreaker+" COLLATE BINARY ASC")
	return strings.Join(parts, ", "), nil
}

func compilePredicate(p Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case Equals:
		return compareOp(pred.Field, "=", pred.Value)
	case AtLeast:
		return compareOp(pred.Field, ">=", pred.Value)
	case And:
		return compileAnd(pred)
	case nil:
		return "", nil, fmt.Errorf("nil predicate")
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compareOp(field, op string, value any) (string, []any, error) {
	if err := ValidateIdentifier(field); err != nil {
		return "", nil, err
	}
	param, err := toParam(value)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", field, err)
	}
	return fmt.Sprintf("%s %s ?", field, op), []any{param}, nil
}

func compileAnd(and And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil // vacuous truth
	}

	parts := make([]string, 0, len(and.Predicates))
	var params []any
	for _, pred := range and.Predicates {
		sql, p, err := compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		if inner, ok := pred.(And); ok && len(inner.Predicates) > 1 {
			sql = "(" + sql + ")"
		}
		parts = append(parts, sql)
		params = append(params, p...)
	}
	return strings.Join(parts, " AND "), params, nil
}

// toParam accepts the value types the sqlite driver binds directly.
// NULL is rejected: "x = NULL" never matches.
func toParam(v any) (any, error) {
	switch val := v.(type) {
	case string, int64, bool:
		return val, nil
	case int:
		return int64(val), nil
	case nil:
		return nil, fmt.Errorf("NULL cannot be compared")
	default:
		return nil, fmt.Errorf("unsupported parameter type %T", v)
	}
}
