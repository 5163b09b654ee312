//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package database

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-discovery/internal/config"
)

// supportedOperators lists the operators allowed in structured filters.
var supportedOperators = map[string]bool{
	"=":           true,
	"!=":          true,
	"<":           true,
	">":           true,
	"<=":          true,
	">=":          true,
	"LIKE":        true,
	"ILIKE":       true,
	"IN":          true,
	"NOT IN":      true,
	"IS NULL":     true,
	"IS NOT NULL": true,
}

// filterCondition renders a table filter as a parenthesised condition to
// be AND-ed into a WHERE clause. Raw SQL comes from the configuration file
// and is trusted; structured filters are parameterized starting at
// *paramIndex, which is advanced past the placeholders used.
func filterCondition(cf *config.ConfigFilter, paramIndex *int) (string, []any, error) {
	if cf == nil {
		return "", nil, nil
	}
	if cf.RawSQL != "" {
		return "(" + cf.RawSQL + ")", nil, nil
	}

	clause, args, err := buildFilterFromStruct(cf.Structured, paramIndex)
	if err != nil {
		return "", nil, fmt.Errorf("filter error: %w", err)
	}
	if clause == "" {
		return "", nil, nil
	}
	return "(" + clause + ")", args, nil
}

// buildFilterFromStruct joins the conditions of filter with its logic
// operator.
func buildFilterFromStruct(filter *config.Filter, paramIndex *int) (string, []any, error) {
	if filter == nil || len(filter.Conditions) == 0 {
		return "", nil, nil
	}

	logic := "AND"
	if filter.Logic != "" {
		logic = strings.ToUpper(filter.Logic)
		if logic != "AND" && logic != "OR" {
			return "", nil, fmt.Errorf("invalid logic operator: %s (must be AND or OR)", logic)
		}
	}

	conditions := make([]string, 0, len(filter.Conditions))
	var args []any
	for _, cond := range filter.Conditions {
		clause, clauseArgs, err := buildCondition(cond, paramIndex)
		if err != nil {
			return "", nil, err
		}
		conditions = append(conditions, clause)
		args = append(args, clauseArgs...)
	}

	return strings.Join(conditions, " "+logic+" "), args, nil
}

// buildCondition renders one condition with a sanitized column name.
func buildCondition(cond config.FilterCondition, paramIndex *int) (string, []any, error) {
	if err := ValidateOperator(cond.Operator); err != nil {
		return "", nil, err
	}
	if err := ValidateValue(cond.Operator, cond.Value); err != nil {
		return "", nil, err
	}

	column := pgx.Identifier{cond.Column}.Sanitize()
	op := strings.ToUpper(cond.Operator)

	switch op {
	case "IS NULL", "IS NOT NULL":
		return fmt.Sprintf("%s %s", column, op), nil, nil
	case "IN", "NOT IN":
		values := cond.Value.([]any)
		placeholders := make([]string, len(values))
		for i := range values {
			placeholders[i] = fmt.Sprintf("$%d", *paramIndex)
			*paramIndex++
		}
		return fmt.Sprintf("%s %s (%s)", column, op, strings.Join(placeholders, ", ")), values, nil
	}

	placeholder := fmt.Sprintf("$%d", *paramIndex)
	*paramIndex++
	return fmt.Sprintf("%s %s %s", column, op, placeholder), []any{cond.Value}, nil
}

// ValidateOperator checks an operator against the allowed list.
func ValidateOperator(operator string) error {
	if !supportedOperators[strings.ToUpper(operator)] {
		return fmt.Errorf("unsupported operator: %s (allowed: =, !=, <, >, <=, >=, LIKE, ILIKE, IN, NOT IN, IS NULL, IS NOT NULL)", operator)
	}
	return nil
}

// ValidateValue checks that value suits operator: none for the NULL
// tests, a non-empty list for IN, and a non-nil scalar otherwise.
func ValidateValue(operator string, value any) error {
	switch strings.ToUpper(operator) {
	case "IS NULL", "IS NOT NULL":
		return nil
	case "IN", "NOT IN":
		v, ok := value.([]any)
		if !ok {
			return fmt.Errorf("IN operator requires array value, got: %T", value)
		}
		if len(v) == 0 {
			return fmt.Errorf("IN operator requires non-empty array")
		}
		return nil
	}
	if value == nil {
		return fmt.Errorf("operator %s requires non-nil value", operator)
	}
	return nil
}
