package main

import (
	"fmt"
	"strconv"
	"strings"
)

type condition struct {
	column   string
	operator string
	value    any
}

type join struct {
	table    string
	column1  string
	operator string
	column2  string
}

// parseCondition splits "column operator value". The value keeps its inner spaces.
func parseCondition(expr string) (condition, error) {
	parts := strings.Fields(expr)
	if len(parts) < 3 {
		return condition{}, fmt.Errorf("invalid condition %q: expected \"column operator value\"", expr)
	}

	// Rejoin from the original string so the value keeps its spacing.
	rest := strings.TrimSpace(expr)
	for _, p := range parts[:2] {
		rest = strings.TrimSpace(strings.TrimPrefix(rest, p))
	}

	return condition{column: parts[0], operator: parts[1], value: parseValue(rest)}, nil
}

func parseJoin(expr string) (join, error) {
	parts := strings.Fields(expr)
	if len(parts) != 4 {
		return join{}, fmt.Errorf("invalid join %q: expected \"table column1 operator column2\"", expr)
	}
	return join{table: parts[0], column1: parts[1], operator: parts[2], column2: parts[3]}, nil
}

// parseValue binds integers, floats and booleans with their type.
// Quoted values are always strings.
func parseValue(raw string) any {
	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') && raw[len(raw)-1] == raw[0] {
		return raw[1 : len(raw)-1]
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}
