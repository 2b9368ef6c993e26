package types

import (
	"fmt"
	"strings"
)

type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ParseDirection accepts asc/ascending/desc/descending in any case.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Asc, true
	case "desc", "descending":
		return Desc, true
	}
	return "", false
}

// OrderClause sorts on one field path
type OrderClause struct {
	Path      []string
	Direction Direction
}

func (o OrderClause) FieldName() string { return strings.Join(o.Path, ".") }

func (o OrderClause) String() string {
	return o.FieldName() + " " + string(o.Direction)
}

// ParseOrderClause parses "Name ASC, Company.Name DESC". Direction defaults
// to ascending.
func ParseOrderClause(clause string) ([]OrderClause, error) {
	var out []OrderClause
	for _, part := range strings.Split(clause, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		if len(fields) > 2 {
			return nil, fmt.Errorf("invalid order clause %q", strings.TrimSpace(part))
		}
		dir := Asc
		if len(fields) == 2 {
			d, ok := ParseDirection(fields[1])
			if !ok {
				return nil, fmt.Errorf("invalid sort direction %q", fields[1])
			}
			dir = d
		}
		path := strings.Split(fields[0], ".")
		for _, seg := range path {
			if seg == "" {
				return nil, fmt.Errorf("invalid field path %q", fields[0])
			}
		}
		out = append(out, OrderClause{Path: path, Direction: dir})
	}
	return out, nil
}

// FormatOrderClause is the inverse of ParseOrderClause.
func FormatOrderClause(clauses []OrderClause) string {
	parts := make([]string, len(clauses))
	for i, c := range clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
