package types

import (
	"fmt"
	"strings"
)

// Condition is a node of a boolean predicate over a record. Conditions are
// values: combinators return new nodes and never mutate their operands.
type Condition interface {
	And(condition Condition) Condition
	Or(condition Condition) Condition
	Not() Condition
	String() string
}

// Operator is a field comparison
type Operator string

const (
	OpEqual        Operator = "="
	OpNotEqual     Operator = "!="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpIn           Operator = "IN"
	OpContains     Operator = "CONTAINS"
	OpStartsWith   Operator = "STARTS WITH"
	OpEndsWith     Operator = "ENDS WITH"
	OpIsNull       Operator = "IS NULL"
	OpIsNotNull    Operator = "IS NOT NULL"
)

// FieldCondition compares the value at Path with Value (or Values for IN).
// A path that crosses a collection matches when any element matches.
// IgnoreCase lower-cases both sides of string comparisons.
type FieldCondition struct {
	Path       []string
	Operator   Operator
	Value      any
	Values     []any
	IgnoreCase bool
}

func (c *FieldCondition) And(condition Condition) Condition { return And(c, condition) }
func (c *FieldCondition) Or(condition Condition) Condition  { return Or(c, condition) }
func (c *FieldCondition) Not() Condition                    { return &NotCondition{Condition: c} }

// FieldName is the dotted path.
func (c *FieldCondition) FieldName() string { return strings.Join(c.Path, ".") }

func (c *FieldCondition) String() string {
	field := c.FieldName()
	if c.IgnoreCase {
		field = "lower(" + field + ")"
	}
	switch c.Operator {
	case OpIsNull, OpIsNotNull:
		return fmt.Sprintf("%s %s", field, c.Operator)
	case OpIn:
		parts := make([]string, len(c.Values))
		for i, v := range c.Values {
			parts[i] = formatValue(v)
		}
		return fmt.Sprintf("%s IN (%s)", field, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("%s %s %s", field, c.Operator, formatValue(c.Value))
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%v", v)
}

// AndCondition requires every operand
type AndCondition struct {
	Conditions []Condition
}

func (c *AndCondition) And(condition Condition) Condition {
	return And(append(append([]Condition{}, c.Conditions...), condition)...)
}
func (c *AndCondition) Or(condition Condition) Condition { return Or(c, condition) }
func (c *AndCondition) Not() Condition                   { return &NotCondition{Condition: c} }
func (c *AndCondition) String() string                   { return join(c.Conditions, " AND ") }

// OrCondition requires at least one operand
type OrCondition struct {
	Conditions []Condition
}

func (c *OrCondition) And(condition Condition) Condition { return And(c, condition) }
func (c *OrCondition) Or(condition Condition) Condition {
	return Or(append(append([]Condition{}, c.Conditions...), condition)...)
}
func (c *OrCondition) Not() Condition { return &NotCondition{Condition: c} }
func (c *OrCondition) String() string { return join(c.Conditions, " OR ") }

func join(conditions []Condition, sep string) string {
	parts := make([]string, len(conditions))
	for i, cond := range conditions {
		parts[i] = "(" + cond.String() + ")"
	}
	return strings.Join(parts, sep)
}

// NotCondition negates its operand
type NotCondition struct {
	Condition Condition
}

func (c *NotCondition) And(condition Condition) Condition { return And(c, condition) }
func (c *NotCondition) Or(condition Condition) Condition  { return Or(c, condition) }
func (c *NotCondition) Not() Condition                    { return c.Condition }
func (c *NotCondition) String() string                    { return "NOT (" + c.Condition.String() + ")" }

// ConstCondition is a literal true or false
type ConstCondition struct {
	Value bool
}

func (c *ConstCondition) And(condition Condition) Condition { return And(c, condition) }
func (c *ConstCondition) Or(condition Condition) Condition  { return Or(c, condition) }
func (c *ConstCondition) Not() Condition                    { return &ConstCondition{Value: !c.Value} }
func (c *ConstCondition) String() string {
	if c.Value {
		return "true"
	}
	return "false"
}

func True() Condition  { return &ConstCondition{Value: true} }
func False() Condition { return &ConstCondition{Value: false} }

func compact(conditions []Condition) []Condition {
	out := make([]Condition, 0, len(conditions))
	for _, c := range conditions {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// And combines conditions, dropping nils. No operands means true; a single
// operand is returned as is.
func And(conditions ...Condition) Condition {
	conditions = compact(conditions)
	switch len(conditions) {
	case 0:
		return True()
	case 1:
		return conditions[0]
	}
	return &AndCondition{Conditions: conditions}
}

// Or combines conditions, dropping nils. No operands means false; a single
// operand is returned as is.
func Or(conditions ...Condition) Condition {
	conditions = compact(conditions)
	switch len(conditions) {
	case 0:
		return False()
	case 1:
		return conditions[0]
	}
	return &OrCondition{Conditions: conditions}
}

func Not(condition Condition) Condition {
	return condition.Not()
}

// FieldRef builds conditions on one field path
type FieldRef struct {
	path       []string
	ignoreCase bool
}

// Field starts a condition on a field. Segments may themselves be dotted:
// Field("Company.Name") and Field("Company", "Name") are the same path.
func Field(path ...string) *FieldRef {
	var segments []string
	for _, p := range path {
		segments = append(segments, strings.Split(p, ".")...)
	}
	return &FieldRef{path: segments}
}

// IgnoreCase makes string comparisons built from this ref case-insensitive.
func (f *FieldRef) IgnoreCase() *FieldRef {
	return &FieldRef{path: f.path, ignoreCase: true}
}

func (f *FieldRef) Path() []string { return append([]string(nil), f.path...) }

func (f *FieldRef) compare(op Operator, value any) Condition {
	return &FieldCondition{Path: f.Path(), Operator: op, Value: value, IgnoreCase: f.ignoreCase}
}

func (f *FieldRef) Equals(value any) Condition             { return f.compare(OpEqual, value) }
func (f *FieldRef) NotEquals(value any) Condition          { return f.compare(OpNotEqual, value) }
func (f *FieldRef) GreaterThan(value any) Condition        { return f.compare(OpGreater, value) }
func (f *FieldRef) GreaterThanOrEqual(value any) Condition { return f.compare(OpGreaterEqual, value) }
func (f *FieldRef) LessThan(value any) Condition           { return f.compare(OpLess, value) }
func (f *FieldRef) LessThanOrEqual(value any) Condition    { return f.compare(OpLessEqual, value) }
func (f *FieldRef) Contains(value string) Condition        { return f.compare(OpContains, value) }
func (f *FieldRef) StartsWith(value string) Condition      { return f.compare(OpStartsWith, value) }
func (f *FieldRef) EndsWith(value string) Condition        { return f.compare(OpEndsWith, value) }
func (f *FieldRef) IsNull() Condition                      { return f.compare(OpIsNull, nil) }
func (f *FieldRef) IsNotNull() Condition                   { return f.compare(OpIsNotNull, nil) }

// In matches any of values. An empty list never matches.
func (f *FieldRef) In(values ...any) Condition {
	if len(values) == 0 {
		return False()
	}
	return &FieldCondition{Path: f.Path(), Operator: OpIn, Values: values, IgnoreCase: f.ignoreCase}
}

func (f *FieldRef) NotIn(values ...any) Condition {
	return f.In(values...).Not()
}

// Between is inclusive on both ends
func (f *FieldRef) Between(min, max any) Condition {
	return And(f.GreaterThanOrEqual(min), f.LessThanOrEqual(max))
}

// InRange matches min <= x < max
func (f *FieldRef) InRange(min, max any) Condition {
	return And(f.GreaterThanOrEqual(min), f.LessThan(max))
}
