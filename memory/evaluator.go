package memory

import (
	"strings"

	"github.com/rediwo/redi-datasource/types"
	"github.com/rediwo/redi-datasource/utils"
)

// Evaluate reports whether record satisfies condition. Records are structs,
// pointers to structs or string-keyed maps. A path that passes through a
// collection matches when any element matches.
func Evaluate(condition types.Condition, record any) bool {
	if condition == nil {
		return true
	}

	switch cond := condition.(type) {
	case *types.AndCondition:
		for _, sub := range cond.Conditions {
			if !Evaluate(sub, record) {
				return false
			}
		}
		return true
	case *types.OrCondition:
		for _, sub := range cond.Conditions {
			if Evaluate(sub, record) {
				return true
			}
		}
		return false
	case *types.NotCondition:
		return !Evaluate(cond.Condition, record)
	case *types.ConstCondition:
		return cond.Value
	case *types.FieldCondition:
		for _, v := range Values(record, cond.Path) {
			if evaluateOperator(v, cond) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Values reads path from record. Missing members and nil hops yield a
// single nil; collections fan out into one value per element.
func Values(record any, path []string) []any {
	if len(path) == 0 {
		return []any{utils.Deref(record)}
	}
	v, ok := utils.Field(record, path[0])
	if !ok || utils.Deref(v) == nil {
		return []any{nil}
	}
	rest := path[1:]
	if len(rest) == 0 {
		return []any{utils.Deref(v)}
	}
	if elems, ok := utils.Elements(v); ok {
		var out []any
		for _, e := range elems {
			out = append(out, Values(e, rest)...)
		}
		return out
	}
	return Values(v, rest)
}

func evaluateOperator(fieldValue any, cond *types.FieldCondition) bool {
	switch cond.Operator {
	case types.OpIsNull:
		return fieldValue == nil
	case types.OpIsNotNull:
		return fieldValue != nil
	case types.OpIn:
		for _, v := range cond.Values {
			if equal(fieldValue, v, cond.IgnoreCase) {
				return true
			}
		}
		return false
	}

	if fieldValue == nil {
		// null never compares equal, as in SQL
		return cond.Operator == types.OpNotEqual && cond.Value != nil
	}

	switch cond.Operator {
	case types.OpEqual:
		return equal(fieldValue, cond.Value, cond.IgnoreCase)
	case types.OpNotEqual:
		return !equal(fieldValue, cond.Value, cond.IgnoreCase)
	case types.OpGreater:
		return utils.Compare(fieldValue, cond.Value) > 0
	case types.OpGreaterEqual:
		return utils.Compare(fieldValue, cond.Value) >= 0
	case types.OpLess:
		return utils.Compare(fieldValue, cond.Value) < 0
	case types.OpLessEqual:
		return utils.Compare(fieldValue, cond.Value) <= 0
	case types.OpContains, types.OpStartsWith, types.OpEndsWith:
		s, pattern := utils.ToString(fieldValue), utils.ToString(cond.Value)
		if cond.IgnoreCase {
			s, pattern = strings.ToLower(s), strings.ToLower(pattern)
		}
		switch cond.Operator {
		case types.OpContains:
			return strings.Contains(s, pattern)
		case types.OpStartsWith:
			return strings.HasPrefix(s, pattern)
		default:
			return strings.HasSuffix(s, pattern)
		}
	}
	return false
}

func equal(a, b any, ignoreCase bool) bool {
	if ignoreCase {
		if sa, ok := a.(string); ok {
			return strings.EqualFold(sa, utils.ToString(b))
		}
	}
	return utils.Equal(a, b)
}
