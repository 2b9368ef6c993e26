package query

import "github.com/rediwo/redi-datasource/types"

// Member selects a related property for Include, ThenInclude and the
// separate-load operations:
//
//	q.Include(query.Prop("Company").Prop("Owner"))
//	q.Include(query.Prop("Cases").Where(types.Field("Status").Equals(0)))
type Member struct {
	expr Expression
}

// Prop starts a member chain at the query's element.
func Prop(name string) Member {
	return Member{expr: &MemberExpression{Expression: &ParameterExpression{}, Name: name}}
}

// Path builds a chain from a dotted path such as "Company.Owner".
func Path(path string) Member {
	var m Member
	for _, name := range splitPath(path) {
		if m.expr == nil {
			m = Prop(name)
		} else {
			m = m.Prop(name)
		}
	}
	return m
}

func (m Member) Prop(name string) Member {
	if m.expr == nil {
		return Prop(name)
	}
	return Member{expr: &MemberExpression{Expression: m.expr, Name: name}}
}

// Where filters an included collection.
func (m Member) Where(cond types.Condition) Member {
	return m.call(MethodWhere, cond)
}

// Take limits an included collection.
func (m Member) Take(n int) Member {
	return m.call(MethodTake, n)
}

func (m Member) call(method Method, arg any) Member {
	if m.expr == nil {
		return m
	}
	return Member{expr: &MethodCallExpression{Method: method, Source: m.expr, Argument: arg}}
}

// IsZero reports whether no property was selected.
func (m Member) IsZero() bool { return m.expr == nil }

// Lambda returns the selector expression, or nil for the zero Member.
func (m Member) Lambda() *LambdaExpression {
	if m.expr == nil {
		return nil
	}
	return &LambdaExpression{Body: m.expr}
}

func (m Member) String() string {
	if m.expr == nil {
		return ""
	}
	return m.expr.String()
}
