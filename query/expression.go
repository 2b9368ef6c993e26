package query

import (
	"fmt"
	"strings"

	"github.com/rediwo/redi-datasource/types"
)

// Expression is one node of a query's construction history. The outermost
// node is the most recently applied operation.
type Expression interface {
	String() string
}

// Reducible nodes stand for another expression when a query executes.
type Reducible interface {
	Expression
	Reduce() Expression
}

// RootExpression is the source a query starts from.
type RootExpression struct {
	Class string
}

func (e *RootExpression) String() string { return e.Class }

type Method string

const (
	MethodWhere       Method = "Where"
	MethodOrderBy     Method = "OrderBy"
	MethodSkip        Method = "Skip"
	MethodTake        Method = "Take"
	MethodInclude     Method = "Include"
	MethodThenInclude Method = "ThenInclude"
	MethodIncludePath Method = "IncludePath"
)

// MethodCallExpression applies Method to Source. Argument holds a
// types.Condition for Where, []types.OrderClause for OrderBy, an int for
// Skip and Take, a *LambdaExpression for Include and ThenInclude, and a
// string for IncludePath.
type MethodCallExpression struct {
	Method   Method
	Source   Expression
	Argument any
}

func (e *MethodCallExpression) String() string {
	var arg string
	switch a := e.Argument.(type) {
	case types.Condition:
		arg = a.String()
	case []types.OrderClause:
		arg = types.FormatOrderClause(a)
	case string:
		arg = fmt.Sprintf("%q", a)
	default:
		arg = fmt.Sprint(a)
	}
	return fmt.Sprintf("%s.%s(%s)", e.Source, e.Method, arg)
}

// ParameterExpression is the element a lambda is applied to.
type ParameterExpression struct{}

func (*ParameterExpression) String() string { return "x" }

// MemberExpression reads property Name of Expression.
type MemberExpression struct {
	Expression Expression
	Name       string
}

func (e *MemberExpression) String() string { return e.Expression.String() + "." + e.Name }

// LambdaExpression is a member selector such as x => x.Company.Owner.
type LambdaExpression struct {
	Body Expression
}

func (e *LambdaExpression) String() string { return "x => " + e.Body.String() }

// MemberPath returns the property chain a lambda selects, outermost
// first. Method calls applied to the member (filtered includes) are
// skipped. ok is false when the body does not end in a parameter.
func (e *LambdaExpression) MemberPath() (path []string, ok bool) {
	var expr Expression = e.Body
	for {
		switch node := expr.(type) {
		case *MemberExpression:
			path = append(path, node.Name)
			expr = node.Expression
		case *MethodCallExpression:
			expr = node.Source
		case *ParameterExpression:
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path, len(path) > 0
		default:
			return nil, false
		}
	}
}

// SeparateLoadExpression marks a relation that is loaded with its own
// query but still belongs to the include shape. It has no effect on
// execution: Reduce returns Previous.
type SeparateLoadExpression struct {
	Previous Expression
	Member   *LambdaExpression
	IsRoot   bool
}

func (e *SeparateLoadExpression) Reduce() Expression { return e.Previous }

func (e *SeparateLoadExpression) String() string {
	method := "ThenIncluded"
	if e.IsRoot {
		method = "IncludedSeparately"
	}
	return fmt.Sprintf("%s.%s(%s)", e.Previous, method, e.Member)
}

// Unwrap strips reducible nodes from the top of expr.
func Unwrap(expr Expression) Expression {
	for {
		r, ok := expr.(Reducible)
		if !ok {
			return expr
		}
		expr = r.Reduce()
	}
}

// Calls returns the method calls of expr in the order they were applied,
// with reducible nodes removed, and the root they apply to.
func Calls(expr Expression) (*RootExpression, []*MethodCallExpression, error) {
	var calls []*MethodCallExpression
	for expr = Unwrap(expr); ; expr = Unwrap(expr) {
		switch node := expr.(type) {
		case *MethodCallExpression:
			calls = append(calls, node)
			expr = node.Source
		case *RootExpression:
			for i, j := 0, len(calls)-1; i < j; i, j = i+1, j-1 {
				calls[i], calls[j] = calls[j], calls[i]
			}
			return node, calls, nil
		case nil:
			return nil, nil, fmt.Errorf("query has no root")
		default:
			return nil, nil, fmt.Errorf("unexpected %T in query", node)
		}
	}
}

// splitPath splits "A.B.C"; it returns nil if any segment is empty.
func splitPath(path string) []string {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	parts := strings.Split(path, ".")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
		if parts[i] == "" {
			return nil
		}
	}
	return parts
}
