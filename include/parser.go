package include

import (
	"fmt"
	"strings"

	"github.com/rediwo/redi-datasource/query"
)

// Expressioner is any query that exposes its expression graph.
type Expressioner interface {
	Expression() query.Expression
}

// FromQuery reconstructs the include tree of q from its construction
// history. rootName becomes the root's PropertyName.
func FromQuery(q Expressioner, rootName string) (*Tree, error) {
	return FromExpression(q.Expression(), rootName, false)
}

// FromExpression walks expr from the most recently applied operation
// inward. With nativeOnly, separate-load markers are skipped, which gives
// the relations a store is expected to load itself.
func FromExpression(expr query.Expression, rootName string, nativeOnly bool) (*Tree, error) {
	root := New(rootName)
	// subtree of the ThenInclude calls seen so far, waiting for the call
	// they chain onto
	var current *Tree

	attach := func(head, tail *Tree, isRoot bool) {
		if current != nil {
			tail.AddChild(current)
		}
		current = head
		if isRoot {
			root.AddChild(head)
			current = nil
		}
	}

	for {
		switch node := expr.(type) {
		case *query.MethodCallExpression:
			switch node.Method {
			case query.MethodInclude, query.MethodThenInclude:
				lambda, ok := node.Argument.(*query.LambdaExpression)
				if !ok {
					return nil, fmt.Errorf("unhandled %s argument %T", node.Method, node.Argument)
				}
				head, tail, err := ParseMemberExpression(lambda)
				if err != nil {
					return nil, err
				}
				attach(head, tail, node.Method == query.MethodInclude)
			case query.MethodIncludePath:
				path, _ := node.Argument.(string)
				head, tail, err := ParsePath(path)
				if err != nil {
					return nil, err
				}
				attach(head, tail, true)
			}
			expr = node.Source

		case *query.SeparateLoadExpression:
			if !nativeOnly {
				head, tail, err := ParseMemberExpression(node.Member)
				if err != nil {
					return nil, err
				}
				attach(head, tail, node.IsRoot)
			}
			expr = node.Reduce()

		default:
			return root, nil
		}
	}
}

// ParseMemberExpression turns x => x.A.B into the chain A -> B.
func ParseMemberExpression(lambda *query.LambdaExpression) (head, tail *Tree, err error) {
	if lambda == nil {
		return nil, nil, query.ErrMissingProperty
	}
	path, ok := lambda.MemberPath()
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", query.ErrMissingProperty, lambda)
	}
	head, tail = Linear(path...)
	return head, tail, nil
}

// ParsePath turns "A.B" into the chain A -> B.
func ParsePath(path string) (head, tail *Tree, err error) {
	parts := strings.Split(path, ".")
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return nil, nil, fmt.Errorf("%w: invalid path %q", query.ErrMissingProperty, path)
		}
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	head, tail = Linear(parts...)
	return head, tail, nil
}

// QueryFor returns an empty query over T on which includes can be declared
// only to compute a tree.
func QueryFor[T any]() *query.Query[T] {
	return query.New[T](query.Empty[T](), "")
}

// For builds the include tree declared by build on an empty query over T:
//
//	tree, err := include.For(func(q *query.Query[Case]) (*query.SeparateQuery[Case], error) {
//		return q.IncludedSeparately(query.Prop("CaseProducts"))
//	})
func For[T any, Q Expressioner](build func(*query.Query[T]) (Q, error)) (*Tree, error) {
	q, err := build(QueryFor[T]())
	if err != nil {
		return nil, err
	}
	return FromQuery(q, "")
}
