package memory

import (
	"fmt"
	"iter"
	"slices"

	"github.com/rediwo/redi-datasource/logger"
	"github.com/rediwo/redi-datasource/query"
	"github.com/rediwo/redi-datasource/types"
	"github.com/rediwo/redi-datasource/utils"
)

// Provider serves queries over an in-memory slice. Related records are
// expected to be populated already, so includes do not change results.
type Provider[T any] struct {
	items  []T
	logger logger.Logger
}

// New returns a provider over items. The slice is not copied; it must not
// be modified while queries run.
func New[T any](items []T) *Provider[T] {
	return &Provider[T]{items: items}
}

// SetLogger enables debug logging of executed expressions.
func (p *Provider[T]) SetLogger(l logger.Logger) { p.logger = l }

// Query starts a query over the provider's items.
func (p *Provider[T]) Query(class string) *query.Query[T] {
	return query.New[T](p, class)
}

func (p *Provider[T]) Execute(expr query.Expression) ([]T, error) {
	_, calls, err := query.Calls(expr)
	if err != nil {
		return nil, err
	}
	if p.logger != nil {
		p.logger.Debug("memory: %s", expr)
	}

	items := slices.Clone(p.items)
	for _, call := range calls {
		switch call.Method {
		case query.MethodWhere:
			cond := call.Argument.(types.Condition)
			items = slices.DeleteFunc(items, func(item T) bool { return !Evaluate(cond, item) })
		case query.MethodOrderBy:
			sortItems(items, call.Argument.([]types.OrderClause))
		case query.MethodSkip:
			items = items[min(call.Argument.(int), len(items)):]
		case query.MethodTake:
			items = items[:min(call.Argument.(int), len(items))]
		case query.MethodInclude, query.MethodThenInclude, query.MethodIncludePath:
		default:
			return nil, fmt.Errorf("memory: unsupported method %s", call.Method)
		}
	}
	return items, nil
}

func (p *Provider[T]) Count(expr query.Expression) (int, error) {
	items, err := p.Execute(expr)
	return len(items), err
}

func (p *Provider[T]) Enumerate(expr query.Expression) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		items, err := p.Execute(expr)
		if err != nil {
			var zero T
			yield(zero, err)
			return
		}
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
	}
}

// sortItems orders items stably. Paths through collections sort by their
// first element.
func sortItems[T any](items []T, clauses []types.OrderClause) {
	slices.SortStableFunc(items, func(a, b T) int {
		for _, c := range clauses {
			r := utils.Compare(first(Values(a, c.Path)), first(Values(b, c.Path)))
			if c.Direction == types.Desc {
				r = -r
			}
			if r != 0 {
				return r
			}
		}
		return 0
	})
}

func first(values []any) any {
	if len(values) == 0 {
		return nil
	}
	return values[0]
}
