package query

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/rediwo/redi-datasource/types"
)

var (
	// ErrMissingProperty is returned when an include names no property.
	ErrMissingProperty = errors.New("include requires a property")
	// ErrNotCollection is returned when ThenIncluded follows a property
	// that is not a collection.
	ErrNotCollection = errors.New("property is not a collection")
)

// Query is an immutable, composable query over elements of type T. Every
// operation returns a new Query whose expression wraps the previous one.
// Errors from building a query (a malformed order clause, an empty include)
// are reported when it executes.
type Query[T any] struct {
	provider Provider[T]
	expr     Expression
	err      error
}

// New starts a query over class served by provider.
func New[T any](provider Provider[T], class string) *Query[T] {
	return &Query[T]{provider: provider, expr: &RootExpression{Class: class}}
}

// From builds a query around an existing expression.
func From[T any](provider Provider[T], expr Expression) *Query[T] {
	return &Query[T]{provider: provider, expr: expr}
}

func (q *Query[T]) Expression() Expression { return q.expr }

func (q *Query[T]) Provider() Provider[T] { return q.provider }

// Err returns the first error recorded while building the query.
func (q *Query[T]) Err() error { return q.err }

func (q *Query[T]) String() string { return q.expr.String() }

func (q *Query[T]) with(method Method, arg any) *Query[T] {
	return &Query[T]{
		provider: q.provider,
		expr:     &MethodCallExpression{Method: method, Source: q.expr, Argument: arg},
		err:      q.err,
	}
}

func (q *Query[T]) fail(err error) *Query[T] {
	if q.err != nil {
		return q
	}
	return &Query[T]{provider: q.provider, expr: q.expr, err: err}
}

// Where filters the query. A nil condition leaves it unchanged.
func (q *Query[T]) Where(cond types.Condition) *Query[T] {
	if cond == nil {
		return q
	}
	return q.with(MethodWhere, cond)
}

// OrderBy sorts by a clause such as "LastName ASC, Company.Name DESC",
// replacing any earlier ordering.
func (q *Query[T]) OrderBy(clause string) *Query[T] {
	clauses, err := types.ParseOrderClause(clause)
	if err != nil {
		return q.fail(err)
	}
	return q.OrderByClauses(clauses...)
}

// OrderByClauses is OrderBy with pre-parsed clauses.
func (q *Query[T]) OrderByClauses(clauses ...types.OrderClause) *Query[T] {
	return q.with(MethodOrderBy, clauses)
}

func (q *Query[T]) Skip(n int) *Query[T] {
	if n < 0 {
		return q.fail(fmt.Errorf("skip must not be negative: %d", n))
	}
	return q.with(MethodSkip, n)
}

func (q *Query[T]) Take(n int) *Query[T] {
	if n < 0 {
		return q.fail(fmt.Errorf("take must not be negative: %d", n))
	}
	return q.with(MethodTake, n)
}

// IncludableQuery is a query whose last operation included a relation, so
// ThenInclude can continue from it.
type IncludableQuery[T any] struct {
	*Query[T]
}

// Include loads a related property with the query's results.
func (q *Query[T]) Include(member Member) *IncludableQuery[T] {
	if member.IsZero() {
		return &IncludableQuery[T]{q.fail(ErrMissingProperty)}
	}
	return &IncludableQuery[T]{q.with(MethodInclude, member.Lambda())}
}

// ThenInclude loads a property of the relation included last.
func (q *IncludableQuery[T]) ThenInclude(member Member) *IncludableQuery[T] {
	if member.IsZero() {
		return &IncludableQuery[T]{q.fail(ErrMissingProperty)}
	}
	return &IncludableQuery[T]{q.with(MethodThenInclude, member.Lambda())}
}

// IncludePath includes a dotted relation path such as "Company.Owner".
func (q *Query[T]) IncludePath(path string) *Query[T] {
	if len(splitPath(path)) == 0 {
		return q.fail(ErrMissingProperty)
	}
	return q.with(MethodIncludePath, path)
}

// ToList executes the query synchronously.
func (q *Query[T]) ToList() ([]T, error) {
	if q.err != nil {
		return nil, q.err
	}
	return q.provider.Execute(q.expr)
}

// ToListContext executes the query with ctx when the provider supports it.
func (q *Query[T]) ToListContext(ctx context.Context) ([]T, error) {
	if q.err != nil {
		return nil, q.err
	}
	return executeContext(ctx, q.provider, q.expr)
}

func (q *Query[T]) Count() (int, error) {
	if q.err != nil {
		return 0, q.err
	}
	return q.provider.Count(q.expr)
}

func (q *Query[T]) CountContext(ctx context.Context) (int, error) {
	if q.err != nil {
		return 0, q.err
	}
	return countContext(ctx, q.provider, q.expr)
}

// First returns the first result; ok is false when there is none.
func (q *Query[T]) First(ctx context.Context) (item T, ok bool, err error) {
	items, err := q.Take(1).ToListContext(ctx)
	if err != nil || len(items) == 0 {
		return item, false, err
	}
	return items[0], true, nil
}

// All streams the results, using the provider's enumerator when it has one.
func (q *Query[T]) All() iter.Seq2[T, error] {
	if q.err != nil {
		return func(yield func(T, error) bool) {
			var zero T
			yield(zero, q.err)
		}
	}
	return enumerate(q.provider, q.expr)
}
