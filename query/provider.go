package query

import (
	"context"
	"iter"
)

// Provider executes a query expression against some store.
type Provider[T any] interface {
	Execute(expr Expression) ([]T, error)
	Count(expr Expression) (int, error)
}

// ContextProvider is implemented by providers whose execution can block on
// I/O and honours cancellation.
type ContextProvider[T any] interface {
	ExecuteContext(ctx context.Context, expr Expression) ([]T, error)
	CountContext(ctx context.Context, expr Expression) (int, error)
}

// Enumerator is implemented by providers that can stream results.
type Enumerator[T any] interface {
	Enumerate(expr Expression) iter.Seq2[T, error]
}

func executeContext[T any](ctx context.Context, p Provider[T], expr Expression) ([]T, error) {
	if cp, ok := p.(ContextProvider[T]); ok {
		return cp.ExecuteContext(ctx, expr)
	}
	return p.Execute(expr)
}

func countContext[T any](ctx context.Context, p Provider[T], expr Expression) (int, error) {
	if cp, ok := p.(ContextProvider[T]); ok {
		return cp.CountContext(ctx, expr)
	}
	return p.Count(expr)
}

func enumerate[T any](p Provider[T], expr Expression) iter.Seq2[T, error] {
	if e, ok := p.(Enumerator[T]); ok {
		return e.Enumerate(expr)
	}
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

// SupportsContext reports whether p, or the provider a separate-load query
// forwards to, implements ContextProvider.
func SupportsContext[T any](p Provider[T]) bool {
	if f, ok := p.(*forwardingProvider[T]); ok {
		return SupportsContext(f.inner)
	}
	_, ok := p.(ContextProvider[T])
	return ok
}

type emptyProvider[T any] struct{}

// Empty returns a provider with no elements. Queries over it are useful
// for building expressions that are analysed rather than executed.
func Empty[T any]() Provider[T] { return emptyProvider[T]{} }

func (emptyProvider[T]) Execute(Expression) ([]T, error) { return nil, nil }

func (emptyProvider[T]) Count(Expression) (int, error) { return 0, nil }
