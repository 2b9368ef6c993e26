package query

import (
	"context"
	"fmt"
	"iter"
	"reflect"
	"strings"
)

// SeparateQuery is a query carrying a SeparateLoadExpression marker. The
// relation it names is loaded by the caller with its own query; the marker
// only records it for the include tree. Execution is forwarded unchanged to
// the provider of the query it was built from.
type SeparateQuery[T any] struct {
	*Query[T]

	// element type of the property marked last; nil when it cannot be
	// resolved statically (maps, interfaces)
	marked reflect.Type
}

// IncludedSeparately marks member as loaded separately.
func (q *Query[T]) IncludedSeparately(member Member) (*SeparateQuery[T], error) {
	if q.err != nil {
		return nil, q.err
	}
	path, err := memberPath(member)
	if err != nil {
		return nil, err
	}
	marked, err := resolveMember(reflect.TypeFor[T](), path)
	if err != nil {
		return nil, err
	}
	return &SeparateQuery[T]{
		Query:  q.mark(member, true),
		marked: marked,
	}, nil
}

// ThenIncluded marks a property of the collection marked last. It fails
// with ErrNotCollection when the previous property is not a collection.
func (q *SeparateQuery[T]) ThenIncluded(member Member) (*SeparateQuery[T], error) {
	path, err := memberPath(member)
	if err != nil {
		return nil, err
	}
	var marked reflect.Type
	if q.marked != nil {
		elem, ok := collectionElem(q.marked)
		if !ok {
			return nil, fmt.Errorf("%w: %v", ErrNotCollection, q.marked)
		}
		if marked, err = resolveMember(elem, path); err != nil {
			return nil, err
		}
	}
	return &SeparateQuery[T]{
		Query:  q.mark(member, false),
		marked: marked,
	}, nil
}

func (q *Query[T]) mark(member Member, root bool) *Query[T] {
	provider := q.provider
	if _, ok := provider.(*forwardingProvider[T]); !ok {
		provider = &forwardingProvider[T]{inner: provider}
	}
	return &Query[T]{
		provider: provider,
		expr:     &SeparateLoadExpression{Previous: q.expr, Member: member.Lambda(), IsRoot: root},
	}
}

func memberPath(member Member) ([]string, error) {
	if member.IsZero() {
		return nil, ErrMissingProperty
	}
	path, ok := member.Lambda().MemberPath()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingProperty, member)
	}
	return path, nil
}

// resolveMember follows path through struct fields of t and returns the
// type of the last one. Unresolvable containers yield a nil type.
func resolveMember(t reflect.Type, path []string) (reflect.Type, error) {
	for _, name := range path {
		for t != nil && t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t == nil || t.Kind() != reflect.Struct {
			return nil, nil
		}
		f, ok := t.FieldByName(name)
		if !ok {
			f, ok = t.FieldByNameFunc(func(n string) bool { return strings.EqualFold(n, name) })
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s has no field %s", ErrMissingProperty, t.Name(), name)
		}
		t = f.Type
	}
	return t, nil
}

func collectionElem(t reflect.Type) (reflect.Type, bool) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return t.Elem(), true
	case reflect.Map, reflect.Interface:
		return nil, true
	}
	return nil, false
}

// forwardingProvider hands every operation to inner unchanged.
type forwardingProvider[T any] struct {
	inner Provider[T]
}

func (p *forwardingProvider[T]) Execute(expr Expression) ([]T, error) {
	return p.inner.Execute(expr)
}

func (p *forwardingProvider[T]) Count(expr Expression) (int, error) {
	return p.inner.Count(expr)
}

func (p *forwardingProvider[T]) ExecuteContext(ctx context.Context, expr Expression) ([]T, error) {
	return executeContext(ctx, p.inner, expr)
}

func (p *forwardingProvider[T]) CountContext(ctx context.Context, expr Expression) (int, error) {
	return countContext(ctx, p.inner, expr)
}

func (p *forwardingProvider[T]) Enumerate(expr Expression) iter.Seq2[T, error] {
	return enumerate(p.inner, expr)
}
