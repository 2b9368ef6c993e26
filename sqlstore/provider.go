package sqlstore

import (
	"context"
	"fmt"
	"iter"
	"reflect"

	"github.com/jmoiron/sqlx"

	"github.com/rediwo/redi-datasource/include"
	"github.com/rediwo/redi-datasource/metadata"
	"github.com/rediwo/redi-datasource/query"
)

// Provider executes queries over one class's table. T is the class's Go
// struct (or a pointer to it), or map[string]any for classes without one;
// maps are keyed by property name. Native includes are loaded with one
// batched statement per relation.
type Provider[T any] struct {
	db       *DB
	class    *metadata.Class
	compiler *Compiler
}

func NewProvider[T any](db *DB, class *metadata.Class) *Provider[T] {
	c := NewCompiler(db.Dialect)
	c.aliasByProperty = reflect.TypeFor[T]().Kind() == reflect.Map
	return &Provider[T]{db: db, class: class, compiler: c}
}

// Query starts a query over the provider's class.
func (p *Provider[T]) Query() *query.Query[T] {
	return query.New[T](p, p.class.Name)
}

func (p *Provider[T]) Execute(expr query.Expression) ([]T, error) {
	return p.ExecuteContext(context.Background(), expr)
}

func (p *Provider[T]) Count(expr query.Expression) (int, error) {
	return p.CountContext(context.Background(), expr)
}

func (p *Provider[T]) ExecuteContext(ctx context.Context, expr query.Expression) ([]T, error) {
	rows, err := p.selectRows(ctx, expr)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []T
	for rows.Next() {
		item, err := scanRow[T](rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", p.class.Name, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tree, err := include.FromExpression(expr, p.class.Name, true)
	if err != nil {
		return nil, err
	}
	if tree.Len() > 0 && len(items) > 0 {
		if err := p.loadIncludes(ctx, items, tree); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (p *Provider[T]) CountContext(ctx context.Context, expr query.Expression) (int, error) {
	plan, err := query.Flatten(expr)
	if err != nil {
		return 0, err
	}
	ds, err := p.compiler.Count(p.class, plan)
	if err != nil {
		return 0, err
	}
	sql, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("failed to build count SQL: %w", err)
	}
	rows, err := p.db.queryx(ctx, sql, args)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, fmt.Errorf("failed to scan count: %w", err)
		}
	}
	return count, rows.Err()
}

// Enumerate streams rows. Queries with includes are materialized first so
// relations can be loaded in batches.
func (p *Provider[T]) Enumerate(expr query.Expression) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		tree, err := include.FromExpression(expr, p.class.Name, true)
		if err != nil {
			yield(zero, err)
			return
		}
		if tree.Len() > 0 {
			items, err := p.Execute(expr)
			if err != nil {
				yield(zero, err)
				return
			}
			for _, item := range items {
				if !yield(item, nil) {
					return
				}
			}
			return
		}

		rows, err := p.selectRows(context.Background(), expr)
		if err != nil {
			yield(zero, err)
			return
		}
		defer rows.Close()
		for rows.Next() {
			item, err := scanRow[T](rows)
			if !yield(item, err) || err != nil {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(zero, err)
		}
	}
}

func (p *Provider[T]) selectRows(ctx context.Context, expr query.Expression) (*sqlx.Rows, error) {
	plan, err := query.Flatten(expr)
	if err != nil {
		return nil, err
	}
	ds, err := p.compiler.Select(p.class, plan)
	if err != nil {
		return nil, err
	}
	sql, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}
	return p.db.queryx(ctx, sql, args)
}

func (p *Provider[T]) loadIncludes(ctx context.Context, items []T, tree *include.Tree) error {
	records := make([]any, len(items))
	structs := reflect.TypeFor[T]().Kind() == reflect.Struct
	for i := range items {
		if structs {
			records[i] = &items[i]
		} else {
			records[i] = items[i]
		}
	}
	l := &loader{db: p.db}
	return l.load(ctx, p.class, records, tree)
}

func scanRow[T any](rows *sqlx.Rows) (T, error) {
	var item T
	t := reflect.TypeFor[T]()
	switch t.Kind() {
	case reflect.Map:
		m, err := scanMap(rows)
		if err != nil {
			return item, err
		}
		return reflect.ValueOf(m).Convert(t).Interface().(T), nil
	case reflect.Pointer:
		v := reflect.New(t.Elem())
		if err := rows.StructScan(v.Interface()); err != nil {
			return item, err
		}
		return v.Interface().(T), nil
	default:
		err := rows.StructScan(&item)
		return item, err
	}
}

func scanMap(rows *sqlx.Rows) (map[string]any, error) {
	m := make(map[string]any)
	if err := rows.MapScan(m); err != nil {
		return nil, err
	}
	for k, v := range m {
		if b, ok := v.([]byte); ok {
			m[k] = string(b)
		}
	}
	return m, nil
}
