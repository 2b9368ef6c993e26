package datasource

import (
	"strings"

	"github.com/rediwo/redi-datasource/metadata"
	"github.com/rediwo/redi-datasource/query"
	"github.com/rediwo/redi-datasource/types"
)

// ApplyListSorting uses the client's ordering when there is one and the
// class's default ordering otherwise. The two are never merged.
func (ds *StandardDataSource[T]) ApplyListSorting(q *query.Query[T], req *ListRequest) *query.Query[T] {
	s := ds.stages()
	if len(req.OrderByList()) > 0 {
		return s.ApplyListClientSpecifiedSorting(q, req)
	}
	return s.ApplyListDefaultSorting(q)
}

// ApplyListClientSpecifiedSorting orders by the requested fields. An object
// property sorts by its class's default ordering, in the requested
// direction. The first field that does not resolve ends the ordering so
// later input cannot produce a surprising sort. A field named "none" turns
// sorting off.
func (ds *StandardDataSource[T]) ApplyListClientSpecifiedSorting(q *query.Query[T], req *ListRequest) *query.Query[T] {
	items := req.OrderByList()
	for _, item := range items {
		if strings.EqualFold(item.Field, "none") {
			return q
		}
	}

	var clauses []types.OrderClause
	for _, item := range items {
		props := ds.sortPath(item.Field)
		if props == nil {
			ds.logger.Debug("%s: ignoring sort from %q on", ds.Class.Name, item.Field)
			break
		}
		// an object at the end of any path, dotted or not, sorts by its
		// class's default order
		last := props[len(props)-1]
		if !last.IsPOCO() {
			clauses = append(clauses, types.OrderClause{Path: metadata.Names(props), Direction: item.Direction})
			continue
		}
		for _, o := range last.Object().DefaultOrderBy() {
			path := append(metadata.Names(props), metadata.Names(o.Path)...)
			clauses = append(clauses, types.OrderClause{Path: path, Direction: item.Direction})
		}
	}
	if len(clauses) == 0 {
		return q
	}
	return q.OrderByClauses(clauses...)
}

// sortPath resolves a dotted sort field. Collections cannot be sorted on.
func (ds *StandardDataSource[T]) sortPath(field string) []*metadata.Property {
	props := ds.Class.ResolvePath(strings.Split(field, "."))
	for _, p := range props {
		if p.IsCollection {
			return nil
		}
	}
	return props
}

// ApplyListDefaultSorting orders by the class's declared default ordering,
// falling back to Name and then to the primary key.
func (ds *StandardDataSource[T]) ApplyListDefaultSorting(q *query.Query[T]) *query.Query[T] {
	order := ds.Class.DefaultOrderBy()
	if len(order) == 0 {
		return q
	}
	clauses := make([]types.OrderClause, len(order))
	for i, o := range order {
		clauses[i] = types.OrderClause{Path: metadata.Names(o.Path), Direction: o.Direction}
	}
	return q.OrderByClauses(clauses...)
}
