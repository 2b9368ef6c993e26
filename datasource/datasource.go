package datasource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rediwo/redi-datasource/include"
	"github.com/rediwo/redi-datasource/logger"
	"github.com/rediwo/redi-datasource/metadata"
	"github.com/rediwo/redi-datasource/query"
	"github.com/rediwo/redi-datasource/types"
)

const (
	DefaultMaxSearchTerms = 6
	DefaultPageSize       = 25
	DefaultMaxPageSize    = 10_000

	// NoDefaultIncludes as ListRequest.Includes turns off default includes.
	NoDefaultIncludes = "none"
)

// Options tune a data source. Zero numeric values take the defaults.
type Options struct {
	MaxSearchTerms  int
	DefaultPageSize int
	MaxPageSize     int
	// TimeZone interprets date-only input against offset dates. UTC when nil.
	TimeZone *time.Location
	// UseAsync passes the request context to providers that accept one.
	// With it off every query runs through the synchronous calls.
	UseAsync bool
	Logger   logger.Logger
}

func DefaultOptions() Options {
	return Options{
		MaxSearchTerms:  DefaultMaxSearchTerms,
		DefaultPageSize: DefaultPageSize,
		MaxPageSize:     DefaultMaxPageSize,
		TimeZone:        time.UTC,
		UseAsync:        true,
	}
}

// Stages lists the steps of the list pipeline. StandardDataSource sends
// every step through its Stages field, so a type embedding it can replace
// one step and install itself there.
type Stages[T any] interface {
	GetQuery(req *ListRequest) *query.Query[T]
	ApplyListPropertyFilters(q *query.Query[T], req *ListRequest) *query.Query[T]
	ApplyListFreeformWhereClause(q *query.Query[T], req *ListRequest) (*query.Query[T], error)
	ApplyListSearchTerm(q *query.Query[T], req *ListRequest) *query.Query[T]
	ApplyListFiltering(q *query.Query[T], req *ListRequest) (*query.Query[T], error)
	ApplyListClientSpecifiedSorting(q *query.Query[T], req *ListRequest) *query.Query[T]
	ApplyListDefaultSorting(q *query.Query[T]) *query.Query[T]
	ApplyListSorting(q *query.Query[T], req *ListRequest) *query.Query[T]
	ApplyListPaging(q *query.Query[T], req *ListRequest, totalCount int) (paged *query.Query[T], page, pageSize int)
	GetIncludeTree(q *query.Query[T]) (*include.Tree, error)
	TrimListFields(items []T, req *ListRequest) []T
}

// StandardDataSource answers list, count and item requests for one class.
type StandardDataSource[T any] struct {
	Class   *metadata.Class
	Options Options
	// Stages receives every pipeline step. Nil means the data source itself.
	Stages Stages[T]

	provider query.Provider[T]
	logger   logger.Logger
}

func New[T any](provider query.Provider[T], class *metadata.Class, opts Options) *StandardDataSource[T] {
	if opts.MaxSearchTerms <= 0 {
		opts.MaxSearchTerms = DefaultMaxSearchTerms
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = DefaultPageSize
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = DefaultMaxPageSize
	}
	if opts.TimeZone == nil {
		opts.TimeZone = time.UTC
	}
	return &StandardDataSource[T]{
		Class:    class,
		Options:  opts,
		provider: provider,
		logger:   logger.OrGlobal(opts.Logger),
	}
}

func (ds *StandardDataSource[T]) stages() Stages[T] {
	if ds.Stages != nil {
		return ds.Stages
	}
	return ds
}

// GetList filters, sorts and pages the class's records and returns the page
// with the include tree of the query that produced it.
func (ds *StandardDataSource[T]) GetList(ctx context.Context, req *ListRequest) (*ListResult[T], *include.Tree, error) {
	if req == nil {
		req = &ListRequest{}
	}
	s := ds.stages()

	q, err := s.ApplyListFiltering(s.GetQuery(req), req)
	if err != nil {
		return nil, nil, err
	}
	q = s.ApplyListSorting(q, req)

	total, err := ds.count(ctx, q)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count %s: %w", ds.Class.Name, err)
	}

	q, page, pageSize := s.ApplyListPaging(q, req, total)
	items, err := ds.evaluate(ctx, q)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list %s: %w", ds.Class.Name, err)
	}
	items = s.TrimListFields(items, req)

	tree, err := s.GetIncludeTree(q)
	if err != nil {
		return nil, nil, err
	}
	ds.logger.Debug("%s: page %d/%d, %d of %d records", ds.Class.Name, page, PageCount(total, pageSize), len(items), total)
	return NewListResult(items, page, pageSize, total), tree, nil
}

// GetCount counts the records a list request would page through.
func (ds *StandardDataSource[T]) GetCount(ctx context.Context, req *ListRequest) (int, error) {
	if req == nil {
		req = &ListRequest{}
	}
	s := ds.stages()
	q, err := s.ApplyListFiltering(s.GetQuery(req), req)
	if err != nil {
		return 0, err
	}
	n, err := ds.count(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", ds.Class.Name, err)
	}
	return n, nil
}

// GetItem loads the record whose primary key is id. String ids are
// converted to the key's type.
func (ds *StandardDataSource[T]) GetItem(ctx context.Context, id any, req *ListRequest) (T, *include.Tree, error) {
	var zero T
	if req == nil {
		req = &ListRequest{}
	}
	pk := ds.Class.PrimaryKey()
	if pk == nil {
		return zero, nil, fmt.Errorf("%s has no primary key", ds.Class.Name)
	}

	key := id
	if s, ok := id.(string); ok {
		v, ok := pk.Convert(s, ds.Options.TimeZone)
		if !ok {
			return zero, nil, fmt.Errorf("%s %q: %w", ds.Class.Name, s, ErrNotFound)
		}
		key = v
	}

	s := ds.stages()
	q := s.GetQuery(req).Where(types.Field(pk.Name).Equals(key)).Take(1)
	items, err := ds.evaluate(ctx, q)
	if err != nil {
		return zero, nil, fmt.Errorf("failed to load %s %v: %w", ds.Class.Name, id, err)
	}
	if len(items) == 0 {
		return zero, nil, fmt.Errorf("%s %v: %w", ds.Class.Name, id, ErrNotFound)
	}

	tree, err := s.GetIncludeTree(q)
	if err != nil {
		return zero, nil, err
	}
	return items[0], tree, nil
}

// GetQuery starts from every record of the class and adds the default
// includes unless the request opts out.
func (ds *StandardDataSource[T]) GetQuery(req *ListRequest) *query.Query[T] {
	q := query.New[T](ds.provider, ds.Class.Name)
	if strings.EqualFold(req.Includes, NoDefaultIncludes) {
		return q
	}
	for _, p := range ds.Class.AutoIncludes() {
		q = q.Include(query.Prop(p.Name)).Query
	}
	return q
}

// ApplyListFiltering applies the property filters, then the where clause,
// then the search term.
func (ds *StandardDataSource[T]) ApplyListFiltering(q *query.Query[T], req *ListRequest) (*query.Query[T], error) {
	s := ds.stages()
	q = s.ApplyListPropertyFilters(q, req)
	q, err := s.ApplyListFreeformWhereClause(q, req)
	if err != nil {
		return nil, err
	}
	return s.ApplyListSearchTerm(q, req), nil
}

func (ds *StandardDataSource[T]) GetIncludeTree(q *query.Query[T]) (*include.Tree, error) {
	return include.FromQuery(q, "")
}

func (ds *StandardDataSource[T]) useContext(q *query.Query[T]) bool {
	return ds.Options.UseAsync && query.SupportsContext(q.Provider())
}

func (ds *StandardDataSource[T]) count(ctx context.Context, q *query.Query[T]) (int, error) {
	if ds.useContext(q) {
		return q.CountContext(ctx)
	}
	return q.Count()
}

func (ds *StandardDataSource[T]) evaluate(ctx context.Context, q *query.Query[T]) ([]T, error) {
	if ds.useContext(q) {
		return q.ToListContext(ctx)
	}
	return q.ToList()
}
