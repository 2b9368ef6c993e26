package datasource

import (
	"fmt"
	"strings"
	"time"

	"github.com/rediwo/redi-datasource/metadata"
	"github.com/rediwo/redi-datasource/query"
	"github.com/rediwo/redi-datasource/types"
	"github.com/rediwo/redi-datasource/utils"
	"github.com/rediwo/redi-datasource/where"
)

// ApplyListPropertyFilters adds one condition per request filter naming a
// client scalar property. An unparseable date drops its filter; any other
// value the property can never hold matches nothing.
func (ds *StandardDataSource[T]) ApplyListPropertyFilters(q *query.Query[T], req *ListRequest) *query.Query[T] {
	for name, value := range req.Filters.All() {
		p := ds.Class.ClientPropertyByName(name)
		if p == nil || p.IsPOCO() {
			continue
		}
		cond := ds.filterCondition(p, value)
		if cond == nil {
			ds.logger.Debug("%s: dropped filter %s=%q", ds.Class.Name, name, value)
			continue
		}
		q = q.Where(cond)
	}
	return q
}

func (ds *StandardDataSource[T]) filterCondition(p *metadata.Property, value string) types.Condition {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	field := types.Field(p.Name)

	switch {
	case p.Kind == metadata.KindString:
		if strings.Contains(value, "*") {
			return field.StartsWith(strings.ReplaceAll(value, "*", ""))
		}
		return field.Equals(value)
	case p.Kind.IsDate():
		if isNull(value) {
			return nullMatch(field, p)
		}
		return ds.dateMatch(field, p, value)
	}

	var conds []types.Condition
	for _, part := range utils.SplitList(value) {
		if isNull(part) {
			if p.Nullable {
				conds = append(conds, field.IsNull())
			}
			continue
		}
		if v, ok := p.Convert(part, ds.Options.TimeZone); ok {
			conds = append(conds, field.Equals(v))
		}
	}
	switch len(conds) {
	case 0:
		return types.False()
	case 1:
		return conds[0]
	}
	return types.Or(conds...)
}

func isNull(s string) bool { return strings.EqualFold(strings.TrimSpace(s), "null") }

func nullMatch(field *types.FieldRef, p *metadata.Property) types.Condition {
	if p.Nullable {
		return field.IsNull()
	}
	return types.False()
}

// dateMatch compares a date property with request text: date-only input
// covers that whole day, anything with a time must match exactly. Returns
// nil for unparseable input.
func (ds *StandardDataSource[T]) dateMatch(field *types.FieldRef, p *metadata.Property, raw string) types.Condition {
	t, ok := utils.ParseDate(raw, ds.location(p))
	if !ok {
		return nil
	}
	if utils.IsDateOnly(t, raw) {
		return dateRange(field, p, t, t.AddDate(0, 0, 1))
	}
	return field.Equals(instant(p, t))
}

// location is where date input for p is read: the caller's zone for offset
// dates, UTC for plain ones.
func (ds *StandardDataSource[T]) location(p *metadata.Property) *time.Location {
	if p.Kind == metadata.KindDateOffset {
		return ds.Options.TimeZone
	}
	return time.UTC
}

func instant(p *metadata.Property, t time.Time) time.Time {
	if p.Kind == metadata.KindDateOffset {
		return t.UTC()
	}
	return t
}

func dateRange(field *types.FieldRef, p *metadata.Property, from, to time.Time) types.Condition {
	return field.InRange(instant(p, from), instant(p, to))
}

// ApplyListFreeformWhereClause parses the request's where expression and
// adds it to the query.
func (ds *StandardDataSource[T]) ApplyListFreeformWhereClause(q *query.Query[T], req *ListRequest) (*query.Query[T], error) {
	if strings.TrimSpace(req.Where) == "" {
		return q, nil
	}
	cond, err := where.Parse(req.Where)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWhere, err)
	}
	return q.Where(cond), nil
}
