package datasource

import (
	"slices"
	"strings"

	"github.com/rediwo/redi-datasource/metadata"
	"github.com/rediwo/redi-datasource/query"
	"github.com/rediwo/redi-datasource/types"
	"github.com/rediwo/redi-datasource/utils"
)

// ApplyListSearchTerm filters on the request's free text search.
//
// "Field:value" searches that one property. Otherwise every term of the
// search must match one of the split-on-spaces properties, or the whole
// text must match one of the other search properties. So with FirstName
// and LastName split on spaces, "steve steverson" finds Steve Steverson and
// Steverson Steve but not Steve Smith.
func (ds *StandardDataSource[T]) ApplyListSearchTerm(q *query.Query[T], req *ListRequest) *query.Query[T] {
	search := strings.TrimSpace(req.Search)
	if search == "" {
		return q
	}

	if name, value, ok := strings.Cut(search, ":"); ok {
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)
		if p := ds.Class.PropertyByNameOrDisplay(name); p != nil && value != "" {
			var conds []types.Condition
			for _, sp := range p.SearchProperties(1, true) {
				if c := ds.searchClause(sp, value); c != nil {
					conds = append(conds, c)
				}
			}
			if len(conds) > 0 {
				return q.Where(types.Or(conds...))
			}
		}
	}

	paths := ds.Class.SearchProperties(metadata.DefaultSearchDepth)
	var clauses []types.Condition

	var perTerm []types.Condition
	for _, term := range SearchTerms(search, ds.Options.MaxSearchTerms) {
		var conds []types.Condition
		for _, sp := range paths {
			if !sp.Leaf().SplitOnSpaces {
				continue
			}
			if c := ds.searchClause(sp, term); c != nil {
				conds = append(conds, c)
			}
		}
		if len(conds) > 0 {
			perTerm = append(perTerm, types.Or(conds...))
		}
	}
	if len(perTerm) > 0 {
		clauses = append(clauses, types.And(perTerm...))
	}

	for _, sp := range paths {
		if sp.Leaf().SplitOnSpaces {
			continue
		}
		if c := ds.searchClause(sp, search); c != nil {
			clauses = append(clauses, c)
		}
	}

	if len(clauses) == 0 {
		// no property can hold the text, so nothing matches
		ds.logger.Debug("%s: nothing searchable for %q", ds.Class.Name, search)
		return q.Where(types.False())
	}
	return q.Where(types.Or(clauses...))
}

// SearchTerms splits a search on spaces and commas and keeps the first max
// distinct terms in the order given.
func SearchTerms(search string, max int) []string {
	var terms []string
	for _, t := range strings.FieldsFunc(search, func(r rune) bool { return r == ' ' || r == ',' }) {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(terms, t) {
			continue
		}
		if len(terms) == max {
			break
		}
		terms = append(terms, t)
	}
	return terms
}

// searchClause matches one search path against term, or returns nil when
// term cannot match the path's type.
func (ds *StandardDataSource[T]) searchClause(sp metadata.SearchPath, term string) types.Condition {
	p := sp.Leaf()
	field := types.Field(sp.Names()...)

	switch p.Kind {
	case metadata.KindString:
		switch p.SearchMethod {
		case metadata.SearchEqualsNatural:
			return field.Equals(term)
		case metadata.SearchEquals:
			return field.IgnoreCase().Equals(term)
		case metadata.SearchContains:
			return field.IgnoreCase().Contains(term)
		default:
			return field.IgnoreCase().StartsWith(term)
		}
	case metadata.KindDate, metadata.KindDateOffset:
		return ds.dateSearch(field, p, term)
	case metadata.KindEnum:
		var codes []any
		for _, v := range p.EnumValues {
			match := strings.EqualFold(v.Name, term)
			if p.SearchMethod == metadata.SearchBeginsWith {
				match = strings.HasPrefix(strings.ToLower(v.Name), strings.ToLower(term))
			}
			if match {
				codes = append(codes, v.Value)
			}
		}
		switch len(codes) {
		case 0:
			return nil
		case 1:
			return field.Equals(codes[0])
		}
		return field.In(codes...)
	case metadata.KindNumber, metadata.KindUUID, metadata.KindBool:
		if v, ok := p.Convert(term, nil); ok {
			return field.Equals(v)
		}
	}
	return nil
}

// dateSearch widens dateMatch with whole years ("2020") and months
// ("Jan 2020", "2020-01").
func (ds *StandardDataSource[T]) dateSearch(field *types.FieldRef, p *metadata.Property, term string) types.Condition {
	loc := ds.location(p)
	if t, ok := utils.ParseYear(term, loc); ok {
		return dateRange(field, p, t, t.AddDate(1, 0, 0))
	}
	if t, ok := utils.ParseMonth(term, loc); ok {
		return dateRange(field, p, t, t.AddDate(0, 1, 0))
	}
	return ds.dateMatch(field, p, term)
}
