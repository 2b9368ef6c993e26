package datasource

import (
	"iter"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/rediwo/redi-datasource/types"
	"github.com/rediwo/redi-datasource/utils"
)

// ListRequest carries the parameters of one list, count or item request.
type ListRequest struct {
	// Where is a trusted boolean expression in the where language.
	Where string
	// Includes set to "none" suppresses the default includes.
	Includes          string
	OrderBy           string
	OrderByDescending string
	Page              *int
	PageSize          *int
	Search            string
	// DataSource names the data source the caller asked for. It is carried
	// for outer layers and not interpreted here.
	DataSource string
	// Fields is a comma separated projection allow-list.
	Fields  string
	Filters FilterMap
}

// OrderByItem is one requested sort key.
type OrderByItem struct {
	Field     string
	Direction types.Direction
}

// OrderByList returns the requested sort keys, OrderBy entries first. An
// OrderBy entry is descending when its second word starts with "d".
func (r *ListRequest) OrderByList() []OrderByItem {
	var out []OrderByItem
	for _, part := range utils.SplitList(r.OrderBy) {
		words := strings.Fields(part)
		item := OrderByItem{Field: words[0], Direction: types.Asc}
		if len(words) > 1 && strings.HasPrefix(strings.ToLower(words[1]), "d") {
			item.Direction = types.Desc
		}
		out = append(out, item)
	}
	for _, part := range utils.SplitList(r.OrderByDescending) {
		out = append(out, OrderByItem{Field: strings.Fields(part)[0], Direction: types.Desc})
	}
	return out
}

// FieldList splits Fields.
func (r *ListRequest) FieldList() []string {
	return utils.SplitList(r.Fields)
}

// FilterMap is a string map that remembers insertion order.
type FilterMap struct {
	keys   []string
	values map[string]string
}

// Set adds or replaces a filter. Replacing keeps the original position.
func (m *FilterMap) Set(name, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[name]; !ok {
		m.keys = append(m.keys, name)
	}
	m.values[name] = value
}

func (m *FilterMap) Get(name string) (string, bool) {
	v, ok := m.values[name]
	return v, ok
}

func (m *FilterMap) Delete(name string) {
	if _, ok := m.values[name]; !ok {
		return
	}
	delete(m.values, name)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == name })
}

func (m *FilterMap) Len() int { return len(m.keys) }

func (m *FilterMap) Keys() []string { return slices.Clone(m.keys) }

// All iterates the filters in insertion order.
func (m *FilterMap) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// ParseListRequest builds a request from query parameters. Filters are
// written filter.Name=value or filter[Name]=value; since url.Values does not
// keep parameter order they are added sorted by name. Unparseable page
// numbers are ignored.
func ParseListRequest(params url.Values) *ListRequest {
	req := &ListRequest{
		Where:             params.Get("where"),
		Includes:          params.Get("includes"),
		OrderBy:           params.Get("orderBy"),
		OrderByDescending: params.Get("orderByDescending"),
		Search:            params.Get("search"),
		DataSource:        params.Get("dataSource"),
		Fields:            params.Get("fields"),
	}
	if req.Includes == "" {
		req.Includes = params.Get("include")
	}
	if page, err := strconv.Atoi(params.Get("page")); err == nil {
		req.Page = &page
	}
	if size, err := strconv.Atoi(params.Get("pageSize")); err == nil {
		req.PageSize = &size
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		name, ok := filterName(key)
		if !ok || len(params[key]) == 0 {
			continue
		}
		req.Filters.Set(name, params[key][0])
	}
	return req
}

func filterName(key string) (string, bool) {
	if name, ok := strings.CutPrefix(key, "filter."); ok && name != "" {
		return name, true
	}
	if strings.HasPrefix(key, "filter[") && strings.HasSuffix(key, "]") {
		if name := key[len("filter[") : len(key)-1]; name != "" {
			return name, true
		}
	}
	return "", false
}
