package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rediwo/redi-datasource/datasource"
	"github.com/rediwo/redi-datasource/metadata"
)

func filterMap(pairs ...string) datasource.FilterMap {
	var m datasource.FilterMap
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i], pairs[i+1])
	}
	return m
}

func TestDataSourceOverSQL(t *testing.T) {
	f := setup(t)
	ds := datasource.New[Person](people(t, f), mustClass[Person](t, f), datasource.DefaultOptions())

	tests := []struct {
		name string
		req  *datasource.ListRequest
		want []int
	}{
		// Company sorts by its own default order, Name; SQLite puts the
		// missing company last when descending
		{name: "relation descending", req: &datasource.ListRequest{OrderBy: "Company desc, PersonId"}, want: []int{2, 1, 3, 4}},
		{name: "relation ascending", req: &datasource.ListRequest{OrderBy: "Company, PersonId"}, want: []int{4, 1, 3, 2}},
		{name: "default order", req: &datasource.ListRequest{}, want: []int{4, 2, 3, 1}},
		{name: "unparseable number", req: &datasource.ListRequest{Filters: filterMap("PersonId", "abc")}, want: []int{}},
		{name: "undeclared enum code", req: &datasource.ListRequest{Filters: filterMap("Gender", "7")}, want: []int{}},
		{name: "enum codes", req: &datasource.ListRequest{Filters: filterMap("Gender", "0,2"), OrderBy: "PersonId"}, want: []int{2, 4}},
		{name: "split search", req: &datasource.ListRequest{Search: "smith b", OrderBy: "PersonId"}, want: []int{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _, err := ds.GetList(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, personIds(result.List))
			assert.Equal(t, len(tt.want), result.TotalCount)
		})
	}
}

func TestDataSourceSearchWithoutClausesOverSQL(t *testing.T) {
	f := setup(t)
	class := mustClass[Case](t, f)
	ds := datasource.New[Case](NewProvider[Case](f.db, class), class, datasource.DefaultOptions())

	// CaseKey is the only search property, so text cannot match anything
	result, _, err := ds.GetList(context.Background(), &datasource.ListRequest{Search: "printer"})
	require.NoError(t, err)
	assert.Empty(t, result.List)
	assert.Zero(t, result.TotalCount)

	result, _, err = ds.GetList(context.Background(), &datasource.ListRequest{Search: "11"})
	require.NoError(t, err)
	require.Len(t, result.List, 1)
	assert.Equal(t, "Broken screen", result.List[0].Title)
}

func mustClass[T any](t *testing.T, f *fixture) *metadata.Class {
	t.Helper()
	c, err := metadata.ClassOf[T](f.registry)
	require.NoError(t, err)
	return c
}
