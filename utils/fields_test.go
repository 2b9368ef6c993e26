package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type company struct {
	ID   int
	Name string
}

type person struct {
	ID        int
	FirstName string
	Birthday  *time.Time
	Company   *company
	Tags      []string
	secret    string
}

func TestField(t *testing.T) {
	p := &person{ID: 1, FirstName: "Steve", Company: &company{Name: "Acme"}, secret: "x"}

	v, ok := Field(p, "FirstName")
	require.True(t, ok)
	assert.Equal(t, "Steve", v)

	v, ok = Field(*p, "firstname")
	require.True(t, ok)
	assert.Equal(t, "Steve", v)

	_, ok = Field(p, "secret")
	assert.False(t, ok, "unexported fields are not readable")

	_, ok = Field(p, "Missing")
	assert.False(t, ok)

	v, ok = FieldPath(p, []string{"Company", "Name"})
	require.True(t, ok)
	assert.Equal(t, "Acme", v)

	_, ok = FieldPath(&person{}, []string{"Company", "Name"})
	assert.False(t, ok, "nil hop")

	m := map[string]any{"FirstName": "Ann", "last_name": "Lee"}
	v, ok = Field(m, "firstname")
	require.True(t, ok)
	assert.Equal(t, "Ann", v)
}

func TestSetField(t *testing.T) {
	p := &person{}
	require.NoError(t, SetField(p, "FirstName", "Bob"))
	require.NoError(t, SetField(p, "id", int64(9)))
	require.NoError(t, SetField(p, "Company", company{Name: "Acme"}))
	require.NoError(t, SetField(p, "Tags", []any{"a", "b"}))
	ts := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, SetField(p, "Birthday", ts))

	assert.Equal(t, "Bob", p.FirstName)
	assert.Equal(t, 9, p.ID)
	assert.Equal(t, "Acme", p.Company.Name)
	assert.Equal(t, []string{"a", "b"}, p.Tags)
	assert.Equal(t, ts, *p.Birthday)

	assert.Error(t, SetField(p, "Nope", 1))
	assert.Error(t, SetField(person{}, "FirstName", "x"), "struct values are not addressable")
	assert.Error(t, SetField(p, "FirstName", 1.5))

	m := map[string]any{}
	require.NoError(t, SetField(m, "Company", "Acme"))
	assert.Equal(t, "Acme", m["Company"])
}

func TestProject(t *testing.T) {
	p := &person{ID: 1, FirstName: "Steve", Tags: []string{"x"}}
	out := Project(p, []string{"firstName"})
	assert.Equal(t, "Steve", out.FirstName)
	assert.Zero(t, out.ID)
	assert.Nil(t, out.Tags)
	assert.Equal(t, 1, p.ID, "source untouched")

	sv := Project(*p, []string{"ID"})
	assert.Equal(t, 1, sv.ID)
	assert.Empty(t, sv.FirstName)

	m := Project(map[string]any{"a": 1, "b": 2}, []string{"b", "c"})
	assert.Equal(t, map[string]any{"b": 2}, m)
}

func TestElements(t *testing.T) {
	items, ok := Elements([]int{1, 2})
	require.True(t, ok)
	assert.Equal(t, []any{1, 2}, items)

	_, ok = Elements([]byte("ab"))
	assert.False(t, ok)
	_, ok = Elements("ab")
	assert.False(t, ok)
}
