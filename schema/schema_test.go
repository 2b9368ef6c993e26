package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	models, err := LoadFile("testdata/people.yaml")
	require.NoError(t, err)
	require.Len(t, models, 5)

	person := models[1]
	assert.Equal(t, "Person", person.Name)
	assert.Equal(t, "people", person.TableName)

	pk, err := person.GetPrimaryKey()
	require.NoError(t, err)
	assert.Equal(t, "PersonId", pk.Name)
	assert.Equal(t, "person_id", pk.GetColumnName())

	first, err := person.GetField("FirstName")
	require.NoError(t, err)
	require.NotNil(t, first.Search)
	assert.True(t, first.Search.SplitOnSpaces)
	assert.Equal(t, 2, first.OrderBy.Priority)

	gender, err := person.GetField("Gender")
	require.NoError(t, err)
	assert.Equal(t, FieldTypeEnum, gender.Type)
	assert.Equal(t, EnumValue{Name: "Female", Value: 2}, gender.Enum[2])

	rel, err := person.GetRelation("CasesAssigned")
	require.NoError(t, err)
	assert.True(t, rel.IsCollection())
	assert.Equal(t, "AssignedToId", rel.ForeignKey)

	company, err := person.GetRelation("Company")
	require.NoError(t, err)
	assert.False(t, company.IsCollection())

	_, err = person.GetRelation("Nope")
	assert.Error(t, err)
}

func TestDefaultTableName(t *testing.T) {
	models, err := Parse([]byte(`
models:
  - name: CaseProduct
    fields:
      - {name: Id, type: int, primaryKey: true}
`))
	require.NoError(t, err)
	assert.Equal(t, "case_products", models[0].TableName)
	assert.Equal(t, "companies", ModelNameToTableName("Company"))
}

func TestColumnMapping(t *testing.T) {
	assert.Equal(t, "first_name", Field{Name: "FirstName"}.GetColumnName())
	assert.Equal(t, "fname", Field{Name: "FirstName", Map: "fname"}.GetColumnName())
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr []string
	}{
		{
			name: "no primary key",
			doc: `
models:
  - name: A
    fields: [{name: Name, type: string}]`,
			wantErr: []string{"must have a primary key"},
		},
		{
			name: "unknown type and empty enum",
			doc: `
models:
  - name: A
    fields:
      - {name: Id, type: int, primaryKey: true}
      - {name: X, type: blob}
      - {name: Y, type: enum}`,
			wantErr: []string{`unknown type "blob"`, "declares no values"},
		},
		{
			name: "bad relation",
			doc: `
models:
  - name: A
    fields: [{name: Id, type: int, primaryKey: true}]
    relations:
      - {name: B, type: manyToOne, model: B, foreignKey: BId}
      - {name: Self, type: manyToOne, model: A, foreignKey: Missing}
      - {name: Many, type: manyToMany, model: A, foreignKey: Id}`,
			wantErr: []string{"unknown model B", "foreign key Missing not found", `unsupported type "manyToMany"`},
		},
		{
			name: "unknown key",
			doc: `
models:
  - name: A
    colour: red
    fields: [{name: Id, type: int, primaryKey: true}]`,
			wantErr: []string{"failed to parse schema"},
		},
		{
			name: "duplicate member",
			doc: `
models:
  - name: A
    fields:
      - {name: Id, type: int, primaryKey: true}
      - {name: id, type: int}`,
			wantErr: []string{"duplicate member id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestLoadEmpty(t *testing.T) {
	models, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, models)
}
