package metadata

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rediwo/redi-datasource/schema"
	"github.com/rediwo/redi-datasource/types"
)

type status int

func (status) EnumValues() []EnumValue {
	return []EnumValue{{Name: "Open", Value: 0}, {Name: "Closed", Value: 1}}
}

type company struct {
	CompanyId int
	Name      string `list:"search,method=contains"`
	City      string
	Employees []*person `list:"fk=CompanyId"`
}

func (company) TableName() string { return "companies" }

type person struct {
	PersonId     int    `list:"key"`
	FirstName    string `list:"split,order=2"`
	LastName     string `list:"split,order=1"`
	Email        string `db:"email_address" list:"method=contains,display=E-mail"`
	BirthDate    *time.Time
	LastSeen     time.Time `list:"offset"`
	Token        uuid.UUID
	Status       status
	Rank         int `list:"enum=Low:1|High:2"`
	Score        float64
	CompanyId    int
	Company      *company
	PasswordHash string `list:"hidden"`
	Scratch      string `list:"-"`
}

type widget struct {
	ID    int
	Label string
}

func buildReflection(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry(NewReflectionBackend(company{}, &person{}, widget{}))
	require.NoError(t, r.Build())
	return r
}

func TestReflectionBackend(t *testing.T) {
	r := buildReflection(t)

	p, err := ClassOf[person](r)
	require.NoError(t, err)
	assert.Equal(t, "people", p.Table)
	assert.Equal(t, "PersonId", p.PrimaryKey().Name)
	assert.Nil(t, p.PropertyByName("Scratch"))

	tests := []struct {
		name     string
		kind     Kind
		nullable bool
	}{
		{"FirstName", KindString, false},
		{"BirthDate", KindDate, true},
		{"LastSeen", KindDateOffset, false},
		{"Token", KindUUID, false},
		{"Status", KindEnum, false},
		{"Rank", KindEnum, false},
		{"Score", KindNumber, false},
		{"Company", KindObject, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prop := p.PropertyByName(tt.name)
			require.NotNil(t, prop)
			assert.Equal(t, tt.kind, prop.Kind)
			assert.Equal(t, tt.nullable, prop.Nullable)
			assert.Same(t, p, prop.Parent())
		})
	}

	email := p.PropertyByName("email")
	require.NotNil(t, email)
	assert.Equal(t, "email_address", email.Column)
	assert.Equal(t, "E-mail", email.DisplayName)
	assert.Equal(t, SearchContains, email.SearchMethod)
	assert.True(t, email.Searchable)
	assert.False(t, email.SplitOnSpaces)

	assert.Equal(t, "Birth Date", p.PropertyByName("BirthDate").DisplayName)
	assert.True(t, p.PropertyByName("Score").Float)
	assert.Equal(t, []EnumValue{{Name: "Low", Value: 1}, {Name: "High", Value: 2}}, p.PropertyByName("Rank").EnumValues)

	c, err := r.Class("company")
	require.NoError(t, err)
	assert.Equal(t, "companies", c.Table)
	assert.Equal(t, "CompanyId", c.PrimaryKey().Name)

	emp := c.PropertyByName("Employees")
	assert.True(t, emp.IsCollection)
	assert.False(t, emp.AutoInclude)
	assert.Same(t, p, emp.Object())
	assert.Equal(t, "CompanyId", emp.ForeignKey)
	assert.Equal(t, "CompanyId", emp.References)

	ref := p.PropertyByName("Company")
	assert.True(t, ref.AutoInclude)
	assert.Equal(t, "CompanyId", ref.ForeignKey)
	assert.Equal(t, "CompanyId", ref.References)

	w, err := r.Class("widget")
	require.NoError(t, err)
	assert.Equal(t, "ID", w.PrimaryKey().Name)
}

func TestRegistryUnknownClass(t *testing.T) {
	type orphan struct {
		ID     int
		Parent *widget
	}
	r := NewRegistry(NewReflectionBackend(orphan{}))
	err := r.Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownClass)

	_, err = NewRegistry().Class("Nope")
	assert.ErrorIs(t, err, ErrUnknownClass)
}

func loadPeople(t *testing.T) *Registry {
	t.Helper()
	schemas, err := schema.LoadFile("../schema/testdata/people.yaml")
	require.NoError(t, err)
	r := NewRegistry(NewSchemaBackend(schemas...))
	require.NoError(t, r.Build())
	return r
}

func TestSchemaBackend(t *testing.T) {
	r := loadPeople(t)

	p, err := r.Class("Person")
	require.NoError(t, err)
	assert.Nil(t, p.GoType)
	assert.Equal(t, "PersonId", p.PrimaryKey().Name)
	assert.Equal(t, "first_name", p.PropertyByName("FirstName").Column)
	assert.True(t, p.PropertyByName("FirstName").SplitOnSpaces)
	assert.Equal(t, KindDateOffset, p.PropertyByName("LastBath").Kind)
	assert.Equal(t, KindEnum, p.PropertyByName("Gender").Kind)

	assert.Nil(t, p.PropertyByNameOrDisplay("PasswordHash"))
	assert.NotNil(t, p.PropertyByName("PasswordHash"))
	assert.Equal(t, "Email", p.PropertyByNameOrDisplay("e-mail").Name)
	assert.Len(t, p.ClientProperties(), len(p.Properties)-1)

	cases := p.PropertyByName("CasesAssigned")
	assert.True(t, cases.IsCollection)
	assert.False(t, cases.AutoInclude)
	assert.Equal(t, "Case", cases.Object().Name)
	assert.True(t, p.PropertyByName("Company").AutoInclude)

	assert.Equal(t, []string{"Company", "Name"}, Names(p.ResolvePath([]string{"company", "name"})))
	assert.Nil(t, p.ResolvePath([]string{"FirstName", "Name"}))
	assert.Nil(t, p.ResolvePath([]string{"PasswordHash"}))
}

func TestSchemaBackendBind(t *testing.T) {
	type Product struct {
		ProductId int
		Name      string
	}
	schemas, err := schema.LoadFile("../schema/testdata/people.yaml")
	require.NoError(t, err)
	r := NewRegistry(NewSchemaBackend(schemas...).Bind(Product{}))
	require.NoError(t, r.Build())

	c, err := ClassOf[*Product](r)
	require.NoError(t, err)
	assert.Equal(t, "products", c.Table)
}

func TestNameProperty(t *testing.T) {
	r := loadPeople(t)

	c, _ := r.Class("Company")
	assert.Equal(t, "Name", c.NameProperty().Name)

	p, _ := r.Class("Person")
	assert.Nil(t, p.NameProperty())

	type Tag struct {
		ID      int
		TagName string
	}
	r2 := NewRegistry(NewReflectionBackend(Tag{}))
	require.NoError(t, r2.Build())
	tag, _ := r2.Class("Tag")
	assert.Equal(t, "TagName", tag.NameProperty().Name)
}

func TestDefaultOrderBy(t *testing.T) {
	r := loadPeople(t)

	t.Run("declared priorities", func(t *testing.T) {
		p, _ := r.Class("Person")
		assert.Equal(t, "LastName ASC, FirstName ASC", p.DefaultOrderByClause(""))
	})

	t.Run("descending declaration", func(t *testing.T) {
		c, _ := r.Class("Case")
		assert.Equal(t, "OpenedAt DESC", c.DefaultOrderByClause(""))
		order := c.DefaultOrderBy()
		require.Len(t, order, 1)
		assert.Equal(t, types.Desc, order[0].Direction)
	})

	t.Run("falls back to Name", func(t *testing.T) {
		c, _ := r.Class("Company")
		assert.Equal(t, "Company.Name ASC", c.DefaultOrderByClause("Company."))
	})

	t.Run("falls back to primary key", func(t *testing.T) {
		c, _ := r.Class("CaseProduct")
		assert.Equal(t, "CaseProductId ASC", c.DefaultOrderByClause(""))
	})
}

func TestDefaultOrderByObjectExpansion(t *testing.T) {
	type Owner struct {
		ID       int
		LastName string `list:"order=1"`
		Nickname string
	}
	type Pet struct {
		ID    int
		Owner *Owner `list:"order=1,desc"`
		Name  string
	}
	type Visit struct {
		ID  int
		Pet *Pet `list:"order=1,orderField=Name"`
	}
	r := NewRegistry(NewReflectionBackend(Owner{}, Pet{}, Visit{}))
	require.NoError(t, r.Build())

	pet, _ := ClassOf[Pet](r)
	assert.Equal(t, "Owner.LastName ASC", pet.DefaultOrderByClause(""))

	visit, _ := ClassOf[Visit](r)
	assert.Equal(t, "Pet.Name ASC", visit.DefaultOrderByClause(""))
}

func TestDefaultOrderByCycle(t *testing.T) {
	schemas, err := schema.Parse([]byte(`
models:
  - name: A
    fields:
      - {name: Id, type: int, primaryKey: true}
      - {name: BId, type: int}
    relations:
      - {name: B, type: manyToOne, model: B, foreignKey: BId, orderBy: {priority: 1}}
  - name: B
    fields:
      - {name: Id, type: int, primaryKey: true}
      - {name: AId, type: int}
    relations:
      - {name: A, type: manyToOne, model: A, foreignKey: AId, orderBy: {priority: 1}}
`))
	require.NoError(t, err)
	r := NewRegistry(NewSchemaBackend(schemas...))
	require.NoError(t, r.Build())

	a, _ := r.Class("A")
	assert.NotEmpty(t, a.DefaultOrderBy())
}

func TestSearchProperties(t *testing.T) {
	r := loadPeople(t)

	p, _ := r.Class("Person")
	var names []string
	for _, sp := range p.SearchProperties(DefaultSearchDepth) {
		names = append(names, sp.Leaf().Name)
	}
	assert.Equal(t, []string{"FirstName", "LastName", "Email"}, names)

	// Not searchable, so forcing is needed; depth 1 reaches Company's fields.
	company := p.PropertyByName("Company")
	assert.Empty(t, company.SearchProperties(1, false))
	paths := company.SearchProperties(1, true)
	require.Len(t, paths, 1)
	assert.Equal(t, []string{"Company", "Name"}, paths[0].Names())

	// Depth 0 never follows objects.
	assert.Empty(t, company.SearchProperties(0, true))

	// No searchable fields: Name is used, then the key.
	prod, _ := r.Class("Product")
	require.Len(t, prod.SearchProperties(DefaultSearchDepth), 1)
	assert.Equal(t, "Name", prod.SearchProperties(DefaultSearchDepth)[0].Leaf().Name)

	cp, _ := r.Class("CaseProduct")
	assert.Equal(t, "CaseProductId", cp.SearchProperties(DefaultSearchDepth)[0].Leaf().Name)
}

func TestConvert(t *testing.T) {
	r := buildReflection(t)
	p, _ := ClassOf[person](r)
	loc := time.FixedZone("UTC-5", -5*3600)

	v, ok := p.PropertyByName("Status").Convert("closed", loc)
	assert.True(t, ok)
	assert.Equal(t, int64(1), v)

	v, ok = p.PropertyByName("Score").Convert("1.5", loc)
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)

	_, ok = p.PropertyByName("CompanyId").Convert("x", loc)
	assert.False(t, ok)

	v, ok = p.PropertyByName("LastSeen").Convert("2024-03-01", loc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 5, 0, 0, 0, time.UTC), v)
	assert.Equal(t, time.UTC, v.(time.Time).Location())
}

func TestEnumValue(t *testing.T) {
	p := &Property{Kind: KindEnum, EnumValues: []EnumValue{{Name: "Open", Value: 0}, {Name: "Cancelled", Value: 99}}}

	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"99", 99, true},
		{" cancelled ", 99, true},
		{"OPEN", 0, true},
		{"7", 0, false},
		{"Bogus", 0, false},
	}
	for _, tt := range tests {
		got, ok := p.EnumValue(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	undeclared := &Property{Kind: KindEnum}
	got, ok := undeclared.EnumValue("7")
	assert.True(t, ok)
	assert.Equal(t, int64(7), got)
	_, ok = undeclared.EnumValue("seven")
	assert.False(t, ok)
}

func TestClassFor(t *testing.T) {
	r := buildReflection(t)

	c, err := r.ClassFor(reflect.TypeOf(&person{}))
	require.NoError(t, err)
	assert.Equal(t, "person", c.Name)

	_, err = r.ClassFor(reflect.TypeOf(0))
	assert.ErrorIs(t, err, ErrUnknownClass)
}
