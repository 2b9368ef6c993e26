package metadata

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rediwo/redi-datasource/schema"
	"github.com/rediwo/redi-datasource/types"
	"github.com/rediwo/redi-datasource/utils"
)

var (
	timeType       = reflect.TypeFor[time.Time]()
	uuidType       = reflect.TypeFor[uuid.UUID]()
	enumeratorType = reflect.TypeFor[Enumerator]()
)

// ReflectionBackend describes Go structs. Each exported field becomes a
// property; the `db` tag names its column and the `list` tag carries
// comma-separated options:
//
//	key                   primary key (otherwise ID, Id or {Type}Id)
//	search                searchable
//	split                 searchable, split on spaces
//	method=contains       search method (beginsWith, contains, equals, equalsNatural)
//	order=1               default sort priority
//	desc                  default sort descending
//	orderField=Name       related field to sort by
//	display=E-mail        display name
//	hidden                not visible to clients
//	offset                time.Time holds an instant rather than a date
//	autoinclude           include a collection by default
//	noautoinclude         do not include a reference by default
//	fk=CompanyId          relation foreign key
//	ref=CompanyId         relation referenced key
//	enum=Open:0|Closed:1  enum values for a plain integer field
//
// A `list:"-"` tag skips the field.
type ReflectionBackend struct {
	models []reflect.Type
}

// NewReflectionBackend registers struct values or pointers to structs.
func NewReflectionBackend(models ...any) *ReflectionBackend {
	b := &ReflectionBackend{}
	for _, m := range models {
		t := reflect.TypeOf(m)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		b.models = append(b.models, t)
	}
	return b
}

type tableNamer interface {
	TableName() string
}

func (b *ReflectionBackend) Describe() ([]*Class, error) {
	out := make([]*Class, 0, len(b.models))
	for _, t := range b.models {
		if t.Kind() != reflect.Struct {
			return nil, fmt.Errorf("model %v is not a struct", t)
		}
		c, err := describeStruct(t)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func describeStruct(t reflect.Type) (*Class, error) {
	c := &Class{
		Name:   t.Name(),
		Table:  schema.ModelNameToTableName(t.Name()),
		GoType: t,
	}
	if n, ok := reflect.New(t).Interface().(tableNamer); ok {
		c.Table = n.TableName()
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("list") == "-" {
			continue
		}
		p, err := describeField(f)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", c.Name, f.Name, err)
		}
		c.Properties = append(c.Properties, p)
	}

	hasKey := false
	for _, p := range c.Properties {
		hasKey = hasKey || p.IsPrimaryKey
	}
	if !hasKey {
		for _, name := range []string{"ID", "Id", c.Name + "Id", c.Name + "ID"} {
			if p := c.PropertyByName(name); p != nil {
				p.IsPrimaryKey = true
				break
			}
		}
	}
	return c, nil
}

func describeField(f reflect.StructField) (*Property, error) {
	p := &Property{
		Name:   f.Name,
		Column: utils.ToSnakeCase(f.Name),
		GoType: f.Type,
	}
	if col, _, _ := strings.Cut(f.Tag.Get("db"), ","); col != "" && col != "-" {
		p.Column = col
	}

	opts := parseListTag(f.Tag.Get("list"))
	t := f.Type
	if t.Kind() == reflect.Pointer {
		p.Nullable = true
		t = t.Elem()
	}
	if err := classify(p, t, opts); err != nil {
		return nil, err
	}

	_, p.IsPrimaryKey = opts["key"]
	_, p.Hidden = opts["hidden"]
	p.DisplayName = opts["display"]

	_, split := opts["split"]
	_, search := opts["search"]
	p.Searchable = search || split
	p.SplitOnSpaces = split
	if m, ok := opts["method"]; ok {
		method, valid := ParseSearchMethod(m)
		if !valid {
			return nil, fmt.Errorf("unknown search method %q", m)
		}
		p.SearchMethod = method
		p.Searchable = true
	}

	if v, ok := opts["order"]; ok {
		priority, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid order priority %q", v)
		}
		p.OrderBy = &OrderByDeclaration{Priority: priority, Direction: types.Asc, FieldName: opts["orderField"]}
		if _, desc := opts["desc"]; desc {
			p.OrderBy.Direction = types.Desc
		}
	}

	if p.IsPOCO() {
		p.ForeignKey = opts["fk"]
		p.References = opts["ref"]
		p.AutoInclude = !p.IsCollection
		if _, ok := opts["autoinclude"]; ok {
			p.AutoInclude = true
		}
		if _, ok := opts["noautoinclude"]; ok {
			p.AutoInclude = false
		}
	}
	return p, nil
}

// classify sets Kind from the field's (non-pointer) type.
func classify(p *Property, t reflect.Type, opts map[string]string) error {
	switch {
	case t == timeType:
		p.Kind = KindDate
		if _, ok := opts["offset"]; ok {
			p.Kind = KindDateOffset
		}
	case t == uuidType:
		p.Kind = KindUUID
	case t.Implements(enumeratorType) && isInteger(t.Kind()):
		p.Kind = KindEnum
		p.EnumValues = reflect.Zero(t).Interface().(Enumerator).EnumValues()
	case opts["enum"] != "" && isInteger(t.Kind()):
		p.Kind = KindEnum
		values, err := parseEnumOption(opts["enum"])
		if err != nil {
			return err
		}
		p.EnumValues = values
	case t.Kind() == reflect.String:
		p.Kind = KindString
	case t.Kind() == reflect.Bool:
		p.Kind = KindBool
	case isInteger(t.Kind()):
		p.Kind = KindNumber
	case t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64:
		p.Kind = KindNumber
		p.Float = true
	case t.Kind() == reflect.Struct:
		p.Kind = KindObject
		p.ObjectName = t.Name()
	case t.Kind() == reflect.Slice && structElem(t.Elem()) != nil:
		p.Kind = KindObject
		p.IsCollection = true
		p.ObjectName = structElem(t.Elem()).Name()
	default:
		return fmt.Errorf("unsupported field type %v", t)
	}
	return nil
}

func structElem(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct && t != timeType {
		return t
	}
	return nil
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func parseListTag(tag string) map[string]string {
	opts := make(map[string]string)
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		opts[k] = v
	}
	return opts
}

// parseEnumOption reads "Open:0|Closed:1".
func parseEnumOption(s string) ([]EnumValue, error) {
	var out []EnumValue
	for _, part := range strings.Split(s, "|") {
		name, code, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("invalid enum value %q", part)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(code), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid enum value %q", part)
		}
		out = append(out, EnumValue{Name: strings.TrimSpace(name), Value: n})
	}
	return out, nil
}
