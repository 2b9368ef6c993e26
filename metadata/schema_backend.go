package metadata

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/rediwo/redi-datasource/schema"
	"github.com/rediwo/redi-datasource/types"
)

// SchemaBackend describes models declared in schema files. Records of
// these classes are maps keyed by property name unless a Go type is bound
// with Bind.
type SchemaBackend struct {
	schemas []*schema.Schema
	types   map[string]reflect.Type
}

func NewSchemaBackend(schemas ...*schema.Schema) *SchemaBackend {
	return &SchemaBackend{schemas: schemas, types: make(map[string]reflect.Type)}
}

// Bind associates the Go type of model with the schema of the same name,
// so the registry can resolve the class from the type.
func (b *SchemaBackend) Bind(model any) *SchemaBackend {
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	b.types[t.Name()] = t
	return b
}

func (b *SchemaBackend) Describe() ([]*Class, error) {
	out := make([]*Class, 0, len(b.schemas))
	for _, s := range b.schemas {
		c := &Class{
			Name:        s.Name,
			DisplayName: s.DisplayName,
			Table:       s.TableName,
			GoType:      b.types[s.Name],
		}
		for _, f := range s.Fields {
			p, err := fieldProperty(f)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", s.Name, f.Name, err)
			}
			c.Properties = append(c.Properties, p)
		}
		for _, r := range s.Relations {
			p, err := relationProperty(r)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", s.Name, r.Name, err)
			}
			c.Properties = append(c.Properties, p)
		}
		out = append(out, c)
	}
	return out, nil
}

func fieldProperty(f schema.Field) (*Property, error) {
	p := &Property{
		Name:         f.Name,
		DisplayName:  f.DisplayName,
		Column:       f.GetColumnName(),
		Nullable:     f.Nullable,
		IsPrimaryKey: f.PrimaryKey,
		Hidden:       f.Hidden,
	}
	switch f.Type {
	case schema.FieldTypeString:
		p.Kind = KindString
	case schema.FieldTypeInt, schema.FieldTypeInt64:
		p.Kind = KindNumber
	case schema.FieldTypeFloat, schema.FieldTypeDecimal:
		p.Kind = KindNumber
		p.Float = true
	case schema.FieldTypeBool:
		p.Kind = KindBool
	case schema.FieldTypeDate, schema.FieldTypeDateTime:
		p.Kind = KindDate
	case schema.FieldTypeDateTimeOffset:
		p.Kind = KindDateOffset
	case schema.FieldTypeUUID:
		p.Kind = KindUUID
	case schema.FieldTypeEnum:
		p.Kind = KindEnum
		for _, v := range f.Enum {
			p.EnumValues = append(p.EnumValues, EnumValue{Name: v.Name, Value: v.Value})
		}
	default:
		return nil, fmt.Errorf("unknown type %q", f.Type)
	}
	if err := applyAnnotations(p, f.Search, f.OrderBy); err != nil {
		return nil, err
	}
	return p, nil
}

func relationProperty(r schema.Relation) (*Property, error) {
	p := &Property{
		Name:         r.Name,
		DisplayName:  r.DisplayName,
		Kind:         KindObject,
		ObjectName:   r.Model,
		IsCollection: r.IsCollection(),
		Hidden:       r.Hidden,
		ForeignKey:   r.ForeignKey,
		References:   r.References,
		Nullable:     true,
	}
	p.AutoInclude = !p.IsCollection
	if r.AutoInclude != nil {
		p.AutoInclude = *r.AutoInclude
	}
	if err := applyAnnotations(p, r.Search, r.OrderBy); err != nil {
		return nil, err
	}
	return p, nil
}

func applyAnnotations(p *Property, search *schema.Search, order *schema.OrderBy) error {
	if search != nil {
		method, ok := ParseSearchMethod(search.Method)
		if !ok {
			return fmt.Errorf("unknown search method %q", search.Method)
		}
		p.Searchable = true
		p.SplitOnSpaces = search.SplitOnSpaces
		p.SearchMethod = method
	}
	if order != nil {
		dir, ok := types.ParseDirection(order.Direction)
		if !ok {
			return fmt.Errorf("unknown order direction %q", order.Direction)
		}
		p.OrderBy = &OrderByDeclaration{Priority: order.Priority, Direction: dir, FieldName: strings.TrimSpace(order.Field)}
	}
	return nil
}
