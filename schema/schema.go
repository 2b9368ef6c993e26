package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rediwo/redi-datasource/utils"
)

type FieldType string

const (
	FieldTypeString   FieldType = "string"
	FieldTypeInt      FieldType = "int"
	FieldTypeInt64    FieldType = "int64"
	FieldTypeFloat    FieldType = "float"
	FieldTypeDecimal  FieldType = "decimal"
	FieldTypeBool     FieldType = "bool"
	FieldTypeDate     FieldType = "date"
	FieldTypeDateTime FieldType = "datetime"
	// FieldTypeDateTimeOffset values are instants whose date-only filters
	// follow the caller's time zone.
	FieldTypeDateTimeOffset FieldType = "datetimeoffset"
	FieldTypeUUID           FieldType = "uuid"
	FieldTypeEnum           FieldType = "enum"
)

var knownFieldTypes = map[FieldType]bool{
	FieldTypeString: true, FieldTypeInt: true, FieldTypeInt64: true, FieldTypeFloat: true,
	FieldTypeDecimal: true, FieldTypeBool: true, FieldTypeDate: true, FieldTypeDateTime: true,
	FieldTypeDateTimeOffset: true, FieldTypeUUID: true, FieldTypeEnum: true,
}

// Search marks a field or relation as searchable. Method is one of
// "contains", "beginsWith" (default), "equals" or "equalsNatural".
type Search struct {
	SplitOnSpaces bool   `yaml:"splitOnSpaces"`
	Method        string `yaml:"method"`
}

// OrderBy declares a default sort. Lower priorities sort first. On a
// relation, Field names the related model's field to sort by.
type OrderBy struct {
	Priority  int    `yaml:"priority"`
	Direction string `yaml:"direction"`
	Field     string `yaml:"field"`
}

type EnumValue struct {
	Name  string `yaml:"name"`
	Value int64  `yaml:"value"`
}

type Field struct {
	Name        string      `yaml:"name"`
	Type        FieldType   `yaml:"type"`
	PrimaryKey  bool        `yaml:"primaryKey"`
	Nullable    bool        `yaml:"nullable"`
	Map         string      `yaml:"map"` // column name override
	DisplayName string      `yaml:"displayName"`
	Hidden      bool        `yaml:"hidden"`
	Search      *Search     `yaml:"search"`
	OrderBy     *OrderBy    `yaml:"orderBy"`
	Enum        []EnumValue `yaml:"enum"`
}

// GetColumnName returns the actual database column name for this field
func (f Field) GetColumnName() string {
	if f.Map != "" {
		return f.Map
	}
	return utils.ToSnakeCase(f.Name)
}

type RelationType string

const (
	// RelationManyToOne: ForeignKey is a field of this model, References a
	// field (usually the key) of the related model.
	RelationManyToOne RelationType = "manyToOne"
	// RelationOneToMany: ForeignKey is a field of the related model pointing
	// at References on this model.
	RelationOneToMany RelationType = "oneToMany"
	// RelationOneToOne behaves like manyToOne.
	RelationOneToOne RelationType = "oneToOne"
)

type Relation struct {
	Name        string       `yaml:"name"`
	Type        RelationType `yaml:"type"`
	Model       string       `yaml:"model"`
	ForeignKey  string       `yaml:"foreignKey"`
	References  string       `yaml:"references"`
	DisplayName string       `yaml:"displayName"`
	Hidden      bool         `yaml:"hidden"`
	AutoInclude *bool        `yaml:"autoInclude"`
	Search      *Search      `yaml:"search"`
	OrderBy     *OrderBy     `yaml:"orderBy"`
}

// IsCollection reports whether the relation yields many related records.
func (r Relation) IsCollection() bool {
	return r.Type == RelationOneToMany
}

type Schema struct {
	Name        string     `yaml:"name"`
	TableName   string     `yaml:"table"`
	DisplayName string     `yaml:"displayName"`
	Fields      []Field    `yaml:"fields"`
	Relations   []Relation `yaml:"relations"`
}

// ModelNameToTableName converts model name to default table name (pluralized, snake_case)
func ModelNameToTableName(modelName string) string {
	return utils.Pluralize(utils.ToSnakeCase(modelName))
}

func (s *Schema) GetField(name string) (*Field, error) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i], nil
		}
	}
	return nil, fmt.Errorf("field %s not found", name)
}

func (s *Schema) GetPrimaryKey() (*Field, error) {
	for i := range s.Fields {
		if s.Fields[i].PrimaryKey {
			return &s.Fields[i], nil
		}
	}
	return nil, fmt.Errorf("no primary key found")
}

func (s *Schema) GetRelation(name string) (*Relation, error) {
	for i := range s.Relations {
		if s.Relations[i].Name == name {
			return &s.Relations[i], nil
		}
	}
	return nil, fmt.Errorf("relation %s not found", name)
}

// Validate checks the model on its own; ValidateRelations checks references
// to other models.
func (s *Schema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("schema name cannot be empty")
	}
	if s.TableName == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("schema must have at least one field")
	}

	var errs []error
	seen := map[string]bool{}
	keys := 0
	for _, f := range s.Fields {
		if f.Name == "" {
			errs = append(errs, fmt.Errorf("field name cannot be empty"))
			continue
		}
		if seen[strings.ToLower(f.Name)] {
			errs = append(errs, fmt.Errorf("duplicate member %s", f.Name))
		}
		seen[strings.ToLower(f.Name)] = true
		if !knownFieldTypes[f.Type] {
			errs = append(errs, fmt.Errorf("field %s has unknown type %q", f.Name, f.Type))
		}
		if f.Type == FieldTypeEnum && len(f.Enum) == 0 {
			errs = append(errs, fmt.Errorf("enum field %s declares no values", f.Name))
		}
		if f.PrimaryKey {
			keys++
		}
	}
	switch {
	case keys == 0:
		errs = append(errs, fmt.Errorf("schema must have a primary key"))
	case keys > 1:
		errs = append(errs, fmt.Errorf("schema can only have one primary key"))
	}

	for _, r := range s.Relations {
		if seen[strings.ToLower(r.Name)] {
			errs = append(errs, fmt.Errorf("duplicate member %s", r.Name))
		}
		seen[strings.ToLower(r.Name)] = true
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("model %s: %w", s.Name, err)
	}
	return nil
}

// ValidateRelations checks that every relation targets a known model and
// that its key fields exist on the right side.
func (s *Schema) ValidateRelations(schemas map[string]*Schema) error {
	var errs []error
	for _, r := range s.Relations {
		related, ok := schemas[r.Model]
		if !ok {
			errs = append(errs, fmt.Errorf("relation %s references unknown model %s", r.Name, r.Model))
			continue
		}
		owner, target := s, related
		switch r.Type {
		case RelationManyToOne, RelationOneToOne:
		case RelationOneToMany:
			owner, target = related, s
		default:
			errs = append(errs, fmt.Errorf("relation %s has unsupported type %q", r.Name, r.Type))
			continue
		}
		if _, err := owner.GetField(r.ForeignKey); err != nil {
			errs = append(errs, fmt.Errorf("relation %s: foreign key %s not found on %s", r.Name, r.ForeignKey, owner.Name))
		}
		if r.References != "" {
			if _, err := target.GetField(r.References); err != nil {
				errs = append(errs, fmt.Errorf("relation %s: referenced field %s not found on %s", r.Name, r.References, target.Name))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("model %s: %w", s.Name, err)
	}
	return nil
}
