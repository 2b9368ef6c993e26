package metadata

import (
	"reflect"
	"strings"
	"time"

	"github.com/rediwo/redi-datasource/types"
	"github.com/rediwo/redi-datasource/utils"
)

// OrderByDeclaration is a default sort declared on a property. FieldName
// names the related class's property to sort by when the declaring
// property is an object.
type OrderByDeclaration struct {
	Priority  int
	Direction types.Direction
	FieldName string
}

// Property describes one member of a class. Descriptors are shared by every
// request once the registry is built and must not be modified afterwards.
type Property struct {
	Name        string
	DisplayName string
	Column      string
	Kind        Kind
	Float       bool
	Nullable    bool

	IsPrimaryKey bool
	Hidden       bool

	Searchable    bool
	SplitOnSpaces bool
	SearchMethod  SearchMethod

	OrderBy *OrderByDeclaration

	EnumValues []EnumValue

	// Object properties
	ObjectName   string
	IsCollection bool
	AutoInclude  bool
	ForeignKey   string
	References   string

	GoType reflect.Type

	parent *Class
	object *Class
}

// Object returns the related class of an object property.
func (p *Property) Object() *Class { return p.object }

// Parent returns the class that declares p.
func (p *Property) Parent() *Class { return p.parent }

func (p *Property) IsPOCO() bool { return p.Kind == KindObject }

// IsClientProperty reports whether clients may filter, sort and search on p.
func (p *Property) IsClientProperty() bool { return !p.Hidden }

// EnumValue resolves a declared code or name (case-insensitive) to an enum
// value. Without declared values any integer is accepted.
func (p *Property) EnumValue(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	n, numeric := utils.ParseInt(s)
	if len(p.EnumValues) == 0 {
		return n, numeric
	}
	for _, v := range p.EnumValues {
		if (numeric && v.Value == n) || strings.EqualFold(v.Name, s) {
			return v.Value, true
		}
	}
	return 0, false
}

// Convert turns request text into a value comparable with p's stored values.
// Dates are parsed in loc.
func (p *Property) Convert(s string, loc *time.Location) (any, bool) {
	switch p.Kind {
	case KindString:
		return s, true
	case KindNumber:
		if p.Float {
			return utils.ParseFloat(s)
		}
		return utils.ParseInt(s)
	case KindBool:
		return utils.ParseBool(s)
	case KindEnum:
		return p.EnumValue(s)
	case KindUUID:
		id, ok := utils.ParseUUID(s)
		if !ok {
			return nil, false
		}
		return id, true
	case KindDate, KindDateOffset:
		t, ok := utils.ParseDate(s, loc)
		if !ok {
			return nil, false
		}
		if p.Kind == KindDateOffset {
			t = t.UTC()
		}
		return t, true
	}
	return nil, false
}

// displayName splits a PascalCase member name into words.
func displayName(name string) string {
	words := strings.Split(utils.ToSnakeCase(name), "_")
	for i, w := range words {
		words[i] = utils.ToPascalCase(w)
	}
	return strings.Join(words, " ")
}
