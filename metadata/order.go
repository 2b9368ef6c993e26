package metadata

import (
	"sort"
	"strings"

	"github.com/rediwo/redi-datasource/types"
)

// OrderSpec is one default sort key.
type OrderSpec struct {
	Path      []*Property
	Direction types.Direction
}

func (o OrderSpec) FieldName() string { return strings.Join(Names(o.Path), ".") }

// DefaultOrderBy returns the class's default sort: declared orderings by
// priority (object properties expand into the related class's own default
// sort unless they name a field), else Name, else the primary key.
func (c *Class) DefaultOrderBy() []OrderSpec {
	return c.defaultOrder
}

// DefaultOrderByClause renders DefaultOrderBy as "A ASC, B.C DESC" with
// every field prefixed by prefix.
func (c *Class) DefaultOrderByClause(prefix string) string {
	parts := make([]string, len(c.defaultOrder))
	for i, o := range c.defaultOrder {
		parts[i] = prefix + o.FieldName() + " " + string(o.Direction)
	}
	return strings.Join(parts, ", ")
}

// computeDefaultOrder runs once per class while the registry links.
// visiting guards against classes whose declared orders point at each other.
func (c *Class) computeDefaultOrder(visiting map[*Class]bool) []OrderSpec {
	if c.defaultOrder != nil {
		return c.defaultOrder
	}
	visiting[c] = true
	defer delete(visiting, c)

	var declared []*Property
	for _, p := range c.Properties {
		if p.OrderBy != nil {
			declared = append(declared, p)
		}
	}
	sort.SliceStable(declared, func(i, j int) bool {
		return declared[i].OrderBy.Priority < declared[j].OrderBy.Priority
	})

	var out []OrderSpec
	for _, p := range declared {
		decl := p.OrderBy
		switch {
		case p.IsPOCO() && decl.FieldName != "" && p.object != nil:
			if nested := p.object.PropertyByName(decl.FieldName); nested != nil {
				out = append(out, OrderSpec{Path: []*Property{p, nested}, Direction: decl.Direction})
			}
		case p.IsPOCO() && p.object != nil && !visiting[p.object]:
			for _, nested := range p.object.computeDefaultOrder(visiting) {
				out = append(out, OrderSpec{Path: extendAll(p, nested.Path), Direction: nested.Direction})
			}
		case p.IsPOCO():
			if p.object != nil && p.object.primaryKey != nil {
				out = append(out, OrderSpec{Path: []*Property{p, p.object.primaryKey}, Direction: decl.Direction})
			}
		default:
			out = append(out, OrderSpec{Path: []*Property{p}, Direction: decl.Direction})
		}
	}

	if len(out) == 0 {
		if name := c.NameProperty(); name != nil && name.Name == "Name" {
			out = []OrderSpec{{Path: []*Property{name}, Direction: types.Asc}}
		} else if c.primaryKey != nil {
			out = []OrderSpec{{Path: []*Property{c.primaryKey}, Direction: types.Asc}}
		}
	}
	if out == nil {
		out = []OrderSpec{}
	}
	c.defaultOrder = out
	return out
}

func extendAll(head *Property, tail []*Property) []*Property {
	out := make([]*Property, 0, len(tail)+1)
	out = append(out, head)
	return append(out, tail...)
}
