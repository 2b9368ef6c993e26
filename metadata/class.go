package metadata

import (
	"reflect"
	"strings"
)

// Class describes a model: its properties in declaration order and the
// derived search and ordering defaults. A Class is immutable once its
// registry has been built.
type Class struct {
	Name        string
	DisplayName string
	Table       string
	Properties  []*Property
	GoType      reflect.Type

	primaryKey   *Property
	defaultOrder []OrderSpec
}

func (c *Class) PrimaryKey() *Property { return c.primaryKey }

// PropertyByName finds a property by exact name, then case-insensitively.
func (c *Class) PropertyByName(name string) *Property {
	for _, p := range c.Properties {
		if p.Name == name {
			return p
		}
	}
	for _, p := range c.Properties {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

// ClientPropertyByName is PropertyByName restricted to client properties.
func (c *Class) ClientPropertyByName(name string) *Property {
	if p := c.PropertyByName(name); p != nil && p.IsClientProperty() {
		return p
	}
	return nil
}

// PropertyByNameOrDisplay matches a client property's name or display name,
// ignoring case.
func (c *Class) PropertyByNameOrDisplay(name string) *Property {
	for _, p := range c.ClientProperties() {
		if strings.EqualFold(p.Name, name) || strings.EqualFold(p.DisplayName, name) {
			return p
		}
	}
	return nil
}

// ClientProperties returns the properties that are not hidden.
func (c *Class) ClientProperties() []*Property {
	out := make([]*Property, 0, len(c.Properties))
	for _, p := range c.Properties {
		if p.IsClientProperty() {
			out = append(out, p)
		}
	}
	return out
}

// NameProperty returns the client scalar property called Name, or
// {Class}Name, if either exists.
func (c *Class) NameProperty() *Property {
	for _, name := range []string{"Name", c.Name + "Name"} {
		if p := c.ClientPropertyByName(name); p != nil && !p.IsPOCO() {
			return p
		}
	}
	return nil
}

// ResolvePath walks a dotted path through object properties. It returns the
// properties visited, or nil when a segment does not resolve to a client
// property or a scalar appears before the last segment.
func (c *Class) ResolvePath(path []string) []*Property {
	var out []*Property
	cur := c
	for i, name := range path {
		if cur == nil {
			return nil
		}
		p := cur.ClientPropertyByName(name)
		if p == nil {
			return nil
		}
		out = append(out, p)
		if i < len(path)-1 {
			if !p.IsPOCO() {
				return nil
			}
			cur = p.Object()
		}
	}
	return out
}

// AutoIncludes returns the object properties loaded when a caller does not
// opt out of default includes.
func (c *Class) AutoIncludes() []*Property {
	var out []*Property
	for _, p := range c.ClientProperties() {
		if p.IsPOCO() && p.AutoInclude {
			out = append(out, p)
		}
	}
	return out
}

// Names returns the names of a property path.
func Names(path []*Property) []string {
	out := make([]string, len(path))
	for i, p := range path {
		out[i] = p.Name
	}
	return out
}
