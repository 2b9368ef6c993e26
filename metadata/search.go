package metadata

// SearchPath is a searchable scalar reached through zero or more object
// properties. The last element is the scalar.
type SearchPath struct {
	Path []*Property
}

func (s SearchPath) Leaf() *Property { return s.Path[len(s.Path)-1] }

func (s SearchPath) Names() []string { return Names(s.Path) }

// DefaultSearchDepth is how many object hops a class search follows.
const DefaultSearchDepth = 2

// hard stop for classes that reference each other
const maxSearchRecursion = 3

// SearchProperties lists what a free-text search on c looks at: every
// searchable property, expanded through objects up to maxDepth hops. When
// nothing is flagged searchable, the first of Name, {Class}Name and the
// primary key is used.
func (c *Class) SearchProperties(maxDepth int) []SearchPath {
	return c.searchProperties(nil, 0, maxDepth)
}

func (c *Class) searchProperties(prefix []*Property, depth, maxDepth int) []SearchPath {
	if depth == maxSearchRecursion {
		return nil
	}

	var out []SearchPath
	flagged := false
	for _, p := range c.ClientProperties() {
		if !p.Searchable {
			continue
		}
		flagged = true
		out = append(out, p.searchPaths(prefix, depth, maxDepth, false)...)
	}
	if flagged {
		return out
	}

	fallback := c.NameProperty()
	if fallback == nil && c.primaryKey != nil && c.primaryKey.IsClientProperty() {
		fallback = c.primaryKey
	}
	if fallback == nil {
		return nil
	}
	return []SearchPath{{Path: extend(prefix, fallback)}}
}

// SearchProperties lists the scalars a search on this one property looks
// at. force searches p even when it is not flagged searchable.
func (p *Property) SearchProperties(maxDepth int, force bool) []SearchPath {
	return p.searchPaths(nil, 0, maxDepth, force)
}

func (p *Property) searchPaths(prefix []*Property, depth, maxDepth int, force bool) []SearchPath {
	if !force && !p.Searchable {
		return nil
	}
	path := extend(prefix, p)
	if !p.IsPOCO() {
		return []SearchPath{{Path: path}}
	}
	if depth >= maxDepth || p.object == nil {
		return nil
	}
	return p.object.searchProperties(path, depth+1, maxDepth)
}

func extend(prefix []*Property, p *Property) []*Property {
	out := make([]*Property, len(prefix), len(prefix)+1)
	copy(out, prefix)
	return append(out, p)
}
