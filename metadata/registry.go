package metadata

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// ErrUnknownClass is returned when a name or Go type has no registered class.
var ErrUnknownClass = errors.New("unknown class")

// Backend supplies class descriptors. Relations are left unlinked; the
// registry resolves ObjectName references when it is built.
type Backend interface {
	Describe() ([]*Class, error)
}

// Registry holds every class descriptor. Build it once at startup; after
// Build returns it is read-only and safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	backends []Backend
	classes  map[string]*Class
	byType   map[reflect.Type]*Class
	built    bool
}

func NewRegistry(backends ...Backend) *Registry {
	return &Registry{
		backends: backends,
		classes:  make(map[string]*Class),
		byType:   make(map[reflect.Type]*Class),
	}
}

// Build describes every backend, links relations and computes the default
// orderings. All link failures are reported together.
func (r *Registry) Build() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.built {
		return nil
	}

	for _, b := range r.backends {
		classes, err := b.Describe()
		if err != nil {
			return err
		}
		for _, c := range classes {
			if _, exists := r.classes[c.Name]; exists {
				return fmt.Errorf("class %s registered twice", c.Name)
			}
			r.classes[c.Name] = c
			if c.GoType != nil {
				r.byType[c.GoType] = c
			}
		}
	}

	for _, c := range r.classes {
		prepare(c)
	}
	var errs []error
	for _, c := range r.sorted() {
		if err := r.link(c); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	for _, c := range r.sorted() {
		c.computeDefaultOrder(make(map[*Class]bool))
	}
	r.built = true
	return nil
}

func prepare(c *Class) {
	if c.DisplayName == "" {
		c.DisplayName = displayName(c.Name)
	}
	for _, p := range c.Properties {
		p.parent = c
		if p.IsPrimaryKey && c.primaryKey == nil {
			c.primaryKey = p
		}
		if p.DisplayName == "" {
			p.DisplayName = displayName(p.Name)
		}
	}
}

func (r *Registry) link(c *Class) error {
	var errs []error
	for _, p := range c.Properties {
		if !p.IsPOCO() {
			continue
		}
		target, ok := r.classes[p.ObjectName]
		if !ok {
			errs = append(errs, fmt.Errorf("%s.%s: %w %q", c.Name, p.Name, ErrUnknownClass, p.ObjectName))
			continue
		}
		p.object = target
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	// Relation keys: a reference is held on the declaring class, a
	// collection is keyed by a column on the related class.
	for _, p := range c.Properties {
		if !p.IsPOCO() {
			continue
		}
		if p.IsCollection {
			if p.ForeignKey == "" {
				p.ForeignKey = c.Name + "Id"
			}
			if p.References == "" && c.primaryKey != nil {
				p.References = c.primaryKey.Name
			}
		} else {
			if p.ForeignKey == "" {
				p.ForeignKey = p.Name + "Id"
			}
			if p.References == "" && p.object.primaryKey != nil {
				p.References = p.object.primaryKey.Name
			}
		}
	}
	return nil
}

func (r *Registry) sorted() []*Class {
	out := make([]*Class, 0, len(r.classes))
	for _, c := range r.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Class looks a class up by name.
func (r *Registry) Class(name string) (*Class, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.classes[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownClass, name)
}

// ClassFor looks a class up by Go type. Pointer types resolve to their
// element type.
func (r *Registry) ClassFor(t reflect.Type) (*Class, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.byType[t]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w for type %v", ErrUnknownClass, t)
}

// Classes returns every class sorted by name.
func (r *Registry) Classes() []*Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted()
}

// ClassOf returns the class registered for T.
func ClassOf[T any](r *Registry) (*Class, error) {
	return r.ClassFor(reflect.TypeFor[T]())
}
